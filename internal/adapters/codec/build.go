package codec

import (
	"context"
	"errors"

	"go.trai.ch/nftgen/internal/core/domain"
	"go.trai.ch/nftgen/internal/core/ports"
	"go.trai.ch/zerr"
)

// Build runs the extractor once per pyramid level, finest first, and encodes
// the three marker files. A level without features aborts the build and no
// bundle is returned.
func Build(
	ctx context.Context,
	image []byte,
	cfg domain.GenerationConfig,
	extractor ports.FeatureExtractor,
) (domain.Bundle, error) {
	if err := cfg.Validate(); err != nil {
		return domain.Bundle{}, err
	}

	levels := make([]domain.LevelFeatures, 0, cfg.Levels)
	for level := range cfg.Levels {
		// Extraction of a level is never interrupted, but a cancelled
		// generation does not start the next one.
		if err := ctx.Err(); err != nil {
			return domain.Bundle{}, zerr.With(domain.Wrap(domain.ErrExtraction, err, "generation abandoned"), "level", level)
		}

		features, err := extractor.Extract(ctx, image, level, cfg)
		if err != nil {
			return domain.Bundle{}, extractionErr(err, level)
		}
		if len(features.Features) == 0 {
			return domain.Bundle{}, extractionErr(domain.ErrNoFeaturesFound, level)
		}

		features.Level = level
		if features.DPI == 0 {
			features.DPI = float32(cfg.LevelDPI(level))
		}
		levels = append(levels, features)
	}

	return domain.Bundle{
		Index:        EncodeIndex(domain.Summarize(levels)),
		FeatureSet:   Encode2D(levels[0]),
		FeatureSet3D: Encode3D(levels),
	}, nil
}

func extractionErr(err error, level int) error {
	if errors.Is(err, domain.ErrExtraction) {
		return zerr.With(zerr.Wrap(err, "extraction failed"), "level", level)
	}
	return zerr.With(domain.Wrap(domain.ErrExtraction, err, "extraction failed"), "level", level)
}
