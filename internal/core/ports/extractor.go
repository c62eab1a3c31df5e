package ports

import (
	"context"

	"go.trai.ch/nftgen/internal/core/domain"
)

// FeatureExtractor computes the features of one pyramid level of an image.
//
//go:generate go run go.uber.org/mock/mockgen -source=extractor.go -destination=mocks/mock_extractor.go -package=mocks
type FeatureExtractor interface {
	// Extract returns the features found at level under cfg.
	// It must be deterministic for fixed inputs and returns domain.ErrNoFeaturesFound
	// when the level has no usable texture.
	Extract(ctx context.Context, image []byte, level int, cfg domain.GenerationConfig) (domain.LevelFeatures, error)
}
