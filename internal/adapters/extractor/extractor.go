// Package extractor provides the default deterministic feature extractor.
//
// Corners are detected with the Harris response on the grayscale image of
// each pyramid level, thinned by non-maximum suppression and described with
// a steered 256-bit binary test pattern around each corner.
package extractor

import (
	"bytes"
	"context"
	"image"
	"math"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/disintegration/imaging"
	"go.trai.ch/nftgen/internal/core/domain"
	"go.trai.ch/nftgen/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FeatureExtractor = (*Extractor)(nil)

const (
	// harrisK is the sensitivity of the Harris corner measure.
	harrisK = 0.04
	// relativeThreshold discards corners weaker than this share of the strongest one.
	relativeThreshold = 0.01
	// minResponse discards corners on images without real texture.
	minResponse = 1e-6
	// patchRadius bounds the descriptor tests and keeps corners away from the border.
	patchRadius = 16
	// centroidRadius is the radius of the disc used to orient a corner.
	centroidRadius = 7
)

// Extractor implements ports.FeatureExtractor. It keeps the grayscale base
// image of the most recent input so the levels of one generation decode it once.
type Extractor struct {
	mu   sync.Mutex
	key  uint64
	base *image.NRGBA
}

// New creates a new Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the corners of one pyramid level. Level 0 is the image at
// full resolution and every further level is downscaled by LevelDPI/MaxDPI.
func (e *Extractor) Extract(
	ctx context.Context,
	data []byte,
	level int,
	cfg domain.GenerationConfig,
) (domain.LevelFeatures, error) {
	if err := ctx.Err(); err != nil {
		return domain.LevelFeatures{}, domain.Wrap(domain.ErrExtraction, err, "extraction abandoned")
	}

	base, err := e.grayscale(data, cfg)
	if err != nil {
		return domain.LevelFeatures{}, err
	}

	dpi := cfg.LevelDPI(level)
	scale := dpi / float64(cfg.MaxDPI)
	img := base
	if scale < 1 {
		w := max(1, int(math.Round(float64(base.Bounds().Dx())*scale)))
		h := max(1, int(math.Round(float64(base.Bounds().Dy())*scale)))
		img = imaging.Resize(base, w, h, imaging.Lanczos)
	}

	lum := luminance(img)
	corners := detect(lum, cfg.FeatureDensity.MaxFeatures())
	if len(corners) == 0 {
		return domain.LevelFeatures{}, zerr.With(zerr.Wrap(domain.ErrNoFeaturesFound, "level has no corners"), "level", level)
	}

	features := make([]domain.Feature, 0, len(corners))
	for _, c := range corners {
		theta := lum.orientation(c.x, c.y)
		features = append(features, domain.Feature{
			X:           float32(c.x),
			Y:           float32(c.y),
			Scale:       float32(1 / scale),
			Orientation: float32(theta),
			Response:    float32(c.response),
			Descriptor:  lum.describe(c.x, c.y, theta),
		})
	}

	return domain.LevelFeatures{
		Level:    level,
		DPI:      float32(dpi),
		Width:    lum.w,
		Height:   lum.h,
		Features: features,
	}, nil
}

// grayscale decodes data, applies the contrast enhancement of cfg and
// converts the result to grayscale.
func (e *Extractor) grayscale(data []byte, cfg domain.GenerationConfig) (*image.NRGBA, error) {
	d := xxhash.New()
	_, _ = d.Write(data)
	if cfg.AutoEnhanceContrast {
		_, _ = d.Write(binaryFloat(cfg.ContrastFactor))
	}
	key := d.Sum64()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.base != nil && e.key == key {
		return e.base, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, domain.Wrap(domain.ErrExtraction, err, "failed to decode image")
	}
	if cfg.AutoEnhanceContrast {
		img = imaging.AdjustContrast(img, contrastPercentage(cfg.ContrastFactor))
	}

	e.key, e.base = key, imaging.Grayscale(img)
	return e.base, nil
}

// contrastPercentage maps a contrast factor to the percentage imaging expects:
// 1.0 is unchanged, 2.0 is +100 and 0.5 is -50.
func contrastPercentage(factor float64) float64 {
	return min(100, max(-100, (factor-1)*100))
}

func binaryFloat(f float64) []byte {
	bits := math.Float64bits(f)
	b := make([]byte, 8)
	for i := range b {
		b[i] = byte(bits >> (8 * i))
	}
	return b
}

type corner struct {
	x, y     int
	response float64
}

// detect returns at most limit corners, strongest first. Ties are broken by
// position so the result only depends on the pixels.
func detect(lum *plane, limit int) []corner {
	if lum.w <= 2*patchRadius || lum.h <= 2*patchRadius {
		return nil
	}

	resp := lum.harris()
	peak := 0.0
	for _, r := range resp {
		peak = max(peak, r)
	}
	if peak < minResponse {
		return nil
	}
	threshold := max(minResponse, peak*relativeThreshold)

	var corners []corner
	for y := patchRadius; y < lum.h-patchRadius; y++ {
		for x := patchRadius; x < lum.w-patchRadius; x++ {
			r := resp[y*lum.w+x]
			if r < threshold || !isLocalMax(resp, lum.w, x, y) {
				continue
			}
			corners = append(corners, corner{x: x, y: y, response: r})
		}
	}

	slices.SortFunc(corners, func(a, b corner) int {
		switch {
		case a.response > b.response:
			return -1
		case a.response < b.response:
			return 1
		case a.y != b.y:
			return a.y - b.y
		default:
			return a.x - b.x
		}
	})
	if len(corners) > limit {
		corners = corners[:limit]
	}
	return corners
}

// isLocalMax reports whether the response at (x, y) wins its 3x3
// neighbourhood. Equal neighbours earlier in scan order win the tie.
func isLocalMax(resp []float64, w, x, y int) bool {
	r := resp[y*w+x]
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			n := resp[(y+dy)*w+x+dx]
			earlier := dy < 0 || (dy == 0 && dx < 0)
			if n > r || (earlier && n == r) {
				return false
			}
		}
	}
	return true
}
