package extractor_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/nftgen/internal/adapters/extractor"
	"go.trai.ch/nftgen/internal/core/domain"
)

func checkerboard(t *testing.T, size, square int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			if (x/square+y/square)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 230})
			} else {
				img.SetGray(x, y, color.Gray{Y: 20})
			}
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func flat(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestExtract_Checkerboard(t *testing.T) {
	ex := extractor.New()
	cfg := domain.DefaultConfig()
	img := checkerboard(t, 500, 50)

	level0, err := ex.Extract(context.Background(), img, 0, cfg)
	require.NoError(t, err)

	assert.Equal(t, 0, level0.Level)
	assert.Equal(t, 500, level0.Width)
	assert.Equal(t, 500, level0.Height)
	assert.InDelta(t, 300, level0.DPI, 1e-3)
	require.NotEmpty(t, level0.Features)
	assert.LessOrEqual(t, len(level0.Features), domain.DensityMedium.MaxFeatures())

	for i, f := range level0.Features {
		assert.InDelta(t, 1, f.Scale, 1e-6)
		assert.Positive(t, f.Response)
		if i > 0 {
			assert.GreaterOrEqual(t, level0.Features[i-1].Response, f.Response)
		}
	}

	last, err := ex.Extract(context.Background(), img, cfg.Levels-1, cfg)
	require.NoError(t, err)
	assert.Equal(t, 250, last.Width)
	assert.InDelta(t, 150, last.DPI, 1e-3)
	assert.InDelta(t, 2, last.Features[0].Scale, 1e-6)
}

func TestExtract_Deterministic(t *testing.T) {
	cfg := domain.DefaultConfig()
	img := checkerboard(t, 200, 20)

	first, err := extractor.New().Extract(context.Background(), img, 1, cfg)
	require.NoError(t, err)
	second, err := extractor.New().Extract(context.Background(), img, 1, cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExtract_DensityCapsFeatures(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.FeatureDensity = domain.DensityLow
	img := checkerboard(t, 400, 8)

	level, err := extractor.New().Extract(context.Background(), img, 0, cfg)
	require.NoError(t, err)
	assert.Len(t, level.Features, domain.DensityLow.MaxFeatures())
}

func TestExtract_ContrastEnhancement(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.AutoEnhanceContrast = true
	cfg.ContrastFactor = 1.5

	level, err := extractor.New().Extract(context.Background(), checkerboard(t, 200, 25), 0, cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, level.Features)
}

func TestExtract_Failures(t *testing.T) {
	cfg := domain.DefaultConfig()

	t.Run("flat image", func(t *testing.T) {
		_, err := extractor.New().Extract(context.Background(), flat(t, 200), 0, cfg)
		require.ErrorIs(t, err, domain.ErrNoFeaturesFound)
	})

	t.Run("image smaller than a patch", func(t *testing.T) {
		_, err := extractor.New().Extract(context.Background(), checkerboard(t, 24, 4), 0, cfg)
		require.ErrorIs(t, err, domain.ErrNoFeaturesFound)
	})

	t.Run("undecodable bytes", func(t *testing.T) {
		_, err := extractor.New().Extract(context.Background(), []byte("not an image"), 0, cfg)
		require.ErrorIs(t, err, domain.ErrExtraction)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := extractor.New().Extract(ctx, checkerboard(t, 100, 10), 0, cfg)
		require.ErrorIs(t, err, domain.ErrExtraction)
		require.ErrorIs(t, err, context.Canceled)
	})
}
