package app_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/nftgen/internal/adapters/config"
	"go.trai.ch/nftgen/internal/adapters/janitor"
	"go.trai.ch/nftgen/internal/adapters/telemetry"
	"go.trai.ch/nftgen/internal/app"
	"go.trai.ch/nftgen/internal/core/domain"
	"go.trai.ch/nftgen/internal/core/ports/mocks"
	"go.trai.ch/nftgen/internal/engine/collector"
	"go.trai.ch/nftgen/internal/engine/generator"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	settings  *config.Settings
	extractor *mocks.MockFeatureExtractor
	cache     *mocks.MockAnalysisCache
	markers   *mocks.MockMarkerStore
	presets   *mocks.MockPresetStore
	resolver  *mocks.MockInputResolver
	logger    *mocks.MockLogger
	app       *app.App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	settings := config.Default()
	settings.StorageRoot = t.TempDir()
	settings.Generation.Parallelism = 1
	settings.Generation.Config.Levels = 2

	f := &fixture{
		settings:  settings,
		extractor: mocks.NewMockFeatureExtractor(ctrl),
		cache:     mocks.NewMockAnalysisCache(ctrl),
		markers:   mocks.NewMockMarkerStore(ctrl),
		presets:   mocks.NewMockPresetStore(ctrl),
		resolver:  mocks.NewMockInputResolver(ctrl),
		logger:    mocks.NewMockLogger(ctrl),
	}

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	gen := generator.New(f.extractor, f.cache, f.markers, telemetry.NewNoOp(), f.logger, generator.NewMetrics(), clock)
	coll := collector.New(f.markers, f.logger, clock)
	jan, err := janitor.New(f.cache, f.logger, settings.Cache.SweepSchedule)
	require.NoError(t, err)

	f.app = app.New(settings, gen, coll, jan, f.presets, f.cache, f.markers, f.resolver, f.logger)
	return f
}

func writeImages(t *testing.T, names ...string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(paths[i], []byte("image "+name), 0o600))
	}
	return dir, paths
}

func features() domain.LevelFeatures {
	return domain.LevelFeatures{Width: 64, Height: 48, Features: []domain.Feature{{X: 3, Y: 4, Scale: 1, Response: 2}}}
}

func TestApp_ResolveConfig(t *testing.T) {
	t.Run("inline settings config", func(t *testing.T) {
		f := newFixture(t)
		cfg, err := f.app.ResolveConfig("")
		require.NoError(t, err)
		assert.Equal(t, f.settings.Generation.Config, cfg)
	})

	t.Run("default preset", func(t *testing.T) {
		f := newFixture(t)
		f.settings.Generation.DefaultPreset = "print"
		stored := domain.DefaultConfig()
		stored.FeatureDensity = domain.DensityHigh
		f.presets.EXPECT().Import("print").Return(stored, nil)

		cfg, err := f.app.ResolveConfig("")
		require.NoError(t, err)
		assert.Equal(t, stored, cfg)
	})

	t.Run("explicit preset wins", func(t *testing.T) {
		f := newFixture(t)
		f.settings.Generation.DefaultPreset = "print"
		f.presets.EXPECT().Import("web").Return(domain.GenerationConfig{}, domain.ErrPresetNotFound)

		_, err := f.app.ResolveConfig("web")
		require.ErrorIs(t, err, domain.ErrPresetNotFound)
	})
}

func TestApp_GenerateFiles(t *testing.T) {
	f := newFixture(t)
	dir, paths := writeImages(t, "Order 123.png", "portrait.jpg")

	f.resolver.EXPECT().ResolveInputs([]string{"*"}, dir).Return(paths, nil)
	f.extractor.EXPECT().Extract(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(features(), nil).Times(4)
	f.cache.EXPECT().Get(gomock.Any()).Return(domain.Bundle{}, false, nil).Times(2)
	f.cache.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	f.markers.EXPECT().Write(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, name string, fp domain.Fingerprint, _ domain.Bundle) (domain.MarkerBundleRef, error) {
			return domain.MarkerBundleRef{Name: name, Fingerprint: fp}, nil
		}).Times(2)

	results, err := f.app.GenerateFiles(context.Background(), []string{"*"}, app.GenerateOptions{Dir: dir})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, paths[0], results[0].Input)
	require.NoError(t, results[0].Err)
	assert.Equal(t, "order-123", results[0].Ref.Name)
	require.NoError(t, results[1].Err)
	assert.Equal(t, "portrait", results[1].Ref.Name)

	m := f.app.Metrics()
	assert.Equal(t, int64(2), m.TotalGenerated)
	assert.Equal(t, int64(2), m.CacheMisses)
}

func TestApp_GenerateFiles_Progress(t *testing.T) {
	f := newFixture(t)
	f.app.WithTeaOptions(tea.WithInput(nil), tea.WithOutput(io.Discard))
	dir, paths := writeImages(t, "portrait.png", "cover.png")
	// Results do not depend on the view rendering.
	f.logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	f.resolver.EXPECT().ResolveInputs(gomock.Any(), dir).Return(paths, nil)
	f.extractor.EXPECT().Extract(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(features(), nil).Times(4)
	f.markers.EXPECT().Write(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, name string, _ domain.Fingerprint, _ domain.Bundle) (domain.MarkerBundleRef, error) {
			return domain.MarkerBundleRef{Name: name}, nil
		}).Times(2)

	results, err := f.app.GenerateFiles(context.Background(), []string{"*.png"}, app.GenerateOptions{
		Dir:      dir,
		NoCache:  true,
		Progress: true,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "portrait", results[0].Ref.Name)
	assert.Equal(t, "cover", results[1].Ref.Name)
	assert.Equal(t, int64(2), f.app.Metrics().CacheMisses)
}

func TestApp_GenerateFiles_NameOverride(t *testing.T) {
	f := newFixture(t)
	dir, paths := writeImages(t, "portrait.png")

	f.resolver.EXPECT().ResolveInputs([]string{"portrait.png"}, dir).Return(paths, nil)
	f.extractor.EXPECT().Extract(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(features(), nil).Times(2)
	f.markers.EXPECT().Write(gomock.Any(), "order123", gomock.Any(), gomock.Any()).Return(domain.MarkerBundleRef{Name: "order123"}, nil)

	results, err := f.app.GenerateFiles(context.Background(), []string{"portrait.png"}, app.GenerateOptions{
		Dir:     dir,
		Name:    "order123",
		NoCache: true,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "order123", results[0].Ref.Name)
}

func TestApp_GenerateFiles_NameErrors(t *testing.T) {
	t.Run("name with several inputs", func(t *testing.T) {
		f := newFixture(t)
		dir, paths := writeImages(t, "a.png", "b.png")
		f.resolver.EXPECT().ResolveInputs(gomock.Any(), dir).Return(paths, nil)

		_, err := f.app.GenerateFiles(context.Background(), []string{"*.png"}, app.GenerateOptions{Dir: dir, Name: "one"})
		require.ErrorIs(t, err, domain.ErrInvalidMarkerName)
	})

	t.Run("colliding stems", func(t *testing.T) {
		f := newFixture(t)
		dir, paths := writeImages(t, "cover.png", "cover.jpg")
		f.resolver.EXPECT().ResolveInputs(gomock.Any(), dir).Return(paths, nil)

		_, err := f.app.GenerateFiles(context.Background(), []string{"cover.*"}, app.GenerateOptions{Dir: dir})
		require.ErrorIs(t, err, domain.ErrInvalidMarkerName)
	})
}

func TestApp_GenerateFiles_ReportsFailures(t *testing.T) {
	f := newFixture(t)
	dir, paths := writeImages(t, "flat.png")

	f.resolver.EXPECT().ResolveInputs(gomock.Any(), dir).Return(paths, nil)
	f.cache.EXPECT().Get(gomock.Any()).Return(domain.Bundle{}, false, nil)
	f.extractor.EXPECT().Extract(gomock.Any(), gomock.Any(), 0, gomock.Any()).
		Return(domain.LevelFeatures{}, domain.ErrNoFeaturesFound)
	f.logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrExtraction)
	})

	results, err := f.app.GenerateFiles(context.Background(), []string{"flat.png"}, app.GenerateOptions{Dir: dir})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.ErrorIs(t, results[0].Err, domain.ErrNoFeaturesFound)
	assert.Equal(t, int64(1), f.app.Metrics().Failures)
}

func TestApp_GenerateFiles_ResolutionError(t *testing.T) {
	f := newFixture(t)
	f.resolver.EXPECT().ResolveInputs(gomock.Any(), ".").Return(nil, domain.ErrInputNotFound)

	_, err := f.app.GenerateFiles(context.Background(), []string{"missing.png"}, app.GenerateOptions{})
	require.ErrorIs(t, err, domain.ErrInputNotFound)
}

func TestApp_Presets(t *testing.T) {
	f := newFixture(t)
	cfg := domain.DefaultConfig()

	f.presets.EXPECT().Export(cfg, "web", false).Return("/presets/web.json", nil)
	f.logger.EXPECT().Info("exported preset web")
	path, err := f.app.ExportPreset(cfg, "web", false)
	require.NoError(t, err)
	assert.Equal(t, "/presets/web.json", path)

	f.presets.EXPECT().Export(cfg, "web", false).Return("", domain.ErrPresetExists)
	_, err = f.app.ExportPreset(cfg, "web", false)
	require.ErrorIs(t, err, domain.ErrPresetExists)

	f.presets.EXPECT().List().Return([]domain.PresetInfo{{Name: "web"}}, nil)
	list, err := f.app.ListPresets()
	require.NoError(t, err)
	assert.Equal(t, []domain.PresetInfo{{Name: "web"}}, list)

	f.presets.EXPECT().Delete("web").Return(nil)
	f.logger.EXPECT().Info("deleted preset web")
	require.NoError(t, f.app.DeletePreset("web"))
}

func TestApp_CleanupUnusedMarkers(t *testing.T) {
	f := newFixture(t)
	f.markers.EXPECT().List().Return([]string{"order123", "orphan1", "orphan2"}, nil)

	report, err := f.app.CleanupUnusedMarkers(context.Background(), []string{"order123"}, true)
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalMarkers)
	assert.Equal(t, []string{"orphan1", "orphan2"}, report.DeletedNames)
}

func TestApp_Cache(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Sweep().Return(2, nil)
	f.logger.EXPECT().Info("cache sweep removed 2 expired entries")
	removed, err := f.app.SweepCache()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	fp := domain.ComputeFingerprint([]byte("image"), domain.DefaultConfig())
	f.cache.EXPECT().Invalidate(fp).Return(nil)
	f.logger.EXPECT().Info("invalidated cache entry " + fp.Short())
	require.NoError(t, f.app.InvalidateCache(fp.String()))

	err = f.app.InvalidateCache("not-a-fingerprint")
	require.ErrorIs(t, err, domain.ErrCache)
}

func TestApp_VerifyMarker(t *testing.T) {
	f := newFixture(t)
	f.markers.EXPECT().Verify("order123").Return(domain.ErrMarkerCorrupt)

	err := f.app.VerifyMarker("order123")
	require.ErrorIs(t, err, domain.ErrMarkerCorrupt)
}

func TestApp_RunJanitor(t *testing.T) {
	f := newFixture(t)
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	f.cache.EXPECT().Sweep().Return(0, nil).MinTimes(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, f.app.RunJanitor(ctx))
}

func TestComponents_Close(t *testing.T) {
	require.NoError(t, (&app.Components{}).Close())
	require.NoError(t, (&app.Components{Telemetry: telemetry.NewNoOp()}).Close())

	ctrl := gomock.NewController(t)
	tel := mocks.NewMockTelemetry(ctrl)
	tel.EXPECT().Close().Return(errors.New("flush failed"))
	require.Error(t, (&app.Components{Telemetry: tel}).Close())
}
