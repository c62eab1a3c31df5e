package generator_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/nftgen/internal/adapters/telemetry"
	"go.trai.ch/nftgen/internal/core/domain"
	"go.trai.ch/nftgen/internal/core/ports/mocks"
	"go.trai.ch/nftgen/internal/engine/generator"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	extractor *mocks.MockFeatureExtractor
	cache     *mocks.MockAnalysisCache
	markers   *mocks.MockMarkerStore
	logger    *mocks.MockLogger
	gen       *generator.Generator
}

func newFixture(t *testing.T, opts ...generator.Option) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		extractor: mocks.NewMockFeatureExtractor(ctrl),
		cache:     mocks.NewMockAnalysisCache(ctrl),
		markers:   mocks.NewMockMarkerStore(ctrl),
		logger:    mocks.NewMockLogger(ctrl),
	}
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	f.gen = generator.New(f.extractor, f.cache, f.markers, telemetry.NewNoOp(), f.logger, generator.NewMetrics(), clock, opts...)
	return f
}

func level(n int) domain.LevelFeatures {
	l := domain.LevelFeatures{Level: n, Width: 100 >> n, Height: 80 >> n}
	l.Features = []domain.Feature{{X: 1, Y: 2, Scale: 1, Response: 5}}
	return l
}

func smallConfig() domain.GenerationConfig {
	cfg := domain.DefaultConfig()
	cfg.Levels = 2
	return cfg
}

func (f *fixture) expectExtraction(image []byte, cfg domain.GenerationConfig) {
	for i := range cfg.Levels {
		f.extractor.EXPECT().Extract(gomock.Any(), image, i, cfg).Return(level(i), nil)
	}
}

func TestGenerate_MissBuildsWritesAndCaches(t *testing.T) {
	f := newFixture(t)
	image := []byte("portrait")
	cfg := smallConfig()
	fp := domain.ComputeFingerprint(image, cfg)

	f.cache.EXPECT().Get(fp).Return(domain.Bundle{}, false, nil)
	f.expectExtraction(image, cfg)

	var written domain.Bundle
	f.markers.EXPECT().Write(gomock.Any(), "order123", fp, gomock.Any()).
		DoAndReturn(func(_ context.Context, name string, fp domain.Fingerprint, b domain.Bundle) (domain.MarkerBundleRef, error) {
			written = b
			return domain.MarkerBundleRef{Name: name, Fingerprint: fp}, nil
		})
	f.cache.EXPECT().Put(fp, gomock.Any()).DoAndReturn(func(_ domain.Fingerprint, b domain.Bundle) error {
		assert.Equal(t, written, b)
		return nil
	})

	ref, err := f.gen.Generate(context.Background(), image, cfg, "order123")
	require.NoError(t, err)
	assert.Equal(t, "order123", ref.Name)
	assert.False(t, ref.Cached)

	m := f.gen.Metrics()
	assert.Equal(t, int64(1), m.TotalGenerated)
	assert.Equal(t, int64(1), m.CacheMisses)
	assert.Zero(t, m.CacheHits)
	assert.Zero(t, m.Failures)
}

func TestGenerate_HitSkipsExtraction(t *testing.T) {
	f := newFixture(t)
	image := []byte("portrait")
	cfg := smallConfig()
	fp := domain.ComputeFingerprint(image, cfg)
	cached := domain.Bundle{Index: []byte("ARIS"), FeatureSet: []byte("ARJS"), FeatureSet3D: []byte("AR3D")}

	f.cache.EXPECT().Get(fp).Return(cached, true, nil)
	f.markers.EXPECT().Write(gomock.Any(), "copy", fp, cached).Return(domain.MarkerBundleRef{Name: "copy"}, nil)

	ref, err := f.gen.Generate(context.Background(), image, cfg, "copy")
	require.NoError(t, err)
	assert.True(t, ref.Cached)

	m := f.gen.Metrics()
	assert.Equal(t, int64(1), m.TotalGenerated)
	assert.Equal(t, int64(1), m.CacheHits)
	assert.Zero(t, m.CacheMisses)
}

func TestGenerate_CacheErrorsDegradeToWarnings(t *testing.T) {
	f := newFixture(t)
	image := []byte("portrait")
	cfg := smallConfig()
	fp := domain.ComputeFingerprint(image, cfg)

	f.cache.EXPECT().Get(fp).Return(domain.Bundle{}, false, domain.ErrCache)
	f.logger.EXPECT().Warn(gomock.Any())
	f.expectExtraction(image, cfg)
	f.markers.EXPECT().Write(gomock.Any(), "order123", fp, gomock.Any()).Return(domain.MarkerBundleRef{Name: "order123"}, nil)
	// A failed lookup disables the cache for the rest of the call, so no Put.

	_, err := f.gen.Generate(context.Background(), image, cfg, "order123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.gen.Metrics().CacheMisses)
}

func TestGenerate_PutFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	image := []byte("portrait")
	cfg := smallConfig()
	fp := domain.ComputeFingerprint(image, cfg)

	f.cache.EXPECT().Get(fp).Return(domain.Bundle{}, false, nil)
	f.expectExtraction(image, cfg)
	f.markers.EXPECT().Write(gomock.Any(), "order123", fp, gomock.Any()).Return(domain.MarkerBundleRef{Name: "order123"}, nil)
	f.cache.EXPECT().Put(fp, gomock.Any()).Return(domain.ErrCache)
	f.logger.EXPECT().Warn(gomock.Any())

	_, err := f.gen.Generate(context.Background(), image, cfg, "order123")
	require.NoError(t, err)
	assert.Zero(t, f.gen.Metrics().Failures)
}

func TestGenerate_CacheDisabled(t *testing.T) {
	f := newFixture(t, generator.WithoutCache())
	image := []byte("portrait")
	cfg := smallConfig()

	f.expectExtraction(image, cfg)
	f.markers.EXPECT().Write(gomock.Any(), "order123", gomock.Any(), gomock.Any()).Return(domain.MarkerBundleRef{}, nil)

	_, err := f.gen.Generate(context.Background(), image, cfg, "order123")
	require.NoError(t, err)
}

func TestDo_NoCacheRequest(t *testing.T) {
	f := newFixture(t)
	image := []byte("portrait")
	cfg := smallConfig()

	f.expectExtraction(image, cfg)
	f.markers.EXPECT().Write(gomock.Any(), "order123", gomock.Any(), gomock.Any()).Return(domain.MarkerBundleRef{}, nil)

	_, err := f.gen.Do(context.Background(), generator.Request{Image: image, Config: cfg, MarkerName: "order123", NoCache: true})
	require.NoError(t, err)
}

func TestGenerate_Failures(t *testing.T) {
	image := []byte("portrait")

	t.Run("invalid config", func(t *testing.T) {
		f := newFixture(t)
		cfg := domain.DefaultConfig()
		cfg.MinDPI = 400

		_, err := f.gen.Generate(context.Background(), image, cfg, "order123")
		require.ErrorIs(t, err, domain.ErrConfig)
		assert.Equal(t, int64(1), f.gen.Metrics().Failures)
		assert.Zero(t, f.gen.Metrics().TotalGenerated)
	})

	t.Run("invalid marker name", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.gen.Generate(context.Background(), image, smallConfig(), "../escape")
		require.ErrorIs(t, err, domain.ErrInvalidMarkerName)
		assert.Equal(t, int64(1), f.gen.Metrics().Failures)
	})

	t.Run("extraction failure leaves no cache entry", func(t *testing.T) {
		f := newFixture(t)
		cfg := smallConfig()
		fp := domain.ComputeFingerprint(image, cfg)

		f.cache.EXPECT().Get(fp).Return(domain.Bundle{}, false, nil)
		f.extractor.EXPECT().Extract(gomock.Any(), image, 0, cfg).Return(domain.LevelFeatures{}, domain.ErrNoFeaturesFound)

		_, err := f.gen.Generate(context.Background(), image, cfg, "order123")
		require.ErrorIs(t, err, domain.ErrExtraction)
		require.ErrorIs(t, err, domain.ErrNoFeaturesFound)
		assert.Equal(t, "ExtractionError", domain.Kind(err))

		m := f.gen.Metrics()
		assert.Equal(t, int64(1), m.Failures)
		assert.Zero(t, m.TotalGenerated)
		assert.Zero(t, m.CacheMisses)
	})

	t.Run("marker write failure", func(t *testing.T) {
		f := newFixture(t)
		cfg := smallConfig()

		f.cache.EXPECT().Get(gomock.Any()).Return(domain.Bundle{}, false, nil)
		f.expectExtraction(image, cfg)
		f.markers.EXPECT().Write(gomock.Any(), "order123", gomock.Any(), gomock.Any()).
			Return(domain.MarkerBundleRef{}, errors.Join(domain.ErrCodec, errors.New("disk full")))

		_, err := f.gen.Generate(context.Background(), image, cfg, "order123")
		require.ErrorIs(t, err, domain.ErrCodec)
		assert.Equal(t, int64(1), f.gen.Metrics().Failures)
	})
}

func TestGenerate_RecordsTelemetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockAnalysisCache(ctrl)
	markers := mocks.NewMockMarkerStore(ctrl)
	tel := mocks.NewMockTelemetry(ctrl)
	vertex := mocks.NewMockVertex(ctrl)

	gen := generator.New(mocks.NewMockFeatureExtractor(ctrl), cache, markers, tel, mocks.NewMockLogger(ctrl),
		generator.NewMetrics(), clockwork.NewFakeClock())

	tel.EXPECT().Record(gomock.Any(), "generate order123").Return(context.Background(), vertex)
	vertex.EXPECT().Log(gomock.Any(), gomock.Any()).AnyTimes()
	cache.EXPECT().Get(gomock.Any()).Return(domain.Bundle{Index: []byte("ARIS")}, true, nil)
	markers.EXPECT().Write(gomock.Any(), "order123", gomock.Any(), gomock.Any()).Return(domain.MarkerBundleRef{}, nil)
	gomock.InOrder(
		vertex.EXPECT().Cached(),
		vertex.EXPECT().Complete(nil),
	)

	_, err := gen.Generate(context.Background(), []byte("portrait"), smallConfig(), "order123")
	require.NoError(t, err)
}

func TestGenerateBatch_KeepsOrderAndIsolatesFailures(t *testing.T) {
	f := newFixture(t, generator.WithoutCache())
	cfg := smallConfig()

	f.extractor.EXPECT().Extract(gomock.Any(), gomock.Any(), gomock.Any(), cfg).
		DoAndReturn(func(_ context.Context, _ []byte, i int, _ domain.GenerationConfig) (domain.LevelFeatures, error) {
			return level(i), nil
		}).Times(4)
	f.markers.EXPECT().Write(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, name string, fp domain.Fingerprint, _ domain.Bundle) (domain.MarkerBundleRef, error) {
			return domain.MarkerBundleRef{Name: name, Fingerprint: fp}, nil
		}).Times(2)

	results := f.gen.GenerateBatch(context.Background(), []generator.Request{
		{Image: []byte("a"), Config: cfg, MarkerName: "first"},
		{Image: []byte("b"), Config: cfg, MarkerName: "bad/name"},
		{Image: []byte("c"), Config: cfg, MarkerName: "third"},
	}, 2)

	require.Len(t, results, 3)
	require.NoError(t, results[0].Err)
	assert.Equal(t, "first", results[0].Ref.Name)
	require.ErrorIs(t, results[1].Err, domain.ErrInvalidMarkerName)
	require.NoError(t, results[2].Err)
	assert.Equal(t, "third", results[2].Ref.Name)

	m := f.gen.Metrics()
	assert.Equal(t, int64(2), m.TotalGenerated)
	assert.Equal(t, int64(1), m.Failures)
}

func TestWithTelemetry_SharesMetrics(t *testing.T) {
	f := newFixture(t, generator.WithoutCache())
	ctrl := gomock.NewController(t)
	tel := mocks.NewMockTelemetry(ctrl)
	vertex := mocks.NewMockVertex(ctrl)
	cfg := smallConfig()

	recording := f.gen.WithTelemetry(tel)
	assert.Same(t, tel, recording.Telemetry())
	assert.NotSame(t, tel, f.gen.Telemetry())

	tel.EXPECT().Record(gomock.Any(), "generate order123").Return(context.Background(), vertex)
	vertex.EXPECT().Log(gomock.Any(), gomock.Any()).AnyTimes()
	vertex.EXPECT().Complete(nil)
	f.expectExtraction([]byte("portrait"), cfg)
	f.markers.EXPECT().Write(gomock.Any(), "order123", gomock.Any(), gomock.Any()).Return(domain.MarkerBundleRef{Name: "order123"}, nil)

	_, err := recording.Generate(context.Background(), []byte("portrait"), cfg, "order123")
	require.NoError(t, err)

	assert.Equal(t, int64(1), f.gen.Metrics().TotalGenerated)
}

func TestGenerate_CancelledCallerDoesNotFailSharedBuild(t *testing.T) {
	f := newFixture(t, generator.WithoutCache())
	cfg := smallConfig()
	image := []byte("portrait")

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.extractor.EXPECT().Extract(gomock.Any(), image, gomock.Any(), cfg).
		DoAndReturn(func(ctx context.Context, _ []byte, i int, _ domain.GenerationConfig) (domain.LevelFeatures, error) {
			once.Do(func() { close(started) })
			<-release
			if err := ctx.Err(); err != nil {
				return domain.LevelFeatures{}, err
			}
			return level(i), nil
		}).MinTimes(cfg.Levels)
	f.markers.EXPECT().Write(gomock.Any(), "second", gomock.Any(), gomock.Any()).
		Return(domain.MarkerBundleRef{Name: "second"}, nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := f.gen.Generate(ctxA, image, cfg, "first")
		errA <- err
	}()
	<-started

	errB := make(chan error, 1)
	go func() {
		_, err := f.gen.Generate(context.Background(), image, cfg, "second")
		errB <- err
	}()
	// Give the second caller time to join the running build.
	time.Sleep(50 * time.Millisecond)

	cancelA()
	err := <-errA
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrExtraction)

	close(release)
	require.NoError(t, <-errB)

	m := f.gen.Metrics()
	assert.Equal(t, int64(1), m.Failures)
	assert.Equal(t, int64(1), m.TotalGenerated)
}
