// Package generator turns images into published marker bundles, reusing the
// analysis cache when it can.
package generator

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.trai.ch/nftgen/internal/adapters/codec"
	"go.trai.ch/nftgen/internal/core/domain"
	"go.trai.ch/nftgen/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Request describes one marker generation.
type Request struct {
	Image      []byte
	Config     domain.GenerationConfig
	MarkerName string
	// NoCache bypasses the analysis cache for this request only.
	NoCache bool
}

// Result is the outcome of one request of a batch.
type Result struct {
	Ref domain.MarkerBundleRef
	Err error
}

// Generator produces marker bundles.
type Generator struct {
	extractor    ports.FeatureExtractor
	cache        ports.AnalysisCache
	markers      ports.MarkerStore
	telemetry    ports.Telemetry
	logger       ports.Logger
	metrics      *Metrics
	clock        clockwork.Clock
	cacheEnabled bool

	builds *singleflight.Group
}

// Option configures a Generator.
type Option func(*Generator)

// WithoutCache disables the analysis cache for every request.
func WithoutCache() Option {
	return func(g *Generator) {
		g.cacheEnabled = false
	}
}

// New creates a new Generator. A nil cache disables caching.
func New(
	extractor ports.FeatureExtractor,
	cache ports.AnalysisCache,
	markers ports.MarkerStore,
	telemetry ports.Telemetry,
	logger ports.Logger,
	metrics *Metrics,
	clock clockwork.Clock,
	opts ...Option,
) *Generator {
	g := &Generator{
		extractor:    extractor,
		cache:        cache,
		markers:      markers,
		telemetry:    telemetry,
		logger:       logger,
		metrics:      metrics,
		clock:        clock,
		cacheEnabled: cache != nil,
		builds:       &singleflight.Group{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// WithTelemetry returns a copy of the generator recording to t. The copy
// shares metrics and in-flight builds with g.
func (g *Generator) WithTelemetry(t ports.Telemetry) *Generator {
	c := *g
	c.telemetry = t
	return &c
}

// Telemetry returns the telemetry the generator records to.
func (g *Generator) Telemetry() ports.Telemetry {
	return g.telemetry
}

// Metrics returns a snapshot of the generation counters.
func (g *Generator) Metrics() domain.MetricsSnapshot {
	return g.metrics.Snapshot()
}

// Generate publishes the marker of image under cfg as markerName.
func (g *Generator) Generate(
	ctx context.Context,
	image []byte,
	cfg domain.GenerationConfig,
	markerName string,
) (domain.MarkerBundleRef, error) {
	return g.Do(ctx, Request{Image: image, Config: cfg, MarkerName: markerName})
}

// Do runs one request. Failed requests are counted and leave no cache entry.
func (g *Generator) Do(ctx context.Context, req Request) (domain.MarkerBundleRef, error) {
	ctx, vertex := g.telemetry.Record(ctx, "generate "+req.MarkerName)

	ref, err := g.run(ctx, vertex, req)
	if err != nil {
		g.metrics.RecordFailure()
		vertex.Log(domain.LogLevelError, err.Error())
	}
	vertex.Complete(err)
	return ref, err
}

func (g *Generator) run(ctx context.Context, vertex ports.Vertex, req Request) (domain.MarkerBundleRef, error) {
	start := g.clock.Now()

	if err := req.Config.Validate(); err != nil {
		return domain.MarkerBundleRef{}, err
	}
	if err := domain.ValidateMarkerName(req.MarkerName); err != nil {
		return domain.MarkerBundleRef{}, err
	}

	fp := domain.ComputeFingerprint(req.Image, req.Config)
	vertex.Log(domain.LogLevelDebug, "fingerprint "+fp.String())

	useCache := g.cacheEnabled && !req.NoCache
	if useCache {
		bundle, ok, err := g.cache.Get(fp)
		switch {
		case err != nil:
			g.logger.Warn(fmt.Sprintf("analysis cache unavailable for %s, generating without it: %v", fp.Short(), err))
			useCache = false
		case ok:
			ref, err := g.markers.Write(ctx, req.MarkerName, fp, bundle)
			if err != nil {
				return domain.MarkerBundleRef{}, err
			}
			ref.Cached = true
			ref.Duration = g.clock.Since(start)
			g.metrics.RecordHit(ref.Duration)
			vertex.Cached()
			return ref, nil
		}
	}

	bundle, err := g.build(ctx, fp, req)
	if err != nil {
		return domain.MarkerBundleRef{}, err
	}

	ref, err := g.markers.Write(ctx, req.MarkerName, fp, bundle)
	if err != nil {
		return domain.MarkerBundleRef{}, err
	}

	if useCache {
		if err := g.cache.Put(fp, bundle); err != nil {
			g.logger.Warn(fmt.Sprintf("failed to cache marker %s (%s): %v", req.MarkerName, fp.Short(), err))
		}
	}

	ref.Duration = g.clock.Since(start)
	g.metrics.RecordMiss(ref.Duration)
	return ref, nil
}

// build collapses concurrent builds of the same fingerprint into one. The
// shared build is detached from the cancellation of whichever caller started
// it; each caller only stops waiting when its own ctx is done.
func (g *Generator) build(ctx context.Context, fp domain.Fingerprint, req Request) (domain.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return domain.Bundle{}, zerr.Wrap(err, "generation abandoned")
	}

	shared := context.WithoutCancel(ctx)
	ch := g.builds.DoChan(fp.String(), func() (any, error) {
		return codec.Build(shared, req.Image, req.Config, g.extractor)
	})

	select {
	case <-ctx.Done():
		return domain.Bundle{}, zerr.Wrap(ctx.Err(), "generation abandoned")
	case res := <-ch:
		if res.Err != nil {
			return domain.Bundle{}, res.Err
		}
		return res.Val.(domain.Bundle), nil //nolint:forcetypeassert // Build always returns a Bundle
	}
}

// GenerateBatch runs reqs with at most parallelism requests in flight and
// returns one result per request, in order. A failed request does not stop
// the others.
func (g *Generator) GenerateBatch(ctx context.Context, reqs []Request, parallelism int) []Result {
	results := make([]Result, len(reqs))

	var eg errgroup.Group
	if parallelism > 0 {
		eg.SetLimit(parallelism)
	}
	for i, req := range reqs {
		eg.Go(func() error {
			ref, err := g.Do(ctx, req)
			results[i] = Result{Ref: ref, Err: err}
			return nil
		})
	}
	_ = eg.Wait()

	return results
}
