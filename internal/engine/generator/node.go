package generator

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/jonboulle/clockwork"
	"go.trai.ch/nftgen/internal/adapters/cas"                //nolint:depguard // Wired in engine wiring
	"go.trai.ch/nftgen/internal/adapters/clock"              //nolint:depguard // Wired in engine wiring
	"go.trai.ch/nftgen/internal/adapters/config"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/nftgen/internal/adapters/extractor"          //nolint:depguard // Wired in engine wiring
	"go.trai.ch/nftgen/internal/adapters/fs"                 //nolint:depguard // Wired in engine wiring
	"go.trai.ch/nftgen/internal/adapters/logger"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/nftgen/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/nftgen/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the generator Graft node.
	NodeID graft.ID = "engine.generator"
	// MetricsNodeID is the unique identifier for the process metrics Graft node.
	MetricsNodeID graft.ID = "engine.generator.metrics"
)

func init() {
	graft.Register(graft.Node[*Metrics]{
		ID:        MetricsNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Metrics, error) {
			return NewMetrics(), nil
		},
	})

	graft.Register(graft.Node[*Generator]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			extractor.NodeID,
			cas.NodeID,
			fs.MarkersNodeID,
			progrock.NodeID,
			logger.NodeID,
			clock.NodeID,
			MetricsNodeID,
		},
		Run: func(ctx context.Context) (*Generator, error) {
			settings, err := graft.Dep[*config.Settings](ctx)
			if err != nil {
				return nil, err
			}

			ex, err := graft.Dep[ports.FeatureExtractor](ctx)
			if err != nil {
				return nil, err
			}

			cache, err := graft.Dep[ports.AnalysisCache](ctx)
			if err != nil {
				return nil, err
			}

			markers, err := graft.Dep[ports.MarkerStore](ctx)
			if err != nil {
				return nil, err
			}

			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			clk, err := graft.Dep[clockwork.Clock](ctx)
			if err != nil {
				return nil, err
			}

			metrics, err := graft.Dep[*Metrics](ctx)
			if err != nil {
				return nil, err
			}

			var opts []Option
			if _, unavailable := cache.(*cas.Unavailable); unavailable || !settings.Cache.Enabled {
				opts = append(opts, WithoutCache())
			}

			return New(ex, cache, markers, tel, log, metrics, clk, opts...), nil
		},
	})
}
