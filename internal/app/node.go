package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/nftgen/internal/adapters/cas"                //nolint:depguard // Wired in app layer
	"go.trai.ch/nftgen/internal/adapters/config"             //nolint:depguard // Wired in app layer
	"go.trai.ch/nftgen/internal/adapters/fs"                 //nolint:depguard // Wired in app layer
	"go.trai.ch/nftgen/internal/adapters/janitor"            //nolint:depguard // Wired in app layer
	"go.trai.ch/nftgen/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/nftgen/internal/adapters/preset"             //nolint:depguard // Wired in app layer
	"go.trai.ch/nftgen/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/nftgen/internal/core/ports"
	"go.trai.ch/nftgen/internal/engine/collector"
	"go.trai.ch/nftgen/internal/engine/generator"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			generator.NodeID,
			collector.NodeID,
			janitor.NodeID,
			preset.NodeID,
			cas.NodeID,
			fs.MarkersNodeID,
			fs.ResolverNodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			progrock.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: app, Logger: log, Telemetry: tel}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	settings, err := graft.Dep[*config.Settings](ctx)
	if err != nil {
		return nil, err
	}

	gen, err := graft.Dep[*generator.Generator](ctx)
	if err != nil {
		return nil, err
	}

	coll, err := graft.Dep[*collector.Collector](ctx)
	if err != nil {
		return nil, err
	}

	jan, err := graft.Dep[*janitor.Janitor](ctx)
	if err != nil {
		return nil, err
	}

	presets, err := graft.Dep[ports.PresetStore](ctx)
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

	resolver, err := graft.Dep[ports.InputResolver](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(settings, gen, coll, jan, presets, cache, markers, resolver, log), nil
}
