package collector

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/jonboulle/clockwork"
	"go.trai.ch/nftgen/internal/adapters/clock"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/nftgen/internal/adapters/fs"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/nftgen/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/nftgen/internal/core/ports"
)

// NodeID is the unique identifier for the collector Graft node.
const NodeID graft.ID = "engine.collector"

func init() {
	graft.Register(graft.Node[*Collector]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.MarkersNodeID, logger.NodeID, clock.NodeID},
		Run: func(ctx context.Context) (*Collector, error) {
			markers, err := graft.Dep[ports.MarkerStore](ctx)
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

			return New(markers, log, clk), nil
		},
	})
}
