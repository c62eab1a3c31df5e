package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/jonboulle/clockwork"
	"go.trai.ch/nftgen/internal/adapters/clock"
	"go.trai.ch/nftgen/internal/adapters/config"
	"go.trai.ch/nftgen/internal/core/ports"
)

const (
	WalkerNodeID   graft.ID = "adapter.fs.walker"
	ResolverNodeID graft.ID = "adapter.fs.resolver"
	HasherNodeID   graft.ID = "adapter.fs.hasher"
	MarkersNodeID  graft.ID = "adapter.fs.markers"
)

func init() {
	// Walker Node (Concrete implementation needed by the marker store)
	graft.Register(graft.Node[*Walker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (*Walker, error) {
			return NewWalker(), nil
		},
	})

	// Resolver Node
	graft.Register(graft.Node[ports.InputResolver]{
		ID:        ResolverNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.InputResolver, error) {
			return NewResolver(), nil
		},
	})

	// Hasher Node
	graft.Register(graft.Node[ports.Hasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.Hasher, error) {
			return NewHasher(), nil
		},
	})

	// Marker Store Node
	graft.Register(graft.Node[ports.MarkerStore]{
		ID:        MarkersNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, HasherNodeID, WalkerNodeID, clock.NodeID},
		Run: func(ctx context.Context) (ports.MarkerStore, error) {
			settings, err := graft.Dep[*config.Settings](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			walker, err := graft.Dep[*Walker](ctx)
			if err != nil {
				return nil, err
			}
			clk, err := graft.Dep[clockwork.Clock](ctx)
			if err != nil {
				return nil, err
			}
			return NewMarkerStore(settings.MarkersDir(), hasher, walker, clk)
		},
	})
}
