package preset

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/jonboulle/clockwork"
	"go.trai.ch/nftgen/internal/adapters/clock"
	"go.trai.ch/nftgen/internal/adapters/config"
	"go.trai.ch/nftgen/internal/core/ports"
)

const NodeID graft.ID = "adapter.preset_store"

func init() {
	graft.Register(graft.Node[ports.PresetStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, clock.NodeID},
		Run: func(ctx context.Context) (ports.PresetStore, error) {
			settings, err := graft.Dep[*config.Settings](ctx)
			if err != nil {
				return nil, err
			}
			clk, err := graft.Dep[clockwork.Clock](ctx)
			if err != nil {
				return nil, err
			}
			store, err := NewStore(settings.PresetsDir(), clk)
			if err != nil {
				return nil, err
			}
			return store, nil
		},
	})
}
