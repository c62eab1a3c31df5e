package janitor

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/nftgen/internal/adapters/cas"
	"go.trai.ch/nftgen/internal/adapters/config"
	"go.trai.ch/nftgen/internal/adapters/logger"
	"go.trai.ch/nftgen/internal/core/ports"
)

const NodeID graft.ID = "adapter.cache_janitor"

func init() {
	graft.Register(graft.Node[*Janitor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, cas.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Janitor, error) {
			settings, err := graft.Dep[*config.Settings](ctx)
			if err != nil {
				return nil, err
			}
			cache, err := graft.Dep[ports.AnalysisCache](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(cache, log, settings.Cache.SweepSchedule)
		},
	})
}
