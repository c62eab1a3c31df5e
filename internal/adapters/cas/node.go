package cas

import (
	"context"
	"fmt"

	"github.com/grindlemire/graft"
	"github.com/jonboulle/clockwork"
	"go.trai.ch/nftgen/internal/adapters/clock"
	"go.trai.ch/nftgen/internal/adapters/config"
	"go.trai.ch/nftgen/internal/adapters/fs"
	"go.trai.ch/nftgen/internal/adapters/logger"
	"go.trai.ch/nftgen/internal/core/ports"
)

const NodeID graft.ID = "adapter.analysis_cache"

func init() {
	graft.Register(graft.Node[ports.AnalysisCache]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, fs.HasherNodeID, clock.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.AnalysisCache, error) {
			settings, err := graft.Dep[*config.Settings](ctx)
			if err != nil {
				return nil, err
			}
			if !settings.Cache.Enabled {
				return NewUnavailable("analysis cache is disabled"), nil
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			clk, err := graft.Dep[clockwork.Clock](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			// A cache that cannot be opened degrades generation, it never stops it.
			cache, err := NewCache(settings.CacheDir(), settings.Cache.TTLDays, hasher, clk)
			if err != nil {
				log.Warn(fmt.Sprintf("analysis cache unavailable, generating without it: %v", err))
				return NewUnavailable(err.Error()), nil
			}
			return cache, nil
		},
	})
}
