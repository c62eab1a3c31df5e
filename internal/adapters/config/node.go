package config

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/zerr"
)

const NodeID graft.ID = "adapter.settings"

func init() {
	graft.Register(graft.Node[*Settings]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (*Settings, error) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, zerr.Wrap(err, "failed to get working directory")
			}
			return NewLoader().Load(cwd)
		},
	})
}
