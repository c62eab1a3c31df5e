// Package clock provides the wall clock used by time-bounded adapters.
package clock

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/jonboulle/clockwork"
)

const NodeID graft.ID = "adapter.clock"

func init() {
	graft.Register(graft.Node[clockwork.Clock]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (clockwork.Clock, error) {
			return clockwork.NewRealClock(), nil
		},
	})
}
