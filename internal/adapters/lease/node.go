package lease

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tomobench/internal/adapters/logger"
	"go.trai.ch/tomobench/internal/core/ports"
)

// NodeID is the unique identifier for the lease factory Graft node.
const NodeID graft.ID = "adapter.lease"

func init() {
	graft.Register(graft.Node[ports.LeaserFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.LeaserFactory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(log), nil
		},
	})
}
