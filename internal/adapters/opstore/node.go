package opstore

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tomobench/internal/core/ports"
)

// NodeID is the unique identifier for the operator store factory Graft node.
const NodeID graft.ID = "adapter.opstore"

func init() {
	graft.Register(graft.Node[ports.StoreFactory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.StoreFactory, error) {
			return NewFactory(), nil
		},
	})
}
