package recon

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tomobench/internal/adapters/shell"
	"go.trai.ch/tomobench/internal/core/ports"
)

// NodeID is the unique identifier for the engine factory Graft node.
const NodeID graft.ID = "adapter.recon"

func init() {
	graft.Register(graft.Node[ports.EngineFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID},
		Run: func(ctx context.Context) (ports.EngineFactory, error) {
			runner, err := graft.Dep[*shell.Runner](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(runner), nil
		},
	})
}
