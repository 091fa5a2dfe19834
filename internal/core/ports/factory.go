package ports

import (
	"context"

	"go.trai.ch/tomobench/internal/core/domain"
)

//go:generate mockgen -source=factory.go -destination=mocks/mock_factory.go -package=mocks

// The factories below are resolved at wiring time; the configuration they consume
// is only known once a command has parsed its flags.

// StoreFactory opens the operator store selected by the configuration.
type StoreFactory interface {
	Open(ctx context.Context, cfg *domain.Config) (OperatorStore, error)
}

// LeaserFactory opens the precompute leaser selected by the configuration.
type LeaserFactory interface {
	Open(ctx context.Context, cfg *domain.Config) (Leaser, error)
}

// EngineFactory builds the engine registry for the configuration.
type EngineFactory interface {
	Open(cfg *domain.Config) (EngineRegistry, error)
}
