package recon

import (
	"go.trai.ch/tomobench/internal/core/domain"
	"go.trai.ch/tomobench/internal/core/ports"
	"go.trai.ch/zerr"
)

// Registry resolves each backend to a configured helper command or, when none
// is configured, to the reference engine.
type Registry struct {
	engines map[domain.Backend]domain.EngineConfig
	runner  Runner
}

var _ ports.EngineRegistry = (*Registry)(nil)

// NewRegistry creates a Registry.
func NewRegistry(engines map[domain.Backend]domain.EngineConfig, runner Runner) *Registry {
	return &Registry{engines: engines, runner: runner}
}

// Reconstructor returns the engine for backend. tomopy requires an algorithm.
func (r *Registry) Reconstructor(backend domain.Backend, algorithm domain.Algorithm) (ports.Reconstructor, error) {
	if _, err := domain.ParseBackend(backend.String()); err != nil {
		return nil, err
	}
	if backend == domain.BackendTomopy {
		if _, err := domain.ParseAlgorithm(string(algorithm)); err != nil {
			return nil, err
		}
	}

	if cfg := r.engines[backend]; len(cfg.Command) > 0 {
		return NewProcess(backend, algorithm, cfg.Command, r.runner), nil
	}
	return NewReference(backend), nil
}

// Precomputer returns the operator builder for backend.
func (r *Registry) Precomputer(backend domain.Backend) (ports.Precomputer, error) {
	if _, err := domain.ParseBackend(backend.String()); err != nil {
		return nil, err
	}
	if !backend.UsesOperatorCache() {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownBackend, "backend has no precompute step"),
			"backend", backend.String())
	}

	if cfg := r.engines[backend]; len(cfg.Command) > 0 {
		return NewProcess(backend, "", cfg.Command, r.runner), nil
	}
	return NewReference(backend), nil
}

// Factory builds registries from the configuration.
type Factory struct {
	runner Runner
}

var _ ports.EngineFactory = (*Factory)(nil)

// NewFactory creates a Factory whose process engines run through runner.
func NewFactory(runner Runner) *Factory {
	return &Factory{runner: runner}
}

// Open returns the registry for cfg.Engines.
func (f *Factory) Open(cfg *domain.Config) (ports.EngineRegistry, error) {
	return NewRegistry(cfg.Engines, f.runner), nil
}
