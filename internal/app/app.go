// Package app implements the application layer for tomobench.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.trai.ch/tomobench/internal/adapters/detector"
	"go.trai.ch/tomobench/internal/adapters/telemetry"
	"go.trai.ch/tomobench/internal/core/domain"
	"go.trai.ch/tomobench/internal/core/ports"
	"go.trai.ch/tomobench/internal/engine/driver"
	"go.trai.ch/tomobench/internal/engine/orchestrator"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	tracer       ports.Tracer
	stores       ports.StoreFactory
	leasers      ports.LeaserFactory
	engines      ports.EngineFactory
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	tracer ports.Tracer,
	stores ports.StoreFactory,
	leasers ports.LeaserFactory,
	engines ports.EngineFactory,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		tracer:       tracer,
		stores:       stores,
		leasers:      leasers,
		engines:      engines,
	}
}

// GlobalOptions are the settings shared by every command.
type GlobalOptions struct {
	ConfigPath string
	LogFormat  string
	Trace      bool
}

// BenchOptions configuration for the Bench method.
type BenchOptions struct {
	Backend   domain.Backend
	Algorithm domain.Algorithm
	Geometry  domain.Geometry
	Prepare   bool
	// Center overrides the backend's default rotation center when set.
	Center *float64
}

// jsonSwitcher is implemented by loggers that can change format after construction.
type jsonSwitcher interface {
	SetJSON(enable bool)
}

// Bench runs one benchmark invocation: either the prepare step, which publishes
// the backend's precomputed operators, or the execute step, which times the
// engine's initialization and adjoint.
func (a *App) Bench(ctx context.Context, global GlobalOptions, opts BenchOptions) (*domain.Report, error) {
	cfg, cleanup, err := a.setup(ctx, global)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := opts.Geometry.Validate(); err != nil {
		return nil, err
	}

	engines, err := a.engines.Open(cfg)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open engines")
	}

	if opts.Prepare {
		return a.prepare(ctx, cfg, engines, opts)
	}
	return a.execute(ctx, cfg, engines, opts)
}

func (a *App) prepare(
	ctx context.Context,
	cfg *domain.Config,
	engines ports.EngineRegistry,
	opts BenchOptions,
) (*domain.Report, error) {
	precomputer, err := engines.Precomputer(opts.Backend)
	if err != nil {
		return nil, zerr.With(err, "mode", domain.ModePrepare)
	}

	store, err := a.stores.Open(ctx, cfg)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open operator store")
	}

	leaser, err := a.leasers.Open(ctx, cfg)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open precompute lease")
	}
	defer func() {
		if err := leaser.Close(); err != nil {
			a.logger.Warn(fmt.Sprintf("failed to close leaser: %v", err))
		}
	}()

	orch := orchestrator.New(store, leaser, a.tracer, a.logger, orchestrator.Options{
		LeaseTimeout: cfg.Lease.Timeout,
		ScratchRoot:  cfg.WorkDir,
	})

	outcome, err := orch.Ensure(ctx, precomputer, opts.Geometry)
	if err != nil {
		return nil, zerr.Wrap(err, "prepare failed")
	}

	if !outcome.Hit {
		a.logger.Info(fmt.Sprintf("committed operators for %s in %s", outcome.Key, outcome.Duration.Round(time.Millisecond)))
	}

	return &domain.Report{
		Backend:  opts.Backend,
		Geometry: opts.Geometry,
		Key:      outcome.Key,
		Mode:     domain.ModePrepare,
		CacheHit: outcome.Hit,
		Elapsed:  outcome.Duration,
	}, nil
}

func (a *App) execute(
	ctx context.Context,
	cfg *domain.Config,
	engines ports.EngineRegistry,
	opts BenchOptions,
) (*domain.Report, error) {
	reconstructor, err := engines.Reconstructor(opts.Backend, opts.Algorithm)
	if err != nil {
		return nil, zerr.With(err, "mode", domain.ModeExecute)
	}

	if cfg.WorkDir != "" {
		if err := os.MkdirAll(cfg.WorkDir, domain.DirPerm); err != nil {
			return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrWorkDirFailed, err),
				"failed to create work directory"), "work_dir", cfg.WorkDir)
		}
	}

	// Each execution gets a private directory so concurrent runs never share
	// materialized operators.
	workDir, err := os.MkdirTemp(cfg.WorkDir, domain.AppName+"-*")
	if err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrWorkDirFailed, err),
			"failed to create work directory"), "work_dir", cfg.WorkDir)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			a.logger.Warn(fmt.Sprintf("failed to remove work directory %s: %v", workDir, err))
		}
	}()

	var (
		store ports.OperatorStore
		key   domain.CacheKey
	)
	if opts.Backend.UsesOperatorCache() {
		store, err = a.stores.Open(ctx, cfg)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to open operator store")
		}
		key = domain.DeriveKey(opts.Geometry)
	}

	center := opts.Backend.DefaultCenter(opts.Geometry.Width)
	if opts.Center != nil {
		center = *opts.Center
	}

	// The benchmark measures engine cost, not data: a zero sinogram of the right
	// shape exercises the same code paths as a measured one.
	sinogram := domain.NewArray3(opts.Geometry.SinogramShape())

	start := time.Now()
	result, err := driver.New(store, a.tracer, a.logger, workDir).
		Reconstruct(ctx, opts.Backend, reconstructor, opts.Geometry, sinogram, center)
	if err != nil {
		return nil, zerr.Wrap(err, "execute failed")
	}

	return &domain.Report{
		Backend:   opts.Backend,
		Algorithm: opts.Algorithm,
		Geometry:  opts.Geometry,
		Key:       key,
		Mode:      domain.ModeExecute,
		CacheHit:  store != nil,
		Center:    center,
		Timing:    result.Timing,
		Elapsed:   time.Since(start),
		Output:    result.Volume.Shape,
	}, nil
}

// ListCache returns every published cache entry.
func (a *App) ListCache(ctx context.Context, global GlobalOptions) ([]domain.CacheEntry, error) {
	cfg, cleanup, err := a.setup(ctx, global)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	store, err := a.stores.Open(ctx, cfg)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open operator store")
	}

	entries, err := store.List(ctx)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to list cache")
	}
	return entries, nil
}

// setup loads the configuration and applies the logging and tracing options.
// The returned cleanup must be called once the command finishes.
func (a *App) setup(ctx context.Context, global GlobalOptions) (*domain.Config, func(), error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to resolve working directory")
	}

	cfg, err := a.configLoader.Load(cwd, global.ConfigPath)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to load configuration")
	}

	if err := a.configureLogging(cfg, global.LogFormat); err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	if global.Trace {
		shutdown := telemetry.InstallBridge(a.logger)
		cleanup = func() {
			if err := shutdown(context.WithoutCancel(ctx)); err != nil {
				a.logger.Warn(fmt.Sprintf("failed to flush traces: %v", err))
			}
		}
	}
	return cfg, cleanup, nil
}

// configureLogging resolves the log format: the flag wins over the config file,
// which wins over environment detection.
func (a *App) configureLogging(cfg *domain.Config, flag string) error {
	requested := flag
	if requested == "" {
		requested = cfg.LogFormat
	}

	format, err := detector.ParseFormat(requested)
	if err != nil {
		return err
	}
	format = detector.ResolveFormat(detector.DetectEnvironment(), format)

	if switcher, ok := a.logger.(jsonSwitcher); ok {
		switcher.SetJSON(format == detector.FormatJSON)
	}
	return nil
}
