// Package orchestrator makes sure a geometry's operators are published in the
// shared store, computing them at most once per key across goroutines and processes.
package orchestrator

import (
	"context"
	"errors"
	"os"
	"time"

	"go.trai.ch/tomobench/internal/core/domain"
	"go.trai.ch/tomobench/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// slowLeaseWait is the lease wait after which the wait is reported.
const slowLeaseWait = time.Second

// Outcome describes one Ensure call.
type Outcome struct {
	Key      domain.CacheKey
	Hit      bool
	Duration time.Duration
}

// Options tunes an Orchestrator.
type Options struct {
	// LeaseTimeout bounds the wait for a concurrent precompute.
	LeaseTimeout time.Duration
	// ScratchRoot is where private precompute directories are created.
	// Empty means the system temp dir.
	ScratchRoot string
}

// Orchestrator runs the prepare flow: check, lease, re-check, precompute, commit.
type Orchestrator struct {
	store  ports.OperatorStore
	leaser ports.Leaser
	tracer ports.Tracer
	logger ports.Logger
	opts   Options

	group singleflight.Group
}

// New creates an Orchestrator.
func New(
	store ports.OperatorStore,
	leaser ports.Leaser,
	tracer ports.Tracer,
	logger ports.Logger,
	opts Options,
) *Orchestrator {
	if opts.LeaseTimeout <= 0 {
		opts.LeaseTimeout = domain.DefaultLeaseTimeout
	}
	return &Orchestrator{
		store:  store,
		leaser: leaser,
		tracer: tracer,
		logger: logger,
		opts:   opts,
	}
}

// Ensure publishes the operators for geometry unless they already are.
// In-process callers for the same key share one flight; other processes
// serialize on the per-key lease. Nothing is committed unless the precompute
// produced every artifact.
func (o *Orchestrator) Ensure(ctx context.Context, precomputer ports.Precomputer, geometry domain.Geometry) (Outcome, error) {
	if err := geometry.Validate(); err != nil {
		return Outcome{}, err
	}
	key := domain.DeriveKey(geometry)

	v, err, _ := o.group.Do(key.String(), func() (any, error) {
		return o.ensure(ctx, precomputer, geometry, key)
	})
	if err != nil {
		return Outcome{Key: key}, err
	}
	return v.(Outcome), nil //nolint:forcetypeassert // ensure returns Outcome
}

func (o *Orchestrator) ensure(
	ctx context.Context,
	precomputer ports.Precomputer,
	geometry domain.Geometry,
	key domain.CacheKey,
) (Outcome, error) {
	ctx, span := o.tracer.Start(ctx, "prepare", ports.WithAttribute("key", key.String()))
	defer span.End()

	start := time.Now()
	hit := func() (Outcome, error) {
		span.SetAttribute("cache_hit", true)
		o.logger.Info("operators for " + key.String() + " already cached")
		return Outcome{Key: key, Hit: true, Duration: time.Since(start)}, nil
	}

	ok, err := o.store.Exists(ctx, key)
	if err != nil {
		span.RecordError(err)
		return Outcome{}, err
	}
	if ok {
		return hit()
	}

	lease, err := o.acquire(ctx, key)
	if err != nil {
		span.RecordError(err)
		return Outcome{}, err
	}
	defer func() {
		if err := lease.Release(); err != nil {
			o.logger.Warn("failed to release lease for " + key.String() + ": " + err.Error())
		}
	}()

	// A concurrent holder may have committed while we waited.
	ok, err = o.store.Exists(ctx, key)
	if err != nil {
		span.RecordError(err)
		return Outcome{}, err
	}
	if ok {
		return hit()
	}

	if err := o.precompute(ctx, precomputer, geometry, key); err != nil {
		span.RecordError(err)
		return Outcome{}, err
	}

	span.SetAttribute("cache_hit", false)
	return Outcome{Key: key, Duration: time.Since(start)}, nil
}

func (o *Orchestrator) acquire(ctx context.Context, key domain.CacheKey) (ports.Lease, error) {
	lctx, cancel := context.WithTimeout(ctx, o.opts.LeaseTimeout)
	defer cancel()

	start := time.Now()
	lease, err := o.leaser.Acquire(lctx, key)
	if err != nil {
		if ctx.Err() == nil && lctx.Err() != nil {
			err = errors.Join(domain.ErrLeaseTimeout, err)
		}
		return nil, zerr.With(zerr.With(zerr.Wrap(err, "failed to acquire precompute lease"),
			"key", key.String()), "timeout", o.opts.LeaseTimeout.String())
	}

	if waited := time.Since(start); waited >= slowLeaseWait {
		o.logger.Info("acquired lease for " + key.String() + " after " + waited.Round(time.Millisecond).String())
	}
	return lease, nil
}

func (o *Orchestrator) precompute(
	ctx context.Context,
	precomputer ports.Precomputer,
	geometry domain.Geometry,
	key domain.CacheKey,
) error {
	if o.opts.ScratchRoot != "" {
		if err := os.MkdirAll(o.opts.ScratchRoot, domain.DirPerm); err != nil {
			return zerr.With(zerr.Wrap(errors.Join(domain.ErrWorkDirFailed, err), "failed to create scratch root"),
				"path", o.opts.ScratchRoot)
		}
	}
	scratch, err := os.MkdirTemp(o.opts.ScratchRoot, key.String()+"-precompute-*")
	if err != nil {
		return zerr.Wrap(errors.Join(domain.ErrWorkDirFailed, err), "failed to create scratch directory")
	}
	defer os.RemoveAll(scratch) //nolint:errcheck // best-effort cleanup

	o.logger.Info("precomputing operators for " + key.String())
	if err := precomputer.Precompute(ctx, geometry, scratch); err != nil {
		if !errors.Is(err, domain.ErrPrecomputeFailed) {
			err = errors.Join(domain.ErrPrecomputeFailed, err)
		}
		return zerr.With(zerr.Wrap(err, "precompute failed"), "key", key.String())
	}

	set := domain.ArtifactSet{Dir: scratch}
	if err := set.Complete(); err != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrPrecomputeFailed, err),
			"precompute produced an incomplete artifact set"), "key", key.String())
	}

	return o.store.Commit(ctx, key, geometry, set)
}
