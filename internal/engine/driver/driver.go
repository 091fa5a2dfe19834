// Package driver runs one timed reconstruction against an initialized engine.
package driver

import (
	"context"
	"errors"
	"time"

	"go.trai.ch/tomobench/internal/core/domain"
	"go.trai.ch/tomobench/internal/core/ports"
	"go.trai.ch/zerr"
)

// Result is the outcome of a reconstruction.
type Result struct {
	Volume *domain.Array3
	Timing domain.Timing
}

// Driver fetches operators into a private work directory and times engine
// initialization and the adjoint separately. It never precomputes.
type Driver struct {
	store   ports.OperatorStore
	tracer  ports.Tracer
	logger  ports.Logger
	workDir string
}

// New creates a Driver materializing operators into workDir.
func New(store ports.OperatorStore, tracer ports.Tracer, logger ports.Logger, workDir string) *Driver {
	return &Driver{store: store, tracer: tracer, logger: logger, workDir: workDir}
}

// Reconstruct back-projects sinogram with the given engine.
func (d *Driver) Reconstruct(
	ctx context.Context,
	backend domain.Backend,
	reconstructor ports.Reconstructor,
	geometry domain.Geometry,
	sinogram *domain.Array3,
	center float64,
) (Result, error) {
	if err := geometry.Validate(); err != nil {
		return Result{}, err
	}
	if err := sinogram.ExpectShape(geometry.SinogramShape()); err != nil {
		return Result{}, zerr.With(err, "operand", "sinogram")
	}

	ctx, span := d.tracer.Start(ctx, "execute",
		ports.WithAttribute("backend", backend.String()),
		ports.WithAttribute("key", domain.DeriveKey(geometry).String()),
	)
	defer span.End()

	var timing domain.Timing

	if backend.UsesOperatorCache() {
		elapsed, err := d.fetch(ctx, geometry)
		if err != nil {
			span.RecordError(err)
			return Result{}, err
		}
		timing.Fetch = elapsed
	}

	start := time.Now()
	session, err := reconstructor.Initialize(ctx, geometry, d.workDir)
	timing.Initialize = time.Since(start)
	if err != nil {
		if !errors.Is(err, domain.ErrEngineInitFailed) {
			err = errors.Join(domain.ErrEngineInitFailed, err)
		}
		err = zerr.With(zerr.Wrap(err, "engine initialization failed"), "backend", backend.String())
		span.RecordError(err)
		return Result{}, err
	}
	defer func() {
		if err := session.Close(); err != nil {
			d.logger.Warn("failed to close " + backend.String() + " session: " + err.Error())
		}
	}()

	start = time.Now()
	volume, err := session.Adjoint(ctx, sinogram, center)
	timing.Adjoint = time.Since(start)
	if err != nil {
		if !errors.Is(err, domain.ErrReconstructionFailed) {
			err = errors.Join(domain.ErrReconstructionFailed, err)
		}
		err = zerr.With(zerr.Wrap(err, "adjoint failed"), "backend", backend.String())
		span.RecordError(err)
		return Result{}, err
	}
	if err := volume.ExpectShape(geometry.VolumeShape()); err != nil {
		err = zerr.With(zerr.Wrap(errors.Join(domain.ErrReconstructionFailed, err), "engine returned a malformed volume"),
			"backend", backend.String())
		span.RecordError(err)
		return Result{}, err
	}

	span.SetAttribute("initialize", timing.Initialize)
	span.SetAttribute("adjoint", timing.Adjoint)
	return Result{Volume: volume, Timing: timing}, nil
}

func (d *Driver) fetch(ctx context.Context, geometry domain.Geometry) (time.Duration, error) {
	key := domain.DeriveKey(geometry)

	ctx, span := d.tracer.Start(ctx, "fetch", ports.WithAttribute("key", key.String()))
	defer span.End()

	start := time.Now()
	_, err := d.store.Fetch(ctx, key, d.workDir)
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			err = zerr.With(zerr.Wrap(errors.Join(domain.ErrNotPrepared, err), "no operators published"),
				"key", key.String())
		}
		span.RecordError(err)
		return elapsed, err
	}

	span.SetAttribute("fetch", elapsed)
	return elapsed, nil
}
