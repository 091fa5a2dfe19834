// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/tomobench/internal/core/domain"
)

//go:generate mockgen -source=reconstructor.go -destination=mocks/mock_reconstructor.go -package=mocks

// Precomputer builds the geometry-dependent operators an engine needs before it can run.
type Precomputer interface {
	// Precompute writes every operator artifact for the geometry into outDir.
	// It is expensive and deterministic for a given geometry.
	Precompute(ctx context.Context, geometry domain.Geometry, outDir string) error
}

// Reconstructor is the opaque capability boundary of a reconstruction engine.
type Reconstructor interface {
	// Initialize prepares the engine's runtime state. Engines backed by the operator
	// cache read their artifacts from dir.
	Initialize(ctx context.Context, geometry domain.Geometry, dir string) (Session, error)
}

// Session is an initialized engine ready to reconstruct.
type Session interface {
	// Adjoint back-projects a [slices][width][projections] sinogram into a
	// [slices][width][width] volume around the given rotation centre.
	Adjoint(ctx context.Context, sinogram *domain.Array3, center float64) (*domain.Array3, error)

	// Close releases the engine's runtime state.
	Close() error
}

// EngineRegistry resolves the configured engine for a backend.
type EngineRegistry interface {
	// Reconstructor returns the engine for the backend.
	Reconstructor(backend domain.Backend, algorithm domain.Algorithm) (Reconstructor, error)

	// Precomputer returns the operator builder for a backend that uses the operator cache.
	Precomputer(backend domain.Backend) (Precomputer, error)
}
