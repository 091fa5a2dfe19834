// Package recon provides the reconstruction engines behind ports.Reconstructor:
// an in-process reference engine and a driver for external helper commands.
package recon

import (
	"context"
	"errors"
	"math"
	"os"

	"go.trai.ch/tomobench/internal/core/domain"
	"go.trai.ch/tomobench/internal/core/ports"
	"go.trai.ch/zerr"
	"gonum.org/v1/gonum/floats"
)

// Reference is a pure-Go parallel-beam engine. Operator-backed backends load
// their angle and grid tables from precomputed artifacts; the others build
// them at Initialize. Filtered backends apply a Ram-Lak filter along the
// detector axis before back-projecting.
type Reference struct {
	backend  domain.Backend
	cached   bool
	filtered bool
}

var (
	_ ports.Precomputer   = (*Reference)(nil)
	_ ports.Reconstructor = (*Reference)(nil)
)

// NewReference creates the reference engine for a backend. lprec performs the
// unfiltered adjoint; astra and tomopy reconstruct with filtered back-projection.
func NewReference(backend domain.Backend) *Reference {
	return &Reference{
		backend:  backend,
		cached:   backend.UsesOperatorCache(),
		filtered: !backend.UsesOperatorCache(),
	}
}

// tables are the geometry-dependent operators.
type tables struct {
	angles []float64 // forward: projection angles over [0, π)
	trig   []float64 // adjoint: cos and sin per angle, interleaved
	grid   []float64 // lookup: pixel-centre offsets from the volume centre
}

func buildTables(g domain.Geometry) tables {
	// linspace(0, π, P, endpoint=False)
	angles := floats.Span(make([]float64, g.NumProjections+1), 0, math.Pi)[:g.NumProjections]

	trig := make([]float64, 2*g.NumProjections)
	for p, theta := range angles {
		trig[2*p], trig[2*p+1] = math.Cos(theta), math.Sin(theta)
	}

	grid := make([]float64, g.Width)
	half := float64(g.Width) / 2
	for i := range grid {
		grid[i] = float64(i) + 0.5 - half
	}

	return tables{angles: angles, trig: trig, grid: grid}
}

func (t tables) payload(kind domain.ArtifactKind) []float64 {
	switch kind {
	case domain.ArtifactForward:
		return t.angles
	case domain.ArtifactAdjoint:
		return t.trig
	default:
		return t.grid
	}
}

func payloadLen(kind domain.ArtifactKind, g domain.Geometry) int {
	switch kind {
	case domain.ArtifactForward:
		return g.NumProjections
	case domain.ArtifactAdjoint:
		return 2 * g.NumProjections
	default:
		return g.Width
	}
}

// Precompute writes the three operator artifacts for g into outDir.
func (r *Reference) Precompute(ctx context.Context, g domain.Geometry, outDir string) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrPrecomputeFailed, err), "failed to create output directory"),
			"dir", outDir)
	}

	t := buildTables(g)
	set := domain.ArtifactSet{Dir: outDir}
	for _, kind := range domain.ArtifactKinds {
		if err := ctx.Err(); err != nil {
			return zerr.Wrap(errors.Join(domain.ErrPrecomputeFailed, err), "precompute interrupted")
		}
		if err := writeArtifact(set.Path(kind), kind, g, t.payload(kind)); err != nil {
			return zerr.With(zerr.Wrap(errors.Join(domain.ErrPrecomputeFailed, err), "failed to write artifact"),
				"path", set.Path(kind))
		}
	}
	return nil
}

// Initialize loads the operator tables from dir for cache-backed backends and
// builds them in memory otherwise.
func (r *Reference) Initialize(ctx context.Context, g domain.Geometry, dir string) (ports.Session, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, zerr.Wrap(errors.Join(domain.ErrEngineInitFailed, err), "initialization interrupted")
	}

	if !r.cached {
		return &referenceSession{geometry: g, tables: buildTables(g), filtered: r.filtered}, nil
	}

	set := domain.ArtifactSet{Dir: dir}
	loaded := make(map[domain.ArtifactKind][]float64, len(domain.ArtifactKinds))
	for _, kind := range domain.ArtifactKinds {
		values, err := readArtifact(set.Path(kind), kind, g, payloadLen(kind, g))
		if err != nil {
			return nil, zerr.With(zerr.With(zerr.Wrap(errors.Join(domain.ErrEngineInitFailed, err),
				"failed to load operator"), "path", set.Path(kind)), "backend", r.backend.String())
		}
		loaded[kind] = values
	}

	return &referenceSession{
		geometry: g,
		tables: tables{
			angles: loaded[domain.ArtifactForward],
			trig:   loaded[domain.ArtifactAdjoint],
			grid:   loaded[domain.ArtifactLookup],
		},
		filtered: r.filtered,
	}, nil
}

type referenceSession struct {
	geometry domain.Geometry
	tables   tables
	filtered bool
	closed   bool
}

// Adjoint back-projects every slice: each pixel accumulates the detector bin
// its centre projects onto at every angle, scaled by π/P.
func (s *referenceSession) Adjoint(ctx context.Context, sinogram *domain.Array3, center float64) (*domain.Array3, error) {
	if s.closed {
		return nil, zerr.Wrap(domain.ErrReconstructionFailed, "session is closed")
	}
	g := s.geometry
	if err := sinogram.ExpectShape(g.SinogramShape()); err != nil {
		return nil, zerr.With(err, "operand", "sinogram")
	}

	w, np := g.Width, g.NumProjections
	volume := domain.NewArray3(g.VolumeShape())
	row := make([]float64, w)
	scale := math.Pi / float64(np)

	for sl := range g.NumSlices {
		if err := ctx.Err(); err != nil {
			return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrReconstructionFailed, err),
				"reconstruction interrupted"), "slice", sl)
		}

		plane := sinogram.Slice(sl)
		if s.filtered {
			plane = rampFilter(plane, w, np)
		}

		for iy := range w {
			y := s.tables.grid[iy]
			for ix := range w {
				x := s.tables.grid[ix]
				var sum float64
				for p := range np {
					t := x*s.tables.trig[2*p] + y*s.tables.trig[2*p+1] + center
					d := int(math.Floor(t))
					if d >= 0 && d < w {
						sum += float64(plane[d*np+p])
					}
				}
				row[ix] = sum
			}
			floats.Scale(scale, row)

			out := volume.Slice(sl)[iy*w : (iy+1)*w]
			for ix, v := range row {
				out[ix] = float32(v)
			}
		}
	}

	return volume, nil
}

func (s *referenceSession) Close() error {
	s.closed = true
	return nil
}

// rampFilter convolves every projection of a [width][projections] plane with
// the spatial Ram-Lak kernel.
func rampFilter(plane []float32, w, np int) []float32 {
	kernel := make([]float64, w)
	kernel[0] = 0.25
	for n := 1; n < w; n += 2 {
		kernel[n] = -1 / (math.Pi * math.Pi * float64(n*n))
	}

	out := make([]float32, len(plane))
	column := make([]float64, w)
	for p := range np {
		for d := range w {
			column[d] = float64(plane[d*np+p])
		}
		for d := range w {
			var acc float64
			for k := range w {
				dist := d - k
				if dist < 0 {
					dist = -dist
				}
				acc += kernel[dist] * column[k]
			}
			out[d*np+p] = float32(acc)
		}
	}
	return out
}
