package recon

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"

	"go.trai.ch/tomobench/internal/adapters/shell"
	"go.trai.ch/tomobench/internal/core/domain"
	"go.trai.ch/tomobench/internal/core/ports"
	"go.trai.ch/zerr"
)

// Runner executes a helper command.
type Runner interface {
	Run(ctx context.Context, c shell.Command) error
}

// Process drives a native toolkit through a helper command. The helper is
// invoked as
//
//	<command...> precompute --width W --num-projections P --num-slices S --out DIR
//	<command...> adjoint --width W --num-projections P --num-slices S --operators DIR
//	    --center C --sinogram FILE --volume FILE [--algorithm A]
//
// and exchanges arrays as raw little-endian float32 files.
type Process struct {
	backend   domain.Backend
	algorithm domain.Algorithm
	argv      []string
	runner    Runner
}

var (
	_ ports.Precomputer   = (*Process)(nil)
	_ ports.Reconstructor = (*Process)(nil)
)

// NewProcess creates a Process engine running argv through runner.
func NewProcess(backend domain.Backend, algorithm domain.Algorithm, argv []string, runner Runner) *Process {
	return &Process{backend: backend, algorithm: algorithm, argv: argv, runner: runner}
}

func (p *Process) command(sub string, g domain.Geometry, dir string, extra ...string) shell.Command {
	argv := make([]string, 0, len(p.argv)+8+len(extra))
	argv = append(argv, p.argv...)
	argv = append(argv, sub,
		"--width", strconv.Itoa(g.Width),
		"--num-projections", strconv.Itoa(g.NumProjections),
		"--num-slices", strconv.Itoa(g.NumSlices),
	)
	argv = append(argv, extra...)
	return shell.Command{
		Argv: argv,
		Dir:  dir,
		Env:  map[string]string{"TOMOBENCH_BACKEND": p.backend.String()},
	}
}

// Precompute runs the helper's precompute step with outDir as its explicit output location.
func (p *Process) Precompute(ctx context.Context, g domain.Geometry, outDir string) error {
	if err := p.runner.Run(ctx, p.command("precompute", g, outDir, "--out", outDir)); err != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrPrecomputeFailed, err), "helper precompute failed"),
			"backend", p.backend.String())
	}
	return nil
}

// Initialize checks that the operators are in place. The helper itself is
// started per adjoint call.
func (p *Process) Initialize(ctx context.Context, g domain.Geometry, dir string) (ports.Session, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, zerr.Wrap(errors.Join(domain.ErrEngineInitFailed, err), "initialization interrupted")
	}
	if p.backend.UsesOperatorCache() {
		if err := (domain.ArtifactSet{Dir: dir}).Complete(); err != nil {
			return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrEngineInitFailed, err), "operators not in place"),
				"backend", p.backend.String())
		}
	}
	return &processSession{engine: p, geometry: g, dir: dir}, nil
}

type processSession struct {
	engine   *Process
	geometry domain.Geometry
	dir      string
}

func (s *processSession) Adjoint(ctx context.Context, sinogram *domain.Array3, center float64) (*domain.Array3, error) {
	g := s.geometry
	if err := sinogram.ExpectShape(g.SinogramShape()); err != nil {
		return nil, zerr.With(err, "operand", "sinogram")
	}

	sinoPath := filepath.Join(s.dir, domain.SinogramFileName)
	volPath := filepath.Join(s.dir, domain.VolumeFileName)
	if err := WriteRaw(sinoPath, sinogram); err != nil {
		return nil, zerr.Wrap(errors.Join(domain.ErrReconstructionFailed, err), "failed to hand over sinogram")
	}

	extra := []string{
		"--operators", s.dir,
		"--center", strconv.FormatFloat(center, 'g', -1, 64),
		"--sinogram", sinoPath,
		"--volume", volPath,
	}
	if s.engine.algorithm != "" {
		extra = append(extra, "--algorithm", string(s.engine.algorithm))
	}
	if err := s.engine.runner.Run(ctx, s.engine.command("adjoint", g, s.dir, extra...)); err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrReconstructionFailed, err), "helper adjoint failed"),
			"backend", s.engine.backend.String())
	}

	volume, err := ReadRaw(volPath, g.VolumeShape())
	if err != nil {
		return nil, zerr.Wrap(errors.Join(domain.ErrReconstructionFailed, err), "failed to read volume")
	}
	return volume, nil
}

func (s *processSession) Close() error {
	return nil
}
