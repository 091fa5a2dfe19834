package recon_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tomobench/internal/adapters/recon"
	"go.trai.ch/tomobench/internal/adapters/shell"
	"go.trai.ch/tomobench/internal/core/domain"
)

// fakeHelper stands in for a helper command: precompute writes the artifacts,
// adjoint writes a volume of volumeLen float32 values set to 2.
type fakeHelper struct {
	calls     []shell.Command
	volumeLen int
	err       error
}

func (f *fakeHelper) Run(_ context.Context, c shell.Command) error {
	f.calls = append(f.calls, c)
	if f.err != nil {
		return f.err
	}

	switch {
	case slices.Contains(c.Argv, "precompute"):
		out := flagValue(c.Argv, "--out")
		for _, kind := range domain.ArtifactKinds {
			if err := os.WriteFile(filepath.Join(out, kind.FileName()), []byte(kind), domain.FilePerm); err != nil {
				return err
			}
		}
	case slices.Contains(c.Argv, "adjoint"):
		if _, err := os.Stat(flagValue(c.Argv, "--sinogram")); err != nil {
			return err
		}
		vol := domain.NewArray3(domain.Shape{1, 1, f.volumeLen})
		for i := range vol.Data {
			vol.Data[i] = 2
		}
		return recon.WriteRaw(flagValue(c.Argv, "--volume"), vol)
	}
	return nil
}

func flagValue(argv []string, name string) string {
	i := slices.Index(argv, name)
	if i < 0 || i+1 >= len(argv) {
		return ""
	}
	return argv[i+1]
}

func TestProcess_Precompute(t *testing.T) {
	helper := &fakeHelper{}
	engine := recon.NewProcess(domain.BackendLprec, "", []string{"python3", "lprec_helper.py"}, helper)

	out := t.TempDir()
	require.NoError(t, engine.Precompute(t.Context(), benchGeometry, out))
	require.NoError(t, domain.ArtifactSet{Dir: out}.Complete())

	require.Len(t, helper.calls, 1)
	assert.Equal(t, []string{
		"python3", "lprec_helper.py", "precompute",
		"--width", "64", "--num-projections", "32", "--num-slices", "1",
		"--out", out,
	}, helper.calls[0].Argv)
	assert.Equal(t, "lprec", helper.calls[0].Env["TOMOBENCH_BACKEND"])
}

func TestProcess_PrecomputeFailure(t *testing.T) {
	helper := &fakeHelper{err: errors.New("exit status 1")}
	engine := recon.NewProcess(domain.BackendLprec, "", []string{"helper"}, helper)

	err := engine.Precompute(t.Context(), benchGeometry, t.TempDir())
	require.ErrorIs(t, err, domain.ErrPrecomputeFailed)
}

func TestProcess_Adjoint(t *testing.T) {
	helper := &fakeHelper{volumeLen: 64 * 64}
	engine := recon.NewProcess(domain.BackendTomopy, domain.AlgorithmGridrec, []string{"helper"}, helper)

	dir := t.TempDir()
	session, err := engine.Initialize(t.Context(), benchGeometry, dir)
	require.NoError(t, err)

	volume, err := session.Adjoint(t.Context(), domain.NewArray3(benchGeometry.SinogramShape()), 32)
	require.NoError(t, err)
	require.NoError(t, volume.ExpectShape(benchGeometry.VolumeShape()))
	assert.InDelta(t, 2, volume.At(0, 63, 63), 0)

	require.Len(t, helper.calls, 1)
	argv := helper.calls[0].Argv
	assert.Equal(t, "adjoint", argv[1])
	assert.Equal(t, "32", flagValue(argv, "--center"))
	assert.Equal(t, "gridrec", flagValue(argv, "--algorithm"))
	assert.Equal(t, dir, flagValue(argv, "--operators"))
	assert.Equal(t, filepath.Join(dir, domain.SinogramFileName), flagValue(argv, "--sinogram"))
	require.NoError(t, session.Close())
}

func TestProcess_InitializeRequiresOperators(t *testing.T) {
	engine := recon.NewProcess(domain.BackendLprec, "", []string{"helper"}, &fakeHelper{})

	_, err := engine.Initialize(t.Context(), benchGeometry, t.TempDir())
	require.ErrorIs(t, err, domain.ErrEngineInitFailed)
	require.ErrorIs(t, err, domain.ErrIncompleteArtifacts)
}

func TestProcess_AdjointFailures(t *testing.T) {
	t.Run("helper fails", func(t *testing.T) {
		helper := &fakeHelper{err: errors.New("exit status 2")}
		session, err := recon.NewProcess(domain.BackendAstra, "", []string{"helper"}, helper).
			Initialize(t.Context(), benchGeometry, t.TempDir())
		require.NoError(t, err)

		_, err = session.Adjoint(t.Context(), domain.NewArray3(benchGeometry.SinogramShape()), 32)
		require.ErrorIs(t, err, domain.ErrReconstructionFailed)
	})

	t.Run("volume of wrong size", func(t *testing.T) {
		helper := &fakeHelper{volumeLen: 10}
		session, err := recon.NewProcess(domain.BackendAstra, "", []string{"helper"}, helper).
			Initialize(t.Context(), benchGeometry, t.TempDir())
		require.NoError(t, err)

		_, err = session.Adjoint(t.Context(), domain.NewArray3(benchGeometry.SinogramShape()), 32)
		require.ErrorIs(t, err, domain.ErrReconstructionFailed)
		require.ErrorIs(t, err, domain.ErrShapeMismatch)
	})

	t.Run("sinogram of wrong shape", func(t *testing.T) {
		helper := &fakeHelper{}
		session, err := recon.NewProcess(domain.BackendAstra, "", []string{"helper"}, helper).
			Initialize(t.Context(), benchGeometry, t.TempDir())
		require.NoError(t, err)

		_, err = session.Adjoint(t.Context(), domain.NewArray3(domain.Shape{1, 64, 64}), 32)
		require.ErrorIs(t, err, domain.ErrShapeMismatch)
		assert.Empty(t, helper.calls)
	})
}
