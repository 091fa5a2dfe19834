package recon_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tomobench/internal/adapters/recon"
	"go.trai.ch/tomobench/internal/core/domain"
)

func TestRawCodec(t *testing.T) {
	path := filepath.Join(t.TempDir(), domain.SinogramFileName)
	a := domain.NewArray3(domain.Shape{2, 3, 4})
	for i := range a.Data {
		a.Data[i] = float32(i) - 3.5
	}

	require.NoError(t, recon.WriteRaw(path, a))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(4*24), info.Size(), "headerless float32")

	got, err := recon.ReadRaw(path, domain.Shape{2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, a, got)

	_, err = recon.ReadRaw(path, domain.Shape{2, 3, 5})
	require.ErrorIs(t, err, domain.ErrShapeMismatch)

	_, err = recon.ReadRaw(filepath.Join(t.TempDir(), "missing"), domain.Shape{1, 1, 1})
	require.Error(t, err)
}

func TestRawCodec_LittleEndian(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.f32")
	a := domain.NewArray3(domain.Shape{1, 1, 1})
	a.Data[0] = 1

	require.NoError(t, recon.WriteRaw(path, a))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, data)
}
