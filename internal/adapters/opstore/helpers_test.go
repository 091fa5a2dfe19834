package opstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/tomobench/internal/core/domain"
)

var testGeometry = domain.Geometry{Width: 64, NumProjections: 32, NumSlices: 1}

// makeArtifacts writes a complete set whose contents depend on tag.
func makeArtifacts(t *testing.T, tag string) domain.ArtifactSet {
	t.Helper()

	set := domain.ArtifactSet{Dir: t.TempDir()}
	for _, kind := range domain.ArtifactKinds {
		content := []byte(tag + ":" + string(kind) + ":payload")
		require.NoError(t, os.WriteFile(set.Path(kind), content, domain.FilePerm))
	}
	return set
}

func readSet(t *testing.T, set domain.ArtifactSet) map[domain.ArtifactKind]string {
	t.Helper()

	out := make(map[domain.ArtifactKind]string)
	for _, kind := range domain.ArtifactKinds {
		data, err := os.ReadFile(set.Path(kind))
		require.NoError(t, err)
		out[kind] = string(data)
	}
	return out
}

func assertNoArtifacts(t *testing.T, dir string) {
	t.Helper()

	for _, kind := range domain.ArtifactKinds {
		_, err := os.Stat(filepath.Join(dir, kind.FileName()))
		require.True(t, os.IsNotExist(err), "%s should not exist", kind.FileName())
	}
}
