package app_test

import (
	"context"
	"os"
	"testing"

	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tomobench/internal/app"
	_ "go.trai.ch/tomobench/internal/wiring" // Register providers
)

func TestAppWiring(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	defer func() {
		errChdir := os.Chdir(cwd)
		require.NoError(t, errChdir)
	}()

	err = os.Chdir(t.TempDir())
	require.NoError(t, err)

	components, _, err := graft.ExecuteFor[*app.Components](context.Background())
	require.NoError(t, err)
	require.NotNil(t, components)
	require.NotNil(t, components.App)
	require.NotNil(t, components.Logger)
}
