package opstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tomobench/internal/adapters/opstore"
	"go.trai.ch/tomobench/internal/core/domain"
)

func TestFactory_Open(t *testing.T) {
	var gotCfg domain.S3Config
	factory := opstore.NewFactoryWithS3(func(_ context.Context, cfg domain.S3Config) (opstore.S3API, error) {
		gotCfg = cfg
		return newFakeS3(), nil
	})

	cfg := domain.DefaultConfig()
	cfg.Cache.Root = t.TempDir()
	store, err := factory.Open(t.Context(), cfg)
	require.NoError(t, err)
	fsStore, ok := store.(*opstore.FileStore)
	require.True(t, ok)
	assert.Equal(t, cfg.Cache.Root, fsStore.Root())

	cfg.Cache.Backend = domain.StoreS3
	cfg.Cache.S3 = domain.S3Config{Bucket: "ops", Region: "eu-west-1"}
	store, err = factory.Open(t.Context(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &opstore.S3Store{}, store)
	assert.Equal(t, "eu-west-1", gotCfg.Region)

	cfg.Cache.Backend = "ftp"
	_, err = factory.Open(t.Context(), cfg)
	require.ErrorIs(t, err, domain.ErrConfigInvalid)
}
