package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tomobench/internal/adapters/config"
	"go.trai.ch/tomobench/internal/core/domain"
	"go.trai.ch/tomobench/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	t.Setenv(domain.EnvConfig, "")
	t.Setenv(domain.EnvCacheDir, "")
	t.Setenv(domain.EnvRedisAddr, "")

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	return config.NewLoader(log)
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, domain.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	return path
}

func TestLoader_Defaults(t *testing.T) {
	loader := newLoader(t)

	cfg, err := loader.Load(t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultCacheRoot(), cfg.Cache.Root)
	assert.Equal(t, domain.StoreFS, cfg.Cache.Backend)
	assert.Equal(t, domain.LeaseFile, cfg.Lease.Backend)
	assert.Equal(t, domain.DefaultLeaseTimeout, cfg.Lease.Timeout)
	assert.Equal(t, "auto", cfg.LogFormat)
	assert.Empty(t, cfg.Engines)
}

func TestLoader_DiscoversFromParent(t *testing.T) {
	loader := newLoader(t)
	root := t.TempDir()
	writeConfig(t, root, `
cache:
  root: ops
lease:
  timeout: 5m
work_dir: scratch
log_format: json
backends:
  lprec:
    command: ["lprec-helper", "--gpu", "0"]
`)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))

	cfg, err := loader.Load(nested, "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "ops"), cfg.Cache.Root, "relative roots resolve against the config file")
	assert.Equal(t, filepath.Join(root, "scratch"), cfg.WorkDir)
	assert.Equal(t, 5*time.Minute, cfg.Lease.Timeout)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, []string{"lprec-helper", "--gpu", "0"}, cfg.Engines[domain.BackendLprec].Command)
}

func TestLoader_ExplicitPath(t *testing.T) {
	loader := newLoader(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cache:
  backend: s3
  s3:
    bucket: operators
    prefix: bench/
    region: eu-central-1
    endpoint: http://localhost:9000
    path_style: true
lease:
  backend: redis
  redis:
    addr: localhost:6379
    db: 2
    ttl: 10s
`), domain.FilePerm))

	cfg, err := loader.Load(t.TempDir(), path)
	require.NoError(t, err)

	assert.Equal(t, domain.StoreS3, cfg.Cache.Backend)
	assert.Equal(t, domain.S3Config{
		Bucket: "operators", Prefix: "bench/", Region: "eu-central-1",
		Endpoint: "http://localhost:9000", PathStyle: true,
	}, cfg.Cache.S3)
	assert.Equal(t, domain.LeaseRedis, cfg.Lease.Backend)
	assert.Equal(t, "localhost:6379", cfg.Lease.Redis.Addr)
	assert.Equal(t, 2, cfg.Lease.Redis.DB)
	assert.Equal(t, 10*time.Second, cfg.Lease.Redis.TTL)
	assert.Equal(t, domain.DefaultRedisPoll, cfg.Lease.Redis.Poll)
}

func TestLoader_EnvOverrides(t *testing.T) {
	loader := newLoader(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lease:\n  backend: redis\n"), domain.FilePerm))

	t.Setenv(domain.EnvConfig, path)
	t.Setenv(domain.EnvCacheDir, "/srv/ops")
	t.Setenv(domain.EnvRedisAddr, "redis:6379")

	cfg, err := loader.Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, "/srv/ops", cfg.Cache.Root)
	assert.Equal(t, "redis:6379", cfg.Lease.Redis.Addr)
	assert.Equal(t, domain.LeaseRedis, cfg.Lease.Backend)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"malformed yaml", "cache: [", domain.ErrConfigParseFailed},
		{"unknown key", "cahce:\n  root: x\n", domain.ErrConfigParseFailed},
		{"bad duration", "lease:\n  timeout: soon\n", domain.ErrConfigParseFailed},
		{"unknown store", "cache:\n  backend: ftp\n", domain.ErrConfigInvalid},
		{"s3 without bucket", "cache:\n  backend: s3\n", domain.ErrConfigInvalid},
		{"redis without addr", "lease:\n  backend: redis\n", domain.ErrConfigInvalid},
		{"unknown lease", "lease:\n  backend: etcd\n", domain.ErrConfigInvalid},
		{"negative timeout", "lease:\n  timeout: -1s\n", domain.ErrConfigInvalid},
		{"unknown log format", "log_format: xml\n", domain.ErrConfigInvalid},
		{"unknown engine", "backends:\n  fbp:\n    command: [x]\n", domain.ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := newLoader(t)
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, err := loader.Load(dir, "")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoader_MissingExplicitFile(t *testing.T) {
	loader := newLoader(t)

	_, err := loader.Load(t.TempDir(), "does-not-exist.yaml")
	require.ErrorIs(t, err, domain.ErrConfigReadFailed)
}

func TestLoader_EmptyFile(t *testing.T) {
	loader := newLoader(t)
	dir := t.TempDir()
	writeConfig(t, dir, "")

	cfg, err := loader.Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StoreFS, cfg.Cache.Backend)
}
