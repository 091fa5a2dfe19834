package domain

import (
	"os"
	"path/filepath"
)

const (
	// AppName is used for the cache directory and the tracer name.
	AppName = "tomobench"

	// OperatorsDirName is the name of the operator cache directory under the user cache dir.
	OperatorsDirName = "operators"

	// StagingDirName holds in-flight commits inside the cache root.
	StagingDirName = ".staging"

	// LocksDirName holds per-key lease files inside the cache root.
	LocksDirName = ".locks"

	// ManifestFileName describes a published cache entry.
	ManifestFileName = "manifest.json"

	// ConfigFileName is the name of the optional configuration file.
	ConfigFileName = "tomobench.yaml"

	// SinogramFileName is the raw sinogram exchanged with external engines.
	SinogramFileName = "sinogram.f32"

	// VolumeFileName is the raw volume exchanged with external engines.
	VolumeFileName = "volume.f32"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

const (
	// EnvCacheDir overrides the operator cache root.
	EnvCacheDir = "TOMOBENCH_CACHE_DIR"

	// EnvConfig points at an explicit configuration file.
	EnvConfig = "TOMOBENCH_CONFIG"

	// EnvRedisAddr overrides the Redis lease address.
	EnvRedisAddr = "TOMOBENCH_REDIS_ADDR"
)

// DefaultCacheRoot returns the operator cache root outside any working directory.
// It falls back to the system temp dir when no user cache dir is available.
func DefaultCacheRoot() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, AppName, OperatorsDirName)
}

// StagingPath returns the staging directory for a cache root.
func StagingPath(root string) string {
	return filepath.Join(root, StagingDirName)
}

// LockPath returns the lease file for a key under a cache root.
func LockPath(root string, key CacheKey) string {
	return filepath.Join(root, LocksDirName, key.String()+".lock")
}
