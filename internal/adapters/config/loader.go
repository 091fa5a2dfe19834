// Package config provides the configuration loader for tomobench.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/tomobench/internal/core/domain"
	"go.trai.ch/tomobench/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

var _ ports.ConfigLoader = (*Loader)(nil)

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load resolves the configuration file, applies it over the defaults and then
// applies environment overrides. The explicit path wins over TOMOBENCH_CONFIG,
// which wins over searching from cwd upwards.
func (l *Loader) Load(cwd, path string) (*domain.Config, error) {
	if path == "" {
		path = os.Getenv(domain.EnvConfig)
	}
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}

	if path == "" {
		path = findConfiguration(cwd)
	} else if _, err := os.Stat(path); err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrConfigReadFailed, err), "config file not accessible"), "path", path)
	}

	cfg := domain.DefaultConfig()
	if path != "" {
		file, err := readFile(path)
		if err != nil {
			return nil, zerr.With(err, "path", path)
		}
		if err := apply(cfg, file, filepath.Dir(path)); err != nil {
			return nil, zerr.With(err, "path", path)
		}
	}

	l.applyEnv(cfg, cwd)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfiguration walks from cwd to the filesystem root and returns the first
// config file found, or "" when there is none.
func findConfiguration(cwd string) string {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// readFile decodes a config file, rejecting unknown keys.
func readFile(path string) (*File, error) {
	// #nosec G304 -- path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.Wrap(errors.Join(domain.ErrConfigReadFailed, err), "read config")
	}

	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, zerr.Wrap(errors.Join(domain.ErrConfigParseFailed, err), "parse config")
	}
	return &file, nil
}

//nolint:cyclop // flat field-by-field merge
func apply(cfg *domain.Config, file *File, configDir string) error {
	if c := file.Cache; c != nil {
		if c.Root != "" {
			cfg.Cache.Root = resolvePath(configDir, c.Root)
		}
		if c.Backend != "" {
			cfg.Cache.Backend = domain.StoreKind(c.Backend)
		}
		if s := c.S3; s != nil {
			cfg.Cache.S3 = domain.S3Config{
				Bucket:    s.Bucket,
				Prefix:    s.Prefix,
				Region:    s.Region,
				Profile:   s.Profile,
				Endpoint:  s.Endpoint,
				PathStyle: s.PathStyle,
			}
		}
	}

	if le := file.Lease; le != nil {
		if le.Backend != "" {
			cfg.Lease.Backend = domain.LeaseKind(le.Backend)
		}
		if le.Timeout != 0 {
			cfg.Lease.Timeout = le.Timeout
		}
		if r := le.Redis; r != nil {
			cfg.Lease.Redis.Addr = r.Addr
			cfg.Lease.Redis.Password = r.Password
			cfg.Lease.Redis.DB = r.DB
			if r.TTL != 0 {
				cfg.Lease.Redis.TTL = r.TTL
			}
			if r.Poll != 0 {
				cfg.Lease.Redis.Poll = r.Poll
			}
		}
	}

	if file.WorkDir != "" {
		cfg.WorkDir = resolvePath(configDir, file.WorkDir)
	}
	if file.LogFormat != "" {
		cfg.LogFormat = file.LogFormat
	}

	for name, dto := range file.Backends {
		backend, err := domain.ParseBackend(name)
		if err != nil {
			return zerr.Wrap(err, "unknown backend in config")
		}
		if dto == nil {
			continue
		}
		cfg.Engines[backend] = domain.EngineConfig{Command: dto.Command}
	}

	return nil
}

func (l *Loader) applyEnv(cfg *domain.Config, cwd string) {
	if dir := os.Getenv(domain.EnvCacheDir); dir != "" {
		cfg.Cache.Root = resolvePath(cwd, dir)
		if cfg.Cache.Backend != domain.StoreFS && l.Logger != nil {
			l.Logger.Warn(fmt.Sprintf("%s is set but the cache backend is %s", domain.EnvCacheDir, cfg.Cache.Backend))
		}
	}
	if addr := os.Getenv(domain.EnvRedisAddr); addr != "" {
		cfg.Lease.Redis.Addr = addr
	}
}

//nolint:cyclop // one check per setting
func validate(cfg *domain.Config) error {
	switch cfg.Cache.Backend {
	case domain.StoreFS:
		if cfg.Cache.Root == "" {
			return zerr.Wrap(domain.ErrConfigInvalid, "cache root is empty")
		}
	case domain.StoreS3:
		if cfg.Cache.S3.Bucket == "" {
			return zerr.Wrap(domain.ErrConfigInvalid, "cache.s3.bucket is required for the s3 backend")
		}
	default:
		return zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "unknown cache backend"), "backend", cfg.Cache.Backend)
	}

	switch cfg.Lease.Backend {
	case domain.LeaseFile:
		if cfg.Cache.Root == "" {
			return zerr.Wrap(domain.ErrConfigInvalid, "the file lease needs a cache root for its lock files")
		}
	case domain.LeaseRedis:
		if cfg.Lease.Redis.Addr == "" {
			return zerr.Wrap(domain.ErrConfigInvalid, "lease.redis.addr is required for the redis lease")
		}
		if cfg.Lease.Redis.TTL <= 0 || cfg.Lease.Redis.Poll <= 0 {
			return zerr.Wrap(domain.ErrConfigInvalid, "lease.redis ttl and poll must be positive")
		}
	default:
		return zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "unknown lease backend"), "backend", cfg.Lease.Backend)
	}

	if cfg.Lease.Timeout <= 0 {
		return zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "lease timeout must be positive"), "timeout", cfg.Lease.Timeout)
	}

	switch cfg.LogFormat {
	case "", "auto", "pretty", "text", "json":
	default:
		return zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "unknown log format"), "log_format", cfg.LogFormat)
	}

	return nil
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(base, p))
}
