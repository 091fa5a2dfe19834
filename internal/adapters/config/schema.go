package config

import "time"

// File is the structure of tomobench.yaml. Pointer fields distinguish an
// absent key from an explicit zero.
type File struct {
	Cache     *CacheDTO              `yaml:"cache"`
	Lease     *LeaseDTO              `yaml:"lease"`
	WorkDir   string                 `yaml:"work_dir"`
	LogFormat string                 `yaml:"log_format"`
	Backends  map[string]*BackendDTO `yaml:"backends"`
}

// CacheDTO configures the operator store.
type CacheDTO struct {
	Root    string `yaml:"root"`
	Backend string `yaml:"backend"`
	S3      *S3DTO `yaml:"s3"`
}

// S3DTO configures the S3 operator store.
type S3DTO struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Profile   string `yaml:"profile"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// LeaseDTO configures the precompute lease.
type LeaseDTO struct {
	Backend string        `yaml:"backend"`
	Timeout time.Duration `yaml:"timeout"`
	Redis   *RedisDTO     `yaml:"redis"`
}

// RedisDTO configures the Redis lease.
type RedisDTO struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
	Poll     time.Duration `yaml:"poll"`
}

// BackendDTO configures how one backend's engine is driven.
type BackendDTO struct {
	Command []string `yaml:"command"`
}
