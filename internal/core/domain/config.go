package domain

import "time"

// StoreKind selects the operator store implementation.
type StoreKind string

const (
	// StoreFS keeps entries in a local or shared-volume directory.
	StoreFS StoreKind = "fs"
	// StoreS3 keeps entries in an S3 bucket.
	StoreS3 StoreKind = "s3"
)

// LeaseKind selects the precompute lease implementation.
type LeaseKind string

const (
	// LeaseFile uses advisory file locks next to the cache root.
	LeaseFile LeaseKind = "file"
	// LeaseRedis uses SET NX leases in Redis.
	LeaseRedis LeaseKind = "redis"
)

const (
	// DefaultLeaseTimeout bounds how long a caller waits for a concurrent precompute.
	DefaultLeaseTimeout = 30 * time.Minute

	// DefaultRedisLeaseTTL is the expiry of a Redis lease that is not refreshed.
	DefaultRedisLeaseTTL = 30 * time.Second

	// DefaultRedisPoll is the retry interval while a Redis lease is held elsewhere.
	DefaultRedisPoll = 250 * time.Millisecond
)

// Config is the resolved benchmark configuration.
type Config struct {
	Cache     CacheConfig
	Lease     LeaseConfig
	WorkDir   string
	LogFormat string
	Engines   map[Backend]EngineConfig
}

// CacheConfig configures the operator store.
type CacheConfig struct {
	Root    string
	Backend StoreKind
	S3      S3Config
}

// S3Config configures the S3 operator store.
type S3Config struct {
	Bucket    string
	Prefix    string
	Region    string
	Profile   string
	Endpoint  string
	PathStyle bool
}

// LeaseConfig configures the precompute lease.
type LeaseConfig struct {
	Backend LeaseKind
	Timeout time.Duration
	Redis   RedisConfig
}

// RedisConfig configures the Redis lease.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Poll     time.Duration
}

// EngineConfig configures how one backend is driven.
// An empty Command selects the in-process reference engine.
type EngineConfig struct {
	Command []string
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Root:    DefaultCacheRoot(),
			Backend: StoreFS,
		},
		Lease: LeaseConfig{
			Backend: LeaseFile,
			Timeout: DefaultLeaseTimeout,
			Redis: RedisConfig{
				TTL:  DefaultRedisLeaseTTL,
				Poll: DefaultRedisPoll,
			},
		},
		LogFormat: "auto",
		Engines:   make(map[Backend]EngineConfig),
	}
}
