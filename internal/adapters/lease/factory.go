package lease

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.trai.ch/tomobench/internal/core/domain"
	"go.trai.ch/tomobench/internal/core/ports"
	"go.trai.ch/zerr"
)

// Factory opens the leaser selected by the configuration.
type Factory struct {
	logger ports.Logger
}

var _ ports.LeaserFactory = (*Factory)(nil)

// NewFactory creates a Factory.
func NewFactory(logger ports.Logger) *Factory {
	return &Factory{logger: logger}
}

// Open returns the leaser for cfg.Lease. File leases live under the local cache root,
// also when the store itself is remote.
func (f *Factory) Open(ctx context.Context, cfg *domain.Config) (ports.Leaser, error) {
	switch cfg.Lease.Backend {
	case domain.LeaseFile, "":
		return NewFileLeaser(cfg.Cache.Root), nil
	case domain.LeaseRedis:
		rc := cfg.Lease.Redis
		client := redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrLeaseFailed, err), "failed to connect to redis"),
				"addr", rc.Addr)
		}
		return NewRedisLeaser(client, f.logger, rc.TTL, rc.Poll), nil
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "unknown lease backend"), "backend", cfg.Lease.Backend)
	}
}
