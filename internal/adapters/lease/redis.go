package lease

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.trai.ch/tomobench/internal/core/domain"
	"go.trai.ch/tomobench/internal/core/ports"
	"go.trai.ch/zerr"
)

// KeyPrefix namespaces lease keys in a shared Redis.
const KeyPrefix = "tomobench:lease:"

const releaseTimeout = 5 * time.Second

// Both scripts act only while the caller's token still owns the key.
var (
	releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

	extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)
)

// RedisLeaser grants leases with SET NX PX and a random owner token. A held
// lease is refreshed every ttl/3 until released, so a crashed holder frees
// the key after at most ttl.
type RedisLeaser struct {
	client *redis.Client
	logger ports.Logger
	ttl    time.Duration
	poll   time.Duration
}

var _ ports.Leaser = (*RedisLeaser)(nil)

// NewRedisLeaser creates a RedisLeaser. The leaser owns client and closes it on Close.
func NewRedisLeaser(client *redis.Client, logger ports.Logger, ttl, poll time.Duration) *RedisLeaser {
	return &RedisLeaser{client: client, logger: logger, ttl: ttl, poll: poll}
}

// Name returns the Redis key guarding key.
func Name(key domain.CacheKey) string {
	return KeyPrefix + key.String()
}

// Acquire polls until the lease for key is granted or ctx is done.
func (l *RedisLeaser) Acquire(ctx context.Context, key domain.CacheKey) (ports.Lease, error) {
	name := Name(key)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, name, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, waitAborted(key, ctx.Err())
			}
			return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrLeaseFailed, err), "failed to request lease"),
				"key", key.String())
		}
		if ok {
			return l.hold(name, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, waitAborted(key, ctx.Err())
		case <-time.After(l.poll):
		}
	}
}

// Close closes the Redis client.
func (l *RedisLeaser) Close() error {
	return l.client.Close()
}

func (l *RedisLeaser) hold(name, token string) *redisLease {
	ctx, cancel := context.WithCancel(context.Background())
	lease := &redisLease{
		leaser: l,
		name:   name,
		token:  token,
		stop:   cancel,
		done:   make(chan struct{}),
	}
	go lease.keepAlive(ctx)
	return lease
}

type redisLease struct {
	leaser *RedisLeaser
	name   string
	token  string
	stop   context.CancelFunc
	done   chan struct{}

	once sync.Once
	err  error
}

func (r *redisLease) keepAlive(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.leaser.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := extendScript.Run(ctx, r.leaser.client, []string{r.name}, r.token, r.leaser.ttl.Milliseconds()).Int()
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				r.leaser.logger.Warn("failed to refresh lease " + r.name + ": " + err.Error())
				continue
			}
			if n == 0 {
				r.leaser.logger.Warn("lease " + r.name + " was lost to another holder")
				return
			}
		}
	}
}

func (r *redisLease) Release() error {
	r.once.Do(func() {
		r.stop()
		<-r.done

		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()

		if err := releaseScript.Run(ctx, r.leaser.client, []string{r.name}, r.token).Err(); err != nil {
			r.err = zerr.With(zerr.Wrap(errors.Join(domain.ErrLeaseFailed, err), "failed to release lease"),
				"lease", r.name)
		}
	})
	return r.err
}
