package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/netsmith/pkg/errors"
)

// Redis lock defaults.
const (
	DefaultRedisPrefix = "netsmith:lock"
	DefaultRedisTTL    = 30 * time.Second
	DefaultRedisPoll   = 100 * time.Millisecond
)

// release deletes the key only if it still holds our token, so an expired
// lock re-acquired by another process is left alone.
var release = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker shared by every process using the same Redis keyspace.
// Locks expire after TTL so a crashed holder cannot wedge a canvas.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	poll   time.Duration
	logger *log.Logger
}

// RedisOption configures a Redis locker.
type RedisOption func(*Redis)

// WithPrefix sets the key prefix.
func WithPrefix(p string) RedisOption { return func(r *Redis) { r.prefix = p } }

// WithTTL sets how long a lock survives without being released.
func WithTTL(d time.Duration) RedisOption { return func(r *Redis) { r.ttl = d } }

// WithPoll sets the retry interval while waiting for a held lock.
func WithPoll(d time.Duration) RedisOption { return func(r *Redis) { r.poll = d } }

// WithLogger sets the logger used to report failed releases.
func WithLogger(l *log.Logger) RedisOption { return func(r *Redis) { r.logger = l } }

// NewRedis returns a Locker backed by client.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		prefix: DefaultRedisPrefix,
		ttl:    DefaultRedisTTL,
		poll:   DefaultRedisPoll,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DialRedis connects to the Redis server at addr and verifies it answers.
func DialRedis(ctx context.Context, addr, password string, db int, opts ...RedisOption) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to redis at %s", addr)
	}
	return NewRedis(client, opts...), nil
}

// Key returns the Redis key guarding resource.
func (r *Redis) Key(resource int) string {
	return fmt.Sprintf("%s:%d", r.prefix, resource)
}

// Lock implements Locker.
func (r *Redis) Lock(ctx context.Context, resource int) (func(), error) {
	key := r.Key(resource)
	token := uuid.NewString()

	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Wrap(errors.ErrCodeLockTimeout, ctx.Err(), "resource %d", resource)
			}
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "acquire %s", key)
		}
		if ok {
			return r.unlocker(key, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, errors.Wrap(errors.ErrCodeLockTimeout, ctx.Err(), "resource %d", resource)
		case <-time.After(r.poll):
		}
	}
}

func (r *Redis) unlocker(key, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := release.Run(ctx, r.client, []string{key}, token).Err(); err != nil {
				r.logger.Warn("lock release failed", "key", key, "err", err)
			}
		})
	}
}

// Close closes the underlying client.
func (r *Redis) Close() error { return r.client.Close() }
