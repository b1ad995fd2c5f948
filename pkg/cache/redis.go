package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// scanBatchSize is the COUNT hint for SCAN during pattern deletes.
	scanBatchSize = 256

	// healthCheckTimeout caps the PING probe so health checks stay fast
	// even with a generous operation timeout.
	healthCheckTimeout = 2 * time.Second
)

// RedisBackend stores entries in Redis through a pooled client.
//
// Pattern deletes and Clear walk the keyspace with SCAN and remove matches
// in batches. The walk is not atomic; entries written while it runs may
// survive it. FLUSHDB is never used, so keys outside the configured prefix
// are safe even when the database is shared.
type RedisBackend struct {
	client    *redis.Client
	ownClient bool
	prefix    string
	timeout   time.Duration
	logger    zerolog.Logger
	closed    atomic.Bool
}

// NewRedisBackend creates a Redis backend from the given configuration.
// The connection pool is created immediately but not verified; an
// unreachable server surfaces as ErrUnavailable on first use, not here.
func NewRedisBackend(cfg Config) *RedisBackend {
	client := redis.NewClient(&redis.Options{
		Addr:                  cfg.RedisAddr(),
		Password:              cfg.RedisPassword,
		DB:                    cfg.RedisDB,
		PoolSize:              cfg.MaxConnections,
		DialTimeout:           cfg.Timeout,
		ReadTimeout:           cfg.Timeout,
		WriteTimeout:          cfg.Timeout,
		ContextTimeoutEnabled: true,
	})

	b := newRedisBackend(client, cfg.KeyPrefix, cfg.Timeout)
	b.ownClient = true
	return b
}

// NewRedisBackendFromClient wraps an existing Redis client. The caller keeps
// ownership of the client; Close does not close it.
func NewRedisBackendFromClient(client *redis.Client, prefix string, timeout time.Duration) *RedisBackend {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return newRedisBackend(client, prefix, timeout)
}

func newRedisBackend(client *redis.Client, prefix string, timeout time.Duration) *RedisBackend {
	return &RedisBackend{
		client:  client,
		prefix:  prefix,
		timeout: timeout,
		logger:  log.With().Str("component", "cache-redis").Logger(),
	}
}

// Get retrieves the raw bytes stored under key.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if b.closed.Load() {
		return nil, false, ErrClosed
	}

	ctx, cancel := b.opCtx(ctx)
	defer cancel()

	data, err := b.client.Get(ctx, prefixKey(b.prefix, key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, b.unavailable("get", err)
	}

	return data, true, nil
}

// Set stores value under key. A ttl of zero stores without expiry.
func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if b.closed.Load() {
		return ErrClosed
	}

	ctx, cancel := b.opCtx(ctx)
	defer cancel()

	if err := b.client.Set(ctx, prefixKey(b.prefix, key), value, normalizeTTL(ttl)).Err(); err != nil {
		return b.unavailable("set", err)
	}

	return nil
}

// Delete removes a key, or every key matching it when it contains a "*"
// wildcard. Returns the number of keys removed.
func (b *RedisBackend) Delete(ctx context.Context, key string) (int64, error) {
	if b.closed.Load() {
		return 0, ErrClosed
	}

	if isPattern(key) {
		return b.deletePattern(ctx, prefixKey(b.prefix, key))
	}

	ctx, cancel := b.opCtx(ctx)
	defer cancel()

	deleted, err := b.client.Del(ctx, prefixKey(b.prefix, key)).Result()
	if err != nil {
		return 0, b.unavailable("delete", err)
	}

	return deleted, nil
}

// Exists reports whether the key currently holds a live entry.
func (b *RedisBackend) Exists(ctx context.Context, key string) (bool, error) {
	if b.closed.Load() {
		return false, ErrClosed
	}

	ctx, cancel := b.opCtx(ctx)
	defer cancel()

	n, err := b.client.Exists(ctx, prefixKey(b.prefix, key)).Result()
	if err != nil {
		return false, b.unavailable("exists", err)
	}

	return n > 0, nil
}

// Clear removes every key under the configured prefix.
func (b *RedisBackend) Clear(ctx context.Context) (int64, error) {
	if b.closed.Load() {
		return 0, ErrClosed
	}

	return b.deletePattern(ctx, prefixKey(b.prefix, "*"))
}

// deletePattern walks matching keys with SCAN and deletes them in batches.
// The whole walk runs under a single operation timeout.
func (b *RedisBackend) deletePattern(ctx context.Context, pattern string) (int64, error) {
	ctx, cancel := b.opCtx(ctx)
	defer cancel()

	var deleted int64
	var cursor uint64

	for {
		keys, next, err := b.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return deleted, b.unavailable("delete", err)
		}

		if len(keys) > 0 {
			n, err := b.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, b.unavailable("delete", err)
			}
			deleted += n
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	b.logger.Debug().
		Str("pattern", pattern).
		Int64("deleted", deleted).
		Msg("Pattern delete completed")

	return deleted, nil
}

// HealthCheck probes the server with a bounded PING.
func (b *RedisBackend) HealthCheck(ctx context.Context) bool {
	if b.closed.Load() {
		return false
	}

	timeout := b.timeout
	if timeout <= 0 || timeout > healthCheckTimeout {
		timeout = healthCheckTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := b.client.Ping(ctx).Err(); err != nil {
		b.logger.Debug().Err(err).Msg("Redis health check failed")
		return false
	}

	return true
}

// Close releases the connection pool if this backend owns it.
// Subsequent operations return ErrClosed.
func (b *RedisBackend) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}

	if !b.ownClient {
		return nil
	}

	if err := b.client.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}

	return nil
}

// Name returns the backend identifier.
func (b *RedisBackend) Name() string {
	return BackendRedis
}

// opCtx bounds an operation with the configured timeout.
func (b *RedisBackend) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout > 0 {
		return context.WithTimeout(ctx, b.timeout)
	}
	return ctx, func() {}
}

// unavailable wraps a transport failure so callers can classify it.
func (b *RedisBackend) unavailable(op string, err error) error {
	b.logger.Debug().Err(err).Str("operation", op).Msg("Redis command failed")
	return fmt.Errorf("%w: redis %s: %v", ErrUnavailable, op, err)
}
