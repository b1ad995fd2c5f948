package middleware

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nbrandt/cachefront/pkg/cache"
)

// Operation is a context-aware function from one argument to one result.
// Wrappers in this package decorate operations without changing their
// signature, so a cached operation drops in wherever the original fits.
type Operation[A, T any] func(ctx context.Context, arg A) (T, error)

// Cached wraps op with read-through caching. On a hit the stored result is
// returned and op is never invoked. On a miss op runs and a successful
// result is stored under a key derived from prefix, name and the argument.
//
// Cache failures never fail the call: a broken Get falls through to op,
// and a failed Set is logged and dropped. Errors from op itself propagate
// unchanged and are never cached.
func Cached[A, T any](m *cache.Manager, prefix string, ttl time.Duration, name string, op Operation[A, T]) Operation[A, T] {
	logger := log.With().Str("component", "cache-middleware").Logger()

	return func(ctx context.Context, arg A) (T, error) {
		key := OperationKey(prefix, name, arg)

		var stored T
		if found, err := m.Get(ctx, key, &stored); err == nil && found {
			return stored, nil
		}

		result, err := op(ctx, arg)
		if err != nil {
			return result, err
		}

		if _, err := m.Set(ctx, key, result, ttl); err != nil {
			logger.Warn().
				Err(err).
				Str("key", key).
				Msg("Failed to store operation result in cache")
		}

		return result, nil
	}
}

// Invalidating wraps op so that every successful call deletes the given
// key patterns. The deletes run after op returns, so readers never observe
// stale entries outliving a completed write. Failed calls leave the cache
// untouched, and failed deletes are logged without affecting the result.
func Invalidating[A, T any](m *cache.Manager, patterns []string, op Operation[A, T]) Operation[A, T] {
	logger := log.With().Str("component", "cache-middleware").Logger()

	return func(ctx context.Context, arg A) (T, error) {
		result, err := op(ctx, arg)
		if err != nil {
			return result, err
		}

		for _, pattern := range patterns {
			if !m.Delete(ctx, pattern) {
				logger.Warn().
					Str("pattern", pattern).
					Msg("Cache invalidation failed after write")
			}
		}

		return result, nil
	}
}
