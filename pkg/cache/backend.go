package cache

import (
	"context"
	"strings"
	"time"
)

// Backend is the storage contract every cache backend implements.
//
// Semantics shared by all implementations:
//   - Absence is a result, not an error: Get returns (nil, false, nil) for
//     a missing key and Delete of a missing key returns (0, nil).
//   - Keys are stored under the configured prefix; callers pass logical
//     keys and never see the prefix.
//   - Transport failures are wrapped with ErrUnavailable so callers can
//     classify them with errors.Is.
//   - TTLs have whole-second resolution. A sub-second TTL rounds up to one
//     second; zero means no expiry.
type Backend interface {
	// Get retrieves the raw bytes stored under key.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key with the given TTL. A ttl of zero stores
	// the entry without expiry. An existing entry is overwritten and its
	// remaining TTL discarded.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the key, or every key matching it when it contains a
	// "*" wildcard. Returns the number of keys removed. Pattern deletes
	// are not atomic; keys written mid-scan may survive.
	Delete(ctx context.Context, key string) (int64, error)

	// Exists reports whether the key currently holds a live entry.
	Exists(ctx context.Context, key string) (bool, error)

	// Clear removes every key under the configured prefix and returns the
	// number removed. Keys outside the prefix are never touched.
	Clear(ctx context.Context) (int64, error)

	// Close releases backend resources. Safe to call more than once.
	Close() error

	// HealthCheck probes the backend with a bounded timeout. It reports
	// health as a boolean and never returns an error.
	HealthCheck(ctx context.Context) bool

	// Name returns the backend identifier used in logs and metrics.
	Name() string
}

// prefixKey namespaces a logical key under the configured prefix.
func prefixKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}

// isPattern reports whether a key contains a wildcard and should be treated
// as a pattern delete.
func isPattern(key string) bool {
	return strings.Contains(key, "*")
}

// normalizeTTL clamps a TTL to the whole-second resolution all backends
// share. Sub-second TTLs round up to one second so a positive TTL never
// silently becomes no-expiry.
func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	if ttl < time.Second {
		return time.Second
	}
	return ttl.Truncate(time.Second)
}
