package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nbrandt/cachefront/pkg/codec"
)

// Manager is the caching façade applications talk to. It routes values
// through a codec, delegates storage to a backend and absorbs backend
// failures into fallback results so a cache outage never breaks a caller.
//
// Only serialization problems surface as errors: ErrNotSerializable when a
// value cannot be encoded and ErrInvalidEntry when a stored entry cannot be
// decoded. Everything else degrades to "not cached".
type Manager struct {
	backend    Backend
	codec      codec.Codec
	defaultTTL time.Duration
	tracker    *stateTracker
	logger     zerolog.Logger

	closeOnce sync.Once
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithCodec sets the value codec. Defaults to codec.JSON.
func WithCodec(c codec.Codec) ManagerOption {
	return func(m *Manager) {
		if c != nil {
			m.codec = c
		}
	}
}

// WithDefaultTTL sets the TTL applied when Set is called without one.
// Zero disables the fallback so such entries never expire.
func WithDefaultTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		m.defaultTTL = ttl
	}
}

// WithLogger sets the manager logger.
func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a cache manager for the given backend.
func NewManager(backend Backend, opts ...ManagerOption) *Manager {
	if backend == nil {
		panic("cache backend cannot be nil")
	}

	m := &Manager{
		backend:    backend,
		codec:      codec.JSON,
		defaultTTL: DefaultConfig().DefaultTTL,
		logger:     log.With().Str("component", "cache").Logger(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.tracker = newStateTracker(backend.Name(), m.logger)
	return m
}

// Get retrieves the value stored under key into dest, which must be a
// non-nil pointer. It returns false when the key is absent, expired or the
// backend is unavailable. The only error it returns is ErrInvalidEntry for
// a stored entry the codec cannot decode.
func (m *Manager) Get(ctx context.Context, key string, dest any) (bool, error) {
	start := time.Now()
	data, found, err := m.backend.Get(ctx, key)
	m.observe("get", start)

	if err != nil {
		m.absorb("get", key, err)
		CacheMisses.WithLabelValues(m.backend.Name()).Inc()
		return false, nil
	}

	m.tracker.MarkSuccess()

	if !found {
		CacheMisses.WithLabelValues(m.backend.Name()).Inc()
		m.logger.Debug().Str("key", key).Msg("Cache miss")
		return false, nil
	}

	if err := m.codec.Unmarshal(data, dest); err != nil {
		CacheErrors.WithLabelValues(m.backend.Name(), "get").Inc()
		m.logger.Warn().Err(err).Str("key", key).Msg("Cached entry failed to decode")
		return false, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	CacheHits.WithLabelValues(m.backend.Name()).Inc()
	m.logger.Debug().Str("key", key).Msg("Cache hit")
	return true, nil
}

// Set encodes value and stores it under key. A ttl of zero or less applies
// the configured default TTL. It returns false when the backend is
// unavailable; the only error it returns is ErrNotSerializable.
func (m *Manager) Set(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	data, err := m.codec.Marshal(value)
	if err != nil {
		CacheErrors.WithLabelValues(m.backend.Name(), "set").Inc()
		return false, fmt.Errorf("%w: %v", ErrNotSerializable, err)
	}

	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	start := time.Now()
	err = m.backend.Set(ctx, key, data, ttl)
	m.observe("set", start)

	if err != nil {
		m.absorb("set", key, err)
		return false, nil
	}

	m.tracker.MarkSuccess()
	StoredBytes.WithLabelValues(m.backend.Name()).Add(float64(len(data)))
	m.logger.Debug().
		Str("key", key).
		Dur("ttl", ttl).
		Int("bytes", len(data)).
		Msg("Cached value")
	return true, nil
}

// Delete removes a key, or every key matching it when it contains a "*"
// wildcard. Deleting an absent key succeeds; false means the backend was
// unreachable.
func (m *Manager) Delete(ctx context.Context, key string) bool {
	start := time.Now()
	deleted, err := m.backend.Delete(ctx, key)
	m.observe("delete", start)

	if err != nil {
		m.absorb("delete", key, err)
		return false
	}

	m.tracker.MarkSuccess()
	if deleted > 0 {
		InvalidatedKeys.WithLabelValues(m.backend.Name()).Add(float64(deleted))
	}
	m.logger.Debug().Str("key", key).Int64("deleted", deleted).Msg("Cache delete")
	return true
}

// Exists reports whether key holds a live entry. It returns false when the
// backend is unavailable.
func (m *Manager) Exists(ctx context.Context, key string) bool {
	start := time.Now()
	found, err := m.backend.Exists(ctx, key)
	m.observe("exists", start)

	if err != nil {
		m.absorb("exists", key, err)
		return false
	}

	m.tracker.MarkSuccess()
	return found
}

// Clear removes every key under the configured prefix. It returns false
// when the backend is unavailable.
func (m *Manager) Clear(ctx context.Context) bool {
	start := time.Now()
	deleted, err := m.backend.Clear(ctx)
	m.observe("clear", start)

	if err != nil {
		m.absorb("clear", "", err)
		return false
	}

	m.tracker.MarkSuccess()
	if deleted > 0 {
		InvalidatedKeys.WithLabelValues(m.backend.Name()).Add(float64(deleted))
	}
	m.logger.Info().Int64("deleted", deleted).Msg("Cache cleared")
	return true
}

// HealthCheck probes the backend and feeds the result into the connection
// state machine.
func (m *Manager) HealthCheck(ctx context.Context) bool {
	if m.tracker.Current() == StateClosed {
		return false
	}

	healthy := m.backend.HealthCheck(ctx)
	if healthy {
		m.tracker.MarkSuccess()
	} else {
		m.tracker.MarkFailure()
	}
	return healthy
}

// State returns the current connection state.
func (m *Manager) State() ConnState {
	return m.tracker.Current()
}

// Backend returns the underlying backend.
func (m *Manager) Backend() Backend {
	return m.backend
}

// Close shuts down the backend. Safe to call more than once; later calls
// are no-ops.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		m.tracker.MarkClosed()
		err = m.backend.Close()
		if err != nil {
			m.logger.Error().Err(err).Msg("Cache backend close failed")
		} else {
			m.logger.Info().Str("backend", m.backend.Name()).Msg("Cache closed")
		}
	})
	return err
}

// connect marks the start of backend use and runs one non-fatal probe so
// the state machine settles into ready or degraded right away.
func (m *Manager) connect(ctx context.Context) {
	m.tracker.MarkConnecting()
	m.HealthCheck(ctx)
}

// absorb downgrades a backend failure to a fallback result.
func (m *Manager) absorb(op, key string, err error) {
	CacheErrors.WithLabelValues(m.backend.Name(), op).Inc()
	if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrClosed) {
		m.tracker.MarkFailure()
	}
	m.logger.Warn().
		Err(err).
		Str("operation", op).
		Str("key", key).
		Msg("Cache operation failed, continuing without cache")
}

func (m *Manager) observe(op string, start time.Time) {
	operationDuration.WithLabelValues(m.backend.Name(), op).Observe(time.Since(start).Seconds())
}

// Get retrieves a typed value through the manager. It returns the zero
// value and false on a miss.
func Get[T any](ctx context.Context, m *Manager, key string) (T, bool, error) {
	var value T
	found, err := m.Get(ctx, key, &value)
	if err != nil || !found {
		var zero T
		return zero, false, err
	}
	return value, true, nil
}
