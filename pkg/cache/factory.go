package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Factory owns the lifecycle of a lazily created Manager. Construction
// validates the configuration; the backend itself is only built on the
// first Manager call. A closed factory builds a fresh manager on the next
// call, which makes restart-after-close explicit instead of impossible.
//
// There is no package-level instance. The application decides how widely a
// factory is shared, typically one per process wired during startup.
type Factory struct {
	mu      sync.Mutex
	cfg     Config
	opts    []ManagerOption
	manager *Manager
	logger  zerolog.Logger
}

// NewFactory creates a factory for the given configuration. Invalid
// configuration is rejected here, before any connection is attempted.
func NewFactory(cfg Config, opts ...ManagerOption) (*Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Factory{
		cfg:    cfg,
		opts:   opts,
		logger: log.With().Str("component", "cache-factory").Logger(),
	}, nil
}

// Manager returns the factory's manager, creating it on the first call.
// Concurrent first calls construct exactly one manager. An unsupported
// backend name is reported here as a ConfigError.
//
// Creation never fails on an unreachable backend; the manager comes up
// degraded and recovers once the backend is reachable.
func (f *Factory) Manager(ctx context.Context) (*Manager, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.manager != nil {
		return f.manager, nil
	}

	backend, err := f.newBackend()
	if err != nil {
		return nil, err
	}

	opts := append([]ManagerOption{WithDefaultTTL(f.cfg.DefaultTTL)}, f.opts...)
	mgr := NewManager(backend, opts...)
	mgr.connect(ctx)

	f.logger.Info().
		Str("backend", backend.Name()).
		Str("prefix", f.cfg.KeyPrefix).
		Str("state", mgr.State().String()).
		Msg("Cache manager created")

	f.manager = mgr
	return mgr, nil
}

func (f *Factory) newBackend() (Backend, error) {
	switch f.cfg.Backend {
	case BackendRedis:
		return NewRedisBackend(f.cfg), nil
	case BackendMemory:
		return NewMemoryBackend(f.cfg), nil
	default:
		return nil, newConfigError("CACHE_BACKEND", "unsupported backend %q", f.cfg.Backend)
	}
}

// Close shuts down the current manager, if any. The next Manager call
// builds a fresh one. Safe to call more than once.
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.manager == nil {
		return nil
	}

	err := f.manager.Close()
	f.manager = nil
	return err
}

// HealthCheck reports whether the cache is usable, creating the manager if
// it does not exist yet. A factory whose configuration cannot produce a
// backend reports unhealthy rather than erroring.
func (f *Factory) HealthCheck(ctx context.Context) bool {
	mgr, err := f.Manager(ctx)
	if err != nil {
		f.logger.Error().Err(err).Msg("Cache health check failed to create manager")
		return false
	}
	return mgr.HealthCheck(ctx)
}

// KeyPrefix returns the configured key prefix.
func (f *Factory) KeyPrefix() string {
	return f.cfg.KeyPrefix
}

// DefaultTTL returns the configured default TTL.
func (f *Factory) DefaultTTL() time.Duration {
	return f.cfg.DefaultTTL
}
