package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func memoryFactory(t *testing.T) *Factory {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Backend = BackendMemory

	factory, err := NewFactory(cfg)
	if err != nil {
		t.Fatalf("NewFactory failed: %v", err)
	}
	t.Cleanup(func() {
		factory.Close()
	})
	return factory
}

func TestNewFactory_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConnections = 0

	_, err := NewFactory(cfg)
	if err == nil {
		t.Fatal("Expected error for invalid config, got nil")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigError, got %T: %v", err, err)
	}
}

func TestFactory_LazyManager(t *testing.T) {
	factory := memoryFactory(t)
	ctx := context.Background()

	first, err := factory.Manager(ctx)
	if err != nil {
		t.Fatalf("Manager failed: %v", err)
	}
	if first == nil {
		t.Fatal("Manager returned nil")
	}

	// The initial probe settles the state machine
	if first.State() != StateReady {
		t.Errorf("State after creation = %s, want ready", first.State())
	}

	// Repeated calls return the same instance
	second, err := factory.Manager(ctx)
	if err != nil {
		t.Fatalf("Second Manager call failed: %v", err)
	}
	if first != second {
		t.Error("Expected repeated Manager calls to return the same instance")
	}
}

func TestFactory_ConcurrentFirstAccess(t *testing.T) {
	factory := memoryFactory(t)
	ctx := context.Background()

	managers := make([]*Manager, 10)
	var wg sync.WaitGroup
	for i := range managers {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			mgr, err := factory.Manager(ctx)
			if err != nil {
				t.Errorf("Manager failed: %v", err)
				return
			}
			managers[n] = mgr
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(managers); i++ {
		if managers[i] != managers[0] {
			t.Fatal("Concurrent first access created more than one manager")
		}
	}
}

func TestFactory_UnsupportedBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = "memcached"

	// Config loading accepts the name; first access rejects it
	factory, err := NewFactory(cfg)
	if err != nil {
		t.Fatalf("NewFactory should not check backend name, got %v", err)
	}

	_, err = factory.Manager(context.Background())
	if err == nil {
		t.Fatal("Expected error for unsupported backend, got nil")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigError, got %T: %v", err, err)
	}
	if cfgErr.Field != "CACHE_BACKEND" {
		t.Errorf("Field = %s, want CACHE_BACKEND", cfgErr.Field)
	}

	if factory.HealthCheck(context.Background()) {
		t.Error("Health check should fail for unsupported backend")
	}
}

func TestFactory_CloseAndRecreate(t *testing.T) {
	factory := memoryFactory(t)
	ctx := context.Background()

	first, err := factory.Manager(ctx)
	if err != nil {
		t.Fatalf("Manager failed: %v", err)
	}

	if err := factory.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if first.State() != StateClosed {
		t.Errorf("Old manager state = %s, want closed", first.State())
	}

	// Closing again is a no-op
	if err := factory.Close(); err != nil {
		t.Errorf("Second close should be nil, got %v", err)
	}

	// The next access builds a fresh manager
	second, err := factory.Manager(ctx)
	if err != nil {
		t.Fatalf("Manager after close failed: %v", err)
	}
	if second == first {
		t.Error("Expected a fresh manager after close")
	}

	if ok, err := second.Set(ctx, "key", "value", time.Minute); err != nil || !ok {
		t.Errorf("Fresh manager should work: ok=%v err=%v", ok, err)
	}
}

func TestFactory_HealthCheck(t *testing.T) {
	factory := memoryFactory(t)

	if !factory.HealthCheck(context.Background()) {
		t.Error("Expected healthy factory with memory backend")
	}
}

func TestFactory_Accessors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendMemory
	cfg.KeyPrefix = "svc"
	cfg.DefaultTTL = 42 * time.Second

	factory, err := NewFactory(cfg)
	if err != nil {
		t.Fatalf("NewFactory failed: %v", err)
	}
	defer factory.Close()

	if factory.KeyPrefix() != "svc" {
		t.Errorf("KeyPrefix = %s, want svc", factory.KeyPrefix())
	}
	if factory.DefaultTTL() != 42*time.Second {
		t.Errorf("DefaultTTL = %s, want 42s", factory.DefaultTTL())
	}
}
