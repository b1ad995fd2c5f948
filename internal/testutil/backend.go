// Package testutil provides test doubles and Redis bootstrap helpers.
package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

type fakeEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e fakeEntry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

// FakeBackend is a scripted in-memory cache backend for exercising failure
// paths without a real server. It satisfies the cache.Backend interface.
type FakeBackend struct {
	mu      sync.Mutex
	entries map[string]fakeEntry
	err     error
	healthy bool
	closed  bool
	calls   map[string]int
}

// NewFakeBackend creates a healthy fake backend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		entries: make(map[string]fakeEntry),
		healthy: true,
		calls:   make(map[string]int),
	}
}

// FailWith makes every subsequent operation return err and health checks
// report unhealthy.
func (f *FakeBackend) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	f.healthy = false
}

// Recover clears a scripted failure.
func (f *FakeBackend) Recover() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = nil
	f.healthy = true
}

// Calls returns how many times the named operation ran.
func (f *FakeBackend) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Len returns the number of live entries.
func (f *FakeBackend) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, e := range f.entries {
		if !e.expired() {
			n++
		}
	}
	return n
}

// Get retrieves the bytes stored under key.
func (f *FakeBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["get"]++

	if f.err != nil {
		return nil, false, f.err
	}

	e, ok := f.entries[key]
	if !ok || e.expired() {
		delete(f.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores value under key.
func (f *FakeBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["set"]++

	if f.err != nil {
		return f.err
	}

	e := fakeEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	f.entries[key] = e
	return nil
}

// Delete removes a key or every key matching a "*" pattern.
func (f *FakeBackend) Delete(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete"]++

	if f.err != nil {
		return 0, f.err
	}

	if strings.Contains(key, "*") {
		var deleted int64
		for k := range f.entries {
			if globMatch(key, k) {
				delete(f.entries, k)
				deleted++
			}
		}
		return deleted, nil
	}

	if _, ok := f.entries[key]; ok {
		delete(f.entries, key)
		return 1, nil
	}
	return 0, nil
}

// Exists reports whether key holds a live entry.
func (f *FakeBackend) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["exists"]++

	if f.err != nil {
		return false, f.err
	}

	e, ok := f.entries[key]
	return ok && !e.expired(), nil
}

// Clear removes every entry.
func (f *FakeBackend) Clear(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["clear"]++

	if f.err != nil {
		return 0, f.err
	}

	deleted := int64(len(f.entries))
	f.entries = make(map[string]fakeEntry)
	return deleted, nil
}

// HealthCheck reports the scripted health state.
func (f *FakeBackend) HealthCheck(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["health"]++
	return f.healthy && !f.closed
}

// Close marks the backend closed. Operations after close fail the way
// they do on real backends.
func (f *FakeBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["close"]++
	f.closed = true
	f.healthy = false
	if f.err == nil {
		f.err = errors.New("fake backend closed")
	}
	return nil
}

// Name returns the backend identifier.
func (f *FakeBackend) Name() string {
	return "fake"
}

// globMatch matches s against a pattern where "*" matches any run of
// characters.
func globMatch(pattern, s string) bool {
	parts := strings.Split(pattern, "*")

	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]

	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(s, part)
		if idx < 0 {
			return false
		}
		s = s[idx+len(part):]
	}

	return strings.HasSuffix(s, parts[len(parts)-1])
}
