package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func setupMemoryBackend(t *testing.T) *MemoryBackend {
	t.Helper()

	backend := NewMemoryBackend(DefaultConfig())
	t.Cleanup(func() {
		backend.Close()
	})
	return backend
}

func TestMemoryBackend_SetAndGet(t *testing.T) {
	backend := setupMemoryBackend(t)
	ctx := context.Background()

	if err := backend.Set(ctx, "greeting", []byte("hello"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	data, found, err := backend.Get(ctx, "greeting")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("Expected key to be found")
	}
	if string(data) != "hello" {
		t.Errorf("Get = %s, want hello", data)
	}

	// Entries are stored under the configured prefix
	if _, ok := backend.entries.Load("app:greeting"); !ok {
		t.Error("Expected entry to be stored under app:greeting")
	}
}

func TestMemoryBackend_GetMissing(t *testing.T) {
	backend := setupMemoryBackend(t)

	data, found, err := backend.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get of missing key should not error: %v", err)
	}
	if found {
		t.Error("Expected found to be false")
	}
	if data != nil {
		t.Errorf("Expected nil data, got %q", data)
	}
}

func TestMemoryBackend_LazyExpiry(t *testing.T) {
	backend := setupMemoryBackend(t)
	ctx := context.Background()

	// Plant an already expired entry to avoid sleeping in the test
	backend.entries.Store("app:stale", memoryEntry{
		value:     []byte("old"),
		expiresAt: time.Now().Add(-time.Second),
	})

	_, found, err := backend.Get(ctx, "stale")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("Expected expired entry to read as a miss")
	}

	// The read removed the dead entry
	if _, ok := backend.entries.Load("app:stale"); ok {
		t.Error("Expected expired entry to be removed on read")
	}

	// Exists applies the same lazy expiry
	backend.entries.Store("app:stale2", memoryEntry{
		value:     []byte("old"),
		expiresAt: time.Now().Add(-time.Second),
	})
	if found, _ := backend.Exists(ctx, "stale2"); found {
		t.Error("Expected expired entry to not exist")
	}
}

func TestMemoryBackend_SetCopiesValue(t *testing.T) {
	backend := setupMemoryBackend(t)
	ctx := context.Background()

	buf := []byte("original")
	if err := backend.Set(ctx, "copy", buf, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Mutating the caller's buffer must not change the stored entry
	buf[0] = 'X'

	data, _, err := backend.Get(ctx, "copy")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(data) != "original" {
		t.Errorf("Stored value = %s, want original", data)
	}
}

func TestMemoryBackend_Delete(t *testing.T) {
	backend := setupMemoryBackend(t)
	ctx := context.Background()

	if err := backend.Set(ctx, "victim", []byte("x"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	deleted, err := backend.Delete(ctx, "victim")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Deleted = %d, want 1", deleted)
	}

	deleted, err = backend.Delete(ctx, "victim")
	if err != nil {
		t.Fatalf("Delete of missing key should not error: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Deleted = %d, want 0", deleted)
	}
}

func TestMemoryBackend_DeletePattern(t *testing.T) {
	backend := setupMemoryBackend(t)
	ctx := context.Background()

	for _, key := range []string{"user_data:1", "user_data:2", "profile:9"} {
		if err := backend.Set(ctx, key, []byte("x"), 0); err != nil {
			t.Fatalf("Set %s failed: %v", key, err)
		}
	}

	deleted, err := backend.Delete(ctx, "user_data:*")
	if err != nil {
		t.Fatalf("Pattern delete failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Deleted = %d, want 2", deleted)
	}

	if _, found, _ := backend.Get(ctx, "user_data:1"); found {
		t.Error("Key user_data:1 should have been deleted")
	}
	if _, found, _ := backend.Get(ctx, "profile:9"); !found {
		t.Error("Key profile:9 should have survived the pattern delete")
	}

	deleted, err = backend.Delete(ctx, "session:*")
	if err != nil {
		t.Fatalf("Empty pattern delete failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Deleted = %d, want 0", deleted)
	}
}

func TestMemoryBackend_Clear(t *testing.T) {
	backend := setupMemoryBackend(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("key:%d", i)
		if err := backend.Set(ctx, key, []byte("x"), 0); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	deleted, err := backend.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Cleared = %d, want 3", deleted)
	}

	if _, found, _ := backend.Get(ctx, "key:0"); found {
		t.Error("Expected all keys to be gone after Clear")
	}
}

func TestMemoryBackend_Close(t *testing.T) {
	backend := NewMemoryBackend(DefaultConfig())
	ctx := context.Background()

	if !backend.HealthCheck(ctx) {
		t.Error("Expected open backend to be healthy")
	}

	if err := backend.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Errorf("Second close should be nil, got %v", err)
	}

	if _, _, err := backend.Get(ctx, "any"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after close = %v, want ErrClosed", err)
	}
	if err := backend.Set(ctx, "any", []byte("x"), 0); !errors.Is(err, ErrClosed) {
		t.Errorf("Set after close = %v, want ErrClosed", err)
	}
	if backend.HealthCheck(ctx) {
		t.Error("Closed backend should report unhealthy")
	}
}

func TestMemoryBackend_ConcurrentAccess(t *testing.T) {
	backend := setupMemoryBackend(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("concurrent:%d", n%5)
			backend.Set(ctx, key, []byte("x"), time.Minute)
			backend.Get(ctx, key)
			backend.Exists(ctx, key)
			if n%5 == 0 {
				backend.Delete(ctx, key)
			}
		}(i)
	}
	wg.Wait()
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		s       string
		want    bool
	}{
		{"*", "anything", true},
		{"app:user_data:*", "app:user_data:1", true},
		{"app:user_data:*", "app:user_data:1:extra", true},
		{"app:user_data:*", "app:profile:9", false},
		{"app:user_data:1", "app:user_data:1", true},
		{"app:user_data:1", "app:user_data:12", false},
		{"app:*:1", "app:user_data:1", true},
		{"app:*:1", "app:user_data:2", false},
		{"app:*data*", "app:user_data:5", true},
		{"app:*data*", "app:sessions:5", false},
		{"a*a", "a", false},
		{"a*a", "aa", true},
		{"a*b*c", "abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.s, func(t *testing.T) {
			if got := matchPattern(tt.pattern, tt.s); got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.s, got, tt.want)
			}
		})
	}
}
