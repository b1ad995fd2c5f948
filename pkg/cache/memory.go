package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// janitorInterval is how often the background sweep removes expired entries
// that no read has touched.
const janitorInterval = 30 * time.Second

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryBackend keeps entries in process memory. It exists for tests, demos
// and single-node deployments; entries do not survive a restart and are not
// shared across processes.
//
// Expired entries are dropped lazily on read and swept periodically by a
// background janitor.
type MemoryBackend struct {
	entries *xsync.MapOf[string, memoryEntry]
	prefix  string
	logger  zerolog.Logger
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	closed  atomic.Bool
}

// NewMemoryBackend creates an in-process backend and starts its janitor.
func NewMemoryBackend(cfg Config) *MemoryBackend {
	b := &MemoryBackend{
		entries: xsync.NewMapOf[string, memoryEntry](),
		prefix:  cfg.KeyPrefix,
		logger:  log.With().Str("component", "cache-memory").Logger(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.wg.Add(1)
	go b.janitor(ctx)

	return b
}

func (b *MemoryBackend) janitor(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			swept := 0
			b.entries.Range(func(key string, e memoryEntry) bool {
				if e.expired(now) {
					b.entries.Delete(key)
					swept++
				}
				return true
			})
			if swept > 0 {
				b.logger.Debug().Int("swept", swept).Msg("Janitor removed expired entries")
			}
		}
	}
}

// Get retrieves the bytes stored under key.
func (b *MemoryBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if b.closed.Load() {
		return nil, false, ErrClosed
	}

	stored := prefixKey(b.prefix, key)
	e, ok := b.entries.Load(stored)
	if !ok {
		return nil, false, nil
	}

	// Lazy expiry on read
	if e.expired(time.Now()) {
		b.entries.Delete(stored)
		return nil, false, nil
	}

	return e.value, true, nil
}

// Set stores value under key. A ttl of zero stores without expiry.
func (b *MemoryBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if b.closed.Load() {
		return ErrClosed
	}

	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl = normalizeTTL(ttl); ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	b.entries.Store(prefixKey(b.prefix, key), e)
	return nil
}

// Delete removes a key, or every key matching it when it contains a "*"
// wildcard. Returns the number of keys removed.
func (b *MemoryBackend) Delete(ctx context.Context, key string) (int64, error) {
	if b.closed.Load() {
		return 0, ErrClosed
	}

	stored := prefixKey(b.prefix, key)

	if isPattern(key) {
		var deleted int64
		b.entries.Range(func(k string, _ memoryEntry) bool {
			if matchPattern(stored, k) {
				b.entries.Delete(k)
				deleted++
			}
			return true
		})
		return deleted, nil
	}

	if _, ok := b.entries.LoadAndDelete(stored); ok {
		return 1, nil
	}
	return 0, nil
}

// Exists reports whether the key currently holds a live entry.
func (b *MemoryBackend) Exists(ctx context.Context, key string) (bool, error) {
	if b.closed.Load() {
		return false, ErrClosed
	}

	stored := prefixKey(b.prefix, key)
	e, ok := b.entries.Load(stored)
	if !ok {
		return false, nil
	}

	if e.expired(time.Now()) {
		b.entries.Delete(stored)
		return false, nil
	}

	return true, nil
}

// Clear removes every entry.
func (b *MemoryBackend) Clear(ctx context.Context) (int64, error) {
	if b.closed.Load() {
		return 0, ErrClosed
	}

	var deleted int64
	b.entries.Range(func(k string, _ memoryEntry) bool {
		b.entries.Delete(k)
		deleted++
		return true
	})
	return deleted, nil
}

// HealthCheck reports true until the backend is closed.
func (b *MemoryBackend) HealthCheck(ctx context.Context) bool {
	return !b.closed.Load()
}

// Close stops the janitor. Safe to call more than once.
func (b *MemoryBackend) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}

	b.cancel()
	b.wg.Wait()
	return nil
}

// Name returns the backend identifier.
func (b *MemoryBackend) Name() string {
	return BackendMemory
}

// matchPattern matches s against a glob pattern where "*" matches any run
// of characters, including key separators. This mirrors how Redis MATCH
// treats "*", so both backends agree on which keys a pattern removes.
func matchPattern(pattern, s string) bool {
	if pattern == "*" {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return pattern == s
	}

	parts := strings.Split(pattern, "*")

	// Anchor the first literal at the start
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]

	// Middle literals match leftmost, which leaves the most room for the
	// trailing literal
	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(s, part)
		if idx < 0 {
			return false
		}
		s = s[idx+len(part):]
	}

	// Anchor the last literal at the end
	return strings.HasSuffix(s, parts[len(parts)-1])
}
