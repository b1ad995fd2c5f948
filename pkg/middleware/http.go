package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nbrandt/cachefront/pkg/cache"
)

// cachedResponse is the stored form of an HTTP response.
type cachedResponse struct {
	// StatusCode is the HTTP status code of the cached response
	StatusCode int `json:"status_code"`

	// Headers are the response headers
	Headers http.Header `json:"headers"`

	// Body is the response body
	Body []byte `json:"body"`

	// CachedAt is when the response was cached
	CachedAt time.Time `json:"cached_at"`
}

// responseRecorder captures status and body while streaming to the client.
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	r.body.Write(p)
	return r.ResponseWriter.Write(p)
}

// statusRecorder captures only the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// CacheResponse returns middleware that caches successful GET responses.
// Keys are derived from the request path and sorted query parameters, so
// equivalent URLs share an entry. Replayed responses carry X-Cache: HIT,
// fresh ones X-Cache: MISS.
//
// Only responses with a 2xx status are stored. Non-GET requests and cache
// failures pass straight through to the handler.
func CacheResponse(m *cache.Manager, prefix string, ttl time.Duration) func(http.Handler) http.Handler {
	logger := log.With().Str("component", "cache-middleware").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key := RequestKey(prefix, r)

			var stored cachedResponse
			if found, err := m.Get(r.Context(), key, &stored); err == nil && found {
				replayResponse(w, &stored)
				return
			}

			w.Header().Set("X-Cache", "MISS")
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status < 200 || rec.status >= 300 {
				return
			}

			headers := rec.Header().Clone()
			headers.Del("X-Cache")

			entry := cachedResponse{
				StatusCode: rec.status,
				Headers:    headers,
				Body:       rec.body.Bytes(),
				CachedAt:   time.Now(),
			}
			if _, err := m.Set(r.Context(), key, entry, ttl); err != nil {
				logger.Warn().
					Err(err).
					Str("key", key).
					Msg("Failed to store response in cache")
			}
		})
	}
}

// replayResponse writes a cached response to the client.
func replayResponse(w http.ResponseWriter, entry *cachedResponse) {
	for name, values := range entry.Headers {
		for _, value := range values {
			w.Header().Add(name, value)
		}
	}
	w.Header().Set("X-Cache", "HIT")
	w.WriteHeader(entry.StatusCode)
	w.Write(entry.Body)
}

// InvalidateCache returns middleware that deletes the given key patterns
// after every successful request. Deletes run once the handler has written
// its response, and responses with status 400 or above leave the cache
// untouched. Failed deletes are logged without affecting the response.
func InvalidateCache(m *cache.Manager, patterns ...string) func(http.Handler) http.Handler {
	logger := log.With().Str("component", "cache-middleware").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status >= http.StatusBadRequest {
				return
			}

			for _, pattern := range patterns {
				if !m.Delete(r.Context(), pattern) {
					logger.Warn().
						Str("pattern", pattern).
						Msg("Cache invalidation failed after request")
				}
			}
		})
	}
}
