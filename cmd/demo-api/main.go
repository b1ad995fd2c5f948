// Command demo-api serves a small items API that demonstrates cachefront:
// GET responses are cached, mutations invalidate, and the cache degrades
// to pass-through when its backend is unreachable.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/nbrandt/cachefront/pkg/cache"
	"github.com/nbrandt/cachefront/pkg/logging"
	"github.com/nbrandt/cachefront/pkg/metrics"
	"github.com/nbrandt/cachefront/pkg/middleware"
)

const (
	itemCacheTTL    = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	logging.Setup(logging.FromEnv())

	cfg, err := cache.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid cache configuration")
	}

	factory, err := cache.NewFactory(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid cache configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager, err := factory.Manager(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create cache manager")
	}

	registerUptimeGauge()

	store := newItemStore()
	mux := newRouter(manager, store)

	addr := ":" + getEnv("PORT", "8080")
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		log.Info().
			Str("addr", addr).
			Str("backend", cfg.Backend).
			Str("state", manager.State().String()).
			Msg("Demo API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	stop()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	if err := factory.Close(); err != nil {
		log.Error().Err(err).Msg("Cache close failed")
	}
}

// newRouter wires the demo endpoints. GET routes under /items are cached,
// mutating routes invalidate the items prefix after they succeed.
func newRouter(manager *cache.Manager, store *itemStore) *http.ServeMux {
	cached := middleware.CacheResponse(manager, "items", itemCacheTTL)
	invalidating := middleware.InvalidateCache(manager, "items:*")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /health/cache", cacheHealthHandler(manager))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("GET /items", cached(http.HandlerFunc(store.list)))
	mux.Handle("GET /items/{id}", cached(http.HandlerFunc(store.get)))
	mux.Handle("POST /items", invalidating(http.HandlerFunc(store.create)))
	mux.Handle("PUT /items/{id}", invalidating(http.HandlerFunc(store.update)))
	mux.Handle("DELETE /items/{id}", invalidating(http.HandlerFunc(store.remove)))

	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// cacheHealthHandler reports backend health. A degraded cache answers 503
// so orchestrators can see the condition while the API itself stays up.
func cacheHealthHandler(manager *cache.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		healthy := manager.HealthCheck(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"backend": manager.Backend().Name(),
			"state":   manager.State().String(),
			"healthy": healthy,
		})
	}
}

// registerUptimeGauge publishes process uptime next to the cache metrics.
func registerUptimeGauge() {
	start := time.Now()
	metrics.Registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "cachefront_uptime_seconds",
			Help: "Seconds since the server started",
		},
		func() float64 {
			return time.Since(start).Seconds()
		},
	))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
