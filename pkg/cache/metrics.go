package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by backend
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cachefront_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"backend"}, // "redis", "memory"
	)

	// CacheMisses tracks cache misses by backend
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cachefront_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"backend"},
	)

	// CacheErrors tracks cache operation errors by backend and operation
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cachefront_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"backend", "operation"}, // "get", "set", "delete", "exists", "clear"
	)

	// InvalidatedKeys tracks keys removed by deletes and pattern invalidation
	InvalidatedKeys = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cachefront_invalidated_keys_total",
			Help: "Total number of keys removed by deletes and pattern invalidation",
		},
		[]string{"backend"},
	)

	// StoredBytes tracks serialized bytes written to the backend
	StoredBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cachefront_stored_bytes_total",
			Help: "Total serialized bytes written to the cache",
		},
		[]string{"backend"},
	)

	// operationDuration observes cache operation latency.
	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cachefront_operation_duration_seconds",
			Help:    "Cache operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"backend", "operation"},
	)

	// connectionState exports the connection state machine as a gauge
	// (0=uninitialized, 1=connecting, 2=ready, 3=degraded, 4=closed).
	connectionState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cachefront_connection_state",
			Help: "Current cache backend connection state",
		},
		[]string{"backend"},
	)
)
