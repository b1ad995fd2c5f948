// Package metrics provides the centralized Prometheus registry for cachefront.
// All metrics are defined in pkg/cache to stay next to the code that feeds
// them and to avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by cachefront.
// All cache metrics are automatically registered via promauto in pkg/cache;
// applications can register their own collectors here as well.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - cachefront_hits_total{backend} (Counter): Cache hits by backend
//   - cachefront_misses_total{backend} (Counter): Cache misses by backend
//   - cachefront_errors_total{backend, operation} (Counter): Cache operation errors
//   - cachefront_invalidated_keys_total{backend} (Counter): Keys removed by deletes and pattern invalidation
//   - cachefront_stored_bytes_total{backend} (Counter): Serialized bytes written to the cache
//   - cachefront_operation_duration_seconds{backend, operation} (Histogram): Cache operation latency
//   - cachefront_connection_state{backend} (Gauge): Connection state
//     (0=uninitialized, 1=connecting, 2=ready, 3=degraded, 4=closed)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(cachefront_hits_total[5m])) /
//   (sum(rate(cachefront_hits_total[5m])) + sum(rate(cachefront_misses_total[5m])))
//
//   # Degraded Backends
//   cachefront_connection_state == 3
//
//   # Cache Error Rate by Operation
//   sum by (operation) (rate(cachefront_errors_total[5m]))
//
//   # P95 Cache Operation Latency
//   histogram_quantile(0.95, rate(cachefront_operation_duration_seconds_bucket[5m]))
//
//   # Invalidation Volume
//   rate(cachefront_invalidated_keys_total[5m])
