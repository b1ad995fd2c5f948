// Package cache provides backend-agnostic caching with Redis and in-memory
// backends.
//
// The cache manager offers best-effort caching with the following features:
//
// - Pluggable storage backends behind a single byte-oriented interface
// - Pluggable value serialization (JSON by default, msgpack optional)
// - Graceful degradation: backend outages become cache misses, not errors
// - Glob pattern invalidation ("user_data:*") and prefix-scoped clears
// - A connection state machine (ready/degraded) driving logs and metrics
// - Prometheus metrics for observability
//
// # Basic Usage
//
//	// Build configuration from the environment
//	cfg, err := cache.FromEnv()
//	if err != nil {
//		return err
//	}
//
//	// Create the factory; the backend is built lazily
//	factory, err := cache.NewFactory(cfg)
//	if err != nil {
//		return err
//	}
//	defer factory.Close()
//
//	manager, err := factory.Manager(ctx)
//	if err != nil {
//		return err
//	}
//
//	// Store and retrieve values
//	manager.Set(ctx, "user_data:42", user, 5*time.Minute)
//
//	var cached User
//	found, err := manager.Get(ctx, "user_data:42", &cached)
//
// # Graceful Degradation
//
// Backend failures never propagate to callers as errors. A Get against an
// unreachable backend reports a miss, a Set reports false, and the manager
// transitions to the degraded state until the backend recovers. The only
// errors the manager returns are serialization failures, which indicate a
// caller bug rather than an infrastructure problem.
//
// # Invalidation
//
//	// Remove one key
//	manager.Delete(ctx, "user_data:42")
//
//	// Remove every key matching a pattern
//	manager.Delete(ctx, "user_data:*")
//
// Pattern deletes walk the keyspace with SCAN and are not atomic; entries
// written while the walk runs may survive it.
//
// # Metrics
//
// The cache exports Prometheus metrics:
//
//   - cachefront_hits_total{backend} - Cache hits
//   - cachefront_misses_total{backend} - Cache misses
//   - cachefront_errors_total{backend,operation} - Cache operation errors
//   - cachefront_invalidated_keys_total{backend} - Keys removed by invalidation
//   - cachefront_stored_bytes_total{backend} - Serialized bytes written
//   - cachefront_operation_duration_seconds{backend,operation} - Operation latency
//   - cachefront_connection_state{backend} - Connection state machine
package cache
