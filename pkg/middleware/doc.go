// Package middleware provides caching decorators for functions and HTTP
// handlers, built on top of the cache package.
//
// Two styles are supported:
//
//   - Cached and Invalidating wrap any Operation[A, T], adding
//     read-through caching and write-triggered invalidation without
//     changing the function signature.
//   - CacheResponse and InvalidateCache are net/http middleware for
//     caching GET responses and flushing entries after mutations.
//
// # Function Caching
//
//	fetchUser := middleware.Cached(manager, "user_data", 10*time.Minute, "fetch_user",
//		func(ctx context.Context, id string) (User, error) {
//			return loadUserFromDB(ctx, id)
//		})
//
//	updateUser := middleware.Invalidating(manager, []string{"user_data:*"},
//		func(ctx context.Context, u User) (User, error) {
//			return saveUserToDB(ctx, u)
//		})
//
// Keys are derived from the wrapper's prefix and name plus a hash of the
// argument's canonical JSON form, so equal arguments share an entry.
//
// # HTTP Caching
//
//	mux.Handle("GET /items", middleware.CacheResponse(manager, "items", time.Minute)(listItems))
//	mux.Handle("POST /items", middleware.InvalidateCache(manager, "items:*")(createItem))
//
// Responses served from cache carry an X-Cache: HIT header.
//
// All wrappers inherit the cache package's degradation behavior: when the
// backend is down they fall through to the wrapped function or handler
// and never fail the call.
package middleware
