// Package cache provides a generic TTL cache with in-memory and Redis backends.
//
// Both backends implement [Cache]. The server uses them for two things:
//
//   - the upstream response cache of the API client, in memory for a single
//     instance or in Redis when REDIS_URL is set so instances share hits;
//   - the browser session registry, a [Memory] with sliding expiry and an
//     eviction callback that releases each session's resources.
//
// # In-Memory
//
// [Memory] is a map plus a doubly-linked list (O(1) lookup and LRU eviction)
// with a background janitor for expired entries:
//
//	c := cache.NewMemory[string](
//	    cache.WithDefaultTTL(5*time.Minute),
//	    cache.WithMaxEntries(1000),
//	)
//	defer c.Close()
//
//	c.OnEvict(func(key string, v string, reason cache.EvictReason) {
//	    log.Debug("evicted", "key", key, "reason", reason)
//	})
//
// # Redis
//
// [NewRedis] encodes values with a [Codec] (JSON by default) and namespaces
// keys with an optional prefix. [OpenRedis] dials with retry and
// [RedisHealthcheck] plugs into readiness probes.
//
// # Errors
//
// Get returns [ErrNotFound] on a miss; operations on a closed [Memory]
// return [ErrClosed].
package cache
