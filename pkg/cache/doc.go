// Package cache provides the read-through cache for catalog records.
//
// Two backends implement Store:
//
//   - RedisStore keeps entries in Redis, shared by every API instance
//   - MemoryStore keeps entries in process memory
//
// Entries never expire and are never invalidated by the API. The backend
// owns eviction (for Redis, its maxmemory policy).
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//	store := cache.NewRedisStore(redisClient)
//
//	record, err := store.Get(ctx, cache.AppKey(570))
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// Cache miss - fetch from upstream, then store.Put
//	}
//
// # Metrics
//
//   - catalog_cache_hits_total{backend} - Cache hits
//   - catalog_cache_misses_total{backend} - Cache misses
//   - catalog_cache_errors_total{backend,operation} - Cache operation errors
package cache
