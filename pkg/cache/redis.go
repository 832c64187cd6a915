package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/steam-catalog-api/pkg/catalog"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by Redis.
type RedisStore struct {
	redis *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a new store with Redis backend.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis: redisClient,
	}
}

// Get retrieves a record by key.
// Returns ErrCacheMiss if the key doesn't exist.
func (s *RedisStore) Get(ctx context.Context, key Key) (catalog.Record, error) {
	data, err := s.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.WithLabelValues(backendRedis).Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues(backendRedis, "get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	entry, err := decodeEntry(data)
	if err != nil {
		CacheErrors.WithLabelValues(backendRedis, "get").Inc()
		return nil, err
	}

	CacheHits.WithLabelValues(backendRedis).Inc()
	return entry.Record, nil
}

// Put stores a record without expiry.
func (s *RedisStore) Put(ctx context.Context, key Key, record catalog.Record) error {
	data, err := encodeEntry(&Entry{Record: record, CachedAt: time.Now()})
	if err != nil {
		CacheErrors.WithLabelValues(backendRedis, "put").Inc()
		return err
	}

	if err := s.redis.Set(ctx, key.String(), data, 0).Err(); err != nil {
		CacheErrors.WithLabelValues(backendRedis, "put").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		CacheErrors.WithLabelValues(backendRedis, "ping").Inc()
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
