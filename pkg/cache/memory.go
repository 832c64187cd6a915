package cache

import (
	"context"
	"time"

	"github.com/Sternrassler/steam-catalog-api/pkg/catalog"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is a Store held in process memory. Records are kept in their
// serialized form so callers never share maps with the cache.
type MemoryStore struct {
	cache *gocache.Cache
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store whose entries never expire.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get retrieves a record by key.
// Returns ErrCacheMiss if the key doesn't exist.
func (s *MemoryStore) Get(ctx context.Context, key Key) (catalog.Record, error) {
	value, found := s.cache.Get(key.String())
	if !found {
		CacheMisses.WithLabelValues(backendMemory).Inc()
		return nil, ErrCacheMiss
	}

	entry, err := decodeEntry(value.([]byte))
	if err != nil {
		CacheErrors.WithLabelValues(backendMemory, "get").Inc()
		return nil, err
	}

	CacheHits.WithLabelValues(backendMemory).Inc()
	return entry.Record, nil
}

// Put stores a record.
func (s *MemoryStore) Put(ctx context.Context, key Key, record catalog.Record) error {
	data, err := encodeEntry(&Entry{Record: record, CachedAt: time.Now()})
	if err != nil {
		CacheErrors.WithLabelValues(backendMemory, "put").Inc()
		return err
	}

	s.cache.Set(key.String(), data, gocache.NoExpiration)
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of cached records.
func (s *MemoryStore) Len() int {
	return s.cache.ItemCount()
}
