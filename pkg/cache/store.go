package cache

import (
	"context"
	"errors"

	"github.com/Sternrassler/steam-catalog-api/pkg/catalog"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store is a key-value store for catalog records.
type Store interface {
	// Get returns the record stored under key, or ErrCacheMiss.
	Get(ctx context.Context, key Key) (catalog.Record, error)

	// Put stores record under key, replacing any previous value.
	Put(ctx context.Context, key Key, record catalog.Record) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
