package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Backend labels.
const (
	backendRedis  = "redis"
	backendMemory = "memory"
)

var (
	// CacheHits tracks cache hits by backend
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_hits_total",
			Help: "Total number of catalog cache hits",
		},
		[]string{"backend"},
	)

	// CacheMisses tracks cache misses by backend
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_misses_total",
			Help: "Total number of catalog cache misses",
		},
		[]string{"backend"},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"backend", "operation"}, // "get", "put", "ping"
	)
)
