package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks servable cache reads by freshness (hit, stale)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edge_cache_hits_total",
			Help: "Total number of cache reads served without contacting the origin",
		},
		[]string{"freshness"}, // "hit", "stale"
	)

	// CacheMisses tracks cache misses (absent, expired, or unreadable entries)
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "edge_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// CacheWrites tracks successful cache writes
	CacheWrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "edge_cache_writes_total",
			Help: "Total number of responses written to the cache",
		},
	)

	// CacheErrors tracks cache operation errors by operation
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edge_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set"
	)
)
