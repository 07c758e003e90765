// Package metrics provides the centralized Prometheus registry reference for
// the edge gateway. All metrics are defined in their respective packages
// (cache, ratelimit, proxy) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the gateway.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - edge_cache_hits_total{freshness} (Counter): Servable cache reads (hit, stale)
//   - edge_cache_misses_total (Counter): Cache misses (absent, expired, unreadable)
//   - edge_cache_writes_total (Counter): Responses written to the cache
//   - edge_cache_errors_total{operation} (Counter): Store errors by operation (get, set)
//
// Rate Limit Metrics (pkg/ratelimit):
//   - edge_ratelimit_allowed_total (Counter): Requests admitted within quota
//   - edge_ratelimit_denied_total{path} (Counter): Requests rejected with 429
//   - edge_ratelimit_failopen_total (Counter): Requests admitted because the store was down
//
// Upstream Metrics (pkg/proxy):
//   - edge_upstream_requests_total{path, status} (Counter): Origin fetches by path and status
//   - edge_upstream_duration_seconds{path} (Histogram): Origin fetch latency
//   - edge_upstream_timeouts_total (Counter): Fetches abandoned at the timeout bound
//
// Example Prometheus Queries:
//
//   # Cache hit rate (any servable freshness)
//   sum(rate(edge_cache_hits_total[5m])) /
//   (sum(rate(edge_cache_hits_total[5m])) + sum(rate(edge_cache_misses_total[5m])))
//
//   # Rate limiting pressure per path
//   rate(edge_ratelimit_denied_total[5m])
//
//   # Fail-open events (counter store outage indicator)
//   rate(edge_ratelimit_failopen_total[5m]) > 0
//
//   # P95 origin latency
//   histogram_quantile(0.95, rate(edge_upstream_duration_seconds_bucket[5m]))
