// Package metrics exposes the Prometheus registry shared by the service.
// Metrics are defined in their own packages (api, client, cache, ratelimit)
// and registered via promauto on the default registerer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer every package registers its metrics with.
var Registry = prometheus.DefaultRegisterer

// Gatherer collects the metrics served by Handler.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the gathered metrics in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// HTTP Metrics (pkg/api):
//   - catalog_http_requests_total{route, code} (Counter): Requests by route pattern and status code
//   - catalog_http_request_duration_seconds{route} (Histogram): Request duration by route pattern
//
// Upstream Metrics (pkg/client):
//   - catalog_upstream_requests_total{endpoint, status} (Counter): Upstream requests by endpoint and HTTP status
//   - catalog_upstream_request_duration_seconds{endpoint} (Histogram): Upstream request duration
//   - catalog_upstream_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network, decode)
//   - catalog_upstream_retries_total{error_class} (Counter): Retry attempts by error class
//   - catalog_upstream_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - catalog_upstream_retry_exhausted_total{error_class} (Counter): Requests that exhausted their attempts
//
// Rate Limit Metrics (pkg/ratelimit):
//   - catalog_upstream_rate_limit_wait_seconds (Histogram): Time spent waiting for the outbound limiter
//   - catalog_upstream_rate_limit_blocks_total (Counter): Blocks applied after a 429 with Retry-After
//
// Cache Metrics (pkg/cache):
//   - catalog_cache_hits_total{backend} (Counter): Cache hits by backend
//   - catalog_cache_misses_total{backend} (Counter): Cache misses by backend
//   - catalog_cache_errors_total{backend, operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(catalog_cache_hits_total[5m])) /
//   (sum(rate(catalog_cache_hits_total[5m])) + sum(rate(catalog_cache_misses_total[5m])))
//
//   # Upstream Error Rate
//   sum by (class) (rate(catalog_upstream_errors_total[5m]))
//
//   # P95 Endpoint Latency
//   histogram_quantile(0.95, sum by (le, route) (rate(catalog_http_request_duration_seconds_bucket[5m])))
