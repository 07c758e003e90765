package proxy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequests counts origin fetches by path and status
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edge_upstream_requests_total",
		Help: "Total upstream requests by path and status",
	}, []string{"path", "status"})

	// UpstreamDuration tracks origin fetch latency
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "edge_upstream_duration_seconds",
		Help:    "Upstream request duration in seconds by path",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"path"})

	// UpstreamTimeouts counts fetches abandoned at the timeout bound
	UpstreamTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edge_upstream_timeouts_total",
		Help: "Total upstream requests that exceeded the timeout bound",
	})
)
