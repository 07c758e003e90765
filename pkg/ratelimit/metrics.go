package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// allowedTotal counts requests admitted within quota
	allowedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edge_ratelimit_allowed_total",
		Help: "Total number of requests admitted by the rate limiter",
	})

	// deniedTotal counts rejected requests by path
	deniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edge_ratelimit_denied_total",
		Help: "Total number of requests rejected with 429",
	}, []string{"path"})

	// failOpenTotal counts indeterminate decisions caused by store failures
	failOpenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edge_ratelimit_failopen_total",
		Help: "Total number of requests admitted because the counter store was unavailable",
	})
)
