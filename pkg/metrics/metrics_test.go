package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/dividendspro/edge-gateway/pkg/cache"
	_ "github.com/dividendspro/edge-gateway/pkg/proxy"
	_ "github.com/dividendspro/edge-gateway/pkg/ratelimit"
)

func TestRegistry(t *testing.T) {
	if Registry == nil {
		t.Error("Registry should not be nil")
	}

	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
}

// The gateway packages register their metrics via promauto at init time; the
// label-less counters are visible in the default registry as soon as the
// package is linked.
func TestGatewayMetricsRegistered(t *testing.T) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	registered := make(map[string]bool, len(families))
	for _, family := range families {
		registered[family.GetName()] = true
	}

	for _, name := range []string{
		"edge_cache_misses_total",
		"edge_cache_writes_total",
		"edge_ratelimit_allowed_total",
		"edge_ratelimit_failopen_total",
		"edge_upstream_timeouts_total",
	} {
		if !registered[name] {
			t.Errorf("Metric %s not registered", name)
		}
	}
}
