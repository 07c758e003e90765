package cache

import (
	"testing"
	"time"
)

func TestFreshnessString(t *testing.T) {
	if Fresh.String() != "HIT" {
		t.Errorf("Fresh.String() = %q, want HIT", Fresh.String())
	}
	if Stale.String() != "STALE" {
		t.Errorf("Stale.String() = %q, want STALE", Stale.String())
	}
}

func TestEntry_Age(t *testing.T) {
	captured := time.Now()
	entry := &Entry{CapturedAt: captured}

	if got := entry.Age(captured.Add(90 * time.Second)); got != 90*time.Second {
		t.Errorf("Age = %v, want 90s", got)
	}

	// Clock skew must not produce a negative age
	if got := entry.Age(captured.Add(-time.Second)); got != 0 {
		t.Errorf("Age with skewed clock = %v, want 0", got)
	}
}

func TestEntry_FreshnessAt(t *testing.T) {
	captured := time.Now()
	ttl := 120 * time.Second
	swr := 600 * time.Second

	tests := []struct {
		name string
		age  time.Duration
		want Freshness
	}{
		{"brand_new", 0, Fresh},
		{"half_ttl", 60 * time.Second, Fresh},
		{"just_under_ttl", 119 * time.Second, Fresh},
		{"at_ttl", 120 * time.Second, Stale},
		{"mid_swr", 300 * time.Second, Stale},
		{"just_under_swr", 599 * time.Second, Stale},
		{"at_swr", 600 * time.Second, Expired},
		{"far_past_swr", 2 * 600 * time.Second, Expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &Entry{CapturedAt: captured}
			got := entry.FreshnessAt(captured.Add(tt.age), ttl, swr)
			if got != tt.want {
				t.Errorf("FreshnessAt(age=%v) = %v, want %v", tt.age, got, tt.want)
			}
		})
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		rawQuery string
		want     string
	}{
		{"no_query", "/api/market/prices", "", "edge:cache:/api/market/prices"},
		{"with_query", "/api/holders", "page=2&limit=50", "edge:cache:/api/holders?page=2&limit=50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.path, tt.rawQuery); got != tt.want {
				t.Errorf("Key(%q, %q) = %q, want %q", tt.path, tt.rawQuery, got, tt.want)
			}
		})
	}
}

func TestKey_QueriesCacheIndependently(t *testing.T) {
	a := Key("/api/holders", "page=1")
	b := Key("/api/holders", "page=2")
	if a == b {
		t.Error("Different query strings must produce different cache keys")
	}
}
