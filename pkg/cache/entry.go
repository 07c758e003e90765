package cache

import (
	"net/http"
	"time"
)

// Freshness classifies the age of a cache entry relative to its windows.
type Freshness int

const (
	// Fresh means the entry is younger than the TTL window (served as HIT).
	Fresh Freshness = iota

	// Stale means the entry is past the TTL but inside the SWR window
	// (served as STALE).
	Stale

	// Expired means the entry is past the SWR window and must not be served.
	Expired
)

// String returns the X-Cache-Status value for the freshness state.
func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "HIT"
	case Stale:
		return "STALE"
	default:
		return "EXPIRED"
	}
}

// Entry represents a cached origin response.
type Entry struct {
	// Body is the response body
	Body []byte `json:"body"`

	// StatusCode is the HTTP status code of the cached response
	StatusCode int `json:"status_code"`

	// Headers are the response headers
	Headers http.Header `json:"headers"`

	// CapturedAt is when the response was captured from the origin
	CapturedAt time.Time `json:"captured_at"`
}

// Age returns how old the entry is at the given time.
func (e *Entry) Age(now time.Time) time.Duration {
	age := now.Sub(e.CapturedAt)
	if age < 0 {
		return 0
	}
	return age
}

// FreshnessAt classifies the entry against the TTL and SWR windows.
func (e *Entry) FreshnessAt(now time.Time, ttl, swr time.Duration) Freshness {
	age := e.Age(now)
	switch {
	case age < ttl:
		return Fresh
	case age < swr:
		return Stale
	default:
		return Expired
	}
}
