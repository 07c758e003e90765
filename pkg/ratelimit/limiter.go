// Package ratelimit implements per-client request quotas using fixed
// one-minute tumbling windows. Counters are keyed by (client IP, path,
// minute bucket) in the shared kv store so every gateway instance sees the
// same counts. Store failures never reject a request: the limiter is
// advisory and fails open by policy.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dividendspro/edge-gateway/pkg/kv"
)

const (
	// bucketWidth is the tumbling window size.
	bucketWidth = time.Minute

	// counterTTL is the store expiration for counter keys. It exceeds the
	// bucket width so live buckets are never evicted mid-window, and keeps
	// dead buckets from accumulating.
	counterTTL = 2 * time.Minute
)

// Outcome is the limiter's verdict for one request.
type Outcome int

const (
	// Allowed means the request is inside its quota.
	Allowed Outcome = iota

	// Denied means the quota for this window is exhausted.
	Denied

	// Indeterminate means the counter store could not answer. Callers must
	// treat this as allowed (fail-open), but it is reported distinctly so
	// outages are visible rather than silently widening quotas.
	Indeterminate
)

// Decision carries the verdict plus the data needed to build a 429 response.
type Decision struct {
	Outcome Outcome

	// RetryAfter is the time until the next window opens. Only meaningful
	// when Outcome is Denied.
	RetryAfter time.Duration
}

// Allow reports whether the request should proceed. Indeterminate counts as
// allowed per the fail-open policy.
func (d Decision) Allow() bool {
	return d.Outcome != Denied
}

// Limiter enforces per-path request-per-minute ceilings.
type Limiter struct {
	store        kv.Store
	limits       map[string]int
	defaultLimit int
	logger       zerolog.Logger
	now          func() time.Time
}

// New creates a limiter. limits maps paths to requests-per-minute; paths
// without an entry use defaultLimit.
func New(store kv.Store, limits map[string]int, defaultLimit int, logger zerolog.Logger) *Limiter {
	if defaultLimit <= 0 {
		panic(fmt.Sprintf("default limit must be positive, got %d", defaultLimit))
	}
	return &Limiter{
		store:        store,
		limits:       limits,
		defaultLimit: defaultLimit,
		logger:       logger,
		now:          time.Now,
	}
}

// LimitFor returns the requests-per-minute ceiling for a path.
func (l *Limiter) LimitFor(path string) int {
	if limit, ok := l.limits[path]; ok {
		return limit
	}
	return l.defaultLimit
}

// Check records one request for (clientIP, path) and decides whether it is
// within quota. The counter increment and limit comparison run against the
// shared store; if the store is unreachable the decision is Indeterminate.
func (l *Limiter) Check(ctx context.Context, clientIP, path string) Decision {
	if l.store == nil {
		// No counter store bound: quotas cannot be enforced.
		failOpenTotal.Inc()
		return Decision{Outcome: Indeterminate}
	}

	now := l.now()
	bucket := now.Unix() / int64(bucketWidth/time.Second)
	key := fmt.Sprintf("edge:ratelimit:%s:%s:%d", clientIP, path, bucket)

	count, err := l.store.Incr(ctx, key, counterTTL)
	if err != nil {
		l.logger.Warn().
			Err(err).
			Str("client_ip", clientIP).
			Str("path", path).
			Msg("Rate limit store error, failing open")
		failOpenTotal.Inc()
		return Decision{Outcome: Indeterminate}
	}

	limit := l.LimitFor(path)
	if count > int64(limit) {
		retryAfter := time.Duration(60-now.Unix()%60) * time.Second

		l.logger.Warn().
			Str("client_ip", clientIP).
			Str("path", path).
			Int64("count", count).
			Int("limit", limit).
			Dur("retry_after", retryAfter).
			Msg("Rate limit exceeded")

		deniedTotal.WithLabelValues(path).Inc()
		return Decision{Outcome: Denied, RetryAfter: retryAfter}
	}

	l.logger.Debug().
		Str("client_ip", clientIP).
		Str("path", path).
		Int64("count", count).
		Int("limit", limit).
		Msg("Rate limit check passed")

	allowedTotal.Inc()
	return Decision{Outcome: Allowed}
}

// SetNow overrides the limiter's clock (for testing window boundaries).
func (l *Limiter) SetNow(now func() time.Time) {
	l.now = now
}
