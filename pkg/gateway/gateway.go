// Package gateway implements the edge policy engine: a fixed per-request
// pipeline of CORS validation, Zero-Trust gating, rate limiting, response
// caching, and origin proxying, with security headers stamped on every
// response on the way out.
package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/dividendspro/edge-gateway/pkg/cache"
	"github.com/dividendspro/edge-gateway/pkg/config"
	"github.com/dividendspro/edge-gateway/pkg/proxy"
	"github.com/dividendspro/edge-gateway/pkg/ratelimit"
)

// cacheWriteTimeout bounds the detached async cache write.
const cacheWriteTimeout = 10 * time.Second

// Gateway is the per-request policy engine. It is stateless; all shared
// state lives behind the limiter's and cache's kv store.
type Gateway struct {
	cfg       config.Config
	origins   *OriginValidator
	gate      *AccessGate
	limiter   *ratelimit.Limiter
	cache     *cache.Manager
	forwarder *proxy.Forwarder
	logger    zerolog.Logger
	now       func() time.Time
}

// New wires the policy engine together.
func New(
	cfg config.Config,
	limiter *ratelimit.Limiter,
	cacheManager *cache.Manager,
	forwarder *proxy.Forwarder,
	logger zerolog.Logger,
) *Gateway {
	return &Gateway{
		cfg:       cfg,
		origins:   NewOriginValidator(cfg.AllowedOrigins),
		gate:      NewAccessGate(cfg.ProtectedPrefixes),
		limiter:   limiter,
		cache:     cacheManager,
		forwarder: forwarder,
		logger:    logger,
		now:       time.Now,
	}
}

// ServeHTTP runs the policy pipeline in fixed order: CORS preflight, origin
// validation, Zero-Trust gate, rate limiter, cache read, origin proxy, async
// cache write. A panic anywhere in the pipeline becomes a 500 JSON error; a
// bare connection reset is never surfaced to the client.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := g.now()
	rec := newStatusRecorder(w)

	defer func() {
		if err := recover(); err != nil {
			g.logger.Error().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Interface("panic", err).
				Str("stack", string(debug.Stack())).
				Msg("Recovered handler panic")

			if !rec.wroteHeader {
				writeJSONError(rec, http.StatusInternalServerError, CodeGatewayError,
					"unexpected gateway fault")
			}
		}

		g.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Str("client_ip", ClientIP(r)).
			Str("cache_status", rec.Header().Get("X-Cache-Status")).
			Dur("duration", g.now().Sub(start)).
			Msg("Request handled")
	}()

	origin := r.Header.Get("Origin")
	originAllowed := origin != "" && g.origins.Allowed(origin)
	SecurityHeaders(rec, r, originAllowed)

	// CORS preflight short-circuits everything else.
	if r.Method == http.MethodOptions {
		g.origins.HandlePreflight(rec, r)
		return
	}

	// A present but unlisted Origin is rejected before any other processing.
	// Absent Origin (server-to-server calls) passes through.
	if origin != "" && !originAllowed {
		writeJSONError(rec, http.StatusForbidden, CodeOriginDenied,
			"origin is not allowed to access this API")
		return
	}

	if !g.gate.Admit(r) {
		g.logger.Warn().
			Str("path", r.URL.Path).
			Str("client_ip", ClientIP(r)).
			Msg("Staff route denied: missing access assertion")
		writeJSONError(rec, http.StatusForbidden, CodeStaffRequired,
			"this route requires a staff access token")
		return
	}

	decision := g.limiter.Check(r.Context(), ClientIP(r), r.URL.Path)
	if !decision.Allow() {
		writeRateLimited(rec, int(decision.RetryAfter.Seconds()))
		return
	}

	rule, cacheable := g.cfg.CacheRules[r.URL.Path]
	cacheable = cacheable && r.Method == http.MethodGet

	if cacheable {
		result, err := g.cache.Get(r.Context(), r.URL.Path, r.URL.RawQuery, rule)
		if err == nil {
			g.writeCached(rec, result)
			return
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			// Store trouble degrades to a miss, never to a failure.
			g.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Cache read error, treating as miss")
		}
	}

	resp, err := g.forwarder.Forward(r)
	if err != nil {
		if errors.Is(err, proxy.ErrUpstreamTimeout) {
			writeJSONError(rec, http.StatusGatewayTimeout, CodeUpstreamExpiry,
				"origin did not respond in time")
			return
		}
		g.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Upstream fetch failed")
		writeJSONError(rec, http.StatusInternalServerError, CodeGatewayError,
			"failed to reach the origin")
		return
	}

	stream := proxy.IsStream(r.URL.Path)
	if cacheable && !stream {
		// The header is present on every cacheable GET, even when the origin
		// answer is not storable.
		rec.Header().Set("X-Cache-Status", "MISS")
	}
	if stream || !cacheable || resp.StatusCode != http.StatusOK {
		g.forwarder.WriteResponse(rec, resp, stream)
		return
	}

	// Cacheable hit path: buffer the body so it can be returned to the
	// client now and written to the cache off the response path.
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		g.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Origin body read failed")
		writeJSONError(rec, http.StatusInternalServerError, CodeGatewayError,
			"origin response could not be read")
		return
	}

	entry := &cache.Entry{
		Body:       body,
		StatusCode: resp.StatusCode,
		Headers:    resp.Header.Clone(),
		CapturedAt: g.now(),
	}
	go g.writeCacheEntry(r.URL.Path, r.URL.RawQuery, entry, rule)

	proxy.CopyHeaders(rec.Header(), resp.Header)
	rec.WriteHeader(resp.StatusCode)
	_, _ = rec.Write(body)
}

// writeCached reconstructs a response from a cache entry without contacting
// the origin.
func (g *Gateway) writeCached(w *statusRecorder, result *cache.Result) {
	proxy.CopyHeaders(w.Header(), result.Entry.Headers)
	w.Header().Set("X-Cache-Status", result.Freshness.String())
	w.Header().Set("Age", strconv.Itoa(int(result.Age.Seconds())))
	w.WriteHeader(result.Entry.StatusCode)
	_, _ = w.Write(result.Entry.Body)
}

// writeCacheEntry stores a captured response detached from the request so kv
// write latency never adds to client-perceived latency. Errors are swallowed:
// failing to cache is not failing the request.
func (g *Gateway) writeCacheEntry(path, rawQuery string, entry *cache.Entry, rule config.CacheRule) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
	defer cancel()

	if err := g.cache.Set(ctx, path, rawQuery, entry, rule); err != nil {
		g.logger.Debug().Err(err).Str("path", path).Msg("Async cache write failed")
	}
}

// SetNow overrides the gateway's clock (for testing capture timestamps).
func (g *Gateway) SetNow(now func() time.Time) {
	g.now = now
}

// statusRecorder captures the response status for logging and tracks whether
// the header was written so panic recovery knows if a 500 can still be sent.
// Flush passes through so SSE streaming works behind the wrapper.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.status = status
	r.wroteHeader = true
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(p)
}

func (r *statusRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
