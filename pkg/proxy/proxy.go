// Package proxy forwards requests to the origin backend. It rebuilds the
// upstream URL from a fixed base, strips edge-injected headers, never follows
// redirects on the client's behalf, and streams Server-Sent-Events responses
// through without buffering.
package proxy

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrUpstreamTimeout indicates the origin did not respond within the
// configured bound.
var ErrUpstreamTimeout = errors.New("upstream timeout")

// strippedHeaders are removed before forwarding: edge-infrastructure headers
// the origin must not see twice, plus standard hop-by-hop headers.
var strippedHeaders = []string{
	"Cf-Connecting-Ip",
	"Cf-Ray",
	"Cf-Visitor",
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Forwarder proxies requests to a single origin base URL.
type Forwarder struct {
	baseURL      string
	client       *http.Client
	streamClient *http.Client
	logger       zerolog.Logger
}

// New creates a forwarder for the given origin base URL. timeout bounds
// non-streaming fetches; streaming paths use an unbounded client so SSE
// connections can stay open indefinitely.
func New(baseURL string, timeout time.Duration, logger zerolog.Logger) *Forwarder {
	// Redirects pass through to the client untouched.
	noRedirect := func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Forwarder{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:       timeout,
			CheckRedirect: noRedirect,
		},
		streamClient: &http.Client{
			CheckRedirect: noRedirect,
		},
		logger: logger,
	}
}

// IsStream reports whether a path carries a streaming (SSE) response.
func IsStream(path string) bool {
	return strings.Contains(path, "/stream")
}

// Forward sends the request upstream and returns the origin's response.
// Origin application errors (4xx/5xx) are returned as responses, not errors;
// only transport failures produce an error.
func (f *Forwarder) Forward(r *http.Request) (*http.Response, error) {
	upstreamURL := f.baseURL + r.URL.Path
	if r.URL.RawQuery != "" {
		upstreamURL += "?" + r.URL.RawQuery
	}

	var body io.Reader
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		body = r.Body
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, upstreamURL, body)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}

	req.Header = r.Header.Clone()
	for _, h := range strippedHeaders {
		req.Header.Del(h)
	}

	client := f.client
	if IsStream(r.URL.Path) {
		client = f.streamClient
	}

	start := time.Now()
	resp, err := client.Do(req)
	UpstreamDuration.WithLabelValues(r.URL.Path).Observe(time.Since(start).Seconds())

	if err != nil {
		if isTimeout(err) {
			UpstreamTimeouts.Inc()
			f.logger.Error().
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Msg("Upstream fetch timed out")
			return nil, fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		}
		UpstreamRequests.WithLabelValues(r.URL.Path, "network_error").Inc()
		return nil, fmt.Errorf("upstream fetch: %w", err)
	}

	UpstreamRequests.WithLabelValues(r.URL.Path, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	f.logger.Debug().
		Str("path", r.URL.Path).
		Str("method", r.Method).
		Int("status", resp.StatusCode).
		Msg("Proxied to origin")

	return resp, nil
}

// isTimeout reports whether a client error was caused by a deadline.
func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, http.ErrHandlerTimeout)
}

// WriteResponse copies an upstream response to the client. Streaming
// responses are flushed chunk by chunk so SSE keep-alives reach the client
// as they arrive instead of after full buffering.
func (f *Forwarder) WriteResponse(w http.ResponseWriter, resp *http.Response, stream bool) {
	defer resp.Body.Close()

	CopyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)

	var dst io.Writer = w
	if stream {
		if flusher, ok := w.(http.Flusher); ok {
			dst = &flushWriter{w: w, flusher: flusher}
		}
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		// The client went away or the origin stream broke mid-body; the
		// status line is already written, so there is nothing to send.
		f.logger.Debug().Err(err).Msg("Response body copy interrupted")
	}
}

// CopyHeaders copies upstream headers, dropping hop-by-hop entries. Headers
// already stamped on the response (security and CORS headers set by the edge)
// take precedence over the origin's copies.
func CopyHeaders(dst, src http.Header) {
	for key, values := range src {
		if isHopHeader(key) {
			continue
		}
		if len(dst.Values(key)) > 0 {
			continue
		}
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}

func isHopHeader(key string) bool {
	switch http.CanonicalHeaderKey(key) {
	case "Connection", "Keep-Alive", "Proxy-Authenticate", "Proxy-Authorization",
		"Te", "Trailer", "Transfer-Encoding", "Upgrade":
		return true
	}
	return false
}

// flushWriter flushes after every chunk written through it.
type flushWriter struct {
	w       io.Writer
	flusher http.Flusher
}

func (fw *flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if n > 0 {
		fw.flusher.Flush()
	}
	return n, err
}
