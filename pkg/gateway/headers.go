package gateway

import "net/http"

// EdgeMarkerHeader identifies responses processed by this gateway.
const (
	EdgeMarkerHeader = "X-Edge-Gateway"
	edgeMarkerValue  = "dividendspro-edge/1.0"
)

// SecurityHeaders stamps the outbound security headers on every response,
// success or error. HSTS is only meaningful over HTTPS, so it is set only
// when the request arrived on a secure transport (directly or behind a
// TLS-terminating proxy). CORS headers mirror the preflight policy for
// allow-listed origins on non-preflight responses.
func SecurityHeaders(w http.ResponseWriter, r *http.Request, originAllowed bool) {
	h := w.Header()
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Referrer-Policy", "no-referrer")
	h.Set(EdgeMarkerHeader, edgeMarkerValue)

	if isHTTPS(r) {
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	}

	if origin := r.Header.Get("Origin"); origin != "" && originAllowed {
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
	}
}

func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}
