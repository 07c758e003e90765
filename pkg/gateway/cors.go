package gateway

import "net/http"

// Preflight response values. These are exact strings the frontend depends on;
// credentials mode means the origin is always reflected, never "*".
const (
	allowMethods    = "GET, POST, PUT, DELETE, OPTIONS"
	allowHeaders    = "Content-Type, Authorization"
	preflightMaxAge = "86400"
)

// OriginValidator enforces the browser-origin allow-list.
type OriginValidator struct {
	allowed map[string]struct{}
}

// NewOriginValidator builds a validator from the configured exact-match
// origin strings.
func NewOriginValidator(origins []string) *OriginValidator {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return &OriginValidator{allowed: allowed}
}

// Allowed reports whether the given Origin header value is allow-listed.
func (v *OriginValidator) Allowed(origin string) bool {
	_, ok := v.allowed[origin]
	return ok
}

// HandlePreflight answers an OPTIONS request. An absent or unlisted origin
// gets a bare 403; an allow-listed origin gets 204 with the origin reflected.
func (v *OriginValidator) HandlePreflight(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" || !v.Allowed(origin) {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	h := w.Header()
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Methods", allowMethods)
	h.Set("Access-Control-Allow-Headers", allowHeaders)
	h.Set("Access-Control-Allow-Credentials", "true")
	h.Set("Access-Control-Max-Age", preflightMaxAge)
	w.WriteHeader(http.StatusNoContent)
}
