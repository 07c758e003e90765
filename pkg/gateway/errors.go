package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Error codes returned to clients. The JSON shapes are part of the public
// contract and consumed by the frontend's error handling.
const (
	CodeRateLimited    = "RATE_LIMIT_EXCEEDED"
	CodeStaffRequired  = "STAFF_ACCESS_REQUIRED"
	CodeOriginDenied   = "ORIGIN_NOT_ALLOWED"
	CodeGatewayError   = "GATEWAY_ERROR"
	CodeUpstreamExpiry = "UPSTREAM_TIMEOUT"
	CodeNotFound       = "NOT_FOUND"
)

// errorBody is the generic structured error payload.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// rateLimitBody is the 429 payload; retryAfter is in seconds.
type rateLimitBody struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter"`
}

// writeJSONError writes a structured JSON error response.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: code, Message: message})
}

// writeRateLimited writes the 429 contract: Retry-After header plus JSON body
// carrying the same seconds value.
func writeRateLimited(w http.ResponseWriter, retryAfterSeconds int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(rateLimitBody{Error: CodeRateLimited, RetryAfter: retryAfterSeconds})
}
