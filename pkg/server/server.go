// Package server wires the gateway into an HTTP server: the /api mount,
// liveness and metrics endpoints, and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dividendspro/edge-gateway/pkg/gateway"
)

// Server hosts the gateway behind a chi router.
type Server struct {
	Router *chi.Mux
	httpd  *http.Server
	logger zerolog.Logger
}

// New builds the router: every method under /api/* goes to the gateway
// handler, /health answers liveness probes, /metrics exposes Prometheus
// metrics, and anything else is a JSON 404.
func New(port int, gatewayHandler http.Handler, logger zerolog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(securityHeaders)

	r.Handle("/api", gatewayHandler)
	r.Handle("/api/*", gatewayHandler)
	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.NotFound(notFoundHandler)

	return &Server{
		Router: r,
		httpd: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			// No WriteTimeout: SSE pass-through connections are long-lived.
		},
		logger: logger,
	}
}

// Start begins serving and blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpd.Addr).Msg("Starting edge gateway")
	if err := s.httpd.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down edge gateway")
	return s.httpd.Shutdown(ctx)
}

// securityHeaders stamps the baseline security header set on every route,
// including /health, /metrics, and the 404. The gateway re-applies the same
// set with the CORS reflection decision for allow-listed origins; the base
// headers are idempotent.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gateway.SecurityHeaders(w, r, false)
		next.ServeHTTP(w, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// notFoundHandler answers anything outside the API prefix.
func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprint(w, `{"error":"NOT_FOUND"}`)
}
