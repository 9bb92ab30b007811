// Package httpapi exposes the RCI service over HTTP: health, readiness, and
// metrics endpoints plus the JSON query API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericrodrz/rci-service/internal/observability"
	"github.com/ericrodrz/rci-service/internal/rci"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the query API alongside health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	calc       *rci.Calculator
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates the HTTP server with all routes registered.
func NewServer(addr string, calc *rci.Calculator, ready ReadinessChecker, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		calc:    calc,
		metrics: metrics,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/v1/rci/{zip}", s.handleRCI)
	mux.HandleFunc("GET /api/v1/coverage/{zip}", s.handleCoverage)
	mux.HandleFunc("GET /api/v1/coverage", s.handleCoverageQuery)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleRCI(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		s.metrics.RequestDuration.WithLabelValues("rci").Observe(time.Since(start).Seconds())
	}()

	result, err := s.calc.Calculate(r.Context(), r.PathValue("zip"))
	if err != nil {
		s.metrics.RCIRequests.WithLabelValues(outcomeLabel(err)).Inc()
		s.writeError(w, err)
		return
	}
	s.metrics.RCIRequests.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCoverage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		s.metrics.RequestDuration.WithLabelValues("coverage").Observe(time.Since(start).Seconds())
	}()

	result, err := s.calc.Coverage(r.Context(), r.PathValue("zip"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCoverageQuery resolves an explicit (state, county, place) triple,
// the query path for deployments without a postal lookup.
func (s *Server) handleCoverageQuery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		s.metrics.RequestDuration.WithLabelValues("coverage").Observe(time.Since(start).Seconds())
	}()

	q := r.URL.Query()
	result, err := s.calc.CoverageFor(q.Get("state"), q.Get("county"), q.Get("place"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeError maps calculation errors onto HTTP statuses: malformed input is
// the caller's fault, an unknown ZIP is a 404, a disabled locator or missing
// snapshot means the service cannot answer yet.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusServiceUnavailable
	switch {
	case errors.Is(err, rci.ErrInvalidZIP):
		status = http.StatusBadRequest
	case errors.Is(err, rci.ErrZIPNotFound):
		status = http.StatusNotFound
	case errors.Is(err, rci.ErrGeocodingDisabled):
		status = http.StatusNotImplemented
	default:
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, rci.ErrInvalidZIP):
		return "invalid_zip"
	case errors.Is(err, rci.ErrZIPNotFound):
		return "zip_not_found"
	default:
		return "error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
