package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/carbon-intensity-service/internal/domain"
	"github.com/couchcryptid/carbon-intensity-service/internal/resolver"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// SampleSource serves the most recent carbon intensity sample. ok is false
// until the first sample has been taken.
type SampleSource interface {
	Latest() (result domain.IntensityResult, sampledAt time.Time, ok bool)
}

// Server exposes the latest intensity sample plus health, readiness, and
// metrics HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /intensity, /healthz, /readyz, and
// /metrics routes.
func NewServer(addr string, ready ReadinessChecker, source SampleSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /intensity", handleIntensity(source))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

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

func handleIntensity(source SampleSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		result, sampledAt, ok := source.Latest()
		if !ok {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error": "no sample taken yet",
			})
			return
		}

		resp := intensityResponse{
			CarbonIntensity: result.CarbonIntensity,
			Unit:            "gCO2eq/kWh",
			Address:         result.Address,
			Country:         result.Country,
			IsFetched:       result.IsFetched,
			IsLocalized:     result.IsLocalized,
			IsPrediction:    result.IsPrediction,
			Message:         resolver.Message(result),
			SampledAt:       sampledAt,
		}
		if result.TimeDuration != nil {
			secs := result.TimeDuration.Seconds()
			resp.TimeDurationS = &secs
		}
		writeJSON(w, http.StatusOK, resp)
	}
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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}

// intensityResponse is the JSON view of a sample.
type intensityResponse struct {
	CarbonIntensity float64   `json:"carbon_intensity"`
	Unit            string    `json:"unit"`
	Address         string    `json:"address"`
	Country         string    `json:"country"`
	IsFetched       bool      `json:"is_fetched"`
	IsLocalized     bool      `json:"is_localized"`
	IsPrediction    bool      `json:"is_prediction"`
	TimeDurationS   *float64  `json:"time_duration_s,omitempty"`
	Message         string    `json:"message"`
	SampledAt       time.Time `json:"sampled_at"`
}
