package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/groundwater-animation/internal/render"
)

// Previewer is a live animation that can be paused and snapshotted.
type Previewer interface {
	WritePNG(w io.Writer) error
	TogglePause() render.State
	Status() render.Status
}

// Server exposes health, readiness, metrics, and live preview endpoints.
type Server struct {
	httpServer *http.Server
	preview    Previewer
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /frame.png, /status, and /toggle routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, preview Previewer, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		preview: preview,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /frame.png", s.handleFrame)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("POST /toggle", s.handleToggle)

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

func (s *Server) handleFrame(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.preview.WritePNG(w); err != nil {
		s.logger.Error("render preview frame", "error", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.preview.Status())
}

// handleToggle is the click binding: each POST flips pause.
func (s *Server) handleToggle(w http.ResponseWriter, _ *http.Request) {
	state := s.preview.TogglePause()
	s.logger.Info("animation toggled", "state", state.String())
	writeJSON(w, http.StatusOK, map[string]string{"state": state.String()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
