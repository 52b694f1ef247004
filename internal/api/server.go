// Package api exposes the run's health, progress, and Prometheus metrics
// over HTTP while a batch is draining.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/midiakiasat/MAILSIEVE/internal/batch"
)

// ProgressSource yields the orchestrator's current counters.
type ProgressSource interface {
	Progress() batch.Progress
}

type Server struct {
	http   *http.Server
	logger *zap.Logger
}

func NewServer(addr string, source ProgressSource, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		http:   &http.Server{Addr: addr, Handler: NewRouter(source, logger)},
		logger: logger,
	}
}

// NewRouter builds the route tree on its own so tests can drive it without
// binding a port. A nil logger is replaced, not dereferenced.
func NewRouter(source ProgressSource, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/api/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(source.Progress()); err != nil {
			logger.Debug("status encode failed", zap.Error(err))
		}
	})
	return r
}

// Start serves until Shutdown. Meant to run in its own goroutine.
func (s *Server) Start() {
	s.logger.Info("status server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Warn("status server stopped", zap.Error(err))
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
