// Package web exposes the flow pipeline over HTTP.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/taigaflow/taigaflow/internal/contract"
)

// requestTimeout bounds one API request, including all upstream Taiga calls.
const requestTimeout = 2 * time.Minute

// shutdownTimeout bounds the drain period after a termination signal.
const shutdownTimeout = 10 * time.Second

// Server handles HTTP requests.
type Server struct {
	Router  *chi.Mux
	baseCfg *contract.Config
	mgr     contract.CacheManager
	logger  *logrus.Logger
}

// NewServer creates a new web server around a validated base config.
func NewServer(baseCfg *contract.Config, mgr contract.CacheManager, logger *logrus.Logger) *Server {
	s := &Server{
		baseCfg: baseCfg,
		mgr:     mgr,
		logger:  logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	// Request logging middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(s.logRequests)

	// Health check endpoint
	r.Get("/healthz", s.healthCheck)

	// API endpoints
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/statuses", s.getStatuses)
		r.Get("/cfd", s.getCFD)
		r.Get("/summary", s.getSummary)
	})

	s.Router = r
}

// logRequests emits one structured log line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start).String(),
		}).Info("request handled")
	})
}

// Start runs the server until ctx is cancelled, then drains connections.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return <-errCh
}

// writeJSON writes a success envelope with the given payload.
func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Warn("failed to encode response")
	}
}

// writeError maps a pipeline error onto an HTTP status and writes the error envelope.
// Client mistakes map to 400, upstream trouble to 502, everything else to 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case contract.IsValidation(err):
		status = http.StatusBadRequest
	case contract.IsAuth(err), contract.IsNetwork(err):
		status = http.StatusBadGateway
	}

	s.writeJSON(w, status, map[string]any{
		"status":    "error",
		"error":     err.Error(),
		"timestamp": time.Now().UTC(),
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "taigaflow-api",
	})
}
