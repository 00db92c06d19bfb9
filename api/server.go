// Package api exposes matches, tournaments and replicator runs over HTTP.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/signalnine/ecoround/config"
	"github.com/signalnine/ecoround/engine"
	"github.com/signalnine/ecoround/logging"
	"github.com/signalnine/ecoround/store"
)

// Server handles HTTP requests
type Server struct {
	db        store.DB
	cfg       config.Config
	logger    *slog.Logger
	startTime time.Time
}

// NewServer creates a new API server. Request bodies start from cfg's match,
// tournament and replicator sections. A nil db disables persistence.
func NewServer(cfg *config.Config, db store.DB, logger *slog.Logger) *Server {
	return &Server{
		db:        db,
		cfg:       *cfg,
		logger:    logging.OrDiscard(logger),
		startTime: time.Now(),
	}
}

// Routes sets up the HTTP routes
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if s.cfg.Server.WriteTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.Server.WriteTimeout))
	}

	r.Get("/health", s.handleHealth)
	r.Get("/strategies", s.handleStrategies)
	r.Post("/matches", s.handleMatch)
	r.Post("/tournaments", s.handleTournament)
	r.Post("/replicator", s.handleReplicator)
	r.Route("/runs", func(r chi.Router) {
		r.Get("/", s.handleListRuns)
		r.Get("/{id}", s.handleGetRun)
	})

	return r
}

// requestLogger logs each request once it completes.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", engine.Version)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encode response", "error", err)
	}
}

// writeBinary writes a FlatBuffers payload.
func (s *Server) writeBinary(w http.ResponseWriter, buf []byte) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("X-Engine-Version", engine.Version)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf); err != nil {
		s.logger.Warn("write response", "error", err)
	}
}
