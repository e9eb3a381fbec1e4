package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"voxpitch/internal/api"
	"voxpitch/internal/config"
	"voxpitch/internal/jobs"
	"voxpitch/internal/logging"
	"voxpitch/internal/pipeline"
	"voxpitch/internal/services"
)

// StatusSource supplies the daemon snapshot served at /api/status.
type StatusSource interface {
	Status(ctx context.Context) api.StatusResponse
}

// Server exposes the pipeline over HTTP.
type Server struct {
	bind           string
	logger         *slog.Logger
	orch           *pipeline.Orchestrator
	journal        *jobs.Store
	status         StatusSource
	maxUploadBytes int64

	listener net.Listener
	server   *http.Server
}

// New constructs the HTTP server. The journal and status source may be nil;
// the matching endpoints then serve empty payloads.
func New(cfg *config.Config, orch *pipeline.Orchestrator, journal *jobs.Store, status StatusSource, logger *slog.Logger) (*Server, error) {
	if cfg == nil || orch == nil {
		return nil, errors.New("server requires config and orchestrator")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	srv := &Server{
		bind:           cfg.Paths.APIBind,
		logger:         logger.With(logging.String("component", "api-server")),
		orch:           orch,
		journal:        journal,
		status:         status,
		maxUploadBytes: cfg.MaxUploadBytes(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/upload", srv.handleUpload)
	mux.HandleFunc("/api/transform", srv.handleTransform)
	mux.HandleFunc("/api/audio/", srv.handleStream)
	mux.HandleFunc("/api/download/", srv.handleDownload)
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/jobs", srv.handleJobs)

	srv.server = &http.Server{
		Handler:           srv.withRequestID(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Handler returns the root handler, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving and arranges shutdown when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down.
func (s *Server) Stop() {
	if s == nil || s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := services.WithRequestID(r.Context(), uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
