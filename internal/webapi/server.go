package webapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port         int
	MaxBodyBytes int64
	// ResultsDir is where batch runs write attempt records. Empty disables
	// the results endpoints' file lookup.
	ResultsDir string
	Scorer     Scorer
	Runner     BatchRunner
	Logger     *slog.Logger
}

// Server wraps the HTTP server with configuration.
type Server struct {
	cfg    Config
	srv    *http.Server
	logger *slog.Logger
}

// New creates a new HTTP server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Scorer == nil || cfg.Runner == nil {
		return nil, fmt.Errorf("web API needs both a scorer and a batch runner")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}

	mux := http.NewServeMux()
	h := NewHandlers(cfg.Scorer, cfg.Runner, NewFileStore(cfg.ResultsDir), cfg.MaxBodyBytes, cfg.Logger)
	RegisterRoutes(mux, h)

	return &Server{
		cfg:    cfg,
		logger: cfg.Logger,
		srv: &http.Server{
			Addr:              fmt.Sprintf("127.0.0.1:%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.logger.Info("HTTP server starting", "address", s.srv.Addr)

	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", "error", err)
		}
	}()

	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Handler returns the underlying http.Handler (useful for testing).
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
