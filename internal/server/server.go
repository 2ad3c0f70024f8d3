// Package server is the gateway's HTTP surface: health, per-namespace tool
// listings, and tool execution with optional NDJSON streaming.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bobmcallan/lightrag-gateway/internal/common"
	"github.com/bobmcallan/lightrag-gateway/internal/config"
	"github.com/bobmcallan/lightrag-gateway/internal/dispatch"
)

// Server manages the HTTP server and routes.
type Server struct {
	dispatcher *dispatch.Dispatcher
	router     *http.ServeMux
	server     *http.Server
	logger     *common.Logger
}

// New creates the HTTP server for the given dispatcher.
func New(cfg *config.Config, dispatcher *dispatch.Dispatcher, logger *common.Logger) *Server {
	s := &Server{
		dispatcher: dispatcher,
		logger:     logger,
	}

	s.router = s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	s.server = &http.Server{
		Addr:        addr,
		Handler:     s.withMiddleware(s.router),
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: streamed query responses can run for minutes and
		// are bounded by the client disconnecting or the backend finishing.
		IdleTimeout: 120 * time.Second,
	}

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().
		Str("address", s.server.Addr).
		Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
