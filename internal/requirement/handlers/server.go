// Package handlers provides the HTTP server for the requirement tracker,
// bridging the transport layer and the business logic.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server wraps the HTTP server and its lifecycle.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	endpoint   string
}

// NewServer constructs a Server listening on the given port, serving the
// handler's route tree.
func NewServer(port int, handler *Handler, jwtSecret string, logger *zap.Logger) *Server {
	endpoint := fmt.Sprintf(":%d", port)
	return &Server{
		httpServer: &http.Server{
			Addr:              endpoint,
			Handler:           handler.Routes(jwtSecret),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:   logger,
		endpoint: endpoint,
	}
}

// Start runs the HTTP server until it fails or is shut down.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("endpoint", s.endpoint))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP serve error: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	s.logger.Info("Server stopped")
}
