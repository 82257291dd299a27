package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ternarybob/stockanalyzer/internal/app"
	"github.com/ternarybob/stockanalyzer/internal/common"
)

const (
	readTimeout     = 15 * time.Second
	idleTimeout     = 60 * time.Second
	minWriteTimeout = 30 * time.Second
)

// Server owns the HTTP listener for the API and websocket routes
type Server struct {
	app    *app.App
	router *http.ServeMux
	server *http.Server
}

// New creates a new HTTP server with the given app
func New(application *app.App) *Server {
	s := &Server{app: application}
	s.router = s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", application.Config.Server.Host, application.Config.Server.Port),
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout(application.Config),
		IdleTimeout:  idleTimeout,
	}

	return s
}

// writeTimeout allows the largest batch to finish: every stock pays the
// batch delay plus two upstream round trips
func writeTimeout(config *common.Config) time.Duration {
	perStock := config.Analysis.Delay() + 2*config.Naver.Timeout()
	timeout := time.Duration(config.Analysis.BatchMax) * perStock
	if timeout < minWriteTimeout {
		return minWriteTimeout
	}
	return timeout
}

// Handler returns the fully wrapped router
func (s *Server) Handler() http.Handler {
	return s.withMiddleware(s.router)
}

// Start listens on the configured address and serves until Shutdown
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	return s.Serve(listener)
}

// Serve accepts connections on listener until Shutdown
func (s *Server) Serve(listener net.Listener) error {
	s.app.Logger.Info().
		Str("url", fmt.Sprintf("http://%s", listener.Addr())).
		Dur("write_timeout", s.server.WriteTimeout).
		Msg("HTTP server listening")

	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Logger.Info().Msg("Shutting down HTTP server...")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.app.Logger.Info().Msg("HTTP server stopped")
	return nil
}
