package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ignite/newsletter/internal/config"
)

// Server represents the API server
type Server struct {
	server *http.Server
}

// NewServer creates an API server that will listen on addr.
func NewServer(cfg config.ServerConfig, addr string, handler http.Handler) *Server {
	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout(),
			ReadHeaderTimeout: 15 * time.Second,
			WriteTimeout:      cfg.WriteTimeout(),
			IdleTimeout:       120 * time.Second,
		},
	}
}

// ListenAndServe starts the HTTP server. It returns http.ErrServerClosed
// after Shutdown, including when Shutdown ran first.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
