package server

import (
	"context"
	"net/http"
	"time"
)

// Server wraps the HTTP server of the application with controlled startup
// and shutdown.
type Server struct {
	server *http.Server
}

// ListenAndServe blocks serving requests until the server is stopped.
// After Shutdown it returns http.ErrServerClosed.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown stops accepting connections and lets active requests finish
// within the deadline of ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// NewServer creates a server listening on address with the API v1 routes.
// Report requests carry whole snapshots, so read and write timeouts are
// looser than header limits.
func NewServer(address string, router *ApiV1Router) *Server {
	s := Server{&http.Server{
		Addr:              address,
		Handler:           router.Mux(),
		ReadHeaderTimeout: time.Second * 3,
		ReadTimeout:       time.Second * 30,
		WriteTimeout:      time.Second * 30,
		MaxHeaderBytes:    1024 * 10,
	}}

	return &s
}
