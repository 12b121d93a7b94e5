// Package sink provides a reference implementation of the movie endpoint the
// importer submits to: one movie per POST, 201 Created on success.
package sink

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/movieimport/internal/sink/middleware"
)

// MaxBodySize bounds one movie document.
const MaxBodySize = 64 * 1024

// Server is the HTTP server for the movie sink.
type Server struct {
	store   Store
	apiKeys []string
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server backed by store. When apiKeys is non-empty,
// the movie routes require one of them in the X-API-Key header.
func NewServer(store Store, apiKeys []string) *Server {
	s := &Server{
		store:   store,
		apiKeys: apiKeys,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/movies", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(s.apiKeys))
		r.Post("/", s.handleCreateMovie)
		r.Get("/", s.handleListMovies)
		r.Get("/{id}", s.handleGetMovie)
	})
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests. It blocks until the server stops.
func (s *Server) Start(addr string, readTimeout time.Duration) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
