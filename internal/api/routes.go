package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/BV-BRC/cwe-judge/internal/judge"
)

// Server is the HTTP server for the judging service's external
// surface.
type Server struct {
	router  chi.Router
	handler *Handler
}

// NewServer creates a new API server over a judge.Service.
// writeTimeout bounds the middleware.Timeout wrapper applied to every
// route.
func NewServer(service *judge.Service, writeTimeout time.Duration) *Server {
	s := &Server{handler: NewHandler(service)}
	s.router = s.setupRoutes(writeTimeout)
	return s
}

func (s *Server) setupRoutes(writeTimeout time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(writeTimeout))

	r.Get("/health", s.handler.HealthCheck)
	r.Post("/create", s.handler.CreateJob)
	r.Get("/check/{id}", s.handler.CheckJob)

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
