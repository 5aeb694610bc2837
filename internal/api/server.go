package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/neri-gut/jwparse/internal/config"
	"github.com/neri-gut/jwparse/internal/discovery"
	"github.com/neri-gut/jwparse/internal/jwpub"
)

// Server is the HTTP API surface over the decode pipeline.
type Server struct {
	router    chi.Router
	parser    *jwpub.Parser
	discovery *discovery.Client
	log       *slog.Logger
	cfg       config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(parser *jwpub.Parser, disc *discovery.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		parser:    parser,
		discovery: disc,
		log:       log,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/extract", s.handleExtract)
		r.Get("/api/publications/url", s.handlePublicationURL)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
