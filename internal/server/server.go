// Package server exposes the study tools and the Markdown renderer over HTTP.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yolodolo42/edumind/internal/study"
)

// maxBodyBytes leaves room for a base64 image at study.MaxImageBytes.
const maxBodyBytes = study.MaxImageBytes/3*4 + 1<<20

// Server is the HTTP API server for edumind.
type Server struct {
	router chi.Router
	study  *study.Service
	log    *slog.Logger
	apiKey string
}

// NewServer creates and configures the HTTP server. svc may be nil, in which
// case only /health and /api/render are served. A non-empty apiKey requires
// a matching bearer token on /api routes.
func NewServer(svc *study.Service, log *slog.Logger, apiKey string) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		study:  svc,
		log:    log,
		apiKey: apiKey,
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

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(AuthMiddleware(s.apiKey))
		}
		r.Use(limitBody(maxBodyBytes))

		r.Post("/render", s.handleRender)

		r.Group(func(r chi.Router) {
			r.Use(s.requireService)

			r.Post("/explain", s.handleExplain)
			r.Post("/quiz", s.handleQuiz)
			r.Post("/analyze", s.handleAnalyze)
			r.Post("/research", s.handleResearch)
			r.Post("/plan", s.handlePlan)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if s.study != nil && s.study.Provider() != nil {
		p := s.study.Provider()
		resp["provider"] = p.ID()
		resp["model"] = p.DefaultModel()
		resp["speech"] = s.study.CanSpeak()
	}
	s.respond(w, r, http.StatusOK, resp)
}

func (s *Server) requireService(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.study == nil {
			jsonError(w, "no AI provider configured", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}
