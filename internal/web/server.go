// Package web provides the HTTP server and handlers for the bulk job
// import API.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fixerhq/job-import/internal/config"
	"github.com/fixerhq/job-import/internal/core"
	"github.com/fixerhq/job-import/internal/web/middleware"
)

// Server is the HTTP server for the import service.
type Server struct {
	service *core.Service
	cfg     *config.Config
	log     *slog.Logger
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server wired to the given service and config.
func NewServer(service *core.Service, cfg *config.Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		service: service,
		cfg:     cfg,
		log:     log,
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
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))

	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := newIPRateLimiter(s.cfg.Rate.RequestsPerMinute)
		s.router.Use(limiter.Middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/imports/template.csv", s.handleDownloadTemplate)
		r.Get("/imports/history", s.handleHistory)

		// Import submission gets its own stricter per-IP limit on top of
		// the global one.
		importGroup := r
		if s.cfg.Rate.Enabled {
			importLimiter := newIPRateLimiter(s.cfg.Rate.ImportLimit)
			importGroup = r.With(importLimiter.Middleware)
		}
		importGroup.Post("/imports", s.handleStartImport)
		importGroup.Post("/imports/preview", s.handlePreview)

		r.Get("/imports/{importID}", s.handleGetImport)
		r.Get("/imports/{importID}/progress", s.handleProgress)
		r.Get("/imports/{importID}/result", s.handleResult)
		r.Post("/imports/{importID}/cancel", s.handleCancel)
		r.Post("/imports/{importID}/rollback", s.handleRollback)
		r.Get("/imports/{importID}/errors.csv", s.handleErrorReport)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout, // zero keeps progress streams open
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	s.log.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds hardening headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// errorResponse is the JSON error body sent to clients.
type errorResponse struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
	Code   string `json:"code,omitempty"`
}

// writeError writes a plain JSON error with the given message.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.log.Warn("http error", "status", status, "message", message)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message})
}

// writeUserError maps a technical error to its user-facing message and
// writes it as JSON. The original error is logged, never sent to clients.
func (s *Server) writeUserError(w http.ResponseWriter, status int, err error) {
	msg := core.MapError(err)
	s.log.Warn("http error", "status", status, "code", msg.Code, "error", err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg.Message, Action: msg.Action, Code: msg.Code})
}

// writeJSON encodes v as JSON. Encoding errors are logged since headers are
// already sent.
func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("json encode", "error", err)
	}
}
