// Package api exposes editing sessions over HTTP.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gompdf/pagedit/internal/config"
	"github.com/gompdf/pagedit/internal/res"
	"github.com/gompdf/pagedit/internal/session"
)

// Server is the HTTP API server for pagedit.
type Server struct {
	router chi.Router
	store  *session.Store
	loader *res.Loader
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(store *session.Store, log *slog.Logger, cfg config.Config) *Server {
	loader := res.NewLoader("")
	loader.MaxBytes = cfg.MaxUploadBytes
	loader.AddSearchPath(cfg.ResourcePath)

	s := &Server{
		store:  store,
		loader: loader,
		log:    log,
		cfg:    cfg,
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

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/api/documents", s.handleListDocuments)
		r.Post("/api/documents", s.handleCreateDocument)

		r.Route("/api/documents/{docID}", func(r chi.Router) {
			r.Get("/", s.handleGetDocument)
			r.Delete("/", s.handleDeleteDocument)
			r.Put("/content", s.handleSetContent)
			r.Put("/selection", s.handleSetSelection)
			r.Post("/page-breaks", s.handleInsertPageBreak)
			r.Post("/paginate", s.handlePaginate)
			r.Post("/actions", s.handleDispatch)
			r.Post("/reset", s.handleReset)
			r.Get("/export", s.handleExportHTML)
			r.Get("/export.pdf", s.handleExportPDF)
		})
	})

	s.router = r
}

// sessionOptions builds the options of new sessions from the configuration
func (s *Server) sessionOptions(debug bool) session.Options {
	return session.Options{
		Pagination: s.cfg.Pagination(),
		Debounce:   s.cfg.PaginationDebounce,
		Settle:     s.cfg.PaginationSettle,
		Debug:      debug,
		Loader:     s.loader,
		Logger:     s.log,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.store.Len(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
