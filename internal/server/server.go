package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/voidlight/mnemo/internal/config"
	"github.com/voidlight/mnemo/internal/store"
)

// Server is the mnemo HTTP API. Every route takes a ?project= (or a
// "project" JSON field) that resolves to a per-project database
// through the registry; an absent project means the server's working
// directory.
type Server struct {
	registry *store.Registry
	router   chi.Router
	version  string
	search   config.SearchConfig
	started  time.Time
}

// New creates a Server backed by the given registry. The search
// config supplies limit and depth defaults for requests that omit
// them.
func New(registry *store.Registry, version string, search config.SearchConfig) *Server {
	s := &Server{
		registry: registry,
		version:  version,
		search:   search,
		started:  time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/memories", s.handleSave)
		r.Get("/memories", s.handleList)
		r.Get("/memories/{key}", s.handleRecall)
		r.Put("/memories/{key}", s.handleUpdate)
		r.Delete("/memories/{key}", s.handleDelete)
		r.Post("/memories/{key}/priority", s.handleSetPriority)
		r.Get("/memories/{key}/relations", s.handleRelations)
		r.Get("/memories/{key}/related", s.handleRelated)

		r.Post("/relations", s.handleLink)
		r.Delete("/relations", s.handleUnlink)

		r.Get("/graph", s.handleGraph)
		r.Get("/path", s.handlePath)
		r.Get("/search", s.handleSearch)
		r.Get("/stats", s.handleStats)
		r.Get("/timeline", s.handleTimeline)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
	})
}

// db resolves the request's project to a store handle. On failure it
// writes a 500 and returns nil; handlers bail out on nil.
func (s *Server) db(w http.ResponseWriter, project string) *store.DB {
	db, err := s.registry.Resolve(project)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil
	}
	return db
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
