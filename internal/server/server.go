// Package server exposes the search endpoint and the web pages over HTTP.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/at-ishikawa/pacha/internal/config"
	"github.com/at-ishikawa/pacha/internal/database"
	"github.com/at-ishikawa/pacha/internal/metrics"
	"github.com/at-ishikawa/pacha/internal/search"
)

// Dependencies are the collaborators the router serves.
type Dependencies struct {
	Searcher search.Searcher
	DB       database.Pinger
	// Pages serves everything outside /api, /health and /metrics. Optional.
	Pages http.Handler
}

// NewHandler builds the HTTP handler for the dictionary server.
func NewHandler(cfg config.ServerConfig, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(accessLogMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         3600,
	}))

	searchHandler := NewSearchHandler(deps.Searcher)
	r.Get("/api/search", searchHandler.ServeHTTP)
	r.Get("/health", healthHandler(deps.DB))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	if deps.Pages != nil {
		r.Mount("/", deps.Pages)
	}
	return r
}
