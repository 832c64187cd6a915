// Package api serves the catalog HTTP endpoints.
//
// Every catalog endpoint answers with an envelope.Envelope. Upstream failures
// are reported as HTTP 200 with status "error"; callers inspect the body,
// not the HTTP status.
package api

import (
	"errors"
	"net/http"

	"github.com/Sternrassler/steam-catalog-api/pkg/cache"
	"github.com/Sternrassler/steam-catalog-api/pkg/catalog"
	"github.com/Sternrassler/steam-catalog-api/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Options configures a Server.
type Options struct {
	// Source answers catalog lookups. Required.
	Source catalog.Source

	// CacheEnabled turns on the read-through cache for app info.
	CacheEnabled bool

	// Store backs the cache. Required when CacheEnabled is set.
	Store cache.Store

	// Version is the reported API version string.
	Version string

	// Logger receives handler and access logs.
	Logger zerolog.Logger
}

// Server holds the handler dependencies. It keeps no per-request state.
type Server struct {
	source       catalog.Source
	store        cache.Store
	cacheEnabled bool
	version      *VersionInfo
	logger       zerolog.Logger
}

// New creates a server from opts.
func New(opts Options) (*Server, error) {
	if opts.Source == nil {
		return nil, errors.New("catalog source is required")
	}
	if opts.CacheEnabled && opts.Store == nil {
		return nil, errors.New("cache store is required when caching is enabled")
	}

	s := &Server{
		source:       opts.Source,
		store:        opts.Store,
		cacheEnabled: opts.CacheEnabled,
		logger:       opts.Logger,
	}

	if opts.Version != "" {
		version, err := ParseVersion(opts.Version)
		if err != nil {
			s.logger.Warn().Err(err).Str("version", opts.Version).Msg("Configured version is not a semantic version")
		} else {
			s.version = &version
		}
	}

	return s, nil
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(logAccess))
	r.Use(metricsMiddleware)
	r.Use(middleware.Recoverer)

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleMethodNotAllowed)

	r.Get("/health", handleHealth)
	r.Get("/ready", s.handleReady)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/info/{app_id}", s.handleAppInfo)
		r.Get("/version", s.handleVersion)
		r.Get("/tags/{tag_ids}", s.handleTagInfo)
		r.Get("/categories/{category_ids}", s.handleCategoryInfo)
	})

	return r
}
