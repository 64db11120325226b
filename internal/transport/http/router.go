package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"edgarcli/internal/config"
	"edgarcli/internal/infrastructure"
	custommw "edgarcli/internal/middleware"
	"edgarcli/internal/operations"
)

// RouterDeps carries everything the router wires together.
type RouterDeps struct {
	Manager   *operations.Manager
	Paths     *config.Paths
	Logger    *slog.Logger
	Providers *infrastructure.OTelProviders
	Server    config.ServerConfig
}

// NewRouter assembles the HTTP surface: middleware chain, the API
// routes, and the Prometheus scrape endpoint.
func NewRouter(deps RouterDeps) chi.Router {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(logger))
	r.Use(custommw.Recoverer(logger))
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.Compress(5))

	if deps.Server.RateLimitRPS > 0 {
		r.Use(custommw.NewRateLimiter(
			deps.Server.RateLimitRPS,
			deps.Server.RateLimitBurst,
			logger,
		).Handler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Mount("/health", NewHealthHandler(logger).Routes())
		r.Mount("/operations", NewOperationsHandler(deps.Manager, logger).Routes())
		r.Mount("/data", NewDataHandler(deps.Manager, deps.Paths, logger).Routes())
	})

	if deps.Providers != nil && deps.Providers.PrometheusHTTP != nil {
		r.Method(http.MethodGet, "/metrics", deps.Providers.PrometheusHTTP)
	}

	return r
}
