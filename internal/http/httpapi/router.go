// Package httpapi assembles the chi router for the public API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"drafted/internal/http/handlers"
	"drafted/internal/infra"
	"drafted/internal/metrics"
	"drafted/internal/middleware"
)

// NewRouter wires middleware and routes. The metrics collector may be
// nil, in which case /metrics serves the default registry.
func NewRouter(cfg *infra.Config, app *handlers.App, collector *metrics.Collector) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
	)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(cfg.AllowedOrigins))
	}
	if cfg.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/stats", app.Stats)
	r.Handle("/metrics", collector.Handler())
	r.Post("/v1/auth/token", app.AuthToken)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(cfg.JWTSecret))

		r.Route("/v1/sessions", func(r chi.Router) {
			r.Post("/", app.CreateSession)
			r.Get("/", app.ListSessions)
			r.Get("/{session_id}", app.GetSession)
		})

		r.Route("/v1/jobs", func(r chi.Router) {
			r.Post("/", app.CreateJob)
			r.Get("/", app.ListJobs)
			r.Get("/{job_id}", app.GetJob)
			r.Post("/{job_id}/regenerate", app.RegenerateJob)
			r.Get("/{job_id}/artifacts", app.ListArtifacts)
			r.Get("/{job_id}/artifacts/{artifact_id}", app.DownloadArtifact)
			r.Get("/{job_id}/export", app.ExportJob)
		})
	})

	return r
}
