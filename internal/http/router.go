// Package httpapi assembles the HTTP surface: middleware chain, health and
// metrics endpoints, and the authenticated master-data routes.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	platformmetrics "auditadmin/internal/platform/metrics"
	"auditadmin/internal/platform/middleware"
	"auditadmin/pkg/platform/httputil"
)

// Registrar mounts one resource's routes onto a router.
type Registrar interface {
	Register(r chi.Router)
}

// Deps carries everything the router needs.
type Deps struct {
	Logger      *slog.Logger
	Validator   middleware.IdentityValidator
	HTTPMetrics *platformmetrics.Metrics
	Handlers    []Registrar
	// HealthChecks are probed by /healthz; a failing check flips the
	// endpoint to 503 so the orchestrator stops routing traffic here.
	HealthChecks map[string]func(context.Context) error
}

// NewRouter wires the full HTTP surface. Master-data routes live under /api
// behind bearer authentication; health and metrics stay open.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Middleware)
	}

	r.Get("/healthz", handleHealth(deps.HealthChecks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.RequireAuth(deps.Validator, deps.Logger))
		for _, h := range deps.Handlers {
			h.Register(api)
		}
	})

	return r
}

func handleHealth(checks map[string]func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		detail := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				detail[name] = err.Error()
				continue
			}
			detail[name] = "ok"
		}

		message := "healthy"
		if status != http.StatusOK {
			message = "degraded"
		}
		httputil.WriteEnvelope(w, httputil.Success(status, message, detail))
	}
}
