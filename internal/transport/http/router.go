// Package httptransport assembles the HTTP surface: middleware chain, domain
// routes, health and metrics endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmytrokrutii/mod-consortia/internal/platform/middleware"
	"github.com/dmytrokrutii/mod-consortia/internal/transport/http/shared"
)

// Registrar is implemented by every domain handler package.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports readiness of one backing dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthCheckFunc adapts a plain function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) error

func (f HealthCheckFunc) Health(ctx context.Context) error { return f(ctx) }

// NewRouter wires the full HTTP surface. Domain handlers register themselves
// under /consortia; health and metrics sit outside the tenant middleware so
// probes need no headers.
func NewRouter(logger *slog.Logger, checks map[string]HealthChecker, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))

	r.Get("/admin/health", handleHealth(checks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/consortia", func(r chi.Router) {
		r.Use(middleware.TenantContext(logger))
		for _, h := range handlers {
			h.Register(r)
		}
	})

	return r
}

func handleHealth(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		report := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check.Health(ctx); err != nil {
				report[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			report[name] = "ok"
		}
		shared.WriteJSON(w, status, report)
	}
}
