// Package httptransport assembles the HTTP surface: the public redirect and
// health endpoints, and the authenticated management API.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	domainhandler "qrius/internal/domains/handler"
	linkhandler "qrius/internal/links/handler"
	"qrius/internal/platform/middleware"
	"qrius/internal/resolve"
	"qrius/pkg/platform/httputil"
)

const requestTimeout = 30 * time.Second

// HealthChecker reports whether a backing resource is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps carries everything the router mounts.
type Deps struct {
	Logger    *slog.Logger
	Validator middleware.TokenValidator
	Domains   *domainhandler.Handler
	Links     *linkhandler.Handler
	Redirect  *resolve.Handler
	// Checks maps a resource name to its health probe; nil checkers are
	// skipped so a deployment without redis still reports healthy.
	Checks map[string]HealthChecker
}

// NewRouter builds the chi router with the platform middleware chain.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(requestTimeout))

	// Public surface: scans are anonymous, probes are unauthenticated.
	deps.Redirect.Register(r)
	r.Get("/healthz", healthHandler(deps.Checks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Management API.
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(deps.Validator, deps.Logger))
		deps.Domains.Register(r)
		deps.Links.Register(r)
	})

	return r
}

func healthHandler(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check.Health(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
			} else {
				body[name] = "ok"
			}
		}
		httputil.WriteJSON(w, status, body)
	}
}
