package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"valueconverting/internal/platform/metrics"
	"valueconverting/pkg/platform/httputil"
	authmw "valueconverting/pkg/platform/middleware/auth"
	request "valueconverting/pkg/platform/middleware/request"
)

// Routes is implemented by every resource handler.
type Routes interface {
	Register(r chi.Router)
}

// HealthCheck reports whether one backing resource is usable.
type HealthCheck func(ctx context.Context) error

// Deps carries what the router composes.
type Deps struct {
	Logger    *slog.Logger
	Validator authmw.JWTValidator
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Health    map[string]HealthCheck
	Resources []Routes
}

// NewRouter wires the operational endpoints outside the auth chain and every
// resource behind it.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(d.Logger))
	r.Use(d.Metrics.LatencyMiddleware)

	r.Get("/health", handleHealth(d.Health))
	r.Method(http.MethodGet, "/metrics", metrics.Handler(d.Gatherer))

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(d.Validator, d.Logger))
		for _, res := range d.Resources {
			res.Register(r)
		}
	})
	return r
}

func handleHealth(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		components := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				components[name] = "down"
				continue
			}
			components[name] = "up"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]any{
			"status":     overall,
			"components": components,
		})
	}
}
