// Package httptransport assembles the HTTP surface: routing, middleware, and
// operational endpoints. Business logic stays in the domain handlers.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vigil/pkg/platform/httputil"
	"vigil/pkg/platform/middleware/auth"
	"vigil/pkg/requestcontext"
)

// Registerer mounts a domain handler's routes.
type Registerer interface {
	Register(r chi.Router)
}

// Pinger is a health-checkable dependency.
type Pinger interface {
	Health(ctx context.Context) error
}

// PingerFunc adapts a plain function to the Pinger interface.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Health(ctx context.Context) error { return f(ctx) }

// Deps carries everything the router mounts.
type Deps struct {
	Screening Registerer
	Sync      Registerer
	Validator auth.Validator
	AdminRole string
	Logger    *slog.Logger

	// Optional health-check targets; nil entries are skipped.
	Pingers map[string]Pinger
}

// NewRouter wires all endpoints. Screening is public, sync management is
// admin-only.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(propagateRequestID)

	r.Get("/healthz", healthHandler(deps.Pingers))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		deps.Screening.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(deps.Validator, deps.AdminRole, deps.Logger))
		deps.Sync.Register(r)
	})

	return r
}

// propagateRequestID copies chi's request id into the application context so
// services and audit records can reference it.
func propagateRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if reqID := chimiddleware.GetReqID(ctx); reqID != "" {
			ctx = requestcontext.WithRequestID(ctx, reqID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func healthHandler(pingers map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := make(map[string]string, len(pingers))
		for name, p := range pingers {
			if p == nil {
				continue
			}
			if err := p.Health(ctx); err != nil {
				checks[name] = "unhealthy"
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}

		httputil.WriteJSON(w, status, map[string]any{
			"status": http.StatusText(status),
			"checks": checks,
		})
	}
}
