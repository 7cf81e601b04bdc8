// Package transporthttp assembles the public router: middleware chain,
// domain handlers, and the operational endpoints.
package transporthttp

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"servicedesk/internal/platform/metrics"
	"servicedesk/internal/platform/middleware"
	"servicedesk/internal/ratelimit"
)

// Registrar mounts a handler's routes on a router.
type Registrar interface {
	Register(r chi.Router)
}

// RouterConfig carries everything the router needs.
type RouterConfig struct {
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	Validator     middleware.TokenValidator
	CreateLimiter ratelimit.Limiter
	Handlers      []Registrar
}

// NewRouter wires all endpoints. Operational routes stay outside the auth
// chain; the creation rate limiter applies to mutating methods only.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(api chi.Router) {
		api.Use(middleware.Recovery(cfg.Logger))
		api.Use(middleware.RequestID)
		api.Use(middleware.Logger(cfg.Logger))
		api.Use(middleware.Timeout(30 * time.Second))
		api.Use(middleware.ContentTypeJSON)
		if cfg.Metrics != nil {
			api.Use(middleware.Latency(cfg.Metrics))
		}
		if cfg.Validator != nil {
			api.Use(middleware.RequireAuth(cfg.Validator, cfg.Logger))
		}
		if cfg.CreateLimiter != nil {
			api.Use(limitMutations(cfg.CreateLimiter, cfg.Logger))
		}
		for _, h := range cfg.Handlers {
			h.Register(api)
		}
	})

	return r
}

// limitMutations applies the rate limiter to mutating methods only; reads
// stay unthrottled.
func limitMutations(limiter ratelimit.Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	limited := ratelimit.Middleware(limiter, logger)
	return func(next http.Handler) http.Handler {
		guarded := limited(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
				guarded.ServeHTTP(w, r)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
