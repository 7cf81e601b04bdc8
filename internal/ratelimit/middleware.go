package ratelimit

import (
	"log/slog"
	"net/http"

	"servicedesk/internal/platform/middleware"
)

// Middleware applies the limiter keyed by authenticated user, falling back
// to the remote address. A limiter failure fails open: losing Redis should
// degrade rate limiting, not take record creation down with it.
func Middleware(limiter Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := middleware.GetUserID(ctx)
			if key == "" {
				key = r.RemoteAddr
			}

			allowed, err := limiter.Allow(ctx, key)
			if err != nil {
				logger.WarnContext(ctx, "rate limiter unavailable, allowing request",
					"error", err,
					"request_id", middleware.GetRequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate_limited","error_description":"creation rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
