package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("allows up to the limit inside a window", func(t *testing.T) {
		limiter := NewMemoryLimiter(3, time.Minute)

		for i := range 3 {
			allowed, err := limiter.Allow(ctx, "user-1")
			require.NoError(t, err)
			assert.True(t, allowed, "request %d should pass", i+1)
		}

		allowed, err := limiter.Allow(ctx, "user-1")
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("keys are counted independently", func(t *testing.T) {
		limiter := NewMemoryLimiter(1, time.Minute)

		allowed, err := limiter.Allow(ctx, "user-1")
		require.NoError(t, err)
		require.True(t, allowed)

		allowed, err = limiter.Allow(ctx, "user-2")
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("window expiry resets the count", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		limiter := NewMemoryLimiter(1, time.Minute).WithClock(func() time.Time { return now })

		allowed, err := limiter.Allow(ctx, "user-1")
		require.NoError(t, err)
		require.True(t, allowed)

		allowed, err = limiter.Allow(ctx, "user-1")
		require.NoError(t, err)
		require.False(t, allowed)

		now = now.Add(time.Minute)
		allowed, err = limiter.Allow(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}

type erroringLimiter struct{}

func (erroringLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func TestMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	do := func(limiter Limiter) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/clients", nil)
		Middleware(limiter, slog.Default())(handler).ServeHTTP(rr, req)
		return rr
	}

	t.Run("passes requests under the limit", func(t *testing.T) {
		limiter := NewMemoryLimiter(2, time.Minute)
		assert.Equal(t, http.StatusCreated, do(limiter).Code)
		assert.Equal(t, http.StatusCreated, do(limiter).Code)
	})

	t.Run("rejects over-limit requests with 429", func(t *testing.T) {
		limiter := NewMemoryLimiter(1, time.Minute)
		require.Equal(t, http.StatusCreated, do(limiter).Code)

		rr := do(limiter)
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.Contains(t, rr.Body.String(), "rate_limited")
	})

	t.Run("fails open when the limiter errors", func(t *testing.T) {
		assert.Equal(t, http.StatusCreated, do(erroringLimiter{}).Code)
	})
}
