//go:build integration

package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicedesk/internal/ratelimit"
	"servicedesk/pkg/testutil/containers"
)

func TestRedisLimiter(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	redis := containers.NewRedisContainer(t)
	ctx := context.Background()

	t.Run("allows up to the limit then rejects", func(t *testing.T) {
		limiter := ratelimit.NewRedisLimiter(redis.Client, 3, time.Minute)
		key := "user-" + uuid.NewString()

		for i := range 3 {
			allowed, err := limiter.Allow(ctx, key)
			require.NoError(t, err)
			assert.True(t, allowed, "request %d should pass", i+1)
		}

		allowed, err := limiter.Allow(ctx, key)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("window shares state across limiter instances", func(t *testing.T) {
		key := "user-" + uuid.NewString()

		first := ratelimit.NewRedisLimiter(redis.Client, 1, time.Minute)
		allowed, err := first.Allow(ctx, key)
		require.NoError(t, err)
		require.True(t, allowed)

		second := ratelimit.NewRedisLimiter(redis.Client, 1, time.Minute)
		allowed, err = second.Allow(ctx, key)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("expired window resets the count", func(t *testing.T) {
		limiter := ratelimit.NewRedisLimiter(redis.Client, 1, time.Second)
		key := "user-" + uuid.NewString()

		allowed, err := limiter.Allow(ctx, key)
		require.NoError(t, err)
		require.True(t, allowed)

		time.Sleep(1100 * time.Millisecond)

		allowed, err = limiter.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}
