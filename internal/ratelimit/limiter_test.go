package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/shortlink-go/internal/cache"
	"github.com/serroba/shortlink-go/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type downCache struct{}

func (downCache) Get(context.Context, string, any) bool { return false }

func (downCache) Set(context.Context, string, any, time.Duration) bool { return false }

func (downCache) Delete(context.Context, string) bool { return false }

func (downCache) Increment(context.Context, string, time.Duration) int64 { return 0 }

func TestLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	limits := []ratelimit.LimitConfig{{Window: time.Minute, Max: 3}}

	t.Run("allows requests under the limit", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(cache.NewMemory())

		for range 3 {
			exceeded := limiter.Allow(ctx, "create", "client-1", limits)
			assert.Nil(t, exceeded)
		}
	})

	t.Run("rejects requests over the limit", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(cache.NewMemory())

		for range 3 {
			require.Nil(t, limiter.Allow(ctx, "create", "client-1", limits))
		}

		exceeded := limiter.Allow(ctx, "create", "client-1", limits)

		require.NotNil(t, exceeded)
		assert.Equal(t, "create", exceeded.Action)
		assert.Equal(t, int64(4), exceeded.Count)
	})

	t.Run("tracks identifiers independently", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(cache.NewMemory())

		for range 3 {
			require.Nil(t, limiter.Allow(ctx, "create", "client-1", limits))
		}

		assert.Nil(t, limiter.Allow(ctx, "create", "client-2", limits))
	})

	t.Run("tracks actions independently", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(cache.NewMemory())

		for range 3 {
			require.Nil(t, limiter.Allow(ctx, "create", "client-1", limits))
		}

		assert.Nil(t, limiter.Allow(ctx, "redirect", "client-1", limits))
	})

	t.Run("checks every configured window", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(cache.NewMemory())
		stacked := []ratelimit.LimitConfig{
			{Window: time.Minute, Max: 10},
			{Window: time.Hour, Max: 2},
		}

		require.Nil(t, limiter.Allow(ctx, "create", "client-1", stacked))
		require.Nil(t, limiter.Allow(ctx, "create", "client-1", stacked))

		exceeded := limiter.Allow(ctx, "create", "client-1", stacked)

		require.NotNil(t, exceeded)
		assert.Equal(t, time.Hour, exceeded.Config.Window)
	})

	t.Run("fails open when the cache is unavailable", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(downCache{})

		for range 10 {
			assert.Nil(t, limiter.Allow(ctx, "create", "client-1", limits))
		}
	})
}
