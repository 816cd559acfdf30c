// Package ratelimit enforces fixed-window request limits backed by the
// shared cache.
package ratelimit

import (
	"context"
	"time"

	"github.com/serroba/shortlink-go/internal/cache"
)

// LimitConfig is one fixed-window limit.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// MetadataKey stores per-endpoint rate limit config in huma operation
// metadata.
const MetadataKey = "rateLimit"

// EndpointConfig overrides the default limits for one endpoint.
type EndpointConfig struct {
	// Action names the counter bucket; it becomes part of the cache key
	// (ratelimit:<action>:<identifier>). Endpoints sharing an action
	// share counters per client.
	Action string

	// Limits replace the default limits for this endpoint.
	Limits []LimitConfig

	// Disabled skips rate limiting for this endpoint entirely.
	Disabled bool
}

// Exceeded describes which limit a rejected request hit.
type Exceeded struct {
	Action string
	Config LimitConfig
	Count  int64
}

// Limiter counts requests in fixed windows via cache.Increment. A cache
// outage fails open: limiting protects capacity, it must not take the
// service down with the cache.
type Limiter struct {
	cache cache.Cache
}

// NewLimiter creates a limiter on the shared cache.
func NewLimiter(c cache.Cache) *Limiter {
	return &Limiter{cache: c}
}

// Allow records one request for identifier under action and checks it
// against every limit. The first limit exceeded is reported; nil means
// allowed.
func (l *Limiter) Allow(
	ctx context.Context, action, identifier string, limits []LimitConfig,
) *Exceeded {
	for _, limit := range limits {
		key := cache.RateLimitKey(action, identifier) + ":" + limit.Window.String()

		count := l.cache.Increment(ctx, key, limit.Window)
		if count == 0 {
			// Backend unavailable; fail open.
			continue
		}

		if count > limit.Max {
			return &Exceeded{Action: action, Config: limit, Count: count}
		}
	}

	return nil
}
