// Package cache provides the volatile key/value layer in front of the store.
//
// The cache is an accelerator, never a source of truth: every operation
// absorbs backend failures so that a cache outage degrades latency, not
// correctness. Callers must always be prepared for a miss.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store with per-key TTL and a fixed-window counter.
//
// Get returns (value, false) on any backend error; Set and Delete report
// failure without an error. Increment returns 0 on backend failure.
type Cache interface {
	// Get unmarshals the value stored at key into dest and reports
	// whether it was found.
	Get(ctx context.Context, key string, dest any) bool

	// Set stores value at key with the given TTL.
	Set(ctx context.Context, key string, value any, ttl time.Duration) bool

	// Delete removes key.
	Delete(ctx context.Context, key string) bool

	// Increment atomically bumps the counter at key. The first increment
	// initializes the counter to 1 and arms the expiry; later increments
	// within the window do not reset it (fixed-window semantics).
	Increment(ctx context.Context, key string, window time.Duration) int64
}

// Key layout is a stable contract: other subsystems rely on these prefixes
// for warm-up and manual invalidation.

// URLKey is the fast-path projection key for a code.
func URLKey(code string) string {
	return "url:" + code
}

// StatsKey is the aggregate-stats projection key for a code.
func StatsKey(code string) string {
	return "stats:" + code
}

// RateLimitKey is the fixed-window counter key for a rate-limited action.
func RateLimitKey(action, identifier string) string {
	return "ratelimit:" + action + ":" + identifier
}
