package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis is a Redis-backed Cache. All backend errors are logged and
// swallowed so the caller sees only miss/failure, never an error.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedis creates a Redis-backed cache.
func NewRedis(client *redis.Client, logger *zap.Logger) *Redis {
	return &Redis{client: client, logger: logger}
}

func (r *Redis) Get(ctx context.Context, key string, dest any) bool {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}

		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		r.logger.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))

		return false
	}

	return true
}

func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn("cache value not serializable", zap.String("key", key), zap.Error(err))

		return false
	}

	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		r.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))

		return false
	}

	return true
}

func (r *Redis) Delete(ctx context.Context, key string) bool {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))

		return false
	}

	return true
}

func (r *Redis) Increment(ctx context.Context, key string, window time.Duration) int64 {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		r.logger.Warn("cache increment failed", zap.String("key", key), zap.Error(err))

		return 0
	}

	// Arm the expiry only on the first increment of the window.
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			r.logger.Warn("cache expire failed", zap.String("key", key), zap.Error(err))
		}
	}

	return count
}

// Compile-time check.
var _ Cache = (*Redis)(nil)
