package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink-go/internal/ratelimit"
	"go.uber.org/zap"
)

// DefaultLimits applies to endpoints without their own metadata config.
type DefaultLimits struct {
	Read  []ratelimit.LimitConfig
	Write []ratelimit.LimitConfig
}

// RateLimiter returns a huma middleware enforcing fixed-window limits per
// client. Endpoints can override action and limits via operation metadata
// under ratelimit.MetadataKey.
func RateLimiter(
	api huma.API,
	limiter *ratelimit.Limiter,
	defaults DefaultLimits,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		action, limits := resolveLimits(ctx, defaults)
		if limits == nil {
			next(ctx)

			return
		}

		exceeded := limiter.Allow(ctx.Context(), action, clientKey(ctx), limits)
		if exceeded != nil {
			logger.Warn("rate limit exceeded",
				zap.String("action", exceeded.Action),
				zap.String("method", ctx.Method()),
				zap.Int64("count", exceeded.Count),
				zap.Int64("max", exceeded.Config.Max),
				zap.Duration("window", exceeded.Config.Window),
				zap.String("clientIp", clientIP(ctx)),
			)

			msg := fmt.Sprintf("rate limit exceeded: %d/%d requests in %s",
				exceeded.Count, exceeded.Config.Max, exceeded.Config.Window)
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, msg)

			return
		}

		next(ctx)
	}
}

// resolveLimits picks the action and limits for the request: endpoint
// metadata first, method-based defaults otherwise. nil limits means the
// endpoint opted out.
func resolveLimits(ctx huma.Context, defaults DefaultLimits) (string, []ratelimit.LimitConfig) {
	if op := ctx.Operation(); op != nil && op.Metadata != nil {
		if cfg, ok := op.Metadata[ratelimit.MetadataKey].(ratelimit.EndpointConfig); ok {
			if cfg.Disabled {
				return "", nil
			}

			if len(cfg.Limits) > 0 {
				return cfg.Action, cfg.Limits
			}
		}
	}

	switch ctx.Method() {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return "read", defaults.Read
	default:
		return "write", defaults.Write
	}
}

// clientKey identifies a client for rate limiting: hashed IP plus
// User-Agent so shared NATs do not collapse into one bucket entirely.
func clientKey(ctx huma.Context) string {
	hash := sha256.Sum256([]byte(clientIP(ctx) + "|" + ctx.Header("User-Agent")))

	return hex.EncodeToString(hash[:])
}
