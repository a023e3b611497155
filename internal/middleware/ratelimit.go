package middleware

import (
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-shortener/internal/ratelimit"
	"go.uber.org/zap"
)

// LimitRecorder observes rejected requests.
type LimitRecorder interface {
	Limited(scope string)
}

// PolicyRateLimiter returns a Huma middleware that applies policy-based rate limiting.
//
// Operations may carry a ratelimit.EndpointConfig under ratelimit.MetadataKey
// to disable limiting or to replace the policy with their own limits.
// Everything else is limited by the policy for the request method's scopes.
func PolicyRateLimiter(
	api huma.API,
	limiter *ratelimit.PolicyLimiter,
	recorder LimitRecorder,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		var (
			cfg  *ratelimit.EndpointConfig
			path string
		)

		if op := ctx.Operation(); op != nil {
			cfg = ratelimit.EndpointConfigFrom(op.Metadata)
			path = op.Path
		}

		if cfg != nil && cfg.Disabled {
			next(ctx)

			return
		}

		key := clientKey(ctx)

		var (
			exceeded *ratelimit.LimitExceeded
			err      error
		)

		if cfg != nil && len(cfg.Limits) > 0 {
			exceeded, err = limiter.AllowRoute(ctx.Context(), key, path, cfg.Limits)
		} else {
			exceeded, err = limiter.Allow(ctx.Context(), key, ratelimit.ScopesFor(ctx.Method()))
		}

		if err != nil {
			logger.Error("rate limit check failed", zap.String("path", path), zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return
		}

		if exceeded != nil {
			if recorder != nil {
				recorder.Limited(string(exceeded.Scope))
			}

			logger.Warn("rate limit exceeded",
				zap.String("path", path),
				zap.String("method", ctx.Method()),
				zap.String("scope", string(exceeded.Scope)),
				zap.Int64("count", exceeded.Count),
				zap.Stringer("limit", exceeded.Config),
				zap.String("client_ip", clientIP(ctx)),
			)

			ctx.SetHeader("Retry-After", fmt.Sprintf("%.0f", exceeded.Config.Window.Seconds()))
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests,
				fmt.Sprintf("rate limit exceeded: %d requests, limit %s", exceeded.Count, exceeded.Config))

			return
		}

		next(ctx)
	}
}
