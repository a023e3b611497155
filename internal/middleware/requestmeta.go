package middleware

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-shortener/internal/handlers"
	"github.com/serroba/url-shortener/internal/messaging"
)

// CorrelationHeader carries a caller-supplied request ID into published events.
const CorrelationHeader = "X-Request-Id"

// RequestMeta is a middleware that adds client IP, user-agent, and referrer to the request context.
func RequestMeta(_ huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		meta := handlers.RequestMeta{
			ClientIP:  clientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
			Referrer:  ctx.Header("Referer"),
		}

		newCtx := handlers.ContextWithRequestMeta(ctx.Context(), meta)

		if id := ctx.Header(CorrelationHeader); id != "" {
			newCtx = messaging.ContextWithCorrelationID(newCtx, id)
		}

		next(huma.WithContext(ctx, newCtx))
	}
}
