package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-shortener/internal/analytics"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/shortener"
	"go.uber.org/zap"
)

// Redirect outcomes reported to a RedirectRecorder.
const (
	RedirectHit      = "hit"
	RedirectNotFound = "not_found"
	RedirectError    = "error"
)

// Shortener creates short URLs.
type Shortener interface {
	CreateShortURL(ctx context.Context, rawURL string) (*shortener.Result, error)
}

// Resolver serves redirects and analytics reads.
type Resolver interface {
	ResolveAndCount(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error)
	GetAnalytics(ctx context.Context, code shortener.Code) (*shortener.Analytics, error)
}

// RedirectRecorder observes redirect outcomes.
type RedirectRecorder interface {
	Redirect(outcome string)
}

type nopRedirectRecorder struct{}

func (nopRedirectRecorder) Redirect(string) {}

// URLHandler handles URL shortening operations.
type URLHandler struct {
	shortener          Shortener
	resolver           Resolver
	redirects          RedirectRecorder
	publishURLCreated  messaging.Publish[analytics.URLCreatedEvent]
	publishURLAccessed messaging.Publish[analytics.URLAccessedEvent]
	logger             *zap.Logger
}

// NewURLHandler creates a new URL handler. A nil recorder disables redirect metrics.
func NewURLHandler(
	s Shortener,
	resolver Resolver,
	redirects RedirectRecorder,
	publishURLCreated messaging.Publish[analytics.URLCreatedEvent],
	publishURLAccessed messaging.Publish[analytics.URLAccessedEvent],
	logger *zap.Logger,
) *URLHandler {
	if redirects == nil {
		redirects = nopRedirectRecorder{}
	}

	return &URLHandler{
		shortener:          s,
		resolver:           resolver,
		redirects:          redirects,
		publishURLCreated:  publishURLCreated,
		publishURLAccessed: publishURLAccessed,
		logger:             logger,
	}
}

type requestMetaKey struct{}

// RequestMeta holds HTTP request metadata for analytics.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	Referrer  string
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}

func (h *URLHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	result, err := h.shortener.CreateShortURL(ctx, req.Body.OriginalURL)
	if err != nil {
		if errors.Is(err, shortener.ErrInvalidURL) {
			return nil, huma.Error400BadRequest("originalUrl must be a well-formed absolute URL")
		}

		h.logger.Error("failed to create short url", zap.Error(err))

		if errors.Is(err, shortener.ErrRetriesExhausted) {
			return nil, huma.Error500InternalServerError("could not allocate a unique short id")
		}

		return nil, huma.Error500InternalServerError("failed to save url")
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.URLCreatedEvent{
		Code:        string(result.Code),
		OriginalURL: result.OriginalURL,
		CreatedAt:   time.Now().UTC(),
		ClientIP:    meta.ClientIP,
		UserAgent:   meta.UserAgent,
	}

	if err := h.publishURLCreated(ctx, event); err != nil {
		h.logger.Error("failed to publish analytics event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	resp := &CreateShortURLResponse{}
	resp.Headers.Location = result.ShortURL
	resp.Body.ShortID = string(result.Code)
	resp.Body.ShortURL = result.ShortURL
	resp.Body.OriginalURL = result.OriginalURL

	return resp, nil
}

func (h *URLHandler) RedirectToURL(ctx context.Context, req *ShortIDRequest) (*RedirectResponse, error) {
	shortURL, err := h.resolver.ResolveAndCount(ctx, shortener.Code(req.ShortID))
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			h.redirects.Redirect(RedirectNotFound)

			return nil, huma.Error404NotFound("short url not found")
		}

		h.redirects.Redirect(RedirectError)
		h.logger.Error("failed to resolve short url", zap.String("code", req.ShortID), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to get url")
	}

	h.redirects.Redirect(RedirectHit)

	meta := RequestMetaFromContext(ctx)
	event := &analytics.URLAccessedEvent{
		Code:       req.ShortID,
		ClickCount: shortURL.ClickCount,
		AccessedAt: time.Now().UTC(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
	}

	if err = h.publishURLAccessed(ctx, event); err != nil {
		h.logger.Error("failed to publish access event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	resp := &RedirectResponse{
		Status: http.StatusFound,
	}
	resp.Headers.Location = shortURL.OriginalURL
	// Every visit must reach the server to be counted.
	resp.Headers.CacheControl = "no-store"

	return resp, nil
}

func (h *URLHandler) GetAnalytics(ctx context.Context, req *ShortIDRequest) (*AnalyticsResponse, error) {
	stats, err := h.resolver.GetAnalytics(ctx, shortener.Code(req.ShortID))
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short url not found")
		}

		h.logger.Error("failed to get analytics", zap.String("code", req.ShortID), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to get analytics")
	}

	resp := &AnalyticsResponse{}
	resp.Body.ShortID = string(stats.Code)
	resp.Body.OriginalURL = stats.OriginalURL
	resp.Body.ClickCount = stats.ClickCount
	resp.Body.CreatedAt = stats.CreatedAt

	return resp, nil
}
