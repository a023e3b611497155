package store

import (
	"context"

	"github.com/serroba/url-shortener/internal/analytics"
	"go.uber.org/zap"
)

// Log is an analytics.Store that writes every event to a structured logger.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a new logging analytics store.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger.Named("analytics")}
}

func (l *Log) SaveURLCreated(_ context.Context, event *analytics.URLCreatedEvent) error {
	l.logger.Info("url created",
		zap.String("code", event.Code),
		zap.String("originalUrl", event.OriginalURL),
		zap.Time("createdAt", event.CreatedAt),
		zap.String("clientIp", event.ClientIP),
	)

	return nil
}

func (l *Log) SaveURLAccessed(_ context.Context, event *analytics.URLAccessedEvent) error {
	l.logger.Info("url accessed",
		zap.String("code", event.Code),
		zap.Int64("clickCount", event.ClickCount),
		zap.Time("accessedAt", event.AccessedAt),
		zap.String("referrer", event.Referrer),
	)

	return nil
}

// Compile-time check.
var _ analytics.Store = (*Log)(nil)
