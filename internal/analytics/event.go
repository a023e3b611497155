// Package analytics defines the events emitted by the shortener and the sink
// that consumes them.
package analytics

import (
	"context"
	"time"
)

// Topics events are published on.
const (
	TopicURLCreated  = "url.created"
	TopicURLAccessed = "url.accessed"
)

// URLCreatedEvent represents an event emitted when a URL is shortened.
type URLCreatedEvent struct {
	Code        string    `json:"code"`
	OriginalURL string    `json:"originalUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	ClientIP    string    `json:"clientIp"`
	UserAgent   string    `json:"userAgent"`
}

// URLAccessedEvent represents an event emitted for every counted redirect.
// ClickCount is the count after this access.
type URLAccessedEvent struct {
	Code       string    `json:"code"`
	ClickCount int64     `json:"clickCount"`
	AccessedAt time.Time `json:"accessedAt"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
	Referrer   string    `json:"referrer"`
}

// Store receives decoded events from the consumers. Each method has the shape
// of a messaging.Handler.
type Store interface {
	SaveURLCreated(ctx context.Context, event *URLCreatedEvent) error
	SaveURLAccessed(ctx context.Context, event *URLAccessedEvent) error
}
