package shortener

import "time"

// Code represents a short URL code.
type Code string

// ShortURL represents a shortened URL entity.
type ShortURL struct {
	ID          string // storage-assigned, never exposed
	Code        Code
	OriginalURL string
	ClickCount  int64
	CreatedAt   time.Time
}

// Result is the external-facing shape of a newly created short URL.
type Result struct {
	Code        Code
	ShortURL    string
	OriginalURL string
}

// Analytics is a read-only snapshot of a short URL's access statistics.
type Analytics struct {
	Code        Code
	OriginalURL string
	ClickCount  int64
	CreatedAt   time.Time
}
