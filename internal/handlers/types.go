package handlers

import "time"

// CreateShortURLRequest is the request body for creating a short URL.
type CreateShortURLRequest struct {
	Body struct {
		OriginalURL string `doc:"The URL to shorten" example:"https://example.com/very/long/path" json:"originalUrl,omitempty"`
	}
}

// CreateShortURLResponse is the response for a successfully created short URL.
type CreateShortURLResponse struct {
	Headers struct {
		Location string `doc:"The short URL location" header:"Location"`
	}
	Body struct {
		ShortID     string `doc:"The short identifier" example:"aZ3kP9qX"                           json:"shortId"`
		ShortURL    string `doc:"The full short URL"   example:"http://localhost:8888/aZ3kP9qX"     json:"shortUrl"`
		OriginalURL string `doc:"The original URL"     example:"https://example.com/very/long/path" json:"originalUrl"`
	}
}

// ShortIDRequest addresses a short URL by its identifier.
type ShortIDRequest struct {
	ShortID string `doc:"The short identifier" example:"aZ3kP9qX" path:"shortId"`
}

// RedirectResponse redirects the client to the original URL.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location     string `header:"Location"`
		CacheControl string `header:"Cache-Control"`
	}
}

// AnalyticsResponse reports access statistics for a short URL.
type AnalyticsResponse struct {
	Body struct {
		ShortID     string    `doc:"The short identifier"          example:"aZ3kP9qX"            json:"shortId"`
		OriginalURL string    `doc:"The original URL"              example:"https://example.com" json:"originalUrl"`
		ClickCount  int64     `doc:"Number of counted redirects"   example:"42"                  json:"clickCount"`
		CreatedAt   time.Time `doc:"When the short URL was created"                              json:"createdAt"`
	}
}
