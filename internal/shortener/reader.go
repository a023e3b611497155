package shortener

import (
	"context"
)

// Reader serves redirects and analytics lookups.
type Reader struct {
	store Repository
}

// NewReader creates a Reader over store.
func NewReader(store Repository) *Reader {
	return &Reader{store: store}
}

// ResolveAndCount counts one access to code and returns the record after the
// increment. Lookup and increment happen in a single store call.
func (r *Reader) ResolveAndCount(ctx context.Context, code Code) (*ShortURL, error) {
	if ValidateCode(code) != nil {
		return nil, ErrNotFound
	}

	return r.store.IncrementAndFetch(ctx, code)
}

// GetAnalytics returns access statistics for code without counting an access.
func (r *Reader) GetAnalytics(ctx context.Context, code Code) (*Analytics, error) {
	if ValidateCode(code) != nil {
		return nil, ErrNotFound
	}

	shortURL, err := r.store.FindAnalytics(ctx, code)
	if err != nil {
		return nil, err
	}

	return &Analytics{
		Code:        shortURL.Code,
		OriginalURL: shortURL.OriginalURL,
		ClickCount:  shortURL.ClickCount,
		CreatedAt:   shortURL.CreatedAt,
	}, nil
}
