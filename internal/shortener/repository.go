package shortener

import "context"

// Repository defines the storage operations the shortener relies on.
//
// Code uniqueness must be enforced by the implementation itself, not by a
// lookup before the write.
type Repository interface {
	// FindByCode returns the record for code, or ErrNotFound.
	FindByCode(ctx context.Context, code Code) (*ShortURL, error)

	// Insert stores a new record and returns it with its storage ID set.
	// Returns ErrDuplicateCode if the code is taken and ErrInvalidRecord if
	// the record fails ValidateRecord.
	Insert(ctx context.Context, shortURL *ShortURL) (*ShortURL, error)

	// IncrementAndFetch atomically adds one to the click count and returns
	// the post-increment record, or ErrNotFound.
	IncrementAndFetch(ctx context.Context, code Code) (*ShortURL, error)

	// FindAnalytics returns the record with an authoritative click count.
	FindAnalytics(ctx context.Context, code Code) (*ShortURL, error)
}
