package shortener

import "errors"

var (
	// ErrNotFound is returned when no record exists for a code.
	ErrNotFound = errors.New("url not found")
	// ErrInvalidURL is returned when the input is not a well-formed absolute URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrInvalidRecord is returned by stores when a record violates field constraints.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrDuplicateCode signals a code conflict at insert time. It never leaves Service.
	ErrDuplicateCode = errors.New("duplicate code")
	// ErrRetriesExhausted is returned when no unique code could be allocated.
	ErrRetriesExhausted = errors.New("could not allocate a unique code")
)
