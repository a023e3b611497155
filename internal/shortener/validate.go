package shortener

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxCodeLength is the largest code length any store accepts.
const MaxCodeLength = 50

var validate = validator.New()

// NormalizeInput trims rawURL and checks that it is a well-formed absolute URL.
func NormalizeInput(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)

	if err := validateURL(trimmed); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	return trimmed, nil
}

// ValidateCode reports whether code has an acceptable shape.
func ValidateCode(code Code) error {
	if err := validate.Var(string(code), fmt.Sprintf("required,max=%d,alphanum", MaxCodeLength)); err != nil {
		return fmt.Errorf("code %q: %w", code, err)
	}

	return nil
}

// ValidateRecord checks field constraints before a record is written.
// Stores call it so every backend rejects the same records.
func ValidateRecord(shortURL *ShortURL) error {
	if shortURL == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}

	if err := ValidateCode(shortURL.Code); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	if shortURL.OriginalURL != strings.TrimSpace(shortURL.OriginalURL) {
		return fmt.Errorf("%w: original url has surrounding whitespace", ErrInvalidRecord)
	}

	if err := validateURL(shortURL.OriginalURL); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	if shortURL.ClickCount < 0 {
		return fmt.Errorf("%w: negative click count", ErrInvalidRecord)
	}

	if shortURL.CreatedAt.IsZero() {
		return fmt.Errorf("%w: missing creation time", ErrInvalidRecord)
	}

	return nil
}

func validateURL(s string) error {
	if err := validate.Var(s, "required,url"); err != nil {
		return err
	}

	// The url tag accepts scheme-only strings like "mailto:"; a redirect target needs a host.
	u, err := url.Parse(s)
	if err != nil {
		return err
	}

	if u.Host == "" {
		return fmt.Errorf("url %q has no host", s)
	}

	return nil
}
