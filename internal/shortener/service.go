package shortener

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxAttempts bounds code allocation attempts per create request.
const DefaultMaxAttempts = 5

// Collision reasons reported to a Recorder.
const (
	CollisionExists       = "exists"
	CollisionDuplicateKey = "duplicate_key"
)

// Recorder observes allocation outcomes. metrics.Metrics implements it.
type Recorder interface {
	Created()
	Collision(reason string)
	Exhausted()
}

type nopRecorder struct{}

func (nopRecorder) Created()         {}
func (nopRecorder) Collision(string) {}
func (nopRecorder) Exhausted()       {}

// Option configures a Service.
type Option func(*Service)

// WithMaxAttempts overrides DefaultMaxAttempts. Values below one are ignored.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithRecorder reports allocation outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service creates short URLs, allocating collision-free codes.
type Service struct {
	store        Repository
	generateCode CodeGenerator
	baseURL      string
	maxAttempts  int
	recorder     Recorder
	logger       *zap.Logger
	now          func() time.Time
}

// NewService creates a shortening service. baseURL is prefixed to every code
// to build the public short URL.
func NewService(store Repository, generator CodeGenerator, baseURL string, opts ...Option) *Service {
	s := &Service{
		store:        store,
		generateCode: generator,
		baseURL:      strings.TrimRight(baseURL, "/"),
		maxAttempts:  DefaultMaxAttempts,
		recorder:     nopRecorder{},
		logger:       zap.NewNop(),
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateShortURL validates rawURL and stores it under a freshly allocated code.
//
// Every attempt draws one candidate. Both kinds of collision, a code found by
// the existence check and an ErrDuplicateCode from Insert, consume the same
// budget of maxAttempts, so a create request never makes more than
// maxAttempts inserts regardless of how the collisions arise.
func (s *Service) CreateShortURL(ctx context.Context, rawURL string) (*Result, error) {
	originalURL, err := NormalizeInput(rawURL)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code := Code(s.generateCode())

		_, err := s.store.FindByCode(ctx, code)
		if err == nil {
			s.collision(code, attempt, CollisionExists)

			continue
		}

		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		saved, err := s.store.Insert(ctx, &ShortURL{
			Code:        code,
			OriginalURL: originalURL,
			CreatedAt:   s.now().UTC(),
		})
		if errors.Is(err, ErrDuplicateCode) {
			s.collision(code, attempt, CollisionDuplicateKey)

			continue
		}

		if err != nil {
			return nil, err
		}

		s.recorder.Created()

		return &Result{
			Code:        saved.Code,
			ShortURL:    s.ShortURL(saved.Code),
			OriginalURL: saved.OriginalURL,
		}, nil
	}

	s.recorder.Exhausted()
	s.logger.Warn("code allocation exhausted", zap.Int("attempts", s.maxAttempts))

	return nil, fmt.Errorf("%w after %d attempts", ErrRetriesExhausted, s.maxAttempts)
}

// ShortURL builds the public URL for code.
func (s *Service) ShortURL(code Code) string {
	return s.baseURL + "/" + string(code)
}

func (s *Service) collision(code Code, attempt int, reason string) {
	s.recorder.Collision(reason)
	s.logger.Debug("code collision",
		zap.String("code", string(code)),
		zap.Int("attempt", attempt),
		zap.String("reason", reason),
	)
}
