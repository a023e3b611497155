package shortener_test

import (
	"context"
	"sync"

	"github.com/serroba/url-shortener/internal/shortener"
)

// mockRepository wraps a real repository and lets tests override individual
// operations and count how often each was called.
type mockRepository struct {
	shortener.Repository

	mu      sync.Mutex
	finds   int
	inserts int

	findByCode func(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error)
	insert     func(ctx context.Context, shortURL *shortener.ShortURL) (*shortener.ShortURL, error)
}

func (m *mockRepository) FindByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	m.mu.Lock()
	m.finds++
	m.mu.Unlock()

	if m.findByCode != nil {
		return m.findByCode(ctx, code)
	}

	return m.Repository.FindByCode(ctx, code)
}

func (m *mockRepository) Insert(ctx context.Context, shortURL *shortener.ShortURL) (*shortener.ShortURL, error) {
	m.mu.Lock()
	m.inserts++
	m.mu.Unlock()

	if m.insert != nil {
		return m.insert(ctx, shortURL)
	}

	return m.Repository.Insert(ctx, shortURL)
}

func (m *mockRepository) counts() (finds, inserts int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.finds, m.inserts
}

type countingRecorder struct {
	mu         sync.Mutex
	created    int
	exhausted  int
	collisions map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{collisions: map[string]int{}}
}

func (r *countingRecorder) Created() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
}

func (r *countingRecorder) Collision(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collisions[reason]++
}

func (r *countingRecorder) Exhausted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exhausted++
}

// sequence returns a generator that yields codes in order, then repeats the last.
func sequence(codes ...string) shortener.CodeGenerator {
	var (
		mu sync.Mutex
		i  int
	)

	return func() string {
		mu.Lock()
		defer mu.Unlock()

		code := codes[min(i, len(codes)-1)]
		i++

		return code
	}
}
