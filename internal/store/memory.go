package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/serroba/url-shortener/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
type MemoryStore struct {
	mu   sync.RWMutex
	urls map[shortener.Code]shortener.ShortURL
}

// NewMemoryStore creates a new in-memory URL store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		urls: make(map[shortener.Code]shortener.ShortURL),
	}
}

func (m *MemoryStore) FindByCode(_ context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	url, ok := m.urls[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &url, nil
}

func (m *MemoryStore) Insert(_ context.Context, shortURL *shortener.ShortURL) (*shortener.ShortURL, error) {
	if err := shortener.ValidateRecord(shortURL); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.urls[shortURL.Code]; exists {
		return nil, shortener.ErrDuplicateCode
	}

	saved := *shortURL
	saved.ID = uuid.NewString()
	saved.ClickCount = 0
	m.urls[saved.Code] = saved

	return &saved, nil
}

func (m *MemoryStore) IncrementAndFetch(_ context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	url, ok := m.urls[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	url.ClickCount++
	m.urls[code] = url

	return &url, nil
}

func (m *MemoryStore) FindAnalytics(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	return m.FindByCode(ctx, code)
}

// Len returns the number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.urls)
}

// Compile-time check.
var _ shortener.Repository = (*MemoryStore)(nil)
