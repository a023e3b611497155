package store

import (
	"context"
	"sync"
	"time"
)

// RateLimitMemoryStore is an in-memory implementation of ratelimit.Store.
// Counters live for the process lifetime; use RateLimitRedisStore to share
// limits between instances.
type RateLimitMemoryStore struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	now      func() time.Time
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-window)

	// Timestamps are appended in order, so expired ones form a prefix.
	timestamps := s.requests[key]
	first := 0

	for first < len(timestamps) && !timestamps[first].After(cutoff) {
		first++
	}

	valid := append(timestamps[first:], now)
	s.requests[key] = valid

	return int64(len(valid)), nil
}
