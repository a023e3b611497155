package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-shortener/internal/shortener"
)

// RedisCacheRepository wraps a Repository with Redis caching for lookups.
//
// Only FindByCode is served from cache, so its ClickCount may lag behind.
// FindAnalytics and IncrementAndFetch always reach the underlying store.
type RedisCacheRepository struct {
	store  shortener.Repository
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store shortener.Repository, client *redis.Client, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:  store,
		client: client,
		prefix: "cache:url:",
		ttl:    ttl,
	}
}

// FindByCode retrieves a short URL by its code, checking cache first.
func (r *RedisCacheRepository) FindByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	if url, err := r.getFromCache(ctx, code); err == nil {
		return url, nil
	}

	url, err := r.store.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cacheURL(ctx, url)

	return url, nil
}

// Insert stores a short URL in the underlying store and updates the cache.
func (r *RedisCacheRepository) Insert(ctx context.Context, shortURL *shortener.ShortURL) (*shortener.ShortURL, error) {
	saved, err := r.store.Insert(ctx, shortURL)
	if err != nil {
		return nil, err
	}

	// Write-through: update cache after successful insert
	r.cacheURL(ctx, saved)

	return saved, nil
}

// IncrementAndFetch increments in the underlying store and refreshes the cached copy.
func (r *RedisCacheRepository) IncrementAndFetch(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	url, err := r.store.IncrementAndFetch(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cacheURL(ctx, url)

	return url, nil
}

// FindAnalytics bypasses the cache.
func (r *RedisCacheRepository) FindAnalytics(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	return r.store.FindAnalytics(ctx, code)
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	return parseRecord(result)
}

func (r *RedisCacheRepository) cacheURL(ctx context.Context, url *shortener.ShortURL) {
	pipe := r.client.Pipeline()
	key := r.prefix + string(url.Code)

	pipe.HSet(ctx, key, map[string]interface{}{
		"id":           url.ID,
		"code":         string(url.Code),
		"original_url": url.OriginalURL,
		"click_count":  strconv.FormatInt(url.ClickCount, 10),
		"created_at":   url.CreatedAt.UnixNano(),
	})

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	_, _ = pipe.Exec(ctx)
}

// Shutdown is a no-op for RedisCacheRepository (client managed externally).
func (r *RedisCacheRepository) Shutdown() error {
	return nil
}

// Compile-time check.
var _ shortener.Repository = (*RedisCacheRepository)(nil)
