package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-shortener/internal/shortener"
)

// insertScript writes the record hash only if the key does not exist yet.
// Returns the assigned id, or 0 on conflict.
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
local id = redis.call('INCR', KEYS[2])
redis.call('HSET', KEYS[1],
	'id', id,
	'code', ARGV[1],
	'original_url', ARGV[2],
	'click_count', 0,
	'created_at', ARGV[3])
return id
`)

// incrementScript bumps click_count and returns the whole hash in one step.
var incrementScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
redis.call('HINCRBY', KEYS[1], 'click_count', 1)
return redis.call('HGETALL', KEYS[1])
`)

// RedisStore is a Redis implementation of shortener.Repository.
// Each record is a hash at prefix+code.
type RedisStore struct {
	client *redis.Client
	prefix string // "url:" for code -> record hash
	idKey  string // "url:next_id" id sequence
}

// NewRedisStore creates a new Redis-backed URL store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "url:",
		idKey:  "url:next_id",
	}
}

func (r *RedisStore) FindByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	return parseRecord(result)
}

func (r *RedisStore) Insert(ctx context.Context, shortURL *shortener.ShortURL) (*shortener.ShortURL, error) {
	if err := shortener.ValidateRecord(shortURL); err != nil {
		return nil, err
	}

	id, err := insertScript.Run(ctx, r.client,
		[]string{r.prefix + string(shortURL.Code), r.idKey},
		string(shortURL.Code),
		shortURL.OriginalURL,
		shortURL.CreatedAt.UnixNano(),
	).Int64()
	if err != nil {
		return nil, err
	}

	if id == 0 {
		return nil, shortener.ErrDuplicateCode
	}

	saved := *shortURL
	saved.ID = strconv.FormatInt(id, 10)
	saved.ClickCount = 0

	return &saved, nil
}

func (r *RedisStore) IncrementAndFetch(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	values, err := incrementScript.Run(ctx, r.client, []string{r.prefix + string(code)}).StringSlice()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	if len(values)%2 != 0 {
		return nil, fmt.Errorf("malformed record for code %q", code)
	}

	fields := make(map[string]string, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		fields[values[i]] = values[i+1]
	}

	return parseRecord(fields)
}

func (r *RedisStore) FindAnalytics(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	return r.FindByCode(ctx, code)
}

func parseRecord(fields map[string]string) (*shortener.ShortURL, error) {
	clicks, err := strconv.ParseInt(fields["click_count"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse click_count: %w", err)
	}

	nanos, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &shortener.ShortURL{
		ID:          fields["id"],
		Code:        shortener.Code(fields["code"]),
		OriginalURL: fields["original_url"],
		ClickCount:  clicks,
		CreatedAt:   time.Unix(0, nanos).UTC(),
	}, nil
}

// Compile-time check.
var _ shortener.Repository = (*RedisStore)(nil)
