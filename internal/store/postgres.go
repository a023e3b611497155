package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/url-shortener/internal/shortener"
)

// PostgreSQL error codes.
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
// Code uniqueness comes from the short_urls_code_key constraint.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed URL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) FindByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	query := `
		SELECT id, code, original_url, click_count, created_at
		FROM short_urls
		WHERE code = $1
	`

	return p.queryOne(ctx, query, string(code))
}

func (p *PostgresStore) Insert(ctx context.Context, shortURL *shortener.ShortURL) (*shortener.ShortURL, error) {
	if err := shortener.ValidateRecord(shortURL); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO short_urls (code, original_url, click_count, created_at)
		VALUES ($1, $2, 0, $3)
		RETURNING id, code, original_url, click_count, created_at
	`

	saved, err := p.queryOne(ctx, query,
		string(shortURL.Code),
		shortURL.OriginalURL,
		shortURL.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return nil, shortener.ErrDuplicateCode
			case pgCheckViolation:
				return nil, fmt.Errorf("%w: %s", shortener.ErrInvalidRecord, pgErr.ConstraintName)
			}
		}

		return nil, err
	}

	return saved, nil
}

func (p *PostgresStore) IncrementAndFetch(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	query := `
		UPDATE short_urls
		SET click_count = click_count + 1
		WHERE code = $1
		RETURNING id, code, original_url, click_count, created_at
	`

	return p.queryOne(ctx, query, string(code))
}

func (p *PostgresStore) FindAnalytics(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	return p.FindByCode(ctx, code)
}

// Ping checks PostgreSQL connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresStore) queryOne(ctx context.Context, query string, args ...any) (*shortener.ShortURL, error) {
	var (
		url shortener.ShortURL
		id  int64
	)

	err := p.pool.QueryRow(ctx, query, args...).Scan(
		&id,
		&url.Code,
		&url.OriginalURL,
		&url.ClickCount,
		&url.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	url.ID = strconv.FormatInt(id, 10)

	return &url, nil
}

// Compile-time check.
var _ shortener.Repository = (*PostgresStore)(nil)
