package container

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/metrics"
	"github.com/serroba/url-shortener/internal/ratelimit"
	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/serroba/url-shortener/internal/store"
	"github.com/serroba/url-shortener/internal/store/migrations"
	"go.uber.org/zap"
)

const connectTimeout = 5 * time.Second

// RedisClient closes the underlying client on injector shutdown.
type RedisClient struct {
	*redis.Client
}

func (c *RedisClient) Shutdown() error {
	return c.Close()
}

// Postgres closes the pool on injector shutdown.
type Postgres struct {
	*pgxpool.Pool
}

func (p *Postgres) Shutdown() error {
	p.Close()

	return nil
}

// RedisPackage provides *RedisClient and the *redis.Client it wraps.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*RedisClient, error) {
		opts := do.MustInvoke[*Options](i)

		return &RedisClient{Client: redis.NewClient(&redis.Options{
			Addr: opts.RedisAddr,
		})}, nil
	})

	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		return do.MustInvoke[*RedisClient](i).Client, nil
	})
}

// PostgresPackage provides *Postgres, applying migrations first when enabled.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*Postgres, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.Migrate {
			if err := migrations.Up(opts.DatabaseURL); err != nil {
				return nil, err
			}

			logger.Info("database migrations applied")
		}

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()

			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}

		return &Postgres{Pool: pool}, nil
	})
}

// RepositoryPackage provides the shortener.Repository selected by
// Options.Storage. Postgres storage gets a Redis read-through cache when
// Options.CacheTTL is positive.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shortener.Repository, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.Storage {
		case StorageMemory:
			return store.NewMemoryStore(), nil
		case StorageRedis:
			return store.NewRedisStore(do.MustInvoke[*redis.Client](i)), nil
		case StoragePostgres:
			repo := shortener.Repository(store.NewPostgresStore(do.MustInvoke[*Postgres](i).Pool))
			if opts.CacheTTL > 0 {
				ttl := time.Duration(opts.CacheTTL) * time.Second
				repo = store.NewRedisCacheRepository(repo, do.MustInvoke[*redis.Client](i), ttl)
			}

			return repo, nil
		default:
			return nil, fmt.Errorf("unknown storage backend %q", opts.Storage)
		}
	})
}

// RateLimitPackage provides the *ratelimit.PolicyLimiter. Windows live in
// Redis whenever the deployment has one.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		opts := do.MustInvoke[*Options](i)

		var limitStore ratelimit.Store = store.NewRateLimitMemoryStore()
		if opts.RedisEnabled() {
			limitStore = store.NewRateLimitRedisStore(do.MustInvoke[*redis.Client](i))
		}

		policy := ratelimit.DefaultPolicy(int64(opts.ReadRateLimit), int64(opts.WriteRateLimit))

		return ratelimit.NewPolicyLimiter(limitStore, policy), nil
	})
}

// ShortenerPackage provides the *shortener.Service and *shortener.Reader.
func ShortenerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shortener.CodeGenerator, error) {
		return shortener.NewGenerator(do.MustInvoke[*Options](i).CodeLength)
	})

	do.Provide(injector, func(i *do.Injector) (*shortener.Service, error) {
		opts := do.MustInvoke[*Options](i)

		return shortener.NewService(
			do.MustInvoke[shortener.Repository](i),
			do.MustInvoke[shortener.CodeGenerator](i),
			opts.PublicBaseURL(),
			shortener.WithMaxAttempts(opts.MaxAttempts),
			shortener.WithRecorder(do.MustInvoke[*metrics.Metrics](i)),
			shortener.WithLogger(do.MustInvoke[*zap.Logger](i).Named("shortener")),
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (*shortener.Reader, error) {
		return shortener.NewReader(do.MustInvoke[shortener.Repository](i)), nil
	})
}
