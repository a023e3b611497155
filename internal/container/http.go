package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/analytics"
	"github.com/serroba/url-shortener/internal/handlers"
	"github.com/serroba/url-shortener/internal/health"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/metrics"
	"github.com/serroba/url-shortener/internal/middleware"
	"github.com/serroba/url-shortener/internal/ratelimit"
	"github.com/serroba/url-shortener/internal/shortener"
	"go.uber.org/zap"
)

// MetricsPackage provides the *metrics.Metrics.
func MetricsPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*metrics.Metrics, error) {
		return metrics.New(), nil
	})
}

// HTTPPackage provides the *chi.Mux and the huma.API with every route
// registered. Invoking huma.API performs the registration.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*chi.Mux, error) {
		m := do.MustInvoke[*metrics.Metrics](i)

		router := chi.NewMux()
		router.Use(m.Middleware)
		router.Handle("/metrics", m.Handler())

		return router, nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)
		m := do.MustInvoke[*metrics.Metrics](i)

		api := humachi.New(router, huma.DefaultConfig("URL Shortener", "1.0.0"))
		api.UseMiddleware(
			middleware.RequestMeta(api),
			middleware.PolicyRateLimiter(api, do.MustInvoke[*ratelimit.PolicyLimiter](i), m, logger),
		)

		publisher := do.MustInvoke[*messaging.PublisherGroup](i).Publisher()

		urlHandler := handlers.NewURLHandler(
			do.MustInvoke[*shortener.Service](i),
			do.MustInvoke[*shortener.Reader](i),
			m,
			messaging.NewPublishFunc[analytics.URLCreatedEvent](publisher, analytics.TopicURLCreated),
			messaging.NewPublishFunc[analytics.URLAccessedEvent](publisher, analytics.TopicURLAccessed),
			logger,
		)

		handlers.RegisterRoutes(api, urlHandler)
		health.RegisterRoutes(api, health.NewHandler(healthChecks(i)))

		return api, nil
	})
}

func healthChecks(i *do.Injector) map[string]health.Checker {
	opts := do.MustInvoke[*Options](i)
	checks := map[string]health.Checker{}

	if opts.RedisEnabled() {
		checks["redis"] = health.RedisChecker(do.MustInvoke[*redis.Client](i))
	}

	if opts.Storage == StoragePostgres {
		checks["postgres"] = health.PostgresChecker(do.MustInvoke[*Postgres](i).Pool)
	}

	return checks
}

// ServerPackages registers every package the HTTP server needs.
func ServerPackages(injector *do.Injector, options *Options) {
	do.ProvideValue(injector, options)
	LoggerPackage(injector)
	MetricsPackage(injector)
	RedisPackage(injector)
	PostgresPackage(injector)
	RepositoryPackage(injector)
	ShortenerPackage(injector)
	RateLimitPackage(injector)
	MemoryPubSubPackage(injector)
	PublisherGroupPackage(injector)
	ConsumerGroupPackage(injector)
	HTTPPackage(injector)
}
