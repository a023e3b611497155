package container_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/analytics"
	"github.com/serroba/url-shortener/internal/container"
	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureStore struct {
	mu       sync.Mutex
	created  []*analytics.URLCreatedEvent
	accessed []*analytics.URLAccessedEvent
}

func (s *captureStore) SaveURLCreated(_ context.Context, event *analytics.URLCreatedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, event)

	return nil
}

func (s *captureStore) SaveURLAccessed(_ context.Context, event *analytics.URLAccessedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessed = append(s.accessed, event)

	return nil
}

func (s *captureStore) counts() (created, accessed int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.created), len(s.accessed)
}

func memoryOptions() *container.Options {
	return &container.Options{
		Port:           8888,
		CodeLength:     8,
		MaxAttempts:    5,
		Storage:        container.StorageMemory,
		Events:         container.EventsMemory,
		ReadRateLimit:  1000,
		WriteRateLimit: 100,
		LogFormat:      "console",
		LogLevel:       "error",
	}
}

func newServer(t *testing.T, opts *container.Options) (*do.Injector, *chi.Mux) {
	t.Helper()

	injector := do.New()
	container.ServerPackages(injector, opts)
	t.Cleanup(func() { _ = injector.Shutdown() })

	_ = do.MustInvoke[huma.API](injector)

	return injector, do.MustInvoke[*chi.Mux](injector)
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestServer_EndToEnd(t *testing.T) {
	injector, router := newServer(t, memoryOptions())

	sink := &captureStore{}
	do.OverrideValue[analytics.Store](injector, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, container.StartConsumers(ctx, injector))

	created := serve(router, http.MethodPost, "/shorten", `{"originalUrl":"https://example.com/end-to-end"}`)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	var body struct {
		ShortID     string `json:"shortId"`
		ShortURL    string `json:"shortUrl"`
		OriginalURL string `json:"originalUrl"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &body))

	assert.Len(t, body.ShortID, 8)
	assert.Equal(t, "http://localhost:8888/"+body.ShortID, body.ShortURL)
	assert.Equal(t, body.ShortURL, created.Header().Get("Location"))

	redirect := serve(router, http.MethodGet, "/"+body.ShortID, "")
	assert.Equal(t, http.StatusFound, redirect.Code)
	assert.Equal(t, "https://example.com/end-to-end", redirect.Header().Get("Location"))

	stats := serve(router, http.MethodGet, "/analytics/"+body.ShortID, "")
	require.Equal(t, http.StatusOK, stats.Code)

	var analyticsBody struct {
		ClickCount int64 `json:"clickCount"`
	}
	require.NoError(t, json.Unmarshal(stats.Body.Bytes(), &analyticsBody))
	assert.Equal(t, int64(1), analyticsBody.ClickCount)

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/doesNotExist", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/analytics/doesNotExist", "").Code)
	assert.Equal(t, http.StatusBadRequest,
		serve(router, http.MethodPost, "/shorten", `{"originalUrl":"not a url"}`).Code)

	assert.Eventually(t, func() bool {
		c, a := sink.counts()

		return c == 1 && a == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServer_OperationalEndpoints(t *testing.T) {
	_, router := newServer(t, memoryOptions())

	health := serve(router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, health.Code)

	var healthBody struct {
		Status       string            `json:"status"`
		Dependencies map[string]string `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal(health.Body.Bytes(), &healthBody))
	assert.Equal(t, "ok", healthBody.Status)
	assert.Empty(t, healthBody.Dependencies)

	serve(router, http.MethodGet, "/health", "")

	metrics := serve(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), `route="/health"`)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/openapi.json", "").Code)
}

func TestServer_RateLimitsShorten(t *testing.T) {
	_, router := newServer(t, memoryOptions())

	var last int

	for range 11 {
		last = serve(router, http.MethodPost, "/shorten", `{"originalUrl":"https://example.com"}`).Code
	}

	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestRepositoryPackage_UnknownStorage(t *testing.T) {
	opts := memoryOptions()
	opts.Storage = "cassandra"

	injector := do.New()
	container.ServerPackages(injector, opts)

	_, err := do.Invoke[shortener.Repository](injector)

	require.ErrorContains(t, err, "unknown storage backend")
}

func TestOptions(t *testing.T) {
	opts := memoryOptions()

	assert.False(t, opts.RedisEnabled())
	assert.Equal(t, "http://localhost:8888", opts.PublicBaseURL())

	opts.BaseURL = "https://sho.rt"
	assert.Equal(t, "https://sho.rt", opts.PublicBaseURL())

	opts.Events = container.EventsRedis
	assert.True(t, opts.RedisEnabled())
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := container.NewLogger(format, "debug")

		require.NoError(t, err)
		assert.NotNil(t, logger)
	}

	_, err := container.NewLogger("json", "loud")
	require.Error(t, err)
}
