// Package metrics exposes Prometheus instruments for the shortener.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	ShortURLsCreated prometheus.Counter
	CodeCollisions   *prometheus.CounterVec
	RetriesExhausted prometheus.Counter
	Redirects        *prometheus.CounterVec
	RateLimited      *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
}

// New creates the metrics and registers them, plus Go runtime collectors,
// on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ShortURLsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shortener_urls_created_total",
			Help: "Total number of short URLs created",
		}),
		CodeCollisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shortener_code_collisions_total",
			Help: "Generated codes rejected because they were already taken",
		}, []string{"reason"}),
		RetriesExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shortener_retries_exhausted_total",
			Help: "Create requests that failed to allocate a unique code",
		}),
		Redirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shortener_redirects_total",
			Help: "Redirect lookups by outcome",
		}, []string{"outcome"}),
		RateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Total number of rate-limited requests",
		}, []string{"scope"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "route", "status"}),
		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
	}

	m.registry.MustRegister(
		m.ShortURLsCreated,
		m.CodeCollisions,
		m.RetriesExhausted,
		m.Redirects,
		m.RateLimited,
		m.RequestDuration,
		m.RequestsInFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Created implements shortener.Recorder.
func (m *Metrics) Created() {
	m.ShortURLsCreated.Inc()
}

// Collision implements shortener.Recorder.
func (m *Metrics) Collision(reason string) {
	m.CodeCollisions.WithLabelValues(reason).Inc()
}

// Exhausted implements shortener.Recorder.
func (m *Metrics) Exhausted() {
	m.RetriesExhausted.Inc()
}

// Redirect counts a redirect lookup, e.g. "hit", "not_found" or "error".
func (m *Metrics) Redirect(outcome string) {
	m.Redirects.WithLabelValues(outcome).Inc()
}

// Limited counts a request rejected by the rate limiter.
func (m *Metrics) Limited(scope string) {
	m.RateLimited.WithLabelValues(scope).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request latency labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.RequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
