// Package metrics exposes Prometheus instrumentation on a private registry.
package metrics

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "folio"

// Login attempt results.
const (
	LoginSuccess     = "success"
	LoginFailure     = "failure"
	LoginRateLimited = "rate_limited"
)

// Metrics holds the collectors recorded by the HTTP layer and services.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	loginAttempts   *prometheus.CounterVec
	contactMessages *prometheus.CounterVec
	contentWrites   *prometheus.CounterVec
}

// New creates the collectors and registers them with a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		loginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "login_attempts_total",
				Help:      "Admin login attempts by result",
			},
			[]string{"result"},
		),
		contactMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "contact_messages_total",
				Help:      "Contact form messages by delivery channel and result",
			},
			[]string{"delivery", "result"},
		),
		contentWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "content_writes_total",
				Help:      "Content document replacements by collection and result",
			},
			[]string{"collection", "result"},
		),
	}

	registry.MustRegister(m.requestsTotal, m.requestDuration, m.loginAttempts, m.contactMessages, m.contentWrites)
	return m
}

// Registry returns the registry backing the /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveLogin counts a login attempt.
func (m *Metrics) ObserveLogin(result string) {
	m.loginAttempts.WithLabelValues(result).Inc()
}

// ObserveContact counts a contact message hand-off.
func (m *Metrics) ObserveContact(delivery string, err error) {
	m.contactMessages.WithLabelValues(delivery, resultLabel(err)).Inc()
}

// ObserveContentWrite counts a content document replacement.
func (m *Metrics) ObserveContentWrite(collection string, err error) {
	m.contentWrites.WithLabelValues(collection, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Middleware records request count and latency per matched route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		// ServeMux sets Pattern on the request it routes.
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		duration := time.Since(start)

		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(duration.Seconds())

		slog.Debug("request served",
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"duration_ms", duration.Milliseconds(),
		)
	})
}
