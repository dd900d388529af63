// Package metrics exposes the relay's Prometheus metrics. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dex_telephony"

// Fallback kinds.
const (
	FallbackCorrection  = "correction"
	FallbackCompletion  = "completion"
	FallbackSpeech      = "speech_text"
	FallbackTranslation = "translation"
	FallbackRetryPrompt = "retry_prompt"
)

// Metrics holds all Prometheus metrics for the relay.
type Metrics struct {
	registry *prometheus.Registry

	TurnsTotal       *prometheus.CounterVec
	FallbacksTotal   *prometheus.CounterVec
	CallsTotal       *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec
	ProviderErrors   *prometheus.CounterVec
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RateLimitHits    prometheus.Counter
}

// New creates a Metrics instance with every metric registered on its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TurnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Conversation turns handled",
		}, []string{"channel", "outcome"}),
		FallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Degraded responses by kind",
		}, []string{"kind"}),
		CallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Phone call lifecycle events",
		}, []string{"event"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_duration_seconds",
			Help:      "Latency of upstream provider calls",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"operation"}),
		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Failed upstream provider calls",
		}, []string{"operation"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served",
		}, []string{"route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		RateLimitHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}

	m.registry.MustRegister(
		m.TurnsTotal,
		m.FallbacksTotal,
		m.CallsTotal,
		m.ProviderDuration,
		m.ProviderErrors,
		m.RequestsTotal,
		m.RequestDuration,
		m.RateLimitHits,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RegisterGauges exposes values owned by other components, read at scrape time.
func (m *Metrics) RegisterGauges(activeSessions, pendingCleanups func() float64) {
	if m == nil {
		return
	}
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Phone sessions currently stored",
		}, activeSessions),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_cleanups",
			Help:      "Audio files waiting for deletion",
		}, pendingCleanups),
	)
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordTurn counts a finished turn on channel ("phone" or "web").
func (m *Metrics) RecordTurn(channel, outcome string) {
	if m == nil {
		return
	}
	m.TurnsTotal.WithLabelValues(channel, outcome).Inc()
}

// RecordFallback counts a degraded response.
func (m *Metrics) RecordFallback(kind string) {
	if m == nil {
		return
	}
	m.FallbacksTotal.WithLabelValues(kind).Inc()
}

// RecordCall counts a call lifecycle event.
func (m *Metrics) RecordCall(event string) {
	if m == nil {
		return
	}
	m.CallsTotal.WithLabelValues(event).Inc()
}

// ObserveProvider records one provider call. Pass the error it returned, if any.
func (m *Metrics) ObserveProvider(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.ProviderDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		m.ProviderErrors.WithLabelValues(operation).Inc()
	}
}

// RecordRequest records a served HTTP request.
func (m *Metrics) RecordRequest(route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordRateLimit counts a rejected request.
func (m *Metrics) RecordRateLimit() {
	if m == nil {
		return
	}
	m.RateLimitHits.Inc()
}
