// Package metrics provides Prometheus metrics for the recommendation
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Request metrics.
	requests        *prometheus.CounterVec
	requestDuration prometheus.Histogram

	// Collaborator fetch metrics.
	fetchErrors   *prometheus.CounterVec
	fetchTimeouts *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec

	// Cache metrics.
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheEvictions prometheus.Counter
	cacheCoalesced prometheus.Counter

	// Pipeline metrics.
	candidatesScored       prometheus.Counter
	recommendationsEmitted prometheus.Histogram
	freeSlotsFound         prometheus.Histogram

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom histogram buckets for latency metrics.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithPrometheusRegistry sets the registry metrics register on.
func WithPrometheusRegistry(reg prometheus.Registerer) Option {
	return func(m *Manager) {
		if reg != nil {
			m.registry = reg
		}
	}
}

// Global manager and its registry. A custom registry keeps the default Go
// collector noise out of the scrape.
var (
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton metrics registry
	globalManager  *Manager                   //nolint:gochecknoglobals // singleton metrics manager
)

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// GetRegistry returns the registry backing the global manager, for the
// /metrics handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// NewManager creates a metrics manager and registers its metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "matinee",
		subsystem:        "recommender",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.requests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "requests_total",
			Help:      "Total recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	m.requestDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "request_duration_seconds",
		Help:      "End-to-end recommendation request duration in seconds",
		Buckets:   m.histogramBuckets,
	})

	m.fetchErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fetch_errors_total",
			Help:      "Collaborator fetch failures by collaborator",
		},
		[]string{"collaborator"},
	)

	m.fetchTimeouts = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fetch_timeouts_total",
			Help:      "Collaborator fetches abandoned on deadline by collaborator",
		},
		[]string{"collaborator"},
	)

	m.fetchLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fetch_latency_seconds",
			Help:      "Collaborator fetch latency in seconds by collaborator",
			Buckets:   m.histogramBuckets,
		},
		[]string{"collaborator"},
	)

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Recommendation cache hits",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Recommendation cache misses",
	})

	m.cacheEvictions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_evictions_total",
		Help:      "Expired or invalidated cache entries removed",
	})

	m.cacheCoalesced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_coalesced_total",
		Help:      "Requests that joined an identical in-flight computation",
	})

	m.candidatesScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidates_scored_total",
		Help:      "Candidate movies run through the group aggregator",
	})

	m.recommendationsEmitted = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendations_emitted",
		Help:      "Recommendations returned per request",
		Buckets:   []float64{0, 1, 2, 5, 10, 20},
	})

	m.freeSlotsFound = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "free_slots_found",
		Help:      "Common free slots found per request",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint, method, and status code",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// Package-level recording helpers on the global manager.

func RecordRequest(outcome string) {
	globalManager.requests.WithLabelValues(outcome).Inc()
}

func RecordRequestDuration(seconds float64) {
	globalManager.requestDuration.Observe(seconds)
}

func RecordFetchError(collaborator string) {
	globalManager.fetchErrors.WithLabelValues(collaborator).Inc()
}

func RecordFetchTimeout(collaborator string) {
	globalManager.fetchTimeouts.WithLabelValues(collaborator).Inc()
}

func RecordFetchLatency(collaborator string, seconds float64) {
	globalManager.fetchLatency.WithLabelValues(collaborator).Observe(seconds)
}

func RecordCacheHit()  { globalManager.cacheHits.Inc() }
func RecordCacheMiss() { globalManager.cacheMisses.Inc() }

func RecordCacheEviction()  { globalManager.cacheEvictions.Inc() }
func RecordCacheCoalesced() { globalManager.cacheCoalesced.Inc() }

func RecordCandidatesScored(n int) {
	globalManager.candidatesScored.Add(float64(n))
}

func RecordRecommendationsEmitted(n int) {
	globalManager.recommendationsEmitted.Observe(float64(n))
}

func RecordFreeSlotsFound(n int) {
	globalManager.freeSlotsFound.Observe(float64(n))
}

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, seconds float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(seconds)
}
