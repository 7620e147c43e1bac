package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Entry metrics
	EntryMutations  *prometheus.CounterVec
	FeedSubscribers prometheus.Gauge

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Store metrics
	StoreDuration *prometheus.HistogramVec
	StoreErrors   *prometheus.CounterVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates all Prometheus metrics and registers them with reg. A nil reg
// uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Entry metrics
		EntryMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expensetracker_entry_mutations_total",
				Help: "Total entry mutations by kind and outcome",
			},
			[]string{"kind", "status"},
		),
		FeedSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "expensetracker_feed_subscribers",
			Help: "Current number of live entry feed subscribers",
		}),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expensetracker_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "expensetracker_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "expensetracker_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		}),

		// Store metrics
		StoreDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "expensetracker_store_operation_duration_seconds",
				Help:    "Store operation duration",
				Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation"},
		),
		StoreErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expensetracker_store_errors_total",
				Help: "Total store errors",
			},
			[]string{"operation"},
		),

		// Authentication metrics
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expensetracker_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "expensetracker_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),
	}
}

// RecordMutation implements usecase.Recorder.
func (m *Metrics) RecordMutation(kind string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.EntryMutations.WithLabelValues(kind, status).Inc()
}

// ObserveStoreOperation implements usecase.Recorder.
func (m *Metrics) ObserveStoreOperation(op string, elapsed time.Duration, err error) {
	m.StoreDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	if err != nil {
		m.StoreErrors.WithLabelValues(op).Inc()
	}
}
