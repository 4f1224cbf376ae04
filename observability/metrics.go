package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the scholargraph client.
// Counters follow the *_total convention; durations are histograms in
// seconds. All metrics are registered through the supplied registerer.
type Metrics struct {
	// APIRequestsTotal counts HTTP requests issued, labeled by endpoint.
	APIRequestsTotal *prometheus.CounterVec

	// APIRequestsFailed counts failed HTTP requests, labeled by endpoint
	// and failure reason (network, decode, rate_limited, http_4xx, http_5xx).
	APIRequestsFailed *prometheus.CounterVec

	// APIRequestDuration observes HTTP request duration in seconds by endpoint.
	APIRequestDuration *prometheus.HistogramVec

	// RateLimitedTotal counts 429 responses from the API.
	RateLimitedTotal prometheus.Counter

	// RetriesTotal counts retry attempts made by the batch orchestrator.
	RetriesTotal prometheus.Counter

	// BatchesStarted counts batch lookups initiated.
	BatchesStarted prometheus.Counter

	// BatchKeysTotal counts per-key batch outcomes, labeled by outcome
	// (success, not_found, error).
	BatchKeysTotal *prometheus.CounterVec

	// BatchDuration observes end-to-end batch duration in seconds.
	BatchDuration prometheus.Histogram

	// LookupsTotal counts facade operations, labeled by operation
	// (paper_by_title, papers_by_keyword, author_by_name, ...).
	LookupsTotal *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance registered with reg. The namespace
// is used as a prefix for all metric names. A nil reg registers with the
// default Prometheus registry.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		APIRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of HTTP requests issued to the Graph API",
		}, []string{"endpoint"}),
		APIRequestsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_failed_total",
			Help:      "Total number of failed HTTP requests by endpoint and reason",
		}, []string{"endpoint", "reason"}),
		APIRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Duration of HTTP requests to the Graph API in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"endpoint"}),
		RateLimitedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Total number of 429 responses received from the Graph API",
		}),
		RetriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Total number of retry attempts across all batch lookups",
		}),
		BatchesStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_started_total",
			Help:      "Total number of batch lookups started",
		}),
		BatchKeysTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_keys_total",
			Help:      "Total number of per-key batch outcomes by outcome",
		}, []string{"outcome"}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "End-to-end duration of batch lookups in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		LookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Total number of client lookup operations by operation",
		}, []string{"operation"}),
	}
}

// RecordBatch records a completed batch with its per-outcome key counts.
func (m *Metrics) RecordBatch(durationSeconds float64, success, notFound, failed int) {
	m.BatchDuration.Observe(durationSeconds)
	m.BatchKeysTotal.WithLabelValues("success").Add(float64(success))
	m.BatchKeysTotal.WithLabelValues("not_found").Add(float64(notFound))
	m.BatchKeysTotal.WithLabelValues("error").Add(float64(failed))
}

// RecordLookup records one facade operation.
func (m *Metrics) RecordLookup(operation string) {
	m.LookupsTotal.WithLabelValues(operation).Inc()
}
