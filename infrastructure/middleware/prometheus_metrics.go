// Package middleware provides cross-cutting concerns for the review engine.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-docreview/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It tracks review outcomes, validation issues, aggregation notes, and score
// distributions for the review engine.
type PrometheusMetrics struct {
	reviews          *prometheus.CounterVec
	validationIssues *prometheus.CounterVec
	notes            *prometheus.CounterVec
	overallScore     *prometheus.HistogramVec
	agentScore       *prometheus.GaugeVec
	executionLatency *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	systemGauges     *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and registers
// all required metrics with reg. A nil reg uses the default Prometheus
// registry. Registering twice with the same registry panics, so tests
// should pass a fresh prometheus.NewRegistry().
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		// Review-specific metrics.
		reviews: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: ports.MetricReviews,
				Help: "Total number of review runs by outcome.",
			},
			[]string{"outcome"},
		),
		validationIssues: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: ports.MetricValidationIssues,
				Help: "Total number of specification validation issues by level.",
			},
			[]string{"level"},
		),
		notes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: ports.MetricNotes,
				Help: "Total number of fail-soft aggregation adjustments by kind.",
			},
			[]string{"kind"},
		),
		overallScore: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    ports.MetricOverallScore,
				Help:    "Distribution of overall review scores.",
				Buckets: prometheus.LinearBuckets(1, 1, 10),
			},
			[]string{"label"},
		),
		agentScore: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: ports.MetricAgentScore,
				Help: "Score of each agent in the most recent review.",
			},
			[]string{"agent"},
		),

		// General execution metrics.
		executionLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "review_operation_duration_seconds",
				Help:    "Execution time of review engine operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "review_operations_total",
				Help: "Total number of other counted review engine events.",
			},
			[]string{"metric"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "review_engine_state",
				Help: "Other gauge values reported by the review engine.",
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	_ map[string]string,
) {
	pm.executionLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case ports.MetricReviews:
		pm.reviews.WithLabelValues(labelOr(labels, "outcome")).Add(value)
	case ports.MetricValidationIssues:
		pm.validationIssues.WithLabelValues(labelOr(labels, "level")).Add(value)
	case ports.MetricNotes:
		pm.notes.WithLabelValues(labelOr(labels, "kind")).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case ports.MetricAgentScore:
		pm.agentScore.WithLabelValues(labelOr(labels, "agent")).Set(value)
	default:
		pm.systemGauges.WithLabelValues(metric).Set(value)
	}
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram. Unknown metrics are routed to the
// general latency histogram under their own operation name.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case ports.MetricOverallScore:
		pm.overallScore.WithLabelValues(labelOr(labels, "label")).Observe(value)
	default:
		pm.executionLatency.WithLabelValues(metric).Observe(value)
	}
}

// labelOr returns labels[key], or "unknown" when absent.
func labelOr(labels map[string]string, key string) string {
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return "unknown"
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
