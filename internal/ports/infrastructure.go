package ports

import (
	"context"
	"time"

	"github.com/ahrav/go-docreview/internal/domain"
)

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus,
// OpenTelemetry, or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like validation issues, ignored
	// scores, refused reviews, etc.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	// This is useful for tracking distributions like overall scores.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// ReviewObserver receives lifecycle callbacks around a review run.
// Implementations typically open a trace span in Start and close it in
// Finish.
type ReviewObserver interface {
	// Start is called before validation. The returned context is used for
	// the remainder of the run.
	Start(ctx context.Context, spec *domain.RequirementsSpec) context.Context

	// Validated is called once the validation report is available.
	Validated(ctx context.Context, report domain.ValidationReport)

	// Finish is called exactly once with the result (nil on failure) and
	// the error that ended the run, if any.
	Finish(ctx context.Context, result *domain.ReviewResult, elapsed time.Duration, err error)
}

// Metric names emitted by the review service.
const (
	// MetricReviews counts review runs by outcome label
	// (completed, refused, failed).
	MetricReviews = "reviews_total"
	// MetricValidationIssues counts validation issues by level label.
	MetricValidationIssues = "validation_issues_total"
	// MetricNotes counts aggregation notes by kind label.
	MetricNotes = "aggregation_notes_total"
	// MetricOverallScore observes overall scores by label.
	MetricOverallScore = "review_overall_score"
	// MetricAgentScore holds the latest score of each agent.
	MetricAgentScore = "review_agent_score"
)

// Operation names passed to RecordLatency.
const (
	OperationValidate = "validate"
	OperationReview   = "review"
	OperationBatch    = "review_batch"
)
