package middleware

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-docreview/internal/domain"
	"github.com/ahrav/go-docreview/internal/ports"
)

var _ ports.ReviewObserver = (*TracingObserver)(nil)

// TracerName is the instrumentation scope used when no tracer is supplied.
const TracerName = "github.com/ahrav/go-docreview/review"

// TracingObserver implements observability for review runs using
// OpenTelemetry tracing. It opens one span per run, records validation and
// aggregation outcomes as attributes, and emits an event per fail-soft note.
//
// The span travels in the context returned by Start, so a single observer
// can serve concurrent runs.
type TracingObserver struct {
	tracer trace.Tracer
}

// NewTracingObserver creates an observer using tracer, or the global
// provider's tracer when tracer is nil.
func NewTracingObserver(tracer trace.Tracer) *TracingObserver {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return &TracingObserver{tracer: tracer}
}

// Start implements the ReviewObserver interface. It starts a span and
// records the shape of the specification.
func (o *TracingObserver) Start(ctx context.Context, spec *domain.RequirementsSpec) context.Context {
	ctx, span := o.tracer.Start(ctx, "ReviewService.Review")

	var categories, criteria int
	for _, agent := range spec.Agents {
		categories += len(agent.Categories)
		for _, c := range agent.Categories {
			criteria += len(c.Criteria)
		}
	}
	span.SetAttributes(
		attribute.Int("review.agents", len(spec.Agents)),
		attribute.Int("review.categories", categories),
		attribute.Int("review.criteria", criteria),
	)
	if spec.Metadata != nil && spec.Metadata.TemplateName != "" {
		span.SetAttributes(attribute.String("review.template", spec.Metadata.TemplateName))
	}
	return ctx
}

// Validated implements the ReviewObserver interface by recording the
// validation report counts as a span event.
func (o *TracingObserver) Validated(ctx context.Context, report domain.ValidationReport) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent("validation.completed", trace.WithAttributes(
		attribute.Int("errors", len(report.Errors)),
		attribute.Int("warnings", len(report.Warnings)),
		attribute.Int("suggestions", len(report.Suggestions)),
	))
	for _, issue := range report.Errors {
		span.AddEvent("validation.error", trace.WithAttributes(
			attribute.String("code", string(issue.Code)),
			attribute.String("message", issue.Message),
		))
	}
}

// Finish implements the ReviewObserver interface. It finalizes the span and
// handles any error that ended the run.
func (o *TracingObserver) Finish(
	ctx context.Context,
	result *domain.ReviewResult,
	elapsed time.Duration,
	err error,
) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.SetAttributes(attribute.Int64("review.elapsed_ms", elapsed.Milliseconds()))

	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrValidationFailed) {
			span.SetStatus(codes.Error, "Specification failed validation")
		} else {
			span.SetStatus(codes.Error, err.Error())
		}
		return
	}
	if result == nil {
		span.SetStatus(codes.Error, "review produced no result")
		return
	}

	span.SetAttributes(
		attribute.String("review.id", result.ID),
		attribute.String("review.label", result.Label),
		attribute.String("review.confidence", string(result.Confidence)),
		attribute.Int("review.recommendations", len(result.Recommendations)),
		attribute.Int("review.notes", len(result.Notes)),
	)
	if result.Overall != nil {
		span.SetAttributes(attribute.Float64("review.overall", *result.Overall))
	}

	for _, n := range result.Notes {
		span.AddEvent("aggregation.note", trace.WithAttributes(
			attribute.String("kind", string(n.Kind)),
			attribute.String("agent", string(n.Agent)),
			attribute.String("message", n.Message),
		))
	}

	span.SetStatus(codes.Ok, "Review completed successfully")
}
