package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ahrav/go-docreview/internal/domain"
)

// newRecordingObserver returns an observer whose spans end up in the
// returned recorder.
func newRecordingObserver(t *testing.T) (*TracingObserver, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewTracingObserver(tp.Tracer("test")), recorder
}

func tracingSpec() *domain.RequirementsSpec {
	return &domain.RequirementsSpec{
		Metadata: &domain.Metadata{TemplateName: "SaaS Product Launch"},
		Agents: []domain.AgentSpec{
			{
				Type: domain.AgentProductManager,
				Categories: []domain.Category{
					{Name: "Market", Criteria: []domain.Criterion{{Name: "Segments"}, {Name: "Sizing"}}},
				},
			},
			{
				Type: domain.AgentEngineering,
				Categories: []domain.Category{
					{Name: "Architecture", Criteria: []domain.Criterion{{Name: "Diagrams"}}},
				},
			},
		},
	}
}

func attrMap(attrs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, kv := range attrs {
		m[kv.Key] = kv.Value
	}
	return m
}

// TestTracingObserver_SuccessfulReview verifies the span carries the
// specification shape, the result, and one event per note.
func TestTracingObserver_SuccessfulReview(t *testing.T) {
	obs, recorder := newRecordingObserver(t)

	ctx := obs.Start(context.Background(), tracingSpec())
	obs.Validated(ctx, domain.ValidationReport{
		Warnings: []domain.Issue{{Level: domain.LevelWarning, Code: domain.CodeCategoryWeightSum}},
	})

	overall := 7.2
	obs.Finish(ctx, &domain.ReviewResult{
		ID:         "run-1",
		Overall:    &overall,
		Label:      "Good",
		Confidence: domain.ConfidenceMedium,
		Notes: []domain.Note{
			{Kind: domain.NoteClamped, Agent: domain.AgentEngineering, Message: "clamped"},
		},
	}, 15*time.Millisecond, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]

	assert.Equal(t, "ReviewService.Review", span.Name())
	assert.Equal(t, codes.Ok, span.Status().Code)

	attrs := attrMap(span.Attributes())
	assert.Equal(t, int64(2), attrs["review.agents"].AsInt64())
	assert.Equal(t, int64(2), attrs["review.categories"].AsInt64())
	assert.Equal(t, int64(3), attrs["review.criteria"].AsInt64())
	assert.Equal(t, "SaaS Product Launch", attrs["review.template"].AsString())
	assert.Equal(t, "Good", attrs["review.label"].AsString())
	assert.InDelta(t, 7.2, attrs["review.overall"].AsFloat64(), 1e-9)

	var names []string
	for _, e := range span.Events() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"validation.completed", "aggregation.note"}, names)
}

// TestTracingObserver_RefusedReview verifies validation failures mark the
// span as an error without result attributes.
func TestTracingObserver_RefusedReview(t *testing.T) {
	obs, recorder := newRecordingObserver(t)

	ctx := obs.Start(context.Background(), &domain.RequirementsSpec{})
	issue := domain.Issue{Level: domain.LevelError, Code: domain.CodeNoAgents, Message: "no agents"}
	obs.Validated(ctx, domain.ValidationReport{Errors: []domain.Issue{issue}})
	obs.Finish(ctx, nil, time.Millisecond, domain.NewValidationError("requirements specification", []domain.Issue{issue}))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "Specification failed validation", spans[0].Status().Description)

	_, hasLabel := attrMap(spans[0].Attributes())["review.label"]
	assert.False(t, hasLabel)
}

// TestTracingObserver_ConcurrentRuns verifies each run ends its own span.
func TestTracingObserver_ConcurrentRuns(t *testing.T) {
	obs, recorder := newRecordingObserver(t)

	ctxA := obs.Start(context.Background(), tracingSpec())
	ctxB := obs.Start(context.Background(), tracingSpec())
	obs.Finish(ctxB, nil, 0, errors.New("boom"))
	obs.Finish(ctxA, &domain.ReviewResult{Label: domain.LabelInsufficientData}, 0, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, codes.Ok, spans[1].Status().Code)
	assert.NotEqual(t, spans[0].SpanContext().SpanID(), spans[1].SpanContext().SpanID())
}
