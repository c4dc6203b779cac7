// Package application provides the core business logic and orchestration for
// the review engine: loading, validating, and reviewing requirements
// specifications.
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-docreview/infrastructure/rollup"
	"github.com/ahrav/go-docreview/internal/domain"
	"github.com/ahrav/go-docreview/internal/ports"
)

// ErrNilSpec is returned when a review is requested without a specification.
var ErrNilSpec = errors.New("requirements specification cannot be nil")

// reviewEntity names the refused entity in validation errors.
const reviewEntity = "requirements specification"

// Review outcome labels recorded with ports.MetricReviews.
const (
	outcomeCompleted = "completed"
	outcomeRefused   = "refused"
	outcomeFailed    = "failed"
)

// ReviewService runs the validate-then-aggregate pipeline for one
// specification and one or more score sets.
//
// The service owns no mutable state after construction. Each call builds
// its own accumulators inside the aggregator, so Review and ReviewBatch are
// safe for concurrent use.
type ReviewService struct {
	config     ReviewConfig
	validator  ports.SpecValidator
	aggregator ports.Aggregator
	metrics    ports.MetricsCollector
	observer   ports.ReviewObserver
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

// ReviewOption configures optional collaborators of a ReviewService.
type ReviewOption func(*ReviewService)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) ReviewOption {
	return func(s *ReviewService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector. The default records nothing.
func WithMetrics(metrics ports.MetricsCollector) ReviewOption {
	return func(s *ReviewService) { s.metrics = metrics }
}

// WithObserver sets the lifecycle observer, typically a tracing observer.
func WithObserver(observer ports.ReviewObserver) ReviewOption {
	return func(s *ReviewService) {
		if observer != nil {
			s.observer = observer
		}
	}
}

// WithClock overrides the time source used for timestamps and latency.
func WithClock(now func() time.Time) ReviewOption {
	return func(s *ReviewService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the generator of ReviewResult IDs.
func WithIDGenerator(newID func() string) ReviewOption {
	return func(s *ReviewService) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewReviewService creates a review service from explicit collaborators.
// Returns an error if validator or aggregator is nil or the configuration
// is out of range.
func NewReviewService(
	config ReviewConfig,
	validator ports.SpecValidator,
	aggregator ports.Aggregator,
	opts ...ReviewOption,
) (*ReviewService, error) {
	if validator == nil {
		return nil, fmt.Errorf("%w: validator cannot be nil", domain.ErrInvalidConfiguration)
	}
	if aggregator == nil {
		return nil, fmt.Errorf("%w: aggregator cannot be nil", domain.ErrInvalidConfiguration)
	}
	if err := newEngineValidator().Struct(config); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
	}

	s := &ReviewService{
		config:     config,
		validator:  validator,
		aggregator: aggregator,
		observer:   nopObserver{},
		logger:     zap.NewNop(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewReviewServiceFromConfig wires the default validator, a weighted
// aggregator configured by cfg.Rollup, and a severity ranker.
func NewReviewServiceFromConfig(cfg EngineConfig, opts ...ReviewOption) (*ReviewService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	aggregator, err := rollup.NewWeightedAggregator(cfg.Rollup, rollup.NewSeverityRanker())
	if err != nil {
		return nil, fmt.Errorf("failed to create aggregator: %w", err)
	}
	return NewReviewService(cfg.Review, NewSpecValidator(), aggregator, opts...)
}

// Validate checks spec and records the outcome. It never fails; a nil
// specification is reported as missing every section.
func (s *ReviewService) Validate(ctx context.Context, spec *domain.RequirementsSpec) domain.ValidationReport {
	start := s.now()
	if spec == nil {
		spec = &domain.RequirementsSpec{}
	}
	report := s.validator.Validate(spec)
	s.recordReport(ctx, report)
	s.recordLatency(ports.OperationValidate, start)
	return report
}

// Review validates spec and, when the report has no errors, aggregates
// scores into a result stamped with a fresh ID and timestamp.
//
// When the report contains errors the run is refused: the result is nil
// and the error is a *domain.ValidationError wrapping
// domain.ErrValidationFailed. The report is returned in every case except
// context cancellation before validation.
func (s *ReviewService) Review(
	ctx context.Context,
	spec *domain.RequirementsSpec,
	scores domain.ScoreSet,
) (*domain.ReviewResult, domain.ValidationReport, error) {
	if spec == nil {
		return nil, domain.ValidationReport{}, ErrNilSpec
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.ValidationReport{}, err
	}
	return s.review(ctx, spec, scores, nil)
}

// review runs one validate-then-aggregate pass. A nil validated report
// means spec is validated and its issues recorded here; a batch passes the
// report it already recorded so issues are counted once per batch.
func (s *ReviewService) review(
	ctx context.Context,
	spec *domain.RequirementsSpec,
	scores domain.ScoreSet,
	validated *domain.ValidationReport,
) (*domain.ReviewResult, domain.ValidationReport, error) {
	start := s.now()
	ctx = s.observer.Start(ctx, spec)

	var report domain.ValidationReport
	if validated != nil {
		report = *validated
	} else {
		report = s.validator.Validate(spec)
	}
	s.observer.Validated(ctx, report)
	if validated == nil {
		s.recordReport(ctx, report)
	}

	if report.HasErrors() && s.config.RefuseOnErrors {
		err := domain.NewValidationError(reviewEntity, report.Errors)
		s.finish(ctx, nil, start, err)
		return nil, report, err
	}

	result := s.aggregator.Aggregate(spec, scores)
	if result == nil {
		err := errors.New("aggregator returned no result")
		s.finish(ctx, nil, start, err)
		return nil, report, err
	}
	result.ID = s.newID()
	result.Timestamp = s.now().UTC()

	s.recordResult(ctx, result)
	s.finish(ctx, result, start, nil)
	return result, report, nil
}

// ReviewBatch reviews several score sets against one specification with at
// most ReviewConfig.BatchConcurrency runs in flight. Results keep the order
// of sets.
//
// The specification is validated once up front and its issues are recorded
// once; a refused specification fails the whole batch without aggregating
// anything. The first failing run cancels the rest.
func (s *ReviewService) ReviewBatch(
	ctx context.Context,
	spec *domain.RequirementsSpec,
	sets []domain.ScoreSet,
) ([]*domain.ReviewResult, domain.ValidationReport, error) {
	if spec == nil {
		return nil, domain.ValidationReport{}, ErrNilSpec
	}
	start := s.now()

	report := s.Validate(ctx, spec)
	if report.HasErrors() && s.config.RefuseOnErrors {
		s.recordOutcome(outcomeRefused)
		return nil, report, domain.NewValidationError(reviewEntity, report.Errors)
	}

	results := make([]*domain.ReviewResult, len(sets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.BatchConcurrency)

	for i, set := range sets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("score set %d: %w", i, err)
			}
			result, _, err := s.review(gctx, spec, set, &report)
			if err != nil {
				return fmt.Errorf("score set %d: %w", i, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, report, err
	}

	s.recordLatency(ports.OperationBatch, start)
	s.logger.Info("review batch completed",
		zap.Int("runs", len(sets)),
		zap.Duration("elapsed", s.now().Sub(start)),
	)
	return results, report, nil
}

// finish notifies the observer and records the outcome of one run.
func (s *ReviewService) finish(ctx context.Context, result *domain.ReviewResult, start time.Time, err error) {
	elapsed := s.now().Sub(start)
	s.observer.Finish(ctx, result, elapsed, err)
	s.recordLatency(ports.OperationReview, start)

	switch {
	case err == nil:
		s.recordOutcome(outcomeCompleted)
		s.logger.Info("review completed",
			zap.String("id", result.ID),
			zap.Stringp("overall", formatScore(result.Overall)),
			zap.String("label", result.Label),
			zap.String("confidence", string(result.Confidence)),
			zap.Int("recommendations", len(result.Recommendations)),
			zap.Int("notes", len(result.Notes)),
			zap.Duration("elapsed", elapsed),
		)
	case errors.Is(err, domain.ErrValidationFailed):
		s.recordOutcome(outcomeRefused)
		s.logger.Warn("review refused", zap.Error(err))
	default:
		s.recordOutcome(outcomeFailed)
		s.logger.Error("review failed", zap.Error(err))
	}
}

// recordReport logs and counts validation issues.
func (s *ReviewService) recordReport(_ context.Context, report domain.ValidationReport) {
	for _, issue := range report.All() {
		fields := []zap.Field{
			zap.String("code", string(issue.Code)),
			zap.String("message", issue.Message),
		}
		if issue.Agent != "" {
			fields = append(fields, zap.String("agent", string(issue.Agent)))
		}
		switch issue.Level {
		case domain.LevelError:
			s.logger.Warn("specification error", fields...)
		case domain.LevelWarning:
			s.logger.Info("specification warning", fields...)
		default:
			s.logger.Debug("specification suggestion", fields...)
		}
	}

	if s.metrics == nil {
		return
	}
	counts := map[domain.IssueLevel]int{
		domain.LevelError:      len(report.Errors),
		domain.LevelWarning:    len(report.Warnings),
		domain.LevelSuggestion: len(report.Suggestions),
	}
	for level, n := range counts {
		if n > 0 {
			s.metrics.RecordCounter(ports.MetricValidationIssues, float64(n),
				map[string]string{"level": string(level)})
		}
	}
}

// recordResult logs notes and records score metrics.
func (s *ReviewService) recordResult(_ context.Context, result *domain.ReviewResult) {
	for _, n := range result.Notes {
		s.logger.Debug("aggregation note",
			zap.String("kind", string(n.Kind)),
			zap.String("agent", string(n.Agent)),
			zap.String("message", n.Message),
		)
	}

	if s.metrics == nil {
		return
	}
	for _, n := range result.Notes {
		s.metrics.RecordCounter(ports.MetricNotes, 1, map[string]string{"kind": string(n.Kind)})
	}
	for _, a := range result.Agents {
		if a.Score != nil {
			s.metrics.RecordGauge(ports.MetricAgentScore, *a.Score, map[string]string{"agent": string(a.Type)})
		}
	}
	if result.Overall != nil {
		s.metrics.RecordHistogram(ports.MetricOverallScore, *result.Overall, map[string]string{"label": result.Label})
	}
}

func (s *ReviewService) recordOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordCounter(ports.MetricReviews, 1, map[string]string{"outcome": outcome})
	}
}

func (s *ReviewService) recordLatency(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordLatency(operation, s.now().Sub(start), nil)
	}
}

// formatScore renders an optional score for logs.
func formatScore(v *float64) *string {
	if v == nil {
		return nil
	}
	s := fmt.Sprintf("%g", *v)
	return &s
}

// nopObserver is the default ReviewObserver.
type nopObserver struct{}

func (nopObserver) Start(ctx context.Context, _ *domain.RequirementsSpec) context.Context { return ctx }
func (nopObserver) Validated(context.Context, domain.ValidationReport) {}
func (nopObserver) Finish(context.Context, *domain.ReviewResult, time.Duration, error) {}
