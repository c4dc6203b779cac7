package domain

import (
	"time"
)

// LabelInsufficientData is the overall label when no agent produced a score.
const LabelInsufficientData = "Insufficient Data"

// CategoryResult is the rollup of one category's criterion scores.
type CategoryResult struct {
	Name string `json:"name" yaml:"name"`

	// Weight is the declared category weight (0-100 scale).
	Weight float64 `json:"weight" yaml:"weight"`

	// Score is nil when none of the category's criteria were scored or the
	// matched weights sum to zero.
	Score *float64 `json:"score" yaml:"score"`

	// Evaluated counts criteria with a matching score; Total counts the
	// criteria declared in the category.
	Evaluated int `json:"evaluated" yaml:"evaluated"`
	Total     int `json:"total" yaml:"total"`
}

// AgentResult is the rollup of one agent's category scores.
type AgentResult struct {
	Type AgentType `json:"type" yaml:"type"`
	Name string    `json:"name" yaml:"name"`

	// Score is nil when no category of the agent produced a score.
	Score *float64 `json:"score" yaml:"score"`

	// Weight is the normalized share of this agent in the overall score;
	// zero when the agent did not contribute.
	Weight float64 `json:"weight" yaml:"weight"`

	// Confidence is the lowest confidence among contributing criterion
	// scores, defaulting to medium.
	Confidence Confidence `json:"confidence" yaml:"confidence"`

	// Summary is a short coverage statement derived from the score band.
	Summary string `json:"summary" yaml:"summary"`

	Categories       []CategoryResult `json:"categories" yaml:"categories"`
	StrongCategories []string         `json:"strong_categories,omitempty" yaml:"strong_categories,omitempty"`
	WeakCategories   []string         `json:"weak_categories,omitempty" yaml:"weak_categories,omitempty"`
}

// Recommendation is a qualitative finding tagged with its source.
type Recommendation struct {
	// Rank is the 1-based position assigned by the ranker.
	Rank int `json:"rank" yaml:"rank"`

	Agent          AgentType `json:"agent" yaml:"agent"`
	Category       string    `json:"category" yaml:"category"`
	Criterion      string    `json:"criterion,omitempty" yaml:"criterion,omitempty"`
	Finding        string    `json:"finding,omitempty" yaml:"finding,omitempty"`
	Recommendation string    `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
	Severity       Severity  `json:"severity,omitempty" yaml:"severity,omitempty"`

	// CategoryWeight is the declared weight of the source category and is
	// the ranker's secondary ordering key.
	CategoryWeight float64 `json:"category_weight" yaml:"category_weight"`
}

// NoteKind classifies an aggregation note.
type NoteKind string

// Aggregation note kinds.
const (
	// NoteInputMismatch records a score that references no known criterion
	// or agent. Such scores are ignored.
	NoteInputMismatch NoteKind = "input_mismatch"
	// NoteClamped records a value that was limited to the scale bounds.
	NoteClamped NoteKind = "clamped"
	// NoteDuplicateScore records a criterion scored more than once; the last
	// score wins.
	NoteDuplicateScore NoteKind = "duplicate_score"
	// NoteInvalidScore records a NaN or infinite score that was skipped.
	NoteInvalidScore NoteKind = "invalid_score"
	// NoteWeightFallback records that equal agent weights were used because
	// every scored agent had a zero weight.
	NoteWeightFallback NoteKind = "weight_fallback"
)

// Note records a fail-soft adjustment made during aggregation.
type Note struct {
	Kind      NoteKind  `json:"kind" yaml:"kind"`
	Agent     AgentType `json:"agent,omitempty" yaml:"agent,omitempty"`
	Category  string    `json:"category,omitempty" yaml:"category,omitempty"`
	Criterion string    `json:"criterion,omitempty" yaml:"criterion,omitempty"`
	Message   string    `json:"message" yaml:"message"`
}

// ReviewResult is the engine output for one evaluation run.
type ReviewResult struct {
	// ID uniquely identifies this result (a UUID). It is assigned by the
	// review service, not by the aggregator.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	Agents []AgentResult `json:"agents" yaml:"agents"`

	// Overall is nil when no agent produced a score.
	Overall *float64 `json:"overall" yaml:"overall"`

	// Label is the qualitative band of the overall score.
	Label string `json:"label" yaml:"label"`

	// Confidence is the lowest agent confidence among contributing agents.
	Confidence Confidence `json:"confidence" yaml:"confidence"`

	Summary      string   `json:"summary" yaml:"summary"`
	StrongAgents []string `json:"strong_agents,omitempty" yaml:"strong_agents,omitempty"`
	WeakAgents   []string `json:"weak_agents,omitempty" yaml:"weak_agents,omitempty"`

	// Recommendations are ordered by the ranker.
	Recommendations []Recommendation `json:"recommendations" yaml:"recommendations"`

	// Notes records ignored input and clamped values.
	Notes []Note `json:"notes,omitempty" yaml:"notes,omitempty"`

	// Timestamp records when the result was created by the review service.
	Timestamp time.Time `json:"timestamp,omitzero" yaml:"timestamp,omitempty"`
}

// AgentResult returns the result for the given agent type.
func (r *ReviewResult) AgentResult(t AgentType) (AgentResult, bool) {
	for _, a := range r.Agents {
		if a.Type == t {
			return a, true
		}
	}
	return AgentResult{}, false
}

// NotesOfKind returns the notes with the given kind in recorded order.
func (r *ReviewResult) NotesOfKind(kind NoteKind) []Note {
	var out []Note
	for _, n := range r.Notes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}
