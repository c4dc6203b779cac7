package domain

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Confidence is an evaluator's categorical certainty about a score.
// The zero value means the evaluator did not state a confidence.
type Confidence string

// Supported confidence levels, lowest first.
const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

var confidenceRank = map[Confidence]int{
	ConfidenceLow:    1,
	ConfidenceMedium: 2,
	ConfidenceHigh:   3,
}

// ParseConfidence parses a confidence level case-insensitively.
// An empty string yields the unset zero value.
func ParseConfidence(s string) (Confidence, error) {
	c := Confidence(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return "", nil
	}
	if _, ok := confidenceRank[c]; !ok {
		return "", fmt.Errorf("%w: confidence %q", ErrUnknownLevel, s)
	}
	return c, nil
}

// Rank orders confidence levels; unset is 0.
func (c Confidence) Rank() int { return confidenceRank[c] }

// UnmarshalYAML accepts any casing, e.g. "High".
func (c *Confidence) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseConfidence(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*c = parsed
	return nil
}

// LowerConfidence returns the more conservative of a and b. Unset values
// are ignored.
func LowerConfidence(a, b Confidence) Confidence {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	case b.Rank() < a.Rank():
		return b
	default:
		return a
	}
}

// Severity grades a qualitative finding. The zero value means unscored.
type Severity string

// Supported severities, lowest first.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// ParseSeverity parses a severity case-insensitively.
// An empty string yields the unscored zero value.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if sev == "" {
		return "", nil
	}
	if _, ok := severityRank[sev]; !ok {
		return "", fmt.Errorf("%w: severity %q", ErrUnknownLevel, s)
	}
	return sev, nil
}

// Rank orders severities; unscored is 0.
func (s Severity) Rank() int { return severityRank[s] }

// UnmarshalYAML accepts any casing, e.g. "Critical".
func (s *Severity) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseSeverity(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*s = parsed
	return nil
}

// CriterionScore is one evaluator judgment for a single criterion.
type CriterionScore struct {
	// CriterionName matches a Criterion.Name within the scored agent.
	CriterionName string `yaml:"criterion" json:"criterion"`

	// Category optionally restricts the match to one category when the same
	// criterion name appears in several categories of an agent.
	Category string `yaml:"category,omitempty" json:"category,omitempty"`

	// Score is expected within the specification's scale; out-of-range
	// values are clamped during aggregation.
	Score float64 `yaml:"score" json:"score"`

	Confidence     Confidence `yaml:"confidence,omitempty" json:"confidence,omitempty"`
	Finding        string     `yaml:"finding,omitempty" json:"finding,omitempty"`
	Recommendation string     `yaml:"recommendation,omitempty" json:"recommendation,omitempty"`
	Severity       Severity   `yaml:"severity,omitempty" json:"severity,omitempty"`
}

// HasFinding reports whether the score carries qualitative feedback.
func (s CriterionScore) HasFinding() bool {
	return strings.TrimSpace(s.Finding) != "" || strings.TrimSpace(s.Recommendation) != ""
}

// ScoreSet maps each agent type to its evaluator's criterion scores.
type ScoreSet map[AgentType][]CriterionScore
