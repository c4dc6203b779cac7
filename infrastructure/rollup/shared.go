// Package rollup provides the score aggregation and recommendation ranking
// components of the review engine.
package rollup

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ahrav/go-docreview/internal/domain"
)

// Config controls how rollups are reported. Configuration is immutable
// after the aggregator is created.
type Config struct {
	// Precision is the number of decimal places kept in reported scores.
	// Rollups are computed on unrounded values.
	Precision int `yaml:"precision" json:"precision" koanf:"precision" validate:"min=0,max=6"`

	// StrongThreshold and WeakThreshold classify categories and agents on
	// a 0-10 basis regardless of the specification's scale. A score at or
	// above StrongThreshold is strong; below WeakThreshold is weak.
	StrongThreshold float64 `yaml:"strong_threshold" json:"strong_threshold" koanf:"strong_threshold" validate:"min=0,max=10,gtefield=WeakThreshold"`
	WeakThreshold   float64 `yaml:"weak_threshold" json:"weak_threshold" koanf:"weak_threshold" validate:"min=0,max=10"`
}

// DefaultConfig returns two-decimal precision with strong/weak bands at
// 7 and 5.
func DefaultConfig() Config {
	return Config{
		Precision:       2,
		StrongThreshold: 7.0,
		WeakThreshold:   5.0,
	}
}

// ErrNilRanker is returned when an aggregator is created without a ranker.
var ErrNilRanker = errors.New("ranker cannot be nil")

// Package-level validator instance for configuration validation.
var validate = validator.New()

// humanize turns an agent type into a readable phrase.
func humanize(t domain.AgentType) string {
	return strings.ReplaceAll(string(t), "_", " ")
}

// displayName returns the agent's declared name, or a title-cased form of
// its type for custom agents without one.
func displayName(agent domain.AgentSpec) string {
	if agent.Name != "" || agent.Type.IsKnown() {
		return agent.DisplayName()
	}
	// A Caser is stateful, so each call gets its own.
	return cases.Title(language.English).String(humanize(agent.Type))
}

// tenPoint maps v from the scale onto 0-10 for band comparisons.
func tenPoint(scale domain.Scale, v float64) float64 {
	return (v - scale.Min) / (scale.Max - scale.Min) * 10
}
