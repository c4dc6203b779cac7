package application

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-docreview/internal/domain"
)

// scoreRecord is the on-disk form of a criterion score. Score is a pointer
// so that an omitted score is rejected instead of read as 0.
type scoreRecord struct {
	Criterion      string            `yaml:"criterion" validate:"required"`
	Category       string            `yaml:"category"`
	Score          *float64          `yaml:"score" validate:"required"`
	Confidence     domain.Confidence `yaml:"confidence"`
	Finding        string            `yaml:"finding"`
	Recommendation string            `yaml:"recommendation"`
	Severity       domain.Severity   `yaml:"severity"`
}

// ScoreLoader parses evaluator output into a domain.ScoreSet.
// The expected document is a mapping from agent type to a list of
// criterion scores; JSON documents are accepted because JSON is valid YAML:
//
//	product_manager:
//	  - criterion: Target Market Definition
//	    score: 8
//	    confidence: high
//	    finding: Segments are sized but not prioritized
//	    severity: medium
type ScoreLoader struct {
	validator *validator.Validate
}

// NewScoreLoader creates a score loader.
func NewScoreLoader() *ScoreLoader {
	return &ScoreLoader{validator: validator.New()}
}

// LoadFromFile reads and parses a score document.
func (l *ScoreLoader) LoadFromFile(path string) (domain.ScoreSet, error) {
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read scores file: %w", err)
	}
	return l.Parse(cleanPath, data)
}

// LoadFromReader reads and parses a score document from r.
func (l *ScoreLoader) LoadFromReader(source string, r io.Reader) (domain.ScoreSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return l.Parse(source, data)
}

// Parse decodes a score document. An empty document yields an empty set,
// which the aggregator reports as insufficient data. Malformed documents
// yield a *domain.StructuralError.
func (l *ScoreLoader) Parse(source string, data []byte) (domain.ScoreSet, error) {
	var raw map[string][]scoreRecord
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ScoreSet{}, nil
		}
		return nil, domain.NewStructuralError(source, "", fmt.Errorf("YAML decode failed: %w", err))
	}

	set := make(domain.ScoreSet, len(raw))
	for agent, records := range raw {
		scores := make([]domain.CriterionScore, 0, len(records))
		for i, rec := range records {
			if err := l.validator.Struct(rec); err != nil {
				return nil, domain.NewStructuralError(source, fmt.Sprintf("%s[%d]", agent, i), err)
			}
			scores = append(scores, domain.CriterionScore{
				CriterionName:  rec.Criterion,
				Category:       rec.Category,
				Score:          *rec.Score,
				Confidence:     rec.Confidence,
				Finding:        rec.Finding,
				Recommendation: rec.Recommendation,
				Severity:       rec.Severity,
			})
		}
		set[domain.AgentType(agent)] = scores
	}
	return set, nil
}
