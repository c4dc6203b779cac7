package testutils

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-docreview/internal/domain"
)

// DefaultCoverage is the share of criteria scored in a generated set.
const DefaultCoverage = 0.85

// GenerateOptions controls synthetic score generation.
type GenerateOptions struct {
	// Count is the number of score sets to generate.
	Count int
	// Seed makes generation reproducible. Use time.Now().UnixNano() for
	// varied output.
	Seed int64
	// Coverage is the probability that a criterion receives a score.
	// Zero means DefaultCoverage.
	Coverage float64
}

// GenerateScoreSets creates evaluator output for every agent of spec.
// Each set draws a document quality and scores criteria around it, so sets
// differ in overall level while criteria within a set stay correlated.
// Low scores carry a finding whose severity grows as the score drops.
func GenerateScoreSets(spec *domain.RequirementsSpec, opts GenerateOptions) []domain.ScoreSet {
	rng := rand.New(rand.NewSource(opts.Seed))
	coverage := opts.Coverage
	if coverage <= 0 || coverage > 1 {
		coverage = DefaultCoverage
	}

	scale := domain.DefaultScale()
	if spec.Scoring != nil {
		scale = spec.Scoring.ParsedScale()
	}

	sets := make([]domain.ScoreSet, 0, opts.Count)
	for range opts.Count {
		quality := 0.3 + rng.Float64()*0.65
		set := make(domain.ScoreSet, len(spec.Agents))
		for _, agent := range spec.Agents {
			var scores []domain.CriterionScore
			for _, category := range agent.Categories {
				for _, criterion := range category.Criteria {
					if rng.Float64() >= coverage {
						continue
					}
					scores = append(scores, generateScore(rng, scale, quality, category.Name, criterion.Name))
				}
			}
			set[agent.Type] = scores
		}
		sets = append(sets, set)
	}
	return sets
}

// generateScore draws one criterion score around quality, expressed as a
// fraction of the scale.
func generateScore(rng *rand.Rand, scale domain.Scale, quality float64, category, criterion string) domain.CriterionScore {
	fraction := math.Min(1, math.Max(0, quality+rng.NormFloat64()*0.15))
	value := domain.Round(scale.Min+fraction*(scale.Max-scale.Min), 1)

	s := domain.CriterionScore{
		CriterionName: criterion,
		Category:      category,
		Score:         value,
		Confidence:    confidenceFor(rng),
	}

	var severity domain.Severity
	switch {
	case fraction < 0.2:
		severity = domain.SeverityCritical
	case fraction < 0.35:
		severity = domain.SeverityHigh
	case fraction < 0.5:
		severity = domain.SeverityMedium
	default:
		return s
	}
	topic := strings.ToLower(criterion)
	s.Severity = severity
	s.Finding = fmt.Sprintf("The document does not adequately cover %s", topic)
	s.Recommendation = fmt.Sprintf("Expand the %s section with concrete detail", topic)
	return s
}

// confidenceFor favors high confidence the way evaluators typically report it.
func confidenceFor(rng *rand.Rand) domain.Confidence {
	switch r := rng.Float64(); {
	case r < 0.5:
		return domain.ConfidenceHigh
	case r < 0.85:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

// ScoreStatistics summarizes generated score sets.
type ScoreStatistics struct {
	Sets       int
	Scores     int
	Findings   int
	BySeverity map[domain.Severity]int
	MinScore   float64
	MaxScore   float64
	MeanScore  float64
}

// ComputeScoreStatistics analyzes score sets and returns summary statistics.
func ComputeScoreStatistics(sets []domain.ScoreSet) *ScoreStatistics {
	stats := &ScoreStatistics{
		Sets:       len(sets),
		BySeverity: make(map[domain.Severity]int),
		MinScore:   math.Inf(1),
		MaxScore:   math.Inf(-1),
	}

	var total float64
	for _, set := range sets {
		for _, scores := range set {
			for _, s := range scores {
				stats.Scores++
				total += s.Score
				stats.MinScore = math.Min(stats.MinScore, s.Score)
				stats.MaxScore = math.Max(stats.MaxScore, s.Score)
				if s.Severity != "" {
					stats.Findings++
					stats.BySeverity[s.Severity]++
				}
			}
		}
	}

	if stats.Scores > 0 {
		stats.MeanScore = total / float64(stats.Scores)
	} else {
		stats.MinScore, stats.MaxScore = 0, 0
	}
	return stats
}

// SaveScoreSet writes a score set as a YAML score document.
func SaveScoreSet(set domain.ScoreSet, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write scores file: %w", err)
	}
	return nil
}
