// Package testutils provides specification and score fixtures and fake
// collaborators shared by the engine's tests.
package testutils

import (
	"github.com/ahrav/go-docreview/internal/domain"
)

// Criteria builds unweighted criteria from names.
func Criteria(names ...string) []domain.Criterion {
	out := make([]domain.Criterion, len(names))
	for i, n := range names {
		out[i] = domain.Criterion{Name: n, Description: n + " is covered"}
	}
	return out
}

// WeightedCriterion builds a criterion with an explicit weight.
func WeightedCriterion(name string, weight float64) domain.Criterion {
	return domain.Criterion{Name: name, Weight: domain.Float(weight)}
}

// Category builds a category with the given percentage weight.
func Category(name string, weight float64, criteria ...domain.Criterion) domain.Category {
	return domain.Category{Name: name, Weight: domain.Float(weight), Criteria: criteria}
}

// Agent builds an agent specification.
func Agent(t domain.AgentType, categories ...domain.Category) domain.AgentSpec {
	return domain.AgentSpec{Type: t, Categories: categories}
}

// Weight builds one scoring weight entry.
func Weight(t domain.AgentType, w float64) domain.AgentWeight {
	return domain.AgentWeight{Type: t, Weight: w}
}

// Scoring builds a 0-10 scoring configuration with default thresholds.
func Scoring(weights ...domain.AgentWeight) *domain.ScoringConfig {
	th := domain.DefaultThresholds()
	return &domain.ScoringConfig{
		Scale:      "0-10",
		Weights:    domain.NewAgentWeights(weights...),
		Thresholds: &th,
	}
}

// Metadata returns metadata with every recommended field set.
func Metadata() *domain.Metadata {
	return &domain.Metadata{
		Version:      "1.0",
		Description:  "Launch review fixture",
		TemplateName: "Fixture",
		Difficulty:   "intermediate",
		Industry:     "saas",
		DocumentType: "Product Launch Document",
	}
}

// Spec assembles a specification with complete metadata.
func Spec(scoring *domain.ScoringConfig, agents ...domain.AgentSpec) *domain.RequirementsSpec {
	return &domain.RequirementsSpec{Metadata: Metadata(), Agents: agents, Scoring: scoring}
}

// LaunchSpec returns a valid three-agent specification that produces no
// validation issues. Weights are 0.4/0.3/0.3 and every agent's category
// weights sum to 100.
func LaunchSpec() *domain.RequirementsSpec {
	return Spec(
		Scoring(
			Weight(domain.AgentProductManager, 0.4),
			Weight(domain.AgentDataScientist, 0.3),
			Weight(domain.AgentEngineering, 0.3),
		),
		Agent(domain.AgentProductManager,
			Category("Market Analysis", 60, Criteria("Target Market", "Competitive Landscape")...),
			Category("Go-to-Market", 40, Criteria("Pricing", "Launch Channels")...),
		),
		Agent(domain.AgentDataScientist,
			Category("Success Metrics", 100, Criteria("North Star Metric", "Experiment Design")...),
		),
		Agent(domain.AgentEngineering,
			Category("Architecture", 50, Criteria("Scalability", "Security")...),
			Category("Operations", 50, Criteria("Monitoring", "Rollback Plan")...),
		),
	)
}

// Score builds a criterion score with high confidence.
func Score(criterion string, score float64) domain.CriterionScore {
	return domain.CriterionScore{CriterionName: criterion, Score: score, Confidence: domain.ConfidenceHigh}
}

// Finding builds a scored criterion carrying a finding.
func Finding(criterion string, score float64, severity domain.Severity, finding string) domain.CriterionScore {
	s := Score(criterion, score)
	s.Severity = severity
	s.Finding = finding
	s.Recommendation = "Address: " + finding
	return s
}

// LaunchScores scores every criterion of LaunchSpec. Agent scores are
// 7.2 for product_manager, 6 for data_scientist, and 8 for engineering.
func LaunchScores() domain.ScoreSet {
	return domain.ScoreSet{
		domain.AgentProductManager: {
			Score("Target Market", 8),
			Score("Competitive Landscape", 8),
			Finding("Pricing", 6, domain.SeverityHigh, "Pricing tiers are undefined"),
			Score("Launch Channels", 6),
		},
		domain.AgentDataScientist: {
			Score("North Star Metric", 7),
			Finding("Experiment Design", 5, domain.SeverityMedium, "No holdout group"),
		},
		domain.AgentEngineering: {
			Score("Scalability", 8),
			Score("Security", 8),
			Score("Monitoring", 9),
			Finding("Rollback Plan", 7, domain.SeverityCritical, "Rollback is manual"),
		},
	}
}
