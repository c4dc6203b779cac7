package application

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/agnivade/levenshtein"

	"github.com/ahrav/go-docreview/internal/domain"
	"github.com/ahrav/go-docreview/internal/ports"
)

// Verify interface compliance at compile time.
var _ ports.SpecValidator = (*SpecValidator)(nil)

// Rounding-tolerant bounds for weight sums.
const (
	categoryWeightTarget    = 100.0
	categoryWeightTolerance = 1.0
	agentWeightTarget       = 1.0
	agentWeightTolerance    = 0.01

	// maxSuggestionDistance bounds the edit distance for "did you mean"
	// hints on unknown agent types.
	maxSuggestionDistance = 3
)

// recommendedMetadata lists metadata fields whose absence is suggested.
var recommendedMetadata = []string{"version", "description", "template_name", "difficulty"}

// SpecValidator checks a RequirementsSpec for structural completeness and
// numeric consistency and classifies each finding as an error, warning,
// or suggestion.
// SpecValidator never evaluates document content and never fails: every
// semantic problem is reported, not returned.
// SpecValidator is stateless and safe for concurrent use.
type SpecValidator struct{}

// NewSpecValidator creates a specification validator.
func NewSpecValidator() *SpecValidator { return &SpecValidator{} }

// Validate runs every check in a fixed order so that the same
// specification always yields the same issues in the same order.
// Only issues at LevelError block aggregation.
func (v *SpecValidator) Validate(spec *domain.RequirementsSpec) domain.ValidationReport {
	var report domain.ValidationReport
	if spec == nil {
		for _, section := range []string{"metadata", "agents", "scoring"} {
			report.Add(missingSection(section))
		}
		return report
	}

	if spec.Metadata == nil {
		report.Add(missingSection("metadata"))
	}
	if spec.Agents == nil {
		report.Add(missingSection("agents"))
	}
	if spec.Scoring == nil {
		report.Add(missingSection("scoring"))
	}

	if spec.Agents != nil && len(spec.Agents) == 0 {
		report.Add(domain.Issue{
			Level:   domain.LevelError,
			Code:    domain.CodeNoAgents,
			Message: "Agents section must be a non-empty list",
		})
	}

	seenAgents := make(map[domain.AgentType]struct{}, len(spec.Agents))
	for i, agent := range spec.Agents {
		v.validateAgent(&report, i, agent, seenAgents)
	}

	if spec.Scoring != nil {
		v.validateScoring(&report, spec)
	}

	if spec.Metadata != nil {
		validateMetadata(&report, spec.Metadata)
	}

	return report
}

// validateAgent checks one agent specification and its categories.
func (v *SpecValidator) validateAgent(
	report *domain.ValidationReport,
	index int,
	agent domain.AgentSpec,
	seen map[domain.AgentType]struct{},
) {
	label := agentLabel(index, agent)

	switch {
	case agent.Type == "":
		report.Add(domain.Issue{
			Level:   domain.LevelError,
			Code:    domain.CodeMissingAgentType,
			Message: fmt.Sprintf("%s missing required field: type", label),
		})
	default:
		if _, dup := seen[agent.Type]; dup {
			report.Add(domain.Issue{
				Level: domain.LevelWarning,
				Code:  domain.CodeDuplicateAgent,
				Message: fmt.Sprintf("Agent type %q is declared more than once; the last declaration is used",
					agent.Type),
				Agent: agent.Type,
			})
		}
		seen[agent.Type] = struct{}{}

		if !agent.Type.IsKnown() {
			msg := fmt.Sprintf("Agent type %q is not a built-in type; it will be evaluated as a custom perspective",
				agent.Type)
			if hint, ok := closestAgentType(agent.Type); ok {
				msg += fmt.Sprintf(" (did you mean %q?)", hint)
			}
			report.Add(domain.Issue{
				Level:   domain.LevelSuggestion,
				Code:    domain.CodeUnknownAgentType,
				Message: msg,
				Agent:   agent.Type,
			})
		}
	}

	if len(agent.Categories) == 0 {
		report.Add(domain.Issue{
			Level:   domain.LevelError,
			Code:    domain.CodeAgentWithoutCategories,
			Message: fmt.Sprintf("%s has no requirement categories", label),
			Agent:   agent.Type,
		})
		return
	}

	effective := domain.NewOrderedMap[string, domain.Category](len(agent.Categories))
	for _, category := range agent.Categories {
		if effective.Set(category.Name, category) {
			report.Add(domain.Issue{
				Level: domain.LevelWarning,
				Code:  domain.CodeDuplicateCategory,
				Message: fmt.Sprintf("%s declares category %q more than once; the last declaration is used",
					label, category.Name),
				Agent:    agent.Type,
				Category: category.Name,
			})
		}
		validateCategory(report, label, agent.Type, category)
	}

	var sum float64
	for _, category := range effective.Values() {
		sum += category.WeightValue()
	}
	if math.Abs(sum-categoryWeightTarget) > categoryWeightTolerance {
		report.Add(domain.Issue{
			Level: domain.LevelWarning,
			Code:  domain.CodeCategoryWeightSum,
			Message: fmt.Sprintf("%s requirement weights sum to %s%%, should be 100%%",
				label, formatNumber(sum)),
			Agent: agent.Type,
		})
	}
}

// validateCategory checks one category's weight and criteria.
func validateCategory(report *domain.ValidationReport, label string, agentType domain.AgentType, category domain.Category) {
	weight := category.WeightValue()
	switch {
	case weight < 0:
		report.Add(domain.Issue{
			Level: domain.LevelError,
			Code:  domain.CodeNegativeWeight,
			Message: fmt.Sprintf("%s category %q has negative weight %s",
				label, category.Name, formatNumber(weight)),
			Agent:    agentType,
			Category: category.Name,
		})
	case weight > categoryWeightTarget:
		report.Add(domain.Issue{
			Level: domain.LevelWarning,
			Code:  domain.CodeWeightOutOfRange,
			Message: fmt.Sprintf("%s category %q has weight %s%%, above 100%%",
				label, category.Name, formatNumber(weight)),
			Agent:    agentType,
			Category: category.Name,
		})
	}

	if len(category.Criteria) == 0 {
		report.Add(domain.Issue{
			Level:    domain.LevelWarning,
			Code:     domain.CodeCategoryNoCriteria,
			Message:  fmt.Sprintf("%s category %q has no criteria", label, category.Name),
			Agent:    agentType,
			Category: category.Name,
		})
		return
	}

	seen := make(map[string]struct{}, len(category.Criteria))
	for _, criterion := range category.Criteria {
		if _, dup := seen[criterion.Name]; dup {
			report.Add(domain.Issue{
				Level: domain.LevelWarning,
				Code:  domain.CodeDuplicateCriterion,
				Message: fmt.Sprintf("%s category %q declares criterion %q more than once; the last declaration is used",
					label, category.Name, criterion.Name),
				Agent:     agentType,
				Category:  category.Name,
				Criterion: criterion.Name,
			})
		}
		seen[criterion.Name] = struct{}{}

		w := criterion.WeightValue()
		switch {
		case w < 0:
			report.Add(domain.Issue{
				Level: domain.LevelError,
				Code:  domain.CodeNegativeWeight,
				Message: fmt.Sprintf("%s criterion %q in category %q has negative weight %s",
					label, criterion.Name, category.Name, formatNumber(w)),
				Agent:     agentType,
				Category:  category.Name,
				Criterion: criterion.Name,
			})
		case w == 0:
			report.Add(domain.Issue{
				Level: domain.LevelSuggestion,
				Code:  domain.CodeZeroWeightCriterion,
				Message: fmt.Sprintf("%s criterion %q in category %q has zero weight and can never influence scoring; remove or reweight it",
					label, criterion.Name, category.Name),
				Agent:     agentType,
				Category:  category.Name,
				Criterion: criterion.Name,
			})
		}
	}
}

// validateScoring checks agent weights, the scale, and thresholds.
func (v *SpecValidator) validateScoring(report *domain.ValidationReport, spec *domain.RequirementsSpec) {
	scoring := spec.Scoring

	for _, dup := range scoring.Weights.Duplicates() {
		report.Add(domain.Issue{
			Level:   domain.LevelWarning,
			Code:    domain.CodeDuplicateAgentWeight,
			Message: fmt.Sprintf("Scoring weight for %q is set more than once; the last value is used", dup),
			Agent:   dup,
		})
	}

	for _, entry := range scoring.Weights.Entries() {
		if entry.Weight < 0 {
			report.Add(domain.Issue{
				Level: domain.LevelError,
				Code:  domain.CodeNegativeWeight,
				Message: fmt.Sprintf("Scoring weight for %q is negative (%s)",
					entry.Type, formatNumber(entry.Weight)),
				Agent: entry.Type,
			})
		}
	}

	sum := scoring.Weights.Sum()
	if math.Abs(sum-agentWeightTarget) > agentWeightTolerance {
		report.Add(domain.Issue{
			Level:   domain.LevelWarning,
			Code:    domain.CodeAgentWeightSum,
			Message: fmt.Sprintf("Agent scoring weights sum to %.2f, should be 1.0", sum),
		})
	}

	if spec.Agents != nil {
		declared := make(map[domain.AgentType]struct{}, len(spec.Agents))
		for _, t := range spec.AgentTypes() {
			declared[t] = struct{}{}
		}
		for _, entry := range scoring.Weights.Entries() {
			if _, ok := declared[entry.Type]; !ok {
				report.Add(domain.Issue{
					Level: domain.LevelSuggestion,
					Code:  domain.CodeWeightWithoutAgent,
					Message: fmt.Sprintf("Scoring weight for %q has no matching agent and is ignored",
						entry.Type),
					Agent: entry.Type,
				})
			}
		}
		for _, t := range spec.AgentTypes() {
			if t == "" {
				continue
			}
			if _, ok := scoring.Weights.Get(t); !ok {
				report.Add(domain.Issue{
					Level: domain.LevelWarning,
					Code:  domain.CodeAgentWithoutWeight,
					Message: fmt.Sprintf("Agent %q has no scoring weight and will not contribute to the overall score",
						t),
					Agent: t,
				})
			}
		}
	}

	if scoring.Scale != "" {
		if _, err := domain.ParseScale(scoring.Scale); err != nil {
			report.Add(domain.Issue{
				Level: domain.LevelWarning,
				Code:  domain.CodeInvalidScale,
				Message: fmt.Sprintf("Scoring scale %q is not of the form lo-hi; %s is used",
					scoring.Scale, domain.DefaultScale()),
			})
		}
	}

	if scoring.Thresholds == nil {
		report.Add(domain.Issue{
			Level:   domain.LevelSuggestion,
			Code:    domain.CodeMissingThresholds,
			Message: "Consider adding scoring thresholds for better evaluation",
		})
		return
	}
	validateThresholds(report, *scoring.Thresholds, scoring.ParsedScale())
}

// validateThresholds checks each band of a thresholds block and their order.
func validateThresholds(report *domain.ValidationReport, th domain.Thresholds, scale domain.Scale) {
	missing := th.MissingBands()
	for _, band := range missing {
		v, _ := th.Band(band)
		report.Add(domain.Issue{
			Level:   domain.LevelWarning,
			Code:    domain.CodeThresholdBandMissing,
			Message: fmt.Sprintf("Scoring threshold %q is not set; the default %g is used", band, v),
		})
	}
	for _, band := range domain.ThresholdBands {
		if slices.Contains(missing, band) {
			continue
		}
		if v, _ := th.Band(band); v <= scale.Min {
			report.Add(domain.Issue{
				Level: domain.LevelWarning,
				Code:  domain.CodeThresholdOutOfRange,
				Message: fmt.Sprintf("Scoring threshold %q is %g, at or below the scale minimum %g; every score reaches it",
					band, v, scale.Min),
			})
		}
	}
	if !th.Descending() {
		report.Add(domain.Issue{
			Level:   domain.LevelWarning,
			Code:    domain.CodeThresholdOrder,
			Message: "Scoring thresholds should descend: excellent >= good >= acceptable >= needs_improvement",
		})
	}
}

// validateMetadata suggests recommended metadata fields that are absent.
func validateMetadata(report *domain.ValidationReport, md *domain.Metadata) {
	present := map[string]bool{
		"version":       md.Version != "",
		"description":   md.Description != "",
		"template_name": md.TemplateName != "",
		"difficulty":    md.Difficulty != "",
	}
	for _, field := range recommendedMetadata {
		if !present[field] {
			report.Add(domain.Issue{
				Level:   domain.LevelSuggestion,
				Code:    domain.CodeMissingMetadataField,
				Message: fmt.Sprintf("Missing recommended metadata field: %s", field),
			})
		}
	}
}

func missingSection(section string) domain.Issue {
	return domain.Issue{
		Level:   domain.LevelError,
		Code:    domain.CodeMissingSection,
		Message: fmt.Sprintf("Missing required section: %s", section),
	}
}

// agentLabel names an agent by type, or by position when the type is empty.
func agentLabel(index int, agent domain.AgentSpec) string {
	if agent.Type == "" {
		return fmt.Sprintf("Agent %d", index+1)
	}
	return fmt.Sprintf("Agent %q", agent.Type)
}

// closestAgentType returns the built-in type nearest to t by edit distance.
func closestAgentType(t domain.AgentType) (domain.AgentType, bool) {
	best, bestDist := domain.AgentType(""), maxSuggestionDistance+1
	for _, known := range domain.KnownAgentTypeNames() {
		if d := levenshtein.ComputeDistance(string(t), string(known)); d < bestDist {
			best, bestDist = known, d
		}
	}
	return best, best != ""
}

// formatNumber prints weights without float noise, so 85 renders as "85".
func formatNumber(v float64) string {
	return strconv.FormatFloat(domain.Round(v, 4), 'f', -1, 64)
}
