package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-docreview/internal/domain"
	tu "github.com/ahrav/go-docreview/internal/testutils"
)

type issueKey struct {
	level domain.IssueLevel
	code  domain.IssueCode
}

func keysOf(r domain.ValidationReport) []issueKey {
	keys := make([]issueKey, 0, len(r.Errors)+len(r.Warnings)+len(r.Suggestions))
	for _, issue := range r.All() {
		keys = append(keys, issueKey{issue.Level, issue.Code})
	}
	return keys
}

func errKey(c domain.IssueCode) issueKey  { return issueKey{domain.LevelError, c} }
func warnKey(c domain.IssueCode) issueKey { return issueKey{domain.LevelWarning, c} }
func sugKey(c domain.IssueCode) issueKey  { return issueKey{domain.LevelSuggestion, c} }

func TestSpecValidator_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *domain.RequirementsSpec)
		want   []issueKey
	}{
		{
			name:   "valid specification",
			mutate: func(*domain.RequirementsSpec) {},
			want:   []issueKey{},
		},
		{
			name: "category weights sum to 85",
			mutate: func(s *domain.RequirementsSpec) {
				s.Agents[0].Categories[1].Weight = domain.Float(25)
			},
			want: []issueKey{warnKey(domain.CodeCategoryWeightSum)},
		},
		{
			name: "category weights within tolerance",
			mutate: func(s *domain.RequirementsSpec) {
				s.Agents[0].Categories[1].Weight = domain.Float(40.5)
			},
			want: []issueKey{},
		},
		{
			name: "empty agents",
			mutate: func(s *domain.RequirementsSpec) {
				s.Agents = []domain.AgentSpec{}
			},
			want: []issueKey{
				errKey(domain.CodeNoAgents),
				sugKey(domain.CodeWeightWithoutAgent),
				sugKey(domain.CodeWeightWithoutAgent),
				sugKey(domain.CodeWeightWithoutAgent),
			},
		},
		{
			name: "missing sections",
			mutate: func(s *domain.RequirementsSpec) {
				s.Metadata = nil
				s.Scoring = nil
			},
			want: []issueKey{errKey(domain.CodeMissingSection), errKey(domain.CodeMissingSection)},
		},
		{
			name: "missing agent type",
			mutate: func(s *domain.RequirementsSpec) {
				s.Agents[1].Type = ""
			},
			want: []issueKey{errKey(domain.CodeMissingAgentType), sugKey(domain.CodeWeightWithoutAgent)},
		},
		{
			name: "agent without categories",
			mutate: func(s *domain.RequirementsSpec) {
				s.Agents[2].Categories = nil
			},
			want: []issueKey{errKey(domain.CodeAgentWithoutCategories)},
		},
		{
			name: "duplicate agent",
			mutate: func(s *domain.RequirementsSpec) {
				s.Agents = append(s.Agents, s.Agents[0])
			},
			want: []issueKey{warnKey(domain.CodeDuplicateAgent)},
		},
		{
			name: "unknown agent type",
			mutate: func(s *domain.RequirementsSpec) {
				s.Agents[2].Type = "enginering"
			},
			want: []issueKey{
				warnKey(domain.CodeAgentWithoutWeight),
				sugKey(domain.CodeUnknownAgentType),
				sugKey(domain.CodeWeightWithoutAgent),
			},
		},
		{
			name: "negative category weight",
			mutate: func(s *domain.RequirementsSpec) {
				s.Agents[0].Categories[0].Weight = domain.Float(-10)
			},
			want: []issueKey{errKey(domain.CodeNegativeWeight), warnKey(domain.CodeCategoryWeightSum)},
		},
		{
			name: "category weight above 100",
			mutate: func(s *domain.RequirementsSpec) {
				s.Agents[1].Categories[0].Weight = domain.Float(120)
			},
			want: []issueKey{warnKey(domain.CodeWeightOutOfRange), warnKey(domain.CodeCategoryWeightSum)},
		},
		{
			name: "category without criteria",
			mutate: func(s *domain.RequirementsSpec) {
				s.Agents[2].Categories[1].Criteria = nil
			},
			want: []issueKey{warnKey(domain.CodeCategoryNoCriteria)},
		},
		{
			name: "duplicate category",
			mutate: func(s *domain.RequirementsSpec) {
				s.Agents[0].Categories = append(s.Agents[0].Categories, s.Agents[0].Categories[0])
			},
			want: []issueKey{warnKey(domain.CodeDuplicateCategory)},
		},
		{
			name: "duplicate criterion",
			mutate: func(s *domain.RequirementsSpec) {
				c := &s.Agents[0].Categories[1]
				c.Criteria = append(c.Criteria, c.Criteria[0])
			},
			want: []issueKey{warnKey(domain.CodeDuplicateCriterion)},
		},
		{
			name: "zero weight criterion",
			mutate: func(s *domain.RequirementsSpec) {
				s.Agents[1].Categories[0].Criteria[0].Weight = domain.Float(0)
			},
			want: []issueKey{sugKey(domain.CodeZeroWeightCriterion)},
		},
		{
			name: "negative criterion weight",
			mutate: func(s *domain.RequirementsSpec) {
				s.Agents[1].Categories[0].Criteria[0].Weight = domain.Float(-1)
			},
			want: []issueKey{errKey(domain.CodeNegativeWeight)},
		},
		{
			name: "duplicate scoring weight",
			mutate: func(s *domain.RequirementsSpec) {
				s.Scoring.Weights.Set(domain.AgentProductManager, 0.4)
			},
			want: []issueKey{warnKey(domain.CodeDuplicateAgentWeight)},
		},
		{
			name: "negative scoring weight",
			mutate: func(s *domain.RequirementsSpec) {
				s.Scoring.Weights = domain.NewAgentWeights(
					tu.Weight(domain.AgentProductManager, -0.4),
					tu.Weight(domain.AgentDataScientist, 0.7),
					tu.Weight(domain.AgentEngineering, 0.7),
				)
			},
			want: []issueKey{errKey(domain.CodeNegativeWeight)},
		},
		{
			name: "scoring weights do not sum to one",
			mutate: func(s *domain.RequirementsSpec) {
				s.Scoring.Weights = domain.NewAgentWeights(
					tu.Weight(domain.AgentProductManager, 0.5),
					tu.Weight(domain.AgentDataScientist, 0.3),
					tu.Weight(domain.AgentEngineering, 0.1),
				)
			},
			want: []issueKey{warnKey(domain.CodeAgentWeightSum)},
		},
		{
			name: "invalid scale",
			mutate: func(s *domain.RequirementsSpec) {
				s.Scoring.Scale = "ten"
			},
			want: []issueKey{warnKey(domain.CodeInvalidScale)},
		},
		{
			name: "empty scale uses the default",
			mutate: func(s *domain.RequirementsSpec) {
				s.Scoring.Scale = ""
			},
			want: []issueKey{},
		},
		{
			name: "missing thresholds",
			mutate: func(s *domain.RequirementsSpec) {
				s.Scoring.Thresholds = nil
			},
			want: []issueKey{sugKey(domain.CodeMissingThresholds)},
		},
		{
			name: "thresholds out of order",
			mutate: func(s *domain.RequirementsSpec) {
				s.Scoring.Thresholds = &domain.Thresholds{Excellent: 5, Good: 7, Acceptable: 4, NeedsImprovement: 2}
			},
			want: []issueKey{warnKey(domain.CodeThresholdOrder)},
		},
		{
			name: "threshold at scale minimum",
			mutate: func(s *domain.RequirementsSpec) {
				s.Scoring.Thresholds = &domain.Thresholds{Excellent: 9, Good: 7, Acceptable: 5, NeedsImprovement: 0}
			},
			want: []issueKey{warnKey(domain.CodeThresholdOutOfRange)},
		},
		{
			name: "unset thresholds all at zero",
			mutate: func(s *domain.RequirementsSpec) {
				s.Scoring.Thresholds = &domain.Thresholds{Excellent: 9}
			},
			want: []issueKey{
				warnKey(domain.CodeThresholdOutOfRange),
				warnKey(domain.CodeThresholdOutOfRange),
				warnKey(domain.CodeThresholdOutOfRange),
			},
		},
		{
			name: "missing metadata fields",
			mutate: func(s *domain.RequirementsSpec) {
				s.Metadata = &domain.Metadata{Version: "1.0"}
			},
			want: []issueKey{
				sugKey(domain.CodeMissingMetadataField),
				sugKey(domain.CodeMissingMetadataField),
				sugKey(domain.CodeMissingMetadataField),
			},
		},
	}

	v := NewSpecValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := tu.LaunchSpec()
			tt.mutate(spec)

			report := v.Validate(spec)
			assert.Equal(t, tt.want, keysOf(report))
		})
	}
}

func TestSpecValidator_CategoryWeightSumMessage(t *testing.T) {
	spec := tu.LaunchSpec()
	spec.Agents[0].Categories[1].Weight = domain.Float(25)

	report := NewSpecValidator().Validate(spec)

	require.Empty(t, report.Errors)
	require.Len(t, report.Warnings, 1)
	assert.Empty(t, report.Suggestions)
	w := report.Warnings[0]
	assert.Equal(t, domain.AgentProductManager, w.Agent)
	assert.Equal(t, `Agent "product_manager" requirement weights sum to 85%, should be 100%`, w.Message)
}

func TestSpecValidator_NilSpec(t *testing.T) {
	report := NewSpecValidator().Validate(nil)

	require.Len(t, report.Errors, 3)
	for i, section := range []string{"metadata", "agents", "scoring"} {
		assert.Equal(t, domain.CodeMissingSection, report.Errors[i].Code)
		assert.Equal(t, "Missing required section: "+section, report.Errors[i].Message)
	}
}

func TestSpecValidator_Messages(t *testing.T) {
	spec := tu.LaunchSpec()
	spec.Agents[2].Type = "enginering"
	spec.Agents[1].Type = ""
	spec.Metadata.Difficulty = ""

	report := NewSpecValidator().Validate(spec)

	messages := make([]string, 0)
	for _, issue := range report.All() {
		messages = append(messages, issue.Message)
	}
	assert.Contains(t, messages, "Agent 2 missing required field: type")
	assert.Contains(t, messages,
		`Agent type "enginering" is not a built-in type; it will be evaluated as a custom perspective (did you mean "engineering"?)`)
	assert.Contains(t, messages, "Missing recommended metadata field: difficulty")
}

func TestSpecValidator_Deterministic(t *testing.T) {
	spec := tu.LaunchSpec()
	spec.Agents = append(spec.Agents, tu.Agent("security"), tu.Agent("legal", tu.Category("Terms", 40)))
	spec.Scoring.Weights.Set("compliance", 0.2)
	spec.Scoring.Thresholds = nil
	spec.Metadata = &domain.Metadata{}

	v := NewSpecValidator()
	first := v.Validate(spec)
	for range 20 {
		assert.Equal(t, first, v.Validate(spec))
	}
	assert.True(t, first.HasErrors())
}
