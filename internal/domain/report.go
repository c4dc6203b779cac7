package domain

// IssueLevel classifies a validation finding.
type IssueLevel string

// Issue levels, most severe first.
const (
	// LevelError blocks aggregation.
	LevelError IssueLevel = "error"
	// LevelWarning flags likely mistakes that do not block aggregation.
	LevelWarning IssueLevel = "warning"
	// LevelSuggestion flags optional improvements.
	LevelSuggestion IssueLevel = "suggestion"
)

// IssueCode identifies the check that produced an issue.
type IssueCode string

// Issue codes emitted by the specification validator.
const (
	CodeMissingSection         IssueCode = "missing_section"
	CodeNoAgents               IssueCode = "no_agents"
	CodeMissingAgentType       IssueCode = "missing_agent_type"
	CodeAgentWithoutCategories IssueCode = "agent_without_categories"
	CodeDuplicateAgent         IssueCode = "duplicate_agent"
	CodeUnknownAgentType       IssueCode = "unknown_agent_type"
	CodeCategoryNoCriteria     IssueCode = "category_without_criteria"
	CodeDuplicateCategory      IssueCode = "duplicate_category"
	CodeDuplicateCriterion     IssueCode = "duplicate_criterion"
	CodeNegativeWeight         IssueCode = "negative_weight"
	CodeWeightOutOfRange       IssueCode = "weight_out_of_range"
	CodeZeroWeightCriterion    IssueCode = "zero_weight_criterion"
	CodeCategoryWeightSum      IssueCode = "category_weight_sum"
	CodeAgentWeightSum         IssueCode = "agent_weight_sum"
	CodeDuplicateAgentWeight   IssueCode = "duplicate_agent_weight"
	CodeWeightWithoutAgent     IssueCode = "weight_without_agent"
	CodeAgentWithoutWeight     IssueCode = "agent_without_weight"
	CodeInvalidScale           IssueCode = "invalid_scale"
	CodeMissingThresholds      IssueCode = "missing_thresholds"
	CodeThresholdOrder         IssueCode = "threshold_order"
	CodeThresholdBandMissing   IssueCode = "threshold_band_missing"
	CodeThresholdOutOfRange    IssueCode = "threshold_out_of_range"
	CodeMissingMetadataField   IssueCode = "missing_metadata_field"
)

// Issue is a single structural or numeric finding about a specification.
type Issue struct {
	Level     IssueLevel `json:"level" yaml:"level"`
	Code      IssueCode  `json:"code" yaml:"code"`
	Message   string     `json:"message" yaml:"message"`
	Agent     AgentType  `json:"agent,omitempty" yaml:"agent,omitempty"`
	Category  string     `json:"category,omitempty" yaml:"category,omitempty"`
	Criterion string     `json:"criterion,omitempty" yaml:"criterion,omitempty"`
}

// ValidationReport is the classified result of validating a specification.
// Issues within each list appear in the order the checks ran.
type ValidationReport struct {
	Errors      []Issue `json:"errors" yaml:"errors"`
	Warnings    []Issue `json:"warnings" yaml:"warnings"`
	Suggestions []Issue `json:"suggestions" yaml:"suggestions"`
}

// Add appends the issue to the list matching its level.
func (r *ValidationReport) Add(issue Issue) {
	switch issue.Level {
	case LevelError:
		r.Errors = append(r.Errors, issue)
	case LevelWarning:
		r.Warnings = append(r.Warnings, issue)
	default:
		issue.Level = LevelSuggestion
		r.Suggestions = append(r.Suggestions, issue)
	}
}

// HasErrors reports whether aggregation must be refused.
func (r ValidationReport) HasErrors() bool { return len(r.Errors) > 0 }

// Empty reports whether no issue of any level was found.
func (r ValidationReport) Empty() bool {
	return len(r.Errors) == 0 && len(r.Warnings) == 0 && len(r.Suggestions) == 0
}

// All returns every issue, errors first, then warnings, then suggestions.
func (r ValidationReport) All() []Issue {
	all := make([]Issue, 0, len(r.Errors)+len(r.Warnings)+len(r.Suggestions))
	all = append(all, r.Errors...)
	all = append(all, r.Warnings...)
	return append(all, r.Suggestions...)
}
