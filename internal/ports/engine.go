// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"github.com/ahrav/go-docreview/internal/domain"
)

// SpecValidator checks a requirements specification for structural and
// numeric consistency.
type SpecValidator interface {
	// Validate always returns a report; semantic problems are never
	// returned as errors. The same specification must always yield the same
	// issues in the same order.
	Validate(spec *domain.RequirementsSpec) domain.ValidationReport
}

// Aggregator rolls criterion scores up through categories and agents into
// an overall result.
//
// Callers must validate the specification first and must not call
// Aggregate when the report contains errors. Implementations must be pure:
// identical inputs yield identical results, and neither the specification
// nor the scores are modified.
type Aggregator interface {
	// Aggregate never fails for missing or extra data. Criteria without a
	// score are excluded from denominators, scores without a matching
	// criterion are recorded as notes, and an empty score set yields a
	// result with nil scores labeled as insufficient data.
	Aggregate(spec *domain.RequirementsSpec, scores domain.ScoreSet) *domain.ReviewResult
}

// Ranker orders recommendations for presentation.
type Ranker interface {
	// Rank returns a new slice ordered by severity, then category weight,
	// then original position. It performs no filtering.
	Rank(findings []domain.Recommendation) []domain.Recommendation
}

// TemplateFilter narrows a template listing. Empty fields match anything;
// comparisons are case-insensitive.
type TemplateFilter struct {
	Industry     string
	Difficulty   string
	DocumentType string
}

// TemplateMeta describes a catalog entry without its full specification.
type TemplateMeta struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Industry     string `json:"industry"`
	Difficulty   string `json:"difficulty"`
	DocumentType string `json:"document_type"`
}

// AgentPreview summarizes one agent of a template.
type AgentPreview struct {
	Type       domain.AgentType  `json:"type"`
	Name       string            `json:"name"`
	Weight     float64           `json:"weight"`
	Categories []CategoryPreview `json:"categories"`
}

// CategoryPreview summarizes one category of a template.
type CategoryPreview struct {
	Name          string  `json:"name"`
	Weight        float64 `json:"weight"`
	CriteriaCount int     `json:"criteria_count"`
}

// TemplatePreview summarizes a template's shape.
type TemplatePreview struct {
	Meta          TemplateMeta   `json:"meta"`
	AgentCount    int            `json:"agent_count"`
	CategoryCount int            `json:"category_count"`
	CriteriaCount int            `json:"criteria_count"`
	Agents        []AgentPreview `json:"agents"`
}

// TemplateCatalog is a read-only catalog of pre-built specifications.
// Implementations must be safe for concurrent use.
type TemplateCatalog interface {
	// List returns the templates matching the filter in catalog order.
	List(filter TemplateFilter) []TemplateMeta

	// Get returns an independent copy of the template's specification, or
	// an error wrapping domain.ErrTemplateNotFound.
	Get(id string) (*domain.RequirementsSpec, error)

	// Preview returns agent, category, and criteria counts for a template.
	Preview(id string) (TemplatePreview, error)
}
