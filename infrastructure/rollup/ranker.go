package rollup

import (
	"cmp"
	"slices"

	"github.com/ahrav/go-docreview/internal/domain"
	"github.com/ahrav/go-docreview/internal/ports"
)

var _ ports.Ranker = (*SeverityRanker)(nil)

// SeverityRanker orders recommendations by severity (critical first,
// unscored last), then by declared category weight (heavier first), then
// by original position. The ordering is total and deterministic, so
// identical input always yields identical output.
//
// SeverityRanker performs no filtering; callers decide how many items to
// surface. It is stateless and safe for concurrent use.
type SeverityRanker struct{}

// NewSeverityRanker creates a ranker.
func NewSeverityRanker() *SeverityRanker { return &SeverityRanker{} }

// Rank returns a ranked copy of findings with 1-based Rank fields set.
// The input slice is not modified.
func (r *SeverityRanker) Rank(findings []domain.Recommendation) []domain.Recommendation {
	ranked := slices.Clone(findings)

	// Stable sort keeps original order as the final tie-break.
	slices.SortStableFunc(ranked, func(a, b domain.Recommendation) int {
		if c := cmp.Compare(b.Severity.Rank(), a.Severity.Rank()); c != 0 {
			return c
		}
		return cmp.Compare(b.CategoryWeight, a.CategoryWeight)
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
