package rollup

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ahrav/go-docreview/internal/domain"
)

// Overall labels in descending order.
const (
	LabelExcellent        = "Excellent"
	LabelGood             = "Good"
	LabelAcceptable       = "Acceptable"
	LabelNeedsImprovement = "Needs Improvement"
	LabelPoor             = "Poor"
)

// OverallLabel maps an overall score to its qualitative band. A nil score
// yields domain.LabelInsufficientData, never a numeric band.
func OverallLabel(score *float64, t domain.Thresholds) string {
	if score == nil {
		return domain.LabelInsufficientData
	}
	switch s := *score; {
	case s >= t.Excellent:
		return LabelExcellent
	case s >= t.Good:
		return LabelGood
	case s >= t.Acceptable:
		return LabelAcceptable
	case s >= t.NeedsImprovement:
		return LabelNeedsImprovement
	default:
		return LabelPoor
	}
}

// agentSummary describes an agent's coverage from its 0-10 score band and
// names its strong and weak categories.
func agentSummary(agentType domain.AgentType, score *float64, scale domain.Scale, strong, weak []string) string {
	perspective := humanize(agentType)
	if score == nil {
		return fmt.Sprintf("No %s criteria were scored", perspective)
	}

	var b strings.Builder
	switch s := tenPoint(scale, *score); {
	case s >= 8:
		fmt.Fprintf(&b, "Excellent %s coverage", perspective)
	case s >= 6:
		fmt.Fprintf(&b, "Good %s coverage with some gaps", perspective)
	case s >= 4:
		fmt.Fprintf(&b, "Moderate %s coverage with significant gaps", perspective)
	default:
		fmt.Fprintf(&b, "Insufficient %s coverage", perspective)
	}

	if len(strong) > 0 {
		fmt.Fprintf(&b, ". Strong areas: %s", strings.Join(strong, ", "))
	}
	if len(weak) > 0 {
		fmt.Fprintf(&b, ". Needs improvement: %s", strings.Join(weak, ", "))
	}
	b.WriteString(".")
	return b.String()
}

// overallSummary states the label and score and names strong and weak
// perspectives.
func overallSummary(label string, score *float64, scale domain.Scale, strong, weak []string) string {
	if score == nil {
		return "Insufficient data: no criterion scores matched the specification."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s launch document readiness (Score: %s/%s).",
		label, strconv.FormatFloat(*score, 'f', -1, 64), strconv.FormatFloat(scale.Max, 'f', -1, 64))
	if len(strong) > 0 {
		fmt.Fprintf(&b, " Strong coverage from %s perspective(s).", strings.Join(strong, ", "))
	}
	if len(weak) > 0 {
		fmt.Fprintf(&b, " Significant improvements needed from %s perspective(s).", strings.Join(weak, ", "))
	}
	return b.String()
}
