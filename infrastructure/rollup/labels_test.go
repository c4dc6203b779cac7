package rollup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ahrav/go-docreview/internal/domain"
)

func TestOverallLabel(t *testing.T) {
	thresholds := domain.DefaultThresholds()

	tests := []struct {
		score *float64
		want  string
	}{
		{score: domain.Float(10), want: LabelExcellent},
		{score: domain.Float(8.5), want: LabelExcellent},
		{score: domain.Float(8.49), want: LabelGood},
		{score: domain.Float(7), want: LabelGood},
		{score: domain.Float(5.5), want: LabelAcceptable},
		{score: domain.Float(5), want: LabelNeedsImprovement},
		{score: domain.Float(3), want: LabelNeedsImprovement},
		{score: domain.Float(2.99), want: LabelPoor},
		{score: domain.Float(0), want: LabelPoor},
		{score: nil, want: domain.LabelInsufficientData},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, OverallLabel(tt.score, thresholds))
		})
	}
}

func TestAgentSummary(t *testing.T) {
	scale := domain.DefaultScale()

	tests := []struct {
		name   string
		score  *float64
		strong []string
		weak   []string
		want   string
	}{
		{
			name:  "unscored",
			score: nil,
			want:  "No product manager criteria were scored",
		},
		{
			name:   "excellent",
			score:  domain.Float(8),
			strong: []string{"Market Analysis"},
			want:   "Excellent product manager coverage. Strong areas: Market Analysis.",
		},
		{
			name:  "good",
			score: domain.Float(6),
			want:  "Good product manager coverage with some gaps.",
		},
		{
			name:  "moderate",
			score: domain.Float(4),
			weak:  []string{"Pricing", "Channels"},
			want:  "Moderate product manager coverage with significant gaps. Needs improvement: Pricing, Channels.",
		},
		{
			name:  "insufficient",
			score: domain.Float(3.99),
			want:  "Insufficient product manager coverage.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := agentSummary(domain.AgentProductManager, tt.score, scale, tt.strong, tt.weak)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOverallSummary(t *testing.T) {
	got := overallSummary(LabelAcceptable, domain.Float(6.5), domain.DefaultScale(),
		[]string{"Engineering Agent"}, []string{"Data Scientist Agent"})
	assert.Equal(t,
		"Acceptable launch document readiness (Score: 6.5/10). Strong coverage from Engineering Agent perspective(s). "+
			"Significant improvements needed from Data Scientist Agent perspective(s).",
		got)
}

func TestTenPoint(t *testing.T) {
	assert.Equal(t, 5.0, tenPoint(domain.Scale{Min: 0, Max: 100}, 50))
	assert.Equal(t, 7.5, tenPoint(domain.Scale{Min: 1, Max: 5}, 4))
	assert.Equal(t, 10.0, tenPoint(domain.DefaultScale(), 10))
}
