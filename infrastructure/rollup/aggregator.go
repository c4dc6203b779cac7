package rollup

import (
	"fmt"
	"math"
	"slices"

	"github.com/agnivade/levenshtein"

	"github.com/ahrav/go-docreview/internal/domain"
	"github.com/ahrav/go-docreview/internal/ports"
)

var _ ports.Aggregator = (*WeightedAggregator)(nil)

// maxHintDistance bounds the edit distance for "did you mean" hints on
// unmatched criterion names.
const maxHintDistance = 3

// WeightedAggregator rolls criterion scores up into category, agent, and
// overall results using declared weights at every level.
//
// Algorithm: each level is a weighted mean over the children that produced
// a value, normalized by the weights of those children only.
//  1. Criterion -> Category: weight is the criterion's declared weight.
//     Unscored criteria are excluded from the denominator; a category whose
//     matched weights sum to zero has no score.
//  2. Category -> Agent: weight is the category's declared weight,
//     normalized over scored categories.
//  3. Agent -> Overall: weight is the scoring config weight, normalized
//     over scored agents. When every scored agent has a zero weight the
//     agents are weighted equally and a note is recorded.
//
// Fail-soft behavior: out-of-range scores are clamped to the scale, NaN or
// infinite scores are skipped, unknown criteria and agents are ignored,
// and duplicate scores resolve to the last one. Each adjustment is
// recorded as a domain.Note. Aggregate never fails.
//
// Concurrency: WeightedAggregator holds only immutable configuration. Every
// call builds its own accumulators, so concurrent calls are safe.
type WeightedAggregator struct {
	config Config
	ranker ports.Ranker
}

// NewWeightedAggregator creates an aggregator with validated configuration.
// Returns ErrNilRanker if ranker is nil, or a validation error if the
// configuration is out of range.
func NewWeightedAggregator(config Config, ranker ports.Ranker) (*WeightedAggregator, error) {
	if ranker == nil {
		return nil, ErrNilRanker
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &WeightedAggregator{config: config, ranker: ranker}, nil
}

// NewDefaultAggregator creates an aggregator with DefaultConfig and a
// SeverityRanker.
func NewDefaultAggregator() *WeightedAggregator {
	return &WeightedAggregator{config: DefaultConfig(), ranker: NewSeverityRanker()}
}

// run holds the accumulators of a single Aggregate call.
type run struct {
	cfg      Config
	scale    domain.Scale
	notes    []domain.Note
	findings []domain.Recommendation
}

func (r *run) note(n domain.Note) { r.notes = append(r.notes, n) }

// agentRollup pairs a reported agent result with its unrounded score.
type agentRollup struct {
	result domain.AgentResult
	raw    float64
	ok     bool
	weight float64
}

// Aggregate implements ports.Aggregator. The specification must already
// have passed validation without errors.
func (a *WeightedAggregator) Aggregate(spec *domain.RequirementsSpec, scores domain.ScoreSet) *domain.ReviewResult {
	scoring := domain.ScoringConfig{}
	if spec.Scoring != nil {
		scoring = *spec.Scoring
	}
	r := &run{cfg: a.config, scale: scoring.ParsedScale()}

	agents := domain.NewOrderedMap[domain.AgentType, domain.AgentSpec](len(spec.Agents))
	for _, agent := range spec.Agents {
		agents.Set(agent.Type, agent)
	}

	r.noteUnknownAgents(agents, scores)

	rollups := make([]agentRollup, 0, agents.Len())
	for _, agent := range agents.Values() {
		ar := r.rollupAgent(agent, scores[agent.Type])
		if w, ok := scoring.Weights.Get(agent.Type); ok {
			ar.weight = w
		}
		rollups = append(rollups, ar)
	}

	result := &domain.ReviewResult{
		Agents:     make([]domain.AgentResult, 0, len(rollups)),
		Confidence: domain.ConfidenceMedium,
	}

	overall, total, ok := domain.WeightedMean(rollups,
		func(ar agentRollup) float64 { return ar.weight },
		func(ar agentRollup) (float64, bool) { return ar.raw, ar.ok },
	)
	equalWeights := false
	if !ok && slices.ContainsFunc(rollups, func(ar agentRollup) bool { return ar.ok }) {
		equalWeights = true
		overall, total, ok = domain.WeightedMean(rollups,
			func(agentRollup) float64 { return 1 },
			func(ar agentRollup) (float64, bool) { return ar.raw, ar.ok },
		)
		r.note(domain.Note{
			Kind:    domain.NoteWeightFallback,
			Message: "every scored agent has a zero scoring weight; agents were weighted equally",
		})
	}

	var lowest domain.Confidence
	var strongAgents, weakAgents []string
	for _, ar := range rollups {
		res := ar.result
		if ar.ok && ok {
			share := ar.weight
			if equalWeights {
				share = 1
			}
			if share > 0 {
				res.Weight = domain.Round(share/total, 4)
				lowest = domain.LowerConfidence(lowest, res.Confidence)
			}
		}
		if res.Score != nil {
			switch s := tenPoint(r.scale, *res.Score); {
			case s >= r.cfg.StrongThreshold:
				strongAgents = append(strongAgents, res.Name)
			case s < r.cfg.WeakThreshold:
				weakAgents = append(weakAgents, res.Name)
			}
		}
		result.Agents = append(result.Agents, res)
	}

	if ok {
		v := r.clamp(overall, domain.Note{Message: "overall score"})
		result.Overall = r.report(v)
		if lowest != "" {
			result.Confidence = lowest
		}
	}

	thresholds := scoring.EffectiveThresholds()
	result.Label = OverallLabel(result.Overall, thresholds)
	result.Summary = overallSummary(result.Label, result.Overall, r.scale, strongAgents, weakAgents)
	result.StrongAgents = strongAgents
	result.WeakAgents = weakAgents

	result.Recommendations = a.ranker.Rank(r.findings)
	if result.Recommendations == nil {
		result.Recommendations = []domain.Recommendation{}
	}
	result.Notes = r.notes

	return result
}

// noteUnknownAgents records score lists for agent types the specification
// does not declare. Types are visited in sorted order for determinism.
func (r *run) noteUnknownAgents(agents *domain.OrderedMap[domain.AgentType, domain.AgentSpec], scores domain.ScoreSet) {
	types := make([]domain.AgentType, 0, len(scores))
	for t := range scores {
		if _, ok := agents.Get(t); !ok {
			types = append(types, t)
		}
	}
	slices.Sort(types)
	for _, t := range types {
		r.note(domain.Note{
			Kind:  domain.NoteInputMismatch,
			Agent: t,
			Message: fmt.Sprintf("%d score(s) for agent %q ignored: agent is not in the specification",
				len(scores[t]), t),
		})
	}
}

// matchedScore is a criterion score accepted for a category, with the
// position of its source in the input list.
type matchedScore struct {
	score domain.CriterionScore
	index int
}

// rollupAgent computes category and agent results for one agent.
func (r *run) rollupAgent(agent domain.AgentSpec, scores []domain.CriterionScore) agentRollup {
	categories := domain.NewOrderedMap[string, domain.Category](len(agent.Categories))
	for _, c := range agent.Categories {
		categories.Set(c.Name, c)
	}

	// criteria[category] resolves duplicate criterion names, last one wins.
	criteria := make(map[string]*domain.OrderedMap[string, domain.Criterion], categories.Len())
	for _, c := range categories.Values() {
		m := domain.NewOrderedMap[string, domain.Criterion](len(c.Criteria))
		for _, cr := range c.Criteria {
			m.Set(cr.Name, cr)
		}
		criteria[c.Name] = m
	}

	matched := r.matchScores(agent, categories, criteria, scores)

	type categoryRollup struct {
		result domain.CategoryResult
		raw    float64
		ok     bool
	}

	confidence := domain.Confidence("")
	emitted := make(map[int]struct{})
	rolled := make([]categoryRollup, 0, categories.Len())
	var strong, weak []string

	for _, cat := range categories.Values() {
		crits := criteria[cat.Name].Values()
		hits := matched[cat.Name]

		raw, _, ok := domain.WeightedMean(crits,
			func(c domain.Criterion) float64 { return c.WeightValue() },
			func(c domain.Criterion) (float64, bool) {
				m, found := hits[c.Name]
				return m.score.Score, found
			},
		)

		cr := domain.CategoryResult{
			Name:      cat.Name,
			Weight:    cat.WeightValue(),
			Evaluated: len(hits),
			Total:     len(crits),
		}
		if ok {
			cr.Score = r.report(raw)
		}
		// Only categories entering the agent mean shape its confidence and
		// its strong and weak lists.
		if w := cat.WeightValue(); ok && w > 0 && !math.IsInf(w, 0) {
			for _, c := range crits {
				if m, found := hits[c.Name]; found && c.WeightValue() > 0 {
					confidence = domain.LowerConfidence(confidence, m.score.Confidence)
				}
			}
			switch s := tenPoint(r.scale, raw); {
			case s >= r.cfg.StrongThreshold:
				strong = append(strong, cat.Name)
			case s < r.cfg.WeakThreshold:
				weak = append(weak, cat.Name)
			}
		}

		// Findings follow specification order; a score matched into several
		// categories is reported once, under the first.
		for _, c := range crits {
			m, found := hits[c.Name]
			if !found || !m.score.HasFinding() {
				continue
			}
			if _, dup := emitted[m.index]; dup {
				continue
			}
			emitted[m.index] = struct{}{}
			r.findings = append(r.findings, domain.Recommendation{
				Agent:          agent.Type,
				Category:       cat.Name,
				Criterion:      c.Name,
				Finding:        m.score.Finding,
				Recommendation: m.score.Recommendation,
				Severity:       m.score.Severity,
				CategoryWeight: cat.WeightValue(),
			})
		}

		rolled = append(rolled, categoryRollup{result: cr, raw: raw, ok: ok})
	}

	ar := agentRollup{
		result: domain.AgentResult{
			Type:             agent.Type,
			Name:             displayName(agent),
			Confidence:       domain.ConfidenceMedium,
			Categories:       make([]domain.CategoryResult, 0, len(rolled)),
			StrongCategories: strong,
			WeakCategories:   weak,
		},
	}
	for _, c := range rolled {
		ar.result.Categories = append(ar.result.Categories, c.result)
	}

	raw, _, ok := domain.WeightedMean(rolled,
		func(c categoryRollup) float64 { return c.result.Weight },
		func(c categoryRollup) (float64, bool) { return c.raw, c.ok },
	)
	if ok {
		raw = r.clamp(raw, domain.Note{Agent: agent.Type, Message: "agent score"})
		ar.raw, ar.ok = raw, true
		ar.result.Score = r.report(raw)
		if confidence != "" {
			ar.result.Confidence = confidence
		}
	}
	ar.result.Summary = agentSummary(agent.Type, ar.result.Score, r.scale, strong, weak)

	return ar
}

// matchScores assigns each criterion score to the categories containing
// its criterion. Criterion names are independent across categories: a
// score without a Category matches every category declaring that name.
func (r *run) matchScores(
	agent domain.AgentSpec,
	categories *domain.OrderedMap[string, domain.Category],
	criteria map[string]*domain.OrderedMap[string, domain.Criterion],
	scores []domain.CriterionScore,
) map[string]map[string]matchedScore {
	matched := make(map[string]map[string]matchedScore, categories.Len())

	for i, s := range scores {
		if math.IsNaN(s.Score) || math.IsInf(s.Score, 0) {
			r.note(domain.Note{
				Kind:      domain.NoteInvalidScore,
				Agent:     agent.Type,
				Category:  s.Category,
				Criterion: s.CriterionName,
				Message:   fmt.Sprintf("score %v for criterion %q is not a finite number and was skipped", s.Score, s.CriterionName),
			})
			continue
		}

		var targets []string
		for _, name := range categories.Keys() {
			if s.Category != "" && s.Category != name {
				continue
			}
			if _, ok := criteria[name].Get(s.CriterionName); ok {
				targets = append(targets, name)
			}
		}
		if len(targets) == 0 {
			r.note(domain.Note{
				Kind:      domain.NoteInputMismatch,
				Agent:     agent.Type,
				Category:  s.Category,
				Criterion: s.CriterionName,
				Message:   mismatchMessage(s, categories, criteria),
			})
			continue
		}

		if clamped, changed := r.scale.Clamp(s.Score); changed {
			r.note(domain.Note{
				Kind:      domain.NoteClamped,
				Agent:     agent.Type,
				Criterion: s.CriterionName,
				Message: fmt.Sprintf("score %v for criterion %q is outside %s and was clamped to %v",
					s.Score, s.CriterionName, r.scale, clamped),
			})
			s.Score = clamped
		}

		for _, cat := range targets {
			byName := matched[cat]
			if byName == nil {
				byName = make(map[string]matchedScore)
				matched[cat] = byName
			}
			if _, dup := byName[s.CriterionName]; dup {
				r.note(domain.Note{
					Kind:      domain.NoteDuplicateScore,
					Agent:     agent.Type,
					Category:  cat,
					Criterion: s.CriterionName,
					Message:   fmt.Sprintf("criterion %q was scored more than once; the last score is used", s.CriterionName),
				})
			}
			byName[s.CriterionName] = matchedScore{score: s, index: i}
		}
	}
	return matched
}

// mismatchMessage explains why a score was ignored and suggests the
// closest declared criterion name.
func mismatchMessage(
	s domain.CriterionScore,
	categories *domain.OrderedMap[string, domain.Category],
	criteria map[string]*domain.OrderedMap[string, domain.Criterion],
) string {
	if s.Category != "" {
		if _, ok := categories.Get(s.Category); !ok {
			return fmt.Sprintf("score for criterion %q ignored: category %q is not in the specification",
				s.CriterionName, s.Category)
		}
	}

	msg := fmt.Sprintf("score for criterion %q ignored: no matching criterion in the specification", s.CriterionName)
	best, bestDist := "", maxHintDistance+1
	for _, cat := range categories.Keys() {
		if s.Category != "" && s.Category != cat {
			continue
		}
		for _, name := range criteria[cat].Keys() {
			if d := levenshtein.ComputeDistance(s.CriterionName, name); d < bestDist {
				best, bestDist = name, d
			}
		}
	}
	if best != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", best)
	}
	return msg
}

// clamp limits a rollup value to the scale and records a note when it had
// to be adjusted.
func (r *run) clamp(v float64, n domain.Note) float64 {
	clamped, changed := r.scale.Clamp(v)
	if changed {
		n.Kind = domain.NoteClamped
		n.Message = fmt.Sprintf("%s %v is outside %s and was clamped to %v", n.Message, v, r.scale, clamped)
		r.note(n)
	}
	return clamped
}

// report rounds a value to the configured precision.
func (r *run) report(v float64) *float64 {
	rounded := domain.Round(v, r.cfg.Precision)
	return &rounded
}
