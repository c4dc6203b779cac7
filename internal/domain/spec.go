// Package domain contains the pure domain models and types for the
// document review engine.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// AgentType identifies an evaluation perspective such as product_manager.
// The set of agent types is open: unknown types are accepted by the model
// and only flagged by the validator.
type AgentType string

// Built-in agent types.
const (
	AgentProductManager AgentType = "product_manager"
	AgentDataScientist  AgentType = "data_scientist"
	AgentEngineering    AgentType = "engineering"
)

// AgentTypeInfo describes a known agent type.
type AgentTypeInfo struct {
	// Label is the human-readable name used when a spec omits one.
	Label string
	// DefaultWeight is the scoring weight suggested for new specifications.
	DefaultWeight float64
}

// KnownAgentTypes maps built-in agent types to their descriptions.
// New perspectives are added here without touching validation or
// aggregation control flow.
var KnownAgentTypes = map[AgentType]AgentTypeInfo{
	AgentProductManager: {Label: "Product Manager Agent", DefaultWeight: 0.4},
	AgentDataScientist:  {Label: "Data Scientist Agent", DefaultWeight: 0.3},
	AgentEngineering:    {Label: "Engineering Agent", DefaultWeight: 0.3},
}

// IsKnown reports whether t is one of the registered agent types.
func (t AgentType) IsKnown() bool {
	_, ok := KnownAgentTypes[t]
	return ok
}

// KnownAgentTypeNames returns the registered agent types in sorted order.
func KnownAgentTypeNames() []AgentType {
	names := make([]AgentType, 0, len(KnownAgentTypes))
	for t := range KnownAgentTypes {
		names = append(names, t)
	}
	slices.Sort(names)
	return names
}

// Default weights applied when a document omits them.
const (
	DefaultCriterionWeight = 1.0
	DefaultCategoryWeight  = 25.0
)

// Criterion is the smallest weighted evaluation unit.
type Criterion struct {
	// Name is unique within its category.
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Weight is relative among sibling criteria. A nil weight means the
	// document omitted it.
	Weight *float64 `yaml:"weight,omitempty" json:"weight,omitempty" validate:"omitempty,finite,min=0"`
}

// WeightValue returns the declared weight, or DefaultCriterionWeight when unset.
func (c Criterion) WeightValue() float64 {
	if c.Weight == nil {
		return DefaultCriterionWeight
	}
	return *c.Weight
}

// Category is a weighted group of criteria within one agent.
type Category struct {
	Name        string `yaml:"category" json:"category"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Weight is the percentage share of the category within its agent.
	Weight   *float64    `yaml:"weight,omitempty" json:"weight,omitempty" validate:"omitempty,finite,min=0"`
	Criteria []Criterion `yaml:"criteria" json:"criteria" validate:"dive"`
}

// WeightValue returns the declared weight, or DefaultCategoryWeight when unset.
func (c Category) WeightValue() float64 {
	if c.Weight == nil {
		return DefaultCategoryWeight
	}
	return *c.Weight
}

// AgentSpec is the requirements specification for one evaluation perspective.
type AgentSpec struct {
	Type        AgentType  `yaml:"type" json:"type"`
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Categories  []Category `yaml:"requirements" json:"requirements" validate:"dive"`
}

// DisplayName returns the agent's label, falling back to the registered
// label for known types and the raw type otherwise.
func (a AgentSpec) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	if info, ok := KnownAgentTypes[a.Type]; ok {
		return info.Label
	}
	return string(a.Type)
}

// Thresholds holds the score bands used to label an overall result.
type Thresholds struct {
	Excellent        float64 `yaml:"excellent" json:"excellent"`
	Good             float64 `yaml:"good" json:"good"`
	Acceptable       float64 `yaml:"acceptable" json:"acceptable"`
	NeedsImprovement float64 `yaml:"needs_improvement" json:"needs_improvement"`

	// missing lists bands absent from the decoded document.
	missing []string
}

// Threshold band names in descending order.
const (
	BandExcellent        = "excellent"
	BandGood             = "good"
	BandAcceptable       = "acceptable"
	BandNeedsImprovement = "needs_improvement"
)

// ThresholdBands lists the band names in descending order.
var ThresholdBands = []string{BandExcellent, BandGood, BandAcceptable, BandNeedsImprovement}

// Band returns the value of the named band.
func (t Thresholds) Band(name string) (float64, bool) {
	switch name {
	case BandExcellent:
		return t.Excellent, true
	case BandGood:
		return t.Good, true
	case BandAcceptable:
		return t.Acceptable, true
	case BandNeedsImprovement:
		return t.NeedsImprovement, true
	}
	return 0, false
}

func (t *Thresholds) band(name string) *float64 {
	switch name {
	case BandExcellent:
		return &t.Excellent
	case BandGood:
		return &t.Good
	case BandAcceptable:
		return &t.Acceptable
	case BandNeedsImprovement:
		return &t.NeedsImprovement
	}
	return nil
}

// MissingBands returns the bands a decoded document left out. Those bands
// hold their DefaultThresholds value.
func (t Thresholds) MissingBands() []string {
	return slices.Clone(t.missing)
}

// UnmarshalYAML decodes a thresholds mapping on top of DefaultThresholds,
// so a partial block keeps the default for every band it omits.
func (t *Thresholds) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: thresholds must be a mapping of band to number", node.Line)
	}
	out := DefaultThresholds()
	seen := make(map[string]bool, len(ThresholdBands))
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		target := out.band(key.Value)
		if target == nil {
			return fmt.Errorf("line %d: field %s not found in type domain.Thresholds", key.Line, key.Value)
		}
		if err := val.Decode(target); err != nil {
			return fmt.Errorf("line %d: threshold %q must be a number: %w", val.Line, key.Value, err)
		}
		seen[key.Value] = true
	}
	for _, name := range ThresholdBands {
		if !seen[name] {
			out.missing = append(out.missing, name)
		}
	}
	*t = out
	return nil
}

// DefaultThresholds returns the standard score bands on a 0-10 scale.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Excellent:        8.5,
		Good:             7.0,
		Acceptable:       5.5,
		NeedsImprovement: 3.0,
	}
}

// Descending reports whether the bands are ordered from best to worst.
func (t Thresholds) Descending() bool {
	return t.Excellent >= t.Good && t.Good >= t.Acceptable && t.Acceptable >= t.NeedsImprovement
}

// ScoringConfig combines agent scores into one overall score.
type ScoringConfig struct {
	// Scale is a textual descriptor such as "0-10".
	Scale      string       `yaml:"scale" json:"scale"`
	Weights    AgentWeights `yaml:"weights" json:"weights"`
	Thresholds *Thresholds  `yaml:"thresholds,omitempty" json:"thresholds,omitempty"`
}

// ParsedScale returns the scale bounds, falling back to DefaultScale when
// the descriptor is empty or malformed.
func (s ScoringConfig) ParsedScale() Scale {
	scale, err := ParseScale(s.Scale)
	if err != nil {
		return DefaultScale()
	}
	return scale
}

// EffectiveThresholds returns the configured thresholds or the defaults.
func (s ScoringConfig) EffectiveThresholds() Thresholds {
	if s.Thresholds == nil {
		return DefaultThresholds()
	}
	return *s.Thresholds
}

// Metadata describes a requirements specification.
type Metadata struct {
	Version      string `yaml:"version,omitempty" json:"version,omitempty"`
	Description  string `yaml:"description,omitempty" json:"description,omitempty"`
	TemplateName string `yaml:"template_name,omitempty" json:"template_name,omitempty"`
	Difficulty   string `yaml:"difficulty,omitempty" json:"difficulty,omitempty"`
	Industry     string `yaml:"industry,omitempty" json:"industry,omitempty"`
	DocumentType string `yaml:"document_type,omitempty" json:"document_type,omitempty"`
	LastUpdated  string `yaml:"last_updated,omitempty" json:"last_updated,omitempty"`
	CreatedBy    string `yaml:"created_by,omitempty" json:"created_by,omitempty"`
	// Extra keeps unrecognized metadata keys so specifications round-trip.
	Extra map[string]any `yaml:",inline" json:"extra,omitempty"`
}

// RequirementsSpec is the root aggregate validated as a whole.
// A nil Metadata, Agents, or Scoring means the section is missing from the
// source document. The engine treats a RequirementsSpec as immutable
// during an evaluation pass.
type RequirementsSpec struct {
	Metadata *Metadata      `yaml:"metadata" json:"metadata"`
	Agents   []AgentSpec    `yaml:"agents" json:"agents" validate:"dive"`
	Scoring  *ScoringConfig `yaml:"scoring" json:"scoring"`
}

// Agent returns the agent specification for the given type. When the type
// is declared more than once the last declaration wins.
func (s *RequirementsSpec) Agent(t AgentType) (AgentSpec, bool) {
	for i := len(s.Agents) - 1; i >= 0; i-- {
		if s.Agents[i].Type == t {
			return s.Agents[i], true
		}
	}
	return AgentSpec{}, false
}

// AgentTypes returns the declared agent types in document order without
// duplicates.
func (s *RequirementsSpec) AgentTypes() []AgentType {
	seen := make(map[AgentType]struct{}, len(s.Agents))
	types := make([]AgentType, 0, len(s.Agents))
	for _, a := range s.Agents {
		if _, ok := seen[a.Type]; ok {
			continue
		}
		seen[a.Type] = struct{}{}
		types = append(types, a.Type)
	}
	return types
}

// Clone returns a deep copy of the specification.
func (s *RequirementsSpec) Clone() *RequirementsSpec {
	if s == nil {
		return nil
	}
	out := &RequirementsSpec{}
	if s.Metadata != nil {
		md := *s.Metadata
		if s.Metadata.Extra != nil {
			md.Extra = make(map[string]any, len(s.Metadata.Extra))
			for k, v := range s.Metadata.Extra {
				md.Extra[k] = v
			}
		}
		out.Metadata = &md
	}
	if s.Agents != nil {
		out.Agents = make([]AgentSpec, len(s.Agents))
		for i, a := range s.Agents {
			out.Agents[i] = a.clone()
		}
	}
	if s.Scoring != nil {
		sc := *s.Scoring
		sc.Weights = s.Scoring.Weights.Clone()
		if s.Scoring.Thresholds != nil {
			th := *s.Scoring.Thresholds
			th.missing = slices.Clone(th.missing)
			sc.Thresholds = &th
		}
		out.Scoring = &sc
	}
	return out
}

func (a AgentSpec) clone() AgentSpec {
	out := a
	if a.Categories == nil {
		return out
	}
	out.Categories = make([]Category, len(a.Categories))
	for i, c := range a.Categories {
		cc := c
		cc.Weight = cloneFloat(c.Weight)
		if c.Criteria != nil {
			cc.Criteria = make([]Criterion, len(c.Criteria))
			for j, cr := range c.Criteria {
				cr.Weight = cloneFloat(cr.Weight)
				cc.Criteria[j] = cr
			}
		}
		out.Categories[i] = cc
	}
	return out
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// Float returns a pointer to v. It is a convenience for building
// specifications in code.
func Float(v float64) *float64 { return &v }

// AgentWeight is one entry of an AgentWeights mapping.
type AgentWeight struct {
	Type   AgentType `json:"type"`
	Weight float64   `json:"weight"`
}

// AgentWeights is an ordered mapping from agent type to scoring weight.
// Entries keep the position of their first occurrence; setting an existing
// key overwrites its weight.
type AgentWeights struct {
	entries    []AgentWeight
	duplicates []AgentType
}

// NewAgentWeights builds weights from entries in order.
func NewAgentWeights(entries ...AgentWeight) AgentWeights {
	var w AgentWeights
	for _, e := range entries {
		w.Set(e.Type, e.Weight)
	}
	return w
}

// Set assigns a weight, overwriting any existing entry for the type.
func (w *AgentWeights) Set(t AgentType, weight float64) {
	for i := range w.entries {
		if w.entries[i].Type == t {
			w.entries[i].Weight = weight
			w.duplicates = append(w.duplicates, t)
			return
		}
	}
	w.entries = append(w.entries, AgentWeight{Type: t, Weight: weight})
}

// Get returns the weight for the type.
func (w AgentWeights) Get(t AgentType) (float64, bool) {
	for _, e := range w.entries {
		if e.Type == t {
			return e.Weight, true
		}
	}
	return 0, false
}

// Entries returns the weights in document order.
func (w AgentWeights) Entries() []AgentWeight { return slices.Clone(w.entries) }

// Duplicates returns the types that were assigned more than once.
func (w AgentWeights) Duplicates() []AgentType { return slices.Clone(w.duplicates) }

// Len returns the number of distinct agent types.
func (w AgentWeights) Len() int { return len(w.entries) }

// Sum returns the total of all weights.
func (w AgentWeights) Sum() float64 {
	var sum float64
	for _, e := range w.entries {
		sum += e.Weight
	}
	return sum
}

// Clone returns an independent copy.
func (w AgentWeights) Clone() AgentWeights {
	return AgentWeights{
		entries:    slices.Clone(w.entries),
		duplicates: slices.Clone(w.duplicates),
	}
}

// UnmarshalYAML decodes a mapping while preserving key order and recording
// duplicate keys instead of rejecting them.
func (w *AgentWeights) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*w = AgentWeights{}
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: weights must be a mapping of agent type to number", node.Line)
	}
	var out AgentWeights
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		var weight float64
		if err := val.Decode(&weight); err != nil {
			return fmt.Errorf("line %d: weight for %q must be a number: %w", val.Line, key.Value, err)
		}
		out.Set(AgentType(key.Value), weight)
	}
	*w = out
	return nil
}

// MarshalYAML encodes the weights as an ordered mapping.
func (w AgentWeights) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range w.entries {
		var val yaml.Node
		if err := val.Encode(e.Weight); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(e.Type)},
			&val,
		)
	}
	return node, nil
}

// MarshalJSON encodes the weights as a JSON object in document order.
func (w AgentWeights) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range w.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(e.Type))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Weight)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
