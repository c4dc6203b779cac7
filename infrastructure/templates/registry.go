// Package templates provides the compiled-in catalog of pre-built
// requirements specifications.
package templates

import (
	"cmp"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ahrav/go-docreview/internal/application"
	"github.com/ahrav/go-docreview/internal/domain"
	"github.com/ahrav/go-docreview/internal/ports"
)

//go:embed catalog/*.yaml
var catalogFS embed.FS

const (
	catalogDir   = "catalog"
	filePrefix   = "requirements-"
	fileSuffix   = ".yaml"
	maxRecommend = 3
)

var _ ports.TemplateCatalog = (*Registry)(nil)

// difficultyRank orders templates from easiest to hardest; unknown
// difficulties sort last.
var difficultyRank = map[string]int{
	"beginner":     1,
	"intermediate": 2,
	"advanced":     3,
}

// entry is one parsed template. spec is never handed out directly.
type entry struct {
	meta ports.TemplateMeta
	spec *domain.RequirementsSpec
}

// Registry is a read-only template catalog. It is populated once at
// construction and is safe for concurrent use.
type Registry struct {
	entries []entry
	byID    map[string]int
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide catalog built from the embedded
// templates. It panics if an embedded template is malformed, which the
// package tests rule out.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry(catalogFS, catalogDir)
		if err != nil {
			panic(fmt.Sprintf("templates: embedded catalog is invalid: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// NewRegistry parses every requirements-*.yaml file in dir of fsys.
// The template ID is the file name without prefix and extension.
// NewRegistry returns a *domain.StructuralError for the first template that
// fails to parse.
func NewRegistry(fsys fs.FS, dir string) (*Registry, error) {
	matches, err := fs.Glob(fsys, path.Join(dir, filePrefix+"*"+fileSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	loader := application.NewSpecLoader()
	r := &Registry{
		entries: make([]entry, 0, len(matches)),
		byID:    make(map[string]int, len(matches)),
	}

	for _, file := range matches {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", file, err)
		}
		spec, err := loader.Parse(file, data)
		if err != nil {
			return nil, err
		}

		id := strings.TrimSuffix(strings.TrimPrefix(path.Base(file), filePrefix), fileSuffix)
		r.entries = append(r.entries, entry{meta: metaFor(id, spec), spec: spec})
	}

	slices.SortStableFunc(r.entries, func(a, b entry) int {
		if c := cmp.Compare(rankOf(a.meta.Difficulty), rankOf(b.meta.Difficulty)); c != 0 {
			return c
		}
		return cmp.Compare(a.meta.Name, b.meta.Name)
	})
	for i, e := range r.entries {
		r.byID[e.meta.ID] = i
	}
	return r, nil
}

// metaFor extracts catalog metadata, with the same fallbacks as a listing
// of a template without metadata.
func metaFor(id string, spec *domain.RequirementsSpec) ports.TemplateMeta {
	meta := ports.TemplateMeta{
		ID:           id,
		Name:         id,
		Description:  "No description available",
		DocumentType: "Unknown",
		Difficulty:   "intermediate",
	}
	if md := spec.Metadata; md != nil {
		meta.Name = cmp.Or(md.TemplateName, meta.Name)
		meta.Description = cmp.Or(md.Description, meta.Description)
		meta.DocumentType = cmp.Or(md.DocumentType, meta.DocumentType)
		meta.Difficulty = cmp.Or(strings.ToLower(md.Difficulty), meta.Difficulty)
		meta.Industry = md.Industry
	}
	return meta
}

func rankOf(difficulty string) int {
	if r, ok := difficultyRank[difficulty]; ok {
		return r
	}
	return len(difficultyRank) + 1
}

// List implements ports.TemplateCatalog. Industry and difficulty match
// exactly and document type matches as a substring, all ignoring case.
func (r *Registry) List(filter ports.TemplateFilter) []ports.TemplateMeta {
	out := make([]ports.TemplateMeta, 0, len(r.entries))
	for _, e := range r.entries {
		if matches(e.meta, filter) {
			out = append(out, e.meta)
		}
	}
	return out
}

// Recommend returns at most three templates matching the filter, in
// catalog order.
func (r *Registry) Recommend(filter ports.TemplateFilter) []ports.TemplateMeta {
	list := r.List(filter)
	return list[:min(len(list), maxRecommend)]
}

func matches(meta ports.TemplateMeta, f ports.TemplateFilter) bool {
	if f.Industry != "" && !strings.EqualFold(meta.Industry, normalizeIndustry(f.Industry)) {
		return false
	}
	if f.Difficulty != "" && !strings.EqualFold(meta.Difficulty, f.Difficulty) {
		return false
	}
	if f.DocumentType != "" &&
		!strings.Contains(strings.ToLower(meta.DocumentType), strings.ToLower(f.DocumentType)) {
		return false
	}
	return true
}

// normalizeIndustry accepts both "consumer_mobile" and the displayed form
// "Consumer Mobile".
func normalizeIndustry(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
}

// Get implements ports.TemplateCatalog. The lookup accepts the template ID
// or its display name, ignoring case.
func (r *Registry) Get(id string) (*domain.RequirementsSpec, error) {
	e, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return e.spec.Clone(), nil
}

// Meta returns the catalog metadata of a template.
func (r *Registry) Meta(id string) (ports.TemplateMeta, error) {
	e, err := r.lookup(id)
	if err != nil {
		return ports.TemplateMeta{}, err
	}
	return e.meta, nil
}

func (r *Registry) lookup(id string) (entry, error) {
	if i, ok := r.byID[strings.ToLower(id)]; ok {
		return r.entries[i], nil
	}
	for _, e := range r.entries {
		if strings.EqualFold(e.meta.Name, id) {
			return e, nil
		}
	}
	return entry{}, fmt.Errorf("%w: %q", domain.ErrTemplateNotFound, id)
}

// Preview implements ports.TemplateCatalog. Agent weights are reported as
// percentages of the scoring weights.
func (r *Registry) Preview(id string) (ports.TemplatePreview, error) {
	e, err := r.lookup(id)
	if err != nil {
		return ports.TemplatePreview{}, err
	}

	p := ports.TemplatePreview{
		Meta:       e.meta,
		AgentCount: len(e.spec.Agents),
		Agents:     make([]ports.AgentPreview, 0, len(e.spec.Agents)),
	}
	var weights domain.AgentWeights
	if e.spec.Scoring != nil {
		weights = e.spec.Scoring.Weights
	}

	for _, agent := range e.spec.Agents {
		ap := ports.AgentPreview{
			Type:       agent.Type,
			Name:       agent.DisplayName(),
			Categories: make([]ports.CategoryPreview, 0, len(agent.Categories)),
		}
		if w, ok := weights.Get(agent.Type); ok {
			ap.Weight = domain.Round(w*100, 2)
		}
		for _, c := range agent.Categories {
			ap.Categories = append(ap.Categories, ports.CategoryPreview{
				Name:          c.Name,
				Weight:        c.WeightValue(),
				CriteriaCount: len(c.Criteria),
			})
			p.CriteriaCount += len(c.Criteria)
		}
		p.CategoryCount += len(agent.Categories)
		p.Agents = append(p.Agents, ap)
	}
	return p, nil
}

// Industries returns the distinct industries of the catalog in display
// form, e.g. "Consumer Mobile", sorted.
func (r *Registry) Industries() []string {
	caser := cases.Title(language.English)
	seen := make(map[string]struct{})
	var out []string
	for _, e := range r.entries {
		if e.meta.Industry == "" {
			continue
		}
		name := caser.String(strings.ReplaceAll(e.meta.Industry, "_", " "))
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of templates.
func (r *Registry) Len() int { return len(r.entries) }
