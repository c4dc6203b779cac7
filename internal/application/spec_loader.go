package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-docreview/internal/domain"
)

// SpecLoader provides YAML parsing, structural checking, and caching for
// requirements specifications.
// Use SpecLoader to load specifications from files or readers while
// benefiting from SHA256-based caching.
//
// SpecLoader only reports structural problems (malformed YAML, wrong field
// types, unknown fields, negative weights) as *domain.StructuralError.
// Semantic problems such as missing sections or weight sums are left to
// SpecValidator so they can be reported rather than thrown.
type SpecLoader struct {
	// validator enforces model invariants declared in struct tags.
	validator *validator.Validate
	// cache stores parsed specifications indexed by SHA256 hash of the
	// source bytes.
	// WARNING: Cached specifications MUST NOT be mutated.
	cache map[string]*domain.RequirementsSpec
	// cacheMu provides thread-safe access to the cache map.
	cacheMu sync.RWMutex
	// sf prevents duplicate parsing when multiple goroutines request the
	// same document simultaneously.
	sf singleflight.Group
}

// NewSpecLoader creates a loader with an empty cache.
func NewSpecLoader() *SpecLoader {
	return &SpecLoader{
		validator: newEngineValidator(),
		cache:     make(map[string]*domain.RequirementsSpec),
	}
}

// LoadFromFile loads a requirements specification from a YAML file.
// WARNING: The returned specification is shared with the cache. Callers
// MUST NOT mutate it; use Clone for an editable copy.
// LoadFromFile returns an error if the file cannot be read or a
// *domain.StructuralError if it cannot be parsed.
func (sl *SpecLoader) LoadFromFile(ctx context.Context, path string) (*domain.RequirementsSpec, error) {
	// Clean the path to prevent directory traversal attacks.
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read requirements file: %w", err)
	}

	return sl.load(ctx, cleanPath, data)
}

// LoadFromReader loads a requirements specification from an io.Reader.
// WARNING: The returned specification is shared with the cache. Callers
// MUST NOT mutate it.
func (sl *SpecLoader) LoadFromReader(ctx context.Context, source string, r io.Reader) (*domain.RequirementsSpec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	return sl.load(ctx, source, data)
}

// load is the common implementation for loading from byte data,
// utilizing singleflight to prevent duplicate parsing and SHA256-based
// caching for efficiency.
func (sl *SpecLoader) load(ctx context.Context, source string, data []byte) (*domain.RequirementsSpec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	v, err, _ := sl.sf.Do(hash, func() (any, error) {
		// Check cache inside singleflight to handle race between cache check
		// and singleflight group execution.
		if spec, ok := sl.getCached(hash); ok {
			return spec, nil
		}

		spec, err := sl.Parse(source, data)
		if err != nil {
			return nil, err
		}

		sl.cacheSpec(hash, spec)
		return spec, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.RequirementsSpec), nil
}

// Parse decodes and structurally checks a specification without caching.
// Parse uses strict decoding so that unknown fields (typically typos) are
// reported instead of silently ignored.
func (sl *SpecLoader) Parse(source string, data []byte) (*domain.RequirementsSpec, error) {
	var spec domain.RequirementsSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict mode - fail on unknown fields.

	if err := decoder.Decode(&spec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.NewStructuralError(source, "", errors.New("document is empty"))
		}
		return nil, domain.NewStructuralError(source, "", fmt.Errorf("YAML decode failed: %w", err))
	}

	if err := sl.validator.Struct(&spec); err != nil {
		return nil, structuralFromValidation(source, err)
	}

	return &spec, nil
}

// Encode writes a specification in its own YAML file format.
func (sl *SpecLoader) Encode(w io.Writer, spec *domain.RequirementsSpec) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(spec); err != nil {
		return fmt.Errorf("failed to encode specification: %w", err)
	}
	return enc.Close()
}

// getCached retrieves a cached specification by hash.
func (sl *SpecLoader) getCached(hash string) (*domain.RequirementsSpec, bool) {
	sl.cacheMu.RLock()
	defer sl.cacheMu.RUnlock()

	spec, ok := sl.cache[hash]
	return spec, ok
}

// cacheSpec stores a parsed specification under its hash.
func (sl *SpecLoader) cacheSpec(hash string, spec *domain.RequirementsSpec) {
	sl.cacheMu.Lock()
	defer sl.cacheMu.Unlock()

	sl.cache[hash] = spec
}

// ClearCache drops every cached specification.
func (sl *SpecLoader) ClearCache() {
	sl.cacheMu.Lock()
	defer sl.cacheMu.Unlock()

	sl.cache = make(map[string]*domain.RequirementsSpec)
}

// structuralFromValidation converts struct-tag failures into a
// StructuralError pointing at the first offending field.
func structuralFromValidation(source string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.NewStructuralError(source, fe.Namespace(),
			fmt.Errorf("value %v violates %q", fieldValue(fe), fe.Tag()+paramSuffix(fe.Param())))
	}
	return domain.NewStructuralError(source, "", err)
}

func fieldValue(fe validator.FieldError) any {
	if f, ok := fe.Value().(*float64); ok && f != nil {
		return *f
	}
	return fe.Value()
}

func paramSuffix(param string) string {
	if param == "" {
		return ""
	}
	return "=" + param
}
