package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors that can occur while loading, validating, and
// reviewing requirements specifications.
var (
	// ErrStructural indicates that a specification could not be parsed into
	// the typed model. It aborts a review before validation begins.
	ErrStructural = errors.New("malformed specification")

	// ErrValidationFailed indicates that a specification has validation
	// errors and the aggregator refused to run.
	ErrValidationFailed = errors.New("specification failed validation")

	// ErrInvalidScale indicates that a scale descriptor could not be parsed.
	ErrInvalidScale = errors.New("invalid scale")

	// ErrTemplateNotFound indicates that no template has the requested ID.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidConfiguration indicates that configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUnknownLevel indicates an unrecognized confidence or severity value.
	ErrUnknownLevel = errors.New("unknown level")
)

// StructuralError reports a specification or score document that does not
// match the expected structure (malformed YAML, wrong field types, or a
// violated model invariant such as a negative weight).
type StructuralError struct {
	// Source names the document, typically a file path.
	Source string

	// Path locates the offending field when known.
	Path string

	// Err is the underlying decode or validation error.
	Err error
}

// Error implements the error interface for StructuralError.
func (e *StructuralError) Error() string {
	var b strings.Builder
	b.WriteString("malformed specification")
	if e.Source != "" {
		fmt.Fprintf(&b, " %s", e.Source)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " at %s", e.Path)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

// Unwrap returns the underlying error.
func (e *StructuralError) Unwrap() error { return e.Err }

// Is reports ErrStructural so callers can test with errors.Is.
func (e *StructuralError) Is(target error) bool { return target == ErrStructural }

// NewStructuralError creates a new StructuralError with the given details.
func NewStructuralError(source, path string, err error) *StructuralError {
	return &StructuralError{
		Source: source,
		Path:   path,
		Err:    err,
	}
}

// ValidationError is returned when a review is refused because the
// specification's validation report contains errors.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the blocking issues.
	Errors []Issue
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0].Message)
	}
	msgs := make([]string, len(e.Errors))
	for i, issue := range e.Errors {
		msgs[i] = issue.Message
	}
	return fmt.Sprintf("validation errors for %s: [%s]", e.Entity, strings.Join(msgs, "; "))
}

// Unwrap returns ErrValidationFailed.
func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string, issues []Issue) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: issues,
	}
}
