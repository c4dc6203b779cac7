package application

import (
	"fmt"
	"math"
	"reflect"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// slugPattern matches template identifiers such as "saas-product-launch".
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// RegisterEngineValidators registers custom validation functions with the
// validator instance for use in specification and engine configuration
// struct tags.
// RegisterEngineValidators adds the finite and slug validators.
// RegisterEngineValidators returns an error if any validator registration
// fails.
func RegisterEngineValidators(v *validator.Validate) error {
	// Register float validator rejecting NaN and infinities.
	if err := v.RegisterValidation("finite", validateFinite); err != nil {
		return fmt.Errorf("failed to register finite validator: %w", err)
	}

	// Register identifier validator for template ids.
	if err := v.RegisterValidation("slug", validateSlug); err != nil {
		return fmt.Errorf("failed to register slug validator: %w", err)
	}

	return nil
}

// newEngineValidator returns a validator with the engine validators
// registered. Registration of the built-in set cannot fail.
func newEngineValidator() *validator.Validate {
	v := validator.New()
	if err := RegisterEngineValidators(v); err != nil {
		panic(err)
	}
	return v
}

// validateFinite rejects NaN and infinite floats. A YAML ".nan" weight
// otherwise passes min=0 because every comparison with NaN is false.
func validateFinite(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		f := field.Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return true
	}
}

// validateSlug accepts empty values and lower-case dash-separated ids.
func validateSlug(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || slugPattern.MatchString(s)
}
