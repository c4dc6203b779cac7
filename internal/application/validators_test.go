package application

import (
	"math"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterEngineValidators(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterEngineValidators(v))

	type weighted struct {
		Weight float64 `validate:"finite"`
	}
	type optionalWeight struct {
		Weight *float64 `validate:"omitempty,finite,min=0"`
	}
	type named struct {
		ID string `validate:"slug"`
	}

	nan, inf := math.NaN(), math.Inf(-1)
	negative, zero := -1.0, 0.0

	tests := []struct {
		name  string
		value any
		valid bool
	}{
		{"finite float", weighted{Weight: 0.25}, true},
		{"NaN", weighted{Weight: math.NaN()}, false},
		{"positive infinity", weighted{Weight: math.Inf(1)}, false},
		{"nil pointer", optionalWeight{}, true},
		{"zero pointer", optionalWeight{Weight: &zero}, true},
		{"NaN pointer", optionalWeight{Weight: &nan}, false},
		{"infinite pointer", optionalWeight{Weight: &inf}, false},
		{"negative pointer", optionalWeight{Weight: &negative}, false},
		{"empty slug", named{}, true},
		{"single word slug", named{ID: "saas"}, true},
		{"dashed slug", named{ID: "saas-product-launch"}, true},
		{"digits in slug", named{ID: "v2-launch"}, true},
		{"upper case slug", named{ID: "SaaS"}, false},
		{"underscore slug", named{ID: "saas_launch"}, false},
		{"trailing dash slug", named{ID: "saas-"}, false},
		{"double dash slug", named{ID: "saas--launch"}, false},
		{"space in slug", named{ID: "saas launch"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.value)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRegisterEngineValidators_FiniteIgnoresNonFloats(t *testing.T) {
	v := newEngineValidator()

	type counted struct {
		Count int `validate:"finite"`
	}
	assert.NoError(t, v.Struct(counted{Count: 3}))
}
