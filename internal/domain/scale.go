package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Scale holds the inclusive bounds of a score scale.
type Scale struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// DefaultScale returns the 0-10 scale used when a specification omits one.
func DefaultScale() Scale { return Scale{Min: 0, Max: 10} }

// ParseScale parses descriptors such as "0-10" or "1 - 5".
func ParseScale(s string) (Scale, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Scale{}, fmt.Errorf("%w: empty scale", ErrInvalidScale)
	}

	// Skip a leading sign so "-5-5" splits on the separator, not the sign.
	sep := strings.Index(s[1:], "-")
	if sep < 0 {
		return Scale{}, fmt.Errorf("%w: %q is not of the form lo-hi", ErrInvalidScale, s)
	}
	sep++

	lo, err := strconv.ParseFloat(strings.TrimSpace(s[:sep]), 64)
	if err != nil {
		return Scale{}, fmt.Errorf("%w: lower bound of %q: %v", ErrInvalidScale, s, err)
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(s[sep+1:]), 64)
	if err != nil {
		return Scale{}, fmt.Errorf("%w: upper bound of %q: %v", ErrInvalidScale, s, err)
	}
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) || lo >= hi {
		return Scale{}, fmt.Errorf("%w: %q must have finite bounds with lo < hi", ErrInvalidScale, s)
	}
	return Scale{Min: lo, Max: hi}, nil
}

// Clamp limits v to the scale bounds and reports whether it was changed.
func (s Scale) Clamp(v float64) (float64, bool) {
	switch {
	case v < s.Min:
		return s.Min, true
	case v > s.Max:
		return s.Max, true
	default:
		return v, false
	}
}

// Contains reports whether v lies within the bounds.
func (s Scale) Contains(v float64) bool { return v >= s.Min && v <= s.Max }

// String renders the scale in its descriptor form.
func (s Scale) String() string {
	return strconv.FormatFloat(s.Min, 'g', -1, 64) + "-" + strconv.FormatFloat(s.Max, 'g', -1, 64)
}
