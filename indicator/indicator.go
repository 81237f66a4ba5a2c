// Package indicator computes technical indicators over price data.
//
// Every function returns sequences aligned index-for-index with the input:
// position i of an output describes bar i. Positions inside the lookback
// window carry no value, and Sequence reports that explicitly instead of
// substituting zero or NaN.
package indicator

import (
	"encoding/json"
	"errors"
)

var (
	// ErrInvalidPeriod marks a non-positive or otherwise unusable period.
	ErrInvalidPeriod = errors.New("invalid indicator period")
	// ErrInsufficientData marks a series shorter than the required lookback.
	ErrInsufficientData = errors.New("insufficient data for lookback")
)

// Sequence is a numeric series aligned with the bars it was computed from.
// Elements are undefined until the lookback window fills.
type Sequence struct {
	values []float64
	valid  []bool
}

// NewSequence returns a Sequence of length n with every element undefined.
func NewSequence(n int) Sequence {
	return Sequence{values: make([]float64, n), valid: make([]bool, n)}
}

func (s Sequence) Len() int { return len(s.values) }

// At returns the value at i and whether it is defined.
func (s Sequence) At(i int) (float64, bool) {
	if i < 0 || i >= len(s.values) || !s.valid[i] {
		return 0, false
	}
	return s.values[i], true
}

// Valid reports whether position i holds a defined value.
func (s Sequence) Valid(i int) bool {
	return i >= 0 && i < len(s.valid) && s.valid[i]
}

// Set defines the value at i. Sequences share backing storage when copied,
// so producers build a Sequence once and hand it out as a value.
func (s Sequence) Set(i int, v float64) {
	s.values[i] = v
	s.valid[i] = true
}

// MarshalJSON emits one entry per bar, null where the value is undefined.
func (s Sequence) MarshalJSON() ([]byte, error) {
	out := make([]*float64, len(s.values))
	for i := range s.values {
		if s.valid[i] {
			v := s.values[i]
			out[i] = &v
		}
	}
	return json.Marshal(out)
}
