// Package series holds the labeled graphs the trainer consumes along with helpers to load
// and simulate them.
package series

import (
	"errors"
	"fmt"
	"math"
)

const (
	// WindowSize is the number of leading points used to seed prediction history
	WindowSize = 12

	// MinLength is the shortest series that still has a point to forecast
	MinLength = WindowSize + 1
)

var (
	ErrNoSeries           = errors.New("no series")
	ErrLengthMismatch     = errors.New("x, y and slope must have the same length")
	ErrInsufficientLength = fmt.Errorf("series must have at least %d points", MinLength)
	ErrNonMonotonic       = errors.New("x is decreasing")
	ErrNonFinite          = errors.New("series contains NaN or infinite values")
)

// Series is one graph made up of a monotonic coordinate x, the observed values y and a
// precomputed slope feature aligned index for index with y.
type Series struct {
	Label string    `json:"label,omitempty"`
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
	Slope []float64 `json:"slopes"`
}

// New returns a validated copy of the input slices as a Series
func New(label string, x, y, slope []float64) (*Series, error) {
	s := &Series{
		Label: label,
		X:     append([]float64(nil), x...),
		Y:     append([]float64(nil), y...),
		Slope: append([]float64(nil), slope...),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that the series can be walked forward by the predictor
func (s *Series) Validate() error {
	if s == nil {
		return ErrNoSeries
	}
	n := len(s.Y)
	if len(s.X) != n || len(s.Slope) != n {
		return fmt.Errorf(
			"x has length %d, y has length %d, slope has length %d, %w",
			len(s.X), n, len(s.Slope), ErrLengthMismatch,
		)
	}
	if n < MinLength {
		return fmt.Errorf("got %d points, %w", n, ErrInsufficientLength)
	}

	for i := 0; i < n; i++ {
		if !isFinite(s.X[i]) || !isFinite(s.Y[i]) || !isFinite(s.Slope[i]) {
			return fmt.Errorf("at index %d, %w", i, ErrNonFinite)
		}
		if i > 0 && s.X[i] < s.X[i-1] {
			return fmt.Errorf("decreasing at %d, %w", i, ErrNonMonotonic)
		}
	}
	return nil
}

// Len returns the number of points in the series
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Y)
}

// SlopeWindow returns the WindowSize slope values preceding index t
func (s *Series) SlopeWindow(t int) []float64 {
	return s.Slope[t-WindowSize : t]
}

// Copy returns a deep copy of the series
func (s *Series) Copy() *Series {
	return &Series{
		Label: s.Label,
		X:     append([]float64(nil), s.X...),
		Y:     append([]float64(nil), s.Y...),
		Slope: append([]float64(nil), s.Slope...),
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
