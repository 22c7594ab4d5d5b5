// Package correction applies the line-pull, tube-clamp and angle-smoothing stages to a raw
// prediction trace.
package correction

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyTrace        = errors.New("empty prediction trace")
	ErrSeriesLenMismatch = errors.New("x and y have different lengths")
	ErrTraceTooLong      = errors.New("prediction trace is longer than the series")
)

// Artifacts holds every intermediate sequence of a correction, all aligned to the trace
type Artifacts struct {
	Pulled    []float64 `json:"pulled"`
	L1Line    []float64 `json:"l1_line"`
	Center    []float64 `json:"center"`
	Upper     []float64 `json:"tube_upper"`
	Lower     []float64 `json:"tube_lower"`
	Clamped   []float64 `json:"clamped"`
	Corrected []float64 `json:"corrected"`
}

// Corrector runs the three correction stages with a fixed set of options
type Corrector struct {
	opt *Options
}

// New creates a corrector using the provided options. If no options are provided a
// default is used.
func New(opt *Options) (*Corrector, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Corrector{opt: opt}, nil
}

// Options returns the options in use
func (c *Corrector) Options() Options {
	return *c.opt
}

// Correct pulls raw toward the line joining the first and last true values, clamps it to
// the tube around a polynomial fit of (x, y) and finally smooths sharp turns.
func (c *Corrector) Correct(x, y, raw []float64) (*Artifacts, error) {
	if len(raw) == 0 || len(y) == 0 {
		return nil, ErrEmptyTrace
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("x has length %d and y has length %d, %w", len(x), len(y), ErrSeriesLenMismatch)
	}
	if len(raw) > len(x) {
		return nil, fmt.Errorf("trace has length %d and series has length %d, %w", len(raw), len(x), ErrTraceTooLong)
	}

	pulled, line := LinePull(raw, y[0], y[len(y)-1], c.opt.AlignStrength)

	center, err := TubeCenter(x, y, x[:len(pulled)], c.opt.TubeDegree)
	if err != nil {
		return nil, err
	}
	clamped, upper, lower, err := TubeClamp(pulled, center, c.opt.TubeOffset)
	if err != nil {
		return nil, err
	}

	return &Artifacts{
		Pulled:    pulled,
		L1Line:    line,
		Center:    center,
		Upper:     upper,
		Lower:     lower,
		Clamped:   clamped,
		Corrected: AngleSmooth(clamped, c.opt.AngleLimitDeg),
	}, nil
}
