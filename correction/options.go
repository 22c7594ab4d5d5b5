package correction

import (
	"errors"
	"fmt"
)

const (
	DefaultAlignStrength = 0.4
	DefaultTubeOffset    = 0.1
	DefaultAngleLimitDeg = 45.0
	DefaultTubeDegree    = 2
)

var (
	ErrAlignStrengthRange = errors.New("align strength must be within [0, 1]")
	ErrNegativeTubeOffset = errors.New("tube offset must not be negative")
	ErrAngleLimitRange    = errors.New("angle limit must be within [0, 90] degrees")
	ErrNegativeTubeDegree = errors.New("tube degree must not be negative")
)

// Options configures the three correction stages
type Options struct {
	// AlignStrength is the fraction each raw prediction moves toward the L1 line
	AlignStrength float64 `json:"align_strength"`

	// TubeOffset is the half width of the band around the polynomial center line
	TubeOffset float64 `json:"tube_offset"`

	// AngleLimitDeg is the turning angle above which a point is replaced by a midpoint
	AngleLimitDeg float64 `json:"angle_limit_deg"`

	// TubeDegree is the degree of the least squares polynomial through the true series
	TubeDegree int `json:"tube_degree"`
}

// NewDefaultOptions returns the default correction options
func NewDefaultOptions() *Options {
	return &Options{
		AlignStrength: DefaultAlignStrength,
		TubeOffset:    DefaultTubeOffset,
		AngleLimitDeg: DefaultAngleLimitDeg,
		TubeDegree:    DefaultTubeDegree,
	}
}

// Validate returns a validated copy of the options, falling back to defaults when nil
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.AlignStrength < 0 || o.AlignStrength > 1 {
		return nil, fmt.Errorf("got %g, %w", o.AlignStrength, ErrAlignStrengthRange)
	}
	if o.TubeOffset < 0 {
		return nil, fmt.Errorf("got %g, %w", o.TubeOffset, ErrNegativeTubeOffset)
	}
	if o.AngleLimitDeg < 0 || o.AngleLimitDeg > 90 {
		return nil, fmt.Errorf("got %g, %w", o.AngleLimitDeg, ErrAngleLimitRange)
	}
	if o.TubeDegree < 0 {
		return nil, fmt.Errorf("got %d, %w", o.TubeDegree, ErrNegativeTubeDegree)
	}
	out := *o
	return &out, nil
}
