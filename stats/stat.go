package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrPercentileRange = errors.New("percentiles must satisfy 0 <= lower <= upper <= 1")
	ErrNegativeFactor  = errors.New("tukey factor must not be negative")
)

// FenceOptions configures Tukey fences built from the inner percentile range of a sample
type FenceOptions struct {
	LowerPercentile float64 `json:"lower_percentile"`
	UpperPercentile float64 `json:"upper_percentile"`
	TukeyFactor     float64 `json:"tukey_factor"`
}

// NewDefaultFenceOptions returns the classic quartile fences with a factor of 1.5
func NewDefaultFenceOptions() *FenceOptions {
	return &FenceOptions{
		LowerPercentile: 0.25,
		UpperPercentile: 0.75,
		TukeyFactor:     1.5,
	}
}

// Validate falls back to defaults when nil and checks the percentiles and factor
func (o *FenceOptions) Validate() (*FenceOptions, error) {
	if o == nil {
		o = NewDefaultFenceOptions()
	}
	if o.LowerPercentile < 0 || o.UpperPercentile > 1 || o.LowerPercentile > o.UpperPercentile {
		return nil, fmt.Errorf("got [%g, %g], %w", o.LowerPercentile, o.UpperPercentile, ErrPercentileRange)
	}
	if o.TukeyFactor < 0 {
		return nil, fmt.Errorf("got %g, %w", o.TukeyFactor, ErrNegativeFactor)
	}
	return o, nil
}

// Fences returns the lower and upper Tukey fences of y. Both are NaN for an empty sample.
func Fences(y []float64, opt *FenceOptions) (float64, float64, error) {
	opt, err := opt.Validate()
	if err != nil {
		return 0, 0, err
	}
	if len(y) == 0 {
		return math.NaN(), math.NaN(), nil
	}

	yCopy := make([]float64, len(y))
	copy(yCopy, y)
	sort.Float64s(yCopy)

	last := len(yCopy) - 1
	lowerIdx := min(int(math.Floor(float64(last)*opt.LowerPercentile)), last)
	upperIdx := min(int(math.Ceil(float64(last)*opt.UpperPercentile)), last)

	lower := yCopy[lowerIdx]
	upper := yCopy[upperIdx]
	innerRange := upper - lower
	return lower - innerRange*opt.TukeyFactor, upper + innerRange*opt.TukeyFactor, nil
}

// DetectOutliers returns the indices of y that fall strictly outside the Tukey fences
func DetectOutliers(y []float64, opt *FenceOptions) ([]int, error) {
	lower, upper, err := Fences(y, opt)
	if err != nil {
		return nil, err
	}

	var outlierIdx []int
	for i := 0; i < len(y); i++ {
		if y[i] > upper || y[i] < lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx, nil
}
