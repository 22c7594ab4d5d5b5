package correction

import (
	"errors"
	"fmt"

	"github.com/aouyang1/go-spoketube/linearmodel"
	"gonum.org/v1/gonum/floats"
)

var ErrBoundsLenMismatch = errors.New("points and bounds have different lengths")

// TubeCenter fits a least squares polynomial of the given degree through (x, y) and
// evaluates it at every point of at.
func TubeCenter(x, y, at []float64, degree int) ([]float64, error) {
	model, err := linearmodel.NewPolyRegression(&linearmodel.PolyOptions{Degree: degree})
	if err != nil {
		return nil, err
	}
	if err := model.Fit(x, y); err != nil {
		return nil, fmt.Errorf("unable to fit tube center, %w", err)
	}
	return model.Predict(at)
}

// Clamp limits every point to [lower[i], upper[i]]. Points inside the bounds pass through
// unchanged and points outside are set exactly to the nearest bound.
func Clamp(points, lower, upper []float64) ([]float64, error) {
	if len(lower) != len(points) || len(upper) != len(points) {
		return nil, fmt.Errorf(
			"got %d points, %d lower and %d upper bounds, %w",
			len(points), len(lower), len(upper), ErrBoundsLenMismatch,
		)
	}
	out := make([]float64, len(points))
	for i, p := range points {
		switch {
		case p > upper[i]:
			out[i] = upper[i]
		case p < lower[i]:
			out[i] = lower[i]
		default:
			out[i] = p
		}
	}
	return out, nil
}

// TubeClamp builds the band center ± offset and clamps points into it, returning the
// clamped points along with the upper and lower bounds.
func TubeClamp(points, center []float64, offset float64) (clamped, upper, lower []float64, err error) {
	upper = append([]float64(nil), center...)
	floats.AddConst(offset, upper)
	lower = append([]float64(nil), center...)
	floats.AddConst(-offset, lower)
	clamped, err = Clamp(points, lower, upper)
	if err != nil {
		return nil, nil, nil, err
	}
	return clamped, upper, lower, nil
}
