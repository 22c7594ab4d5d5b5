// Package predictor implements the 14 weight autoregressive step predictor and the
// randomized sign rule used to fit it one target at a time.
package predictor

import (
	"github.com/aouyang1/go-spoketube/floatsunrolled"
	"gonum.org/v1/gonum/floats"
)

// Predict forecasts the next value from the most recent value of window and the most
// recent LinearDim slopes:
//
//	window[-1] + dot(slopes, w[:12]) + w[12]*mean(slopes^2) + w[13]*slopes[-1]*slopes[-2]
//
// When fewer than LinearDim slopes are given the linear term uses the leading weights.
// window must not be empty.
func Predict(window, slopes []float64, w Weights) float64 {
	base := window[len(window)-1]
	if len(slopes) > LinearDim {
		slopes = slopes[len(slopes)-LinearDim:]
	}
	n := len(slopes)
	if n == 0 {
		return base
	}

	var linear, sumSq float64
	if n == LinearDim {
		linear = floatsunrolled.Dot(slopes, w.Linear())
		sumSq = floatsunrolled.SumSquares(slopes)
	} else {
		linear = floats.Dot(slopes, w[:n])
		sumSq = floats.Dot(slopes, slopes)
	}

	nl1 := w[LinearDim] * sumSq / float64(n)

	var nl2 float64
	if n >= 2 {
		nl2 = w[LinearDim+1] * slopes[n-1] * slopes[n-2]
	}
	return base + linear + nl1 + nl2
}
