package predictor

import (
	"fmt"
	"math/rand/v2"
)

const (
	// LinearDim is the number of coefficients applied to the slope window
	LinearDim = 12

	// NonlinearDim is the number of nonlinear adjustment coefficients
	NonlinearDim = 2

	// Dim is the full length of a weight vector
	Dim = LinearDim + NonlinearDim
)

// Weights are the fittable parameters of the predictor. The first LinearDim values
// scale the slope window, the next scales the mean squared slope and the last scales
// the product of the two most recent slopes.
type Weights []float64

// NewWeights returns an all zero weight vector
func NewWeights() Weights {
	return make(Weights, Dim)
}

// NewRandomWeights draws every component from a normal distribution scaled by scale
func NewRandomWeights(rng *rand.Rand, scale float64) Weights {
	w := NewWeights()
	for i := range w {
		w[i] = rng.NormFloat64() * scale
	}
	return w
}

// Copy returns an independent snapshot of the weights
func (w Weights) Copy() Weights {
	c := make(Weights, len(w))
	copy(c, w)
	return c
}

func (w Weights) Linear() []float64 {
	return w[:LinearDim]
}

// Label names the weight component at index i. Linear weights are named by how many steps
// back the slope they scale sits.
func Label(i int) string {
	switch {
	case i >= 0 && i < LinearDim:
		return fmt.Sprintf("slope_lag_%d", LinearDim-i)
	case i == LinearDim:
		return "mean_sq_slope"
	case i == LinearDim+1:
		return "slope_cross"
	}
	return fmt.Sprintf("w%d", i)
}
