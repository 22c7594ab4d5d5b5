package predictor

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

const (
	DefaultRounds       = 50
	DefaultLearningRate = 0.05

	// StepScale damps every update on top of the learning rate
	StepScale = 0.01
)

var (
	ErrNegativeRounds       = errors.New("negative number of rounds")
	ErrNonPositiveLearnRate = errors.New("learning rate must be positive")
)

// Fitter nudges a weight vector toward a single target value. It is not a gradient method:
// each round scales the signed forecast error by an independently drawn random sign per
// weight component.
type Fitter struct {
	Rounds       int
	LearningRate float64
}

// NewFitter returns a validated fitter
func NewFitter(rounds int, learningRate float64) (*Fitter, error) {
	if rounds < 0 {
		return nil, fmt.Errorf("got %d, %w", rounds, ErrNegativeRounds)
	}
	if learningRate <= 0 {
		return nil, fmt.Errorf("got %g, %w", learningRate, ErrNonPositiveLearnRate)
	}
	return &Fitter{Rounds: rounds, LearningRate: learningRate}, nil
}

// Fit mutates w in place over f.Rounds rounds so Predict(window, slopes, w) moves toward target.
func (f *Fitter) Fit(rng *rand.Rand, window, slopes []float64, target float64, w Weights) {
	for r := 0; r < f.Rounds; r++ {
		grad := Predict(window, slopes, w) - target
		step := f.LearningRate * grad * StepScale
		for i := range w {
			w[i] -= step * randomSign(rng)
		}
	}
}

// randomSign returns the sign of a standard normal draw
func randomSign(rng *rand.Rand) float64 {
	v := rng.NormFloat64()
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
