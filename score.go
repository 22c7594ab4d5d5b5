package spoketube

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrResLenMismatch = errors.New("predicted and actual have different lengths")
	ErrNoScoreData    = errors.New("no values to score")
)

// Scores tracks the fit scores
type Scores struct {
	MSE  float64 `json:"mean_squared_error"`
	MAPE float64 `json:"mean_average_percent_error"`
	R2   float64 `json:"r_squared"`
}

// NewScores calculates the fit scores given the predicted and actual input slice values
func NewScores(predicted, actual []float64) (*Scores, error) {
	mse, err := MSE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean squared error, %w", err)
	}
	mape, err := MAPE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean average percent error, %w", err)
	}
	rs, err := RSquared(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute r-squared, %w", err)
	}

	return &Scores{
		MSE:  mse,
		MAPE: mape,
		R2:   rs,
	}, nil
}

// scorePairs validates the inputs and returns the predicted/actual pairs where neither side is NaN.
func scorePairs(predicted, actual []float64) ([]float64, []float64, error) {
	if len(predicted) != len(actual) {
		return nil, nil, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	if len(actual) == 0 {
		return nil, nil, ErrNoScoreData
	}
	if !floats.HasNaN(predicted) && !floats.HasNaN(actual) {
		return predicted, actual, nil
	}

	p := make([]float64, 0, len(predicted))
	a := make([]float64, 0, len(actual))
	for i, v := range actual {
		if math.IsNaN(v) || math.IsNaN(predicted[i]) {
			continue
		}
		p = append(p, predicted[i])
		a = append(a, v)
	}
	if len(a) == 0 {
		return nil, nil, fmt.Errorf("all pairs contain NaN, %w", ErrNoScoreData)
	}
	return p, a, nil
}

// MSE computes the mean squared error over the pairs without NaNs. A score of 0 means a
// perfect match with no errors.
func MSE(predicted, actual []float64) (float64, error) {
	p, a, err := scorePairs(predicted, actual)
	if err != nil {
		return 0, err
	}
	dist := floats.Distance(p, a, 2)
	return dist * dist / float64(len(a)), nil
}

// MAPE calculates the mean average percent error, sum(abs((y-yhat)/y))/n. Zero actual values
// add nothing to the sum but still count towards n.
func MAPE(predicted, actual []float64) (float64, error) {
	p, a, err := scorePairs(predicted, actual)
	if err != nil {
		return 0, err
	}

	var mape float64
	for i, v := range a {
		if v == 0 {
			continue
		}
		mape += math.Abs((v - p[i]) / v)
	}
	return mape / float64(len(a)), nil
}

// RSquared computes the r squared value between the predicted and actual where 1.0 means perfect
// fit and 0 represents no relationship. A flat actual series scores 1.
func RSquared(predicted, actual []float64) (float64, error) {
	p, a, err := scorePairs(predicted, actual)
	if err != nil {
		return 0, err
	}
	r2 := stat.RSquaredFrom(p, a, nil)
	if math.IsNaN(r2) {
		return 1.0, nil
	}
	return r2, nil
}
