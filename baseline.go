package spoketube

import (
	"fmt"

	"github.com/aouyang1/go-spoketube/predictor"
	"github.com/aouyang1/go-spoketube/series"
	"gonum.org/v1/gonum/stat"
)

// Baseline walks the series forward with frozen all zero weights and no fitting and
// returns the mean squared error of that trace against the true values. It is a reference
// figure only.
func Baseline(s *series.Series) (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, fmt.Errorf("unable to evaluate baseline, %w", err)
	}

	n := s.Len()
	preds := make([]float64, series.WindowSize, n)
	copy(preds, s.Y[:series.WindowSize])

	w := predictor.NewWeights()
	for i := series.WindowSize; i < n; i++ {
		window := preds[len(preds)-series.WindowSize:]
		preds = append(preds, predictor.Predict(window, s.SlopeWindow(i), w))
	}
	return MSE(preds, s.Y)
}

// Evaluate returns the mean baseline error across graphs, or 0 when there are none
func Evaluate(graphs []*series.Series) (float64, error) {
	if len(graphs) == 0 {
		return 0, nil
	}
	losses := make([]float64, len(graphs))
	for i, g := range graphs {
		mse, err := Baseline(g)
		if err != nil {
			return 0, fmt.Errorf("graph %d, %w", i, err)
		}
		losses[i] = mse
	}
	return stat.Mean(losses, nil), nil
}
