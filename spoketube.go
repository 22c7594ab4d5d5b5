// Package spoketube fits a small autoregressive predictor to each labeled series, corrects
// the raw predictions geometrically and re-tunes the per-step weights against the
// corrected series.
package spoketube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/aouyang1/go-spoketube/correction"
	"github.com/aouyang1/go-spoketube/predictor"
	"github.com/aouyang1/go-spoketube/series"
)

// Trainer runs the forward fit, correction and refinement pipeline over a series
type Trainer struct {
	opt *Options

	fitter    *predictor.Fitter
	refiner   *predictor.Fitter
	corrector *correction.Corrector
}

// New creates a new Trainer using the provided options. If no options are provided a
// default is used.
func New(opt *Options) (*Trainer, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid options, %w", err)
	}

	fitter, err := predictor.NewFitter(opt.FitRounds, opt.LearningRate)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize fitter, %w", err)
	}
	refiner, err := predictor.NewFitter(opt.RefineRounds, opt.LearningRate)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize refiner, %w", err)
	}
	corrector, err := correction.New(opt.CorrectionOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize corrector, %w", err)
	}

	return &Trainer{
		opt:       opt,
		fitter:    fitter,
		refiner:   refiner,
		corrector: corrector,
	}, nil
}

// Options returns a copy of the validated options in use
func (t *Trainer) Options() Options {
	return *t.opt
}

// Rand returns the random stream reserved for the graph at idx
func (t *Trainer) Rand(idx int) *rand.Rand {
	return rand.New(rand.NewPCG(t.opt.Seed, uint64(idx)))
}

// Train fits one series. rng drives weight initialization and every random sign draw; if
// nil the stream for index 0 is used.
func (t *Trainer) Train(s *series.Series, rng *rand.Rand) (*Results, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("unable to train series, %w", err)
	}
	if rng == nil {
		rng = t.Rand(0)
	}

	raw, weightSets := t.forward(s, rng)

	art, err := t.corrector.Correct(s.X, s.Y, raw)
	if err != nil {
		return nil, fmt.Errorf("unable to correct predictions, %w", err)
	}

	t.refine(s, art.Corrected, weightSets, rng)

	scores, err := NewScores(art.Corrected, s.Y)
	if err != nil {
		return nil, fmt.Errorf("unable to score corrected predictions, %w", err)
	}

	return &Results{
		Label:          s.Label,
		X:              append([]float64(nil), s.X...),
		RawPreds:       raw,
		CorrectedPreds: art.Corrected,
		WeightSets:     weightSets,
		L1Line:         art.L1Line,
		TubeUpper:      art.Upper,
		TubeLower:      art.Lower,
		Scores:         scores,
	}, nil
}

// forward walks the series from the end of the warm start window, fitting the running
// weights to each true value before forecasting it. One snapshot of the weights is kept
// per forecast step.
func (t *Trainer) forward(s *series.Series, rng *rand.Rand) ([]float64, []predictor.Weights) {
	n := s.Len()

	preds := make([]float64, series.WindowSize, n)
	copy(preds, s.Y[:series.WindowSize])
	weightSets := make([]predictor.Weights, 0, n-series.WindowSize)

	w := predictor.NewRandomWeights(rng, t.opt.InitScale)
	for i := series.WindowSize; i < n; i++ {
		window := preds[len(preds)-series.WindowSize:]
		slopes := s.SlopeWindow(i)

		t.fitter.Fit(rng, window, slopes, s.Y[i], w)
		preds = append(preds, predictor.Predict(window, slopes, w))
		weightSets = append(weightSets, w.Copy())
	}
	return preds, weightSets
}

// refine re-tunes each step's weight snapshot in place toward the corrected value using
// the corrected series as history.
func (t *Trainer) refine(s *series.Series, corrected []float64, weightSets []predictor.Weights, rng *rand.Rand) {
	for i := series.WindowSize; i < len(corrected); i++ {
		window := corrected[i-series.WindowSize : i]
		t.refiner.Fit(rng, window, s.SlopeWindow(i), corrected[i], weightSets[i-series.WindowSize])
	}
}

// TrainAll fits every graph, running up to Parallelization graphs at once. Graph i always
// draws from Rand(i) so results do not depend on the parallelization. The result slice is
// aligned with graphs; failed graphs are left nil and their errors joined. Once ctx is done
// no further graphs are started and the context error is included.
func (t *Trainer) TrainAll(ctx context.Context, graphs []*series.Series) ([]*Results, error) {
	results := make([]*Results, len(graphs))
	errs := make([]error, 0, len(graphs)+1)
	graphErrs := make([]error, len(graphs))

	sem := make(chan struct{}, t.opt.Parallelization)
	var wg sync.WaitGroup
	for i, g := range graphs {
		select {
		case <-ctx.Done():
		case sem <- struct{}{}:
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		wg.Add(1)
		go func(i int, g *series.Series) {
			defer func() {
				wg.Done()
				<-sem
			}()
			res, err := t.Train(g, t.Rand(i))
			if err != nil {
				slog.Warn("unable to train graph", "index", i, "error", err.Error())
				graphErrs[i] = fmt.Errorf("graph %d, %w", i, err)
				return
			}
			results[i] = res
		}(i, g)
	}
	wg.Wait()

	return results, errors.Join(append(errs, graphErrs...)...)
}
