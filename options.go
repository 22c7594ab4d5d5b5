package spoketube

import (
	"errors"
	"fmt"

	"github.com/aouyang1/go-spoketube/correction"
	"github.com/aouyang1/go-spoketube/predictor"
)

const (
	DefaultFitRounds    = 50
	DefaultRefineRounds = 20
	DefaultLearningRate = 0.05
	DefaultInitScale    = 0.01
)

var (
	ErrNegativeInitScale       = errors.New("initial weight scale must not be negative")
	ErrUnsupportedWeightDim    = fmt.Errorf("weight dimension must be %d", predictor.Dim)
	ErrNegativeParallelization = errors.New("parallelization must not be negative")
)

// Options configures the trainer. The correction stage options are nested under
// CorrectionOptions.
type Options struct {
	// FitRounds is the number of update rounds run at each forecast step
	FitRounds int `json:"fit_rounds"`

	// RefineRounds is the number of update rounds run per step against the corrected series
	RefineRounds int `json:"refine_rounds"`

	LearningRate float64 `json:"learning_rate"`

	// InitScale scales the standard normal draws used to initialize a series' weights. Zero
	// starts every series from all zero weights.
	InitScale float64 `json:"init_scale"`

	// WeightDim must match predictor.Dim. A zero value is treated as predictor.Dim.
	WeightDim int `json:"weight_dim"`

	// Seed selects the random streams. Graph i of a TrainAll call always draws from stream i.
	Seed uint64 `json:"seed"`

	// Parallelization sets how many graphs to train at once. A zero value trains one at a time.
	Parallelization int `json:"parallelization"`

	CorrectionOptions *correction.Options `json:"correction_options"`
}

// NewDefaultOptions returns the default trainer options
func NewDefaultOptions() *Options {
	return &Options{
		FitRounds:         DefaultFitRounds,
		RefineRounds:      DefaultRefineRounds,
		LearningRate:      DefaultLearningRate,
		InitScale:         DefaultInitScale,
		WeightDim:         predictor.Dim,
		Parallelization:   1,
		CorrectionOptions: correction.NewDefaultOptions(),
	}
}

// Validate returns a validated copy of the options, falling back to defaults if nil
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	out := *o

	if out.WeightDim == 0 {
		out.WeightDim = predictor.Dim
	}
	if out.WeightDim != predictor.Dim {
		return nil, fmt.Errorf("got %d, %w", out.WeightDim, ErrUnsupportedWeightDim)
	}
	if out.InitScale < 0 {
		return nil, fmt.Errorf("got %g, %w", out.InitScale, ErrNegativeInitScale)
	}
	if out.Parallelization < 0 {
		return nil, fmt.Errorf("got %d, %w", out.Parallelization, ErrNegativeParallelization)
	}
	if out.Parallelization == 0 {
		out.Parallelization = 1
	}

	corrOpt, err := out.CorrectionOptions.Validate()
	if err != nil {
		return nil, err
	}
	out.CorrectionOptions = corrOpt
	return &out, nil
}
