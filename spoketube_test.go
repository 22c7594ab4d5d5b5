package spoketube

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/aouyang1/go-spoketube/correction"
	"github.com/aouyang1/go-spoketube/predictor"
	"github.com/aouyang1/go-spoketube/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func straightLine(t *testing.T, n int) *series.Series {
	t.Helper()
	x := series.GenerateX(n, 0, 1)
	s, err := series.New("line", x, x, series.GenerateConstY(n, 1))
	require.Nil(t, err)
	return s
}

func waveSeries(t testing.TB, label string, n int) *series.Series {
	x := series.GenerateX(n, 0, 0.5)
	y := series.GenerateLinearY(x, 3.0, 0.2).
		Add(series.GenerateWaveY(x, 2.0, 8.0, 0.0))
	s, err := series.Simulate(label, x, y)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestNew(t *testing.T) {
	testData := map[string]struct {
		opt *Options
		err error
	}{
		"nil options": {
			opt: nil,
		},
		"defaults": {
			opt: NewDefaultOptions(),
		},
		"negative fit rounds": {
			opt: &Options{FitRounds: -1, LearningRate: 0.05},
			err: predictor.ErrNegativeRounds,
		},
		"zero learning rate": {
			opt: &Options{FitRounds: 1},
			err: predictor.ErrNonPositiveLearnRate,
		},
		"bad correction options": {
			opt: &Options{
				LearningRate:      0.05,
				CorrectionOptions: &correction.Options{AlignStrength: 2.0},
			},
			err: correction.ErrAlignStrengthRange,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			tr, err := New(td.opt)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.NotNil(t, tr)
		})
	}
}

func TestTrainStraightLine(t *testing.T) {
	opt := NewDefaultOptions()
	opt.FitRounds = 0
	opt.InitScale = 0

	tr, err := New(opt)
	require.Nil(t, err)

	s := straightLine(t, 13)
	res, err := tr.Train(s, nil)
	require.Nil(t, err)

	require.Len(t, res.RawPreds, 13)
	require.Len(t, res.CorrectedPreds, 13)
	require.Len(t, res.WeightSets, 1)

	// warm start passes the true values through
	assert.Equal(t, s.Y[:series.WindowSize], res.RawPreds[:series.WindowSize])

	// zero weights forecast the most recent history value
	assert.Equal(t, 11.0, res.RawPreds[12])

	// pulled to 11.4 then clamped to the lower bound of the tube around 12
	c := res.CorrectedPreds[12]
	assert.InDelta(t, 11.9, c, 1e-6)
	assert.GreaterOrEqual(t, c, res.TubeLower[12])
	assert.LessOrEqual(t, c, res.TubeUpper[12])
	assert.InDelta(t, 11.9, res.TubeLower[12], 1e-6)
	assert.InDelta(t, 12.1, res.TubeUpper[12], 1e-6)

	for i, l := range res.L1Line {
		assert.InDelta(t, float64(i), l, 1e-12)
	}
	require.NotNil(t, res.Scores)
	assert.InDelta(t, 0.01/13.0, res.Scores.MSE, 1e-9)
}

func TestTrainWeightSetsLength(t *testing.T) {
	tr, err := New(nil)
	require.Nil(t, err)

	for _, n := range []int{13, 14, 25, 60} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			s := waveSeries(t, "wave", n)
			res, err := tr.Train(s, tr.Rand(0))
			require.Nil(t, err)
			assert.Len(t, res.WeightSets, n-series.WindowSize)
			assert.Len(t, res.RawPreds, n)
			assert.Len(t, res.CorrectedPreds, n)
			assert.Len(t, res.L1Line, n)
			assert.Len(t, res.TubeUpper, n)
			assert.Len(t, res.TubeLower, n)
			for _, w := range res.WeightSets {
				assert.Len(t, w, predictor.Dim)
			}
		})
	}
}

func TestTrainRejectsInvalidSeries(t *testing.T) {
	testData := map[string]struct {
		s   *series.Series
		err error
	}{
		"nil series": {
			s:   nil,
			err: series.ErrNoSeries,
		},
		"too short": {
			s: &series.Series{
				X:     series.GenerateX(12, 0, 1),
				Y:     series.GenerateX(12, 0, 1),
				Slope: series.GenerateConstY(12, 1),
			},
			err: series.ErrInsufficientLength,
		},
		"length mismatch": {
			s: &series.Series{
				X:     series.GenerateX(13, 0, 1),
				Y:     series.GenerateX(14, 0, 1),
				Slope: series.GenerateConstY(13, 1),
			},
			err: series.ErrLengthMismatch,
		},
	}

	tr, err := New(nil)
	require.Nil(t, err)

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := tr.Train(td.s, nil)
			assert.ErrorIs(t, err, td.err)
			assert.Nil(t, res)
		})
	}
}

func TestTrainReproducible(t *testing.T) {
	opt := NewDefaultOptions()
	opt.Seed = 42

	trA, err := New(opt)
	require.Nil(t, err)
	trB, err := New(opt)
	require.Nil(t, err)

	s := waveSeries(t, "wave", 40)
	resA, err := trA.Train(s, trA.Rand(3))
	require.Nil(t, err)
	resB, err := trB.Train(s, trB.Rand(3))
	require.Nil(t, err)
	assert.Equal(t, resA, resB)

	resC, err := trA.Train(s, trA.Rand(4))
	require.Nil(t, err)
	assert.NotEqual(t, resA.WeightSets, resC.WeightSets)
}

func TestTrainSnapshotsIndependent(t *testing.T) {
	tr, err := New(nil)
	require.Nil(t, err)

	s := waveSeries(t, "wave", 20)
	res, err := tr.Train(s, nil)
	require.Nil(t, err)
	require.Greater(t, len(res.WeightSets), 1)

	next := res.WeightSets[1][0]
	res.WeightSets[0][0] = 1e9
	assert.Equal(t, next, res.WeightSets[1][0])

	s.X[0] = -100
	assert.Equal(t, 0.0, res.X[0])
}

func TestTrainAllMatchesSequential(t *testing.T) {
	graphs := make([]*series.Series, 0, 6)
	for i := 0; i < 6; i++ {
		graphs = append(graphs, waveSeries(t, fmt.Sprintf("wave_%d", i), 20+5*i))
	}

	seqOpt := NewDefaultOptions()
	seqOpt.Seed = 7
	seq, err := New(seqOpt)
	require.Nil(t, err)

	parOpt := NewDefaultOptions()
	parOpt.Seed = 7
	parOpt.Parallelization = 4
	par, err := New(parOpt)
	require.Nil(t, err)

	seqRes, err := seq.TrainAll(context.Background(), graphs)
	require.Nil(t, err)
	parRes, err := par.TrainAll(context.Background(), graphs)
	require.Nil(t, err)

	require.Len(t, parRes, len(graphs))
	assert.Equal(t, seqRes, parRes)
	for i, res := range parRes {
		assert.Equal(t, graphs[i].Label, res.Label)
	}
}

func TestTrainAllJoinsErrors(t *testing.T) {
	short := &series.Series{
		X:     series.GenerateX(5, 0, 1),
		Y:     series.GenerateX(5, 0, 1),
		Slope: series.GenerateConstY(5, 1),
	}
	graphs := []*series.Series{
		waveSeries(t, "a", 20),
		short,
		waveSeries(t, "b", 20),
	}

	opt := NewDefaultOptions()
	opt.Parallelization = 2
	tr, err := New(opt)
	require.Nil(t, err)

	res, err := tr.TrainAll(context.Background(), graphs)
	require.Len(t, res, 3)
	assert.ErrorIs(t, err, series.ErrInsufficientLength)
	assert.Contains(t, err.Error(), "graph 1")
	assert.NotNil(t, res[0])
	assert.Nil(t, res[1])
	assert.NotNil(t, res[2])
}

func zeroSlopeSeries(t *testing.T, y []float64) *series.Series {
	t.Helper()
	s, err := series.New("flat slopes", series.GenerateX(len(y), 0, 1), y, series.GenerateConstY(len(y), 0))
	require.Nil(t, err)
	return s
}

func TestTrainRefine(t *testing.T) {
	waveX := series.GenerateX(24, 0, 1)
	wave := series.GenerateLinearY(waveX, 2.0, 0.1).
		Add(series.GenerateWaveY(waveX, 1.5, 7.0, 0.0))

	testData := map[string]struct {
		y            []float64
		initScale    float64
		refineRounds int
		check        func(t *testing.T, res *Results, baseline *Results)
	}{
		"no refine rounds keeps zero weights": {
			y:            wave,
			refineRounds: 0,
			check: func(t *testing.T, res *Results, _ *Results) {
				for _, w := range res.WeightSets {
					assert.Equal(t, predictor.NewWeights(), w)
				}
			},
		},
		"one round steps toward the corrected value": {
			y:            wave,
			refineRounds: 1,
			check: func(t *testing.T, res *Results, _ *Results) {
				var moved bool
				for k, w := range res.WeightSets {
					i := k + series.WindowSize
					expected := DefaultLearningRate * math.Abs(res.CorrectedPreds[i]-res.CorrectedPreds[i-1]) * predictor.StepScale
					if expected > 0 {
						moved = true
					}
					for j, v := range w {
						assert.InDelta(t, expected, math.Abs(v), 1e-15, "step %d weight %d", k, j)
					}
				}
				assert.True(t, moved)
			},
		},
		"corrected step matching the forecast leaves snapshots": {
			y:            series.GenerateConstY(20, 3.5),
			initScale:    0.5,
			refineRounds: 5,
			check: func(t *testing.T, res *Results, baseline *Results) {
				assert.Equal(t, baseline.WeightSets, res.WeightSets)
				assert.NotEqual(t, predictor.NewWeights(), res.WeightSets[0])
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			s := zeroSlopeSeries(t, td.y)

			opt := NewDefaultOptions()
			opt.FitRounds = 0
			opt.InitScale = td.initScale
			opt.RefineRounds = td.refineRounds
			tr, err := New(opt)
			require.Nil(t, err)
			res, err := tr.Train(s, tr.Rand(1))
			require.Nil(t, err)

			opt.RefineRounds = 0
			unrefined, err := New(opt)
			require.Nil(t, err)
			baseline, err := unrefined.Train(s, unrefined.Rand(1))
			require.Nil(t, err)

			require.Len(t, res.WeightSets, len(td.y)-series.WindowSize)
			td.check(t, res, baseline)
		})
	}
}

func TestTrainLargeXOffset(t *testing.T) {
	x := series.GenerateX(30, 1.7e9, 1)
	y := series.GenerateLinearY(series.GenerateX(30, 0, 1), 10.0, 0.5)
	s, err := series.Simulate("epoch", x, y)
	require.Nil(t, err)

	tr, err := New(nil)
	require.Nil(t, err)
	res, err := tr.Train(s, nil)
	require.Nil(t, err)
	require.Len(t, res.CorrectedPreds, 30)
	for i := range res.TubeUpper {
		assert.InDelta(t, y[i], (res.TubeUpper[i]+res.TubeLower[i])/2, 1e-6)
	}
}

func TestTrainAllCancelled(t *testing.T) {
	graphs := []*series.Series{
		waveSeries(t, "a", 20),
		waveSeries(t, "b", 20),
	}

	tr, err := New(NewDefaultOptions())
	require.Nil(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := tr.TrainAll(ctx, graphs)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, res, 2)
	assert.Nil(t, res[0])
	assert.Nil(t, res[1])
}

func TestTrainRepeatedX(t *testing.T) {
	x := series.GenerateX(20, 0, 1)
	x[10] = x[9]
	y := series.GenerateLinearY(x, 1.0, 0.5)
	s, err := series.Simulate("repeat", x, y)
	require.Nil(t, err)

	tr, err := New(nil)
	require.Nil(t, err)
	res, err := tr.Train(s, nil)
	require.Nil(t, err)
	require.Len(t, res.CorrectedPreds, 20)
	for _, v := range res.TubeUpper {
		assert.False(t, math.IsNaN(v))
	}
}
