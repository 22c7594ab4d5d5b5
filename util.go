package spoketube

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/aouyang1/go-spoketube/predictor"
	"github.com/aouyang1/go-spoketube/series"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var ErrNoResults = errors.New("no results to plot")

// LineXY generates an echart multi-line chart for some arbitrary x/value combination. Every
// slice in y must have the same length as x; NaN values are left as gaps.
func LineXY(title string, seriesName []string, x []float64, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	lineData := make([][]opts.LineData, len(y))
	for i := 0; i < len(y); i++ {
		lineData[i] = make([]opts.LineData, 0, len(y[i]))
		for j := 0; j < len(y[i]); j++ {
			if math.IsNaN(y[i][j]) {
				lineData[i] = append(lineData[i], opts.LineData{Value: "-"})
				continue
			}
			lineData[i] = append(lineData[i], opts.LineData{Value: y[i][j]})
		}
	}

	line = line.SetXAxis(x)
	for i, name := range seriesName {
		line = line.AddSeries(name, lineData[i])
	}
	return line
}

// padFront returns vals prefixed with NaN so that it lines up with a sequence of length n
func padFront(vals []float64, n int) []float64 {
	out := make([]float64, n)
	pad := n - len(vals)
	for i := 0; i < pad; i++ {
		out[i] = math.NaN()
	}
	copy(out[pad:], vals)
	return out
}

// LineResults generates an echart line chart of the true values of a series along with the
// raw and corrected predictions and the correction guides.
func LineResults(s *series.Series, res *Results) *charts.Line {
	title := "Spoke Tube Fit"
	if res.Label != "" {
		title = fmt.Sprintf("%s: %s", title, res.Label)
	}
	n := len(res.X)
	return LineXY(
		title,
		[]string{"True", "Raw Pred", "Corrected", "L1 Line", "Tube Upper", "Tube Lower"},
		res.X,
		[][]float64{
			padFront(s.Y[:min(len(s.Y), n)], n),
			padFront(res.RawPreds, n),
			padFront(res.CorrectedPreds, n),
			padFront(res.L1Line, n),
			padFront(res.TubeUpper, n),
			padFront(res.TubeLower, n),
		},
	)
}

// LineWeights generates an echart line chart tracing every refined weight component across
// the forecast steps.
func LineWeights(res *Results) *charts.Line {
	n := len(res.X)
	names := make([]string, predictor.Dim)
	traces := make([][]float64, predictor.Dim)
	for j := 0; j < predictor.Dim; j++ {
		names[j] = predictor.Label(j)
		trace := make([]float64, len(res.WeightSets))
		for i, w := range res.WeightSets {
			trace[i] = w[j]
		}
		traces[j] = padFront(trace, n)
	}
	return LineXY("Refined Weights", names, res.X, traces)
}

// PlotFit uses the Apache Echarts library to render an html page showing the fit against the
// series it was trained on and the evolution of the refined weights.
func (r *Results) PlotFit(w io.Writer, s *series.Series) error {
	if r == nil || len(r.X) == 0 {
		return ErrNoResults
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("unable to plot fit, %w", err)
	}

	page := components.NewPage()
	page.AddCharts(
		LineResults(s, r),
		LineWeights(r),
	)
	return page.Render(w)
}
