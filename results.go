package spoketube

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aouyang1/go-spoketube/predictor"
)

// Results holds every output of training one series. All prediction sequences are aligned
// with X; WeightSets has one entry per forecast step starting at the end of the warm start
// window.
type Results struct {
	Label          string              `json:"label,omitempty"`
	X              []float64           `json:"x_all"`
	RawPreds       []float64           `json:"raw_preds"`
	CorrectedPreds []float64           `json:"corrected_preds"`
	WeightSets     []predictor.Weights `json:"weight_sets"`
	L1Line         []float64           `json:"l1_line"`
	TubeUpper      []float64           `json:"tube_upper"`
	TubeLower      []float64           `json:"tube_lower"`
	Scores         *Scores             `json:"scores"`
}

// FinalWeights returns the refined weights of the last forecast step or nil if there are none
func (r *Results) FinalWeights() predictor.Weights {
	if r == nil || len(r.WeightSets) == 0 {
		return nil
	}
	return r.WeightSets[len(r.WeightSets)-1].Copy()
}

func indentExpand(indent string, growth int) string {
	out := make([]byte, 0, len(indent)*growth)
	for i := 0; i < growth; i++ {
		out = append(out, indent...)
	}
	return string(out)
}

// TablePrint writes a human readable summary of the results with the scores and the
// refined weights of the final step.
func (r *Results) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%s%sGraph: %s\n", prefix, indentExpand(indent, 0), r.Label); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sPoints: %d    Steps: %d\n",
		prefix, indentExpand(indent, 1), len(r.X), len(r.WeightSets)); err != nil {
		return err
	}

	if r.Scores != nil {
		if _, err := fmt.Fprintf(w, "%s%sScores:\n", prefix, indentExpand(indent, 1)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s%sMAPE: %.3f    MSE: %.3f    R2: %.3f\n",
			prefix, indentExpand(indent, 2),
			r.Scores.MAPE,
			r.Scores.MSE,
			r.Scores.R2,
		); err != nil {
			return err
		}
	}

	final := r.FinalWeights()
	if final == nil {
		_, err := fmt.Fprintf(w, "%s%sFinal Weights: None\n", prefix, indentExpand(indent, 1))
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sFinal Weights:\n", prefix, indentExpand(indent, 1)); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sLabel\tValue\t\n", prefix, indentExpand(indent, 2)); err != nil {
		return err
	}
	for i, v := range final {
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%.4f\t\n",
			prefix, indentExpand(indent, 2), predictor.Label(i), v); err != nil {
			return err
		}
	}
	return tbl.Flush()
}
