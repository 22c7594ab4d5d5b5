// Package runner drives a full training run: it loads the train, validation and test graphs,
// trains every training graph and writes per graph outputs along with run metrics.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aouyang1/go-spoketube"
	"github.com/aouyang1/go-spoketube/internal/config"
	"github.com/aouyang1/go-spoketube/series"
	"github.com/aouyang1/go-spoketube/stats"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

const (
	RunDirPrefix    = "spoke_tube_"
	MetricsFilename = "metrics.json"
)

var ErrNoConfig = errors.New("no config provided")

// Metrics summarizes a run. TrainLoss holds the corrected prediction error of every training
// graph in order; failed graphs are skipped. OutlierGraphs lists the indices of graphs whose
// train loss lies outside the configured Tukey fences.
type Metrics struct {
	TrainLoss     []float64 `json:"train_loss"`
	ValLoss       float64   `json:"val_loss"`
	TestLoss      float64   `json:"test_loss"`
	OutlierGraphs []int     `json:"outlier_graphs,omitempty"`
}

// MeanTrainLoss returns the mean of TrainLoss or 0 if empty
func (m *Metrics) MeanTrainLoss() float64 {
	if len(m.TrainLoss) == 0 {
		return 0
	}
	return stat.Mean(m.TrainLoss, nil)
}

type predsFile struct {
	Raw       []float64 `json:"raw"`
	Corrected []float64 `json:"corrected"`
	L1Line    []float64 `json:"l1_line"`
	TubeUpper []float64 `json:"tube_upper"`
	TubeLower []float64 `json:"tube_lower"`
}

// Runner executes train and evaluate runs for a configuration
type Runner struct {
	cfg     *config.Config
	log     zerolog.Logger
	trainer *spoketube.Trainer

	now func() time.Time
}

// New validates the configuration and prepares a trainer from it
func New(cfg *config.Config, log zerolog.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, ErrNoConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	trainer, err := spoketube.New(cfg.Options())
	if err != nil {
		return nil, fmt.Errorf("unable to initialize trainer, %w", err)
	}
	return &Runner{
		cfg:     cfg,
		log:     log,
		trainer: trainer,
		now:     time.Now,
	}, nil
}

// RunDir returns the output directory name for a run started at t
func (r *Runner) RunDir(t time.Time) string {
	return filepath.Join(r.cfg.ResultsRoot, fmt.Sprintf("%s%d", RunDirPrefix, t.Unix()))
}

// Train trains every graph in the training set, writes their weights, predictions and plots
// into a new run directory and finishes with the baseline validation and test losses. The
// run directory is returned even when some graphs failed so partial outputs can be found.
func (r *Runner) Train(ctx context.Context) (string, *Metrics, error) {
	graphs, err := series.LoadFile(r.cfg.Data.Train)
	if err != nil {
		return "", nil, fmt.Errorf("unable to load training graphs, %w", err)
	}
	r.log.Info().Int("graphs", len(graphs)).Str("path", r.cfg.Data.Train).Msg("loaded training graphs")

	outDir := r.RunDir(r.now())
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("unable to create run directory, %w", err)
	}

	if err := ctx.Err(); err != nil {
		return outDir, nil, err
	}
	start := time.Now()
	results, trainErr := r.trainer.TrainAll(ctx, graphs)
	r.log.Debug().Dur("elapsed", time.Since(start)).Msg("trained graphs")
	if err := ctx.Err(); err != nil {
		return outDir, nil, err
	}

	metrics := &Metrics{TrainLoss: make([]float64, 0, len(graphs))}
	trained := make([]int, 0, len(graphs))
	for i, res := range results {
		if err := ctx.Err(); err != nil {
			return outDir, nil, err
		}
		if res == nil {
			continue
		}
		if err := r.writeGraph(outDir, i, graphs[i], res); err != nil {
			return outDir, nil, fmt.Errorf("graph %d, %w", i, err)
		}
		metrics.TrainLoss = append(metrics.TrainLoss, res.Scores.MSE)
		trained = append(trained, i)
		r.log.Info().
			Int("index", i).
			Str("label", res.Label).
			Float64("train_loss", res.Scores.MSE).
			Msg("graph trained")
	}
	if trainErr != nil {
		r.log.Error().Err(trainErr).Msg("some graphs failed to train")
	}

	if err := r.flagOutliers(metrics, trained); err != nil {
		return outDir, nil, err
	}

	if err := ctx.Err(); err != nil {
		return outDir, nil, err
	}
	if err := r.evaluate(metrics); err != nil {
		return outDir, nil, err
	}
	if err := writeJSON(filepath.Join(outDir, MetricsFilename), metrics); err != nil {
		return outDir, nil, err
	}

	r.log.Info().
		Float64("mean_train_loss", metrics.MeanTrainLoss()).
		Float64("val_loss", metrics.ValLoss).
		Float64("test_loss", metrics.TestLoss).
		Str("dir", outDir).
		Msg("run complete")
	return outDir, metrics, trainErr
}

// Evaluate computes only the baseline validation and test losses
func (r *Runner) Evaluate(ctx context.Context) (*Metrics, error) {
	metrics := &Metrics{}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.evaluate(metrics); err != nil {
		return nil, err
	}
	r.log.Info().
		Float64("val_loss", metrics.ValLoss).
		Float64("test_loss", metrics.TestLoss).
		Msg("evaluation complete")
	return metrics, nil
}

// flagOutliers records the graphs whose train loss falls outside the Tukey fences. trained
// maps each TrainLoss entry back to its graph index.
func (r *Runner) flagOutliers(metrics *Metrics, trained []int) error {
	idx, err := stats.DetectOutliers(metrics.TrainLoss, r.cfg.FenceOptions())
	if err != nil {
		return fmt.Errorf("unable to detect outlier graphs, %w", err)
	}
	for _, i := range idx {
		metrics.OutlierGraphs = append(metrics.OutlierGraphs, trained[i])
		r.log.Warn().
			Int("index", trained[i]).
			Float64("train_loss", metrics.TrainLoss[i]).
			Msg("train loss is an outlier")
	}
	return nil
}

func (r *Runner) evaluate(metrics *Metrics) error {
	var err error
	if metrics.ValLoss, err = r.baseline("validation", r.cfg.Data.Val); err != nil {
		return err
	}
	if metrics.TestLoss, err = r.baseline("test", r.cfg.Data.Test); err != nil {
		return err
	}
	return nil
}

// baseline loads the graphs at path and returns their mean baseline error. An empty path is
// skipped with a zero loss.
func (r *Runner) baseline(name, path string) (float64, error) {
	if path == "" {
		r.log.Debug().Str("set", name).Msg("no path configured, skipping")
		return 0, nil
	}
	graphs, err := series.LoadFile(path)
	if err != nil {
		return 0, fmt.Errorf("unable to load %s graphs, %w", name, err)
	}
	loss, err := spoketube.Evaluate(graphs)
	if err != nil {
		return 0, fmt.Errorf("unable to evaluate %s graphs, %w", name, err)
	}
	r.log.Debug().Str("set", name).Int("graphs", len(graphs)).Float64("loss", loss).Msg("evaluated baseline")
	return loss, nil
}

func (r *Runner) writeGraph(outDir string, idx int, g *series.Series, res *spoketube.Results) error {
	if err := writeJSON(filepath.Join(outDir, fmt.Sprintf("graph_%d_weights.json", idx)), res.WeightSets); err != nil {
		return err
	}
	preds := predsFile{
		Raw:       res.RawPreds,
		Corrected: res.CorrectedPreds,
		L1Line:    res.L1Line,
		TubeUpper: res.TubeUpper,
		TubeLower: res.TubeLower,
	}
	if err := writeJSON(filepath.Join(outDir, fmt.Sprintf("graph_%d_preds.json", idx)), preds); err != nil {
		return err
	}
	if !r.cfg.Plot {
		return nil
	}

	file, err := os.Create(filepath.Join(outDir, fmt.Sprintf("graph_%d_plot.html", idx)))
	if err != nil {
		return fmt.Errorf("unable to create plot file, %w", err)
	}
	if err := res.PlotFit(file, g); err != nil {
		file.Close()
		return fmt.Errorf("unable to plot graph, %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("unable to close plot file, %w", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal %s, %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("unable to write %s, %w", filepath.Base(path), err)
	}
	return nil
}
