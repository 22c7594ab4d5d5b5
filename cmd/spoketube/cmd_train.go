package main

import (
	"errors"
	"fmt"

	"github.com/aouyang1/go-spoketube/internal/config"
	"github.com/aouyang1/go-spoketube/internal/logging"
	"github.com/aouyang1/go-spoketube/internal/runner"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

var ErrUnknownProfileMode = errors.New("unknown profile mode")

type stopper interface {
	Stop()
}

type noopStopper struct{}

func (noopStopper) Stop() {}

func startProfile(mode, dir string) (stopper, error) {
	opts := []func(*profile.Profile){profile.ProfilePath(dir), profile.Quiet, profile.NoShutdownHook}
	switch mode {
	case "":
		return noopStopper{}, nil
	case "cpu":
		return profile.Start(append(opts, profile.CPUProfile)...), nil
	case "mem":
		return profile.Start(append(opts, profile.MemProfile)...), nil
	}
	return nil, fmt.Errorf("got %q, %w", mode, ErrUnknownProfileMode)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default()
	}
	return config.Load(path)
}

// setup loads the config, opens the logger and starts profiling. The returned cleanup must
// be called once the command finishes.
func setup(flags *rootFlags) (*runner.Runner, func(), error) {
	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	r, err := runner.New(cfg, logger.Logger)
	if err != nil {
		logger.Close()
		return nil, nil, err
	}
	prof, err := startProfile(flags.profileMode, flags.profileDir)
	if err != nil {
		logger.Close()
		return nil, nil, err
	}
	cleanup := func() {
		prof.Stop()
		logger.Close()
	}
	return r, cleanup, nil
}

func newTrainCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Train every graph of the training set and write the run outputs",
		Long: `Train every graph of the training set and write per graph weights, predictions
and plots along with metrics.json into a new spoke_tube_<unix> directory under the
configured results root.

Examples:
  spoketube train --config config.yaml
  spoketube train --config config.yaml --profile cpu`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, cleanup, err := setup(flags)
			if err != nil {
				return err
			}
			defer cleanup()

			outDir, metrics, err := r.Train(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "results: %s\nmean train loss: %.6f\nval loss: %.6f\ntest loss: %.6f\n",
				outDir, metrics.MeanTrainLoss(), metrics.ValLoss, metrics.TestLoss)
			return nil
		},
	}
}
