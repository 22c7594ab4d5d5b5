package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath  string
	profileMode string
	profileDir  string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "spoketube",
		Short: "Fit and geometrically correct spoke tube predictors",
		Long: `spoketube fits a small autoregressive predictor to every graph of a training set,
pulls the raw predictions toward the end to end line, clamps them into a tube around
a polynomial fit of the true values, smooths sharp turns and re-tunes the per step
weights against the corrected predictions.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to a YAML config file, defaults are used when empty")
	rootCmd.PersistentFlags().StringVar(&flags.profileMode, "profile", "", "Profile the run: cpu or mem")
	rootCmd.PersistentFlags().StringVar(&flags.profileDir, "profile-dir", ".", "Directory profiles are written to")

	rootCmd.AddCommand(newTrainCmd(flags), newEvaluateCmd(flags))
	return rootCmd
}
