package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEvaluateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate",
		Short: "Report the zero weight baseline loss of the validation and test sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, cleanup, err := setup(flags)
			if err != nil {
				return err
			}
			defer cleanup()

			metrics, err := r.Evaluate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "val loss: %.6f\ntest loss: %.6f\n", metrics.ValLoss, metrics.TestLoss)
			return nil
		},
	}
}
