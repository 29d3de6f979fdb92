package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tennisscore/tennisscore/pkg/scoring"
	"github.com/tennisscore/tennisscore/pkg/surface"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <log.json>",
		Short: "Check a point log and report where it stops being valid",
		Long: `Folds the longest valid prefix of the log and reports the first entry that
cannot be applied. The log file is never modified.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := loadMatchLog(args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			r, err := scoring.Reconcile(log.Points, log.Format)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Format:   %s\n", log.Format)
			fmt.Fprintf(out, "Valid:    %d of %d points\n", len(r.Points), len(log.Points))
			fmt.Fprintf(out, "Score:    %s\n", surface.Headline(r.Score))
			if r.Clean() {
				return nil
			}
			fmt.Fprintf(out, "Rejected: %d points starting at #%d\n", len(r.Rejected), r.Rejected[0].PointNumber)
			return fmt.Errorf("%s: %w", args[0], r.Err)
		},
	}
}
