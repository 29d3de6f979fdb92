// Package main provides the tennisscore CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tennisscore",
		Short: "Derive tennis scores from point logs",
		Long: `Tennisscore folds an append-only log of points into the full match state:
games, sets, tiebreaks, serve rotation and break/set/match points.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newScoreCmd(),
		newNextCmd(),
		newStatsCmd(),
		newVerifyCmd(),
		newRecordCmd(),
		newFormatCmd(),
		newArchiveCmd(),
	)
	return rootCmd
}
