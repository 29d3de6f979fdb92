package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tennisscore/tennisscore/pkg/scoring"
	"github.com/tennisscore/tennisscore/pkg/surface"
)

func newScoreCmd() *cobra.Command {
	var (
		outputFmt string
		withStats bool
	)

	cmd := &cobra.Command{
		Use:   "score <log.json>",
		Short: "Compute the score of a point log",
		Long:  `Replays the point log under its match format and renders the scoreboard and the stakes of the next point.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := buildReport(cmd, args[0], withStats)
			if err != nil {
				return err
			}
			renderer, err := surface.ForOutput(outputFmt)
			if err != nil {
				return err
			}
			if err := renderer.Render(cmd.OutOrStdout(), report); err != nil {
				return fmt.Errorf("rendering: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text, markdown or json")
	cmd.Flags().BoolVar(&withStats, "stats", false, "Include match statistics")

	return cmd
}

func buildReport(cmd *cobra.Command, path string, withStats bool) (*surface.Report, error) {
	log, err := loadMatchLog(path, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	engine, err := scoring.NewEngine(log.Format)
	if err != nil {
		return nil, err
	}
	sc, annotated, err := engine.Replay(log.Points)
	if err != nil {
		return nil, fmt.Errorf("scoring %s: %w", path, err)
	}

	report := &surface.Report{MatchID: log.MatchID, Format: log.Format, Score: sc}
	if !sc.IsComplete() {
		if report.Next, err = engine.Classify(sc); err != nil {
			return nil, err
		}
	}
	if withStats {
		st := scoring.ComputeStats(annotated)
		report.Stats = &st
	}
	return report, nil
}
