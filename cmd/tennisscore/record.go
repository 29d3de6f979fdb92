package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tennisscore/tennisscore/pkg/match"
	"github.com/tennisscore/tennisscore/pkg/scoring"
	"github.com/tennisscore/tennisscore/pkg/surface"
)

func newRecordCmd() *cobra.Command {
	var (
		winner  string
		server  string
		outcome string
	)

	cmd := &cobra.Command{
		Use:   "record <log.json>",
		Short: "Append a point to a point log file",
		Long: `Appends the next point to the log after checking it against the current
score. The server defaults to whoever the rotation says serves.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			log, err := loadMatchLog(path, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			engine, err := scoring.NewEngine(log.Format)
			if err != nil {
				return err
			}
			current, _, err := engine.Replay(log.Points)
			if err != nil {
				return fmt.Errorf("scoring %s: %w", path, err)
			}

			p := match.PointEvent{
				PointNumber: current.LastPointNumber + 1,
				Winner:      match.Player(winner),
				Server:      match.Player(firstNonEmpty(server, string(current.Server))),
				Outcome:     match.Outcome(outcome),
			}
			next, annotated, err := engine.Step(current, p)
			if err != nil {
				return err
			}

			log.Points = append(log.Points, p)
			if err := match.SaveLog(path, log); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Point %d to %s (set %d, game %d)\n",
				p.PointNumber, p.Winner, annotated.SetNumber, annotated.GameNumber)
			fmt.Fprintln(out, surface.Headline(next))
			return nil
		},
	}

	cmd.Flags().StringVar(&winner, "winner", "", "Point winner: p1 or p2 (required)")
	cmd.Flags().StringVar(&server, "server", "", "Server of the point (default: from the rotation)")
	cmd.Flags().StringVar(&outcome, "outcome", "", "ace, winner, unforced_error, forced_error or double_fault")
	_ = cmd.MarkFlagRequired("winner")

	return cmd
}
