package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tennisscore/tennisscore/pkg/scoring"
)

func newStatsCmd() *cobra.Command {
	var outputFmt string

	cmd := &cobra.Command{
		Use:   "stats <log.json>",
		Short: "Aggregate per-player statistics of a point log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := loadMatchLog(args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			engine, err := scoring.NewEngine(log.Format)
			if err != nil {
				return err
			}
			_, annotated, err := engine.Replay(log.Points)
			if err != nil {
				return fmt.Errorf("scoring %s: %w", args[0], err)
			}
			st := scoring.ComputeStats(annotated)

			out := cmd.OutOrStdout()
			switch outputFmt {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			case "text":
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
				fmt.Fprintln(tw, "\tP1\tP2\t")
				for _, row := range statRows {
					fmt.Fprintf(tw, "%s\t%d\t%d\t\n", row.label, row.get(&st.P1), row.get(&st.P2))
				}
				fmt.Fprintf(tw, "Total points\t%d\t\t\n", st.TotalPoints)
				return tw.Flush()
			default:
				return fmt.Errorf("unknown output format %q (want text or json)", outputFmt)
			}
		},
	}

	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")

	return cmd
}

var statRows = []struct {
	label string
	get   func(*scoring.PlayerStats) int
}{
	{"Points won", func(p *scoring.PlayerStats) int { return p.PointsWon }},
	{"Games won", func(p *scoring.PlayerStats) int { return p.GamesWon }},
	{"Sets won", func(p *scoring.PlayerStats) int { return p.SetsWon }},
	{"Aces", func(p *scoring.PlayerStats) int { return p.Aces }},
	{"Double faults", func(p *scoring.PlayerStats) int { return p.DoubleFaults }},
	{"Winners", func(p *scoring.PlayerStats) int { return p.Winners }},
	{"Unforced errors", func(p *scoring.PlayerStats) int { return p.UnforcedErrors }},
	{"Forced errors", func(p *scoring.PlayerStats) int { return p.ForcedErrors }},
	{"Service points won", func(p *scoring.PlayerStats) int { return p.ServicePointsWon }},
	{"Return points won", func(p *scoring.PlayerStats) int { return p.ReturnPointsWon }},
	{"Break points saved", func(p *scoring.PlayerStats) int { return p.BreakPointsSaved }},
	{"Break points converted", func(p *scoring.PlayerStats) int { return p.BreakPointsConverted }},
	{"Longest streak", func(p *scoring.PlayerStats) int { return p.LongestPointStreak }},
}
