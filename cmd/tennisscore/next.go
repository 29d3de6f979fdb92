package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tennisscore/tennisscore/pkg/match"
	"github.com/tennisscore/tennisscore/pkg/scoring"
)

func newNextCmd() *cobra.Command {
	var outputFmt string

	cmd := &cobra.Command{
		Use:   "next <log.json>",
		Short: "Classify the next point of a match",
		Long:  `Reports who serves the next point and whether it is a break, set or match point for either side.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := loadMatchLog(args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			sc, err := scoring.ComputeScore(log.Points, log.Format)
			if err != nil {
				return fmt.Errorf("scoring %s: %w", args[0], err)
			}
			next, err := scoring.Classify(sc, log.Format)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch outputFmt {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(next); err != nil {
					return fmt.Errorf("encoding JSON: %w", err)
				}
			case "text":
				writeNextText(out, next)
			default:
				return fmt.Errorf("unknown output format %q (want text or json)", outputFmt)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")

	return cmd
}

func writeNextText(w io.Writer, next *scoring.PointContext) {
	server := strings.ToUpper(string(next.Server))
	if server == "" {
		server = "unknown"
	}
	kind := "game"
	if next.IsTiebreak {
		kind = "tiebreak"
	}
	fmt.Fprintf(w, "Set %d, game %d (%s), server: %s\n", next.SetNumber, next.GameNumber, kind, server)

	var flags []string
	if next.IsBreakPoint {
		flags = append(flags, "break point")
	}
	if next.IsDecidingPoint {
		flags = append(flags, "deciding point")
	}
	for _, p := range []match.Player{match.P1, match.P2} {
		st := next.For(p)
		switch {
		case st.MatchPoint:
			flags = append(flags, "match point "+strings.ToUpper(string(p)))
		case st.SetPoint:
			flags = append(flags, "set point "+strings.ToUpper(string(p)))
		}
	}
	if len(flags) == 0 {
		flags = append(flags, "no pressure")
	}
	fmt.Fprintf(w, "Stakes: %s\n", strings.Join(flags, ", "))
}
