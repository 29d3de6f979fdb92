package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tennisscore/tennisscore/internal/archive"
	"github.com/tennisscore/tennisscore/pkg/match"
	"github.com/tennisscore/tennisscore/pkg/scoring"
	"github.com/tennisscore/tennisscore/pkg/surface"
)

func newArchiveCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "archive <match-id>",
		Short: "Restore an archived match and check its final score",
		Long: `Reads a finished match from the configured archive storage, replays its
point log and compares the result with the archived final score.

Use --out to write the restored log to a file for the other commands.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			matchID := args[0]
			cfg := loadConfig(cmd.ErrOrStderr())

			st, err := archive.New(ctx, cfg.Storage)
			if err != nil {
				return fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
			}
			if c, ok := st.(io.Closer); ok {
				defer c.Close()
			}

			log, err := archive.Restore(ctx, st, matchID)
			if err != nil {
				return err
			}
			stored, err := archive.RestoreScore(ctx, st, matchID)
			if err != nil {
				return err
			}
			r, err := scoring.Reconcile(log.Points, log.Format)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Match:    %s\n", matchID)
			fmt.Fprintf(out, "Format:   %s\n", log.Format)
			fmt.Fprintf(out, "Points:   %d\n", len(log.Points))
			fmt.Fprintf(out, "Replayed: %s\n", surface.Headline(r.Score))
			fmt.Fprintf(out, "Archived: %s\n", surface.Headline(stored))

			if outPath != "" {
				if err := match.SaveLog(outPath, log); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %s\n", outPath)
			}

			if !r.Clean() {
				return fmt.Errorf("archived log of %s: %w", matchID, r.Err)
			}
			same, err := sameScore(r.Score, stored)
			if err != nil {
				return err
			}
			if !same {
				return fmt.Errorf("archived score of %s does not match its point log", matchID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "write the restored point log to this file")
	return cmd
}

// sameScore compares scores by their archived JSON form.
func sameScore(a, b *scoring.Score) (bool, error) {
	ja, err := json.Marshal(a)
	if err != nil {
		return false, err
	}
	jb, err := json.Marshal(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(ja, jb), nil
}
