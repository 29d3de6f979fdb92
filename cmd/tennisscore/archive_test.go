package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tennisscore/tennisscore/internal/archive"
	"github.com/tennisscore/tennisscore/pkg/match"
	"github.com/tennisscore/tennisscore/pkg/scoring"
)

// archivedMatch archives a one-set super tiebreak match won 10-0 by P2 into
// a local store and returns a config file pointing at it.
func archivedMatch(t *testing.T, matchID string, tamper func(*scoring.Score)) string {
	t.Helper()
	dir := t.TempDir()
	format := match.MatchFormat{SetsToPlay: 1, TiebreakEnabled: true, FinalSetTiebreak: match.FinalSetSuper, FinalSetTiebreakAt: 10}
	log := &match.Log{MatchID: matchID, Format: format}
	for i := 1; i <= 10; i++ {
		log.Points = append(log.Points, match.PointEvent{PointNumber: i, Winner: match.P2, Server: match.P1})
	}

	r, err := scoring.Reconcile(log.Points, format)
	if err != nil || !r.Clean() {
		t.Fatalf("Reconcile: %v %v", err, r)
	}
	final := r.Score
	if tamper != nil {
		final = final.Clone()
		tamper(final)
	}
	if err := archive.Archive(context.Background(), archive.NewLocalStorage(dir), log, final); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	cfgPath := filepath.Join(t.TempDir(), "tennisscore.yaml")
	cfg := fmt.Sprintf("storage:\n  backend: local\n  path: %s\n", dir)
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func TestArchiveCmd(t *testing.T) {
	cfgPath := archivedMatch(t, "m1", nil)
	outPath := filepath.Join(t.TempDir(), "restored.json")

	out, err := runWithConfig(t, cfgPath, "archive", "m1", "--out", outPath)
	if err != nil {
		t.Fatalf("archive: %v\n%s", err, out)
	}
	for _, want := range []string{"Points:   10", "Replayed: P2 wins 1-0", "Archived: P2 wins 1-0"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// The restored log feeds the other commands.
	out, err = run(t, "verify", outPath)
	if err != nil {
		t.Fatalf("verify restored log: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Valid:    10 of 10 points") {
		t.Errorf("verify output:\n%s", out)
	}
}

func TestArchiveCmdErrors(t *testing.T) {
	tests := []struct {
		name    string
		tamper  func(*scoring.Score)
		matchID string
		wantErr string
	}{
		{"score mismatch", func(s *scoring.Score) { s.MatchWinner = match.P1 }, "m1", "does not match"},
		{"unknown match", nil, "missing", "missing"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfgPath := archivedMatch(t, "m1", tc.tamper)
			_, err := runWithConfig(t, cfgPath, "archive", tc.matchID)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}
