// Package surface defines output rendering for TennisScore results.
// Implementations handle different output targets: terminal, Markdown, JSON.
package surface

import (
	"fmt"
	"io"

	"github.com/tennisscore/tennisscore/pkg/match"
	"github.com/tennisscore/tennisscore/pkg/scoring"
)

// Report bundles everything a renderer may show about one match.
type Report struct {
	MatchID string                `json:"match_id,omitempty"`
	Format  match.MatchFormat     `json:"format"`
	Score   *scoring.Score        `json:"score"`
	Next    *scoring.PointContext `json:"next,omitempty"`  // nil once the match is over
	Stats   *scoring.MatchStats   `json:"stats,omitempty"` // optional
}

// Renderer produces formatted output from a Report.
type Renderer interface {
	// Render writes the formatted report to the writer.
	Render(w io.Writer, report *Report) error
}

// ForOutput returns the renderer for an output format name: text, markdown
// or json.
func ForOutput(name string) (Renderer, error) {
	switch name {
	case "", "text":
		return &TerminalRenderer{}, nil
	case "markdown", "md":
		return &MarkdownRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, markdown or json)", name)
	}
}

// PointLabel renders p's point count in a regular game the way an umpire
// calls it: 0, 15, 30, 40 or AD.
func PointLabel(points scoring.Tally, p match.Player, noAd bool) string {
	mine, theirs := points.Of(p), points.Of(p.Opponent())
	if !noAd && mine >= 3 && theirs >= 3 {
		if mine > theirs {
			return "AD"
		}
		return "40"
	}
	switch mine {
	case 0:
		return "0"
	case 1:
		return "15"
	case 2:
		return "30"
	default:
		return "40"
	}
}

// Headline summarises the state of the match in one line.
func Headline(s *scoring.Score) string {
	sets := s.SetsWon()
	if s.IsComplete() {
		w := s.MatchWinner
		return fmt.Sprintf("%s wins %d-%d", playerName(w), sets.Of(w), sets.Of(w.Opponent()))
	}
	switch {
	case sets.P1 > sets.P2:
		return fmt.Sprintf("P1 leads %d sets to %d", sets.P1, sets.P2)
	case sets.P2 > sets.P1:
		return fmt.Sprintf("P2 leads %d sets to %d", sets.P2, sets.P1)
	default:
		return fmt.Sprintf("Sets level at %d-%d", sets.P1, sets.P2)
	}
}

func playerName(p match.Player) string {
	switch p {
	case match.P1:
		return "P1"
	case match.P2:
		return "P2"
	default:
		return "?"
	}
}

// setCell renders one player's games in a completed set, with the losing
// tiebreak score as a suffix the way scoreboards print 7-6(5).
func setCell(set scoring.SetScore, p match.Player) string {
	games := set.P1
	if p == match.P2 {
		games = set.P2
	}
	if set.Super && set.Tiebreak != nil {
		return fmt.Sprintf("[%d]", set.Tiebreak.Of(p))
	}
	if set.Tiebreak != nil && set.Winner() != p {
		return fmt.Sprintf("%d(%d)", games, set.Tiebreak.Of(p))
	}
	return fmt.Sprintf("%d", games)
}
