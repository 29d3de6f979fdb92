package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/tennisscore/tennisscore/pkg/match"
)

// MarkdownRenderer produces a Markdown match summary suitable for sharing.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(w io.Writer, report *Report) error {
	if report.Score == nil {
		return fmt.Errorf("report has no score")
	}
	_, err := io.WriteString(w, buildMarkdownSummary(report))
	return err
}

func buildMarkdownSummary(report *Report) string {
	s := report.Score
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## TennisScore: %s\n\n", Headline(s)))
	sb.WriteString(fmt.Sprintf("_%s_\n\n", report.Format.String()))

	// Set table
	sb.WriteString("| Player |")
	for i := range s.Sets {
		sb.WriteString(fmt.Sprintf(" Set %d |", i+1))
	}
	if !s.IsComplete() {
		sb.WriteString(" Games | Points |")
	}
	sb.WriteString("\n|--------|")
	for range s.Sets {
		sb.WriteString("-------|")
	}
	if !s.IsComplete() {
		sb.WriteString("-------|--------|")
	}
	sb.WriteString("\n")

	for _, p := range []match.Player{match.P1, match.P2} {
		name := playerName(p)
		if s.MatchWinner == p {
			name = "**" + name + "**"
		}
		sb.WriteString(fmt.Sprintf("| %s |", name))
		for _, set := range s.Sets {
			sb.WriteString(fmt.Sprintf(" %s |", setCell(set, p)))
		}
		if !s.IsComplete() {
			pts := PointLabel(s.Points, p, report.Format.NoAd)
			if s.IsTiebreak {
				pts = fmt.Sprintf("%d", s.TiebreakPoints.Of(p))
			}
			sb.WriteString(fmt.Sprintf(" %d | %s |", s.Games.Of(p), pts))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if st := report.Stats; st != nil {
		sb.WriteString("### Statistics\n\n")
		sb.WriteString("| | P1 | P2 |\n|---|---|---|\n")
		sb.WriteString(fmt.Sprintf("| Points won | %d | %d |\n", st.P1.PointsWon, st.P2.PointsWon))
		sb.WriteString(fmt.Sprintf("| Aces | %d | %d |\n", st.P1.Aces, st.P2.Aces))
		sb.WriteString(fmt.Sprintf("| Double faults | %d | %d |\n", st.P1.DoubleFaults, st.P2.DoubleFaults))
		sb.WriteString(fmt.Sprintf("| Break points won | %s | %s |\n",
			ratio(st.P1.BreakPointsConverted, st.P1.BreakPointChances),
			ratio(st.P2.BreakPointsConverted, st.P2.BreakPointChances)))
		sb.WriteString("\n")
	}

	return sb.String()
}
