package surface

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tennisscore/tennisscore/pkg/match"
	"github.com/tennisscore/tennisscore/pkg/scoring"
)

// TerminalRenderer renders a Report as a colored terminal scoreboard.
type TerminalRenderer struct{}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func (r *TerminalRenderer) Render(w io.Writer, report *Report) error {
	s := report.Score
	if s == nil {
		return fmt.Errorf("report has no score")
	}

	headColor := colorYellow
	if s.IsComplete() {
		headColor = colorGreen
	}
	fmt.Fprintf(w, "%s\n", bold("TennisScore: "+colored(Headline(s), headColor)))
	fmt.Fprintf(w, "%s\n\n", dim(report.Format.String()))

	for _, p := range []match.Player{match.P1, match.P2} {
		fmt.Fprintln(w, scoreboardRow(report, p))
	}
	fmt.Fprintln(w)

	if report.Next != nil {
		renderNext(w, report.Next)
	}
	if report.Stats != nil {
		renderStats(w, report.Stats)
	}
	return nil
}

func scoreboardRow(report *Report, p match.Player) string {
	s := report.Score
	marker := "  "
	if s.Server == p {
		marker = colored("● ", colorYellow)
	}
	if s.MatchWinner == p {
		marker = colored("✓ ", colorGreen)
	}

	cells := make([]string, 0, len(s.Sets)+2)
	for _, set := range s.Sets {
		cells = append(cells, fmt.Sprintf("%-6s", setCell(set, p)))
	}

	if !s.IsComplete() {
		switch {
		case s.SuperTiebreak:
			cells = append(cells, fmt.Sprintf("%-6s", fmt.Sprintf("[%d]", s.TiebreakPoints.Of(p))))
		case s.IsTiebreak:
			cells = append(cells, fmt.Sprintf("%-6d", s.Games.Of(p)), bold(fmt.Sprintf("%d", s.TiebreakPoints.Of(p))))
		default:
			cells = append(cells, fmt.Sprintf("%-6d", s.Games.Of(p)), bold(PointLabel(s.Points, p, report.Format.NoAd)))
		}
	}
	return fmt.Sprintf("%s%-4s %s", marker, playerName(p), strings.Join(cells, " "))
}

func renderNext(w io.Writer, ctx *scoring.PointContext) {
	var flags []string
	if ctx.IsDecidingPoint {
		flags = append(flags, "deciding point")
	}
	if ctx.IsBreakPoint {
		flags = append(flags, colored("break point", colorRed))
	}
	for _, p := range []match.Player{match.P1, match.P2} {
		st := ctx.For(p)
		switch {
		case st.MatchPoint:
			flags = append(flags, colored("match point "+playerName(p), colorRed))
		case st.SetPoint:
			flags = append(flags, colored("set point "+playerName(p), colorYellow))
		}
	}

	what := fmt.Sprintf("set %d, game %d", ctx.SetNumber, ctx.GameNumber)
	if ctx.IsTiebreak {
		what = fmt.Sprintf("set %d, tiebreak", ctx.SetNumber)
	}
	line := fmt.Sprintf("Next point: %s", what)
	if ctx.Server != "" {
		line += fmt.Sprintf(", %s to serve", playerName(ctx.Server))
	}
	fmt.Fprintln(w, line)
	if len(flags) > 0 {
		fmt.Fprintf(w, "  %s\n", strings.Join(flags, " · "))
	}
	fmt.Fprintln(w)
}

func renderStats(w io.Writer, st *scoring.MatchStats) {
	fmt.Fprintln(w, "Statistics:")
	rows := []struct {
		label string
		get   func(*scoring.PlayerStats) string
	}{
		{"Points won", func(p *scoring.PlayerStats) string { return fmt.Sprintf("%d", p.PointsWon) }},
		{"Aces", func(p *scoring.PlayerStats) string { return fmt.Sprintf("%d", p.Aces) }},
		{"Double faults", func(p *scoring.PlayerStats) string { return fmt.Sprintf("%d", p.DoubleFaults) }},
		{"Winners", func(p *scoring.PlayerStats) string { return fmt.Sprintf("%d", p.Winners) }},
		{"Unforced errors", func(p *scoring.PlayerStats) string { return fmt.Sprintf("%d", p.UnforcedErrors) }},
		{"Service points won", func(p *scoring.PlayerStats) string { return ratio(p.ServicePointsWon, p.ServicePointsPlayed) }},
		{"Break points saved", func(p *scoring.PlayerStats) string { return ratio(p.BreakPointsSaved, p.BreakPointsFaced) }},
		{"Break points won", func(p *scoring.PlayerStats) string { return ratio(p.BreakPointsConverted, p.BreakPointChances) }},
	}
	fmt.Fprintf(w, "  %-20s %12s %12s\n", "", "P1", "P2")
	for _, row := range rows {
		fmt.Fprintf(w, "  %-20s %12s %12s\n", row.label, row.get(&st.P1), row.get(&st.P2))
	}
	fmt.Fprintln(w)
}

func ratio(n, d int) string {
	if d == 0 {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d (%d%%)", n, d, n*100/d)
}
