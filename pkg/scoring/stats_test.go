package scoring_test

import (
	"errors"
	"testing"

	"github.com/tennisscore/tennisscore/pkg/match"
	"github.com/tennisscore/tennisscore/pkg/scoring"
)

func TestComputeStats(t *testing.T) {
	f := bestOf3(match.FinalSetStandard)
	log := []match.PointEvent{
		{PointNumber: 1, Winner: p1, Server: p1, Outcome: match.OutcomeAce},
		{PointNumber: 2, Winner: p2, Server: p1, Outcome: match.OutcomeDoubleFault},
		{PointNumber: 3, Winner: p2, Server: p1, Outcome: match.OutcomeWinner},
		{PointNumber: 4, Winner: p2, Server: p1, Outcome: match.OutcomeUnforcedError}, // 15-40
		{PointNumber: 5, Winner: p1, Server: p1, Outcome: match.OutcomeForcedError},   // break point saved
		{PointNumber: 6, Winner: p2, Server: p1, Outcome: match.OutcomeWinner},        // break point converted
	}
	e, err := scoring.NewEngine(f)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	s, annotated, err := e.Replay(log)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if s.Games != (scoring.Tally{P2: 1}) {
		t.Fatalf("games = %+v, want 0-1", s.Games)
	}

	st := scoring.ComputeStats(annotated)
	if st.TotalPoints != 6 {
		t.Errorf("TotalPoints = %d, want 6", st.TotalPoints)
	}

	checks := []struct {
		name string
		got  int
		want int
	}{
		{"p1 points", st.P1.PointsWon, 2},
		{"p2 points", st.P2.PointsWon, 4},
		{"p1 aces", st.P1.Aces, 1},
		{"p1 double faults", st.P1.DoubleFaults, 1},
		{"p2 winners", st.P2.Winners, 2},
		{"p1 unforced", st.P1.UnforcedErrors, 1},
		{"p2 forced", st.P2.ForcedErrors, 1},
		{"p1 service played", st.P1.ServicePointsPlayed, 6},
		{"p1 service won", st.P1.ServicePointsWon, 2},
		{"p2 return won", st.P2.ReturnPointsWon, 4},
		{"p1 break points faced", st.P1.BreakPointsFaced, 2},
		{"p1 break points saved", st.P1.BreakPointsSaved, 1},
		{"p2 break chances", st.P2.BreakPointChances, 2},
		{"p2 converted", st.P2.BreakPointsConverted, 1},
		{"p2 games", st.P2.GamesWon, 1},
		{"p2 streak", st.P2.LongestPointStreak, 3},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}
}

func TestComputeStatsUsesRotationServer(t *testing.T) {
	// Game 2 is served by P2 but every point is logged with Server P1.
	var log []match.PointEvent
	for i := 1; i <= 8; i++ {
		log = append(log, match.PointEvent{PointNumber: i, Winner: p1, Server: p1})
	}
	e, err := scoring.NewEngine(bestOf3(match.FinalSetStandard))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	s, annotated, err := e.Replay(log)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if s.Games != (scoring.Tally{P1: 2}) {
		t.Fatalf("games = %+v, want 2-0", s.Games)
	}
	for i, a := range annotated[4:] {
		if a.Server != p2 {
			t.Errorf("point %d server = %q, want p2", i+5, a.Server)
		}
	}
	if !annotated[7].IsBreakPoint {
		t.Error("point 8 at 0-40 should be a break point")
	}

	st := scoring.ComputeStats(annotated)
	checks := []struct {
		name string
		got  int
		want int
	}{
		{"p1 service played", st.P1.ServicePointsPlayed, 4},
		{"p1 service won", st.P1.ServicePointsWon, 4},
		{"p2 service played", st.P2.ServicePointsPlayed, 4},
		{"p1 return won", st.P1.ReturnPointsWon, 4},
		{"p2 break points faced", st.P2.BreakPointsFaced, 1},
		{"p2 break points saved", st.P2.BreakPointsSaved, 0},
		{"p1 break points faced", st.P1.BreakPointsFaced, 0},
		{"p1 break chances", st.P1.BreakPointChances, 1},
		{"p1 converted", st.P1.BreakPointsConverted, 1},
		{"p2 break chances", st.P2.BreakPointChances, 0},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}
}

func TestReconcileStopsAtFirstBadEntry(t *testing.T) {
	f := bestOf3(match.FinalSetStandard)
	log := []match.PointEvent{
		{PointNumber: 1, Winner: p1, Server: p1},
		{PointNumber: 2, Winner: p1, Server: p1},
		{PointNumber: 4, Winner: p1, Server: p1},
		{PointNumber: 5, Winner: p1, Server: p1},
	}

	r, err := scoring.Reconcile(log, f)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if r.Clean() {
		t.Fatal("expected the gap to be flagged")
	}
	if !errors.Is(r.Err, match.ErrLogIntegrity) {
		t.Errorf("Err = %v, want ErrLogIntegrity", r.Err)
	}
	if len(r.Points) != 2 || len(r.Rejected) != 2 {
		t.Errorf("kept %d rejected %d, want 2 and 2", len(r.Points), len(r.Rejected))
	}
	if r.Score.Points != (scoring.Tally{P1: 2}) {
		t.Errorf("prefix score points = %+v, want 2-0", r.Score.Points)
	}
	if r.Rejected[0].PointNumber != 4 {
		t.Errorf("first rejected point = %d, want 4", r.Rejected[0].PointNumber)
	}
}

func TestReconcileFlagsPointsAfterMatchEnd(t *testing.T) {
	f := bestOf3(match.FinalSetStandard)
	b := newBuilder(t, f)
	b.games(p1, 12)
	n := len(b.log)
	log := append(b.log,
		match.PointEvent{PointNumber: n + 1, Winner: p2, Server: p1},
		match.PointEvent{PointNumber: n + 2, Winner: p2, Server: p1},
	)

	r, err := scoring.Reconcile(log, f)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if !errors.Is(r.Err, scoring.ErrIllegalState) {
		t.Errorf("Err = %v, want ErrIllegalState", r.Err)
	}
	if r.Score.MatchWinner != p1 || len(r.Rejected) != 2 {
		t.Errorf("winner = %q rejected = %d", r.Score.MatchWinner, len(r.Rejected))
	}
}

func TestReconcileCleanLog(t *testing.T) {
	f := bestOf3(match.FinalSetSuper)
	b := newBuilder(t, f)
	b.games(p1, 6).games(p2, 6).points(p2, 10)

	r, err := scoring.Reconcile(b.log, f)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if !r.Clean() || !r.Score.Equal(b.s) {
		t.Errorf("clean reconcile mismatch: err=%v score=%+v", r.Err, r.Score)
	}
}

func TestReconcileInvalidFormat(t *testing.T) {
	_, err := scoring.Reconcile(nil, match.MatchFormat{SetsToPlay: 3, FinalSetTiebreak: "sudden", FinalSetTiebreakAt: 10})
	if !errors.Is(err, match.ErrInvalidFormat) {
		t.Errorf("err = %v, want ErrInvalidFormat", err)
	}
}
