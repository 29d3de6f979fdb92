package scoring_test

import (
	"errors"
	"testing"

	"github.com/tennisscore/tennisscore/pkg/match"
	"github.com/tennisscore/tennisscore/pkg/scoring"
)

func classify(t *testing.T, b *logBuilder) *scoring.PointContext {
	t.Helper()
	ctx, err := b.e.Classify(b.s)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	return ctx
}

func TestClassifyBreakPoint(t *testing.T) {
	b := newBuilder(t, bestOf3(match.FinalSetStandard))
	b.points(p2, 3) // 0-40, P1 serving

	ctx := classify(t, b)
	if ctx.Server != p1 || ctx.Receiver != p2 {
		t.Fatalf("server/receiver = %s/%s", ctx.Server, ctx.Receiver)
	}
	if !ctx.IsBreakPoint {
		t.Error("0-40 on P1 serve should be a break point")
	}
	if !ctx.P2.GamePoint || ctx.P1.GamePoint {
		t.Errorf("stakes p1=%+v p2=%+v", ctx.P1, ctx.P2)
	}
	if ctx.IsSetPoint() || ctx.IsMatchPoint() {
		t.Error("first game cannot hold a set or match point")
	}
}

func TestClassifyServerGamePointIsNotBreakPoint(t *testing.T) {
	b := newBuilder(t, bestOf3(match.FinalSetStandard))
	b.points(p1, 3)
	ctx := classify(t, b)
	if ctx.IsBreakPoint {
		t.Error("40-0 for the server is not a break point")
	}
	if !ctx.P1.GamePoint {
		t.Error("expected game point for P1")
	}
}

func TestClassifyDeuce(t *testing.T) {
	tests := []struct {
		name         string
		noAd         bool
		wantGamePt   bool
		wantBreakPt  bool
		wantDeciding bool
	}{
		{"advantage deuce", false, false, false, false},
		{"no-ad deciding point", true, true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := bestOf3(match.FinalSetStandard)
			f.NoAd = tt.noAd
			b := newBuilder(t, f)
			b.points(p1, 3).points(p2, 3)

			ctx := classify(t, b)
			if ctx.P1.GamePoint != tt.wantGamePt || ctx.P2.GamePoint != tt.wantGamePt {
				t.Errorf("game points p1=%v p2=%v, want %v", ctx.P1.GamePoint, ctx.P2.GamePoint, tt.wantGamePt)
			}
			if ctx.IsBreakPoint != tt.wantBreakPt {
				t.Errorf("IsBreakPoint = %v, want %v", ctx.IsBreakPoint, tt.wantBreakPt)
			}
			if ctx.IsDecidingPoint != tt.wantDeciding {
				t.Errorf("IsDecidingPoint = %v, want %v", ctx.IsDecidingPoint, tt.wantDeciding)
			}
		})
	}
}

func TestClassifySetAndMatchPoint(t *testing.T) {
	b := newBuilder(t, bestOf3(match.FinalSetStandard))
	b.games(p1, 5).points(p1, 3) // 5-0, 40-0

	ctx := classify(t, b)
	if !ctx.P1.SetPoint || ctx.P1.MatchPoint {
		t.Errorf("P1 stakes in set 1 = %+v, want set point only", ctx.P1)
	}

	b.point(p1).games(p1, 5).points(p1, 3)
	ctx = classify(t, b)
	if !ctx.P1.MatchPoint || !ctx.IsMatchPoint() {
		t.Errorf("P1 stakes at 6-0 5-0 40-0 = %+v, want match point", ctx.P1)
	}
	if ctx.P2.SetPoint || ctx.P2.MatchPoint {
		t.Errorf("P2 stakes = %+v, want none", ctx.P2)
	}
}

func TestClassifyTiebreakHasNoBreakPoints(t *testing.T) {
	b := newBuilder(t, bestOf3(match.FinalSetStandard))
	b.games(p1, 5).games(p2, 5).games(p1, 1).games(p2, 1)
	b.alternate(6) // 6-6

	ctx := classify(t, b)
	if !ctx.IsTiebreak || ctx.IsBreakPoint {
		t.Errorf("tiebreak ctx = %+v", ctx)
	}
	if ctx.P1.SetPoint || ctx.P2.SetPoint {
		t.Error("6-6 in a tiebreak is not a set point")
	}

	b.point(p2) // 6-7
	ctx = classify(t, b)
	if !ctx.P2.SetPoint || !ctx.P2.GamePoint || ctx.P1.SetPoint {
		t.Errorf("6-7 stakes p1=%+v p2=%+v", ctx.P1, ctx.P2)
	}
	if ctx.GameNumber != 13 {
		t.Errorf("tiebreak game number = %d, want 13", ctx.GameNumber)
	}
}

func TestClassifySuperTiebreakMatchPoints(t *testing.T) {
	b := newBuilder(t, bestOf3(match.FinalSetSuper))
	b.games(p1, 6).games(p2, 6).alternate(9) // 9-9

	ctx := classify(t, b)
	if ctx.IsMatchPoint() {
		t.Error("9-9 in a super tiebreak to 10 is not a match point")
	}
	b.point(p1) // 10-9
	ctx = classify(t, b)
	if !ctx.P1.MatchPoint || ctx.P2.MatchPoint {
		t.Errorf("10-9 stakes p1=%+v p2=%+v", ctx.P1, ctx.P2)
	}
}

func TestClassifyCompletedMatch(t *testing.T) {
	f := bestOf3(match.FinalSetStandard)
	b := newBuilder(t, f)
	b.games(p2, 12)

	_, err := scoring.Classify(b.s, f)
	if !errors.Is(err, scoring.ErrIllegalState) {
		t.Errorf("err = %v, want ErrIllegalState", err)
	}
}

func TestClassifyUnknownServer(t *testing.T) {
	f := bestOf3(match.FinalSetStandard)
	s, err := scoring.ComputeScore(nil, f)
	if err != nil {
		t.Fatalf("ComputeScore: %v", err)
	}
	ctx, err := scoring.Classify(s, f)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if ctx.Server != "" || ctx.IsBreakPoint {
		t.Errorf("ctx = %+v, want unknown server and no break point", ctx)
	}
}
