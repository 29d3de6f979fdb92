package scoring

import "github.com/tennisscore/tennisscore/pkg/match"

// Stakes describes what one side would decide by winning the next point.
type Stakes struct {
	GamePoint  bool `json:"game_point"`
	SetPoint   bool `json:"set_point"`
	MatchPoint bool `json:"match_point"`
}

// PointContext annotates the next point of a match. It is informational
// only and never feeds back into scoring.
type PointContext struct {
	Server     match.Player `json:"server,omitempty"`
	Receiver   match.Player `json:"receiver,omitempty"`
	SetNumber  int          `json:"set_number"`
	GameNumber int          `json:"game_number"`
	IsTiebreak bool         `json:"is_tiebreak"`

	// IsDecidingPoint marks the sudden-death point at 3-3 in a no-ad game.
	IsDecidingPoint bool `json:"is_deciding_point,omitempty"`
	IsBreakPoint    bool `json:"is_break_point"`

	P1 Stakes `json:"p1"`
	P2 Stakes `json:"p2"`
}

// For returns the stakes for p.
func (c *PointContext) For(p match.Player) Stakes {
	if p == match.P2 {
		return c.P2
	}
	return c.P1
}

// IsSetPoint reports whether either side can win the set on this point.
func (c *PointContext) IsSetPoint() bool { return c.P1.SetPoint || c.P2.SetPoint }

// IsMatchPoint reports whether either side can win the match on this point.
func (c *PointContext) IsMatchPoint() bool { return c.P1.MatchPoint || c.P2.MatchPoint }

// Classify annotates the next point of s under format.
func Classify(s *Score, format match.MatchFormat) (*PointContext, error) {
	e, err := NewEngine(format)
	if err != nil {
		return nil, err
	}
	return e.Classify(s)
}

// Classify annotates the next point by simulating each side winning it
// against the engine's own rules. s is not modified.
func (e *Engine) Classify(s *Score) (*PointContext, error) {
	if s.IsComplete() {
		return nil, &IllegalStateError{PointNumber: s.LastPointNumber + 1, MatchWinner: s.MatchWinner}
	}

	ctx := &PointContext{
		Server:     s.Server,
		Receiver:   s.Server.Opponent(),
		SetNumber:  s.SetNumber(),
		GameNumber: s.GameNumber(),
		IsTiebreak: s.IsTiebreak,
	}
	if !s.IsTiebreak && e.format.NoAd && s.Points.P1 == 3 && s.Points.P2 == 3 {
		ctx.IsDecidingPoint = true
	}

	// The stakes do not depend on who serves, so an unknown server is
	// assumed to be P1.
	server := s.Server
	if server == "" {
		server = match.P1
	}

	for _, p := range []match.Player{match.P1, match.P2} {
		next, err := e.Apply(s, match.PointEvent{
			PointNumber: s.LastPointNumber + 1,
			Winner:      p,
			Server:      server,
		})
		if err != nil {
			return nil, err
		}
		setWon := len(next.Sets) > len(s.Sets)
		st := Stakes{
			GamePoint:  setWon || next.Games != s.Games,
			SetPoint:   setWon,
			MatchPoint: next.MatchWinner == p,
		}
		if p == match.P1 {
			ctx.P1 = st
		} else {
			ctx.P2 = st
		}
	}

	if !s.IsTiebreak && ctx.Receiver != "" {
		ctx.IsBreakPoint = ctx.For(ctx.Receiver).GamePoint
	}
	return ctx, nil
}
