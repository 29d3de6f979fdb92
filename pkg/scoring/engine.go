package scoring

import (
	"fmt"

	"github.com/tennisscore/tennisscore/pkg/match"
)

// Engine folds point events into a Score under one match format.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	format match.MatchFormat
}

// NewEngine validates format and returns an engine for it.
func NewEngine(format match.MatchFormat) (*Engine, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	return &Engine{format: format}, nil
}

// Format returns the engine's match format.
func (e *Engine) Format() match.MatchFormat {
	return e.format
}

// ComputeScore folds a complete, chronologically ordered point log into a
// Score. It is pure: the same log and format always produce the same Score.
func ComputeScore(log []match.PointEvent, format match.MatchFormat) (*Score, error) {
	e, err := NewEngine(format)
	if err != nil {
		return nil, err
	}
	s, _, err := e.Replay(log)
	return s, err
}

// Start returns the score before the first point. firstServer may be empty
// when it is not known yet; the first applied point then decides it.
func (e *Engine) Start(firstServer match.Player) *Score {
	s := &Score{Sets: []SetScore{}, Server: firstServer}
	e.beginSet(s)
	return s
}

// Replay folds log from the start of the match and returns the final score
// together with a copy of every event carrying its derived fields.
func (e *Engine) Replay(log []match.PointEvent) (*Score, []match.PointEvent, error) {
	var first match.Player
	if len(log) > 0 {
		first = log[0].Server
	}

	s := e.Start(first)
	annotated := make([]match.PointEvent, 0, len(log))
	for _, p := range log {
		next, ann, err := e.Step(s, p)
		if err != nil {
			return nil, nil, err
		}
		s = next
		annotated = append(annotated, ann)
	}
	return s, annotated, nil
}

// Apply returns the score after p. The input score is never modified.
func (e *Engine) Apply(s *Score, p match.PointEvent) (*Score, error) {
	if s == nil {
		return nil, fmt.Errorf("score is nil")
	}
	if s.IsComplete() {
		return nil, &IllegalStateError{PointNumber: p.PointNumber, MatchWinner: s.MatchWinner}
	}
	if err := match.ValidateNext(s.PointsPlayed, s.LastPointNumber, p); err != nil {
		return nil, err
	}

	next := s.Clone()
	if next.Server == "" {
		next.Server = p.Server
	}
	if next.IsTiebreak && next.InitialTiebreakServer == "" {
		next.InitialTiebreakServer = next.Server
	}
	next.PointsPlayed++
	next.LastPointNumber = p.PointNumber

	if next.IsTiebreak {
		e.applyTiebreakPoint(next, p.Winner)
	} else {
		e.applyGamePoint(next, p.Winner)
	}
	return next, nil
}

// Step applies p like Apply and also returns the event annotated with its
// derived fields, classified against the score before the point. The
// annotated Server is the rotation server once it is known, whatever p
// reported.
func (e *Engine) Step(s *Score, p match.PointEvent) (*Score, match.PointEvent, error) {
	next, err := e.Apply(s, p)
	if err != nil {
		return nil, match.PointEvent{}, err
	}
	ctx, err := e.Classify(s)
	if err != nil {
		return nil, match.PointEvent{}, err
	}

	a := p.Input()
	if s.Server != "" {
		a.Server = s.Server
	}
	a.SetNumber = s.SetNumber()
	a.GameNumber = s.GameNumber()
	a.IsTiebreakPoint = s.IsTiebreak
	a.IsBreakPoint = ctx.IsBreakPoint
	a.IsSetPoint = ctx.IsSetPoint()
	a.IsMatchPoint = ctx.IsMatchPoint()
	a.IsSetWinning = len(next.Sets) > len(s.Sets)
	a.IsGameWinning = a.IsSetWinning || next.Games != s.Games
	a.IsMatchWinning = next.IsComplete()
	return next, a, nil
}

func (e *Engine) applyGamePoint(s *Score, w match.Player) {
	s.Points.inc(w)
	if !e.gameWon(s.Points, w) {
		return
	}

	s.Games.inc(w)
	s.Points = Tally{}
	s.Server = s.Server.Opponent()

	g := e.format.Games()
	if s.Games.Of(w) >= g && s.Games.Lead(w) >= 2 {
		e.completeSet(s, SetScore{P1: s.Games.P1, P2: s.Games.P2})
		return
	}

	sets := s.SetsWon()
	if s.Games.P1 == g && s.Games.P2 == g && e.format.TiebreakAtGamesAll(sets.P1, sets.P2) {
		e.startTiebreak(s, false)
	}
}

func (e *Engine) gameWon(points Tally, w match.Player) bool {
	if points.Of(w) < 4 {
		return false
	}
	// No-ad: the point played at 3-3 decides the game.
	return e.format.NoAd || points.Lead(w) >= 2
}

func (e *Engine) applyTiebreakPoint(s *Score, w match.Player) {
	s.TiebreakPoints.inc(w)
	tb := s.TiebreakPoints
	if !tiebreakWon(tb.Of(w), tb.Of(w.Opponent()), s.TiebreakTarget) {
		s.Server = tiebreakServer(s.InitialTiebreakServer, tb.P1+tb.P2)
		return
	}

	set := SetScore{Tiebreak: &tb}
	if s.SuperTiebreak {
		set.Super = true
		if w == match.P1 {
			set.P1 = 1
		} else {
			set.P2 = 1
		}
	} else {
		s.Games.inc(w)
		set.P1, set.P2 = s.Games.P1, s.Games.P2
	}
	s.Server = s.InitialTiebreakServer.Opponent()
	e.completeSet(s, set)
}

func (e *Engine) startTiebreak(s *Score, super bool) {
	sets := s.SetsWon()
	s.IsTiebreak = true
	s.TiebreakPoints = Tally{}
	s.TiebreakTarget = TiebreakTarget(e.format, sets.P1, sets.P2)
	s.SuperTiebreak = super
	s.InitialTiebreakServer = s.Server
}

// beginSet checks the deciding-set precondition once per set transition:
// with a super final-set tiebreak the decider starts as a tiebreak at 0-0.
func (e *Engine) beginSet(s *Score) {
	sets := s.SetsWon()
	if isSuperTiebreak(e.format, sets.P1, sets.P2) {
		e.startTiebreak(s, true)
	}
}

func (e *Engine) completeSet(s *Score, set SetScore) {
	s.Sets = append(s.Sets, set)
	s.Games = Tally{}
	s.Points = Tally{}
	s.TiebreakPoints = Tally{}
	s.IsTiebreak = false
	s.TiebreakTarget = 0
	s.SuperTiebreak = false
	s.InitialTiebreakServer = ""

	w := set.Winner()
	if s.SetsWon().Of(w) >= e.format.SetsToWin() {
		s.MatchWinner = w
		s.Server = ""
		if set.Tiebreak != nil {
			s.TiebreakPoints = *set.Tiebreak
		}
		return
	}
	e.beginSet(s)
}
