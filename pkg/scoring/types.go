// Package scoring implements the TennisScore derivation engine.
// It folds an append-only point log into the complete match state.
package scoring

import (
	"errors"
	"fmt"

	"github.com/tennisscore/tennisscore/pkg/match"
)

// ErrIllegalState is matched by every *IllegalStateError.
var ErrIllegalState = errors.New("illegal match state")

// IllegalStateError reports a point applied after the match was decided.
type IllegalStateError struct {
	PointNumber int
	MatchWinner match.Player
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("point %d recorded after match was won by %s", e.PointNumber, e.MatchWinner)
}

func (e *IllegalStateError) Is(target error) bool { return target == ErrIllegalState }

// Tally is a (p1, p2) counter pair: points, games, or tiebreak points.
type Tally struct {
	P1 int `json:"p1"`
	P2 int `json:"p2"`
}

// Of returns the count for p.
func (t Tally) Of(p match.Player) int {
	if p == match.P2 {
		return t.P2
	}
	return t.P1
}

func (t *Tally) inc(p match.Player) {
	if p == match.P2 {
		t.P2++
	} else {
		t.P1++
	}
}

// Lead returns how far p is ahead (negative when behind).
func (t Tally) Lead(p match.Player) int {
	return t.Of(p) - t.Of(p.Opponent())
}

// SetScore is one completed set in the set ledger.
//
// A super tiebreak that replaces a deciding set is recorded as a nominal 1-0
// with Super set and the real points kept in Tiebreak.
type SetScore struct {
	P1       int    `json:"p1"`
	P2       int    `json:"p2"`
	Tiebreak *Tally `json:"tiebreak,omitempty"`
	Super    bool   `json:"super,omitempty"`
}

// Winner returns the side that took the set.
func (s SetScore) Winner() match.Player {
	if s.P2 > s.P1 {
		return match.P2
	}
	return match.P1
}

// Score is the match state derived from a point log. It is never the
// primary record: it can always be recomputed from the log and a format.
type Score struct {
	Sets           []SetScore `json:"sets"`
	Games          Tally      `json:"games"`
	Points         Tally      `json:"points"` // ignored while IsTiebreak
	IsTiebreak     bool       `json:"is_tiebreak"`
	TiebreakPoints Tally      `json:"tiebreak_points"`

	// TiebreakTarget is fixed when a tiebreak starts and cleared when it ends.
	TiebreakTarget        int          `json:"tiebreak_target,omitempty"`
	SuperTiebreak         bool         `json:"super_tiebreak,omitempty"`
	InitialTiebreakServer match.Player `json:"initial_tiebreak_server,omitempty"`

	// Server is due to serve the next point; empty before the first point
	// of a log whose first server is unknown.
	Server      match.Player `json:"server,omitempty"`
	MatchWinner match.Player `json:"match_winner,omitempty"`

	PointsPlayed    int `json:"points_played"`
	LastPointNumber int `json:"last_point_number"`
}

// SetsWon counts completed sets per side.
func (s *Score) SetsWon() Tally {
	var t Tally
	for _, set := range s.Sets {
		t.inc(set.Winner())
	}
	return t
}

// IsComplete reports whether the match has a winner.
func (s *Score) IsComplete() bool {
	return s.MatchWinner != ""
}

// SetNumber is the 1-based number of the set in progress (or the last set
// once the match is over).
func (s *Score) SetNumber() int {
	if s.IsComplete() {
		return len(s.Sets)
	}
	return len(s.Sets) + 1
}

// GameNumber is the 1-based number of the game in progress within the
// current set. A tiebreak counts as one game.
func (s *Score) GameNumber() int {
	return s.Games.P1 + s.Games.P2 + 1
}

// Clone returns a deep copy.
func (s *Score) Clone() *Score {
	c := *s
	c.Sets = make([]SetScore, len(s.Sets))
	for i, set := range s.Sets {
		c.Sets[i] = set
		if set.Tiebreak != nil {
			tb := *set.Tiebreak
			c.Sets[i].Tiebreak = &tb
		}
	}
	return &c
}
