// Package match defines the core data model for TennisScore: match formats
// and the point log. These types are the shared vocabulary across all modules.
package match

// Player identifies one side of a match.
type Player string

const (
	P1 Player = "p1"
	P2 Player = "p2"
)

// Valid reports whether p is one of the two sides.
func (p Player) Valid() bool {
	return p == P1 || p == P2
}

// Opponent returns the other side. The zero Player has no opponent.
func (p Player) Opponent() Player {
	switch p {
	case P1:
		return P2
	case P2:
		return P1
	default:
		return ""
	}
}

// Outcome describes how a point ended. It never affects the score.
type Outcome string

const (
	OutcomeAce           Outcome = "ace"
	OutcomeWinner        Outcome = "winner"
	OutcomeUnforcedError Outcome = "unforced_error"
	OutcomeForcedError   Outcome = "forced_error"
	OutcomeDoubleFault   Outcome = "double_fault"
)

// Valid reports whether o is a known outcome. An empty outcome is allowed
// in logs and counts as unclassified.
func (o Outcome) Valid() bool {
	switch o {
	case "", OutcomeAce, OutcomeWinner, OutcomeUnforcedError, OutcomeForcedError, OutcomeDoubleFault:
		return true
	}
	return false
}

// PointEvent is one entry of the append-only point log.
//
// PointNumber, Winner, Server and Outcome are supplied by the caller. All
// other fields are derived during replay and ignored on input.
type PointEvent struct {
	PointNumber int     `json:"point_number"`
	Winner      Player  `json:"winner"`
	Server      Player  `json:"server"`
	Outcome     Outcome `json:"outcome,omitempty"`

	SetNumber       int  `json:"set_number,omitempty"`
	GameNumber      int  `json:"game_number,omitempty"`
	IsTiebreakPoint bool `json:"is_tiebreak_point,omitempty"`

	// Situation before the point was played.
	IsBreakPoint bool `json:"is_break_point,omitempty"`
	IsSetPoint   bool `json:"is_set_point,omitempty"`
	IsMatchPoint bool `json:"is_match_point,omitempty"`

	// What the point actually decided.
	IsGameWinning  bool `json:"is_game_winning,omitempty"`
	IsSetWinning   bool `json:"is_set_winning,omitempty"`
	IsMatchWinning bool `json:"is_match_winning,omitempty"`
}

// Input returns a copy of the event with every derived field cleared.
func (e PointEvent) Input() PointEvent {
	return PointEvent{
		PointNumber: e.PointNumber,
		Winner:      e.Winner,
		Server:      e.Server,
		Outcome:     e.Outcome,
	}
}

// Log is the on-disk and on-the-wire form of a match's point log.
type Log struct {
	MatchID string       `json:"match_id,omitempty"`
	Format  MatchFormat  `json:"format"`
	Points  []PointEvent `json:"points"`
}
