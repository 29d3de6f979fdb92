package match

import "fmt"

// FinalSetTiebreak selects how the deciding set is played.
type FinalSetTiebreak string

const (
	// FinalSetNone plays the deciding set out with advantage sets.
	FinalSetNone FinalSetTiebreak = "none"
	// FinalSetStandard plays a 7-point tiebreak at 6-6 in the deciding set.
	FinalSetStandard FinalSetTiebreak = "standard"
	// FinalSetSuper replaces the whole deciding set with a single
	// first-to-FinalSetTiebreakAt tiebreak.
	FinalSetSuper FinalSetTiebreak = "super"
)

const (
	// StandardTiebreakTarget is the point target of a regular tiebreak.
	StandardTiebreakTarget = 7
	// DefaultGamesPerSet is used when MatchFormat.GamesPerSet is zero.
	DefaultGamesPerSet = 6
)

// MatchFormat is the immutable rule set of a match. It is supplied once at
// match creation and must not change while points are being recorded.
type MatchFormat struct {
	SetsToPlay         int              `json:"sets_to_play" yaml:"sets_to_play"`
	NoAd               bool             `json:"no_ad" yaml:"no_ad"`
	TiebreakEnabled    bool             `json:"tiebreak_enabled" yaml:"tiebreak_enabled"`
	FinalSetTiebreak   FinalSetTiebreak `json:"final_set_tiebreak" yaml:"final_set_tiebreak"`
	FinalSetTiebreakAt int              `json:"final_set_tiebreak_at" yaml:"final_set_tiebreak_at"`
	GamesPerSet        int              `json:"games_per_set,omitempty" yaml:"games_per_set,omitempty"` // 0 means 6; 4 for short sets
}

// DefaultFormat returns best-of-3 advantage scoring with tiebreaks at 6-6
// and a standard tiebreak in the final set.
func DefaultFormat() MatchFormat {
	return MatchFormat{
		SetsToPlay:         3,
		TiebreakEnabled:    true,
		FinalSetTiebreak:   FinalSetStandard,
		FinalSetTiebreakAt: 10,
	}
}

// Validate checks the format invariants.
func (f MatchFormat) Validate() error {
	switch f.SetsToPlay {
	case 1, 3, 5:
	default:
		return &InvalidFormatError{Field: "sets_to_play", Reason: fmt.Sprintf("must be 1, 3 or 5, got %d", f.SetsToPlay)}
	}
	switch f.FinalSetTiebreak {
	case FinalSetNone, FinalSetStandard, FinalSetSuper:
	default:
		return &InvalidFormatError{Field: "final_set_tiebreak", Reason: fmt.Sprintf("must be none, standard or super, got %q", f.FinalSetTiebreak)}
	}
	if f.FinalSetTiebreakAt < 1 {
		return &InvalidFormatError{Field: "final_set_tiebreak_at", Reason: fmt.Sprintf("must be at least 1, got %d", f.FinalSetTiebreakAt)}
	}
	if f.GamesPerSet < 0 || f.GamesPerSet > DefaultGamesPerSet {
		return &InvalidFormatError{Field: "games_per_set", Reason: fmt.Sprintf("must be between 1 and %d, got %d", DefaultGamesPerSet, f.GamesPerSet)}
	}
	return nil
}

// SetsToWin returns how many sets a side needs to take the match.
func (f MatchFormat) SetsToWin() int {
	return (f.SetsToPlay + 1) / 2
}

// Games returns the number of games that wins a set with a two-game margin.
func (f MatchFormat) Games() int {
	if f.GamesPerSet == 0 {
		return DefaultGamesPerSet
	}
	return f.GamesPerSet
}

// IsDecidingSet reports whether the set played after the given set counts
// is the final set of the match.
func (f MatchFormat) IsDecidingSet(p1Sets, p2Sets int) bool {
	n := f.SetsToWin() - 1
	return p1Sets == n && p2Sets == n
}

// TiebreakAtGamesAll reports whether a set entered at the given set counts
// is decided by a tiebreak once both sides reach Games() games.
func (f MatchFormat) TiebreakAtGamesAll(p1Sets, p2Sets int) bool {
	if f.IsDecidingSet(p1Sets, p2Sets) {
		return f.FinalSetTiebreak == FinalSetStandard
	}
	return f.TiebreakEnabled
}

// String renders a compact human description, e.g. "best of 3, no-ad,
// super tiebreak to 10".
func (f MatchFormat) String() string {
	s := fmt.Sprintf("best of %d", f.SetsToPlay)
	if f.Games() != DefaultGamesPerSet {
		s += fmt.Sprintf(", short sets to %d", f.Games())
	}
	if f.NoAd {
		s += ", no-ad"
	}
	if !f.TiebreakEnabled {
		s += ", advantage sets"
	}
	switch f.FinalSetTiebreak {
	case FinalSetSuper:
		s += fmt.Sprintf(", super tiebreak to %d", f.FinalSetTiebreakAt)
	case FinalSetNone:
		s += ", final set played out"
	}
	return s
}
