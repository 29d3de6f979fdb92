package scoring

import "github.com/tennisscore/tennisscore/pkg/match"

// TiebreakTarget returns the point target of the next tiebreak given the
// sets each side has already won: FinalSetTiebreakAt for a super tiebreak in
// the deciding set, otherwise 7. Every place that decides tiebreak behavior
// goes through this function.
func TiebreakTarget(format match.MatchFormat, p1Sets, p2Sets int) int {
	if isSuperTiebreak(format, p1Sets, p2Sets) {
		return format.FinalSetTiebreakAt
	}
	return match.StandardTiebreakTarget
}

func isSuperTiebreak(format match.MatchFormat, p1Sets, p2Sets int) bool {
	return format.FinalSetTiebreak == match.FinalSetSuper && format.IsDecidingSet(p1Sets, p2Sets)
}

// tiebreakWon reports whether a tiebreak tally is decided for target.
func tiebreakWon(points, other, target int) bool {
	return points >= target && points-other >= 2
}

// tiebreakServer returns who serves tiebreak point n (0-based): the initial
// server serves point 0, then serve changes every two points.
func tiebreakServer(initial match.Player, n int) match.Player {
	if n == 0 || ((n-1)/2)%2 == 1 {
		return initial
	}
	return initial.Opponent()
}
