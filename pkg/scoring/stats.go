package scoring

import "github.com/tennisscore/tennisscore/pkg/match"

// PlayerStats are per-side totals derived from an annotated point log.
type PlayerStats struct {
	PointsWon      int `json:"points_won"`
	GamesWon       int `json:"games_won"`
	SetsWon        int `json:"sets_won"`
	Aces           int `json:"aces"`
	DoubleFaults   int `json:"double_faults"`
	Winners        int `json:"winners"`
	UnforcedErrors int `json:"unforced_errors"`
	ForcedErrors   int `json:"forced_errors"`

	ServicePointsPlayed int `json:"service_points_played"`
	ServicePointsWon    int `json:"service_points_won"`
	ReturnPointsPlayed  int `json:"return_points_played"`
	ReturnPointsWon     int `json:"return_points_won"`

	BreakPointsFaced     int `json:"break_points_faced"`
	BreakPointsSaved     int `json:"break_points_saved"`
	BreakPointChances    int `json:"break_point_chances"`
	BreakPointsConverted int `json:"break_points_converted"`

	LongestPointStreak int `json:"longest_point_streak"`
}

// MatchStats holds both sides' statistics.
type MatchStats struct {
	TotalPoints int         `json:"total_points"`
	P1          PlayerStats `json:"p1"`
	P2          PlayerStats `json:"p2"`
}

// For returns the stats of p.
func (m *MatchStats) For(p match.Player) *PlayerStats {
	if p == match.P2 {
		return &m.P2
	}
	return &m.P1
}

// ComputeStats aggregates statistics from events annotated by
// Engine.Replay. Outcomes are attributed to the side that produced them:
// aces and double faults to the server, winners to the point winner, errors
// to the point loser.
func ComputeStats(points []match.PointEvent) MatchStats {
	var m MatchStats
	var streakOwner match.Player
	streak := 0

	for _, p := range points {
		if !p.Winner.Valid() {
			continue
		}
		m.TotalPoints++
		winner, loser := m.For(p.Winner), m.For(p.Winner.Opponent())
		winner.PointsWon++

		if p.Server.Valid() {
			server, receiver := m.For(p.Server), m.For(p.Server.Opponent())
			server.ServicePointsPlayed++
			receiver.ReturnPointsPlayed++
			if p.Winner == p.Server {
				server.ServicePointsWon++
			} else {
				receiver.ReturnPointsWon++
			}
			if p.IsBreakPoint {
				server.BreakPointsFaced++
				receiver.BreakPointChances++
				if p.Winner == p.Server {
					server.BreakPointsSaved++
				} else {
					receiver.BreakPointsConverted++
				}
			}
			switch p.Outcome {
			case match.OutcomeAce:
				server.Aces++
			case match.OutcomeDoubleFault:
				server.DoubleFaults++
			}
		}

		switch p.Outcome {
		case match.OutcomeWinner:
			winner.Winners++
		case match.OutcomeUnforcedError:
			loser.UnforcedErrors++
		case match.OutcomeForcedError:
			loser.ForcedErrors++
		}

		if p.IsGameWinning {
			winner.GamesWon++
		}
		if p.IsSetWinning {
			winner.SetsWon++
		}

		if p.Winner == streakOwner {
			streak++
		} else {
			streakOwner, streak = p.Winner, 1
		}
		if streak > winner.LongestPointStreak {
			winner.LongestPointStreak = streak
		}
	}
	return m
}
