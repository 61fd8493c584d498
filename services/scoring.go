package services

import (
	"math"
	"sort"

	"github.com/Dosada05/fantasy-league/models"
)

// Scoring constants for the fantasy game.
const (
	PointsCorrect3_0         = 15
	PointsCorrect0_3         = 10
	PointsCorrectAdvance     = 5
	PointsCorrectQFWinner    = 20
	PointsCorrectSFWinner    = 35
	PointsCorrectFinalWinner = 50

	// SeedBonusMultiplier applies to 3-0 and advance picks of underdog
	// teams. The multiplied value is rounded per team (half away from
	// zero) before summation, so a bonus 3-0 is worth 23 and a bonus
	// advance 8, and totals never carry fractional drift.
	SeedBonusMultiplier = 1.5

	// NumWorstSeedsForBonus is the size of the underdog-bonus set.
	NumWorstSeedsForBonus = 8
)

// UnderdogBonusTeamIDs returns the teams eligible for the seed bonus in a
// stage: the N entrants with the numerically highest initial seed. The
// result depends only on seed values (ties broken by team id descending for
// determinism), never on input ordering. Fewer than N teams means all of
// them qualify.
func UnderdogBonusTeamIDs(stageTeams []*models.StageTeam) map[int]bool {
	sorted := make([]*models.StageTeam, len(stageTeams))
	copy(sorted, stageTeams)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].InitialSeed != sorted[j].InitialSeed {
			return sorted[i].InitialSeed > sorted[j].InitialSeed
		}
		return sorted[i].TeamID > sorted[j].TeamID
	})

	n := NumWorstSeedsForBonus
	if len(sorted) < n {
		n = len(sorted)
	}
	bonus := make(map[int]bool, n)
	for _, st := range sorted[:n] {
		bonus[st.TeamID] = true
	}
	return bonus
}

// SwissOutcome is the actual result of a Swiss stage, derived from its
// StageTeam records.
type SwissOutcome struct {
	Teams3_0     map[int]bool // wins == 3 && losses == 0
	Teams0_3     map[int]bool // wins == 0 && losses == 3
	TeamsAdvance map[int]bool // wins == 3, minus the 3-0 set
	BonusTeams   map[int]bool
}

// ComputeSwissOutcome derives the actual outcome sets of a Swiss stage from
// a snapshot of its StageTeam rows.
func ComputeSwissOutcome(stageTeams []*models.StageTeam) SwissOutcome {
	out := SwissOutcome{
		Teams3_0:     make(map[int]bool),
		Teams0_3:     make(map[int]bool),
		TeamsAdvance: make(map[int]bool),
		BonusTeams:   UnderdogBonusTeamIDs(stageTeams),
	}
	for _, st := range stageTeams {
		switch {
		case st.Wins == 3 && st.Losses == 0:
			out.Teams3_0[st.TeamID] = true
		case st.Wins == 0 && st.Losses == 3:
			out.Teams0_3[st.TeamID] = true
		}
		// "Advance" = reached 3 wins by any route other than a clean 3-0.
		if st.Wins == 3 && st.Losses != 0 {
			out.TeamsAdvance[st.TeamID] = true
		}
	}
	return out
}

// PlayoffOutcome is the actual result of a playoff stage, derived from its
// matches: round 1 = quarter finals, round 2 = semi finals, round 3 = final.
type PlayoffOutcome struct {
	QFWinners   map[int]bool
	SFWinners   map[int]bool
	FinalWinner *int
}

// ComputePlayoffOutcome derives winner sets from a snapshot of the playoff
// stage's matches. Matches without a winner are ignored.
func ComputePlayoffOutcome(matches []*models.Match) PlayoffOutcome {
	out := PlayoffOutcome{
		QFWinners: make(map[int]bool),
		SFWinners: make(map[int]bool),
	}
	for _, m := range matches {
		if m.WinnerID == nil {
			continue
		}
		switch m.RoundNumber {
		case 1:
			out.QFWinners[*m.WinnerID] = true
		case 2:
			out.SFWinners[*m.WinnerID] = true
		case 3:
			winnerID := *m.WinnerID
			out.FinalWinner = &winnerID
		}
	}
	return out
}

// PickScore is the result of scoring one pick: the integer total and the
// per-team award breakdown. Total always equals the sum of the breakdown.
type PickScore struct {
	Total     int
	Breakdown models.PointsBreakdown
}

func (s *PickScore) award(teamID, points int) {
	s.Breakdown[teamID] += points
	s.Total += points
}

func bonusPoints(base int) int {
	return int(math.Round(float64(base) * SeedBonusMultiplier))
}

// ScorePhasePick scores a Swiss-stage pick against the stage's actual
// outcome. A team correctly picked in several slots accumulates points from
// each (tolerated, even though valid picks keep the slots disjoint).
func ScorePhasePick(pick *models.FantasyPhasePick, outcome SwissOutcome) PickScore {
	score := PickScore{Breakdown: models.PointsBreakdown{}}

	for _, teamID := range pick.Teams3_0 {
		if !outcome.Teams3_0[teamID] {
			continue
		}
		points := PointsCorrect3_0
		if outcome.BonusTeams[teamID] {
			points = bonusPoints(points)
		}
		score.award(teamID, points)
	}

	// 0-3 picks never carry the underdog bonus.
	for _, teamID := range pick.Teams0_3 {
		if outcome.Teams0_3[teamID] {
			score.award(teamID, PointsCorrect0_3)
		}
	}

	for _, teamID := range pick.TeamsAdvance {
		if !outcome.TeamsAdvance[teamID] {
			continue
		}
		points := PointsCorrectAdvance
		if outcome.BonusTeams[teamID] {
			points = bonusPoints(points)
		}
		score.award(teamID, points)
	}

	return score
}

// ScorePlayoffPick scores a playoff pick against the bracket outcome. No
// underdog bonus applies in playoff categories.
func ScorePlayoffPick(pick *models.FantasyPlayoffPick, outcome PlayoffOutcome) PickScore {
	score := PickScore{Breakdown: models.PointsBreakdown{}}

	for _, teamID := range pick.QuarterFinalWinners {
		if outcome.QFWinners[teamID] {
			score.award(teamID, PointsCorrectQFWinner)
		}
	}
	for _, teamID := range pick.SemiFinalWinners {
		if outcome.SFWinners[teamID] {
			score.award(teamID, PointsCorrectSFWinner)
		}
	}
	if pick.FinalWinnerID != nil && outcome.FinalWinner != nil && *pick.FinalWinnerID == *outcome.FinalWinner {
		score.award(*pick.FinalWinnerID, PointsCorrectFinalWinner)
	}

	return score
}
