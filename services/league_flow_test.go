package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/fantasy-league/models"
)

// TestLeagueFlow walks one Swiss stage through the whole lifecycle: open
// picks, lock, result ingestion, finalization and the resulting
// leaderboard. With only eight entrants every team carries the underdog
// bonus, so a correct 3-0 is worth 23 and a correct advance 8.
func TestLeagueFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	tournament := env.addTournament(t, "major-2026")
	stage := env.addStage(t, tournament.ID, "Swiss", models.StageTypeSwiss, 1, models.FantasyStatusOpen)

	teams := make(map[string]int, 8)
	for i, name := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		team := env.addTeam(t, name)
		teams[name] = team.ID
		env.addStageTeam(t, stage.ID, team.ID, i+1, 0, 0)
	}

	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")

	// Picks go in while the stage is open.
	_, err := env.picks.SavePhasePick(ctx, alice.ID, stage.ID, PhasePickInput{
		Teams3_0:     []int{teams["A"], teams["B"]},
		TeamsAdvance: []int{teams["C"], teams["D"]},
		Teams0_3:     []int{teams["G"], teams["H"]},
	})
	require.NoError(t, err)
	_, err = env.picks.SavePhasePick(ctx, bob.ID, stage.ID, PhasePickInput{
		Teams3_0:     []int{teams["C"]},
		TeamsAdvance: []int{teams["A"]},
		Teams0_3:     []int{teams["G"]},
	})
	require.NoError(t, err)

	// The stage locks before the first match.
	_, err = env.stages.SetFantasyStatus(ctx, stage.ID, models.FantasyStatusLocked)
	require.NoError(t, err)
	_, err = env.picks.SavePhasePick(ctx, alice.ID, stage.ID, PhasePickInput{Teams3_0: []int{teams["A"]}})
	require.ErrorIs(t, err, ErrPicksLocked)

	// Results come in match by match. Final records: A 3-0, B and C 3-1,
	// G and H 0-3, the rest eliminated mid-table.
	results := []struct{ winner, loser string }{
		{"A", "B"}, {"A", "G"}, {"A", "H"},
		{"B", "C"}, {"B", "D"}, {"B", "E"},
		{"C", "D"}, {"C", "E"}, {"C", "F"},
		{"D", "G"}, {"D", "H"},
		{"E", "G"},
		{"F", "H"},
	}
	for _, res := range results {
		match := env.addMatch(t, stage.ID, 1, teams[res.winner], teams[res.loser], nil)
		_, err := env.feed.SetMatchResult(ctx, match.ID, MatchResultInput{
			Status:   models.MatchStatusFinished,
			WinnerID: intPtr(teams[res.winner]),
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 3, findStageTeam(t, env, stage.ID, teams["A"]).Wins)
	assert.Zero(t, findStageTeam(t, env, stage.ID, teams["A"]).Losses)
	assert.Equal(t, 3, findStageTeam(t, env, stage.ID, teams["G"]).Losses)

	result, err := env.fantasy.FinalizeStage(ctx, stage.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)

	// alice: A as a bonus 3-0 (23), C as a bonus advance (8), G and H
	// both 0-3 (20). bob: only G (10).
	assert.Equal(t, 51, env.userPoints(t, alice.ID))
	assert.Equal(t, 10, env.userPoints(t, bob.ID))

	// A finalized stage takes no more edits.
	_, err = env.picks.SavePhasePick(ctx, alice.ID, stage.ID, PhasePickInput{Teams3_0: []int{teams["A"]}})
	assert.ErrorIs(t, err, ErrPicksFinalized)

	page, err := env.leaderboard.GetPage(ctx, 1)
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, "alice", page.Entries[0].Username)
	assert.Equal(t, 1, page.Entries[0].Rank)
	assert.Equal(t, 51, page.Entries[0].TotalFantasyPoints)
	assert.Equal(t, "bob", page.Entries[1].Username)
	assert.Equal(t, 2, page.Entries[1].Rank)

	profile, err := env.leaderboard.GetPublicProfile(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, profile.PhasePicks, 1)
	assert.Equal(t, 51, profile.PhasePicks[0].PointsEarned)
	assert.Equal(t, 23, profile.PhasePicks[0].TeamPointsBreakdown[teams["A"]])
}
