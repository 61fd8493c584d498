package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/fantasy-league/models"
)

func TestLeaderboardGetPage(t *testing.T) {
	ctx := context.Background()

	t.Run("dense ranks with username tie-break", func(t *testing.T) {
		env := newTestEnv()
		carol := env.addUser(t, "carol")
		alice := env.addUser(t, "alice")
		bob := env.addUser(t, "bob")
		env.store.users[alice.ID].TotalFantasyPoints = 75
		env.store.users[bob.ID].TotalFantasyPoints = 75
		env.store.users[carol.ID].TotalFantasyPoints = 50

		page, err := env.leaderboard.GetPage(ctx, 1)

		require.NoError(t, err)
		require.Len(t, page.Entries, 3)
		assert.Equal(t, "alice", page.Entries[0].Username)
		assert.Equal(t, 1, page.Entries[0].Rank)
		assert.Equal(t, "bob", page.Entries[1].Username)
		assert.Equal(t, 1, page.Entries[1].Rank)
		assert.Equal(t, "carol", page.Entries[2].Username)
		assert.Equal(t, 2, page.Entries[2].Rank)
	})

	t.Run("pages hold at most twenty five entries", func(t *testing.T) {
		env := newTestEnv()
		for i := 0; i < 30; i++ {
			u := env.addUser(t, string(rune('a'+i%26))+string(rune('a'+i/26)))
			env.store.users[u.ID].TotalFantasyPoints = 100 - i
		}

		first, err := env.leaderboard.GetPage(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, first.Entries, LeaderboardPageSize)

		second, err := env.leaderboard.GetPage(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, second.Entries, 5)
		assert.Equal(t, 2, second.Page)
	})

	t.Run("page below one means the first page", func(t *testing.T) {
		env := newTestEnv()
		env.addUser(t, "alice")

		page, err := env.leaderboard.GetPage(ctx, 0)

		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Len(t, page.Entries, 1)
	})
}

func TestGetPublicProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	tournament := env.addTournament(t, "major-2026")
	stage := env.addStage(t, tournament.ID, "Stage 1", models.StageTypeSwiss, 1, models.FantasyStatusOpen)
	alice := env.addUser(t, "alice")
	env.store.users[alice.ID].TotalFantasyPoints = 42
	env.addPhasePick(t, alice.ID, stage.ID, []int{1}, nil, nil)

	profile, err := env.leaderboard.GetPublicProfile(ctx, alice.ID)

	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, 42, profile.TotalFantasyPoints)
	assert.Len(t, profile.PhasePicks, 1)
	assert.Empty(t, profile.PlayoffPicks)

	_, err = env.leaderboard.GetPublicProfile(ctx, 404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
