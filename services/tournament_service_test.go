package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/fantasy-league/models"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "pgl-major-copenhagen-2026", Slugify("PGL Major Copenhagen 2026"))
	assert.Equal(t, "iem-katowice", Slugify("  IEM: Katowice!  "))
	assert.Equal(t, "a-b", Slugify("a---b"))
}

func TestTournamentCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("derives the slug from the name", func(t *testing.T) {
		env := newTestEnv()
		svc := NewTournamentService(env.tournamentRepo, env.stageRepo)
		tournament := &models.Tournament{
			Name:      "PGL Major 2026",
			Type:      models.TournamentTypePGL,
			StartDate: time.Now(),
			EndDate:   time.Now().AddDate(0, 0, 14),
		}

		require.NoError(t, svc.Create(ctx, tournament))

		assert.Equal(t, "pgl-major-2026", tournament.Slug)
		assert.NotZero(t, tournament.ID)
	})

	t.Run("end date before start date", func(t *testing.T) {
		env := newTestEnv()
		svc := NewTournamentService(env.tournamentRepo, env.stageRepo)

		err := svc.Create(ctx, &models.Tournament{
			Name:      "backwards",
			StartDate: time.Now(),
			EndDate:   time.Now().AddDate(0, 0, -1),
		})

		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("name is required", func(t *testing.T) {
		env := newTestEnv()
		svc := NewTournamentService(env.tournamentRepo, env.stageRepo)

		err := svc.Create(ctx, &models.Tournament{})

		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestTournamentGetBySlug(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := NewTournamentService(env.tournamentRepo, env.stageRepo)
	tournament := env.addTournament(t, "major-2026")
	env.addStage(t, tournament.ID, "Playoffs", models.StageTypePlayoff, 2, models.FantasyStatusOpen)
	env.addStage(t, tournament.ID, "Stage 1", models.StageTypeSwiss, 1, models.FantasyStatusOpen)

	got, err := svc.GetBySlug(ctx, "major-2026")

	require.NoError(t, err)
	require.Len(t, got.Stages, 2)
	assert.Equal(t, "Stage 1", got.Stages[0].Name, "stages are ordered by stage order")

	_, err = svc.GetBySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestTournamentSetLive(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := NewTournamentService(env.tournamentRepo, env.stageRepo)
	first := env.addTournament(t, "first")
	second := env.addTournament(t, "second")

	require.NoError(t, svc.SetLive(ctx, first.ID, true))
	live, err := svc.GetLive(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, live.ID)

	// Promoting another tournament demotes the previous one.
	require.NoError(t, svc.SetLive(ctx, second.ID, true))
	live, err = svc.GetLive(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, live.ID)

	assert.ErrorIs(t, svc.SetLive(ctx, 404, true), ErrTournamentNotFound)
}
