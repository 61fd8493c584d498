package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/fantasy-league/models"
)

var (
	ErrStageTeamNotFound = errors.New("stage team not found")
	ErrStageTeamConflict = errors.New("team is already registered in this stage")
)

type StageTeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, stageTeam *models.StageTeam) error
	// ListByStage returns the stage's participation rows ordered by initial
	// seed ascending; callers needing other orderings sort in memory.
	ListByStage(ctx context.Context, exec SQLExecutor, stageID int) ([]*models.StageTeam, error)
	// UpdateRecord rewrites wins/losses after a reset-and-recompute pass.
	UpdateRecord(ctx context.Context, exec SQLExecutor, id int, wins, losses int) error
	UpdateBuchholz(ctx context.Context, exec SQLExecutor, id int, score float64) error
}

type postgresStageTeamRepository struct {
	db *sql.DB
}

func NewPostgresStageTeamRepository(db *sql.DB) StageTeamRepository {
	return &postgresStageTeamRepository{db: db}
}

func (r *postgresStageTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStageTeamRepository) Create(ctx context.Context, exec SQLExecutor, st *models.StageTeam) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO stage_teams (stage_id, team_id, wins, losses, initial_seed, buchholz_score)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, updated_at`
	err := executor.QueryRowContext(ctx, query,
		st.StageID, st.TeamID, st.Wins, st.Losses, st.InitialSeed, st.BuchholzScore,
	).Scan(&st.ID, &st.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "stage_teams_stage_id_team_id_key") {
			return ErrStageTeamConflict
		}
		return fmt.Errorf("failed to create stage team: %w", err)
	}
	return nil
}

func (r *postgresStageTeamRepository) ListByStage(ctx context.Context, exec SQLExecutor, stageID int) ([]*models.StageTeam, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT st.id, st.stage_id, st.team_id, st.wins, st.losses, st.initial_seed, st.buchholz_score, st.updated_at,
		       t.id, t.name, t.region, t.feed_team_id, t.logo_key, t.created_at
		FROM stage_teams st
		JOIN teams t ON t.id = st.team_id
		WHERE st.stage_id = $1
		ORDER BY st.initial_seed ASC, st.team_id ASC`
	rows, err := executor.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stageTeams := make([]*models.StageTeam, 0)
	for rows.Next() {
		st := &models.StageTeam{Team: &models.Team{}}
		err := rows.Scan(
			&st.ID, &st.StageID, &st.TeamID, &st.Wins, &st.Losses, &st.InitialSeed, &st.BuchholzScore, &st.UpdatedAt,
			&st.Team.ID, &st.Team.Name, &st.Team.Region, &st.Team.FeedTeamID, &st.Team.LogoKey, &st.Team.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		stageTeams = append(stageTeams, st)
	}
	return stageTeams, rows.Err()
}

func (r *postgresStageTeamRepository) UpdateRecord(ctx context.Context, exec SQLExecutor, id int, wins, losses int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE stage_teams SET wins = $1, losses = $2, updated_at = NOW() WHERE id = $3`,
		wins, losses, id,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStageTeamNotFound)
}

func (r *postgresStageTeamRepository) UpdateBuchholz(ctx context.Context, exec SQLExecutor, id int, score float64) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE stage_teams SET buchholz_score = $1, updated_at = NOW() WHERE id = $2`,
		score, id,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStageTeamNotFound)
}
