package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/fantasy-league/models"
)

var (
	ErrStageNotFound      = errors.New("stage not found")
	ErrStageOrderConflict = errors.New("stage order already taken in this tournament")
)

type StageRepository interface {
	Create(ctx context.Context, exec SQLExecutor, stage *models.Stage) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Stage, error)
	// GetByTournamentAndOrder resolves the prior-stage gate for picks.
	GetByTournamentAndOrder(ctx context.Context, exec SQLExecutor, tournamentID, order int) (*models.Stage, error)
	// ListByTournament returns the tournament's stages ordered by stage_order.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Stage, error)
	// GetPlayoffStage returns the highest-order PLAYOFF stage of a tournament.
	GetPlayoffStage(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.Stage, error)
	UpdateFantasyStatus(ctx context.Context, exec SQLExecutor, id int, status models.FantasyStatus) error
}

type postgresStageRepository struct {
	db *sql.DB
}

func NewPostgresStageRepository(db *sql.DB) StageRepository {
	return &postgresStageRepository{db: db}
}

func (r *postgresStageRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const stageColumns = `id, tournament_id, name, type, stage_order, fantasy_status, created_at`

func (r *postgresStageRepository) scanStage(rowScanner interface{ Scan(...interface{}) error }) (*models.Stage, error) {
	s := &models.Stage{}
	err := rowScanner.Scan(&s.ID, &s.TournamentID, &s.Name, &s.Type, &s.Order, &s.FantasyStatus, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStageNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresStageRepository) Create(ctx context.Context, exec SQLExecutor, stage *models.Stage) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO stages (tournament_id, name, type, stage_order, fantasy_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := executor.QueryRowContext(ctx, query,
		stage.TournamentID, stage.Name, stage.Type, stage.Order, stage.FantasyStatus,
	).Scan(&stage.ID, &stage.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "stages_tournament_id_stage_order_key") {
			return ErrStageOrderConflict
		}
		return fmt.Errorf("failed to create stage: %w", err)
	}
	return nil
}

func (r *postgresStageRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Stage, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + stageColumns + ` FROM stages WHERE id = $1`
	return r.scanStage(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresStageRepository) GetByTournamentAndOrder(ctx context.Context, exec SQLExecutor, tournamentID, order int) (*models.Stage, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + stageColumns + ` FROM stages WHERE tournament_id = $1 AND stage_order = $2`
	return r.scanStage(executor.QueryRowContext(ctx, query, tournamentID, order))
}

func (r *postgresStageRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Stage, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + stageColumns + ` FROM stages WHERE tournament_id = $1 ORDER BY stage_order ASC`
	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stages := make([]*models.Stage, 0)
	for rows.Next() {
		s, errScan := r.scanStage(rows)
		if errScan != nil {
			return nil, errScan
		}
		stages = append(stages, s)
	}
	return stages, rows.Err()
}

func (r *postgresStageRepository) GetPlayoffStage(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.Stage, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + stageColumns + ` FROM stages
		WHERE tournament_id = $1 AND type = $2
		ORDER BY stage_order DESC LIMIT 1`
	return r.scanStage(executor.QueryRowContext(ctx, query, tournamentID, models.StageTypePlayoff))
}

func (r *postgresStageRepository) UpdateFantasyStatus(ctx context.Context, exec SQLExecutor, id int, status models.FantasyStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE stages SET fantasy_status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStageNotFound)
}
