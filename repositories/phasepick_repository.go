package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/fantasy-league/models"
)

var (
	ErrPhasePickNotFound = errors.New("fantasy phase pick not found")
	ErrPhasePickConflict = errors.New("fantasy phase pick already exists for this user and stage")
)

type PhasePickRepository interface {
	Create(ctx context.Context, exec SQLExecutor, pick *models.FantasyPhasePick) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.FantasyPhasePick, error)
	GetByUserAndStage(ctx context.Context, exec SQLExecutor, userProfileID, stageID int) (*models.FantasyPhasePick, error)
	// ListByStage returns the stage's picks with team sets loaded;
	// onlyPending restricts to non-finalized picks (the batch working set).
	ListByStage(ctx context.Context, exec SQLExecutor, stageID int, onlyPending bool) ([]*models.FantasyPhasePick, error)
	ListByUser(ctx context.Context, exec SQLExecutor, userProfileID int) ([]*models.FantasyPhasePick, error)
	// ReplaceTeams rewrites one slot's team set for a pick.
	ReplaceTeams(ctx context.Context, exec SQLExecutor, pickID int, slot models.PickSlot, teamIDs []int) error
	SetLocked(ctx context.Context, exec SQLExecutor, pickID int, locked bool) error
	// SetLockedByStage flips is_locked on every non-finalized pick of a stage.
	SetLockedByStage(ctx context.Context, exec SQLExecutor, stageID int, locked bool) error
	// SaveResult persists points, breakdown and the is_finalized latch.
	SaveResult(ctx context.Context, exec SQLExecutor, pickID int, points int, breakdown models.PointsBreakdown, finalized bool) error
	// ResetPoints zeroes points_earned ahead of a recalculation.
	ResetPoints(ctx context.Context, exec SQLExecutor, pickID int) error
}

type postgresPhasePickRepository struct {
	db *sql.DB
}

func NewPostgresPhasePickRepository(db *sql.DB) PhasePickRepository {
	return &postgresPhasePickRepository{db: db}
}

func (r *postgresPhasePickRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const phasePickColumns = `id, user_profile_id, stage_id, points_earned, is_locked, is_finalized, team_points_breakdown, created_at, updated_at`

func (r *postgresPhasePickRepository) scanPick(rowScanner interface{ Scan(...interface{}) error }) (*models.FantasyPhasePick, error) {
	p := &models.FantasyPhasePick{}
	err := rowScanner.Scan(
		&p.ID, &p.UserProfileID, &p.StageID, &p.PointsEarned, &p.IsLocked, &p.IsFinalized,
		&p.TeamPointsBreakdown, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhasePickNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPhasePickRepository) Create(ctx context.Context, exec SQLExecutor, p *models.FantasyPhasePick) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO fantasy_phase_picks (user_profile_id, stage_id, is_locked)
		VALUES ($1, $2, $3)
		RETURNING id, points_earned, is_finalized, team_points_breakdown, created_at, updated_at`
	err := executor.QueryRowContext(ctx, query, p.UserProfileID, p.StageID, p.IsLocked).
		Scan(&p.ID, &p.PointsEarned, &p.IsFinalized, &p.TeamPointsBreakdown, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "fantasy_phase_picks_user_profile_id_stage_id_key") {
			return ErrPhasePickConflict
		}
		return fmt.Errorf("failed to create phase pick: %w", err)
	}
	return nil
}

func (r *postgresPhasePickRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.FantasyPhasePick, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + phasePickColumns + ` FROM fantasy_phase_picks WHERE id = $1`
	pick, err := r.scanPick(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadTeamSets(ctx, executor, []*models.FantasyPhasePick{pick}); err != nil {
		return nil, err
	}
	return pick, nil
}

func (r *postgresPhasePickRepository) GetByUserAndStage(ctx context.Context, exec SQLExecutor, userProfileID, stageID int) (*models.FantasyPhasePick, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + phasePickColumns + ` FROM fantasy_phase_picks WHERE user_profile_id = $1 AND stage_id = $2`
	pick, err := r.scanPick(executor.QueryRowContext(ctx, query, userProfileID, stageID))
	if err != nil {
		return nil, err
	}
	if err := r.loadTeamSets(ctx, executor, []*models.FantasyPhasePick{pick}); err != nil {
		return nil, err
	}
	return pick, nil
}

func (r *postgresPhasePickRepository) ListByStage(ctx context.Context, exec SQLExecutor, stageID int, onlyPending bool) ([]*models.FantasyPhasePick, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + phasePickColumns + ` FROM fantasy_phase_picks WHERE stage_id = $1`
	if onlyPending {
		query += ` AND is_finalized = FALSE`
	}
	query += ` ORDER BY id ASC`
	return r.queryPicks(ctx, executor, query, stageID)
}

func (r *postgresPhasePickRepository) ListByUser(ctx context.Context, exec SQLExecutor, userProfileID int) ([]*models.FantasyPhasePick, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT ` + phasePickColumns + ` FROM fantasy_phase_picks p
		WHERE user_profile_id = $1
		ORDER BY (SELECT stage_order FROM stages s WHERE s.id = p.stage_id) ASC`
	return r.queryPicks(ctx, executor, query, userProfileID)
}

func (r *postgresPhasePickRepository) queryPicks(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]*models.FantasyPhasePick, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	picks := make([]*models.FantasyPhasePick, 0)
	for rows.Next() {
		p, errScan := r.scanPick(rows)
		if errScan != nil {
			return nil, errScan
		}
		picks = append(picks, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadTeamSets(ctx, executor, picks); err != nil {
		return nil, err
	}
	return picks, nil
}

func (r *postgresPhasePickRepository) loadTeamSets(ctx context.Context, executor SQLExecutor, picks []*models.FantasyPhasePick) error {
	if len(picks) == 0 {
		return nil
	}
	byID := make(map[int]*models.FantasyPhasePick, len(picks))
	ids := make([]int, 0, len(picks))
	for _, p := range picks {
		p.Teams3_0 = []int{}
		p.TeamsAdvance = []int{}
		p.Teams0_3 = []int{}
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	query := `SELECT pick_id, team_id, slot FROM fantasy_phase_pick_teams WHERE pick_id = ANY($1) ORDER BY team_id ASC`
	rows, err := executor.QueryContext(ctx, query, intArray(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var pickID, teamID int
		var slot models.PickSlot
		if err := rows.Scan(&pickID, &teamID, &slot); err != nil {
			return err
		}
		pick, ok := byID[pickID]
		if !ok {
			continue
		}
		switch slot {
		case models.Slot3_0:
			pick.Teams3_0 = append(pick.Teams3_0, teamID)
		case models.SlotAdvance:
			pick.TeamsAdvance = append(pick.TeamsAdvance, teamID)
		case models.Slot0_3:
			pick.Teams0_3 = append(pick.Teams0_3, teamID)
		}
	}
	return rows.Err()
}

func (r *postgresPhasePickRepository) ReplaceTeams(ctx context.Context, exec SQLExecutor, pickID int, slot models.PickSlot, teamIDs []int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx,
		`DELETE FROM fantasy_phase_pick_teams WHERE pick_id = $1 AND slot = $2`, pickID, slot,
	); err != nil {
		return fmt.Errorf("failed to clear %s picks: %w", slot, err)
	}
	for _, teamID := range teamIDs {
		if _, err := executor.ExecContext(ctx,
			`INSERT INTO fantasy_phase_pick_teams (pick_id, team_id, slot) VALUES ($1, $2, $3)`,
			pickID, teamID, slot,
		); err != nil {
			return fmt.Errorf("failed to record %s pick for team %d: %w", slot, teamID, err)
		}
	}
	return nil
}

func (r *postgresPhasePickRepository) SetLocked(ctx context.Context, exec SQLExecutor, pickID int, locked bool) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE fantasy_phase_picks SET is_locked = $1, updated_at = NOW() WHERE id = $2`, locked, pickID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPhasePickNotFound)
}

func (r *postgresPhasePickRepository) SetLockedByStage(ctx context.Context, exec SQLExecutor, stageID int, locked bool) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`UPDATE fantasy_phase_picks SET is_locked = $1, updated_at = NOW() WHERE stage_id = $2 AND is_finalized = FALSE`,
		locked, stageID,
	)
	return err
}

func (r *postgresPhasePickRepository) SaveResult(ctx context.Context, exec SQLExecutor, pickID int, points int, breakdown models.PointsBreakdown, finalized bool) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE fantasy_phase_picks SET points_earned = $1, team_points_breakdown = $2, is_finalized = $3, updated_at = NOW() WHERE id = $4`,
		points, breakdown, finalized, pickID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPhasePickNotFound)
}

func (r *postgresPhasePickRepository) ResetPoints(ctx context.Context, exec SQLExecutor, pickID int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE fantasy_phase_picks SET points_earned = 0, updated_at = NOW() WHERE id = $1`, pickID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPhasePickNotFound)
}
