package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/fantasy-league/models"
)

var (
	ErrPlayoffPickNotFound = errors.New("fantasy playoff pick not found")
	ErrPlayoffPickConflict = errors.New("fantasy playoff pick already exists for this user and tournament")
)

type PlayoffPickRepository interface {
	Create(ctx context.Context, exec SQLExecutor, pick *models.FantasyPlayoffPick) error
	GetByUserAndTournament(ctx context.Context, exec SQLExecutor, userProfileID, tournamentID int) (*models.FantasyPlayoffPick, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, onlyPending bool) ([]*models.FantasyPlayoffPick, error)
	ListByUser(ctx context.Context, exec SQLExecutor, userProfileID int) ([]*models.FantasyPlayoffPick, error)
	ReplaceTeams(ctx context.Context, exec SQLExecutor, pickID int, slot models.PickSlot, teamIDs []int) error
	SetFinalWinner(ctx context.Context, exec SQLExecutor, pickID int, teamID *int) error
	SetLocked(ctx context.Context, exec SQLExecutor, pickID int, locked bool) error
	SetLockedByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, locked bool) error
	SaveResult(ctx context.Context, exec SQLExecutor, pickID int, points int, breakdown models.PointsBreakdown, finalized bool) error
	ResetPoints(ctx context.Context, exec SQLExecutor, pickID int) error
}

type postgresPlayoffPickRepository struct {
	db *sql.DB
}

func NewPostgresPlayoffPickRepository(db *sql.DB) PlayoffPickRepository {
	return &postgresPlayoffPickRepository{db: db}
}

func (r *postgresPlayoffPickRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playoffPickColumns = `id, user_profile_id, tournament_id, points_earned, is_locked, is_finalized, final_winner_id, team_points_breakdown, created_at, updated_at`

func (r *postgresPlayoffPickRepository) scanPick(rowScanner interface{ Scan(...interface{}) error }) (*models.FantasyPlayoffPick, error) {
	p := &models.FantasyPlayoffPick{}
	err := rowScanner.Scan(
		&p.ID, &p.UserProfileID, &p.TournamentID, &p.PointsEarned, &p.IsLocked, &p.IsFinalized,
		&p.FinalWinnerID, &p.TeamPointsBreakdown, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayoffPickNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayoffPickRepository) Create(ctx context.Context, exec SQLExecutor, p *models.FantasyPlayoffPick) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO fantasy_playoff_picks (user_profile_id, tournament_id, is_locked)
		VALUES ($1, $2, $3)
		RETURNING id, points_earned, is_finalized, final_winner_id, team_points_breakdown, created_at, updated_at`
	err := executor.QueryRowContext(ctx, query, p.UserProfileID, p.TournamentID, p.IsLocked).
		Scan(&p.ID, &p.PointsEarned, &p.IsFinalized, &p.FinalWinnerID, &p.TeamPointsBreakdown, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "fantasy_playoff_picks_user_profile_id_tournament_id_key") {
			return ErrPlayoffPickConflict
		}
		return fmt.Errorf("failed to create playoff pick: %w", err)
	}
	return nil
}

func (r *postgresPlayoffPickRepository) GetByUserAndTournament(ctx context.Context, exec SQLExecutor, userProfileID, tournamentID int) (*models.FantasyPlayoffPick, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + playoffPickColumns + ` FROM fantasy_playoff_picks WHERE user_profile_id = $1 AND tournament_id = $2`
	pick, err := r.scanPick(executor.QueryRowContext(ctx, query, userProfileID, tournamentID))
	if err != nil {
		return nil, err
	}
	if err := r.loadTeamSets(ctx, executor, []*models.FantasyPlayoffPick{pick}); err != nil {
		return nil, err
	}
	return pick, nil
}

func (r *postgresPlayoffPickRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, onlyPending bool) ([]*models.FantasyPlayoffPick, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + playoffPickColumns + ` FROM fantasy_playoff_picks WHERE tournament_id = $1`
	if onlyPending {
		query += ` AND is_finalized = FALSE`
	}
	query += ` ORDER BY id ASC`
	return r.queryPicks(ctx, executor, query, tournamentID)
}

func (r *postgresPlayoffPickRepository) ListByUser(ctx context.Context, exec SQLExecutor, userProfileID int) ([]*models.FantasyPlayoffPick, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + playoffPickColumns + ` FROM fantasy_playoff_picks WHERE user_profile_id = $1 ORDER BY tournament_id ASC`
	return r.queryPicks(ctx, executor, query, userProfileID)
}

func (r *postgresPlayoffPickRepository) queryPicks(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]*models.FantasyPlayoffPick, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	picks := make([]*models.FantasyPlayoffPick, 0)
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

func (r *postgresPlayoffPickRepository) loadTeamSets(ctx context.Context, executor SQLExecutor, picks []*models.FantasyPlayoffPick) error {
	if len(picks) == 0 {
		return nil
	}
	byID := make(map[int]*models.FantasyPlayoffPick, len(picks))
	ids := make([]int, 0, len(picks))
	for _, p := range picks {
		p.QuarterFinalWinners = []int{}
		p.SemiFinalWinners = []int{}
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	query := `SELECT pick_id, team_id, slot FROM fantasy_playoff_pick_teams WHERE pick_id = ANY($1) ORDER BY team_id ASC`
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
		case models.SlotQFWinner:
			pick.QuarterFinalWinners = append(pick.QuarterFinalWinners, teamID)
		case models.SlotSFWinner:
			pick.SemiFinalWinners = append(pick.SemiFinalWinners, teamID)
		}
	}
	return rows.Err()
}

func (r *postgresPlayoffPickRepository) ReplaceTeams(ctx context.Context, exec SQLExecutor, pickID int, slot models.PickSlot, teamIDs []int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx,
		`DELETE FROM fantasy_playoff_pick_teams WHERE pick_id = $1 AND slot = $2`, pickID, slot,
	); err != nil {
		return fmt.Errorf("failed to clear %s picks: %w", slot, err)
	}
	for _, teamID := range teamIDs {
		if _, err := executor.ExecContext(ctx,
			`INSERT INTO fantasy_playoff_pick_teams (pick_id, team_id, slot) VALUES ($1, $2, $3)`,
			pickID, teamID, slot,
		); err != nil {
			return fmt.Errorf("failed to record %s pick for team %d: %w", slot, teamID, err)
		}
	}
	return nil
}

func (r *postgresPlayoffPickRepository) SetFinalWinner(ctx context.Context, exec SQLExecutor, pickID int, teamID *int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE fantasy_playoff_picks SET final_winner_id = $1, updated_at = NOW() WHERE id = $2`, teamID, pickID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayoffPickNotFound)
}

func (r *postgresPlayoffPickRepository) SetLocked(ctx context.Context, exec SQLExecutor, pickID int, locked bool) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE fantasy_playoff_picks SET is_locked = $1, updated_at = NOW() WHERE id = $2`, locked, pickID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayoffPickNotFound)
}

func (r *postgresPlayoffPickRepository) SetLockedByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, locked bool) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`UPDATE fantasy_playoff_picks SET is_locked = $1, updated_at = NOW() WHERE tournament_id = $2 AND is_finalized = FALSE`,
		locked, tournamentID,
	)
	return err
}

func (r *postgresPlayoffPickRepository) SaveResult(ctx context.Context, exec SQLExecutor, pickID int, points int, breakdown models.PointsBreakdown, finalized bool) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE fantasy_playoff_picks SET points_earned = $1, team_points_breakdown = $2, is_finalized = $3, updated_at = NOW() WHERE id = $4`,
		points, breakdown, finalized, pickID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayoffPickNotFound)
}

func (r *postgresPlayoffPickRepository) ResetPoints(ctx context.Context, exec SQLExecutor, pickID int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE fantasy_playoff_picks SET points_earned = 0, updated_at = NOW() WHERE id = $1`, pickID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayoffPickNotFound)
}
