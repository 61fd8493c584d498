package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/fantasy-league/models"
)

var ErrTeamNotFound = errors.New("team not found")

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error)
	// GetByFeedTeamID correlates a live-feed winner reference with a local team.
	GetByFeedTeamID(ctx context.Context, exec SQLExecutor, feedTeamID int) (*models.Team, error)
	ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]*models.Team, error)
	UpdateLogoKey(ctx context.Context, exec SQLExecutor, teamID int, logoKey *string) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const teamColumns = `id, name, region, feed_team_id, logo_key, created_at`

func (r *postgresTeamRepository) scanTeam(rowScanner interface{ Scan(...interface{}) error }) (*models.Team, error) {
	t := &models.Team{}
	err := rowScanner.Scan(&t.ID, &t.Name, &t.Region, &t.FeedTeamID, &t.LogoKey, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO teams (name, region, feed_team_id, logo_key)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := executor.QueryRowContext(ctx, query, team.Name, team.Region, team.FeedTeamID, team.LogoKey).
		Scan(&team.ID, &team.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return r.scanTeam(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresTeamRepository) GetByFeedTeamID(ctx context.Context, exec SQLExecutor, feedTeamID int) (*models.Team, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + teamColumns + ` FROM teams WHERE feed_team_id = $1`
	return r.scanTeam(executor.QueryRowContext(ctx, query, feedTeamID))
}

func (r *postgresTeamRepository) ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]*models.Team, error) {
	if len(ids) == 0 {
		return []*models.Team{}, nil
	}
	executor := r.getExecutor(exec)
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = ANY($1) ORDER BY name ASC`
	rows, err := executor.QueryContext(ctx, query, intArray(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0, len(ids))
	for rows.Next() {
		t, errScan := r.scanTeam(rows)
		if errScan != nil {
			return nil, errScan
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, exec SQLExecutor, teamID int, logoKey *string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE teams SET logo_key = $1 WHERE id = $2`, logoKey, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}
