package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/fantasy-league/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentSlugConflict = errors.New("tournament slug is already in use")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	GetBySlug(ctx context.Context, exec SQLExecutor, slug string) (*models.Tournament, error)
	GetLive(ctx context.Context, exec SQLExecutor) (*models.Tournament, error)
	List(ctx context.Context, exec SQLExecutor, limit, offset int) ([]*models.Tournament, error)
	SetLive(ctx context.Context, exec SQLExecutor, id int, isLive bool) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `id, name, slug, description, location, type, start_date, end_date, feed_id, is_live, created_at`

func (r *postgresTournamentRepository) scanTournament(rowScanner interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := rowScanner.Scan(
		&t.ID, &t.Name, &t.Slug, &t.Description, &t.Location, &t.Type,
		&t.StartDate, &t.EndDate, &t.FeedID, &t.IsLive, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments (name, slug, description, location, type, start_date, end_date, feed_id, is_live)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`
	err := executor.QueryRowContext(ctx, query,
		t.Name, t.Slug, t.Description, t.Location, t.Type, t.StartDate, t.EndDate, t.FeedID, t.IsLive,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "tournaments_slug_key") {
			return ErrTournamentSlugConflict
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return r.scanTournament(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) GetBySlug(ctx context.Context, exec SQLExecutor, slug string) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE slug = $1`
	return r.scanTournament(executor.QueryRowContext(ctx, query, slug))
}

// GetLive returns the most recently created tournament flagged live.
func (r *postgresTournamentRepository) GetLive(ctx context.Context, exec SQLExecutor) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE is_live = TRUE ORDER BY created_at DESC LIMIT 1`
	return r.scanTournament(executor.QueryRowContext(ctx, query))
}

func (r *postgresTournamentRepository) List(ctx context.Context, exec SQLExecutor, limit, offset int) ([]*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY start_date DESC LIMIT $1 OFFSET $2`
	rows, err := executor.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, errScan := r.scanTournament(rows)
		if errScan != nil {
			return nil, errScan
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) SetLive(ctx context.Context, exec SQLExecutor, id int, isLive bool) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE tournaments SET is_live = $1 WHERE id = $2`, isLive, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
