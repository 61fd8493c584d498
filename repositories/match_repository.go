package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/fantasy-league/models"
)

var ErrMatchNotFound = errors.New("match not found")

// ListMatchesFilter narrows ListByStage; nil fields are ignored.
type ListMatchesFilter struct {
	RoundNumber *int
	Status      *models.MatchStatus
	HasWinner   *bool
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	GetByFeedMatchID(ctx context.Context, exec SQLExecutor, feedMatchID int) (*models.Match, error)
	ListByStage(ctx context.Context, exec SQLExecutor, stageID int, filter ListMatchesFilter) ([]*models.Match, error)
	// ListActiveWithFeedID returns PENDING/LIVE matches carrying a feed id,
	// i.e. the poller's working set.
	ListActiveWithFeedID(ctx context.Context, exec SQLExecutor) ([]*models.Match, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, stage_id, round_number, team1_id, team2_id, team1_score, team2_score, winner_id, format, status,
	map1_team1_score, map1_team2_score, map2_team1_score, map2_team2_score, map3_team1_score, map3_team2_score,
	feed_match_id, last_feed_update, created_at`

func (r *postgresMatchRepository) scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	err := rowScanner.Scan(
		&m.ID, &m.StageID, &m.RoundNumber, &m.Team1ID, &m.Team2ID, &m.Team1Score, &m.Team2Score,
		&m.WinnerID, &m.Format, &m.Status,
		&m.Map1Team1Score, &m.Map1Team2Score, &m.Map2Team1Score, &m.Map2Team2Score, &m.Map3Team1Score, &m.Map3Team2Score,
		&m.FeedMatchID, &m.LastFeedUpdate, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches (stage_id, round_number, team1_id, team2_id, team1_score, team2_score, winner_id, format, status, feed_match_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`
	err := executor.QueryRowContext(ctx, query,
		m.StageID, m.RoundNumber, m.Team1ID, m.Team2ID, m.Team1Score, m.Team2Score,
		m.WinnerID, m.Format, m.Status, m.FeedMatchID,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanMatch(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) GetByFeedMatchID(ctx context.Context, exec SQLExecutor, feedMatchID int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE feed_match_id = $1`
	return r.scanMatch(executor.QueryRowContext(ctx, query, feedMatchID))
}

func (r *postgresMatchRepository) ListByStage(ctx context.Context, exec SQLExecutor, stageID int, filter ListMatchesFilter) ([]*models.Match, error) {
	executor := r.getExecutor(exec)
	var query strings.Builder
	query.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE stage_id = $1`)
	args := []interface{}{stageID}

	if filter.RoundNumber != nil {
		args = append(args, *filter.RoundNumber)
		fmt.Fprintf(&query, " AND round_number = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		fmt.Fprintf(&query, " AND status = $%d", len(args))
	}
	if filter.HasWinner != nil {
		if *filter.HasWinner {
			query.WriteString(" AND winner_id IS NOT NULL")
		} else {
			query.WriteString(" AND winner_id IS NULL")
		}
	}
	query.WriteString(" ORDER BY round_number ASC, id ASC")

	rows, err := executor.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, errScan := r.scanMatch(rows)
		if errScan != nil {
			return nil, errScan
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) ListActiveWithFeedID(ctx context.Context, exec SQLExecutor) ([]*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE status IN ($1, $2) AND feed_match_id IS NOT NULL
		ORDER BY id ASC`
	rows, err := executor.QueryContext(ctx, query, models.MatchStatusPending, models.MatchStatusLive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, errScan := r.scanMatch(rows)
		if errScan != nil {
			return nil, errScan
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches SET
			team1_score = $1, team2_score = $2, winner_id = $3, status = $4,
			map1_team1_score = $5, map1_team2_score = $6,
			map2_team1_score = $7, map2_team2_score = $8,
			map3_team1_score = $9, map3_team2_score = $10,
			last_feed_update = $11
		WHERE id = $12`
	result, err := executor.ExecContext(ctx, query,
		m.Team1Score, m.Team2Score, m.WinnerID, m.Status,
		m.Map1Team1Score, m.Map1Team2Score,
		m.Map2Team1Score, m.Map2Team2Score,
		m.Map3Team1Score, m.Map3Team2Score,
		m.LastFeedUpdate, m.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}
