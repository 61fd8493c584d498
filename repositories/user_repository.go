package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/fantasy-league/models"
)

var (
	ErrUserNotFound         = errors.New("user profile not found")
	ErrUserEmailConflict    = errors.New("email address is already in use")
	ErrUserUsernameConflict = errors.New("username is already in use")
)

type UserRepository interface {
	Create(ctx context.Context, exec SQLExecutor, user *models.UserProfile) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.UserProfile, error)
	GetByEmail(ctx context.Context, exec SQLExecutor, email string) (*models.UserProfile, error)
	GetByUsername(ctx context.Context, exec SQLExecutor, username string) (*models.UserProfile, error)
	// AddFantasyPoints applies a relative delta to total_fantasy_points in a
	// single statement. All mutations of the running total go through here;
	// read-modify-write of the counter is forbidden (lost updates under
	// concurrent finalization).
	AddFantasyPoints(ctx context.Context, exec SQLExecutor, userProfileID, delta int) error
	// Leaderboard returns ranked rows ordered by total points descending,
	// username ascending on ties. Rank is dense and computed over the whole
	// table, so it stays correct across pages.
	Leaderboard(ctx context.Context, exec SQLExecutor, limit, offset int) ([]*models.LeaderboardEntry, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const userColumns = `id, username, email, password_hash, role, avatar_url, total_fantasy_points, created_at`

func (r *postgresUserRepository) scanUser(rowScanner interface{ Scan(...interface{}) error }) (*models.UserProfile, error) {
	u := &models.UserProfile{}
	err := rowScanner.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&u.AvatarURL, &u.TotalFantasyPoints, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *postgresUserRepository) Create(ctx context.Context, exec SQLExecutor, u *models.UserProfile) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO user_profiles (username, email, password_hash, role, avatar_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, total_fantasy_points, created_at`
	err := executor.QueryRowContext(ctx, query, u.Username, u.Email, u.PasswordHash, u.Role, u.AvatarURL).
		Scan(&u.ID, &u.TotalFantasyPoints, &u.CreatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err, "user_profiles_email_key"):
			return ErrUserEmailConflict
		case isUniqueViolation(err, "user_profiles_username_key"):
			return ErrUserUsernameConflict
		}
		return fmt.Errorf("failed to create user profile: %w", err)
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.UserProfile, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + userColumns + ` FROM user_profiles WHERE id = $1`
	return r.scanUser(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, exec SQLExecutor, email string) (*models.UserProfile, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + userColumns + ` FROM user_profiles WHERE email = $1`
	return r.scanUser(executor.QueryRowContext(ctx, query, email))
}

func (r *postgresUserRepository) GetByUsername(ctx context.Context, exec SQLExecutor, username string) (*models.UserProfile, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + userColumns + ` FROM user_profiles WHERE username = $1`
	return r.scanUser(executor.QueryRowContext(ctx, query, username))
}

func (r *postgresUserRepository) AddFantasyPoints(ctx context.Context, exec SQLExecutor, userProfileID, delta int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE user_profiles SET total_fantasy_points = total_fantasy_points + $1 WHERE id = $2`,
		delta, userProfileID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) Leaderboard(ctx context.Context, exec SQLExecutor, limit, offset int) ([]*models.LeaderboardEntry, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT DENSE_RANK() OVER (ORDER BY total_fantasy_points DESC) AS rank,
		       id, username, avatar_url, total_fantasy_points
		FROM user_profiles
		ORDER BY total_fantasy_points DESC, username ASC
		LIMIT $1 OFFSET $2`
	rows, err := executor.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.LeaderboardEntry, 0)
	for rows.Next() {
		e := &models.LeaderboardEntry{}
		if errScan := rows.Scan(&e.Rank, &e.UserProfileID, &e.Username, &e.AvatarURL, &e.TotalFantasyPoints); errScan != nil {
			return nil, errScan
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
