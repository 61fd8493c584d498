package models

import "time"

type UserRole string

const (
	RolePlayer UserRole = "player"
	RoleAdmin  UserRole = "admin"
)

// UserProfile is the fantasy identity of one user. TotalFantasyPoints is a
// running aggregate maintained by atomic deltas when picks are finalized;
// it is never recomputed from scratch by summing pick rows.
type UserProfile struct {
	ID                 int       `json:"id" db:"id"`
	Username           string    `json:"username" db:"username"`
	Email              string    `json:"email" db:"email"`
	PasswordHash       string    `json:"-" db:"password_hash"`
	Role               UserRole  `json:"role" db:"role"`
	AvatarURL          *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	TotalFantasyPoints int       `json:"total_fantasy_points" db:"total_fantasy_points"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// LeaderboardEntry is the read-side ranking row: rank is dense by total
// points descending, ties broken by username ascending.
type LeaderboardEntry struct {
	Rank               int     `json:"rank"`
	UserProfileID      int     `json:"user_profile_id"`
	Username           string  `json:"username"`
	AvatarURL          *string `json:"avatar_url,omitempty"`
	TotalFantasyPoints int     `json:"total_fantasy_points"`
}
