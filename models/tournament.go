package models

import "time"

// TournamentType mirrors the tournament_type ENUM in the database.
type TournamentType string

const (
	TournamentTypeMajor TournamentType = "MAJOR"
	TournamentTypePGL   TournamentType = "PGL"
	TournamentTypeESL   TournamentType = "ESL"
)

// Tournament is the top-level bracket container. At most one tournament
// should be flagged live at a time (recommended, not enforced).
type Tournament struct {
	ID          int            `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Slug        string         `json:"slug" db:"slug"`
	Description *string        `json:"description,omitempty" db:"description"`
	Location    *string        `json:"location,omitempty" db:"location"`
	Type        TournamentType `json:"type" db:"type"`
	StartDate   time.Time      `json:"start_date" db:"start_date"`
	EndDate     time.Time      `json:"end_date" db:"end_date"`
	FeedID      *int           `json:"feed_id,omitempty" db:"feed_id"`
	IsLive      bool           `json:"is_live" db:"is_live"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`

	// Stages ordered by Stage.Order, populated by the service layer.
	Stages []*Stage `json:"stages,omitempty" db:"-"`
}
