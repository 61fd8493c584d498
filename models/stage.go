package models

import "time"

// StageType mirrors the stage_type ENUM in the database.
type StageType string

const (
	StageTypeSwiss   StageType = "SWISS"
	StageTypePlayoff StageType = "PLAYOFF"
)

// FantasyStatus is the pick-lifecycle state of a stage.
// OPEN -> LOCKED -> FINALIZED; FINALIZED is terminal, LOCKED may be
// manually reopened by an operator.
type FantasyStatus string

const (
	FantasyStatusOpen      FantasyStatus = "OPEN"
	FantasyStatusLocked    FantasyStatus = "LOCKED"
	FantasyStatusFinalized FantasyStatus = "FINALIZED"
)

func (s FantasyStatus) Valid() bool {
	switch s {
	case FantasyStatusOpen, FantasyStatusLocked, FantasyStatusFinalized:
		return true
	}
	return false
}

// Stage is one phase of a tournament. Order is 1-based and unique within
// a tournament.
type Stage struct {
	ID            int           `json:"id" db:"id"`
	TournamentID  int           `json:"tournament_id" db:"tournament_id"`
	Name          string        `json:"name" db:"name"`
	Type          StageType     `json:"type" db:"type"`
	Order         int           `json:"order" db:"stage_order"`
	FantasyStatus FantasyStatus `json:"fantasy_status" db:"fantasy_status"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`

	StageTeams []*StageTeam `json:"stage_teams,omitempty" db:"-"`
	Matches    []*Match     `json:"matches,omitempty" db:"-"`
}
