package models

import "time"

// StageTeam records one team's participation in one stage. Wins and losses
// are always reset and recomputed from finished matches, never mutated
// independently. InitialSeed is the rank entering the stage (lower = better).
// Unique per (stage, team).
type StageTeam struct {
	ID            int       `json:"id" db:"id"`
	StageID       int       `json:"stage_id" db:"stage_id"`
	TeamID        int       `json:"team_id" db:"team_id"`
	Wins          int       `json:"wins" db:"wins"`
	Losses        int       `json:"losses" db:"losses"`
	InitialSeed   int       `json:"initial_seed" db:"initial_seed"`
	BuchholzScore float64   `json:"buchholz_score" db:"buchholz_score"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`

	Team *Team `json:"team,omitempty" db:"-"`
}
