package models

import "time"

// TeamRegion mirrors the team_region ENUM in the database.
type TeamRegion string

const (
	RegionEurope       TeamRegion = "EU"
	RegionNorthAmerica TeamRegion = "NA"
	RegionSouthAmerica TeamRegion = "SA"
	RegionAsia         TeamRegion = "AS"
	RegionOceania      TeamRegion = "OC"
)

// Team is a participating esports team. FeedTeamID correlates the team with
// the external live-score feed and may be absent for teams entered manually.
type Team struct {
	ID         int        `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Region     TeamRegion `json:"region" db:"region"`
	FeedTeamID *int       `json:"feed_team_id,omitempty" db:"feed_team_id"`
	LogoKey    *string    `json:"-" db:"logo_key"`
	LogoURL    *string    `json:"logo_url,omitempty" db:"-"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
