package models

import "time"

type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "PENDING"
	MatchStatusLive     MatchStatus = "LIVE"
	MatchStatusFinished MatchStatus = "FINISHED"
	MatchStatusCanceled MatchStatus = "CANCELED"
)

type MatchFormat string

const (
	MatchFormatBO1 MatchFormat = "BO1"
	MatchFormatBO3 MatchFormat = "BO3"
)

// Match belongs to one stage. Invariant: a FINISHED match carries a winner
// that is one of the two participants; a CANCELED match carries none.
// In playoff stages round_number 1 = quarter finals, 2 = semi finals,
// 3 = grand final.
type Match struct {
	ID          int         `json:"id" db:"id"`
	StageID     int         `json:"stage_id" db:"stage_id"`
	RoundNumber int         `json:"round_number" db:"round_number"`
	Team1ID     int         `json:"team1_id" db:"team1_id"`
	Team2ID     int         `json:"team2_id" db:"team2_id"`
	Team1Score  int         `json:"team1_score" db:"team1_score"`
	Team2Score  int         `json:"team2_score" db:"team2_score"`
	WinnerID    *int        `json:"winner_id,omitempty" db:"winner_id"`
	Format      MatchFormat `json:"format" db:"format"`
	Status      MatchStatus `json:"status" db:"status"`

	// Per-map scores, nil until the map is played (BO3 at most).
	Map1Team1Score *int `json:"map1_team1_score,omitempty" db:"map1_team1_score"`
	Map1Team2Score *int `json:"map1_team2_score,omitempty" db:"map1_team2_score"`
	Map2Team1Score *int `json:"map2_team1_score,omitempty" db:"map2_team1_score"`
	Map2Team2Score *int `json:"map2_team2_score,omitempty" db:"map2_team2_score"`
	Map3Team1Score *int `json:"map3_team1_score,omitempty" db:"map3_team1_score"`
	Map3Team2Score *int `json:"map3_team2_score,omitempty" db:"map3_team2_score"`

	FeedMatchID    *int       `json:"feed_match_id,omitempty" db:"feed_match_id"`
	LastFeedUpdate *time.Time `json:"last_feed_update,omitempty" db:"last_feed_update"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// HasParticipant reports whether teamID plays in this match.
func (m *Match) HasParticipant(teamID int) bool {
	return m.Team1ID == teamID || m.Team2ID == teamID
}

// LoserID returns the participant that did not win, or 0 while no winner
// is set.
func (m *Match) LoserID() int {
	if m.WinnerID == nil {
		return 0
	}
	if *m.WinnerID == m.Team1ID {
		return m.Team2ID
	}
	return m.Team1ID
}
