package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// PickSlot tags the category a team was picked in. The tag is carried
// explicitly with each team reference; bonus eligibility is decided from the
// slot, never inferred from surrounding context.
type PickSlot string

const (
	Slot3_0         PickSlot = "3_0"
	SlotAdvance     PickSlot = "advance"
	Slot0_3         PickSlot = "0_3"
	SlotQFWinner    PickSlot = "qf_winner"
	SlotSFWinner    PickSlot = "sf_winner"
	SlotFinalWinner PickSlot = "final_winner"
)

// PointsBreakdown maps team id -> points awarded for that team within one
// pick. Stored as a JSONB object keyed by the decimal team id.
type PointsBreakdown map[int]int

func (b PointsBreakdown) Value() (driver.Value, error) {
	if b == nil {
		return []byte("{}"), nil
	}
	raw := make(map[string]int, len(b))
	for teamID, points := range b {
		raw[strconv.Itoa(teamID)] = points
	}
	return json.Marshal(raw)
}

func (b *PointsBreakdown) Scan(src interface{}) error {
	if src == nil {
		*b = PointsBreakdown{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for PointsBreakdown: %T", src)
	}
	raw := make(map[string]int)
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode points breakdown: %w", err)
	}
	out := make(PointsBreakdown, len(raw))
	for key, points := range raw {
		teamID, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("invalid team id %q in points breakdown: %w", key, err)
		}
		out[teamID] = points
	}
	*b = out
	return nil
}

// FantasyPhasePick holds one user's predictions for one Swiss stage:
// up to two 3-0 teams, up to six advancing teams and up to two 0-3 teams.
// Unique per (user_profile, stage). IsFinalized is a one-way latch set when
// points are computed.
type FantasyPhasePick struct {
	ID            int  `json:"id" db:"id"`
	UserProfileID int  `json:"user_profile_id" db:"user_profile_id"`
	StageID       int  `json:"stage_id" db:"stage_id"`
	PointsEarned  int  `json:"points_earned" db:"points_earned"`
	IsLocked      bool `json:"is_locked" db:"is_locked"`
	IsFinalized   bool `json:"is_finalized" db:"is_finalized"`

	Teams3_0            []int           `json:"teams_3_0" db:"-"`
	TeamsAdvance        []int           `json:"teams_advance" db:"-"`
	Teams0_3            []int           `json:"teams_0_3" db:"-"`
	TeamPointsBreakdown PointsBreakdown `json:"team_points_breakdown" db:"team_points_breakdown"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AllPickedTeamIDs returns every team referenced by the pick, deduplicated.
func (p *FantasyPhasePick) AllPickedTeamIDs() []int {
	seen := make(map[int]struct{})
	out := make([]int, 0, len(p.Teams3_0)+len(p.TeamsAdvance)+len(p.Teams0_3))
	for _, set := range [][]int{p.Teams3_0, p.TeamsAdvance, p.Teams0_3} {
		for _, id := range set {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// FantasyPlayoffPick holds one user's playoff predictions for a tournament:
// four quarter-final winners, two semi-final winners and the final winner.
// Unique per (user_profile, tournament).
type FantasyPlayoffPick struct {
	ID            int  `json:"id" db:"id"`
	UserProfileID int  `json:"user_profile_id" db:"user_profile_id"`
	TournamentID  int  `json:"tournament_id" db:"tournament_id"`
	PointsEarned  int  `json:"points_earned" db:"points_earned"`
	IsLocked      bool `json:"is_locked" db:"is_locked"`
	IsFinalized   bool `json:"is_finalized" db:"is_finalized"`

	QuarterFinalWinners []int           `json:"quarter_final_winners" db:"-"`
	SemiFinalWinners    []int           `json:"semi_final_winners" db:"-"`
	FinalWinnerID       *int            `json:"final_winner_id,omitempty" db:"final_winner_id"`
	TeamPointsBreakdown PointsBreakdown `json:"team_points_breakdown" db:"team_points_breakdown"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AllPickedTeamIDs returns every team referenced by the pick, deduplicated.
func (p *FantasyPlayoffPick) AllPickedTeamIDs() []int {
	seen := make(map[int]struct{})
	out := make([]int, 0, len(p.QuarterFinalWinners)+len(p.SemiFinalWinners)+1)
	sets := [][]int{p.QuarterFinalWinners, p.SemiFinalWinners}
	if p.FinalWinnerID != nil {
		sets = append(sets, []int{*p.FinalWinnerID})
	}
	for _, set := range sets {
		for _, id := range set {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
