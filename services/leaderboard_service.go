package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/fantasy-league/models"
	"github.com/Dosada05/fantasy-league/repositories"
)

const LeaderboardPageSize = 25

// PublicProfile is the read-side projection of a user's fantasy history:
// no email, no role, just the picks and the points they produced.
type PublicProfile struct {
	UserProfileID      int                          `json:"user_profile_id"`
	Username           string                       `json:"username"`
	AvatarURL          *string                      `json:"avatar_url,omitempty"`
	TotalFantasyPoints int                          `json:"total_fantasy_points"`
	PhasePicks         []*models.FantasyPhasePick   `json:"phase_picks"`
	PlayoffPicks       []*models.FantasyPlayoffPick `json:"playoff_picks"`
}

type LeaderboardPage struct {
	Entries []*models.LeaderboardEntry `json:"entries"`
	Page    int                        `json:"page"`
}

type LeaderboardService struct {
	userRepo        repositories.UserRepository
	phasePickRepo   repositories.PhasePickRepository
	playoffPickRepo repositories.PlayoffPickRepository
}

func NewLeaderboardService(
	userRepo repositories.UserRepository,
	phasePickRepo repositories.PhasePickRepository,
	playoffPickRepo repositories.PlayoffPickRepository,
) *LeaderboardService {
	return &LeaderboardService{
		userRepo:        userRepo,
		phasePickRepo:   phasePickRepo,
		playoffPickRepo: playoffPickRepo,
	}
}

// GetPage returns one leaderboard page. Pages are 1-based; anything below
// 1 is treated as the first page.
func (s *LeaderboardService) GetPage(ctx context.Context, page int) (*LeaderboardPage, error) {
	if page < 1 {
		page = 1
	}
	entries, err := s.userRepo.Leaderboard(ctx, nil, LeaderboardPageSize, (page-1)*LeaderboardPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return &LeaderboardPage{Entries: entries, Page: page}, nil
}

// GetPublicProfile returns a user's picks with their scored breakdowns.
func (s *LeaderboardService) GetPublicProfile(ctx context.Context, userProfileID int) (*PublicProfile, error) {
	user, err := s.userRepo.GetByID(ctx, nil, userProfileID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %d: %w", userProfileID, err)
	}

	phasePicks, err := s.phasePickRepo.ListByUser(ctx, nil, userProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load phase picks: %w", err)
	}
	playoffPicks, err := s.playoffPickRepo.ListByUser(ctx, nil, userProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load playoff picks: %w", err)
	}

	return &PublicProfile{
		UserProfileID:      user.ID,
		Username:           user.Username,
		AvatarURL:          user.AvatarURL,
		TotalFantasyPoints: user.TotalFantasyPoints,
		PhasePicks:         phasePicks,
		PlayoffPicks:       playoffPicks,
	}, nil
}
