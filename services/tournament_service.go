package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Dosada05/fantasy-league/models"
	"github.com/Dosada05/fantasy-league/repositories"
)

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify produces a URL-safe slug from a tournament name.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugCleaner.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

type TournamentService struct {
	tournamentRepo repositories.TournamentRepository
	stageRepo      repositories.StageRepository
}

func NewTournamentService(tournamentRepo repositories.TournamentRepository, stageRepo repositories.StageRepository) *TournamentService {
	return &TournamentService{tournamentRepo: tournamentRepo, stageRepo: stageRepo}
}

func (s *TournamentService) Create(ctx context.Context, t *models.Tournament) error {
	if t.Name == "" {
		return fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	}
	if t.EndDate.Before(t.StartDate) {
		return fmt.Errorf("%w: end date precedes start date", ErrValidationFailed)
	}
	if t.Slug == "" {
		t.Slug = Slugify(t.Name)
	}
	if err := s.tournamentRepo.Create(ctx, nil, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentSlugConflict) {
			return fmt.Errorf("%w: slug %q is already taken", ErrValidationFailed, t.Slug)
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (s *TournamentService) List(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	tournaments, err := s.tournamentRepo.List(ctx, nil, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

// GetBySlug returns a tournament with its stages attached, ordered by
// stage_order.
func (s *TournamentService) GetBySlug(ctx context.Context, slug string) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetBySlug(ctx, nil, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %q: %w", slug, err)
	}
	t.Stages, err = s.stageRepo.ListByTournament(ctx, nil, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament stages: %w", err)
	}
	return t, nil
}

func (s *TournamentService) GetLive(ctx context.Context) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetLive(ctx, nil)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load live tournament: %w", err)
	}
	return t, nil
}

// SetLive marks one tournament as the live one. The repository clears the
// flag on every other tournament in the same statement.
func (s *TournamentService) SetLive(ctx context.Context, tournamentID int, live bool) error {
	if err := s.tournamentRepo.SetLive(ctx, nil, tournamentID, live); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to update live flag: %w", err)
	}
	return nil
}
