package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Dosada05/fantasy-league/models"
	"github.com/Dosada05/fantasy-league/repositories"
	"github.com/Dosada05/fantasy-league/storage"
)

var allowedLogoTypes = map[string]string{
	"image/png":     "png",
	"image/jpeg":    "jpg",
	"image/svg+xml": "svg",
	"image/webp":    "webp",
}

type TeamService struct {
	teamRepo repositories.TeamRepository
	uploader storage.FileUploader
}

func NewTeamService(teamRepo repositories.TeamRepository, uploader storage.FileUploader) *TeamService {
	return &TeamService{teamRepo: teamRepo, uploader: uploader}
}

func (s *TeamService) Create(ctx context.Context, team *models.Team) error {
	if team.Name == "" {
		return fmt.Errorf("%w: team name is required", ErrValidationFailed)
	}
	if err := s.teamRepo.Create(ctx, nil, team); err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (s *TeamService) GetByID(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	s.populateLogoURL(team)
	return team, nil
}

// UploadLogo stores a team logo in the object store and records the key.
// A previous logo is removed best-effort after the new one is saved.
func (s *TeamService) UploadLogo(ctx context.Context, teamID int, contentType string, file io.Reader) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}

	ext, ok := allowedLogoTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLogoType, contentType)
	}

	key := fmt.Sprintf("teams/%d/logo_%d.%s", teamID, time.Now().Unix(), ext)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload logo: %w", err)
	}

	oldKey := team.LogoKey
	if err := s.teamRepo.UpdateLogoKey(ctx, nil, teamID, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to store logo key: %w", err)
	}
	if oldKey != nil && *oldKey != result.Key {
		// Orphaned objects are tolerable; a failed delete is not worth failing
		// the request over.
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	team.LogoKey = &result.Key
	s.populateLogoURL(team)
	return team, nil
}

func (s *TeamService) populateLogoURL(team *models.Team) {
	if team.LogoKey == nil || s.uploader == nil {
		return
	}
	url := s.uploader.GetPublicURL(*team.LogoKey)
	if url != "" {
		team.LogoURL = &url
	}
}
