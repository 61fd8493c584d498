package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/fantasy-league/live"
	"github.com/Dosada05/fantasy-league/models"
	"github.com/Dosada05/fantasy-league/repositories"
)

// StageService manages the fantasy lifecycle of a stage. The status walk
// is OPEN <-> LOCKED -> FINALIZED; FINALIZED is terminal and only the
// finalize flow in FantasyService may set it.
type StageService struct {
	txRunner        repositories.TxRunner
	stageRepo       repositories.StageRepository
	stageTeamRepo   repositories.StageTeamRepository
	matchRepo       repositories.MatchRepository
	phasePickRepo   repositories.PhasePickRepository
	playoffPickRepo repositories.PlayoffPickRepository
	hub             *live.Hub
	logger          *slog.Logger
}

func NewStageService(
	txRunner repositories.TxRunner,
	stageRepo repositories.StageRepository,
	stageTeamRepo repositories.StageTeamRepository,
	matchRepo repositories.MatchRepository,
	phasePickRepo repositories.PhasePickRepository,
	playoffPickRepo repositories.PlayoffPickRepository,
	hub *live.Hub,
	logger *slog.Logger,
) *StageService {
	return &StageService{
		txRunner:        txRunner,
		stageRepo:       stageRepo,
		stageTeamRepo:   stageTeamRepo,
		matchRepo:       matchRepo,
		phasePickRepo:   phasePickRepo,
		playoffPickRepo: playoffPickRepo,
		hub:             hub,
		logger:          logger,
	}
}

// GetStageDetails returns a stage with its standings and matches attached.
func (s *StageService) GetStageDetails(ctx context.Context, stageID int) (*models.Stage, error) {
	stage, err := s.stageRepo.GetByID(ctx, nil, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to load stage %d: %w", stageID, err)
	}

	stage.StageTeams, err = s.stageTeamRepo.ListByStage(ctx, nil, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stage teams: %w", err)
	}
	stage.Matches, err = s.matchRepo.ListByStage(ctx, nil, stageID, repositories.ListMatchesFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load stage matches: %w", err)
	}
	return stage, nil
}

// GetPlayoffStageDetails returns a tournament's playoff stage with its
// teams and bracket matches.
func (s *StageService) GetPlayoffStageDetails(ctx context.Context, tournamentID int) (*models.Stage, error) {
	stage, err := s.stageRepo.GetPlayoffStage(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrNoPlayoffStage
		}
		return nil, fmt.Errorf("failed to load playoff stage: %w", err)
	}
	return s.GetStageDetails(ctx, stage.ID)
}

// SetFantasyStatus performs a manual OPEN <-> LOCKED transition. Locking a
// stage force-locks every non-finalized pick in it; reopening unlocks them.
// Requesting FINALIZED here is rejected, as is touching a finalized stage.
func (s *StageService) SetFantasyStatus(ctx context.Context, stageID int, newStatus models.FantasyStatus) (*models.Stage, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidationFailed, newStatus)
	}
	if newStatus == models.FantasyStatusFinalized {
		return nil, fmt.Errorf("%w: FINALIZED is set by stage finalization, not directly", ErrInvalidStatusTransition)
	}

	stage, err := s.stageRepo.GetByID(ctx, nil, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to load stage %d: %w", stageID, err)
	}
	if stage.FantasyStatus == models.FantasyStatusFinalized {
		return nil, ErrStageFinalized
	}
	if stage.FantasyStatus == newStatus {
		return stage, nil
	}

	locked := newStatus == models.FantasyStatusLocked
	txErr := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.stageRepo.UpdateFantasyStatus(ctx, exec, stageID, newStatus); err != nil {
			return err
		}
		if err := s.phasePickRepo.SetLockedByStage(ctx, exec, stageID, locked); err != nil {
			return err
		}
		if stage.Type == models.StageTypePlayoff {
			return s.playoffPickRepo.SetLockedByTournament(ctx, exec, stage.TournamentID, locked)
		}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("failed to update stage status: %w", txErr)
	}

	s.logger.Info("stage fantasy status changed",
		slog.Int("stage_id", stageID),
		slog.String("from", string(stage.FantasyStatus)),
		slog.String("to", string(newStatus)),
	)
	stage.FantasyStatus = newStatus
	if s.hub != nil {
		s.hub.BroadcastToTournament(stage.TournamentID, live.EventStageStatusChanged, stage)
	}
	return stage, nil
}

// CreateStage registers a new stage for a tournament.
func (s *StageService) CreateStage(ctx context.Context, stage *models.Stage) error {
	if stage.Name == "" || stage.Order < 1 {
		return fmt.Errorf("%w: stage requires a name and a positive order", ErrValidationFailed)
	}
	if stage.Type != models.StageTypeSwiss && stage.Type != models.StageTypePlayoff {
		return fmt.Errorf("%w: unknown stage type %q", ErrValidationFailed, stage.Type)
	}
	if stage.FantasyStatus == "" {
		stage.FantasyStatus = models.FantasyStatusOpen
	}
	if err := s.stageRepo.Create(ctx, nil, stage); err != nil {
		if errors.Is(err, repositories.ErrStageOrderConflict) {
			return fmt.Errorf("%w: order %d is already taken", ErrValidationFailed, stage.Order)
		}
		return fmt.Errorf("failed to create stage: %w", err)
	}
	return nil
}

// AddTeamToStage seeds a team into a stage with a 0-0 record.
func (s *StageService) AddTeamToStage(ctx context.Context, stageID, teamID, initialSeed int) (*models.StageTeam, error) {
	if _, err := s.stageRepo.GetByID(ctx, nil, stageID); err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to load stage %d: %w", stageID, err)
	}
	st := &models.StageTeam{
		StageID:     stageID,
		TeamID:      teamID,
		InitialSeed: initialSeed,
	}
	if err := s.stageTeamRepo.Create(ctx, nil, st); err != nil {
		if errors.Is(err, repositories.ErrStageTeamConflict) {
			return nil, fmt.Errorf("%w: team %d is already in stage %d", ErrValidationFailed, teamID, stageID)
		}
		return nil, fmt.Errorf("failed to add team to stage: %w", err)
	}
	return st, nil
}
