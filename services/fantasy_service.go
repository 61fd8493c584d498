package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/fantasy-league/models"
	"github.com/Dosada05/fantasy-league/repositories"
)

// FinalizeResult reports the outcome of a batch finalize operation. When the
// batch fails the transaction is rolled back, so Processed is always 0 on
// the error path.
type FinalizeResult struct {
	Processed int  `json:"processed"`
	Failed    int  `json:"failed"`
	Finalized bool `json:"finalized"`
}

// FantasyService owns pick scoring and the one-way finalize operations.
type FantasyService struct {
	txRunner        repositories.TxRunner
	tournamentRepo  repositories.TournamentRepository
	stageRepo       repositories.StageRepository
	stageTeamRepo   repositories.StageTeamRepository
	matchRepo       repositories.MatchRepository
	userRepo        repositories.UserRepository
	phasePickRepo   repositories.PhasePickRepository
	playoffPickRepo repositories.PlayoffPickRepository
	logger          *slog.Logger
}

func NewFantasyService(
	txRunner repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	stageRepo repositories.StageRepository,
	stageTeamRepo repositories.StageTeamRepository,
	matchRepo repositories.MatchRepository,
	userRepo repositories.UserRepository,
	phasePickRepo repositories.PhasePickRepository,
	playoffPickRepo repositories.PlayoffPickRepository,
	logger *slog.Logger,
) *FantasyService {
	return &FantasyService{
		txRunner:        txRunner,
		tournamentRepo:  tournamentRepo,
		stageRepo:       stageRepo,
		stageTeamRepo:   stageTeamRepo,
		matchRepo:       matchRepo,
		userRepo:        userRepo,
		phasePickRepo:   phasePickRepo,
		playoffPickRepo: playoffPickRepo,
		logger:          logger,
	}
}

// FinalizeStage computes points for every non-finalized pick of a Swiss
// stage and flips the stage's fantasy status to FINALIZED. The whole batch
// runs in one transaction: a single failing pick rolls back every delta and
// leaves the stage status untouched. Re-running on a stage with nothing
// pending is a success with zero processed.
func (s *FantasyService) FinalizeStage(ctx context.Context, stageID int) (*FinalizeResult, error) {
	stage, err := s.stageRepo.GetByID(ctx, nil, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to load stage %d: %w", stageID, err)
	}
	if stage.Type == models.StageTypePlayoff {
		return nil, ErrStageNotSwiss
	}

	pending, err := s.phasePickRepo.ListByStage(ctx, nil, stageID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending picks for stage %d: %w", stageID, err)
	}
	if len(pending) == 0 {
		if stage.FantasyStatus != models.FantasyStatusFinalized {
			if err := s.stageRepo.UpdateFantasyStatus(ctx, nil, stageID, models.FantasyStatusFinalized); err != nil {
				return nil, fmt.Errorf("failed to finalize stage %d status: %w", stageID, err)
			}
		}
		s.logger.Info("no pending fantasy picks for stage", slog.Int("stage_id", stageID))
		return &FinalizeResult{Processed: 0, Finalized: true}, nil
	}

	processed := 0
	txErr := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		stageTeams, err := s.stageTeamRepo.ListByStage(ctx, exec, stageID)
		if err != nil {
			return fmt.Errorf("failed to load stage teams: %w", err)
		}
		outcome := ComputeSwissOutcome(stageTeams)

		for _, pick := range pending {
			if err := s.scorePhasePickTx(ctx, exec, pick, outcome); err != nil {
				return fmt.Errorf("pick %d: %w", pick.ID, err)
			}
			processed++
		}
		return s.stageRepo.UpdateFantasyStatus(ctx, exec, stageID, models.FantasyStatusFinalized)
	})
	if txErr != nil {
		s.logger.Error("stage finalize rolled back",
			slog.Int("stage_id", stageID),
			slog.Int("pending", len(pending)),
			slog.Any("error", txErr),
		)
		return &FinalizeResult{Processed: 0, Failed: len(pending)}, fmt.Errorf("failed to finalize stage %d: %w", stageID, txErr)
	}

	s.logger.Info("stage fantasy picks finalized",
		slog.Int("stage_id", stageID),
		slog.Int("processed", processed),
	)
	return &FinalizeResult{Processed: processed, Finalized: true}, nil
}

// scorePhasePickTx scores one pick inside the batch transaction. A pick with
// leftover points is being recalculated: the previous award is subtracted
// from the owner's running total before rescoring, so the counter never
// double-counts.
func (s *FantasyService) scorePhasePickTx(ctx context.Context, exec repositories.SQLExecutor, pick *models.FantasyPhasePick, outcome SwissOutcome) error {
	if pick.IsFinalized {
		return nil
	}
	if pick.PointsEarned != 0 {
		if err := s.userRepo.AddFantasyPoints(ctx, exec, pick.UserProfileID, -pick.PointsEarned); err != nil {
			return fmt.Errorf("failed to revert previous points: %w", err)
		}
		if err := s.phasePickRepo.ResetPoints(ctx, exec, pick.ID); err != nil {
			return fmt.Errorf("failed to reset points: %w", err)
		}
		pick.PointsEarned = 0
	}

	score := ScorePhasePick(pick, outcome)
	if err := s.phasePickRepo.SaveResult(ctx, exec, pick.ID, score.Total, score.Breakdown, true); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	if err := s.userRepo.AddFantasyPoints(ctx, exec, pick.UserProfileID, score.Total); err != nil {
		return fmt.Errorf("failed to credit points: %w", err)
	}
	pick.PointsEarned = score.Total
	pick.TeamPointsBreakdown = score.Breakdown
	pick.IsFinalized = true
	return nil
}

// FinalizePhasePick scores a single pick. Calling it on an already
// finalized pick is an idempotent no-op success.
func (s *FantasyService) FinalizePhasePick(ctx context.Context, pickID int) error {
	pick, err := s.phasePickRepo.GetByID(ctx, nil, pickID)
	if err != nil {
		if errors.Is(err, repositories.ErrPhasePickNotFound) {
			return ErrPickNotFound
		}
		return fmt.Errorf("failed to load pick %d: %w", pickID, err)
	}
	if pick.IsFinalized {
		return nil
	}

	return s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		stageTeams, err := s.stageTeamRepo.ListByStage(ctx, exec, pick.StageID)
		if err != nil {
			return fmt.Errorf("failed to load stage teams: %w", err)
		}
		return s.scorePhasePickTx(ctx, exec, pick, ComputeSwissOutcome(stageTeams))
	})
}

// FinalizePlayoffs computes points for every non-finalized playoff pick of a
// tournament. Precondition: the playoff stage's fantasy status is already
// FINALIZED (an explicit operator action, never derived from match
// completeness here). Batch semantics match FinalizeStage.
func (s *FantasyService) FinalizePlayoffs(ctx context.Context, tournamentID int) (*FinalizeResult, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	playoffStage, err := s.stageRepo.GetPlayoffStage(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrNoPlayoffStage
		}
		return nil, fmt.Errorf("failed to load playoff stage: %w", err)
	}
	if playoffStage.FantasyStatus != models.FantasyStatusFinalized {
		return nil, ErrPlayoffStageNotFinal
	}

	pending, err := s.playoffPickRepo.ListByTournament(ctx, nil, tournamentID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending playoff picks: %w", err)
	}
	if len(pending) == 0 {
		s.logger.Info("no pending playoff picks for tournament", slog.Int("tournament_id", tournamentID))
		return &FinalizeResult{Processed: 0, Finalized: true}, nil
	}

	processed := 0
	txErr := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		hasWinner := true
		matches, err := s.matchRepo.ListByStage(ctx, exec, playoffStage.ID, repositories.ListMatchesFilter{HasWinner: &hasWinner})
		if err != nil {
			return fmt.Errorf("failed to load playoff matches: %w", err)
		}
		outcome := ComputePlayoffOutcome(matches)

		for _, pick := range pending {
			if err := s.scorePlayoffPickTx(ctx, exec, pick, outcome); err != nil {
				return fmt.Errorf("pick %d: %w", pick.ID, err)
			}
			processed++
		}
		return nil
	})
	if txErr != nil {
		s.logger.Error("playoff finalize rolled back",
			slog.Int("tournament_id", tournamentID),
			slog.Int("pending", len(pending)),
			slog.Any("error", txErr),
		)
		return &FinalizeResult{Processed: 0, Failed: len(pending)}, fmt.Errorf("failed to finalize playoffs for tournament %d: %w", tournamentID, txErr)
	}

	s.logger.Info("playoff fantasy picks finalized",
		slog.Int("tournament_id", tournamentID),
		slog.Int("processed", processed),
	)
	return &FinalizeResult{Processed: processed, Finalized: true}, nil
}

func (s *FantasyService) scorePlayoffPickTx(ctx context.Context, exec repositories.SQLExecutor, pick *models.FantasyPlayoffPick, outcome PlayoffOutcome) error {
	if pick.IsFinalized {
		return nil
	}
	if pick.PointsEarned != 0 {
		if err := s.userRepo.AddFantasyPoints(ctx, exec, pick.UserProfileID, -pick.PointsEarned); err != nil {
			return fmt.Errorf("failed to revert previous points: %w", err)
		}
		if err := s.playoffPickRepo.ResetPoints(ctx, exec, pick.ID); err != nil {
			return fmt.Errorf("failed to reset points: %w", err)
		}
		pick.PointsEarned = 0
	}

	score := ScorePlayoffPick(pick, outcome)
	if err := s.playoffPickRepo.SaveResult(ctx, exec, pick.ID, score.Total, score.Breakdown, true); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	if err := s.userRepo.AddFantasyPoints(ctx, exec, pick.UserProfileID, score.Total); err != nil {
		return fmt.Errorf("failed to credit points: %w", err)
	}
	pick.PointsEarned = score.Total
	pick.TeamPointsBreakdown = score.Breakdown
	pick.IsFinalized = true
	return nil
}
