package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/fantasy-league/models"
	"github.com/Dosada05/fantasy-league/repositories"
)

// Pick-size limits per slot. A Swiss pick names two 3-0 teams, six advancing
// teams and two 0-3 teams; a playoff pick names four QF winners, two SF
// winners and one champion.
const (
	MaxPicks3_0      = 2
	MaxPicksAdvance  = 6
	MaxPicks0_3      = 2
	MaxPicksQFWinner = 4
	MaxPicksSFWinner = 2
)

type PhasePickInput struct {
	Teams3_0     []int `json:"teams_3_0"`
	TeamsAdvance []int `json:"teams_advance"`
	Teams0_3     []int `json:"teams_0_3"`
}

type PlayoffPickInput struct {
	QuarterFinalWinners []int `json:"quarter_final_winners"`
	SemiFinalWinners    []int `json:"semi_final_winners"`
	FinalWinnerID       *int  `json:"final_winner_id"`
}

// PickService owns pick creation and editing, guarded by the stage
// lifecycle gates. All checks run before any mutation.
type PickService struct {
	txRunner        repositories.TxRunner
	tournamentRepo  repositories.TournamentRepository
	stageRepo       repositories.StageRepository
	stageTeamRepo   repositories.StageTeamRepository
	phasePickRepo   repositories.PhasePickRepository
	playoffPickRepo repositories.PlayoffPickRepository
}

func NewPickService(
	txRunner repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	stageRepo repositories.StageRepository,
	stageTeamRepo repositories.StageTeamRepository,
	phasePickRepo repositories.PhasePickRepository,
	playoffPickRepo repositories.PlayoffPickRepository,
) *PickService {
	return &PickService{
		txRunner:        txRunner,
		tournamentRepo:  tournamentRepo,
		stageRepo:       stageRepo,
		stageTeamRepo:   stageTeamRepo,
		phasePickRepo:   phasePickRepo,
		playoffPickRepo: playoffPickRepo,
	}
}

// GetOrCreatePhasePick returns the user's pick for a stage, creating an
// empty one on first interaction. The pick's is_locked flag is re-synced
// with the stage status: a reopened stage unlocks non-finalized picks, a
// locked stage locks them.
func (s *PickService) GetOrCreatePhasePick(ctx context.Context, userProfileID, stageID int) (*models.FantasyPhasePick, error) {
	stage, err := s.getStage(ctx, stageID)
	if err != nil {
		return nil, err
	}

	pick, err := s.phasePickRepo.GetByUserAndStage(ctx, nil, userProfileID, stageID)
	if err != nil {
		if !errors.Is(err, repositories.ErrPhasePickNotFound) {
			return nil, fmt.Errorf("failed to load phase pick: %w", err)
		}
		pick = &models.FantasyPhasePick{
			UserProfileID: userProfileID,
			StageID:       stageID,
			IsLocked:      stage.FantasyStatus == models.FantasyStatusLocked,
		}
		if err := s.phasePickRepo.Create(ctx, nil, pick); err != nil {
			return nil, fmt.Errorf("failed to create phase pick: %w", err)
		}
		pick.Teams3_0 = []int{}
		pick.TeamsAdvance = []int{}
		pick.Teams0_3 = []int{}
		return pick, nil
	}

	if err := s.syncPhasePickLock(ctx, stage, pick); err != nil {
		return nil, err
	}
	return pick, nil
}

func (s *PickService) syncPhasePickLock(ctx context.Context, stage *models.Stage, pick *models.FantasyPhasePick) error {
	switch {
	case stage.FantasyStatus == models.FantasyStatusLocked && !pick.IsLocked:
		pick.IsLocked = true
	case stage.FantasyStatus == models.FantasyStatusOpen && pick.IsLocked && !pick.IsFinalized:
		pick.IsLocked = false
	default:
		return nil
	}
	if err := s.phasePickRepo.SetLocked(ctx, nil, pick.ID, pick.IsLocked); err != nil {
		return fmt.Errorf("failed to sync pick lock: %w", err)
	}
	return nil
}

// SavePhasePick validates and stores a user's Swiss-stage predictions.
// Gate order: stage status, prior-stage finalization, then team validation;
// nothing is written until every check passes.
func (s *PickService) SavePhasePick(ctx context.Context, userProfileID, stageID int, input PhasePickInput) (*models.FantasyPhasePick, error) {
	stage, err := s.getStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if stage.Type != models.StageTypeSwiss {
		return nil, ErrStageNotSwiss
	}

	switch stage.FantasyStatus {
	case models.FantasyStatusLocked:
		return nil, ErrPicksLocked
	case models.FantasyStatusFinalized:
		return nil, ErrPicksFinalized
	}

	// Picks for stage N are gated on stage N-1 being fully scored.
	if stage.Order > 1 {
		previous, err := s.stageRepo.GetByTournamentAndOrder(ctx, nil, stage.TournamentID, stage.Order-1)
		if err != nil {
			return nil, fmt.Errorf("failed to load previous stage: %w", err)
		}
		if previous.FantasyStatus != models.FantasyStatusFinalized {
			return nil, fmt.Errorf("%w: stage %q is %s", ErrPreviousStageNotFinal, previous.Name, previous.FantasyStatus)
		}
	}

	if err := validateSlotSizes([]slotLimit{
		{models.Slot3_0, input.Teams3_0, MaxPicks3_0},
		{models.SlotAdvance, input.TeamsAdvance, MaxPicksAdvance},
		{models.Slot0_3, input.Teams0_3, MaxPicks0_3},
	}); err != nil {
		return nil, err
	}

	stageTeams, err := s.stageTeamRepo.ListByStage(ctx, nil, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stage teams: %w", err)
	}
	if err := validateMembership(stage, stageTeams, input.Teams3_0, input.TeamsAdvance, input.Teams0_3); err != nil {
		return nil, err
	}
	if err := validateDisjointSlots(input.Teams3_0, input.TeamsAdvance, input.Teams0_3); err != nil {
		return nil, err
	}

	pick, err := s.phasePickRepo.GetByUserAndStage(ctx, nil, userProfileID, stageID)
	if err != nil {
		if !errors.Is(err, repositories.ErrPhasePickNotFound) {
			return nil, fmt.Errorf("failed to load phase pick: %w", err)
		}
		pick = &models.FantasyPhasePick{UserProfileID: userProfileID, StageID: stageID}
		if err := s.phasePickRepo.Create(ctx, nil, pick); err != nil {
			return nil, fmt.Errorf("failed to create phase pick: %w", err)
		}
	} else if pick.IsLocked {
		// An admin may have locked this pick individually.
		return nil, ErrPicksLocked
	}

	txErr := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.phasePickRepo.ReplaceTeams(ctx, exec, pick.ID, models.Slot3_0, input.Teams3_0); err != nil {
			return err
		}
		if err := s.phasePickRepo.ReplaceTeams(ctx, exec, pick.ID, models.SlotAdvance, input.TeamsAdvance); err != nil {
			return err
		}
		return s.phasePickRepo.ReplaceTeams(ctx, exec, pick.ID, models.Slot0_3, input.Teams0_3)
	})
	if txErr != nil {
		return nil, fmt.Errorf("failed to save phase pick: %w", txErr)
	}

	pick.Teams3_0 = append([]int{}, input.Teams3_0...)
	pick.TeamsAdvance = append([]int{}, input.TeamsAdvance...)
	pick.Teams0_3 = append([]int{}, input.Teams0_3...)
	return pick, nil
}

// GetOrCreatePlayoffPick mirrors GetOrCreatePhasePick for playoff picks;
// the lock is synced with the tournament's playoff stage status.
func (s *PickService) GetOrCreatePlayoffPick(ctx context.Context, userProfileID, tournamentID int) (*models.FantasyPlayoffPick, error) {
	playoffStage, err := s.getPlayoffStage(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	pick, err := s.playoffPickRepo.GetByUserAndTournament(ctx, nil, userProfileID, tournamentID)
	if err != nil {
		if !errors.Is(err, repositories.ErrPlayoffPickNotFound) {
			return nil, fmt.Errorf("failed to load playoff pick: %w", err)
		}
		pick = &models.FantasyPlayoffPick{
			UserProfileID: userProfileID,
			TournamentID:  tournamentID,
			IsLocked:      playoffStage.FantasyStatus == models.FantasyStatusLocked,
		}
		if err := s.playoffPickRepo.Create(ctx, nil, pick); err != nil {
			return nil, fmt.Errorf("failed to create playoff pick: %w", err)
		}
		pick.QuarterFinalWinners = []int{}
		pick.SemiFinalWinners = []int{}
		return pick, nil
	}

	switch {
	case playoffStage.FantasyStatus == models.FantasyStatusLocked && !pick.IsLocked:
		pick.IsLocked = true
	case playoffStage.FantasyStatus == models.FantasyStatusOpen && pick.IsLocked && !pick.IsFinalized:
		pick.IsLocked = false
	default:
		return pick, nil
	}
	if err := s.playoffPickRepo.SetLocked(ctx, nil, pick.ID, pick.IsLocked); err != nil {
		return nil, fmt.Errorf("failed to sync pick lock: %w", err)
	}
	return pick, nil
}

// SavePlayoffPick validates and stores a user's playoff predictions. Gate:
// the playoff stage must be OPEN and every Swiss stage of the tournament
// must already be FINALIZED.
func (s *PickService) SavePlayoffPick(ctx context.Context, userProfileID, tournamentID int, input PlayoffPickInput) (*models.FantasyPlayoffPick, error) {
	playoffStage, err := s.getPlayoffStage(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	switch playoffStage.FantasyStatus {
	case models.FantasyStatusLocked:
		return nil, ErrPicksLocked
	case models.FantasyStatusFinalized:
		return nil, ErrPicksFinalized
	}

	stages, err := s.stageRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournament stages: %w", err)
	}
	for _, st := range stages {
		if st.Type == models.StageTypeSwiss && st.FantasyStatus != models.FantasyStatusFinalized {
			return nil, fmt.Errorf("%w: stage %q is %s", ErrSwissStagesNotFinal, st.Name, st.FantasyStatus)
		}
	}

	var finalSlot []int
	if input.FinalWinnerID != nil {
		finalSlot = []int{*input.FinalWinnerID}
	}
	if err := validateSlotSizes([]slotLimit{
		{models.SlotQFWinner, input.QuarterFinalWinners, MaxPicksQFWinner},
		{models.SlotSFWinner, input.SemiFinalWinners, MaxPicksSFWinner},
		{models.SlotFinalWinner, finalSlot, 1},
	}); err != nil {
		return nil, err
	}

	stageTeams, err := s.stageTeamRepo.ListByStage(ctx, nil, playoffStage.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load playoff stage teams: %w", err)
	}
	if err := validateMembership(playoffStage, stageTeams, input.QuarterFinalWinners, input.SemiFinalWinners, finalSlot); err != nil {
		return nil, err
	}

	pick, err := s.playoffPickRepo.GetByUserAndTournament(ctx, nil, userProfileID, tournamentID)
	if err != nil {
		if !errors.Is(err, repositories.ErrPlayoffPickNotFound) {
			return nil, fmt.Errorf("failed to load playoff pick: %w", err)
		}
		pick = &models.FantasyPlayoffPick{UserProfileID: userProfileID, TournamentID: tournamentID}
		if err := s.playoffPickRepo.Create(ctx, nil, pick); err != nil {
			return nil, fmt.Errorf("failed to create playoff pick: %w", err)
		}
	} else if pick.IsLocked {
		return nil, ErrPicksLocked
	}

	txErr := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.playoffPickRepo.ReplaceTeams(ctx, exec, pick.ID, models.SlotQFWinner, input.QuarterFinalWinners); err != nil {
			return err
		}
		if err := s.playoffPickRepo.ReplaceTeams(ctx, exec, pick.ID, models.SlotSFWinner, input.SemiFinalWinners); err != nil {
			return err
		}
		return s.playoffPickRepo.SetFinalWinner(ctx, exec, pick.ID, input.FinalWinnerID)
	})
	if txErr != nil {
		return nil, fmt.Errorf("failed to save playoff pick: %w", txErr)
	}

	pick.QuarterFinalWinners = append([]int{}, input.QuarterFinalWinners...)
	pick.SemiFinalWinners = append([]int{}, input.SemiFinalWinners...)
	pick.FinalWinnerID = input.FinalWinnerID
	return pick, nil
}

func (s *PickService) getStage(ctx context.Context, stageID int) (*models.Stage, error) {
	stage, err := s.stageRepo.GetByID(ctx, nil, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to load stage %d: %w", stageID, err)
	}
	return stage, nil
}

func (s *PickService) getPlayoffStage(ctx context.Context, tournamentID int) (*models.Stage, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	stage, err := s.stageRepo.GetPlayoffStage(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrNoPlayoffStage
		}
		return nil, fmt.Errorf("failed to load playoff stage: %w", err)
	}
	return stage, nil
}

type slotLimit struct {
	slot  models.PickSlot
	teams []int
	max   int
}

func validateSlotSizes(limits []slotLimit) error {
	for _, l := range limits {
		if len(l.teams) > l.max {
			return fmt.Errorf("%w: slot %s allows at most %d teams, got %d", ErrTooManyPicks, l.slot, l.max, len(l.teams))
		}
	}
	return nil
}

// validateMembership checks that every picked team participates in the
// stage and that no slot names the same team twice. Cross-slot overlap is
// allowed here: a playoff pick legitimately repeats a team across rounds.
func validateMembership(stage *models.Stage, stageTeams []*models.StageTeam, slots ...[]int) error {
	eligible := make(map[int]bool, len(stageTeams))
	for _, st := range stageTeams {
		eligible[st.TeamID] = true
	}

	for _, slot := range slots {
		seen := make(map[int]bool, len(slot))
		for _, teamID := range slot {
			if !eligible[teamID] {
				return fmt.Errorf("%w: team %d is not part of stage %q", ErrTeamNotInStage, teamID, stage.Name)
			}
			if seen[teamID] {
				return fmt.Errorf("%w: team %d", ErrDuplicatePick, teamID)
			}
			seen[teamID] = true
		}
	}
	return nil
}

// validateDisjointSlots rejects a team appearing in two different Swiss
// slots: a team cannot simultaneously go 3-0 and 0-3.
func validateDisjointSlots(slots ...[]int) error {
	seen := make(map[int]bool)
	for _, slot := range slots {
		for _, teamID := range slot {
			if seen[teamID] {
				return fmt.Errorf("%w: team %d appears in multiple slots", ErrDuplicatePick, teamID)
			}
			seen[teamID] = true
		}
	}
	return nil
}
