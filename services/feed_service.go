package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/fantasy-league/feed"
	"github.com/Dosada05/fantasy-league/live"
	"github.com/Dosada05/fantasy-league/models"
	"github.com/Dosada05/fantasy-league/repositories"
)

const pollerConcurrency = 8

// FeedService ingests match results, from the provider webhook, the
// poller, or manual admin entry, and keeps stage standings consistent
// with the stored matches.
type FeedService struct {
	txRunner      repositories.TxRunner
	stageRepo     repositories.StageRepository
	stageTeamRepo repositories.StageTeamRepository
	matchRepo     repositories.MatchRepository
	teamRepo      repositories.TeamRepository
	feedClient    feed.Client
	hub           *live.Hub
	logger        *slog.Logger
}

func NewFeedService(
	txRunner repositories.TxRunner,
	stageRepo repositories.StageRepository,
	stageTeamRepo repositories.StageTeamRepository,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	feedClient feed.Client,
	hub *live.Hub,
	logger *slog.Logger,
) *FeedService {
	return &FeedService{
		txRunner:      txRunner,
		stageRepo:     stageRepo,
		stageTeamRepo: stageTeamRepo,
		matchRepo:     matchRepo,
		teamRepo:      teamRepo,
		feedClient:    feedClient,
		hub:           hub,
		logger:        logger,
	}
}

// normalizeFeedStatus maps the provider's status vocabulary onto ours.
func normalizeFeedStatus(status string) (models.MatchStatus, error) {
	switch strings.ToLower(status) {
	case "not_started", "scheduled", "pending":
		return models.MatchStatusPending, nil
	case "running", "live", "in_progress":
		return models.MatchStatusLive, nil
	case "finished", "completed":
		return models.MatchStatusFinished, nil
	case "canceled", "cancelled", "forfeit":
		return models.MatchStatusCanceled, nil
	}
	return "", fmt.Errorf("%w: unknown feed status %q", ErrValidationFailed, status)
}

// ApplyFeedUpdate maps a provider payload onto the local match and applies
// it. Unknown feed match ids are skipped silently: the provider covers
// more matches than we track.
func (s *FeedService) ApplyFeedUpdate(ctx context.Context, update *feed.MatchUpdate) error {
	match, err := s.matchRepo.GetByFeedMatchID(ctx, nil, update.FeedMatchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			s.logger.Debug("feed update for untracked match", slog.Int("feed_match_id", update.FeedMatchID))
			return nil
		}
		return fmt.Errorf("failed to load match by feed id %d: %w", update.FeedMatchID, err)
	}

	status, err := normalizeFeedStatus(update.Status)
	if err != nil {
		return err
	}

	var winnerID *int
	if update.WinnerFeedTeamID != nil {
		winner, err := s.teamRepo.GetByFeedTeamID(ctx, nil, *update.WinnerFeedTeamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return fmt.Errorf("%w: feed team %d is not tracked", ErrMatchWinnerInvalid, *update.WinnerFeedTeamID)
			}
			return fmt.Errorf("failed to resolve winner team: %w", err)
		}
		winnerID = &winner.ID
	}

	match.Status = status
	match.Team1Score = update.Team1Score
	match.Team2Score = update.Team2Score
	match.WinnerID = winnerID
	applyMapScores(match, update.MapScores)
	now := time.Now().UTC()
	match.LastFeedUpdate = &now

	return s.applyResult(ctx, match)
}

func applyMapScores(match *models.Match, scores []feed.MapScore) {
	for _, ms := range scores {
		t1, t2 := ms.Team1Score, ms.Team2Score
		switch ms.MapNumber {
		case 1:
			match.Map1Team1Score, match.Map1Team2Score = &t1, &t2
		case 2:
			match.Map2Team1Score, match.Map2Team2Score = &t1, &t2
		case 3:
			match.Map3Team1Score, match.Map3Team2Score = &t1, &t2
		}
	}
}

type MatchResultInput struct {
	Status     models.MatchStatus `json:"status"`
	Team1Score int                `json:"team1_score"`
	Team2Score int                `json:"team2_score"`
	WinnerID   *int               `json:"winner_id"`
}

// SetMatchResult is the manual admin entry path. Same invariants as the
// feed path, without the provider id indirection.
func (s *FeedService) SetMatchResult(ctx context.Context, matchID int, input MatchResultInput) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}

	match.Status = input.Status
	match.Team1Score = input.Team1Score
	match.Team2Score = input.Team2Score
	match.WinnerID = input.WinnerID

	if err := s.applyResult(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

// applyResult enforces the result invariants, then writes the match and
// the recomputed standings in one transaction and broadcasts the change.
func (s *FeedService) applyResult(ctx context.Context, match *models.Match) error {
	switch match.Status {
	case models.MatchStatusFinished:
		if match.WinnerID == nil {
			return ErrMatchWinnerRequired
		}
		if !match.HasParticipant(*match.WinnerID) {
			return fmt.Errorf("%w: team %d does not play in match %d", ErrMatchWinnerInvalid, *match.WinnerID, match.ID)
		}
	case models.MatchStatusCanceled:
		// A canceled match contributes nothing to anyone's record.
		match.WinnerID = nil
	}

	stage, err := s.stageRepo.GetByID(ctx, nil, match.StageID)
	if err != nil {
		return fmt.Errorf("failed to load stage %d: %w", match.StageID, err)
	}

	txErr := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.UpdateResult(ctx, exec, match); err != nil {
			return err
		}
		return s.recomputeStandings(ctx, exec, match.StageID)
	})
	if txErr != nil {
		return fmt.Errorf("failed to apply match result: %w", txErr)
	}

	s.logger.Info("match result applied",
		slog.Int("match_id", match.ID),
		slog.Int("stage_id", match.StageID),
		slog.String("status", string(match.Status)),
	)
	if s.hub != nil {
		s.hub.BroadcastToTournament(stage.TournamentID, live.EventMatchUpdated, match)
		if standings, err := s.stageTeamRepo.ListByStage(ctx, nil, match.StageID); err == nil {
			s.hub.BroadcastToTournament(stage.TournamentID, live.EventStandingsUpdated, standings)
		}
	}
	return nil
}

// recomputeStandings resets every record in the stage and recounts it from
// the FINISHED matches. Idempotent, so replayed feed updates cannot drift
// the standings.
func (s *FeedService) recomputeStandings(ctx context.Context, exec repositories.SQLExecutor, stageID int) error {
	stageTeams, err := s.stageTeamRepo.ListByStage(ctx, exec, stageID)
	if err != nil {
		return err
	}
	matches, err := s.matchRepo.ListByStage(ctx, exec, stageID, repositories.ListMatchesFilter{})
	if err != nil {
		return err
	}

	type record struct{ wins, losses int }
	records := make(map[int]*record, len(stageTeams))
	for _, st := range stageTeams {
		records[st.TeamID] = &record{}
	}
	for _, m := range matches {
		if m.Status != models.MatchStatusFinished || m.WinnerID == nil {
			continue
		}
		if r, ok := records[*m.WinnerID]; ok {
			r.wins++
		}
		if r, ok := records[m.LoserID()]; ok {
			r.losses++
		}
	}

	for _, st := range stageTeams {
		r := records[st.TeamID]
		if st.Wins == r.wins && st.Losses == r.losses {
			continue
		}
		if err := s.stageTeamRepo.UpdateRecord(ctx, exec, st.ID, r.wins, r.losses); err != nil {
			return err
		}
	}
	return nil
}

// RunPoller pulls the provider on a fixed interval until ctx is canceled.
// Each tick fans the fetches out over an errgroup; one failing match does
// not abort the others.
func (s *FeedService) RunPoller(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("feed poller started", slog.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("feed poller stopped")
			return
		case <-ticker.C:
			if err := s.pollOnce(ctx); err != nil {
				s.logger.Error("feed poll failed", slog.Any("error", err))
			}
		}
	}
}

func (s *FeedService) pollOnce(ctx context.Context) error {
	if s.feedClient == nil {
		return errors.New("no feed client configured")
	}
	matches, err := s.matchRepo.ListActiveWithFeedID(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to list pollable matches: %w", err)
	}
	if len(matches) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pollerConcurrency)
	updates := make([]*feed.MatchUpdate, len(matches))
	for i, m := range matches {
		i, feedMatchID := i, *m.FeedMatchID
		g.Go(func() error {
			update, err := s.feedClient.FetchMatch(gctx, feedMatchID)
			if err != nil {
				s.logger.Warn("feed fetch failed", slog.Int("feed_match_id", feedMatchID), slog.Any("error", err))
				return nil
			}
			updates[i] = update
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Updates apply sequentially: each one recomputes its stage standings
	// inside its own transaction.
	for _, update := range updates {
		if update == nil {
			continue
		}
		if err := s.ApplyFeedUpdate(ctx, update); err != nil {
			s.logger.Error("failed to apply feed update",
				slog.Int("feed_match_id", update.FeedMatchID),
				slog.Any("error", err),
			)
		}
	}
	return nil
}
