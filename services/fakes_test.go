package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Dosada05/fantasy-league/models"
	"github.com/Dosada05/fantasy-league/repositories"
)

// fakeStore is an in-memory stand-in for the Postgres repositories. One
// instance backs every fake repo so cross-repo state (picks, totals,
// stage status) stays coherent within a test.
type fakeStore struct {
	tournaments  map[int]*models.Tournament
	stages       map[int]*models.Stage
	teams        map[int]*models.Team
	stageTeams   map[int]*models.StageTeam
	matches      map[int]*models.Match
	users        map[int]*models.UserProfile
	phasePicks   map[int]*models.FantasyPhasePick
	playoffPicks map[int]*models.FantasyPlayoffPick
	nextID       int

	// failSaveResultPickID makes SaveResult fail for that phase pick,
	// used to drive the batch rollback path.
	failSaveResultPickID int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tournaments:  make(map[int]*models.Tournament),
		stages:       make(map[int]*models.Stage),
		teams:        make(map[int]*models.Team),
		stageTeams:   make(map[int]*models.StageTeam),
		matches:      make(map[int]*models.Match),
		users:        make(map[int]*models.UserProfile),
		phasePicks:   make(map[int]*models.FantasyPhasePick),
		playoffPicks: make(map[int]*models.FantasyPlayoffPick),
		nextID:       1000,
	}
}

func (f *fakeStore) id() int {
	f.nextID++
	return f.nextID
}

func copyMap[V any](src map[int]*V) map[int]*V {
	dst := make(map[int]*V, len(src))
	for k, v := range src {
		c := *v
		dst[k] = &c
	}
	return dst
}

func copyPhasePick(p *models.FantasyPhasePick) *models.FantasyPhasePick {
	c := *p
	c.Teams3_0 = append([]int(nil), p.Teams3_0...)
	c.TeamsAdvance = append([]int(nil), p.TeamsAdvance...)
	c.Teams0_3 = append([]int(nil), p.Teams0_3...)
	c.TeamPointsBreakdown = make(models.PointsBreakdown, len(p.TeamPointsBreakdown))
	for k, v := range p.TeamPointsBreakdown {
		c.TeamPointsBreakdown[k] = v
	}
	return &c
}

func copyPlayoffPick(p *models.FantasyPlayoffPick) *models.FantasyPlayoffPick {
	c := *p
	c.QuarterFinalWinners = append([]int(nil), p.QuarterFinalWinners...)
	c.SemiFinalWinners = append([]int(nil), p.SemiFinalWinners...)
	c.TeamPointsBreakdown = make(models.PointsBreakdown, len(p.TeamPointsBreakdown))
	for k, v := range p.TeamPointsBreakdown {
		c.TeamPointsBreakdown[k] = v
	}
	return &c
}

func (f *fakeStore) snapshot() *fakeStore {
	snap := &fakeStore{
		tournaments:          copyMap(f.tournaments),
		stages:               copyMap(f.stages),
		teams:                copyMap(f.teams),
		stageTeams:           copyMap(f.stageTeams),
		matches:              copyMap(f.matches),
		users:                copyMap(f.users),
		phasePicks:           make(map[int]*models.FantasyPhasePick, len(f.phasePicks)),
		playoffPicks:         make(map[int]*models.FantasyPlayoffPick, len(f.playoffPicks)),
		nextID:               f.nextID,
		failSaveResultPickID: f.failSaveResultPickID,
	}
	for k, v := range f.phasePicks {
		snap.phasePicks[k] = copyPhasePick(v)
	}
	for k, v := range f.playoffPicks {
		snap.playoffPicks[k] = copyPlayoffPick(v)
	}
	return snap
}

func (f *fakeStore) restore(snap *fakeStore) {
	f.tournaments = snap.tournaments
	f.stages = snap.stages
	f.teams = snap.teams
	f.stageTeams = snap.stageTeams
	f.matches = snap.matches
	f.users = snap.users
	f.phasePicks = snap.phasePicks
	f.playoffPicks = snap.playoffPicks
	f.nextID = snap.nextID
}

// fakeTxRunner mimics all-or-nothing transactions by snapshotting the
// store before fn and restoring it when fn fails.
type fakeTxRunner struct {
	store *fakeStore
}

func (r *fakeTxRunner) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	snap := r.store.snapshot()
	if err := fn(nil); err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

// --- tournament repo ---

type fakeTournamentRepo struct{ store *fakeStore }

func (r *fakeTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	t.ID = r.store.id()
	r.store.tournaments[t.ID] = t
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	t, ok := r.store.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	c := *t
	return &c, nil
}

func (r *fakeTournamentRepo) GetBySlug(ctx context.Context, exec repositories.SQLExecutor, slug string) (*models.Tournament, error) {
	for _, t := range r.store.tournaments {
		if t.Slug == slug {
			c := *t
			return &c, nil
		}
	}
	return nil, repositories.ErrTournamentNotFound
}

func (r *fakeTournamentRepo) GetLive(ctx context.Context, exec repositories.SQLExecutor) (*models.Tournament, error) {
	for _, t := range r.store.tournaments {
		if t.IsLive {
			c := *t
			return &c, nil
		}
	}
	return nil, repositories.ErrTournamentNotFound
}

func (r *fakeTournamentRepo) List(ctx context.Context, exec repositories.SQLExecutor, limit, offset int) ([]*models.Tournament, error) {
	out := make([]*models.Tournament, 0, len(r.store.tournaments))
	for _, t := range r.store.tournaments {
		c := *t
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) SetLive(ctx context.Context, exec repositories.SQLExecutor, id int, isLive bool) error {
	t, ok := r.store.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	for _, other := range r.store.tournaments {
		other.IsLive = false
	}
	t.IsLive = isLive
	return nil
}

// --- stage repo ---

type fakeStageRepo struct{ store *fakeStore }

func (r *fakeStageRepo) Create(ctx context.Context, exec repositories.SQLExecutor, stage *models.Stage) error {
	for _, s := range r.store.stages {
		if s.TournamentID == stage.TournamentID && s.Order == stage.Order {
			return repositories.ErrStageOrderConflict
		}
	}
	stage.ID = r.store.id()
	c := *stage
	r.store.stages[stage.ID] = &c
	return nil
}

func (r *fakeStageRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Stage, error) {
	s, ok := r.store.stages[id]
	if !ok {
		return nil, repositories.ErrStageNotFound
	}
	c := *s
	return &c, nil
}

func (r *fakeStageRepo) GetByTournamentAndOrder(ctx context.Context, exec repositories.SQLExecutor, tournamentID, order int) (*models.Stage, error) {
	for _, s := range r.store.stages {
		if s.TournamentID == tournamentID && s.Order == order {
			c := *s
			return &c, nil
		}
	}
	return nil, repositories.ErrStageNotFound
}

func (r *fakeStageRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.Stage, error) {
	out := make([]*models.Stage, 0)
	for _, s := range r.store.stages {
		if s.TournamentID == tournamentID {
			c := *s
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *fakeStageRepo) GetPlayoffStage(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (*models.Stage, error) {
	var found *models.Stage
	for _, s := range r.store.stages {
		if s.TournamentID == tournamentID && s.Type == models.StageTypePlayoff {
			if found == nil || s.Order > found.Order {
				found = s
			}
		}
	}
	if found == nil {
		return nil, repositories.ErrStageNotFound
	}
	c := *found
	return &c, nil
}

func (r *fakeStageRepo) UpdateFantasyStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.FantasyStatus) error {
	s, ok := r.store.stages[id]
	if !ok {
		return repositories.ErrStageNotFound
	}
	s.FantasyStatus = status
	return nil
}

// --- stage team repo ---

type fakeStageTeamRepo struct{ store *fakeStore }

func (r *fakeStageTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, st *models.StageTeam) error {
	for _, existing := range r.store.stageTeams {
		if existing.StageID == st.StageID && existing.TeamID == st.TeamID {
			return repositories.ErrStageTeamConflict
		}
	}
	st.ID = r.store.id()
	c := *st
	r.store.stageTeams[st.ID] = &c
	return nil
}

func (r *fakeStageTeamRepo) ListByStage(ctx context.Context, exec repositories.SQLExecutor, stageID int) ([]*models.StageTeam, error) {
	out := make([]*models.StageTeam, 0)
	for _, st := range r.store.stageTeams {
		if st.StageID == stageID {
			c := *st
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

func (r *fakeStageTeamRepo) UpdateRecord(ctx context.Context, exec repositories.SQLExecutor, id int, wins, losses int) error {
	st, ok := r.store.stageTeams[id]
	if !ok {
		return repositories.ErrStageTeamNotFound
	}
	st.Wins, st.Losses = wins, losses
	return nil
}

func (r *fakeStageTeamRepo) UpdateBuchholz(ctx context.Context, exec repositories.SQLExecutor, id int, score float64) error {
	st, ok := r.store.stageTeams[id]
	if !ok {
		return repositories.ErrStageTeamNotFound
	}
	st.BuchholzScore = score
	return nil
}

// --- match repo ---

type fakeMatchRepo struct{ store *fakeStore }

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	m.ID = r.store.id()
	c := *m
	r.store.matches[m.ID] = &c
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	m, ok := r.store.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	c := *m
	return &c, nil
}

func (r *fakeMatchRepo) GetByFeedMatchID(ctx context.Context, exec repositories.SQLExecutor, feedMatchID int) (*models.Match, error) {
	for _, m := range r.store.matches {
		if m.FeedMatchID != nil && *m.FeedMatchID == feedMatchID {
			c := *m
			return &c, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) ListByStage(ctx context.Context, exec repositories.SQLExecutor, stageID int, filter repositories.ListMatchesFilter) ([]*models.Match, error) {
	out := make([]*models.Match, 0)
	for _, m := range r.store.matches {
		if m.StageID != stageID {
			continue
		}
		if filter.RoundNumber != nil && m.RoundNumber != *filter.RoundNumber {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		if filter.HasWinner != nil && (m.WinnerID != nil) != *filter.HasWinner {
			continue
		}
		c := *m
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMatchRepo) ListActiveWithFeedID(ctx context.Context, exec repositories.SQLExecutor) ([]*models.Match, error) {
	out := make([]*models.Match, 0)
	for _, m := range r.store.matches {
		if m.FeedMatchID == nil {
			continue
		}
		if m.Status != models.MatchStatusPending && m.Status != models.MatchStatusLive {
			continue
		}
		c := *m
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	if _, ok := r.store.matches[m.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	c := *m
	r.store.matches[m.ID] = &c
	return nil
}

// --- user repo ---

type fakeUserRepo struct{ store *fakeStore }

func (r *fakeUserRepo) Create(ctx context.Context, exec repositories.SQLExecutor, u *models.UserProfile) error {
	for _, existing := range r.store.users {
		if existing.Email == u.Email {
			return repositories.ErrUserEmailConflict
		}
		if existing.Username == u.Username {
			return repositories.ErrUserUsernameConflict
		}
	}
	u.ID = r.store.id()
	c := *u
	r.store.users[u.ID] = &c
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.UserProfile, error) {
	u, ok := r.store.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, exec repositories.SQLExecutor, email string) (*models.UserProfile, error) {
	for _, u := range r.store.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, exec repositories.SQLExecutor, username string) (*models.UserProfile, error) {
	for _, u := range r.store.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) AddFantasyPoints(ctx context.Context, exec repositories.SQLExecutor, userProfileID, delta int) error {
	u, ok := r.store.users[userProfileID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.TotalFantasyPoints += delta
	return nil
}

func (r *fakeUserRepo) Leaderboard(ctx context.Context, exec repositories.SQLExecutor, limit, offset int) ([]*models.LeaderboardEntry, error) {
	users := make([]*models.UserProfile, 0, len(r.store.users))
	for _, u := range r.store.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].TotalFantasyPoints != users[j].TotalFantasyPoints {
			return users[i].TotalFantasyPoints > users[j].TotalFantasyPoints
		}
		return users[i].Username < users[j].Username
	})

	entries := make([]*models.LeaderboardEntry, 0, len(users))
	rank, prevPoints := 0, -1
	for _, u := range users {
		if u.TotalFantasyPoints != prevPoints {
			rank++
			prevPoints = u.TotalFantasyPoints
		}
		entries = append(entries, &models.LeaderboardEntry{
			Rank:               rank,
			UserProfileID:      u.ID,
			Username:           u.Username,
			AvatarURL:          u.AvatarURL,
			TotalFantasyPoints: u.TotalFantasyPoints,
		})
	}
	if offset >= len(entries) {
		return []*models.LeaderboardEntry{}, nil
	}
	entries = entries[offset:]
	if limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

// --- phase pick repo ---

type fakePhasePickRepo struct{ store *fakeStore }

func (r *fakePhasePickRepo) Create(ctx context.Context, exec repositories.SQLExecutor, p *models.FantasyPhasePick) error {
	for _, existing := range r.store.phasePicks {
		if existing.UserProfileID == p.UserProfileID && existing.StageID == p.StageID {
			return repositories.ErrPhasePickConflict
		}
	}
	p.ID = r.store.id()
	if p.TeamPointsBreakdown == nil {
		p.TeamPointsBreakdown = models.PointsBreakdown{}
	}
	r.store.phasePicks[p.ID] = copyPhasePick(p)
	return nil
}

func (r *fakePhasePickRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.FantasyPhasePick, error) {
	p, ok := r.store.phasePicks[id]
	if !ok {
		return nil, repositories.ErrPhasePickNotFound
	}
	return copyPhasePick(p), nil
}

func (r *fakePhasePickRepo) GetByUserAndStage(ctx context.Context, exec repositories.SQLExecutor, userProfileID, stageID int) (*models.FantasyPhasePick, error) {
	for _, p := range r.store.phasePicks {
		if p.UserProfileID == userProfileID && p.StageID == stageID {
			return copyPhasePick(p), nil
		}
	}
	return nil, repositories.ErrPhasePickNotFound
}

func (r *fakePhasePickRepo) ListByStage(ctx context.Context, exec repositories.SQLExecutor, stageID int, onlyPending bool) ([]*models.FantasyPhasePick, error) {
	out := make([]*models.FantasyPhasePick, 0)
	for _, p := range r.store.phasePicks {
		if p.StageID != stageID {
			continue
		}
		if onlyPending && p.IsFinalized {
			continue
		}
		out = append(out, copyPhasePick(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePhasePickRepo) ListByUser(ctx context.Context, exec repositories.SQLExecutor, userProfileID int) ([]*models.FantasyPhasePick, error) {
	out := make([]*models.FantasyPhasePick, 0)
	for _, p := range r.store.phasePicks {
		if p.UserProfileID == userProfileID {
			out = append(out, copyPhasePick(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePhasePickRepo) ReplaceTeams(ctx context.Context, exec repositories.SQLExecutor, pickID int, slot models.PickSlot, teamIDs []int) error {
	p, ok := r.store.phasePicks[pickID]
	if !ok {
		return repositories.ErrPhasePickNotFound
	}
	teams := append([]int(nil), teamIDs...)
	switch slot {
	case models.Slot3_0:
		p.Teams3_0 = teams
	case models.SlotAdvance:
		p.TeamsAdvance = teams
	case models.Slot0_3:
		p.Teams0_3 = teams
	}
	return nil
}

func (r *fakePhasePickRepo) SetLocked(ctx context.Context, exec repositories.SQLExecutor, pickID int, locked bool) error {
	p, ok := r.store.phasePicks[pickID]
	if !ok {
		return repositories.ErrPhasePickNotFound
	}
	p.IsLocked = locked
	return nil
}

func (r *fakePhasePickRepo) SetLockedByStage(ctx context.Context, exec repositories.SQLExecutor, stageID int, locked bool) error {
	for _, p := range r.store.phasePicks {
		if p.StageID == stageID && !p.IsFinalized {
			p.IsLocked = locked
		}
	}
	return nil
}

func (r *fakePhasePickRepo) SaveResult(ctx context.Context, exec repositories.SQLExecutor, pickID int, points int, breakdown models.PointsBreakdown, finalized bool) error {
	if r.store.failSaveResultPickID == pickID {
		return errors.New("simulated storage failure")
	}
	p, ok := r.store.phasePicks[pickID]
	if !ok {
		return repositories.ErrPhasePickNotFound
	}
	p.PointsEarned = points
	p.TeamPointsBreakdown = breakdown
	p.IsFinalized = finalized
	return nil
}

func (r *fakePhasePickRepo) ResetPoints(ctx context.Context, exec repositories.SQLExecutor, pickID int) error {
	p, ok := r.store.phasePicks[pickID]
	if !ok {
		return repositories.ErrPhasePickNotFound
	}
	p.PointsEarned = 0
	return nil
}

// --- playoff pick repo ---

type fakePlayoffPickRepo struct{ store *fakeStore }

func (r *fakePlayoffPickRepo) Create(ctx context.Context, exec repositories.SQLExecutor, p *models.FantasyPlayoffPick) error {
	for _, existing := range r.store.playoffPicks {
		if existing.UserProfileID == p.UserProfileID && existing.TournamentID == p.TournamentID {
			return repositories.ErrPlayoffPickConflict
		}
	}
	p.ID = r.store.id()
	if p.TeamPointsBreakdown == nil {
		p.TeamPointsBreakdown = models.PointsBreakdown{}
	}
	r.store.playoffPicks[p.ID] = copyPlayoffPick(p)
	return nil
}

func (r *fakePlayoffPickRepo) GetByUserAndTournament(ctx context.Context, exec repositories.SQLExecutor, userProfileID, tournamentID int) (*models.FantasyPlayoffPick, error) {
	for _, p := range r.store.playoffPicks {
		if p.UserProfileID == userProfileID && p.TournamentID == tournamentID {
			return copyPlayoffPick(p), nil
		}
	}
	return nil, repositories.ErrPlayoffPickNotFound
}

func (r *fakePlayoffPickRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, onlyPending bool) ([]*models.FantasyPlayoffPick, error) {
	out := make([]*models.FantasyPlayoffPick, 0)
	for _, p := range r.store.playoffPicks {
		if p.TournamentID != tournamentID {
			continue
		}
		if onlyPending && p.IsFinalized {
			continue
		}
		out = append(out, copyPlayoffPick(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePlayoffPickRepo) ListByUser(ctx context.Context, exec repositories.SQLExecutor, userProfileID int) ([]*models.FantasyPlayoffPick, error) {
	out := make([]*models.FantasyPlayoffPick, 0)
	for _, p := range r.store.playoffPicks {
		if p.UserProfileID == userProfileID {
			out = append(out, copyPlayoffPick(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePlayoffPickRepo) ReplaceTeams(ctx context.Context, exec repositories.SQLExecutor, pickID int, slot models.PickSlot, teamIDs []int) error {
	p, ok := r.store.playoffPicks[pickID]
	if !ok {
		return repositories.ErrPlayoffPickNotFound
	}
	teams := append([]int(nil), teamIDs...)
	switch slot {
	case models.SlotQFWinner:
		p.QuarterFinalWinners = teams
	case models.SlotSFWinner:
		p.SemiFinalWinners = teams
	}
	return nil
}

func (r *fakePlayoffPickRepo) SetFinalWinner(ctx context.Context, exec repositories.SQLExecutor, pickID int, teamID *int) error {
	p, ok := r.store.playoffPicks[pickID]
	if !ok {
		return repositories.ErrPlayoffPickNotFound
	}
	p.FinalWinnerID = teamID
	return nil
}

func (r *fakePlayoffPickRepo) SetLocked(ctx context.Context, exec repositories.SQLExecutor, pickID int, locked bool) error {
	p, ok := r.store.playoffPicks[pickID]
	if !ok {
		return repositories.ErrPlayoffPickNotFound
	}
	p.IsLocked = locked
	return nil
}

func (r *fakePlayoffPickRepo) SetLockedByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, locked bool) error {
	for _, p := range r.store.playoffPicks {
		if p.TournamentID == tournamentID && !p.IsFinalized {
			p.IsLocked = locked
		}
	}
	return nil
}

func (r *fakePlayoffPickRepo) SaveResult(ctx context.Context, exec repositories.SQLExecutor, pickID int, points int, breakdown models.PointsBreakdown, finalized bool) error {
	p, ok := r.store.playoffPicks[pickID]
	if !ok {
		return repositories.ErrPlayoffPickNotFound
	}
	p.PointsEarned = points
	p.TeamPointsBreakdown = breakdown
	p.IsFinalized = finalized
	return nil
}

func (r *fakePlayoffPickRepo) ResetPoints(ctx context.Context, exec repositories.SQLExecutor, pickID int) error {
	p, ok := r.store.playoffPicks[pickID]
	if !ok {
		return repositories.ErrPlayoffPickNotFound
	}
	p.PointsEarned = 0
	return nil
}

// --- team repo ---

type fakeTeamRepo struct{ store *fakeStore }

func (r *fakeTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, t *models.Team) error {
	t.ID = r.store.id()
	c := *t
	r.store.teams[t.ID] = &c
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Team, error) {
	t, ok := r.store.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	c := *t
	return &c, nil
}

func (r *fakeTeamRepo) GetByFeedTeamID(ctx context.Context, exec repositories.SQLExecutor, feedTeamID int) (*models.Team, error) {
	for _, t := range r.store.teams {
		if t.FeedTeamID != nil && *t.FeedTeamID == feedTeamID {
			c := *t
			return &c, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) ListByIDs(ctx context.Context, exec repositories.SQLExecutor, ids []int) ([]*models.Team, error) {
	out := make([]*models.Team, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.store.teams[id]; ok {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) UpdateLogoKey(ctx context.Context, exec repositories.SQLExecutor, teamID int, logoKey *string) error {
	t, ok := r.store.teams[teamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.LogoKey = logoKey
	return nil
}

// testEnv bundles the fake store with fully wired services for tests.
type testEnv struct {
	store *fakeStore

	tournamentRepo  *fakeTournamentRepo
	stageRepo       *fakeStageRepo
	stageTeamRepo   *fakeStageTeamRepo
	matchRepo       *fakeMatchRepo
	teamRepo        *fakeTeamRepo
	userRepo        *fakeUserRepo
	phasePickRepo   *fakePhasePickRepo
	playoffPickRepo *fakePlayoffPickRepo

	fantasy     *FantasyService
	picks       *PickService
	stages      *StageService
	leaderboard *LeaderboardService
	feed        *FeedService
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	env := &testEnv{
		store:           store,
		tournamentRepo:  &fakeTournamentRepo{store: store},
		stageRepo:       &fakeStageRepo{store: store},
		stageTeamRepo:   &fakeStageTeamRepo{store: store},
		matchRepo:       &fakeMatchRepo{store: store},
		teamRepo:        &fakeTeamRepo{store: store},
		userRepo:        &fakeUserRepo{store: store},
		phasePickRepo:   &fakePhasePickRepo{store: store},
		playoffPickRepo: &fakePlayoffPickRepo{store: store},
	}
	txRunner := &fakeTxRunner{store: store}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	env.fantasy = NewFantasyService(
		txRunner,
		env.tournamentRepo,
		env.stageRepo,
		env.stageTeamRepo,
		env.matchRepo,
		env.userRepo,
		env.phasePickRepo,
		env.playoffPickRepo,
		logger,
	)
	env.picks = NewPickService(
		txRunner,
		env.tournamentRepo,
		env.stageRepo,
		env.stageTeamRepo,
		env.phasePickRepo,
		env.playoffPickRepo,
	)
	env.stages = NewStageService(
		txRunner,
		env.stageRepo,
		env.stageTeamRepo,
		env.matchRepo,
		env.phasePickRepo,
		env.playoffPickRepo,
		nil,
		logger,
	)
	env.leaderboard = NewLeaderboardService(
		env.userRepo,
		env.phasePickRepo,
		env.playoffPickRepo,
	)
	env.feed = NewFeedService(
		txRunner,
		env.stageRepo,
		env.stageTeamRepo,
		env.matchRepo,
		env.teamRepo,
		nil,
		nil,
		logger,
	)
	return env
}

func (e *testEnv) addTournament(t *testing.T, name string) *models.Tournament {
	t.Helper()
	tournament := &models.Tournament{
		Name:      name,
		Slug:      name,
		Type:      models.TournamentTypeMajor,
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(0, 0, 14),
	}
	require.NoError(t, e.tournamentRepo.Create(context.Background(), nil, tournament))
	return tournament
}

func (e *testEnv) addStage(t *testing.T, tournamentID int, name string, stageType models.StageType, order int, status models.FantasyStatus) *models.Stage {
	t.Helper()
	stage := &models.Stage{
		TournamentID:  tournamentID,
		Name:          name,
		Type:          stageType,
		Order:         order,
		FantasyStatus: status,
	}
	require.NoError(t, e.stageRepo.Create(context.Background(), nil, stage))
	return stage
}

func (e *testEnv) addTeam(t *testing.T, name string) *models.Team {
	t.Helper()
	team := &models.Team{Name: name, Region: models.RegionEurope}
	require.NoError(t, e.teamRepo.Create(context.Background(), nil, team))
	return team
}

func (e *testEnv) addStageTeam(t *testing.T, stageID, teamID, seed, wins, losses int) *models.StageTeam {
	t.Helper()
	st := &models.StageTeam{
		StageID:     stageID,
		TeamID:      teamID,
		InitialSeed: seed,
		Wins:        wins,
		Losses:      losses,
	}
	require.NoError(t, e.stageTeamRepo.Create(context.Background(), nil, st))
	return st
}

func (e *testEnv) addUser(t *testing.T, username string) *models.UserProfile {
	t.Helper()
	user := &models.UserProfile{
		Username: username,
		Email:    username + "@example.com",
		Role:     models.RolePlayer,
	}
	require.NoError(t, e.userRepo.Create(context.Background(), nil, user))
	return user
}

func (e *testEnv) addMatch(t *testing.T, stageID, round, team1ID, team2ID int, winnerID *int) *models.Match {
	t.Helper()
	status := models.MatchStatusPending
	if winnerID != nil {
		status = models.MatchStatusFinished
	}
	match := &models.Match{
		StageID:     stageID,
		RoundNumber: round,
		Team1ID:     team1ID,
		Team2ID:     team2ID,
		Format:      models.MatchFormatBO3,
		Status:      status,
		WinnerID:    winnerID,
	}
	require.NoError(t, e.matchRepo.Create(context.Background(), nil, match))
	return match
}

func (e *testEnv) userPoints(t *testing.T, userProfileID int) int {
	t.Helper()
	u, err := e.userRepo.GetByID(context.Background(), nil, userProfileID)
	require.NoError(t, err)
	return u.TotalFantasyPoints
}

func intPtr(v int) *int { return &v }
