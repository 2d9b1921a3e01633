package services

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupline/tournament-engine/models"
	"github.com/cupline/tournament-engine/repositories"
)

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
}

func newFakeTournamentRepo(tournaments ...*models.Tournament) *fakeTournamentRepo {
	repo := &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament)}
	for _, t := range tournaments {
		repo.tournaments[t.ID] = t
	}
	return repo
}

func (r *fakeTournamentRepo) Create(ctx context.Context, tournament *models.Tournament) error {
	tournament.ID = len(r.tournaments) + 1
	r.tournaments[tournament.ID] = tournament
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	out := make([]*models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) SetWinner(ctx context.Context, exec repositories.SQLExecutor, id int, winnerTeamID int) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	winner := winnerTeamID
	t.WinnerTeamID = &winner
	return nil
}

func (r *fakeTournamentRepo) UpdateOpeningPair(ctx context.Context, id int, teamAID, teamBID int) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	a, b := teamAID, teamBID
	t.Config.OpeningTeamAID = &a
	t.Config.OpeningTeamBID = &b
	return nil
}

type fakeRegistrationRepo struct {
	registrations []*models.Registration
}

func (r *fakeRegistrationRepo) Create(ctx context.Context, registration *models.Registration) error {
	registration.ID = len(r.registrations) + 1
	r.registrations = append(r.registrations, registration)
	return nil
}

func (r *fakeRegistrationRepo) ListByTournament(ctx context.Context, tournamentID int, status *models.RegistrationStatus) ([]*models.Registration, error) {
	var out []*models.Registration
	for _, reg := range r.registrations {
		if reg.TournamentID != tournamentID {
			continue
		}
		if status != nil && reg.Status != *status {
			continue
		}
		copied := *reg
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeRegistrationRepo) UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus) error {
	for _, reg := range r.registrations {
		if reg.ID == id {
			reg.Status = status
			return nil
		}
	}
	return repositories.ErrRegistrationNotFound
}

func (r *fakeRegistrationRepo) AssignGroups(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, groupByTeam map[int]int) error {
	for _, reg := range r.registrations {
		if reg.TournamentID != tournamentID {
			continue
		}
		if groupID, ok := groupByTeam[reg.TeamID]; ok {
			g := groupID
			reg.GroupID = &g
		}
	}
	return nil
}

func (r *fakeRegistrationRepo) MarkQualified(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, teamIDs []int) error {
	qualified := make(map[int]bool, len(teamIDs))
	for _, id := range teamIDs {
		qualified[id] = true
	}
	for _, reg := range r.registrations {
		if reg.TournamentID == tournamentID && qualified[reg.TeamID] {
			reg.QualifiedForKnockout = true
		}
	}
	return nil
}

type fakeMatchRepo struct {
	matches []*models.Match
	nextID  int
}

func (r *fakeMatchRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, matches []*models.Match) error {
	for _, m := range matches {
		r.nextID++
		m.ID = r.nextID
		r.matches = append(r.matches, m)
	}
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	for _, m := range r.matches {
		if m.ID == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			copied := *m
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, id int, homeScore, awayScore int, status models.MatchStatus) error {
	for _, m := range r.matches {
		if m.ID == id {
			m.HomeScore = homeScore
			m.AwayScore = awayScore
			m.Status = status
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) AddEvents(ctx context.Context, exec repositories.SQLExecutor, matchID int, events []models.MatchEvent) error {
	for _, m := range r.matches {
		if m.ID == matchID {
			m.Events = append(m.Events, events...)
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

type stubDrawGate struct {
	required bool
	calls    int
}

func (g *stubDrawGate) RequiresManualDraw(ctx context.Context, tournament *models.Tournament, roundNumber int) (bool, error) {
	g.calls++
	return g.required, nil
}

func testRand() func() *rand.Rand {
	return func() *rand.Rand { return rand.New(rand.NewSource(99)) }
}

type progressionFixture struct {
	tournamentRepo   *fakeTournamentRepo
	registrationRepo *fakeRegistrationRepo
	matchRepo        *fakeMatchRepo
	gate             *stubDrawGate
	service          ProgressionService
}

// groupKnockoutFixture builds a running four-team tournament with two groups
// of two and both group fixtures already scheduled.
func groupKnockoutFixture(mode models.SchedulingMode) *progressionFixture {
	tournament := &models.Tournament{
		ID:     1,
		Name:   "Spring Cup",
		Status: models.StatusActive,
		Config: models.TournamentConfig{
			Format:         models.FormatGroupKnockoutSingle,
			NumberOfGroups: 2,
			SchedulingMode: mode,
		},
		StartDate: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
	}

	registrationRepo := &fakeRegistrationRepo{}
	g1, g2 := 1, 2
	for teamID, groupID := range map[int]*int{1: &g1, 2: &g1, 3: &g2, 4: &g2} {
		registrationRepo.registrations = append(registrationRepo.registrations, &models.Registration{
			ID:           teamID,
			TournamentID: 1,
			TeamID:       teamID,
			Status:       models.RegistrationApproved,
			GroupID:      groupID,
			Team:         &models.Team{ID: teamID, Name: fmt.Sprintf("Team %d", teamID)},
		})
	}

	matchRepo := &fakeMatchRepo{}
	matchRepo.CreateBatch(context.Background(), nil, []*models.Match{
		{TournamentID: 1, HomeTeamID: 1, AwayTeamID: 2, Status: models.MatchScheduled, GroupID: &g1, StageName: models.StageGroupStage, Date: tournament.StartDate},
		{TournamentID: 1, HomeTeamID: 3, AwayTeamID: 4, Status: models.MatchScheduled, GroupID: &g2, StageName: models.StageGroupStage, Date: tournament.StartDate.AddDate(0, 0, 1)},
	})

	gate := &stubDrawGate{}
	tournamentRepo := newFakeTournamentRepo(tournament)
	service := NewProgressionService(nil, tournamentRepo, registrationRepo, matchRepo, gate, testRand(), nil)

	return &progressionFixture{
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		matchRepo:        matchRepo,
		gate:             gate,
		service:          service,
	}
}

func (f *progressionFixture) finish(t *testing.T, matchID, homeScore, awayScore int) {
	t.Helper()
	require.NoError(t, f.matchRepo.UpdateResult(context.Background(), nil, matchID, homeScore, awayScore, models.MatchFinished))
}

func (f *progressionFixture) knockoutMatches() []*models.Match {
	var out []*models.Match
	for _, m := range f.matchRepo.matches {
		if !m.IsGroupStage() {
			out = append(out, m)
		}
	}
	return out
}

func TestOnResultsChangedWaitsForGroupStage(t *testing.T) {
	f := groupKnockoutFixture(models.SchedulingRandom)
	f.finish(t, 1, 2, 0)

	result, err := f.service.OnResultsChanged(context.Background(), 1)
	require.NoError(t, err)

	assert.False(t, result.GroupsFinished)
	assert.False(t, result.NextRoundGenerated)
	assert.Empty(t, f.knockoutMatches())
}

func TestOnResultsChangedGeneratesFirstKnockoutRound(t *testing.T) {
	f := groupKnockoutFixture(models.SchedulingRandom)
	f.finish(t, 1, 2, 0) // team 1 tops group 1
	f.finish(t, 2, 0, 1) // team 4 tops group 2

	result, err := f.service.OnResultsChanged(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, result.GroupsFinished)
	assert.True(t, result.NextRoundGenerated)
	assert.Equal(t, 1, result.RoundNumber)
	assert.Equal(t, 1, result.MatchesGenerated)
	assert.Equal(t, 1, f.gate.calls)

	knockout := f.knockoutMatches()
	require.Len(t, knockout, 1)
	final := knockout[0]
	assert.Equal(t, models.StageFinal, final.StageName)
	require.NotNil(t, final.RoundNumber)
	assert.Equal(t, 1, *final.RoundNumber)
	assert.ElementsMatch(t, []int{1, 4}, []int{final.HomeTeamID, final.AwayTeamID})
	assert.True(t, final.Date.After(f.tournamentRepo.tournaments[1].StartDate))

	for _, reg := range f.registrationRepo.registrations {
		wantQualified := reg.TeamID == 1 || reg.TeamID == 4
		assert.Equal(t, wantQualified, reg.QualifiedForKnockout, "team %d", reg.TeamID)
	}
}

func TestOnResultsChangedFinalizesTournament(t *testing.T) {
	f := groupKnockoutFixture(models.SchedulingRandom)
	f.finish(t, 1, 2, 0)
	f.finish(t, 2, 0, 1)

	_, err := f.service.OnResultsChanged(context.Background(), 1)
	require.NoError(t, err)

	knockout := f.knockoutMatches()
	require.Len(t, knockout, 1)
	final := knockout[0]

	// Team 1 wins the final at home.
	winner := final.HomeTeamID
	f.finish(t, final.ID, 3, 1)

	result, err := f.service.OnResultsChanged(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, result.TournamentFinalized)
	require.NotNil(t, result.WinnerTeamID)
	assert.Equal(t, winner, *result.WinnerTeamID)
	assert.Equal(t, fmt.Sprintf("Team %d", winner), result.WinnerName)

	tournament := f.tournamentRepo.tournaments[1]
	assert.Equal(t, models.StatusCompleted, tournament.Status)
	require.NotNil(t, tournament.WinnerTeamID)
	assert.Equal(t, winner, *tournament.WinnerTeamID)
}

func TestOnResultsChangedCompletedTournamentIsNoOp(t *testing.T) {
	f := groupKnockoutFixture(models.SchedulingRandom)
	f.tournamentRepo.tournaments[1].Status = models.StatusCompleted
	before := len(f.matchRepo.matches)

	result, err := f.service.OnResultsChanged(context.Background(), 1)
	require.NoError(t, err)

	assert.False(t, result.GroupsFinished)
	assert.False(t, result.NextRoundGenerated)
	assert.False(t, result.TournamentFinalized)
	assert.Len(t, f.matchRepo.matches, before)
}

func TestOnResultsChangedManualQualificationHoldsTournament(t *testing.T) {
	f := groupKnockoutFixture(models.SchedulingManual)
	f.finish(t, 1, 2, 0)
	f.finish(t, 2, 0, 1)

	result, err := f.service.OnResultsChanged(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, result.GroupsFinished)
	assert.True(t, result.ManualQualificationRequired)
	assert.False(t, result.NextRoundGenerated)
	assert.Empty(t, f.knockoutMatches())
	assert.Equal(t, models.StatusManualQualificationPending, f.tournamentRepo.tournaments[1].Status)

	confirmResult, err := f.service.ConfirmQualification(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, confirmResult.NextRoundGenerated)
	assert.Equal(t, 1, confirmResult.RoundNumber)
	assert.Len(t, f.knockoutMatches(), 1)
	assert.Equal(t, models.StatusActive, f.tournamentRepo.tournaments[1].Status)
}

func TestConfirmQualificationRejectedOutsidePendingStatus(t *testing.T) {
	f := groupKnockoutFixture(models.SchedulingManual)

	_, err := f.service.ConfirmQualification(context.Background(), 1)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestOnResultsChangedManualDrawGate(t *testing.T) {
	f := groupKnockoutFixture(models.SchedulingRandom)
	f.gate.required = true
	f.finish(t, 1, 2, 0)
	f.finish(t, 2, 0, 1)

	result, err := f.service.OnResultsChanged(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, result.GroupsFinished)
	assert.True(t, result.ManualDrawRequired)
	assert.Equal(t, 1, result.PendingRoundNumber)
	assert.False(t, result.NextRoundGenerated)
	assert.Empty(t, f.knockoutMatches())

	// ConfirmDraw bypasses the gate and generates the round.
	drawResult, err := f.service.ConfirmDraw(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, drawResult.NextRoundGenerated)
	assert.Len(t, f.knockoutMatches(), 1)

	_, err = f.service.ConfirmDraw(context.Background(), 1)
	assert.ErrorIs(t, err, ErrKnockoutAlreadyGenerated)
}

// knockoutOnlyFixture builds a knockout-only tournament whose first round is
// already on the books. An odd team count leaves the last team without a
// round one fixture.
func knockoutOnlyFixture(teamCount int) *progressionFixture {
	tournament := &models.Tournament{
		ID:     1,
		Name:   "Winter Open",
		Status: models.StatusActive,
		Config: models.TournamentConfig{
			Format:         models.FormatKnockoutSingle,
			SchedulingMode: models.SchedulingRandom,
		},
		StartDate: time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC),
	}

	registrationRepo := &fakeRegistrationRepo{}
	for teamID := 1; teamID <= teamCount; teamID++ {
		registrationRepo.registrations = append(registrationRepo.registrations, &models.Registration{
			ID:           teamID,
			TournamentID: 1,
			TeamID:       teamID,
			Status:       models.RegistrationApproved,
			Team:         &models.Team{ID: teamID, Name: fmt.Sprintf("Team %d", teamID)},
		})
	}

	round := 1
	matchRepo := &fakeMatchRepo{}
	var fixtures []*models.Match
	for i := 0; i < teamCount/2; i++ {
		r := round
		fixtures = append(fixtures, &models.Match{
			TournamentID: 1,
			HomeTeamID:   i*2 + 1,
			AwayTeamID:   i*2 + 2,
			Status:       models.MatchScheduled,
			RoundNumber:  &r,
			StageName:    models.StageRound1,
			Date:         tournament.StartDate.AddDate(0, 0, i),
		})
	}
	matchRepo.CreateBatch(context.Background(), nil, fixtures)

	gate := &stubDrawGate{}
	tournamentRepo := newFakeTournamentRepo(tournament)
	service := NewProgressionService(nil, tournamentRepo, registrationRepo, matchRepo, gate, testRand(), nil)

	return &progressionFixture{
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		matchRepo:        matchRepo,
		gate:             gate,
		service:          service,
	}
}

func TestOnResultsChangedGeneratesNextKnockoutRound(t *testing.T) {
	f := knockoutOnlyFixture(8)
	// Odd-numbered teams win their quarter-finals.
	for id := 1; id <= 4; id++ {
		f.finish(t, id, 1, 0)
	}

	result, err := f.service.OnResultsChanged(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, result.NextRoundGenerated)
	assert.Equal(t, 2, result.RoundNumber)
	assert.Equal(t, 2, result.MatchesGenerated)

	var semis []*models.Match
	for _, m := range f.matchRepo.matches {
		if m.RoundNumber != nil && *m.RoundNumber == 2 {
			semis = append(semis, m)
		}
	}
	require.Len(t, semis, 2)
	for _, m := range semis {
		assert.Equal(t, models.StageKnockout, m.StageName)
	}
	assert.Equal(t, [2]int{1, 3}, [2]int{semis[0].HomeTeamID, semis[0].AwayTeamID})
	assert.Equal(t, [2]int{5, 7}, [2]int{semis[1].HomeTeamID, semis[1].AwayTeamID})
}

func TestOnResultsChangedLabelsTwoWinnerRoundFinal(t *testing.T) {
	f := knockoutOnlyFixture(8)
	for id := 1; id <= 4; id++ {
		f.finish(t, id, 1, 0)
	}
	_, err := f.service.OnResultsChanged(context.Background(), 1)
	require.NoError(t, err)

	for _, m := range f.matchRepo.matches {
		if m.RoundNumber != nil && *m.RoundNumber == 2 {
			f.finish(t, m.ID, 2, 0)
		}
	}

	result, err := f.service.OnResultsChanged(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, result.NextRoundGenerated)
	assert.Equal(t, 3, result.RoundNumber)

	var final *models.Match
	for _, m := range f.matchRepo.matches {
		if m.RoundNumber != nil && *m.RoundNumber == 3 {
			final = m
		}
	}
	require.NotNil(t, final)
	assert.Equal(t, models.StageFinal, final.StageName)
}

func TestOnResultsChangedByeTeamEntersNextRound(t *testing.T) {
	f := knockoutOnlyFixture(5)
	// Teams 1 and 3 win their round one ties; team 5 held the bye.
	f.finish(t, 1, 1, 0)
	f.finish(t, 2, 1, 0)

	result, err := f.service.OnResultsChanged(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, result.NextRoundGenerated)
	assert.Equal(t, 2, result.RoundNumber)
	assert.Equal(t, 1, result.MatchesGenerated)

	var round2 []*models.Match
	for _, m := range f.matchRepo.matches {
		if m.RoundNumber != nil && *m.RoundNumber == 2 {
			round2 = append(round2, m)
		}
	}
	require.Len(t, round2, 1)
	assert.Equal(t, models.StageKnockout, round2[0].StageName)
	assert.Equal(t, [2]int{1, 3}, [2]int{round2[0].HomeTeamID, round2[0].AwayTeamID})

	// Team 1 wins round two; team 5 carries its bye into the final instead
	// of the bracket closing early.
	f.finish(t, round2[0].ID, 2, 0)
	result, err = f.service.OnResultsChanged(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, result.NextRoundGenerated)
	assert.Equal(t, 3, result.RoundNumber)
	assert.False(t, result.TournamentFinalized)

	var final *models.Match
	for _, m := range f.matchRepo.matches {
		if m.RoundNumber != nil && *m.RoundNumber == 3 {
			final = m
		}
	}
	require.NotNil(t, final)
	assert.Equal(t, models.StageFinal, final.StageName)
	assert.ElementsMatch(t, []int{1, 5}, []int{final.HomeTeamID, final.AwayTeamID})

	// The bye team takes the final.
	f.finish(t, final.ID, 0, 3)
	result, err = f.service.OnResultsChanged(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, result.TournamentFinalized)
	require.NotNil(t, result.WinnerTeamID)
	assert.Equal(t, 5, *result.WinnerTeamID)
	assert.Equal(t, models.StatusCompleted, f.tournamentRepo.tournaments[1].Status)
}

func TestOnResultsChangedInsufficientWinnersAbortsWithoutWrites(t *testing.T) {
	f := knockoutOnlyFixture(8)
	// One quarter-final decided, the rest abandoned. The round counts as
	// played out but yields a single winner, too few for a next round.
	f.finish(t, 1, 1, 0)
	for id := 2; id <= 4; id++ {
		require.NoError(t, f.matchRepo.UpdateResult(context.Background(), nil, id, 0, 0, models.MatchCancelled))
	}
	before := len(f.matchRepo.matches)

	_, err := f.service.OnResultsChanged(context.Background(), 1)
	assert.ErrorIs(t, err, ErrInsufficientRoundWinners)
	assert.Len(t, f.matchRepo.matches, before)
	assert.Equal(t, models.StatusActive, f.tournamentRepo.tournaments[1].Status)
}

func TestOnResultsChangedLeagueOnlyFinalizesFromStandings(t *testing.T) {
	tournament := &models.Tournament{
		ID:     1,
		Name:   "City League",
		Status: models.StatusActive,
		Config: models.TournamentConfig{
			Format:         models.FormatLeagueSingle,
			SchedulingMode: models.SchedulingRandom,
		},
		StartDate: time.Date(2026, 2, 1, 18, 0, 0, 0, time.UTC),
	}

	registrationRepo := &fakeRegistrationRepo{}
	for teamID := 1; teamID <= 3; teamID++ {
		registrationRepo.registrations = append(registrationRepo.registrations, &models.Registration{
			ID:           teamID,
			TournamentID: 1,
			TeamID:       teamID,
			Status:       models.RegistrationApproved,
			Team:         &models.Team{ID: teamID, Name: fmt.Sprintf("Team %d", teamID)},
		})
	}

	matchRepo := &fakeMatchRepo{}
	matchRepo.CreateBatch(context.Background(), nil, []*models.Match{
		{TournamentID: 1, HomeTeamID: 1, AwayTeamID: 2, Status: models.MatchScheduled, StageName: models.StageLeague, Date: tournament.StartDate},
		{TournamentID: 1, HomeTeamID: 2, AwayTeamID: 3, Status: models.MatchScheduled, StageName: models.StageLeague, Date: tournament.StartDate.AddDate(0, 0, 1)},
		{TournamentID: 1, HomeTeamID: 3, AwayTeamID: 1, Status: models.MatchScheduled, StageName: models.StageLeague, Date: tournament.StartDate.AddDate(0, 0, 2)},
	})

	tournamentRepo := newFakeTournamentRepo(tournament)
	service := NewProgressionService(nil, tournamentRepo, registrationRepo, matchRepo, nil, testRand(), nil)

	require.NoError(t, matchRepo.UpdateResult(context.Background(), nil, 1, 2, 0, models.MatchFinished))
	result, err := service.OnResultsChanged(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, result.TournamentFinalized, "league still in progress")

	require.NoError(t, matchRepo.UpdateResult(context.Background(), nil, 2, 1, 1, models.MatchFinished))
	require.NoError(t, matchRepo.UpdateResult(context.Background(), nil, 3, 0, 3, models.MatchFinished))

	result, err = service.OnResultsChanged(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, result.TournamentFinalized)
	require.NotNil(t, result.WinnerTeamID)
	assert.Equal(t, 1, *result.WinnerTeamID, "team 1 tops the table with six points")
	assert.Equal(t, models.StatusCompleted, tournamentRepo.tournaments[1].Status)
}

func TestStandingsReturnsRankedGroups(t *testing.T) {
	f := groupKnockoutFixture(models.SchedulingRandom)
	f.finish(t, 1, 2, 0)
	f.finish(t, 2, 0, 1)

	standings, err := f.service.Standings(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, standings, 4)
	assert.Equal(t, 1, standings[0].GroupID)
	assert.Equal(t, 1, standings[0].TeamID)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, 2, standings[2].GroupID)
	assert.Equal(t, 4, standings[2].TeamID)
}

func TestOnResultsChangedUnknownTournament(t *testing.T) {
	f := groupKnockoutFixture(models.SchedulingRandom)

	_, err := f.service.OnResultsChanged(context.Background(), 42)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
