package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupline/tournament-engine/models"
	"github.com/cupline/tournament-engine/repositories"
)

type fakeTeamRepo struct {
	teams map[int]*models.Team
}

func newFakeTeamRepo(teams ...*models.Team) *fakeTeamRepo {
	repo := &fakeTeamRepo{teams: make(map[int]*models.Team)}
	for _, team := range teams {
		repo.teams[team.ID] = team
	}
	return repo
}

func (r *fakeTeamRepo) Create(ctx context.Context, team *models.Team) error {
	team.ID = len(r.teams) + 1
	r.teams[team.ID] = team
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *team
	return &copied, nil
}

func (r *fakeTeamRepo) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	team, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.LogoKey = logoKey
	return nil
}

func tournamentServiceFixture() (*fakeTournamentRepo, *fakeRegistrationRepo, *fakeTeamRepo, TournamentService) {
	tournamentRepo := newFakeTournamentRepo()
	registrationRepo := &fakeRegistrationRepo{}
	teamRepo := newFakeTeamRepo(
		&models.Team{ID: 1, Name: "North United"},
		&models.Team{ID: 2, Name: "South City"},
	)
	service := NewTournamentService(tournamentRepo, registrationRepo, teamRepo)
	return tournamentRepo, registrationRepo, teamRepo, service
}

func TestCreateTournament(t *testing.T) {
	_, _, _, service := tournamentServiceFixture()

	tournament, err := service.CreateTournament(context.Background(), CreateTournamentInput{
		Name:           "  Spring Cup ",
		Format:         models.FormatGroupKnockoutSingle,
		NumberOfGroups: 4,
		StartDate:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "Spring Cup", tournament.Name)
	assert.Equal(t, models.StatusDraft, tournament.Status)
	assert.Equal(t, 4, tournament.Config.NumberOfGroups)
	assert.Equal(t, models.SchedulingRandom, tournament.Config.SchedulingMode, "scheduling mode defaults to random")
	assert.NotZero(t, tournament.ID)
}

func TestCreateTournamentValidation(t *testing.T) {
	_, _, _, service := tournamentServiceFixture()

	cases := []struct {
		name    string
		input   CreateTournamentInput
		wantErr error
	}{
		{"blank name", CreateTournamentInput{Name: "   ", Format: models.FormatLeagueSingle}, ErrTournamentNameRequired},
		{"unknown format", CreateTournamentInput{Name: "Cup", Format: "ladder"}, ErrInvalidTournamentFormat},
		{"group format without groups", CreateTournamentInput{Name: "Cup", Format: models.FormatGroupKnockoutSingle}, ErrInvalidGroupConfiguration},
		{"unknown scheduling mode", CreateTournamentInput{Name: "Cup", Format: models.FormatLeagueSingle, SchedulingMode: "bracket"}, ErrValidationFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateTournament(context.Background(), tc.input)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCreateTournamentDropsGroupsForNonGroupFormats(t *testing.T) {
	_, _, _, service := tournamentServiceFixture()

	tournament, err := service.CreateTournament(context.Background(), CreateTournamentInput{
		Name:           "Knockout Night",
		Format:         models.FormatKnockoutSingle,
		NumberOfGroups: 7,
	})
	require.NoError(t, err)
	assert.Zero(t, tournament.Config.NumberOfGroups)
}

func TestUpdateStatusGuardsTransitions(t *testing.T) {
	tournamentRepo, _, _, service := tournamentServiceFixture()
	tournamentRepo.tournaments[1] = &models.Tournament{ID: 1, Name: "Cup", Status: models.StatusDraft}

	updated, err := service.UpdateStatus(context.Background(), 1, models.StatusRegistrationOpen)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRegistrationOpen, updated.Status)

	_, err = service.UpdateStatus(context.Background(), 1, models.StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	assert.Equal(t, models.StatusRegistrationOpen, tournamentRepo.tournaments[1].Status, "rejected transition must not mutate")
}

func TestRegisterTeam(t *testing.T) {
	tournamentRepo, registrationRepo, _, service := tournamentServiceFixture()
	tournamentRepo.tournaments[1] = &models.Tournament{ID: 1, Name: "Cup", Status: models.StatusRegistrationOpen}

	registration, err := service.RegisterTeam(context.Background(), 1, 2)
	require.NoError(t, err)

	assert.Equal(t, models.RegistrationPendingReview, registration.Status)
	assert.Equal(t, 2, registration.TeamID)
	assert.Len(t, registrationRepo.registrations, 1)
}

func TestRegisterTeamGuards(t *testing.T) {
	tournamentRepo, _, _, service := tournamentServiceFixture()
	tournamentRepo.tournaments[1] = &models.Tournament{ID: 1, Name: "Cup", Status: models.StatusDraft}
	tournamentRepo.tournaments[2] = &models.Tournament{ID: 2, Name: "Open", Status: models.StatusRegistrationOpen}

	t.Run("registration not open", func(t *testing.T) {
		_, err := service.RegisterTeam(context.Background(), 1, 1)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("unknown team", func(t *testing.T) {
		_, err := service.RegisterTeam(context.Background(), 2, 42)
		assert.ErrorIs(t, err, ErrTeamNotFound)
	})

	t.Run("unknown tournament", func(t *testing.T) {
		_, err := service.RegisterTeam(context.Background(), 9, 1)
		assert.ErrorIs(t, err, ErrTournamentNotFound)
	})
}

func TestReviewRegistration(t *testing.T) {
	_, registrationRepo, _, service := tournamentServiceFixture()
	registrationRepo.registrations = append(registrationRepo.registrations, &models.Registration{
		ID: 1, TournamentID: 1, TeamID: 1, Status: models.RegistrationPendingReview,
	})

	require.NoError(t, service.ReviewRegistration(context.Background(), 1, true))
	assert.Equal(t, models.RegistrationApproved, registrationRepo.registrations[0].Status)

	require.NoError(t, service.ReviewRegistration(context.Background(), 1, false))
	assert.Equal(t, models.RegistrationRejected, registrationRepo.registrations[0].Status)

	err := service.ReviewRegistration(context.Background(), 7, true)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}
