package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cupline/tournament-engine/models"
	"github.com/cupline/tournament-engine/repositories"
)

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, limit, offset int) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, id int, next models.TournamentStatus) (*models.Tournament, error)
	RegisterTeam(ctx context.Context, tournamentID, teamID int) (*models.Registration, error)
	ReviewRegistration(ctx context.Context, registrationID int, approved bool) error
}

type CreateTournamentInput struct {
	Name           string                  `json:"name"`
	Format         models.TournamentFormat `json:"format"`
	NumberOfGroups int                     `json:"number_of_groups"`
	SchedulingMode models.SchedulingMode   `json:"scheduling_mode"`
	StartDate      time.Time               `json:"start_date"`
}

type tournamentService struct {
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	teamRepo         repositories.TeamRepository
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	teamRepo repositories.TeamRepository,
) TournamentService {
	return &tournamentService{
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		teamRepo:         teamRepo,
	}
}

var validFormats = map[models.TournamentFormat]bool{
	models.FormatLeagueSingle:          true,
	models.FormatLeagueHomeAway:        true,
	models.FormatKnockoutSingle:        true,
	models.FormatKnockoutHomeAway:      true,
	models.FormatGroupKnockoutSingle:   true,
	models.FormatGroupKnockoutHomeAway: true,
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if !validFormats[input.Format] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTournamentFormat, input.Format)
	}

	numberOfGroups := input.NumberOfGroups
	if input.Format.UsesGroups() {
		if numberOfGroups < 1 {
			return nil, fmt.Errorf("%w: number of groups must be at least 1, got %d", ErrInvalidGroupConfiguration, numberOfGroups)
		}
	} else {
		numberOfGroups = 0
	}

	schedulingMode := input.SchedulingMode
	if schedulingMode == "" {
		schedulingMode = models.SchedulingRandom
	}
	if schedulingMode != models.SchedulingRandom && schedulingMode != models.SchedulingManual {
		return nil, fmt.Errorf("%w: unknown scheduling mode %q", ErrValidationFailed, schedulingMode)
	}

	tournament := &models.Tournament{
		Name:   name,
		Status: models.StatusDraft,
		Config: models.TournamentConfig{
			Format:         input.Format,
			NumberOfGroups: numberOfGroups,
			SchedulingMode: schedulingMode,
		},
		StartDate: input.StartDate,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	tournaments, err := s.tournamentRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	if tournaments == nil {
		tournaments = []*models.Tournament{}
	}
	return tournaments, nil
}

// UpdateStatus applies a guarded status transition. Out-of-table transitions
// fail with ErrInvalidStatusTransition and nothing is mutated.
func (s *tournamentService) UpdateStatus(ctx context.Context, id int, next models.TournamentStatus) (*models.Tournament, error) {
	tournament, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateStatusTransition(tournament.Status, next); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStatusTransition, err)
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, next); err != nil {
		return nil, fmt.Errorf("failed to persist status of tournament %d: %w", id, err)
	}
	tournament.Status = next
	return tournament, nil
}

func (s *tournamentService) RegisterTeam(ctx context.Context, tournamentID, teamID int) (*models.Registration, error) {
	tournament, err := s.GetTournamentByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.StatusRegistrationOpen {
		return nil, fmt.Errorf("%w: tournament %d is not open for registration", ErrValidationFailed, tournamentID)
	}
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}

	registration := &models.Registration{
		TournamentID: tournamentID,
		TeamID:       teamID,
		Status:       models.RegistrationPendingReview,
	}
	if err := s.registrationRepo.Create(ctx, registration); err != nil {
		if errors.Is(err, repositories.ErrRegistrationConflict) {
			return nil, ErrRegistrationConflict
		}
		return nil, fmt.Errorf("failed to register team %d: %w", teamID, err)
	}
	return registration, nil
}

func (s *tournamentService) ReviewRegistration(ctx context.Context, registrationID int, approved bool) error {
	status := models.RegistrationRejected
	if approved {
		status = models.RegistrationApproved
	}
	if err := s.registrationRepo.UpdateStatus(ctx, registrationID, status); err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return ErrRegistrationNotFound
		}
		return fmt.Errorf("failed to review registration %d: %w", registrationID, err)
	}
	return nil
}
