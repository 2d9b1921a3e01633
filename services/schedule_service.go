package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/cupline/tournament-engine/brackets"
	"github.com/cupline/tournament-engine/models"
	"github.com/cupline/tournament-engine/realtime"
	"github.com/cupline/tournament-engine/repositories"
)

type ScheduleService interface {
	// GenerateSchedule builds and persists the opening fixture list for the
	// tournament format and activates the tournament.
	GenerateSchedule(ctx context.Context, tournamentID int) ([]*models.Match, error)
	// SelectOpeningPair records the two approved teams whose fixture opens
	// the tournament.
	SelectOpeningPair(ctx context.Context, tournamentID, teamAID, teamBID int) error
}

type scheduleService struct {
	db               *sql.DB
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	matchRepo        repositories.MatchRepository
	hub              *realtime.Hub
	newRand          func() *rand.Rand
	logger           *slog.Logger
}

func NewScheduleService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	matchRepo repositories.MatchRepository,
	hub *realtime.Hub,
	newRand func() *rand.Rand,
	logger *slog.Logger,
) ScheduleService {
	if newRand == nil {
		newRand = func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &scheduleService{
		db:               db,
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		matchRepo:        matchRepo,
		hub:              hub,
		newRand:          newRand,
		logger:           logger,
	}
}

func (s *scheduleService) GenerateSchedule(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	switch tournament.Status {
	case models.StatusRegistrationClosed, models.StatusWaitingForOpeningMatch:
	default:
		return nil, fmt.Errorf("%w: schedule cannot be generated while tournament is %q",
			ErrInvalidStatusTransition, tournament.Status)
	}

	existing, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches of tournament %d: %w", tournamentID, err)
	}
	if len(existing) > 0 {
		return nil, ErrScheduleAlreadyGenerated
	}

	approved := models.RegistrationApproved
	registrations, err := s.registrationRepo.ListByTournament(ctx, tournamentID, &approved)
	if err != nil {
		return nil, fmt.Errorf("failed to load registrations of tournament %d: %w", tournamentID, err)
	}
	if len(registrations) < 2 {
		return nil, fmt.Errorf("%w: %d approved team(s)", ErrNotEnoughTeams, len(registrations))
	}

	teamIDs := make([]int, len(registrations))
	for i, reg := range registrations {
		teamIDs[i] = reg.TeamID
	}

	baseDate := tournament.StartDate
	if baseDate.IsZero() {
		baseDate = time.Now().Add(24 * time.Hour)
	}

	matches, assignments, err := brackets.GenerateSchedule(brackets.ScheduleParams{
		TournamentID: tournamentID,
		Config:       tournament.Config,
		TeamIDs:      teamIDs,
		BaseDate:     baseDate,
		Rand:         s.newRand(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if tournament.Config.Format.UsesGroups() {
		distribution := make(map[int][]int)
		for teamID, groupID := range assignments {
			distribution[groupID] = append(distribution[groupID], teamID)
		}
		if ok, problems := brackets.ValidateDistribution(distribution, teamIDs, tournament.Config.NumberOfGroups); !ok {
			return nil, fmt.Errorf("%w: %v", ErrDistributionInvalid, problems)
		}
	}

	txErr := runInTx(ctx, s.db, func(tx repositories.SQLExecutor) error {
		if err := s.matchRepo.CreateBatch(ctx, tx, matches); err != nil {
			return err
		}
		if len(assignments) > 0 {
			if err := s.registrationRepo.AssignGroups(ctx, tx, tournamentID, assignments); err != nil {
				return err
			}
		}
		if err := models.ValidateStatusTransition(tournament.Status, models.StatusActive); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidStatusTransition, err)
		}
		return s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.StatusActive)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.logger.Info("schedule generated",
		slog.Int("tournament_id", tournamentID),
		slog.String("format", string(tournament.Config.Format)),
		slog.Int("matches", len(matches)))

	if s.hub != nil {
		room := strconv.Itoa(tournamentID)
		s.hub.BroadcastToRoom(room, realtime.Message{
			Type:    realtime.MessageScheduleGenerated,
			Payload: matches,
			RoomID:  room,
		})
	}
	return matches, nil
}

func (s *scheduleService) SelectOpeningPair(ctx context.Context, tournamentID, teamAID, teamBID int) error {
	if teamAID == teamBID {
		return fmt.Errorf("%w: opening pair must be two distinct teams", ErrInvalidOpeningSelection)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	switch tournament.Status {
	case models.StatusRegistrationClosed, models.StatusWaitingForOpeningMatch:
	default:
		return fmt.Errorf("%w: opening pair cannot be selected while tournament is %q",
			ErrInvalidOpeningSelection, tournament.Status)
	}

	approved := models.RegistrationApproved
	registrations, err := s.registrationRepo.ListByTournament(ctx, tournamentID, &approved)
	if err != nil {
		return fmt.Errorf("failed to load registrations of tournament %d: %w", tournamentID, err)
	}
	registered := make(map[int]bool, len(registrations))
	for _, reg := range registrations {
		registered[reg.TeamID] = true
	}
	if !registered[teamAID] || !registered[teamBID] {
		return fmt.Errorf("%w: both opening teams must hold approved registrations", ErrInvalidOpeningSelection)
	}

	if err := s.tournamentRepo.UpdateOpeningPair(ctx, tournamentID, teamAID, teamBID); err != nil {
		return fmt.Errorf("failed to persist opening pair of tournament %d: %w", tournamentID, err)
	}
	s.logger.Info("opening pair selected",
		slog.Int("tournament_id", tournamentID),
		slog.Int("team_a_id", teamAID),
		slog.Int("team_b_id", teamBID))
	return nil
}
