package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/cupline/tournament-engine/models"
	"github.com/cupline/tournament-engine/realtime"
	"github.com/cupline/tournament-engine/repositories"
)

// SubmitResultInput carries a full-time result together with the card and
// goal events recorded during the match.
type SubmitResultInput struct {
	HomeScore int                 `json:"home_score"`
	AwayScore int                 `json:"away_score"`
	Events    []models.MatchEvent `json:"events"`
}

type MatchService interface {
	GetMatchByID(ctx context.Context, id int) (*models.Match, error)
	ListMatches(ctx context.Context, tournamentID int) ([]*models.Match, error)
	// SubmitResult records a final score, runs the progression pass, and
	// broadcasts both to the tournament room.
	SubmitResult(ctx context.Context, matchID int, input SubmitResultInput) (*ProgressionResult, error)
}

type matchService struct {
	db          *sql.DB
	matchRepo   repositories.MatchRepository
	progression ProgressionService
	hub         *realtime.Hub
	logger      *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	progression ProgressionService,
	hub *realtime.Hub,
	logger *slog.Logger,
) MatchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &matchService{
		db:          db,
		matchRepo:   matchRepo,
		progression: progression,
		hub:         hub,
		logger:      logger,
	}
}

func (s *matchService) GetMatchByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", id, err)
	}
	return match, nil
}

func (s *matchService) ListMatches(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches of tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *matchService) SubmitResult(ctx context.Context, matchID int, input SubmitResultInput) (*ProgressionResult, error) {
	if input.HomeScore < 0 || input.AwayScore < 0 {
		return nil, fmt.Errorf("%w: scores must be non-negative", ErrValidationFailed)
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	if match.Status == models.MatchCancelled {
		return nil, fmt.Errorf("%w: match %d is cancelled", ErrMatchNotEditable, matchID)
	}

	for _, event := range input.Events {
		if event.TeamID != match.HomeTeamID && event.TeamID != match.AwayTeamID {
			return nil, fmt.Errorf("%w: event team %d is not playing in match %d",
				ErrValidationFailed, event.TeamID, matchID)
		}
		switch event.Type {
		case models.EventGoal, models.EventYellowCard, models.EventRedCard:
		default:
			return nil, fmt.Errorf("%w: unknown event type %q", ErrValidationFailed, event.Type)
		}
	}

	txErr := runInTx(ctx, s.db, func(tx repositories.SQLExecutor) error {
		if err := s.matchRepo.UpdateResult(ctx, tx, matchID, input.HomeScore, input.AwayScore, models.MatchFinished); err != nil {
			return err
		}
		if len(input.Events) > 0 {
			return s.matchRepo.AddEvents(ctx, tx, matchID, input.Events)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	match.HomeScore = input.HomeScore
	match.AwayScore = input.AwayScore
	match.Status = models.MatchFinished
	match.Events = append(match.Events, input.Events...)

	result, err := s.progression.OnResultsChanged(ctx, match.TournamentID)
	if err != nil {
		// The result is already committed; surface the progression failure
		// but keep a trace of the submission.
		s.logger.Error("progression pass failed after result submission",
			slog.Int("match_id", matchID),
			slog.Int("tournament_id", match.TournamentID),
			slog.Any("error", err))
		return nil, err
	}

	if s.hub != nil {
		room := strconv.Itoa(match.TournamentID)
		s.hub.BroadcastToRoom(room, realtime.Message{
			Type:    realtime.MessageMatchUpdated,
			Payload: match,
			RoomID:  room,
		})
		s.hub.BroadcastToRoom(room, realtime.Message{
			Type:    realtime.MessageProgressionResult,
			Payload: result,
			RoomID:  room,
		})
	}
	return result, nil
}
