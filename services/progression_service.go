package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cupline/tournament-engine/brackets"
	"github.com/cupline/tournament-engine/models"
	"github.com/cupline/tournament-engine/repositories"
)

// knockoutRoundGap separates a knockout round from the fixtures it follows.
const knockoutRoundGap = 3 * 24 * time.Hour

// ProgressionResult summarizes what one progression pass did. It is the sole
// contract with the notification dispatcher; the service itself performs no
// notification I/O.
type ProgressionResult struct {
	TournamentID                int    `json:"tournament_id"`
	GroupsFinished              bool   `json:"groups_finished"`
	ManualQualificationRequired bool   `json:"manual_qualification_required"`
	ManualDrawRequired          bool   `json:"manual_draw_required"`
	PendingRoundNumber          int    `json:"pending_round_number,omitempty"`
	NextRoundGenerated          bool   `json:"next_round_generated"`
	MatchesGenerated            int    `json:"matches_generated,omitempty"`
	RoundNumber                 int    `json:"round_number,omitempty"`
	TournamentFinalized         bool   `json:"tournament_finalized"`
	WinnerTeamID                *int   `json:"winner_team_id,omitempty"`
	WinnerName                  string `json:"winner_name,omitempty"`
}

// DrawGate decides whether a knockout round must wait for a manually
// confirmed draw instead of being paired automatically. The gate is an
// external collaborator; AutoDrawGate is the default.
type DrawGate interface {
	RequiresManualDraw(ctx context.Context, tournament *models.Tournament, roundNumber int) (bool, error)
}

type AutoDrawGate struct{}

func (AutoDrawGate) RequiresManualDraw(context.Context, *models.Tournament, int) (bool, error) {
	return false, nil
}

type ProgressionService interface {
	// OnResultsChanged advances the tournament after a match result changed.
	OnResultsChanged(ctx context.Context, tournamentID int) (*ProgressionResult, error)
	// ConfirmQualification releases a tournament held in
	// ManualQualificationPending and generates the first knockout round.
	ConfirmQualification(ctx context.Context, tournamentID int) (*ProgressionResult, error)
	// ConfirmDraw generates the first knockout round after an externally
	// confirmed draw, bypassing the draw gate.
	ConfirmDraw(ctx context.Context, tournamentID int) (*ProgressionResult, error)
	// Standings computes the current ranked group standings.
	Standings(ctx context.Context, tournamentID int) ([]models.TeamStanding, error)
}

type progressionService struct {
	db               *sql.DB
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	matchRepo        repositories.MatchRepository
	drawGate         DrawGate
	newRand          func() *rand.Rand
	logger           *slog.Logger
}

func NewProgressionService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	matchRepo repositories.MatchRepository,
	drawGate DrawGate,
	newRand func() *rand.Rand,
	logger *slog.Logger,
) ProgressionService {
	if drawGate == nil {
		drawGate = AutoDrawGate{}
	}
	if newRand == nil {
		newRand = func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &progressionService{
		db:               db,
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		matchRepo:        matchRepo,
		drawGate:         drawGate,
		newRand:          newRand,
		logger:           logger,
	}
}

// tournamentSnapshot is the in-memory state one progression pass works on.
type tournamentSnapshot struct {
	tournament    *models.Tournament
	matches       []*models.Match
	registrations []*models.Registration
}

func (s *progressionService) loadSnapshot(ctx context.Context, tournamentID int) (*tournamentSnapshot, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	snapshot := &tournamentSnapshot{tournament: tournament}
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load matches of tournament %d: %w", tournamentID, err)
		}
		snapshot.matches = matches
		return nil
	})
	g.Go(func() error {
		registrations, err := s.registrationRepo.ListByTournament(gCtx, tournamentID, nil)
		if err != nil {
			return fmt.Errorf("failed to load registrations of tournament %d: %w", tournamentID, err)
		}
		snapshot.registrations = registrations
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (sn *tournamentSnapshot) groupStageMatches() []*models.Match {
	var matches []*models.Match
	for _, m := range sn.matches {
		if m.IsGroupStage() {
			matches = append(matches, m)
		}
	}
	return matches
}

func (sn *tournamentSnapshot) knockoutMatches() []*models.Match {
	var matches []*models.Match
	for _, m := range sn.matches {
		if !m.IsGroupStage() {
			matches = append(matches, m)
		}
	}
	return matches
}

// knockoutEntrants returns the teams that entered knockout round 1: the
// qualified registrations for group formats, every approved registration for
// pure knockout formats.
func (sn *tournamentSnapshot) knockoutEntrants() []int {
	usesGroups := sn.tournament.Config.Format.UsesGroups()
	var ids []int
	for _, reg := range sn.registrations {
		if reg.Status != models.RegistrationApproved {
			continue
		}
		if usesGroups && !reg.QualifiedForKnockout {
			continue
		}
		ids = append(ids, reg.TeamID)
	}
	return ids
}

func (sn *tournamentSnapshot) teamName(teamID int) string {
	for _, reg := range sn.registrations {
		if reg.TeamID == teamID && reg.Team != nil {
			return reg.Team.Name
		}
	}
	return ""
}

// allFinished reports whether every fixture has been played out. Cancelled
// fixtures will never finish and do not block progression.
func allFinished(matches []*models.Match) bool {
	for _, m := range matches {
		if m.Status != models.MatchFinished && m.Status != models.MatchCancelled {
			return false
		}
	}
	return true
}

func latestRound(knockout []*models.Match) (int, []*models.Match) {
	maxRound := 0
	for _, m := range knockout {
		if m.RoundNumber != nil && *m.RoundNumber > maxRound {
			maxRound = *m.RoundNumber
		}
	}
	var roundMatches []*models.Match
	for _, m := range knockout {
		if m.RoundNumber != nil && *m.RoundNumber == maxRound {
			roundMatches = append(roundMatches, m)
		}
	}
	return maxRound, roundMatches
}

// roundBye returns the team that sat out the given knockout round, if any.
// Round 1 is entered by the knockout entrants; each later round by the
// previous round's winners plus its bye. An odd field leaves exactly one
// participant without a fixture, and that participant advances unplayed.
// Byes are re-derived from persisted state on every pass, so a bye team can
// never be lost between invocations.
func roundBye(entrants []int, knockout []*models.Match, round int) (*int, error) {
	participants := entrants
	for r := 1; r <= round; r++ {
		var fixtures []*models.Match
		for _, m := range knockout {
			if m.RoundNumber != nil && *m.RoundNumber == r {
				fixtures = append(fixtures, m)
			}
		}
		playing := make(map[int]bool, len(fixtures)*2)
		for _, m := range fixtures {
			playing[m.HomeTeamID] = true
			playing[m.AwayTeamID] = true
		}
		var bye *int
		for _, id := range participants {
			if !playing[id] {
				teamID := id
				bye = &teamID
				break
			}
		}
		if r == round {
			return bye, nil
		}
		winners, err := brackets.DetermineRoundWinners(fixtures)
		if err != nil {
			return nil, fmt.Errorf("failed to replay winners of round %d: %w", r, err)
		}
		participants = winners
		if bye != nil {
			participants = append(participants, *bye)
		}
	}
	return nil, nil
}

// isFinalRound reports whether the round consists of a single fixture pair:
// one match, or the two legs of a double-leg final.
func isFinalRound(roundMatches []*models.Match) bool {
	type pairKey struct{ low, high int }
	pairs := make(map[pairKey]bool)
	for _, m := range roundMatches {
		key := pairKey{m.HomeTeamID, m.AwayTeamID}
		if key.low > key.high {
			key.low, key.high = key.high, key.low
		}
		pairs[key] = true
	}
	return len(pairs) == 1
}

func (s *progressionService) transitionStatus(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament, next models.TournamentStatus) error {
	if err := models.ValidateStatusTransition(tournament.Status, next); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStatusTransition, err)
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournament.ID, next); err != nil {
		return fmt.Errorf("failed to persist status of tournament %d: %w", tournament.ID, err)
	}
	tournament.Status = next
	return nil
}

func (s *progressionService) OnResultsChanged(ctx context.Context, tournamentID int) (*ProgressionResult, error) {
	snapshot, err := s.loadSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	tournament := snapshot.tournament
	result := &ProgressionResult{TournamentID: tournamentID}

	if tournament.Status == models.StatusCompleted {
		return result, nil
	}

	groupMatches := snapshot.groupStageMatches()
	knockout := snapshot.knockoutMatches()

	if tournament.Config.Format.IsLeagueOnly() {
		if len(groupMatches) == 0 || !allFinished(groupMatches) {
			return result, nil
		}
		standings := brackets.CalculateStandings(groupMatches, snapshot.registrations)
		if len(standings) == 0 {
			return result, nil
		}
		result.GroupsFinished = true
		return s.finalize(ctx, snapshot, standings[0].TeamID, result)
	}

	if tournament.Config.Format.UsesGroups() && len(knockout) == 0 {
		if len(groupMatches) == 0 || !allFinished(groupMatches) {
			return result, nil
		}
		result.GroupsFinished = true

		if tournament.Config.SchedulingMode == models.SchedulingManual {
			if err := s.transitionStatus(ctx, nil, tournament, models.StatusManualQualificationPending); err != nil {
				return nil, err
			}
			result.ManualQualificationRequired = true
			s.logger.Info("tournament waiting for manual qualification",
				slog.Int("tournament_id", tournamentID))
			return result, nil
		}

		standings := brackets.CalculateStandings(groupMatches, snapshot.registrations)
		qualified := brackets.DetermineQualifiedTeams(standings)
		return s.generateFirstKnockoutRound(ctx, snapshot, qualified, result, true)
	}

	if len(knockout) == 0 {
		return result, nil
	}

	round, roundMatches := latestRound(knockout)
	if !allFinished(roundMatches) {
		return result, nil
	}

	winners, err := brackets.DetermineRoundWinners(roundMatches)
	if err != nil {
		return nil, fmt.Errorf("failed to determine winners of round %d in tournament %d: %w", round, tournamentID, err)
	}
	bye, err := roundBye(snapshot.knockoutEntrants(), knockout, round)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve bye of round %d in tournament %d: %w", round, tournamentID, err)
	}

	if isFinalRound(roundMatches) && bye == nil {
		return s.finalize(ctx, snapshot, winners[0], result)
	}
	if bye != nil {
		winners = append(winners, *bye)
	}
	if len(winners) < 2 {
		return result, fmt.Errorf("%w: round %d produced %d", ErrInsufficientRoundWinners, round, len(winners))
	}
	return s.generateNextKnockoutRound(ctx, snapshot, winners, round+1, roundMatches, result)
}

func (s *progressionService) ConfirmQualification(ctx context.Context, tournamentID int) (*ProgressionResult, error) {
	snapshot, err := s.loadSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	tournament := snapshot.tournament
	result := &ProgressionResult{TournamentID: tournamentID, GroupsFinished: true}

	if err := models.ValidateStatusTransition(tournament.Status, models.StatusQualificationConfirmed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStatusTransition, err)
	}
	if len(snapshot.knockoutMatches()) > 0 {
		return nil, ErrKnockoutAlreadyGenerated
	}

	standings := brackets.CalculateStandings(snapshot.groupStageMatches(), snapshot.registrations)
	qualified := brackets.DetermineQualifiedTeams(standings)

	if err := s.transitionStatus(ctx, nil, tournament, models.StatusQualificationConfirmed); err != nil {
		return nil, err
	}
	return s.generateFirstKnockoutRound(ctx, snapshot, qualified, result, false)
}

func (s *progressionService) ConfirmDraw(ctx context.Context, tournamentID int) (*ProgressionResult, error) {
	snapshot, err := s.loadSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	result := &ProgressionResult{TournamentID: tournamentID, GroupsFinished: true}

	if len(snapshot.knockoutMatches()) > 0 {
		return nil, ErrKnockoutAlreadyGenerated
	}
	groupMatches := snapshot.groupStageMatches()
	if len(groupMatches) == 0 || !allFinished(groupMatches) {
		return nil, fmt.Errorf("%w: group stage of tournament %d is not finished", ErrValidationFailed, tournamentID)
	}

	standings := brackets.CalculateStandings(groupMatches, snapshot.registrations)
	qualified := brackets.DetermineQualifiedTeams(standings)
	return s.generateFirstKnockoutRound(ctx, snapshot, qualified, result, false)
}

func (s *progressionService) Standings(ctx context.Context, tournamentID int) ([]models.TeamStanding, error) {
	snapshot, err := s.loadSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	standings := brackets.CalculateStandings(snapshot.groupStageMatches(), snapshot.registrations)
	if standings == nil {
		standings = []models.TeamStanding{}
	}
	return standings, nil
}

// generateFirstKnockoutRound pairs the qualified teams, persists the round 1
// fixtures, flags the registrations that qualified, and moves the tournament
// to Active when it came through the manual qualification path. All writes
// happen in a single transaction.
func (s *progressionService) generateFirstKnockoutRound(
	ctx context.Context,
	snapshot *tournamentSnapshot,
	qualified []models.TeamStanding,
	result *ProgressionResult,
	checkGate bool,
) (*ProgressionResult, error) {
	tournament := snapshot.tournament

	if checkGate {
		required, err := s.drawGate.RequiresManualDraw(ctx, tournament, 1)
		if err != nil {
			return nil, fmt.Errorf("draw gate failed for tournament %d: %w", tournament.ID, err)
		}
		if required {
			result.ManualDrawRequired = true
			result.PendingRoundNumber = 1
			return result, nil
		}
	}

	if len(qualified) < 2 {
		return result, fmt.Errorf("%w: only %d team(s) qualified", ErrInsufficientRoundWinners, len(qualified))
	}

	// The configured opening pair is honoured only when both members
	// actually qualified.
	openingA, openingB := tournament.Config.OpeningPair()
	pairings, _, bye := brackets.CreatePairings(qualified, openingA, openingB, s.newRand())
	if bye != nil {
		s.logger.Info("odd knockout field, team holds a first-round bye",
			slog.Int("tournament_id", tournament.ID),
			slog.Int("team_id", bye.TeamID))
	}

	roundNumber := 1
	stage := models.StageKnockout
	if len(qualified) == 2 {
		stage = models.StageFinal
	}
	matches := s.buildRoundFixtures(snapshot, pairings, roundNumber, stage)

	qualifiedIDs := make([]int, len(qualified))
	for i, q := range qualified {
		qualifiedIDs[i] = q.TeamID
	}

	err := runInTx(ctx, s.db, func(tx repositories.SQLExecutor) error {
		if err := s.matchRepo.CreateBatch(ctx, tx, matches); err != nil {
			return err
		}
		if err := s.registrationRepo.MarkQualified(ctx, tx, tournament.ID, qualifiedIDs); err != nil {
			return err
		}
		if tournament.Status == models.StatusQualificationConfirmed {
			return s.transitionStatus(ctx, tx, tournament, models.StatusActive)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.NextRoundGenerated = true
	result.MatchesGenerated = len(matches)
	result.RoundNumber = roundNumber
	s.logger.Info("knockout round generated",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("round", roundNumber),
		slog.Int("matches", len(matches)))
	return result, nil
}

func (s *progressionService) generateNextKnockoutRound(
	ctx context.Context,
	snapshot *tournamentSnapshot,
	winners []int,
	roundNumber int,
	previousRound []*models.Match,
	result *ProgressionResult,
) (*ProgressionResult, error) {
	stage := models.StageKnockout
	if len(winners) == 2 {
		stage = models.StageFinal
	}

	pairings := make([]brackets.Pairing, 0, len(winners)/2)
	for i := 0; i+1 < len(winners); i += 2 {
		pairings = append(pairings, brackets.Pairing{HomeTeamID: winners[i], AwayTeamID: winners[i+1]})
	}
	matches := s.buildRoundFixtures(snapshot, pairings, roundNumber, stage)

	err := runInTx(ctx, s.db, func(tx repositories.SQLExecutor) error {
		return s.matchRepo.CreateBatch(ctx, tx, matches)
	})
	if err != nil {
		return nil, err
	}

	result.NextRoundGenerated = true
	result.MatchesGenerated = len(matches)
	result.RoundNumber = roundNumber
	s.logger.Info("knockout round generated",
		slog.Int("tournament_id", snapshot.tournament.ID),
		slog.Int("round", roundNumber),
		slog.Int("matches", len(matches)))
	return result, nil
}

// buildRoundFixtures materializes pairings as Scheduled zero-score fixtures,
// spread one day apart starting a fixed gap after the latest existing fixture.
func (s *progressionService) buildRoundFixtures(snapshot *tournamentSnapshot, pairings []brackets.Pairing, roundNumber int, stage string) []*models.Match {
	baseDate := snapshot.tournament.StartDate
	for _, m := range snapshot.matches {
		if m.Date.After(baseDate) {
			baseDate = m.Date
		}
	}
	baseDate = baseDate.Add(knockoutRoundGap)

	homeAway := snapshot.tournament.Config.Format.HomeAway()
	matches := make([]*models.Match, 0, len(pairings)*2)
	for i, pairing := range pairings {
		round := roundNumber
		m := &models.Match{
			TournamentID:   snapshot.tournament.ID,
			HomeTeamID:     pairing.HomeTeamID,
			AwayTeamID:     pairing.AwayTeamID,
			Status:         models.MatchScheduled,
			RoundNumber:    &round,
			StageName:      stage,
			IsOpeningMatch: pairing.IsOpening,
			Date:           baseDate.Add(time.Duration(i) * 24 * time.Hour),
		}
		matches = append(matches, m)
		if homeAway {
			returnRound := roundNumber
			matches = append(matches, &models.Match{
				TournamentID: snapshot.tournament.ID,
				HomeTeamID:   pairing.AwayTeamID,
				AwayTeamID:   pairing.HomeTeamID,
				Status:       models.MatchScheduled,
				RoundNumber:  &returnRound,
				StageName:    stage,
				Date:         m.Date.Add(knockoutRoundGap),
			})
		}
	}
	return matches
}

// finalize records the tournament winner and moves the tournament to
// Completed in one transaction.
func (s *progressionService) finalize(ctx context.Context, snapshot *tournamentSnapshot, winnerTeamID int, result *ProgressionResult) (*ProgressionResult, error) {
	tournament := snapshot.tournament

	err := runInTx(ctx, s.db, func(tx repositories.SQLExecutor) error {
		if err := s.tournamentRepo.SetWinner(ctx, tx, tournament.ID, winnerTeamID); err != nil {
			return err
		}
		return s.transitionStatus(ctx, tx, tournament, models.StatusCompleted)
	})
	if err != nil {
		return nil, err
	}

	tournament.WinnerTeamID = &winnerTeamID
	result.TournamentFinalized = true
	result.WinnerTeamID = &winnerTeamID
	result.WinnerName = snapshot.teamName(winnerTeamID)
	s.logger.Info("tournament finalized",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("winner_team_id", winnerTeamID))
	return result, nil
}
