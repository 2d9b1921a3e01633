package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/cupline/tournament-engine/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, id int, homeScore, awayScore int, status models.MatchStatus) error
	AddEvents(ctx context.Context, exec SQLExecutor, matchID int, events []models.MatchEvent) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, home_team_id, away_team_id, home_score, away_score,
			 status, group_id, round_number, stage_name, is_opening_match, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	for _, m := range matches {
		err := executorOrDB(exec, r.db).QueryRowContext(ctx, query,
			m.TournamentID,
			m.HomeTeamID,
			m.AwayTeamID,
			m.HomeScore,
			m.AwayScore,
			m.Status,
			m.GroupID,
			m.RoundNumber,
			m.StageName,
			m.IsOpeningMatch,
			m.Date,
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create match %d vs %d: %w", m.HomeTeamID, m.AwayTeamID, err)
		}
	}
	return nil
}

const matchColumns = `
	id, tournament_id, home_team_id, away_team_id, home_score, away_score,
	status, group_id, round_number, stage_name, is_opening_match, date, created_at`

func scanMatch(scanner interface{ Scan(dest ...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	err := scanner.Scan(
		&m.ID,
		&m.TournamentID,
		&m.HomeTeamID,
		&m.AwayTeamID,
		&m.HomeScore,
		&m.AwayScore,
		&m.Status,
		&m.GroupID,
		&m.RoundNumber,
		&m.StageName,
		&m.IsOpeningMatch,
		&m.Date,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return match, nil
}

// ListByTournament returns the tournament's matches with their events loaded,
// ordered by date.
func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE tournament_id = $1 ORDER BY date, id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	var matches []*models.Match
	byID := make(map[int]*models.Match)
	matchIDs := make([]int, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
		byID[m.ID] = m
		matchIDs = append(matchIDs, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return matches, nil
	}

	eventRows, err := r.db.QueryContext(ctx,
		`SELECT id, match_id, team_id, type FROM match_events WHERE match_id = ANY($1) ORDER BY id`,
		pq.Array(matchIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list match events for tournament %d: %w", tournamentID, err)
	}
	defer eventRows.Close()

	for eventRows.Next() {
		var ev models.MatchEvent
		if err := eventRows.Scan(&ev.ID, &ev.MatchID, &ev.TeamID, &ev.Type); err != nil {
			return nil, fmt.Errorf("failed to scan match event row: %w", err)
		}
		if m, ok := byID[ev.MatchID]; ok {
			m.Events = append(m.Events, ev)
		}
	}
	return matches, eventRows.Err()
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, homeScore, awayScore int, status models.MatchStatus) error {
	result, err := executorOrDB(exec, r.db).ExecContext(ctx,
		`UPDATE matches SET home_score = $1, away_score = $2, status = $3 WHERE id = $4`,
		homeScore, awayScore, status, id)
	if err != nil {
		return fmt.Errorf("failed to update result of match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) AddEvents(ctx context.Context, exec SQLExecutor, matchID int, events []models.MatchEvent) error {
	query := `INSERT INTO match_events (match_id, team_id, type) VALUES ($1, $2, $3) RETURNING id`
	for i := range events {
		events[i].MatchID = matchID
		err := executorOrDB(exec, r.db).QueryRowContext(ctx, query, matchID, events[i].TeamID, events[i].Type).Scan(&events[i].ID)
		if err != nil {
			return fmt.Errorf("failed to add event to match %d: %w", matchID, err)
		}
	}
	return nil
}
