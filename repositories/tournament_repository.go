package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cupline/tournament-engine/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, limit, offset int) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	SetWinner(ctx context.Context, exec SQLExecutor, id int, winnerTeamID int) error
	UpdateOpeningPair(ctx context.Context, id int, teamAID, teamBID int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `
	id, name, status, format, number_of_groups, scheduling_mode,
	opening_team_a_id, opening_team_b_id, start_date, winner_team_id, created_at`

func scanTournament(scanner interface{ Scan(dest ...interface{}) error }) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := scanner.Scan(
		&t.ID,
		&t.Name,
		&t.Status,
		&t.Config.Format,
		&t.Config.NumberOfGroups,
		&t.Config.SchedulingMode,
		&t.Config.OpeningTeamAID,
		&t.Config.OpeningTeamBID,
		&t.StartDate,
		&t.WinnerTeamID,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	query := `
		INSERT INTO tournaments
			(name, status, format, number_of_groups, scheduling_mode,
			 opening_team_a_id, opening_team_b_id, start_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		tournament.Name,
		tournament.Status,
		tournament.Config.Format,
		tournament.Config.NumberOfGroups,
		tournament.Config.SchedulingMode,
		tournament.Config.OpeningTeamAID,
		tournament.Config.OpeningTeamBID,
		tournament.StartDate,
	).Scan(&tournament.ID, &tournament.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	tournament, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	return tournament, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	result, err := executorOrDB(exec, r.db).ExecContext(ctx, `UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status of tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetWinner(ctx context.Context, exec SQLExecutor, id int, winnerTeamID int) error {
	result, err := executorOrDB(exec, r.db).ExecContext(ctx, `UPDATE tournaments SET winner_team_id = $1 WHERE id = $2`, winnerTeamID, id)
	if err != nil {
		return fmt.Errorf("failed to set winner of tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateOpeningPair(ctx context.Context, id int, teamAID, teamBID int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tournaments SET opening_team_a_id = $1, opening_team_b_id = $2 WHERE id = $3`,
		teamAID, teamBID, id)
	if err != nil {
		return fmt.Errorf("failed to update opening pair of tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
