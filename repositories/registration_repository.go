package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/cupline/tournament-engine/models"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrRegistrationConflict = errors.New("team is already registered for this tournament")
)

type RegistrationRepository interface {
	Create(ctx context.Context, registration *models.Registration) error
	ListByTournament(ctx context.Context, tournamentID int, status *models.RegistrationStatus) ([]*models.Registration, error)
	UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus) error
	AssignGroups(ctx context.Context, exec SQLExecutor, tournamentID int, groupByTeam map[int]int) error
	MarkQualified(ctx context.Context, exec SQLExecutor, tournamentID int, teamIDs []int) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, registration *models.Registration) error {
	query := `
		INSERT INTO registrations (tournament_id, team_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		registration.TournamentID,
		registration.TeamID,
		registration.Status,
	).Scan(&registration.ID, &registration.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrRegistrationConflict
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, tournamentID int, status *models.RegistrationStatus) ([]*models.Registration, error) {
	query := `
		SELECT r.id, r.tournament_id, r.team_id, r.status, r.group_id,
		       r.qualified_for_knockout, r.created_at, t.id, t.name, t.created_at
		FROM registrations r
		JOIN teams t ON t.id = r.team_id
		WHERE r.tournament_id = $1`
	args := []interface{}{tournamentID}
	if status != nil {
		query += ` AND r.status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY r.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	var registrations []*models.Registration
	for rows.Next() {
		reg := &models.Registration{Team: &models.Team{}}
		err := rows.Scan(
			&reg.ID,
			&reg.TournamentID,
			&reg.TeamID,
			&reg.Status,
			&reg.GroupID,
			&reg.QualifiedForKnockout,
			&reg.CreatedAt,
			&reg.Team.ID,
			&reg.Team.Name,
			&reg.Team.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", err)
		}
		registrations = append(registrations, reg)
	}
	return registrations, rows.Err()
}

func (r *postgresRegistrationRepository) UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE registrations SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update registration %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) AssignGroups(ctx context.Context, exec SQLExecutor, tournamentID int, groupByTeam map[int]int) error {
	query := `UPDATE registrations SET group_id = $1 WHERE tournament_id = $2 AND team_id = $3`
	for teamID, groupID := range groupByTeam {
		result, err := executorOrDB(exec, r.db).ExecContext(ctx, query, groupID, tournamentID, teamID)
		if err != nil {
			return fmt.Errorf("failed to assign team %d to group %d: %w", teamID, groupID, err)
		}
		if err := checkAffectedRows(result, ErrRegistrationNotFound); err != nil {
			return fmt.Errorf("team %d has no registration in tournament %d: %w", teamID, tournamentID, err)
		}
	}
	return nil
}

func (r *postgresRegistrationRepository) MarkQualified(ctx context.Context, exec SQLExecutor, tournamentID int, teamIDs []int) error {
	_, err := executorOrDB(exec, r.db).ExecContext(ctx,
		`UPDATE registrations SET qualified_for_knockout = (team_id = ANY($1)) WHERE tournament_id = $2`,
		pq.Array(teamIDs), tournamentID)
	if err != nil {
		return fmt.Errorf("failed to mark qualified teams for tournament %d: %w", tournamentID, err)
	}
	return nil
}
