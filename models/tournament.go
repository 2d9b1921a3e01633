package models

import (
	"fmt"
	"time"
)

// TournamentStatus mirrors the ENUM in the DB.
type TournamentStatus string

const (
	StatusDraft                      TournamentStatus = "draft"
	StatusRegistrationOpen           TournamentStatus = "registration_open"
	StatusRegistrationClosed         TournamentStatus = "registration_closed"
	StatusWaitingForOpeningMatch     TournamentStatus = "waiting_for_opening_match_selection"
	StatusActive                     TournamentStatus = "active"
	StatusManualQualificationPending TournamentStatus = "manual_qualification_pending"
	StatusQualificationConfirmed     TournamentStatus = "qualification_confirmed"
	StatusCompleted                  TournamentStatus = "completed"
	StatusCancelled                  TournamentStatus = "cancelled"
)

// TournamentFormat selects fixture generation and progression behaviour.
type TournamentFormat string

const (
	FormatLeagueSingle          TournamentFormat = "league_single"
	FormatLeagueHomeAway        TournamentFormat = "league_home_away"
	FormatKnockoutSingle        TournamentFormat = "knockout_single"
	FormatKnockoutHomeAway      TournamentFormat = "knockout_home_away"
	FormatGroupKnockoutSingle   TournamentFormat = "group_knockout_single"
	FormatGroupKnockoutHomeAway TournamentFormat = "group_knockout_home_away"
)

// UsesGroups reports whether the format starts with a group or league phase
// whose completion triggers knockout qualification.
func (f TournamentFormat) UsesGroups() bool {
	return f == FormatGroupKnockoutSingle || f == FormatGroupKnockoutHomeAway
}

// IsLeagueOnly reports whether the tournament ends with the round robin.
func (f TournamentFormat) IsLeagueOnly() bool {
	return f == FormatLeagueSingle || f == FormatLeagueHomeAway
}

// HomeAway reports whether every pairing is played over two legs.
func (f TournamentFormat) HomeAway() bool {
	return f == FormatLeagueHomeAway || f == FormatKnockoutHomeAway || f == FormatGroupKnockoutHomeAway
}

type SchedulingMode string

const (
	SchedulingRandom SchedulingMode = "random"
	SchedulingManual SchedulingMode = "manual"
)

// TournamentConfig is the immutable progression configuration chosen by the
// organizer. The opening pair, when set, is guaranteed to be co-located in a
// group and scheduled as the first fixture.
type TournamentConfig struct {
	Format         TournamentFormat `json:"format" db:"format"`
	NumberOfGroups int              `json:"number_of_groups" db:"number_of_groups"`
	SchedulingMode SchedulingMode   `json:"scheduling_mode" db:"scheduling_mode"`
	OpeningTeamAID *int             `json:"opening_team_a_id,omitempty" db:"opening_team_a_id"`
	OpeningTeamBID *int             `json:"opening_team_b_id,omitempty" db:"opening_team_b_id"`
}

// OpeningPair returns the configured opening teams, or (nil, nil) if the pair
// is incomplete.
func (c TournamentConfig) OpeningPair() (*int, *int) {
	if c.OpeningTeamAID == nil || c.OpeningTeamBID == nil {
		return nil, nil
	}
	return c.OpeningTeamAID, c.OpeningTeamBID
}

type Tournament struct {
	ID           int              `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	Status       TournamentStatus `json:"status" db:"status"`
	Config       TournamentConfig `json:"config" db:"-"`
	StartDate    time.Time        `json:"start_date" db:"start_date"`
	WinnerTeamID *int             `json:"winner_team_id,omitempty" db:"winner_team_id"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}

// statusTransitions is the guard table for the tournament state machine.
// Completed and Cancelled are terminal.
var statusTransitions = map[TournamentStatus][]TournamentStatus{
	StatusDraft:                      {StatusRegistrationOpen, StatusCancelled},
	StatusRegistrationOpen:           {StatusRegistrationClosed, StatusCancelled},
	StatusRegistrationClosed:         {StatusWaitingForOpeningMatch, StatusActive, StatusCancelled},
	StatusWaitingForOpeningMatch:     {StatusActive, StatusCancelled},
	StatusActive:                     {StatusManualQualificationPending, StatusCompleted, StatusCancelled},
	StatusManualQualificationPending: {StatusQualificationConfirmed, StatusCancelled},
	StatusQualificationConfirmed:     {StatusActive, StatusCancelled},
	StatusCompleted:                  {},
	StatusCancelled:                  {},
}

// ValidateStatusTransition checks the requested status change against the
// guard table. Requesting the current status again is a permitted no-op.
// Invalid transitions are rejected, never coerced.
func ValidateStatusTransition(current, next TournamentStatus) error {
	if current == next {
		return nil
	}
	for _, allowed := range statusTransitions[current] {
		if next == allowed {
			return nil
		}
	}
	return fmt.Errorf("status transition from %q to %q is not allowed", current, next)
}
