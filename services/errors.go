package services

import "errors"

// Errors shared across services and the HTTP error mapping.
var (
	// Lookup failures.
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrTeamNotFound         = errors.New("team not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrRegistrationNotFound = errors.New("registration not found")

	// Validation and business rules.
	ErrValidationFailed          = errors.New("validation failed")
	ErrTournamentNameRequired    = errors.New("tournament name is required")
	ErrInvalidTournamentFormat   = errors.New("invalid tournament format")
	ErrInvalidGroupConfiguration = errors.New("invalid group configuration")
	ErrInvalidOpeningSelection   = errors.New("opening teams must be two distinct approved registrants")
	ErrNotEnoughTeams            = errors.New("not enough approved teams")
	ErrInvalidStatusTransition   = errors.New("invalid tournament status transition")
	ErrDistributionInvalid       = errors.New("group distribution failed validation")

	// Conflicts.
	ErrRegistrationConflict     = errors.New("team is already registered for this tournament")
	ErrScheduleAlreadyGenerated = errors.New("fixtures have already been generated for this tournament")
	ErrKnockoutAlreadyGenerated = errors.New("knockout fixtures have already been generated")

	// Progression.
	ErrInsufficientRoundWinners = errors.New("fewer than two round winners available for the next round")
	ErrMatchNotEditable         = errors.New("match result cannot be changed in its current status")
)
