package models

import "time"

// RegistrationStatus mirrors the ENUM in the DB.
type RegistrationStatus string

const (
	RegistrationApproved      RegistrationStatus = "approved"
	RegistrationPendingReview RegistrationStatus = "pending_review"
	RegistrationRejected      RegistrationStatus = "rejected"
	RegistrationWithdrawn     RegistrationStatus = "withdrawn"
)

// Registration links a team to a tournament. GroupID is assigned by the
// schedule generator; QualifiedForKnockout is set once the group stage is
// resolved. Withdrawn teams keep their historical results but never qualify.
type Registration struct {
	ID                   int                `json:"id" db:"id"`
	TournamentID         int                `json:"tournament_id" db:"tournament_id"`
	TeamID               int                `json:"team_id" db:"team_id"`
	Status               RegistrationStatus `json:"status" db:"status"`
	GroupID              *int               `json:"group_id,omitempty" db:"group_id"`
	QualifiedForKnockout bool               `json:"qualified_for_knockout" db:"qualified_for_knockout"`
	CreatedAt            time.Time          `json:"created_at" db:"created_at"`

	Team *Team `json:"team,omitempty" db:"-"`
}

// CountsForStandings reports whether the registration participates in
// standings computation at all.
func (r Registration) CountsForStandings() bool {
	return r.Status == RegistrationApproved || r.Status == RegistrationWithdrawn
}
