package models

import "time"

type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchLive      MatchStatus = "live"
	MatchFinished  MatchStatus = "finished"
	MatchPostponed MatchStatus = "postponed"
	MatchCancelled MatchStatus = "cancelled"
)

// Stage names used on matches. Knockout rounds generated by the progression
// service use StageKnockout with an increasing RoundNumber; the last round is
// labelled StageFinal.
const (
	StageLeague     = "League"
	StageGroupStage = "Group Stage"
	StageRound1     = "Round 1"
	StageKnockout   = "Knockout"
	StageFinal      = "Final"
)

type MatchEventType string

const (
	EventGoal       MatchEventType = "goal"
	EventYellowCard MatchEventType = "yellow_card"
	EventRedCard    MatchEventType = "red_card"
)

type MatchEvent struct {
	ID      int            `json:"id" db:"id"`
	MatchID int            `json:"match_id" db:"match_id"`
	TeamID  int            `json:"team_id" db:"team_id"`
	Type    MatchEventType `json:"type" db:"type"`
}

type Match struct {
	ID             int         `json:"id" db:"id"`
	TournamentID   int         `json:"tournament_id" db:"tournament_id"`
	HomeTeamID     int         `json:"home_team_id" db:"home_team_id"`
	AwayTeamID     int         `json:"away_team_id" db:"away_team_id"`
	HomeScore      int         `json:"home_score" db:"home_score"`
	AwayScore      int         `json:"away_score" db:"away_score"`
	Status         MatchStatus `json:"status" db:"status"`
	GroupID        *int        `json:"group_id,omitempty" db:"group_id"`
	RoundNumber    *int        `json:"round_number,omitempty" db:"round_number"`
	StageName      string      `json:"stage_name" db:"stage_name"`
	IsOpeningMatch bool        `json:"is_opening_match" db:"is_opening_match"`
	Date           time.Time   `json:"date" db:"date"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`

	Events []MatchEvent `json:"events,omitempty" db:"-"`
}

// IsGroupStage reports whether the match belongs to the league or group phase,
// i.e. whether its result feeds the standings table. Knockout-stage matches
// never affect standings.
func (m Match) IsGroupStage() bool {
	return m.GroupID != nil || m.StageName == StageLeague || m.StageName == StageGroupStage
}
