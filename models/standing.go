package models

// TeamStanding is one row of a (group) table. It is a computed view, never
// persisted directly.
type TeamStanding struct {
	TeamID         int      `json:"team_id"`
	GroupID        int      `json:"group_id"`
	Rank           int      `json:"rank"`
	Played         int      `json:"played"`
	Won            int      `json:"won"`
	Drawn          int      `json:"drawn"`
	Lost           int      `json:"lost"`
	GoalsFor       int      `json:"goals_for"`
	GoalsAgainst   int      `json:"goals_against"`
	GoalDifference int      `json:"goal_difference"`
	Points         int      `json:"points"`
	YellowCards    int      `json:"yellow_cards"`
	RedCards       int      `json:"red_cards"`
	Form           []string `json:"form"`
}
