package brackets

import (
	"sort"

	"github.com/cupline/tournament-engine/models"
)

const formLength = 5

const (
	pointsPerWin  = 3
	pointsPerDraw = 1
)

// CalculateStandings folds finished league/group-stage matches and their
// events into ranked per-group standings. Knockout-stage results are ignored.
// Only approved and withdrawn registrations participate; the fold never
// mutates its inputs. Matches are ordered chronologically before folding so
// the form column reflects actual play order.
func CalculateStandings(matches []*models.Match, registrations []*models.Registration) []models.TeamStanding {
	groupOf := make(map[int]int, len(registrations))
	for _, reg := range registrations {
		if reg == nil || !reg.CountsForStandings() {
			continue
		}
		groupID := 0
		if reg.GroupID != nil {
			groupID = *reg.GroupID
		}
		groupOf[reg.TeamID] = groupID
	}

	counted := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if m == nil || m.Status != models.MatchFinished || !m.IsGroupStage() {
			continue
		}
		counted = append(counted, m)
	}
	sort.SliceStable(counted, func(i, j int) bool {
		if !counted[i].Date.Equal(counted[j].Date) {
			return counted[i].Date.Before(counted[j].Date)
		}
		return counted[i].ID < counted[j].ID
	})

	table := make(map[int]*models.TeamStanding, len(groupOf))
	rowFor := func(teamID int) *models.TeamStanding {
		if row, ok := table[teamID]; ok {
			return row
		}
		row := &models.TeamStanding{TeamID: teamID, GroupID: groupOf[teamID]}
		table[teamID] = row
		return row
	}

	for _, m := range counted {
		if _, ok := groupOf[m.HomeTeamID]; !ok {
			continue
		}
		if _, ok := groupOf[m.AwayTeamID]; !ok {
			continue
		}
		home := rowFor(m.HomeTeamID)
		away := rowFor(m.AwayTeamID)

		home.Played++
		away.Played++
		home.GoalsFor += m.HomeScore
		home.GoalsAgainst += m.AwayScore
		away.GoalsFor += m.AwayScore
		away.GoalsAgainst += m.HomeScore

		switch {
		case m.HomeScore > m.AwayScore:
			home.Won++
			home.Points += pointsPerWin
			away.Lost++
			appendForm(home, "W")
			appendForm(away, "L")
		case m.HomeScore < m.AwayScore:
			away.Won++
			away.Points += pointsPerWin
			home.Lost++
			appendForm(away, "W")
			appendForm(home, "L")
		default:
			home.Drawn++
			away.Drawn++
			home.Points += pointsPerDraw
			away.Points += pointsPerDraw
			appendForm(home, "D")
			appendForm(away, "D")
		}

		for _, ev := range m.Events {
			row, ok := table[ev.TeamID]
			if !ok {
				continue
			}
			switch ev.Type {
			case models.EventYellowCard:
				row.YellowCards++
			case models.EventRedCard:
				row.RedCards++
			}
		}
	}

	standings := make([]models.TeamStanding, 0, len(table))
	for _, row := range table {
		row.GoalDifference = row.GoalsFor - row.GoalsAgainst
		standings = append(standings, *row)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].GroupID != standings[j].GroupID {
			return standings[i].GroupID < standings[j].GroupID
		}
		return lessByTieBreaks(standings[i], standings[j])
	})

	rank := 0
	currentGroup := -1
	for i := range standings {
		if standings[i].GroupID != currentGroup {
			currentGroup = standings[i].GroupID
			rank = 0
		}
		rank++
		standings[i].Rank = rank
	}
	return standings
}

// RankStandings applies the tie-break chain without the group partition.
// It is used to compare third-place teams across groups.
func RankStandings(standings []models.TeamStanding) []models.TeamStanding {
	ranked := make([]models.TeamStanding, len(standings))
	copy(ranked, standings)
	sort.SliceStable(ranked, func(i, j int) bool {
		return lessByTieBreaks(ranked[i], ranked[j])
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// lessByTieBreaks orders two rows by points, goal difference, goals scored,
// then discipline (fewer red cards, then fewer yellow cards).
func lessByTieBreaks(a, b models.TeamStanding) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.GoalDifference != b.GoalDifference {
		return a.GoalDifference > b.GoalDifference
	}
	if a.GoalsFor != b.GoalsFor {
		return a.GoalsFor > b.GoalsFor
	}
	if a.RedCards != b.RedCards {
		return a.RedCards < b.RedCards
	}
	return a.YellowCards < b.YellowCards
}

func appendForm(row *models.TeamStanding, result string) {
	row.Form = append(row.Form, result)
	if len(row.Form) > formLength {
		row.Form = row.Form[len(row.Form)-formLength:]
	}
}
