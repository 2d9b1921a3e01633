package brackets

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/cupline/tournament-engine/models"
)

// returnLegOffset separates the two legs of a home-away pairing.
const returnLegOffset = 3 * 24 * time.Hour

// ScheduleParams carries everything GenerateSchedule needs. Rand must be a
// caller-seeded generator; given the same seed and inputs the schedule is
// fully reproducible.
type ScheduleParams struct {
	TournamentID int
	Config       models.TournamentConfig
	TeamIDs      []int
	BaseDate     time.Time
	Rand         *rand.Rand
}

// GenerateSchedule produces the full fixture list for the tournament format
// and, for group formats, the team-to-group assignment to persist back onto
// the registrations. All fixtures are created Scheduled with zero scores;
// dates are spread from BaseDate by one day per fixture index.
func GenerateSchedule(p ScheduleParams) ([]*models.Match, map[int]int, error) {
	if len(p.TeamIDs) == 0 {
		return nil, nil, ErrEmptyTeamList
	}
	seen := make(map[int]bool, len(p.TeamIDs))
	for _, id := range p.TeamIDs {
		if seen[id] {
			return nil, nil, fmt.Errorf("%w: team %d", ErrDuplicateTeamIDs, id)
		}
		seen[id] = true
	}
	if openingA, openingB := p.Config.OpeningPair(); openingA != nil {
		if *openingA == *openingB {
			return nil, nil, fmt.Errorf("%w: team %d given twice", ErrInvalidOpeningPair, *openingA)
		}
		if !seen[*openingA] || !seen[*openingB] {
			return nil, nil, fmt.Errorf("%w: teams %d and %d", ErrInvalidOpeningPair, *openingA, *openingB)
		}
	}

	switch p.Config.Format {
	case models.FormatLeagueSingle, models.FormatLeagueHomeAway:
		matches := generateLeague(p)
		return matches, nil, nil
	case models.FormatKnockoutSingle, models.FormatKnockoutHomeAway:
		matches := generateKnockout(p)
		return matches, nil, nil
	case models.FormatGroupKnockoutSingle, models.FormatGroupKnockoutHomeAway:
		return generateGroupStage(p)
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, p.Config.Format)
	}
}

// roundRobinPairs returns every unordered pair of ids, first occurrence as
// the home side.
func roundRobinPairs(ids []int) [][2]int {
	pairs := make([][2]int, 0, len(ids)*(len(ids)-1)/2)
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			pairs = append(pairs, [2]int{ids[i], ids[j]})
		}
	}
	return pairs
}

func newFixture(p ScheduleParams, home, away int, stage string, index int) *models.Match {
	return &models.Match{
		TournamentID: p.TournamentID,
		HomeTeamID:   home,
		AwayTeamID:   away,
		Status:       models.MatchScheduled,
		StageName:    stage,
		Date:         p.BaseDate.Add(time.Duration(index) * 24 * time.Hour),
	}
}

func generateLeague(p ScheduleParams) []*models.Match {
	pairs := roundRobinPairs(p.TeamIDs)
	matches := make([]*models.Match, 0, len(pairs)*2)
	index := 0
	for _, pair := range pairs {
		matches = append(matches, newFixture(p, pair[0], pair[1], models.StageLeague, index))
		index++
	}
	if p.Config.Format.HomeAway() {
		for _, pair := range pairs {
			matches = append(matches, newFixture(p, pair[1], pair[0], models.StageLeague, index))
			index++
		}
	}
	if openingA, openingB := p.Config.OpeningPair(); openingA != nil {
		moveOpeningFixtureFirst(matches, *openingA, *openingB)
	}
	return matches
}

// generateKnockout pairs the shuffled field into round 1 fixtures. An odd
// field leaves the last ordered team without a fixture; that team holds a
// round 1 bye and enters round 2 directly.
func generateKnockout(p ScheduleParams) []*models.Match {
	ordered := make([]int, len(p.TeamIDs))
	copy(ordered, p.TeamIDs)

	openingA, openingB := p.Config.OpeningPair()
	if openingA != nil {
		rest := make([]int, 0, len(ordered)-2)
		for _, id := range ordered {
			if id != *openingA && id != *openingB {
				rest = append(rest, id)
			}
		}
		p.Rand.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
		ordered = append([]int{*openingA, *openingB}, rest...)
	} else {
		p.Rand.Shuffle(len(ordered), func(i, j int) { ordered[i], ordered[j] = ordered[j], ordered[i] })
	}

	round := 1
	matches := make([]*models.Match, 0, len(ordered))
	index := 0
	for i := 0; i+1 < len(ordered); i += 2 {
		m := newFixture(p, ordered[i], ordered[i+1], models.StageRound1, index)
		m.RoundNumber = &round
		m.IsOpeningMatch = i == 0 && openingA != nil
		matches = append(matches, m)
		index++
		if p.Config.Format.HomeAway() {
			leg2 := newFixture(p, ordered[i+1], ordered[i], models.StageRound1, 0)
			leg2.RoundNumber = &round
			leg2.Date = m.Date.Add(returnLegOffset)
			matches = append(matches, leg2)
		}
	}
	return matches
}

func generateGroupStage(p ScheduleParams) ([]*models.Match, map[int]int, error) {
	shuffled := make([]int, len(p.TeamIDs))
	copy(shuffled, p.TeamIDs)
	p.Rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	openingA, openingB := p.Config.OpeningPair()
	distribution, err := DistributeTeams(shuffled, p.Config.NumberOfGroups, openingA, openingB)
	if err != nil {
		return nil, nil, err
	}

	groupIDs := make([]int, 0, len(distribution))
	for g := range distribution {
		groupIDs = append(groupIDs, g)
	}
	sort.Ints(groupIDs)

	assignments := make(map[int]int, len(p.TeamIDs))
	matches := make([]*models.Match, 0)
	index := 0
	for _, g := range groupIDs {
		groupID := g
		members := distribution[g]
		for _, id := range members {
			assignments[id] = groupID
		}

		pairs := roundRobinPairs(members)
		groupMatches := make([]*models.Match, 0, len(pairs)*2)
		for _, pair := range pairs {
			m := newFixture(p, pair[0], pair[1], models.StageGroupStage, index)
			m.GroupID = &groupID
			groupMatches = append(groupMatches, m)
			index++
		}
		if p.Config.Format.HomeAway() {
			for _, pair := range pairs {
				m := newFixture(p, pair[1], pair[0], models.StageGroupStage, index)
				m.GroupID = &groupID
				groupMatches = append(groupMatches, m)
				index++
			}
		}

		if openingA != nil && assignments[*openingA] == groupID {
			moveOpeningFixtureFirst(groupMatches, *openingA, *openingB)
		}
		matches = append(matches, groupMatches...)
	}
	return matches, assignments, nil
}

// moveOpeningFixtureFirst finds the fixture between the two opening teams and
// moves it to the earliest slot, swapping dates with the fixture that was
// originally first. The return leg of a home-away pairing is left in place.
func moveOpeningFixtureFirst(matches []*models.Match, openingA, openingB int) {
	for i, m := range matches {
		sameTeams := (m.HomeTeamID == openingA && m.AwayTeamID == openingB) ||
			(m.HomeTeamID == openingB && m.AwayTeamID == openingA)
		if !sameTeams {
			continue
		}
		m.IsOpeningMatch = true
		if i != 0 {
			matches[0].Date, m.Date = m.Date, matches[0].Date
			matches[0], matches[i] = matches[i], matches[0]
		}
		return
	}
}
