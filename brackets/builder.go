package brackets

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/cupline/tournament-engine/models"
)

// maxBracketSize caps the knockout bracket.
const maxBracketSize = 64

var ErrNoFinishedLegs = errors.New("fixture pair has no finished legs")

// Pairing is one knockout fixture to be created.
type Pairing struct {
	HomeTeamID int
	AwayTeamID int
	IsOpening  bool
}

// NextPowerOfTwo returns the bracket size for n qualified teams, capped at 64.
func NextPowerOfTwo(n int) int {
	for _, size := range []int{2, 4, 8, 16, 32} {
		if n <= size {
			return size
		}
	}
	return maxBracketSize
}

// DetermineQualifiedTeams picks the knockout qualifiers from ranked group
// standings. Groups of two or fewer teams send their winner; larger groups
// send their top two. The third-place teams of larger groups are then pooled,
// ranked across groups, and used to fill the bracket up to the next power of
// two. The returned rows keep their group standing order.
func DetermineQualifiedTeams(standings []models.TeamStanding) []models.TeamStanding {
	groupSizes := make(map[int]int)
	for _, row := range standings {
		groupSizes[row.GroupID]++
	}

	qualified := make([]models.TeamStanding, 0, len(standings))
	thirdPlacePool := make([]models.TeamStanding, 0, len(groupSizes))
	for _, row := range standings {
		size := groupSizes[row.GroupID]
		switch {
		case size <= 2 && row.Rank == 1:
			qualified = append(qualified, row)
		case size > 2 && row.Rank <= 2:
			qualified = append(qualified, row)
		case size > 2 && row.Rank == 3:
			thirdPlacePool = append(thirdPlacePool, row)
		}
	}

	target := NextPowerOfTwo(len(qualified))
	for _, third := range RankStandings(thirdPlacePool) {
		if len(qualified) >= target {
			break
		}
		qualified = append(qualified, third)
	}
	return qualified
}

// CreatePairings builds the knockout pairings for the qualified teams. When
// both opening teams are among the qualifiers they are paired directly and
// returned separately. The remainder is shuffled and paired greedily,
// preferring a randomly chosen opponent from another group; when only
// same-group opponents remain the pairing is forced. An odd field leaves one
// team unpaired; that team is returned as the bye and advances to the next
// round without playing.
func CreatePairings(qualified []models.TeamStanding, openingHome, openingAway *int, rng *rand.Rand) ([]Pairing, *Pairing, *models.TeamStanding) {
	pool := make([]models.TeamStanding, len(qualified))
	copy(pool, qualified)

	var opening *Pairing
	if openingHome != nil && openingAway != nil {
		homeIdx, awayIdx := -1, -1
		for i, row := range pool {
			switch row.TeamID {
			case *openingHome:
				homeIdx = i
			case *openingAway:
				awayIdx = i
			}
		}
		if homeIdx >= 0 && awayIdx >= 0 {
			opening = &Pairing{HomeTeamID: *openingHome, AwayTeamID: *openingAway, IsOpening: true}
			remaining := make([]models.TeamStanding, 0, len(pool)-2)
			for i, row := range pool {
				if i != homeIdx && i != awayIdx {
					remaining = append(remaining, row)
				}
			}
			pool = remaining
		}
	}

	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	pairings := make([]Pairing, 0, len(pool)/2+1)
	if opening != nil {
		pairings = append(pairings, *opening)
	}
	for len(pool) >= 2 {
		home := pool[0]
		pool = pool[1:]

		crossGroup := make([]int, 0, len(pool))
		for i, candidate := range pool {
			if candidate.GroupID != home.GroupID {
				crossGroup = append(crossGroup, i)
			}
		}
		var awayIdx int
		if len(crossGroup) > 0 {
			awayIdx = crossGroup[rng.Intn(len(crossGroup))]
		} else {
			// Forced same-group rematch, unavoidable when too few
			// groups remain in the pool.
			awayIdx = 0
		}
		away := pool[awayIdx]
		pool = append(pool[:awayIdx], pool[awayIdx+1:]...)
		pairings = append(pairings, Pairing{HomeTeamID: home.TeamID, AwayTeamID: away.TeamID})
	}

	var bye *models.TeamStanding
	if len(pool) == 1 {
		bye = &pool[0]
	}
	return pairings, opening, bye
}

// DetermineRoundWinners resolves one winner per fixture pair of a finished
// knockout round. Two matches between the same teams with home and away
// reversed form a double-leg pair resolved on aggregate score; an aggregate
// tie goes to the home team of the first leg. A single leg is resolved on its
// score, ties going to the home team. Winners are returned in the order the
// pairs first appear in the input.
func DetermineRoundWinners(roundMatches []*models.Match) ([]int, error) {
	type pairKey struct{ low, high int }
	keyOf := func(m *models.Match) pairKey {
		if m.HomeTeamID < m.AwayTeamID {
			return pairKey{m.HomeTeamID, m.AwayTeamID}
		}
		return pairKey{m.AwayTeamID, m.HomeTeamID}
	}

	order := make([]pairKey, 0, len(roundMatches))
	legs := make(map[pairKey][]*models.Match, len(roundMatches))
	for _, m := range roundMatches {
		if m == nil || m.Status != models.MatchFinished {
			continue
		}
		key := keyOf(m)
		if _, ok := legs[key]; !ok {
			order = append(order, key)
		}
		legs[key] = append(legs[key], m)
	}
	if len(order) == 0 {
		return nil, ErrNoFinishedLegs
	}

	winners := make([]int, 0, len(order))
	for _, key := range order {
		pair := legs[key]
		sort.SliceStable(pair, func(i, j int) bool { return pair[i].Date.Before(pair[j].Date) })

		if len(pair) > 2 {
			return nil, fmt.Errorf("teams %d and %d have %d legs in one round, at most 2 expected", key.low, key.high, len(pair))
		}

		firstLeg := pair[0]
		aggregate := map[int]int{
			firstLeg.HomeTeamID: 0,
			firstLeg.AwayTeamID: 0,
		}
		for _, leg := range pair {
			aggregate[leg.HomeTeamID] += leg.HomeScore
			aggregate[leg.AwayTeamID] += leg.AwayScore
		}

		winner := firstLeg.HomeTeamID
		if aggregate[firstLeg.AwayTeamID] > aggregate[firstLeg.HomeTeamID] {
			winner = firstLeg.AwayTeamID
		}
		winners = append(winners, winner)
	}
	return winners, nil
}
