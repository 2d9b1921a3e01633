package brackets

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupline/tournament-engine/models"
)

func scheduleParams(format models.TournamentFormat, teamIDs []int, seed int64) ScheduleParams {
	return ScheduleParams{
		TournamentID: 1,
		Config: models.TournamentConfig{
			Format:         format,
			NumberOfGroups: 2,
			SchedulingMode: models.SchedulingRandom,
		},
		TeamIDs:  teamIDs,
		BaseDate: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
		Rand:     rand.New(rand.NewSource(seed)),
	}
}

func TestGenerateScheduleLeagueSingle(t *testing.T) {
	matches, assignments, err := GenerateSchedule(scheduleParams(models.FormatLeagueSingle, intRange(1, 4), 1))
	require.NoError(t, err)
	require.Nil(t, assignments)

	// C(4,2) pairings, one fixture each.
	require.Len(t, matches, 6)
	for _, m := range matches {
		assert.Equal(t, models.StageLeague, m.StageName)
		assert.Equal(t, models.MatchScheduled, m.Status)
		assert.Zero(t, m.HomeScore)
		assert.Zero(t, m.AwayScore)
		assert.True(t, m.IsGroupStage())
	}
}

func TestGenerateScheduleLeagueHomeAway(t *testing.T) {
	matches, _, err := GenerateSchedule(scheduleParams(models.FormatLeagueHomeAway, intRange(1, 4), 1))
	require.NoError(t, err)
	require.Len(t, matches, 12)

	// Every ordered pair appears exactly once.
	orientations := make(map[[2]int]int)
	for _, m := range matches {
		orientations[[2]int{m.HomeTeamID, m.AwayTeamID}]++
	}
	for pair, count := range orientations {
		assert.Equal(t, 1, count, "pair %v", pair)
	}
}

func TestGenerateScheduleLeagueOpeningFixtureFirst(t *testing.T) {
	p := scheduleParams(models.FormatLeagueSingle, intRange(1, 6), 1)
	a, b := 3, 5
	p.Config.OpeningTeamAID = &a
	p.Config.OpeningTeamBID = &b

	matches, _, err := GenerateSchedule(p)
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	first := matches[0]
	assert.True(t, first.IsOpeningMatch)
	assert.ElementsMatch(t, []int{a, b}, []int{first.HomeTeamID, first.AwayTeamID})
	for _, m := range matches[1:] {
		assert.False(t, m.Date.Before(first.Date), "opening fixture must carry the earliest date")
	}
}

func TestGenerateScheduleKnockoutSingle(t *testing.T) {
	matches, _, err := GenerateSchedule(scheduleParams(models.FormatKnockoutSingle, intRange(1, 8), 7))
	require.NoError(t, err)
	require.Len(t, matches, 4)

	used := make(map[int]bool)
	for _, m := range matches {
		assert.Equal(t, models.StageRound1, m.StageName)
		require.NotNil(t, m.RoundNumber)
		assert.Equal(t, 1, *m.RoundNumber)
		assert.False(t, m.IsGroupStage())
		assert.False(t, used[m.HomeTeamID], "team %d paired twice", m.HomeTeamID)
		assert.False(t, used[m.AwayTeamID], "team %d paired twice", m.AwayTeamID)
		used[m.HomeTeamID] = true
		used[m.AwayTeamID] = true
	}
	assert.Len(t, used, 8)
}

func TestGenerateScheduleKnockoutOddFieldLeavesOneBye(t *testing.T) {
	matches, _, err := GenerateSchedule(scheduleParams(models.FormatKnockoutSingle, intRange(1, 5), 7))
	require.NoError(t, err)
	require.Len(t, matches, 2)

	appearances := make(map[int]int)
	for _, m := range matches {
		appearances[m.HomeTeamID]++
		appearances[m.AwayTeamID]++
	}
	require.Len(t, appearances, 4, "exactly one team sits out round one")
	for id, n := range appearances {
		assert.Equal(t, 1, n, "team %d", id)
	}
}

func TestGenerateScheduleKnockoutHomeAwayLegs(t *testing.T) {
	matches, _, err := GenerateSchedule(scheduleParams(models.FormatKnockoutHomeAway, intRange(1, 4), 7))
	require.NoError(t, err)
	require.Len(t, matches, 4)

	// Legs come in adjacent pairs with mirrored orientation and a fixed gap.
	for i := 0; i < len(matches); i += 2 {
		leg1, leg2 := matches[i], matches[i+1]
		assert.Equal(t, leg1.HomeTeamID, leg2.AwayTeamID)
		assert.Equal(t, leg1.AwayTeamID, leg2.HomeTeamID)
		assert.Equal(t, leg1.Date.Add(returnLegOffset), leg2.Date)
	}
}

func TestGenerateScheduleKnockoutOpeningPairMeetFirst(t *testing.T) {
	p := scheduleParams(models.FormatKnockoutSingle, intRange(1, 8), 7)
	a, b := 2, 6
	p.Config.OpeningTeamAID = &a
	p.Config.OpeningTeamBID = &b

	matches, _, err := GenerateSchedule(p)
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	first := matches[0]
	assert.True(t, first.IsOpeningMatch)
	assert.ElementsMatch(t, []int{a, b}, []int{first.HomeTeamID, first.AwayTeamID})
}

func TestGenerateScheduleGroupKnockout(t *testing.T) {
	matches, assignments, err := GenerateSchedule(scheduleParams(models.FormatGroupKnockoutSingle, intRange(1, 8), 11))
	require.NoError(t, err)

	// Two groups of four, C(4,2) fixtures each.
	require.Len(t, matches, 12)
	require.Len(t, assignments, 8)

	countByGroup := make(map[int]int)
	for _, g := range assignments {
		countByGroup[g]++
	}
	assert.Equal(t, map[int]int{1: 4, 2: 4}, countByGroup)

	for _, m := range matches {
		require.NotNil(t, m.GroupID)
		assert.Equal(t, models.StageGroupStage, m.StageName)
		assert.Equal(t, *m.GroupID, assignments[m.HomeTeamID])
		assert.Equal(t, *m.GroupID, assignments[m.AwayTeamID])
	}
}

func TestGenerateScheduleDeterministicBySeed(t *testing.T) {
	first, firstAssignments, err := GenerateSchedule(scheduleParams(models.FormatGroupKnockoutSingle, intRange(1, 8), 42))
	require.NoError(t, err)
	second, secondAssignments, err := GenerateSchedule(scheduleParams(models.FormatGroupKnockoutSingle, intRange(1, 8), 42))
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].HomeTeamID, second[i].HomeTeamID)
		assert.Equal(t, first[i].AwayTeamID, second[i].AwayTeamID)
		assert.Equal(t, first[i].Date, second[i].Date)
	}
	assert.Equal(t, firstAssignments, secondAssignments)
}

func TestGenerateScheduleRejectsBadInput(t *testing.T) {
	t.Run("unknown format", func(t *testing.T) {
		p := scheduleParams("five_a_side", intRange(1, 4), 1)
		_, _, err := GenerateSchedule(p)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("duplicate teams", func(t *testing.T) {
		p := scheduleParams(models.FormatLeagueSingle, []int{1, 2, 2}, 1)
		_, _, err := GenerateSchedule(p)
		assert.ErrorIs(t, err, ErrDuplicateTeamIDs)
	})

	t.Run("opening team not in field", func(t *testing.T) {
		p := scheduleParams(models.FormatLeagueSingle, intRange(1, 4), 1)
		a, b := 1, 99
		p.Config.OpeningTeamAID = &a
		p.Config.OpeningTeamBID = &b
		_, _, err := GenerateSchedule(p)
		assert.ErrorIs(t, err, ErrInvalidOpeningPair)
	})
}
