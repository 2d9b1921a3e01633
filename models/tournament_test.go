package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateStatusTransition(t *testing.T) {
	allowed := []struct{ from, to TournamentStatus }{
		{StatusDraft, StatusRegistrationOpen},
		{StatusRegistrationOpen, StatusRegistrationClosed},
		{StatusRegistrationClosed, StatusWaitingForOpeningMatch},
		{StatusRegistrationClosed, StatusActive},
		{StatusWaitingForOpeningMatch, StatusActive},
		{StatusActive, StatusManualQualificationPending},
		{StatusManualQualificationPending, StatusQualificationConfirmed},
		{StatusQualificationConfirmed, StatusActive},
		{StatusActive, StatusCompleted},
		{StatusDraft, StatusCancelled},
		{StatusActive, StatusCancelled},
	}
	for _, tc := range allowed {
		assert.NoError(t, ValidateStatusTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	rejected := []struct{ from, to TournamentStatus }{
		{StatusDraft, StatusActive},
		{StatusRegistrationOpen, StatusActive},
		{StatusActive, StatusRegistrationOpen},
		{StatusActive, StatusQualificationConfirmed},
		{StatusManualQualificationPending, StatusCompleted},
		{StatusCompleted, StatusActive},
		{StatusCompleted, StatusCancelled},
		{StatusCancelled, StatusDraft},
	}
	for _, tc := range rejected {
		assert.Error(t, ValidateStatusTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestValidateStatusTransitionSameStatusIsNoOp(t *testing.T) {
	for status := range statusTransitions {
		assert.NoError(t, ValidateStatusTransition(status, status), "%s", status)
	}
}

func TestTournamentFormatHelpers(t *testing.T) {
	assert.True(t, FormatGroupKnockoutSingle.UsesGroups())
	assert.True(t, FormatGroupKnockoutHomeAway.UsesGroups())
	assert.False(t, FormatKnockoutSingle.UsesGroups())

	assert.True(t, FormatLeagueSingle.IsLeagueOnly())
	assert.True(t, FormatLeagueHomeAway.IsLeagueOnly())
	assert.False(t, FormatGroupKnockoutSingle.IsLeagueOnly())

	assert.True(t, FormatLeagueHomeAway.HomeAway())
	assert.True(t, FormatKnockoutHomeAway.HomeAway())
	assert.True(t, FormatGroupKnockoutHomeAway.HomeAway())
	assert.False(t, FormatLeagueSingle.HomeAway())
}

func TestConfigOpeningPair(t *testing.T) {
	a, b := 4, 9

	var cfg TournamentConfig
	gotA, gotB := cfg.OpeningPair()
	assert.Nil(t, gotA)
	assert.Nil(t, gotB)

	cfg.OpeningTeamAID = &a
	gotA, gotB = cfg.OpeningPair()
	assert.Nil(t, gotA, "half-set pair is treated as unset")
	assert.Nil(t, gotB)

	cfg.OpeningTeamBID = &b
	gotA, gotB = cfg.OpeningPair()
	assert.Equal(t, &a, gotA)
	assert.Equal(t, &b, gotB)
}
