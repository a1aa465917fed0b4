package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestionTransitions(t *testing.T) {
	for _, next := range []SuggestionStatus{SuggestionAccepted, SuggestionModified, SuggestionRejected, SuggestionExpired} {
		assert.True(t, SuggestionPending.CanTransitionTo(next), next)
	}
	assert.False(t, SuggestionPending.CanTransitionTo(SuggestionPending))
	for _, terminal := range []SuggestionStatus{SuggestionAccepted, SuggestionModified, SuggestionRejected, SuggestionExpired} {
		assert.True(t, terminal.Terminal(), terminal)
		assert.False(t, terminal.CanTransitionTo(SuggestionAccepted), terminal)
	}
	assert.False(t, SuggestionPending.Terminal())
}

func TestReportTransitions(t *testing.T) {
	assert.True(t, ReportGenerated.CanTransitionTo(ReportSent))
	assert.False(t, ReportGenerated.CanTransitionTo(ReportAgreed))
	assert.True(t, ReportSent.CanTransitionTo(ReportSent))
	assert.True(t, ReportSent.CanTransitionTo(ReportNegotiating))
	assert.True(t, ReportNegotiating.CanTransitionTo(ReportNegotiating))
	assert.True(t, ReportNegotiating.CanTransitionTo(ReportAgreed))
	assert.False(t, ReportNegotiating.CanTransitionTo(ReportSent))
	assert.True(t, ReportAgreed.Terminal())
	assert.True(t, ReportRejected.Terminal())
	assert.False(t, ReportRejected.CanTransitionTo(ReportSent))
}

func TestCapacityFor(t *testing.T) {
	cases := map[int]CapacityStatus{
		0: CapacityLow, 4: CapacityLow,
		5: CapacityNormal, 9: CapacityNormal,
		10: CapacityHigh, 19: CapacityHigh,
		20: CapacityCritical, 200: CapacityCritical,
	}
	for n, want := range cases {
		assert.Equal(t, want, CapacityFor(n), "orders %d", n)
	}
}

func TestReportPeriodDays(t *testing.T) {
	assert.Equal(t, 7, PeriodWeekly.Days())
	assert.Equal(t, 30, PeriodMonthly.Days())
	assert.Equal(t, 0, ReportPeriod("daily").Days())
}

func TestTransitionErrorMatchesInvalidState(t *testing.T) {
	var err error = &TransitionError{Entity: "report", ID: "r1", From: "AGREED", To: "SENT"}
	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.EqualError(t, err, "report r1: cannot move from AGREED to SENT")
	assert.ErrorIs(t, NotFound("report", "r1"), ErrNotFound)
}

func TestReportStatusValid(t *testing.T) {
	assert.True(t, ReportNegotiating.Valid())
	assert.False(t, ReportStatus("sent").Valid())
	assert.False(t, ReportStatus("").Valid())
}
