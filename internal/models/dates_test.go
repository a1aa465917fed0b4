package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTargetDate(t *testing.T) {
	now := time.Date(2024, 7, 3, 22, 15, 0, 0, time.UTC)
	today := time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC)

	got, err := ParseTargetDate("", DatePolicyReject, now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, today, got)

	got, err = ParseTargetDate("2024-07-05", DatePolicyReject, now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseTargetDate("2024-07-05T18:30:00Z", DatePolicyReject, now, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseTargetDate("next tuesday", DatePolicyReject, now, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidDate)

	got, err = ParseTargetDate("next tuesday", DatePolicyUseToday, now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, today, got)
}

func TestParseTargetDateUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	now := time.Date(2024, 7, 3, 20, 0, 0, 0, time.UTC)

	got, err := ParseTargetDate("", DatePolicyReject, now, tokyo)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Day())
	assert.Equal(t, tokyo, got.Location())
}
