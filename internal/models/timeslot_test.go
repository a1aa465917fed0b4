package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSlotForHour(t *testing.T) {
	cases := map[int]TimeSlot{
		0: SlotEvening, 5: SlotEvening,
		6: SlotMorning, 10: SlotMorning,
		11: SlotLunch, 14: SlotLunch,
		15: SlotAfternoon, 17: SlotAfternoon,
		18: SlotEvening, 23: SlotEvening,
	}
	for hour, want := range cases {
		assert.Equal(t, want, TimeSlotForHour(hour), "hour %d", hour)
	}
}

func TestTimeSlotWindow(t *testing.T) {
	assert.Equal(t, SlotWindow{Start: 12, End: 13}, SlotLunch.Window())
	assert.Equal(t, SlotWindow{Start: 12, End: 13}, TimeSlot("brunch").Window())

	_, err := ParseTimeSlot("brunch")
	assert.Error(t, err)
	slot, err := ParseTimeSlot("evening")
	require.NoError(t, err)
	assert.Equal(t, SlotEvening, slot)
}

func TestHalfHourSlots(t *testing.T) {
	assert.Equal(t, "12:00-12:30", HalfHourSlot(time.Date(2024, 7, 3, 12, 29, 59, 0, time.UTC)))
	assert.Equal(t, "12:30-13:00", HalfHourSlot(time.Date(2024, 7, 3, 12, 30, 0, 0, time.UTC)))

	slots := DeliverySlots(6, 23)
	require.Len(t, slots, 34)
	assert.Equal(t, "06:00-06:30", slots[0])
	assert.Equal(t, "22:30-23:00", slots[len(slots)-1])
}

func TestPatternMatches(t *testing.T) {
	sunday := time.Sunday
	lunch := SlotLunch
	weekly := OrderPattern{IsActive: true, DayOfWeek: &sunday, TimePreference: &lunch}
	assert.True(t, weekly.Matches(time.Sunday, SlotLunch))
	assert.False(t, weekly.Matches(time.Sunday, SlotEvening))
	assert.False(t, weekly.Matches(time.Monday, SlotLunch))

	daily := OrderPattern{IsActive: true, TimePreference: &lunch}
	assert.True(t, daily.Matches(time.Tuesday, SlotLunch))

	pair := OrderPattern{IsActive: true}
	assert.False(t, pair.Matches(time.Sunday, SlotLunch))

	weekly.IsActive = false
	assert.False(t, weekly.Matches(time.Sunday, SlotLunch))
}

func TestSuggestionLive(t *testing.T) {
	now := time.Date(2024, 7, 3, 12, 0, 0, 0, time.UTC)
	s := AutoOrderSuggestion{Status: SuggestionPending, ExpiresAt: now.Add(time.Minute)}
	assert.True(t, s.Live(now))
	s.ExpiresAt = now
	assert.False(t, s.Live(now))
	s.ExpiresAt = now.Add(time.Hour)
	s.Status = SuggestionAccepted
	assert.False(t, s.Live(now))

	assert.Equal(t, 25.0, ItemsTotal([]SuggestedItem{{Price: 10, Quantity: 2}, {Price: 5, Quantity: 1}}))
	assert.True(t, SuggestionModification{}.Empty())
	assert.False(t, SuggestionModification{Remove: []string{"a"}}.Empty())
}
