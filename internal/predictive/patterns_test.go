package predictive

import (
	"testing"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverPatternsNeedsMinimumOrders(t *testing.T) {
	f := newFixture(t, date(2024, time.June, 30, 11, 0))
	f.restaurant("r1", "italian")
	f.delivered("u1", "r1", date(2024, time.June, 2, 12, 30), item("a", 1, 10))
	f.delivered("u1", "r1", date(2024, time.June, 9, 12, 30), item("a", 1, 10))

	recognizer := NewPatternRecognizer(f.repos, f.options())
	patterns, err := recognizer.DiscoverPatterns(f.ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, patterns)
	assert.Empty(t, patterns)

	stored, err := recognizer.GetUserPatterns(f.ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestDiscoverPatternsSundayLunch(t *testing.T) {
	f := newFixture(t, date(2024, time.June, 30, 11, 0))
	seedSundayLunches(f, "u1")

	recognizer := NewPatternRecognizer(f.repos, f.options())
	patterns, err := recognizer.DiscoverPatterns(f.ctx, "u1")
	require.NoError(t, err)
	require.Len(t, patterns, 4)

	var restaurantWeekly, itemWeekly, daily, pair *models.OrderPattern
	for i := range patterns {
		p := &patterns[i]
		assert.Equal(t, "u1", p.UserID)
		assert.True(t, p.IsActive)
		assert.NotEmpty(t, p.ID)
		switch {
		case p.PatternType == models.PatternDaily:
			daily = p
		case p.RestaurantID != nil:
			restaurantWeekly = p
		case p.DayOfWeek != nil:
			itemWeekly = p
		default:
			pair = p
		}
	}

	require.NotNil(t, restaurantWeekly)
	assert.Equal(t, time.Sunday, *restaurantWeekly.DayOfWeek)
	assert.Equal(t, "r1", *restaurantWeekly.RestaurantID)
	assert.Equal(t, models.SlotLunch, *restaurantWeekly.TimePreference)
	assert.Equal(t, []string{"a", "b"}, restaurantWeekly.MenuItemIDs)
	assert.Equal(t, 4, restaurantWeekly.Frequency)
	assert.Equal(t, 1.0, restaurantWeekly.Confidence)

	require.NotNil(t, itemWeekly)
	assert.Equal(t, []string{"a", "b"}, itemWeekly.MenuItemIDs)
	assert.LessOrEqual(t, itemWeekly.Confidence, 1.0)

	require.NotNil(t, daily)
	assert.Equal(t, models.SlotLunch, *daily.TimePreference)
	assert.Nil(t, daily.DayOfWeek)
	assert.Equal(t, 4, daily.Frequency)

	require.NotNil(t, pair)
	assert.Equal(t, []string{"a", "b"}, pair.MenuItemIDs)
	assert.Nil(t, pair.TimePreference)
	assert.Equal(t, 1.0, pair.Confidence)
}

func TestDiscoverPatternsReplacesActiveSet(t *testing.T) {
	f := newFixture(t, date(2024, time.June, 30, 11, 0))
	seedSundayLunches(f, "u1")
	recognizer := NewPatternRecognizer(f.repos, f.options())

	_, err := recognizer.DiscoverPatterns(f.ctx, "u1")
	require.NoError(t, err)
	second, err := recognizer.DiscoverPatterns(f.ctx, "u1")
	require.NoError(t, err)

	stored, err := recognizer.GetUserPatterns(f.ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, stored, len(second))
}

func TestMatchPatterns(t *testing.T) {
	f := newFixture(t, date(2024, time.June, 30, 11, 0))
	seedSundayLunches(f, "u1")
	recognizer := NewPatternRecognizer(f.repos, f.options())
	_, err := recognizer.DiscoverPatterns(f.ctx, "u1")
	require.NoError(t, err)

	// the unanchored pair pattern never matches a moment
	matches, err := recognizer.CheckPatternMatch(f.ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, matches, 3)

	matches, err = recognizer.MatchPatterns(f.ctx, "u1", date(2024, time.July, 1, 12, 0))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, models.PatternDaily, matches[0].PatternType)

	matches, err = recognizer.MatchPatterns(f.ctx, "u1", date(2024, time.June, 30, 20, 0))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestTriggerPattern(t *testing.T) {
	f := newFixture(t, date(2024, time.June, 30, 11, 0))
	seedSundayLunches(f, "u1")
	recognizer := NewPatternRecognizer(f.repos, f.options())
	patterns, err := recognizer.DiscoverPatterns(f.ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, recognizer.TriggerPattern(f.ctx, patterns[0].ID))
	stored, err := recognizer.GetUserPatterns(f.ctx, "u1")
	require.NoError(t, err)
	for _, p := range stored {
		if p.ID == patterns[0].ID {
			require.NotNil(t, p.LastTriggered)
			assert.Equal(t, f.now, *p.LastTriggered)
		}
	}

	assert.ErrorIs(t, recognizer.TriggerPattern(f.ctx, "missing"), models.ErrNotFound)
}

func TestPairPatternsAreCapped(t *testing.T) {
	f := newFixture(t, date(2024, time.June, 30, 11, 0))
	f.restaurant("r1", "italian")
	items := []models.OrderItem{
		item("a", 1, 1), item("b", 1, 1), item("c", 1, 1), item("d", 1, 1), item("e", 1, 1),
	}
	for _, day := range []int{3, 4, 5} {
		f.delivered("u1", "r1", date(2024, time.June, day, 9, 0), items...)
	}

	recognizer := NewPatternRecognizer(f.repos, f.options())
	patterns, err := recognizer.DiscoverPatterns(f.ctx, "u1")
	require.NoError(t, err)

	pairs := 0
	for _, p := range patterns {
		if p.DayOfWeek == nil && p.TimePreference == nil {
			pairs++
			assert.Len(t, p.MenuItemIDs, 2)
		}
	}
	assert.Equal(t, 5, pairs)
}
