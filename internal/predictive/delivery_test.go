package predictive

import (
	"testing"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lunchSlot = "12:00-12:30"

// seedWednesdayRush records 25 delivered orders at 12:10 on each of the four
// Wednesdays before July 3, 2024.
func seedWednesdayRush(f *fixture) {
	f.restaurant("r1", "italian")
	for _, day := range []int{5, 12, 19, 26} {
		for i := 0; i < 25; i++ {
			f.delivered("u1", "r1", date(2024, time.June, day, 12, 10), item("a", 1, 10))
		}
	}
}

func TestPredictDeliverySchedule(t *testing.T) {
	f := newFixture(t, date(2024, time.July, 3, 8, 0))
	seedWednesdayRush(f)
	f.order("u1", "r1", models.OrderStatusCancelled, date(2024, time.June, 26, 12, 10), item("a", 1, 10))
	scheduler := NewDeliveryScheduler(f.repos, f.options())

	schedule, err := scheduler.PredictDeliverySchedule(f.ctx, f.now)
	require.NoError(t, err)
	require.Len(t, schedule, 34)
	assert.Equal(t, "06:00-06:30", schedule[0].TimeSlot)
	assert.Equal(t, "22:30-23:00", schedule[33].TimeSlot)

	var peak models.DeliverySchedule
	for _, s := range schedule {
		if s.TimeSlot == lunchSlot {
			peak = s
			continue
		}
		assert.Equal(t, 0, s.PredictedOrders, s.TimeSlot)
		assert.Equal(t, models.CapacityLow, s.CapacityStatus)
		assert.Equal(t, 0, s.RecommendedDrivers)
	}
	assert.Equal(t, 15, peak.PredictedOrders)
	assert.True(t, peak.IsPeakTime)
	assert.Equal(t, models.CapacityHigh, peak.CapacityStatus)
	assert.Equal(t, 6, peak.RecommendedDrivers)
	assert.Equal(t, []string{models.EventSchedulePredicted}, f.events.names())

	peaks, err := scheduler.GetPeakTimes(f.ctx, f.now)
	require.NoError(t, err)
	require.Len(t, peaks, 1)
	assert.Equal(t, lunchSlot, peaks[0].TimeSlot)

	rec, err := scheduler.GetCapacityRecommendations(f.ctx, f.now)
	require.NoError(t, err)
	assert.Equal(t, 6, rec.TotalDriversNeeded)
	assert.Equal(t, []string{lunchSlot}, rec.PeakHours)
	assert.Len(t, rec.LowActivityHours, 33)
	assert.Len(t, rec.StaffingPlan, 34)
}

func TestPredictDeliveryScheduleIsIdempotent(t *testing.T) {
	f := newFixture(t, date(2024, time.July, 3, 8, 0))
	seedWednesdayRush(f)
	scheduler := NewDeliveryScheduler(f.repos, f.options())

	_, err := scheduler.PredictDeliverySchedule(f.ctx, f.now)
	require.NoError(t, err)
	_, err = scheduler.PredictDeliverySchedule(f.ctx, f.now)
	require.NoError(t, err)

	day, err := scheduler.GetDaySchedule(f.ctx, f.now)
	require.NoError(t, err)
	assert.Len(t, day, 34)
}

func TestDeliveryScheduleAccuracy(t *testing.T) {
	f := newFixture(t, date(2024, time.July, 3, 8, 0))
	seedWednesdayRush(f)
	scheduler := NewDeliveryScheduler(f.repos, f.options())
	_, err := scheduler.PredictDeliverySchedule(f.ctx, f.now)
	require.NoError(t, err)

	empty, err := scheduler.EvaluateAccuracy(f.ctx, f.now, f.now)
	require.NoError(t, err)
	assert.False(t, empty.HasData)

	require.NoError(t, scheduler.UpdateActualOrders(f.ctx, f.now, lunchSlot, 12))
	assert.ErrorIs(t, scheduler.UpdateActualOrders(f.ctx, f.now, lunchSlot, -2), models.ErrInvalidInput)
	assert.ErrorIs(t, scheduler.UpdateActualOrders(f.ctx, f.now, "03:00-03:30", 1), models.ErrNotFound)

	report, err := scheduler.EvaluateAccuracy(f.ctx, f.now, f.now)
	require.NoError(t, err)
	assert.True(t, report.HasData)
	assert.Equal(t, 1, report.Samples)
	assert.Equal(t, 75.0, report.Accuracy)
	assert.Equal(t, 3.0, report.AverageError)
}

func TestRecommendedDrivers(t *testing.T) {
	f := newFixture(t, date(2024, time.July, 3, 8, 0))
	scheduler := NewDeliveryScheduler(f.repos, f.options())

	cases := map[int]int{0: 0, 1: 1, 5: 2, 10: 4, 15: 6, 16: 7}
	for predicted, want := range cases {
		assert.Equal(t, want, scheduler.recommendedDrivers(predicted), "predicted %d", predicted)
	}
}

func TestEmptyScheduleHasNoPeaks(t *testing.T) {
	f := newFixture(t, date(2024, time.July, 3, 8, 0))
	scheduler := NewDeliveryScheduler(f.repos, f.options())

	schedule, err := scheduler.PredictDeliverySchedule(f.ctx, f.now)
	require.NoError(t, err)
	for _, s := range schedule {
		assert.Equal(t, 0, s.PredictedOrders)
	}
	peaks, err := scheduler.GetPeakTimes(f.ctx, f.now)
	require.NoError(t, err)
	assert.NotNil(t, peaks)
	assert.Empty(t, peaks)
}
