package predictive

import (
	"testing"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedDailySales records one delivered order of qty units of item "a" every
// day at noon from May 1 through July 2, 2024.
func seedDailySales(f *fixture, qty int) {
	f.restaurant("r1", "italian")
	f.menuItem("a", "r1", "Margherita", 10)
	for day := date(2024, time.May, 1, 12, 0); day.Before(date(2024, time.July, 3, 0, 0)); day = day.AddDate(0, 0, 1) {
		f.delivered("u1", "r1", day, item("a", qty, 10))
	}
}

func TestForecastForRestaurantWithoutSales(t *testing.T) {
	f := newFixture(t, date(2024, time.July, 3, 10, 0))
	forecasts, err := NewQuantityForecaster(f.repos, f.options()).ForecastForRestaurant(f.ctx, "empty", f.now)
	require.NoError(t, err)
	assert.NotNil(t, forecasts)
	assert.Empty(t, forecasts)
}

func TestForecastForRestaurant(t *testing.T) {
	f := newFixture(t, date(2024, time.July, 3, 10, 0))
	seedDailySales(f, 5)
	forecaster := NewQuantityForecaster(f.repos, f.options())

	forecasts, err := forecaster.ForecastForRestaurant(f.ctx, "r1", f.now)
	require.NoError(t, err)
	require.Len(t, forecasts, 1)

	fc := forecasts[0]
	assert.Equal(t, "a", fc.MenuItemID)
	assert.Equal(t, "Margherita", fc.ItemName)
	assert.Equal(t, date(2024, time.July, 3, 0, 0), fc.ForecastDate)
	assert.Equal(t, 5, fc.PredictedQty)
	assert.InDelta(t, 0.95, fc.Confidence, 1e-9)
	assert.Equal(t, TrendStable, fc.Factors.Trend)
	assert.Equal(t, 1.0, fc.Factors.SeasonalAdjustment)
	assert.Equal(t, time.Wednesday, fc.Factors.DayOfWeek)
}

func TestForecastAppliesWeekendFactor(t *testing.T) {
	f := newFixture(t, date(2024, time.July, 3, 10, 0))
	seedDailySales(f, 5)

	forecasts, err := NewQuantityForecaster(f.repos, f.options()).ForecastForRestaurant(f.ctx, "r1", date(2024, time.July, 5, 0, 0))
	require.NoError(t, err)
	require.Len(t, forecasts, 1)
	assert.Equal(t, 1.2, forecasts[0].Factors.SeasonalAdjustment)
	assert.Equal(t, 6, forecasts[0].PredictedQty)
}

func TestForecastConfidenceBounds(t *testing.T) {
	f := newFixture(t, date(2024, time.July, 3, 10, 0))
	f.restaurant("r1", "italian")
	f.delivered("u1", "r1", date(2024, time.July, 1, 12, 0), item("sparse", 1, 10))

	forecasts, err := NewQuantityForecaster(f.repos, f.options()).ForecastForRestaurant(f.ctx, "r1", f.now)
	require.NoError(t, err)
	require.Len(t, forecasts, 1)
	assert.GreaterOrEqual(t, forecasts[0].Confidence, 0.0)
	assert.LessOrEqual(t, forecasts[0].Confidence, 0.95)
	assert.InDelta(t, 0.6, forecasts[0].Confidence, 1e-9)
	assert.GreaterOrEqual(t, forecasts[0].PredictedQty, 0)
}

func TestForecastAccuracyRoundTrip(t *testing.T) {
	f := newFixture(t, date(2024, time.July, 3, 10, 0))
	seedDailySales(f, 5)
	forecaster := NewQuantityForecaster(f.repos, f.options())

	empty, err := forecaster.EvaluateForecastAccuracy(f.ctx, "r1", 7)
	require.NoError(t, err)
	assert.False(t, empty.HasData)

	_, err = forecaster.ForecastForRestaurant(f.ctx, "r1", f.now)
	require.NoError(t, err)
	require.NoError(t, forecaster.UpdateActualQuantity(f.ctx, "r1", "a", f.now, 4))
	assert.ErrorIs(t, forecaster.UpdateActualQuantity(f.ctx, "r1", "a", f.now, -1), models.ErrInvalidInput)

	// forecasting again must not wipe the recorded actual
	_, err = forecaster.ForecastForRestaurant(f.ctx, "r1", f.now)
	require.NoError(t, err)

	stored, err := forecaster.GetRestaurantForecasts(f.ctx, "r1", f.now, f.now)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.NotNil(t, stored[0].ActualQty)
	assert.Equal(t, 4, *stored[0].ActualQty)

	report, err := forecaster.EvaluateForecastAccuracy(f.ctx, "r1", 7)
	require.NoError(t, err)
	assert.True(t, report.HasData)
	assert.Equal(t, 1, report.Samples)
	assert.Equal(t, 75.0, report.Accuracy)
	assert.Equal(t, 1.0, report.AverageError)
}

func TestAnalyzeTrend(t *testing.T) {
	trend, mult := analyzeTrend([]float64{1, 1, 1, 1, 2, 2, 2, 2})
	assert.Equal(t, TrendIncreasing, trend)
	assert.Equal(t, 1.1, mult)

	trend, mult = analyzeTrend([]float64{4, 4, 4, 4, 1, 1, 1, 1})
	assert.Equal(t, TrendDecreasing, trend)
	assert.Equal(t, 0.9, mult)

	trend, mult = analyzeTrend([]float64{1, 9, 1, 9, 1, 9})
	assert.Equal(t, TrendStable, trend)
	assert.Equal(t, 1.0, mult)
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, isWeekend(time.Friday))
	assert.True(t, isWeekend(time.Saturday))
	assert.False(t, isWeekend(time.Sunday))
	assert.False(t, isWeekend(time.Wednesday))
}

func TestMapeAccuracy(t *testing.T) {
	start, end := date(2024, time.July, 1, 0, 0), date(2024, time.July, 7, 0, 0)

	none := mapeAccuracy(nil, start, end)
	assert.False(t, none.HasData)
	assert.Equal(t, 0.0, none.Accuracy)

	perfectZero := mapeAccuracy([]accuracySample{{predicted: 0, actual: 0}}, start, end)
	assert.True(t, perfectZero.HasData)
	assert.Equal(t, 100.0, perfectZero.Accuracy)

	phantom := mapeAccuracy([]accuracySample{{predicted: 5, actual: 0}}, start, end)
	assert.Equal(t, 0.0, phantom.Accuracy)
	assert.Equal(t, 5.0, phantom.AverageError)

	overshoot := mapeAccuracy([]accuracySample{{predicted: 30, actual: 10}}, start, end)
	assert.Equal(t, 0.0, overshoot.Accuracy)
}

func TestRatioAccuracy(t *testing.T) {
	assert.Equal(t, 100.0, ratioAccuracy(0, 0))
	assert.Equal(t, 0.0, ratioAccuracy(0, 3))
	assert.Equal(t, 90.0, ratioAccuracy(100, 110))
	assert.Equal(t, 0.0, ratioAccuracy(10, 40))
}
