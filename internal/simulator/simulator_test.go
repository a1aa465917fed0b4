package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/chrisdamba/foodpredict/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *models.Config {
	return &models.Config{
		Timezone:       "UTC",
		AnalyzeWorkers: 2,
		Seed: models.SeedConfig{
			Seed:             11,
			Users:            10,
			Restaurants:      3,
			HistoryDays:      56,
			OrdersPerUserDay: 0.3,
			CityLat:          51.5074,
			CityLon:          -0.1278,
			UrbanRadius:      5,
		},
		Predictive: models.DefaultPredictiveConfig(),
	}
}

type dayCounter struct{ n int }

func (c *dayCounter) Add(n int) error { c.n += n; return nil }

func TestRunReplaysAWeek(t *testing.T) {
	store := memory.NewStore()
	sim, err := NewSimulator(testConfig(), store.Repositories(), nil, nil)
	require.NoError(t, err)

	start := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	days := &dayCounter{}
	summary, err := sim.Run(context.Background(), start, 7, days)
	require.NoError(t, err)

	assert.Equal(t, 7, days.n)
	assert.Equal(t, time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC), sim.CurrentTime)
	assert.Positive(t, summary.EventsProcessed)
	assert.Zero(t, summary.FailedEvents)
	assert.Positive(t, summary.OrdersPlaced)
	assert.Positive(t, summary.PatternsDiscovered)
	assert.Positive(t, summary.ForecastsCreated)
	assert.Equal(t, 7*len(models.DeliverySlots(6, 23)), summary.SchedulesPredicted)
	assert.Positive(t, summary.SuggestionsCreated)
	assert.Equal(t, summary.SuggestionsCreated, summary.Suggestions.Total)

	// 2024-07-01 is a Monday, so reports are generated once.
	assert.Equal(t, 3, summary.ReportsGenerated)
	require.NotNil(t, summary.Negotiations)
	assert.Equal(t, 3, summary.Negotiations.TotalReports)
	assert.Zero(t, summary.Negotiations.ByStatus[models.ReportSent])

	schedule, err := store.Repositories().Schedules.Range(context.Background(), models.DateOf(start), models.DateOf(start).AddDate(0, 0, 1))
	require.NoError(t, err)
	require.NotEmpty(t, schedule)
	withActual := 0
	for _, s := range schedule {
		if s.ActualOrders != nil {
			withActual++
		}
	}
	assert.Positive(t, withActual)
}

func TestRunRejectsNonPositiveDays(t *testing.T) {
	sim, err := NewSimulator(testConfig(), memory.NewStore().Repositories(), nil, nil)
	require.NoError(t, err)

	_, err = sim.Run(context.Background(), time.Now(), 0, nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	sim, err := NewSimulator(testConfig(), memory.NewStore().Repositories(), nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sim.Run(ctx, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), 1, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDispatchRoutesUsesRecentOrders(t *testing.T) {
	sim, err := NewSimulator(testConfig(), memory.NewStore().Repositories(), nil, nil)
	require.NoError(t, err)

	sim.CurrentTime = time.Date(2024, 7, 1, 12, 30, 0, 0, time.UTC)
	loc := models.Location{Lat: 51.5, Lon: -0.12}
	sim.recent = []models.Order{
		{ID: "old", CreatedAt: sim.CurrentTime.Add(-2 * time.Hour), DeliveryLocation: &loc},
		{ID: "a", CreatedAt: sim.CurrentTime.Add(-20 * time.Minute), DeliveryLocation: &loc},
		{ID: "b", CreatedAt: sim.CurrentTime.Add(-10 * time.Minute), DeliveryLocation: &loc},
		{ID: "later", CreatedAt: sim.CurrentTime.Add(time.Minute), DeliveryLocation: &loc},
	}

	require.NoError(t, sim.handleDispatchRoutes())
	assert.Equal(t, 1, sim.summary.RoutesPlanned)
	require.Len(t, sim.recent, 1)
	assert.Equal(t, "later", sim.recent[0].ID)
}
