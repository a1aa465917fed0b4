package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/chrisdamba/foodpredict/internal/repositories"
	"github.com/lucsky/cuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestRepositories connects to TEST_POSTGRES_DSN, a PostGIS-enabled database.
func openTestRepositories(t *testing.T) repositories.Repositories {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, models.DatabaseConfig{DSN: dsn, MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))
	return NewRepositories(pool, time.UTC)
}

func TestOrderRoundTrip(t *testing.T) {
	ctx := context.Background()
	repos := openTestRepositories(t)

	restaurant := &models.Restaurant{ID: cuid.New(), Name: "Trattoria", CuisineType: "italian", Location: models.Location{Lat: 51.5, Lon: -0.12}}
	require.NoError(t, repos.Restaurants.BulkCreate(ctx, []*models.Restaurant{restaurant}))
	item := &models.MenuItem{ID: cuid.New(), RestaurantID: restaurant.ID, Name: "Pizza", Price: 12.5, IsAvailable: true}
	require.NoError(t, repos.MenuItems.BulkCreate(ctx, []*models.MenuItem{item}))

	userID := cuid.New()
	created := time.Date(2024, 6, 2, 12, 30, 0, 0, time.UTC)
	order := models.Order{
		ID:               cuid.New(),
		UserID:           userID,
		RestaurantID:     restaurant.ID,
		Status:           models.OrderStatusDelivered,
		TotalAmount:      25,
		CreatedAt:        created,
		DeliveryLocation: &models.Location{Lat: 51.51, Lon: -0.13},
		Items:            []models.OrderItem{{MenuItemID: item.ID, Quantity: 2, Price: 12.5}},
	}
	noLocation := order
	noLocation.ID = cuid.New()
	noLocation.DeliveryLocation = nil
	noLocation.CreatedAt = created.Add(time.Hour)
	require.NoError(t, repos.Orders.BulkCreate(ctx, []models.Order{order, noLocation}))

	orders, err := repos.Orders.DeliveredByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, order.ID, orders[0].ID)
	require.NotNil(t, orders[0].DeliveryLocation)
	assert.InDelta(t, 51.51, orders[0].DeliveryLocation.Lat, 1e-9)
	assert.InDelta(t, -0.13, orders[0].DeliveryLocation.Lon, 1e-9)
	assert.Nil(t, orders[1].DeliveryLocation)
	require.NotNil(t, orders[0].Restaurant)
	assert.Equal(t, "italian", orders[0].Restaurant.CuisineType)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, 2, orders[0].Items[0].Quantity)

	sales, err := repos.Orders.ItemSales(ctx, restaurant.ID, created, created.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "Pizza", sales[0].ItemName)

	metrics, err := repos.Orders.RestaurantMetrics(ctx, restaurant.ID, created, created.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.OrderMetrics{TotalOrders: 2, TotalRevenue: 50}, metrics)
}

func TestSuggestionConstraints(t *testing.T) {
	ctx := context.Background()
	repos := openTestRepositories(t)
	now := time.Now().UTC().Truncate(time.Microsecond)
	userID := cuid.New()

	first := &models.AutoOrderSuggestion{
		ID:             cuid.New(),
		UserID:         userID,
		SuggestedItems: []models.SuggestedItem{{MenuItemID: "m1", Quantity: 1, Price: 9}},
		TotalAmount:    9,
		SuggestedTime:  now.Add(time.Hour),
		Reason:         "usual lunch",
		Confidence:     0.8,
		Status:         models.SuggestionPending,
		ExpiresAt:      now,
		CreatedAt:      now,
	}
	require.NoError(t, repos.Suggestions.Create(ctx, first))

	second := *first
	second.ID = cuid.New()
	assert.ErrorIs(t, repos.Suggestions.Create(ctx, &second), models.ErrPendingExists)

	n, err := repos.Suggestions.ExpireBefore(ctx, userID, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	first.Status = models.SuggestionAccepted
	assert.ErrorIs(t, repos.Suggestions.Update(ctx, first, models.SuggestionPending), models.ErrInvalidState)

	require.NoError(t, repos.Suggestions.Create(ctx, &second))
	expired := models.SuggestionExpired
	list, err := repos.Suggestions.List(ctx, userID, &expired, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, first.SuggestedItems, list[0].SuggestedItems)

	counts, err := repos.Suggestions.CountByStatus(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, map[models.SuggestionStatus]int{models.SuggestionExpired: 1, models.SuggestionPending: 1}, counts)
}

func TestForecastUpsertKeepsActual(t *testing.T) {
	ctx := context.Background()
	repos := openTestRepositories(t)
	restaurantID := cuid.New()
	date := time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	f := models.QuantityForecast{
		ID:           cuid.New(),
		RestaurantID: restaurantID,
		MenuItemID:   "m1",
		ForecastDate: date,
		PredictedQty: 5,
		Confidence:   0.9,
		Factors:      models.ForecastFactors{DayOfWeek: time.Wednesday, Trend: "stable", TrendMultiplier: 1},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repos.Forecasts.UpsertBatch(ctx, []models.QuantityForecast{f}))
	require.NoError(t, repos.Forecasts.SetActual(ctx, f.Key(), 7))

	f.ID = cuid.New()
	f.PredictedQty = 6
	require.NoError(t, repos.Forecasts.UpsertBatch(ctx, []models.QuantityForecast{f}))

	got, err := repos.Forecasts.Range(ctx, restaurantID, date, date.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 6, got[0].PredictedQty)
	require.NotNil(t, got[0].ActualQty)
	assert.Equal(t, 7, *got[0].ActualQty)
	assert.True(t, date.Equal(got[0].ForecastDate))
	assert.Equal(t, "stable", got[0].Factors.Trend)

	missing := f.Key()
	missing.MenuItemID = "nope"
	assert.ErrorIs(t, repos.Forecasts.SetActual(ctx, missing, 1), models.ErrNotFound)
}

func TestReportUpdateChecksExpectedStatus(t *testing.T) {
	ctx := context.Background()
	repos := openTestRepositories(t)
	now := time.Now().UTC()
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	rep := &models.DemandForecastReport{
		ID:            cuid.New(),
		RestaurantID:  cuid.New(),
		ReportPeriod:  models.PeriodWeekly,
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, 7),
		ItemForecasts: []models.ItemForecast{{MenuItemID: "m1", Name: "Pizza", PredictedQty: 40}},
		Status:        models.ReportGenerated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, repos.Reports.Create(ctx, rep))

	rep.Status = models.ReportSent
	rep.SentToRestaurant = true
	require.NoError(t, repos.Reports.Update(ctx, rep, models.ReportGenerated))
	assert.ErrorIs(t, repos.Reports.Update(ctx, rep, models.ReportGenerated), models.ErrInvalidState)

	counter := 7.5
	rep.Status = models.ReportNegotiating
	rep.RestaurantResponse = &models.RestaurantResponse{CounterOffer: &counter, RespondedAt: now}
	require.NoError(t, repos.Reports.Update(ctx, rep, models.ReportSent))

	list, err := repos.Reports.List(ctx, rep.RestaurantID, nil, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.ReportNegotiating, list[0].Status)
	require.NotNil(t, list[0].RestaurantResponse)
	assert.Equal(t, 7.5, *list[0].RestaurantResponse.CounterOffer)
	assert.Len(t, list[0].ItemForecasts, 1)
	assert.True(t, start.Equal(list[0].StartDate))
}
