package predictive

import (
	"testing"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(lat, lon float64) *models.Location {
	return &models.Location{Lat: lat, Lon: lon}
}

func TestClusterRoutes(t *testing.T) {
	orders := []models.Order{
		{ID: "o1", DeliveryLocation: at(51.5000, -0.1200)},
		{ID: "o2", DeliveryLocation: at(51.5010, -0.1210)},
		{ID: "o3", DeliveryLocation: at(51.9500, -0.1200)},
		{ID: "o4"},
	}

	routes := ClusterRoutes(orders, 2, 15)
	require.Len(t, routes, 2)

	assert.Equal(t, "route-1", routes[0].RouteID)
	require.Len(t, routes[0].Orders, 2)
	assert.Equal(t, "o1", routes[0].Orders[0].ID)
	assert.Equal(t, "o2", routes[0].Orders[1].ID)
	assert.Equal(t, 30, routes[0].EstimatedMinutes)
	assert.Equal(t, *orders[0].DeliveryLocation, routes[0].StartPoint)
	assert.Greater(t, routes[0].TotalDistanceKm, 0.0)
	assert.Less(t, routes[0].TotalDistanceKm, 0.5)

	assert.Equal(t, "route-2", routes[1].RouteID)
	require.Len(t, routes[1].Orders, 1)
	assert.Equal(t, "o3", routes[1].Orders[0].ID)
	assert.Equal(t, 15, routes[1].EstimatedMinutes)
	assert.Equal(t, 0.0, routes[1].TotalDistanceKm)
}

func TestClusterRoutesEmpty(t *testing.T) {
	routes := ClusterRoutes(nil, 2, 15)
	assert.NotNil(t, routes)
	assert.Empty(t, routes)
}

func TestHaversine(t *testing.T) {
	d := haversineKm(models.Location{Lat: 51.5, Lon: -0.12}, models.Location{Lat: 51.95, Lon: -0.12})
	assert.InDelta(t, 50.04, d, 0.05)
	assert.Equal(t, 0.0, haversineKm(models.Location{Lat: 1, Lon: 1}, models.Location{Lat: 1, Lon: 1}))
}

func TestOptimizeOpenDeliveries(t *testing.T) {
	f := newFixture(t, date(2024, time.July, 3, 13, 0))
	f.restaurant("r1", "italian")
	open := []struct {
		status string
		at     time.Time
		loc    *models.Location
	}{
		{models.OrderStatusConfirmed, date(2024, time.July, 3, 12, 0), at(51.5000, -0.1200)},
		{models.OrderStatusPreparing, date(2024, time.July, 3, 12, 30), at(51.5005, -0.1205)},
		{models.OrderStatusDelivered, date(2024, time.July, 3, 11, 0), at(51.5000, -0.1200)},
		{models.OrderStatusConfirmed, date(2024, time.July, 2, 12, 0), at(51.5000, -0.1200)},
	}
	for i, o := range open {
		order := models.Order{
			ID:               "open-" + string(rune('a'+i)),
			UserID:           "u1",
			RestaurantID:     "r1",
			Status:           o.status,
			CreatedAt:        o.at,
			DeliveryLocation: o.loc,
		}
		require.NoError(t, f.repos.Orders.CreateOrder(f.ctx, &order))
	}

	routes, err := NewDeliveryScheduler(f.repos, f.options()).OptimizeOpenDeliveries(f.ctx)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Len(t, routes[0].Orders, 2)
}
