package predictive

import (
	"context"
	"fmt"

	"github.com/chrisdamba/foodpredict/internal/models"
)

// OpenDeliveryStatuses are the order statuses still waiting to be routed.
var OpenDeliveryStatuses = []string{models.OrderStatusConfirmed, models.OrderStatusPreparing}

// ClusterRoutes greedily groups orders into routes. Each unassigned order with
// a delivery location seeds a route and absorbs every other unassigned order
// within radiusKm of it. Orders without a location are skipped and the input
// is left untouched.
func ClusterRoutes(orders []models.Order, radiusKm float64, minutesPerStop int) []models.Route {
	assigned := make([]bool, len(orders))
	routes := []models.Route{}

	for i, seed := range orders {
		if assigned[i] || seed.DeliveryLocation == nil {
			continue
		}
		assigned[i] = true
		route := models.Route{
			Orders:     []models.Order{seed},
			StartPoint: *seed.DeliveryLocation,
		}
		for j, other := range orders {
			if assigned[j] || other.DeliveryLocation == nil {
				continue
			}
			distance := haversineKm(*seed.DeliveryLocation, *other.DeliveryLocation)
			if distance <= radiusKm {
				assigned[j] = true
				route.Orders = append(route.Orders, other)
				route.TotalDistanceKm += distance
			}
		}
		route.RouteID = fmt.Sprintf("route-%d", len(routes)+1)
		route.EstimatedMinutes = minutesPerStop * len(route.Orders)
		route.TotalDistanceKm = round2(route.TotalDistanceKm)
		routes = append(routes, route)
	}
	return routes
}

// OptimizeRoutes clusters the given orders with the configured radius.
func (d *DeliveryScheduler) OptimizeRoutes(orders []models.Order) []models.Route {
	return ClusterRoutes(orders, d.opts.Config.ClusterRadiusKm, d.opts.Config.MinutesPerStop)
}

// OptimizeOpenDeliveries clusters today's orders that are not yet out for delivery.
func (d *DeliveryScheduler) OptimizeOpenDeliveries(ctx context.Context) ([]models.Route, error) {
	now := d.opts.now()
	orders, err := d.orders.ListInWindow(ctx, OpenDeliveryStatuses, models.DateOf(now), now.Add(1))
	if err != nil {
		return nil, fmt.Errorf("loading open deliveries: %w", err)
	}
	routes := d.OptimizeRoutes(orders)
	d.opts.Logger.Info("optimized open deliveries", "orders", len(orders), "routes", len(routes))
	return routes, nil
}
