package factories

import (
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/lucsky/cuid"
)

type OrderFactory struct {
	src         *source
	restaurants []*models.Restaurant
	menus       map[string][]*models.MenuItem
	rate        float64
}

// weekdayMultiplier follows the weekend and Friday-night uplift of real demand.
func weekdayMultiplier(day time.Weekday) float64 {
	switch day {
	case time.Saturday, time.Sunday:
		return 1.5
	case time.Friday:
		return 1.3
	}
	return 1.0
}

// History generates the user's orders on each day of [from, to). Orders
// placed at or after to are dropped.
func (of *OrderFactory) History(user *models.User, h habit, from, to time.Time) []models.Order {
	var orders []models.Order
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == h.favouriteDay && of.src.rng.Float64() < 0.85 {
			at := day.Add(time.Duration(h.favouriteAt)*time.Hour + time.Duration(of.src.rng.Intn(50))*time.Minute)
			if at.Before(to) {
				orders = append(orders, of.habitualOrder(user, h, at))
			}
			continue
		}
		p := h.segment.OrdersDaily * of.rate * weekdayMultiplier(day.Weekday())
		if of.src.rng.Float64() >= p {
			continue
		}
		hours := h.segment.Hours[day.Weekday()]
		at := day.Add(time.Duration(hours[of.src.rng.Intn(len(hours))])*time.Hour + time.Duration(of.src.rng.Intn(60))*time.Minute)
		if !at.Before(to) {
			continue
		}
		if of.src.rng.Float64() < 0.6 {
			orders = append(orders, of.habitualOrder(user, h, at))
		} else {
			orders = append(orders, of.randomOrder(user, at))
		}
	}
	return orders
}

func (of *OrderFactory) habitualOrder(user *models.User, h habit, at time.Time) models.Order {
	if len(h.items) == 0 {
		return of.randomOrder(user, at)
	}
	items := make([]models.OrderItem, 0, len(h.items))
	for _, m := range h.items {
		items = append(items, models.OrderItem{MenuItemID: m.ID, Quantity: 1 + of.src.rng.Intn(2), Price: m.Price})
	}
	return of.newOrder(user, h.restaurant, items, at, of.deliveredStatus())
}

func (of *OrderFactory) randomOrder(user *models.User, at time.Time) models.Order {
	restaurant := of.restaurants[of.src.rng.Intn(len(of.restaurants))]
	menu := of.menus[restaurant.ID]
	n := 1 + of.src.rng.Intn(min(3, len(menu)))
	items := make([]models.OrderItem, 0, n)
	for _, idx := range of.src.rng.Perm(len(menu))[:n] {
		m := menu[idx]
		items = append(items, models.OrderItem{MenuItemID: m.ID, Quantity: 1 + of.src.rng.Intn(3), Price: m.Price})
	}
	return of.newOrder(user, restaurant, items, at, of.deliveredStatus())
}

// OpenOrder creates an order placed at at that is still in preparation.
func (of *OrderFactory) OpenOrder(user *models.User, at time.Time) models.Order {
	o := of.randomOrder(user, at)
	o.Status = models.OrderStatusConfirmed
	if of.src.rng.Float64() < 0.5 {
		o.Status = models.OrderStatusPreparing
	}
	o.DeliveredAt = nil
	return o
}

func (of *OrderFactory) deliveredStatus() string {
	if of.src.rng.Float64() < 0.05 {
		return models.OrderStatusCancelled
	}
	return models.OrderStatusDelivered
}

func (of *OrderFactory) newOrder(user *models.User, restaurant *models.Restaurant, items []models.OrderItem, at time.Time, status string) models.Order {
	id := cuid.New()
	total := 0.0
	for i := range items {
		items[i].OrderID = id
		total += items[i].Price * float64(items[i].Quantity)
	}
	dropoff := of.src.pointNear(user.Location, 0.3)
	order := models.Order{
		ID:               id,
		UserID:           user.ID,
		RestaurantID:     restaurant.ID,
		Status:           status,
		OrderType:        models.OrderTypeRegular,
		TotalAmount:      float64(int(total*100+0.5)) / 100,
		CreatedAt:        at,
		DeliveryLocation: &dropoff,
		Items:            items,
	}
	if status == models.OrderStatusDelivered {
		delivered := at.Add(time.Duration(25+of.src.rng.Intn(30)) * time.Minute)
		order.DeliveredAt = &delivered
	}
	return order
}
