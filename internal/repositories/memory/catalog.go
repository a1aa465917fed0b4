package memory

import (
	"context"
	"sort"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
)

type OrderRepository struct{ s *Store }

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	if o.DeliveryLocation != nil {
		loc := *o.DeliveryLocation
		o.DeliveryLocation = &loc
	}
	return o
}

func (r *OrderRepository) BulkCreate(ctx context.Context, orders []models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range orders {
		r.s.orders = append(r.s.orders, cloneOrder(o))
	}
	return nil
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.BulkCreate(ctx, []models.Order{*order})
}

func (r *OrderRepository) DeliveredByUser(ctx context.Context, userID string) ([]models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var orders []models.Order
	for _, o := range r.s.orders {
		if o.UserID != userID || o.Status != models.OrderStatusDelivered {
			continue
		}
		o = cloneOrder(o)
		if rest, ok := r.s.restaurants[o.RestaurantID]; ok {
			copied := *rest
			o.Restaurant = &copied
		}
		orders = append(orders, o)
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
	return orders, nil
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func (r *OrderRepository) ItemSales(ctx context.Context, restaurantID string, from, to time.Time) ([]models.ItemSale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var sales []models.ItemSale
	for _, o := range r.s.orders {
		if o.RestaurantID != restaurantID || o.Status != models.OrderStatusDelivered || !inWindow(o.CreatedAt, from, to) {
			continue
		}
		for _, item := range o.Items {
			sale := models.ItemSale{
				OrderID:    o.ID,
				MenuItemID: item.MenuItemID,
				Quantity:   item.Quantity,
				Price:      item.Price,
				OrderedAt:  o.CreatedAt,
			}
			if mi, ok := r.s.menuItems[item.MenuItemID]; ok {
				sale.ItemName = mi.Name
			}
			sales = append(sales, sale)
		}
	}
	sort.SliceStable(sales, func(i, j int) bool { return sales[i].OrderedAt.Before(sales[j].OrderedAt) })
	return sales, nil
}

func (r *OrderRepository) ListInWindow(ctx context.Context, statuses []string, from, to time.Time) ([]models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := make(map[string]bool, len(statuses))
	for _, st := range statuses {
		wanted[st] = true
	}
	var orders []models.Order
	for _, o := range r.s.orders {
		if !wanted[o.Status] || !inWindow(o.CreatedAt, from, to) {
			continue
		}
		o = cloneOrder(o)
		o.Items = nil
		orders = append(orders, o)
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
	return orders, nil
}

func (r *OrderRepository) RestaurantMetrics(ctx context.Context, restaurantID string, from, to time.Time) (models.OrderMetrics, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var m models.OrderMetrics
	for _, o := range r.s.orders {
		if o.RestaurantID == restaurantID && o.Status == models.OrderStatusDelivered && inWindow(o.CreatedAt, from, to) {
			m.TotalOrders++
			m.TotalRevenue += o.TotalAmount
		}
	}
	return m, nil
}

func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.orders), nil
}

type UserRepository struct{ s *Store }

func (r *UserRepository) BulkCreate(ctx context.Context, users []*models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range users {
		copied := *u
		r.s.users[u.ID] = &copied
	}
	return nil
}

func (r *UserRepository) GetActive(ctx context.Context) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var users []*models.User
	for _, u := range r.s.users {
		if u.IsActive {
			copied := *u
			users = append(users, &copied)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.users), nil
}

type RestaurantRepository struct{ s *Store }

func (r *RestaurantRepository) BulkCreate(ctx context.Context, restaurants []*models.Restaurant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rest := range restaurants {
		copied := *rest
		r.s.restaurants[rest.ID] = &copied
	}
	return nil
}

func (r *RestaurantRepository) Get(ctx context.Context, id string) (*models.Restaurant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rest, ok := r.s.restaurants[id]
	if !ok {
		return nil, models.NotFound("restaurant", id)
	}
	copied := *rest
	return &copied, nil
}

func (r *RestaurantRepository) GetAll(ctx context.Context) (map[string]*models.Restaurant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]*models.Restaurant, len(r.s.restaurants))
	for id, rest := range r.s.restaurants {
		copied := *rest
		out[id] = &copied
	}
	return out, nil
}

func (r *RestaurantRepository) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.restaurants), nil
}

type MenuItemRepository struct{ s *Store }

func (r *MenuItemRepository) BulkCreate(ctx context.Context, menuItems []*models.MenuItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, mi := range menuItems {
		copied := *mi
		r.s.menuItems[mi.ID] = &copied
	}
	return nil
}

func (r *MenuItemRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.MenuItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]*models.MenuItem, len(ids))
	for _, id := range ids {
		if mi, ok := r.s.menuItems[id]; ok {
			copied := *mi
			out[id] = &copied
		}
	}
	return out, nil
}

func (r *MenuItemRepository) GetByRestaurantID(ctx context.Context, restaurantID string) ([]*models.MenuItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var items []*models.MenuItem
	for _, mi := range r.s.menuItems {
		if mi.RestaurantID == restaurantID {
			copied := *mi
			items = append(items, &copied)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *MenuItemRepository) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.menuItems), nil
}
