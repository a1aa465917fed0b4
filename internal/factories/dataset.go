package factories

import (
	"context"
	"fmt"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/chrisdamba/foodpredict/internal/repositories"
)

// Progress is advanced once per stored batch.
type Progress interface {
	Add(num int) error
}

type Dataset struct {
	Restaurants []*models.Restaurant
	MenuItems   []*models.MenuItem
	Users       []*models.User
	Orders      []models.Order
}

// Generator builds a synthetic order history around the configured city.
type Generator struct {
	cfg         models.SeedConfig
	src         *source
	restaurants RestaurantFactory
	menuItems   MenuItemFactory
	users       UserFactory
}

func NewGenerator(cfg models.SeedConfig) *Generator {
	src := newSource(int64(cfg.Seed))
	center := models.Location{Lat: cfg.CityLat, Lon: cfg.CityLon}
	return &Generator{
		cfg:         cfg,
		src:         src,
		restaurants: RestaurantFactory{src: src, center: center, radius: cfg.UrbanRadius},
		menuItems:   MenuItemFactory{src: src, dishes: cfg.MenuDishes},
		users:       UserFactory{src: src, center: center, radius: cfg.UrbanRadius},
	}
}

// Generate produces cfg.HistoryDays of history ending at now, plus openOrders
// orders placed earlier today that are still being prepared.
func (g *Generator) Generate(now time.Time, openOrders int) (*Dataset, error) {
	if g.cfg.Restaurants <= 0 || g.cfg.Users <= 0 {
		return nil, fmt.Errorf("seed needs at least one restaurant and one user: %w", models.ErrInvalidInput)
	}

	ds := &Dataset{}
	menus := make(map[string][]*models.MenuItem)
	for i := 0; i < g.cfg.Restaurants; i++ {
		r := g.restaurants.CreateRestaurant()
		ds.Restaurants = append(ds.Restaurants, r)
		count := 5 + g.src.rng.Intn(8)
		for j := 0; j < count; j++ {
			item := g.menuItems.CreateMenuItem(r)
			ds.MenuItems = append(ds.MenuItems, item)
			menus[r.ID] = append(menus[r.ID], item)
		}
	}

	rate := 1.0
	if g.cfg.OrdersPerUserDay > 0 {
		rate = g.cfg.OrdersPerUserDay / 0.3
	}
	orders := OrderFactory{src: g.src, restaurants: ds.Restaurants, menus: menus, rate: rate}

	today := models.DateOf(now)
	from := today.AddDate(0, 0, -g.cfg.HistoryDays)
	for i := 0; i < g.cfg.Users; i++ {
		u := g.users.CreateUser(from)
		ds.Users = append(ds.Users, u)
		h := g.users.createHabit(ds.Restaurants, menus)
		ds.Orders = append(ds.Orders, orders.History(u, h, from, today)...)
	}

	if openOrders > 0 && now.After(today) {
		for i := 0; i < openOrders; i++ {
			u := ds.Users[g.src.rng.Intn(len(ds.Users))]
			ds.Orders = append(ds.Orders, orders.OpenOrder(u, g.src.timeBetween(today, now)))
		}
	}
	return ds, nil
}

// Load writes the dataset through repos in batches of batchSize.
func (ds *Dataset) Load(ctx context.Context, repos repositories.Repositories, batchSize int, progress Progress) error {
	if batchSize <= 0 {
		batchSize = 500
	}
	if err := repos.Restaurants.BulkCreate(ctx, ds.Restaurants); err != nil {
		return fmt.Errorf("error seeding restaurants: %w", err)
	}
	if err := repos.MenuItems.BulkCreate(ctx, ds.MenuItems); err != nil {
		return fmt.Errorf("error seeding menu items: %w", err)
	}
	if err := repos.Users.BulkCreate(ctx, ds.Users); err != nil {
		return fmt.Errorf("error seeding users: %w", err)
	}
	for start := 0; start < len(ds.Orders); start += batchSize {
		end := min(start+batchSize, len(ds.Orders))
		if err := repos.Orders.BulkCreate(ctx, ds.Orders[start:end]); err != nil {
			return fmt.Errorf("error seeding orders: %w", err)
		}
		if progress != nil {
			_ = progress.Add(end - start)
		}
	}
	return nil
}
