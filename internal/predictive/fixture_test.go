package predictive

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/chrisdamba/foodpredict/internal/repositories"
	"github.com/chrisdamba/foodpredict/internal/repositories/memory"
	"github.com/stretchr/testify/require"
)

type publishedEvent struct {
	topic string
	name  string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, topic, name string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic: topic, name: name})
	return nil
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.name
	}
	return out
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	repos  repositories.Repositories
	now    time.Time
	events *recordingPublisher
	seq    int
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	return &fixture{
		t:      t,
		ctx:    context.Background(),
		repos:  memory.NewStore().Repositories(),
		now:    now,
		events: &recordingPublisher{},
	}
}

func (f *fixture) options() Options {
	return Options{
		Config:   models.DefaultPredictiveConfig(),
		Now:      func() time.Time { return f.now },
		Location: time.UTC,
		Events:   f.events,
	}
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) restaurant(id, cuisine string) {
	f.t.Helper()
	require.NoError(f.t, f.repos.Restaurants.BulkCreate(f.ctx, []*models.Restaurant{
		{ID: id, Name: "Restaurant " + id, CuisineType: cuisine},
	}))
}

func (f *fixture) menuItem(id, restaurantID, name string, price float64) {
	f.t.Helper()
	require.NoError(f.t, f.repos.MenuItems.BulkCreate(f.ctx, []*models.MenuItem{
		{ID: id, RestaurantID: restaurantID, Name: name, Price: price, IsAvailable: true},
	}))
}

func (f *fixture) user(id string, active bool) {
	f.t.Helper()
	require.NoError(f.t, f.repos.Users.BulkCreate(f.ctx, []*models.User{
		{ID: id, Name: "User " + id, IsActive: active},
	}))
}

func item(menuItemID string, qty int, price float64) models.OrderItem {
	return models.OrderItem{MenuItemID: menuItemID, Quantity: qty, Price: price}
}

func (f *fixture) order(userID, restaurantID, status string, at time.Time, items ...models.OrderItem) models.Order {
	f.t.Helper()
	f.seq++
	o := models.Order{
		ID:           fmt.Sprintf("order-%03d", f.seq),
		UserID:       userID,
		RestaurantID: restaurantID,
		Status:       status,
		CreatedAt:    at,
	}
	for _, it := range items {
		it.OrderID = o.ID
		o.Items = append(o.Items, it)
		o.TotalAmount += it.Price * float64(it.Quantity)
	}
	require.NoError(f.t, f.repos.Orders.CreateOrder(f.ctx, &o))
	return o
}

func (f *fixture) delivered(userID, restaurantID string, at time.Time, items ...models.OrderItem) models.Order {
	return f.order(userID, restaurantID, models.OrderStatusDelivered, at, items...)
}

func date(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}
