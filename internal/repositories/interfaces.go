package repositories

import (
	"context"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
)

// OrderRepository reads the order-management system's orders. CreateOrder and
// BulkCreate are the only writes: materialising accepted suggestions and seeding.
type OrderRepository interface {
	BulkCreate(ctx context.Context, orders []models.Order) error
	CreateOrder(ctx context.Context, order *models.Order) error
	// DeliveredByUser returns the user's DELIVERED orders, oldest first, with
	// items and restaurant populated.
	DeliveredByUser(ctx context.Context, userID string) ([]models.Order, error)
	// ItemSales returns the items of the restaurant's DELIVERED orders created in [from, to).
	ItemSales(ctx context.Context, restaurantID string, from, to time.Time) ([]models.ItemSale, error)
	// ListInWindow returns orders in any of statuses created in [from, to), without items.
	ListInWindow(ctx context.Context, statuses []string, from, to time.Time) ([]models.Order, error)
	// RestaurantMetrics counts the restaurant's DELIVERED orders created in [from, to).
	RestaurantMetrics(ctx context.Context, restaurantID string, from, to time.Time) (models.OrderMetrics, error)
	Count(ctx context.Context) (int, error)
}

type UserRepository interface {
	BulkCreate(ctx context.Context, users []*models.User) error
	GetActive(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
}

type RestaurantRepository interface {
	BulkCreate(ctx context.Context, restaurants []*models.Restaurant) error
	Get(ctx context.Context, id string) (*models.Restaurant, error)
	GetAll(ctx context.Context) (map[string]*models.Restaurant, error)
	Count(ctx context.Context) (int, error)
}

type MenuItemRepository interface {
	BulkCreate(ctx context.Context, menuItems []*models.MenuItem) error
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.MenuItem, error)
	GetByRestaurantID(ctx context.Context, restaurantID string) ([]*models.MenuItem, error)
	Count(ctx context.Context) (int, error)
}

type BehaviorProfileRepository interface {
	// UpsertBatch writes all profiles atomically, keyed by (user, day, slot).
	UpsertBatch(ctx context.Context, profiles []models.BehaviorProfile) error
	ListByUser(ctx context.Context, userID string) ([]models.BehaviorProfile, error)
}

type PatternRepository interface {
	// ReplaceActive deletes the user's active patterns and inserts patterns in one step.
	ReplaceActive(ctx context.Context, userID string, patterns []models.OrderPattern) error
	ListActive(ctx context.Context, userID string) ([]models.OrderPattern, error)
	MarkTriggered(ctx context.Context, id string, at time.Time) error
}

type SuggestionRepository interface {
	// Create fails with models.ErrPendingExists when the user already has a PENDING suggestion.
	Create(ctx context.Context, suggestion *models.AutoOrderSuggestion) error
	Get(ctx context.Context, id string) (*models.AutoOrderSuggestion, error)
	// Update persists suggestion only if the stored status still equals expected.
	Update(ctx context.Context, suggestion *models.AutoOrderSuggestion, expected models.SuggestionStatus) error
	// PendingForUser returns the user's PENDING suggestion, nil when there is none.
	PendingForUser(ctx context.Context, userID string) (*models.AutoOrderSuggestion, error)
	// ExpireBefore moves PENDING rows with expires_at <= now to EXPIRED. An empty
	// userID applies to every user.
	ExpireBefore(ctx context.Context, userID string, now time.Time) (int, error)
	// List returns the newest suggestions first. A nil status matches all; limit <= 0 is unbounded.
	List(ctx context.Context, userID string, status *models.SuggestionStatus, limit int) ([]models.AutoOrderSuggestion, error)
	CountByStatus(ctx context.Context, userID string) (map[models.SuggestionStatus]int, error)
}

type ForecastRepository interface {
	// UpsertBatch writes forecasts by key. A recorded actual quantity survives the upsert.
	UpsertBatch(ctx context.Context, forecasts []models.QuantityForecast) error
	// Range returns the restaurant's forecasts dated in [from, to).
	Range(ctx context.Context, restaurantID string, from, to time.Time) ([]models.QuantityForecast, error)
	SetActual(ctx context.Context, key models.ForecastKey, qty int) error
}

type ScheduleRepository interface {
	UpsertBatch(ctx context.Context, schedules []models.DeliverySchedule) error
	// Range returns schedules dated in [from, to), ordered by date then slot.
	Range(ctx context.Context, from, to time.Time) ([]models.DeliverySchedule, error)
	SetActual(ctx context.Context, key models.ScheduleKey, orders int) error
}

type ReportRepository interface {
	Create(ctx context.Context, report *models.DemandForecastReport) error
	Get(ctx context.Context, id string) (*models.DemandForecastReport, error)
	// Update persists report only if the stored status still equals expected.
	Update(ctx context.Context, report *models.DemandForecastReport, expected models.ReportStatus) error
	// List returns the newest reports first. An empty restaurantID or nil status
	// matches all; limit <= 0 is unbounded.
	List(ctx context.Context, restaurantID string, status *models.ReportStatus, limit int) ([]models.DemandForecastReport, error)
}

// Repositories bundles every store the predictive services depend on.
type Repositories struct {
	Orders      OrderRepository
	Users       UserRepository
	Restaurants RestaurantRepository
	MenuItems   MenuItemRepository
	Profiles    BehaviorProfileRepository
	Patterns    PatternRepository
	Suggestions SuggestionRepository
	Forecasts   ForecastRepository
	Schedules   ScheduleRepository
	Reports     ReportRepository
}
