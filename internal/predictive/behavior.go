package predictive

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/chrisdamba/foodpredict/internal/repositories"
	"github.com/lucsky/cuid"
	"golang.org/x/sync/errgroup"
)

const (
	topCuisines      = 5
	topGroupItems    = 5
	topAnalysisItems = 10
)

// Progress is advanced once per processed unit of a batch run.
type Progress interface {
	Add(num int) error
}

type BehaviorAnalyzer struct {
	orders   repositories.OrderRepository
	users    repositories.UserRepository
	profiles repositories.BehaviorProfileRepository
	opts     Options
}

func NewBehaviorAnalyzer(repos repositories.Repositories, opts Options) *BehaviorAnalyzer {
	return &BehaviorAnalyzer{
		orders:   repos.Orders,
		users:    repos.Users,
		profiles: repos.Profiles,
		opts:     opts.withDefaults(),
	}
}

type slotGroup struct {
	day   time.Weekday
	slot  models.TimeSlot
	count int
	total float64
	items map[string]int
	last  time.Time
}

// AnalyzeUser rebuilds the user's behavior profiles from their delivered
// orders. It returns nil when the user has no delivered orders.
func (a *BehaviorAnalyzer) AnalyzeUser(ctx context.Context, userID string) (*models.BehaviorAnalysis, error) {
	orders, err := a.orders.DeliveredByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading orders for user %s: %w", userID, err)
	}
	if len(orders) == 0 {
		a.opts.Logger.Debug("no delivered orders", "user_id", userID)
		return nil, nil
	}

	loc := a.opts.Location
	groups := make(map[models.BehaviorKey]*slotGroup)
	cuisines := make(map[string]int)
	itemCounts := make(map[string]int)
	itemQty := make(map[string]int)
	total := 0.0

	for _, o := range orders {
		created := o.CreatedAt.In(loc)
		key := models.BehaviorKey{UserID: userID, DayOfWeek: created.Weekday(), TimeSlot: models.TimeSlotOf(created)}
		g, ok := groups[key]
		if !ok {
			g = &slotGroup{day: key.DayOfWeek, slot: key.TimeSlot, items: make(map[string]int)}
			groups[key] = g
		}
		g.count++
		g.total += o.TotalAmount
		if created.After(g.last) {
			g.last = created
		}
		total += o.TotalAmount

		if o.Restaurant != nil && o.Restaurant.CuisineType != "" {
			cuisines[o.Restaurant.CuisineType]++
		}
		for _, item := range o.Items {
			g.items[item.MenuItemID]++
			itemCounts[item.MenuItemID]++
			itemQty[item.MenuItemID] += item.Quantity
		}
	}

	analysis := &models.BehaviorAnalysis{
		UserID:            userID,
		TotalOrders:       len(orders),
		AverageOrderValue: round2(total / float64(len(orders))),
		OrderFrequency:    orderFrequency(orders),
	}

	cuisineNames := make([]string, 0, topCuisines)
	for _, kc := range topN(cuisines, topCuisines) {
		analysis.PreferredCuisines = append(analysis.PreferredCuisines, models.CuisinePreference{
			Cuisine:    kc.Key,
			Count:      kc.Count,
			Percentage: round2(float64(kc.Count) / float64(len(orders)) * 100),
		})
		cuisineNames = append(cuisineNames, kc.Key)
	}

	rankedItems := topN(itemCounts, 0)
	for i, kc := range rankedItems {
		if i == topAnalysisItems {
			break
		}
		analysis.PreferredItems = append(analysis.PreferredItems, models.ItemPreference{
			MenuItemID:    kc.Key,
			Count:         kc.Count,
			TotalQuantity: itemQty[kc.Key],
		})
	}
	preferred := make([]string, 0, len(rankedItems))
	for _, kc := range rankedItems {
		preferred = append(preferred, kc.Key)
	}

	now := a.opts.now()
	profiles := make([]models.BehaviorProfile, 0, len(groups))
	for key, g := range groups {
		var top []models.ItemCount
		for _, kc := range topN(g.items, topGroupItems) {
			top = append(top, models.ItemCount{MenuItemID: kc.Key, Count: kc.Count})
		}
		profiles = append(profiles, models.BehaviorProfile{
			ID:                cuid.New(),
			UserID:            key.UserID,
			DayOfWeek:         g.day,
			TimeSlot:          g.slot,
			AverageOrderValue: round2(g.total / float64(g.count)),
			OrderFrequency:    analysis.OrderFrequency,
			PreferredCuisines: cuisineNames,
			PreferredItems:    preferred,
			TopItems:          top,
			TotalOrders:       g.count,
			LastOrderDate:     g.last,
			UpdatedAt:         now,
		})
	}
	sortProfiles(profiles)

	if err := a.profiles.UpsertBatch(ctx, profiles); err != nil {
		return nil, fmt.Errorf("saving behavior profiles for user %s: %w", userID, err)
	}
	analysis.Profiles = profiles

	a.opts.Logger.Info("analyzed user behavior",
		"user_id", userID,
		"orders", len(orders),
		"profiles", len(profiles),
	)
	return analysis, nil
}

// orderFrequency is orders per week across the history, which must be sorted
// oldest first. Fewer than two orders yield 0, a span under a week the raw count.
func orderFrequency(orders []models.Order) float64 {
	if len(orders) < 2 {
		return 0
	}
	span := orders[len(orders)-1].CreatedAt.Sub(orders[0].CreatedAt)
	weeks := span.Hours() / (24 * 7)
	if weeks < 1 {
		return float64(len(orders))
	}
	return round2(float64(len(orders)) / weeks)
}

func slotIndex(s models.TimeSlot) int {
	for i, slot := range models.TimeSlots {
		if slot == s {
			return i
		}
	}
	return len(models.TimeSlots)
}

func sortProfiles(profiles []models.BehaviorProfile) {
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].DayOfWeek != profiles[j].DayOfWeek {
			return profiles[i].DayOfWeek < profiles[j].DayOfWeek
		}
		return slotIndex(profiles[i].TimeSlot) < slotIndex(profiles[j].TimeSlot)
	})
}

// GetUserBehavior returns the stored profiles ordered by day, then slot.
func (a *BehaviorAnalyzer) GetUserBehavior(ctx context.Context, userID string) ([]models.BehaviorProfile, error) {
	profiles, err := a.profiles.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sortProfiles(profiles)
	return profiles, nil
}

// ItemQuantities returns the average quantity the user orders of each item.
func (a *BehaviorAnalyzer) ItemQuantities(ctx context.Context, userID string) (map[string]float64, error) {
	orders, err := a.orders.DeliveredByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	qty := make(map[string]int)
	lines := make(map[string]int)
	for _, o := range orders {
		for _, item := range o.Items {
			qty[item.MenuItemID] += item.Quantity
			lines[item.MenuItemID]++
		}
	}
	avg := make(map[string]float64, len(qty))
	for id, q := range qty {
		avg[id] = float64(q) / float64(lines[id])
	}
	return avg, nil
}

// AnalyzeAllUsers analyzes every active user with at most workers in flight.
// A failing user is logged and counted, never fatal to the batch.
func (a *BehaviorAnalyzer) AnalyzeAllUsers(ctx context.Context, workers int, progress Progress) (*models.BatchAnalysisSummary, error) {
	users, err := a.users.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active users: %w", err)
	}
	if workers <= 0 {
		workers = 1
	}

	var analyzed, failed int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, user := range users {
		userID := user.ID
		g.Go(func() error {
			if progress != nil {
				defer progress.Add(1)
			}
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := a.AnalyzeUser(gctx, userID)
			if err != nil {
				atomic.AddInt64(&failed, 1)
				a.opts.Logger.Error("behavior analysis failed", "user_id", userID, "error", err)
				return nil
			}
			if res != nil {
				atomic.AddInt64(&analyzed, 1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.BatchAnalysisSummary{
		TotalUsers:    len(users),
		TotalAnalyzed: int(analyzed),
		Failed:        int(failed),
		Timestamp:     a.opts.now(),
	}, nil
}
