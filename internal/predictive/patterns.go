package predictive

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/chrisdamba/foodpredict/internal/repositories"
	"github.com/lucsky/cuid"
)

const (
	restaurantPatternItems = 5
	itemPatternItems       = 3
	dailyPatternItems      = 5
	minItemPatternItems    = 2
)

type PatternRecognizer struct {
	orders   repositories.OrderRepository
	patterns repositories.PatternRepository
	opts     Options
}

func NewPatternRecognizer(repos repositories.Repositories, opts Options) *PatternRecognizer {
	return &PatternRecognizer{
		orders:   repos.Orders,
		patterns: repos.Patterns,
		opts:     opts.withDefaults(),
	}
}

type dayGroup struct {
	orders      int
	restaurants map[string]int
	items       map[string]int
	slots       map[string]int
}

type itemPair [2]string

// DiscoverPatterns mines weekly, daily and co-occurrence patterns from the
// user's delivered orders and replaces the user's active set with them.
// Users below the minimum order count get an empty result and no write.
func (r *PatternRecognizer) DiscoverPatterns(ctx context.Context, userID string) ([]models.OrderPattern, error) {
	orders, err := r.orders.DeliveredByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading orders for user %s: %w", userID, err)
	}
	if len(orders) < r.opts.Config.MinFrequency {
		r.opts.Logger.Debug("not enough orders for pattern discovery", "user_id", userID, "orders", len(orders))
		return []models.OrderPattern{}, nil
	}

	var patterns []models.OrderPattern
	patterns = append(patterns, r.weeklyPatterns(orders)...)
	patterns = append(patterns, r.dailyPatterns(orders)...)
	patterns = append(patterns, r.pairPatterns(orders)...)

	now := r.opts.now()
	for i := range patterns {
		patterns[i].ID = cuid.New()
		patterns[i].UserID = userID
		patterns[i].IsActive = true
		patterns[i].CreatedAt = now
	}

	if err := r.patterns.ReplaceActive(ctx, userID, patterns); err != nil {
		return nil, fmt.Errorf("saving patterns for user %s: %w", userID, err)
	}
	r.opts.Logger.Info("discovered order patterns", "user_id", userID, "orders", len(orders), "patterns", len(patterns))
	if patterns == nil {
		patterns = []models.OrderPattern{}
	}
	return patterns, nil
}

func (r *PatternRecognizer) weeklyPatterns(orders []models.Order) []models.OrderPattern {
	cfg := r.opts.Config
	days := make(map[time.Weekday]*dayGroup)
	for _, o := range orders {
		created := o.CreatedAt.In(r.opts.Location)
		g, ok := days[created.Weekday()]
		if !ok {
			g = &dayGroup{restaurants: make(map[string]int), items: make(map[string]int), slots: make(map[string]int)}
			days[created.Weekday()] = g
		}
		g.orders++
		if o.RestaurantID != "" {
			g.restaurants[o.RestaurantID]++
		}
		for _, item := range o.Items {
			g.items[item.MenuItemID]++
		}
		g.slots[string(models.TimeSlotOf(created))]++
	}

	var patterns []models.OrderPattern
	for day := time.Sunday; day <= time.Saturday; day++ {
		g, ok := days[day]
		if !ok || g.orders < cfg.MinFrequency {
			continue
		}
		d := day
		slot := mostCommonSlot(g.slots)

		if top := topN(g.restaurants, 1); len(top) == 1 {
			confidence := float64(top[0].Count) / float64(g.orders)
			if confidence >= cfg.MinConfidence {
				restaurantID := top[0].Key
				patterns = append(patterns, models.OrderPattern{
					PatternType:    models.PatternWeekly,
					DayOfWeek:      &d,
					TimePreference: &slot,
					RestaurantID:   &restaurantID,
					MenuItemIDs:    topKeys(g.items, restaurantPatternItems),
					Frequency:      top[0].Count,
					Confidence:     confidence,
				})
			}
		}

		topItems := topN(g.items, itemPatternItems)
		if len(topItems) >= minItemPatternItems {
			confidence := math.Min(1, float64(topItems[0].Count)/float64(g.orders))
			if confidence >= cfg.MinConfidence {
				ids := make([]string, len(topItems))
				for i, kc := range topItems {
					ids[i] = kc.Key
				}
				itemSlot := slot
				patterns = append(patterns, models.OrderPattern{
					PatternType:    models.PatternWeekly,
					DayOfWeek:      &d,
					TimePreference: &itemSlot,
					MenuItemIDs:    ids,
					Frequency:      g.orders,
					Confidence:     confidence,
				})
			}
		}
	}
	return patterns
}

func mostCommonSlot(slots map[string]int) models.TimeSlot {
	if top := topN(slots, 1); len(top) == 1 {
		return models.TimeSlot(top[0].Key)
	}
	return models.SlotLunch
}

func (r *PatternRecognizer) dailyPatterns(orders []models.Order) []models.OrderPattern {
	cfg := r.opts.Config
	counts := make(map[models.TimeSlot]int)
	items := make(map[models.TimeSlot]map[string]int)
	for _, o := range orders {
		slot := models.TimeSlotOf(o.CreatedAt.In(r.opts.Location))
		counts[slot]++
		if items[slot] == nil {
			items[slot] = make(map[string]int)
		}
		for _, item := range o.Items {
			items[slot][item.MenuItemID]++
		}
	}

	var patterns []models.OrderPattern
	for _, slot := range models.TimeSlots {
		n := counts[slot]
		share := float64(n) / float64(len(orders))
		if n < cfg.MinFrequency || share < cfg.DailySlotShare {
			continue
		}
		s := slot
		patterns = append(patterns, models.OrderPattern{
			PatternType:    models.PatternDaily,
			TimePreference: &s,
			MenuItemIDs:    topKeys(items[slot], dailyPatternItems),
			Frequency:      n,
			Confidence:     share,
		})
	}
	return patterns
}

// pairPatterns finds item pairs ordered together often enough. They carry no
// day or slot anchor.
func (r *PatternRecognizer) pairPatterns(orders []models.Order) []models.OrderPattern {
	cfg := r.opts.Config
	pairs := make(map[itemPair]int)
	for _, o := range orders {
		seen := make(map[string]bool, len(o.Items))
		var ids []string
		for _, item := range o.Items {
			if !seen[item.MenuItemID] {
				seen[item.MenuItemID] = true
				ids = append(ids, item.MenuItemID)
			}
		}
		sort.Strings(ids)
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				pairs[itemPair{ids[i], ids[j]}]++
			}
		}
	}

	type pairCount struct {
		pair  itemPair
		count int
	}
	var qualifying []pairCount
	for p, n := range pairs {
		if n >= cfg.MinFrequency && float64(n)/float64(len(orders)) >= cfg.PairConfidence {
			qualifying = append(qualifying, pairCount{pair: p, count: n})
		}
	}
	sort.Slice(qualifying, func(i, j int) bool {
		if qualifying[i].count != qualifying[j].count {
			return qualifying[i].count > qualifying[j].count
		}
		if qualifying[i].pair[0] != qualifying[j].pair[0] {
			return qualifying[i].pair[0] < qualifying[j].pair[0]
		}
		return qualifying[i].pair[1] < qualifying[j].pair[1]
	})
	if len(qualifying) > cfg.MaxPairPatterns {
		qualifying = qualifying[:cfg.MaxPairPatterns]
	}

	patterns := make([]models.OrderPattern, 0, len(qualifying))
	for _, pc := range qualifying {
		patterns = append(patterns, models.OrderPattern{
			PatternType: models.PatternWeekly,
			MenuItemIDs: []string{pc.pair[0], pc.pair[1]},
			Frequency:   pc.count,
			Confidence:  float64(pc.count) / float64(len(orders)),
		})
	}
	return patterns
}

// GetUserPatterns returns the user's active patterns, most confident first.
func (r *PatternRecognizer) GetUserPatterns(ctx context.Context, userID string) ([]models.OrderPattern, error) {
	patterns, err := r.patterns.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	sortByConfidence(patterns)
	return patterns, nil
}

// MatchPatterns returns the active patterns that apply at the given instant,
// most confident first.
func (r *PatternRecognizer) MatchPatterns(ctx context.Context, userID string, at time.Time) ([]models.OrderPattern, error) {
	patterns, err := r.patterns.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	at = at.In(r.opts.Location)
	day, slot := at.Weekday(), models.TimeSlotOf(at)
	matching := make([]models.OrderPattern, 0, len(patterns))
	for _, p := range patterns {
		if p.Matches(day, slot) {
			matching = append(matching, p)
		}
	}
	sortByConfidence(matching)
	return matching, nil
}

func (r *PatternRecognizer) CheckPatternMatch(ctx context.Context, userID string) ([]models.OrderPattern, error) {
	return r.MatchPatterns(ctx, userID, r.opts.now())
}

// TriggerPattern records that a suggestion built from the pattern was taken up.
func (r *PatternRecognizer) TriggerPattern(ctx context.Context, patternID string) error {
	return r.patterns.MarkTriggered(ctx, patternID, r.opts.now())
}

func sortByConfidence(patterns []models.OrderPattern) {
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Confidence > patterns[j].Confidence
	})
}
