package predictive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/chrisdamba/foodpredict/internal/repositories"
	"github.com/lucsky/cuid"
)

const (
	insideWindowDelay = 15 * time.Minute
	afterWindowDelay  = 10 * time.Minute
	reasonItemNames   = 2
)

type SuggestionEngine struct {
	suggestions repositories.SuggestionRepository
	menu        repositories.MenuItemRepository
	orders      repositories.OrderRepository
	recognizer  *PatternRecognizer
	analyzer    *BehaviorAnalyzer
	opts        Options
}

func NewSuggestionEngine(repos repositories.Repositories, recognizer *PatternRecognizer, analyzer *BehaviorAnalyzer, opts Options) *SuggestionEngine {
	return &SuggestionEngine{
		suggestions: repos.Suggestions,
		menu:        repos.MenuItems,
		orders:      repos.Orders,
		recognizer:  recognizer,
		analyzer:    analyzer,
		opts:        opts.withDefaults(),
	}
}

// GenerateSuggestion returns the user's live pending suggestion if there is
// one, otherwise builds a new one from the best pattern matching now. It
// returns nil when no pattern is confident enough or none of its items are available.
func (e *SuggestionEngine) GenerateSuggestion(ctx context.Context, userID string) (*models.AutoOrderSuggestion, error) {
	now := e.opts.now()

	pending, err := e.suggestions.PendingForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		if pending.Live(now) {
			return pending, nil
		}
		if _, err := e.suggestions.ExpireBefore(ctx, userID, now); err != nil {
			return nil, fmt.Errorf("expiring stale suggestions for user %s: %w", userID, err)
		}
	}

	matches, err := e.recognizer.MatchPatterns(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	best := matches[0]
	if best.Confidence < e.opts.Config.MinConfidence {
		e.opts.Logger.Debug("best pattern below confidence threshold", "user_id", userID, "pattern_id", best.ID, "confidence", best.Confidence)
		return nil, nil
	}

	items, err := e.buildItems(ctx, userID, best.MenuItemIDs)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	slot := models.TimeSlot("")
	if best.TimePreference != nil {
		slot = *best.TimePreference
	}
	patternID := best.ID
	suggestion := &models.AutoOrderSuggestion{
		ID:             cuid.New(),
		UserID:         userID,
		PatternID:      &patternID,
		SuggestedItems: items,
		TotalAmount:    models.ItemsTotal(items),
		SuggestedTime:  suggestedTime(now, slot),
		Reason:         suggestionReason(best, items),
		Confidence:     best.Confidence,
		Status:         models.SuggestionPending,
		ExpiresAt:      now.Add(e.opts.Config.SuggestionExpiry),
		CreatedAt:      now,
	}

	if err := e.suggestions.Create(ctx, suggestion); err != nil {
		if errors.Is(err, models.ErrPendingExists) {
			// a concurrent call won the race; its suggestion is the answer
			winner, gerr := e.suggestions.PendingForUser(ctx, userID)
			if gerr == nil && winner != nil {
				return winner, nil
			}
		}
		return nil, fmt.Errorf("saving suggestion for user %s: %w", userID, err)
	}

	e.opts.Logger.Info("created auto-order suggestion",
		"user_id", userID,
		"suggestion_id", suggestion.ID,
		"pattern_id", best.ID,
		"items", len(items),
	)
	e.opts.publish(ctx, models.TopicSuggestionEvents, models.EventSuggestionCreated, suggestion)
	return suggestion, nil
}

func (e *SuggestionEngine) buildItems(ctx context.Context, userID string, ids []string) ([]models.SuggestedItem, error) {
	menuItems, err := e.menu.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading menu items: %w", err)
	}
	quantities, err := e.analyzer.ItemQuantities(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading item quantities for user %s: %w", userID, err)
	}

	var items []models.SuggestedItem
	for _, id := range ids {
		mi, ok := menuItems[id]
		if !ok || !mi.IsAvailable {
			continue
		}
		qty := int(math.Round(quantities[id]))
		if qty < 1 {
			qty = 1
		}
		items = append(items, models.SuggestedItem{
			MenuItemID:   mi.ID,
			Name:         mi.Name,
			Quantity:     qty,
			Price:        mi.Price,
			RestaurantID: mi.RestaurantID,
		})
	}
	return items, nil
}

// suggestedTime snaps to the start of the slot's window when now precedes it,
// otherwise schedules shortly after now.
func suggestedTime(now time.Time, slot models.TimeSlot) time.Time {
	w := slot.Window()
	switch hour := now.Hour(); {
	case hour < w.Start:
		y, m, d := now.Date()
		return time.Date(y, m, d, w.Start, 0, 0, 0, now.Location())
	case hour <= w.End:
		return now.Add(insideWindowDelay)
	default:
		return now.Add(afterWindowDelay)
	}
}

func suggestionReason(p models.OrderPattern, items []models.SuggestedItem) string {
	var b strings.Builder
	b.WriteString("Suggested based on ")
	switch {
	case p.PatternType == models.PatternWeekly && p.DayOfWeek != nil:
		fmt.Fprintf(&b, "your usual %s orders", p.DayOfWeek.String())
	case p.PatternType == models.PatternDaily && p.TimePreference != nil:
		fmt.Fprintf(&b, "your daily %s orders", *p.TimePreference)
	default:
		b.WriteString("your past ordering patterns")
	}
	var names []string
	for _, item := range items {
		if len(names) == reasonItemNames {
			break
		}
		name := item.Name
		if name == "" {
			name = item.MenuItemID
		}
		names = append(names, name)
	}
	if len(names) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(names, ", "))
	}
	return b.String()
}

// loadPending fetches a suggestion that must still be PENDING and live. A
// pending suggestion found past its expiry is marked EXPIRED on the way out.
func (e *SuggestionEngine) loadPending(ctx context.Context, id string, to models.SuggestionStatus, now time.Time) (*models.AutoOrderSuggestion, error) {
	s, err := e.suggestions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.Status.CanTransitionTo(to) {
		return nil, &models.TransitionError{Entity: "suggestion", ID: id, From: string(s.Status), To: string(to)}
	}
	if !s.Live(now) {
		s.Status = models.SuggestionExpired
		if err := e.suggestions.Update(ctx, s, models.SuggestionPending); err != nil {
			e.opts.Logger.Warn("failed to expire suggestion", "suggestion_id", id, "error", err)
		}
		return nil, &models.TransitionError{Entity: "suggestion", ID: id, From: string(models.SuggestionExpired), To: string(to)}
	}
	return s, nil
}

// AcceptSuggestion confirms a pending suggestion, optionally applying
// modifications first, and materialises it as an order.
func (e *SuggestionEngine) AcceptSuggestion(ctx context.Context, id string, mods *models.SuggestionModification) (*models.Order, error) {
	now := e.opts.now()
	status := models.SuggestionAccepted
	if mods != nil && !mods.Empty() {
		status = models.SuggestionModified
	}

	s, err := e.loadPending(ctx, id, status, now)
	if err != nil {
		return nil, err
	}

	original := *s
	items := s.SuggestedItems
	if status == models.SuggestionModified {
		if items, err = applyModification(items, *mods); err != nil {
			return nil, err
		}
		raw, err := json.Marshal(mods)
		if err != nil {
			return nil, err
		}
		response := string(raw)
		s.UserResponse = &response
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("suggestion %s has no items to order: %w", id, models.ErrInvalidInput)
	}

	s.Status = status
	s.SuggestedItems = items
	s.TotalAmount = models.ItemsTotal(items)
	s.RespondedAt = &now
	if err := e.suggestions.Update(ctx, s, models.SuggestionPending); err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:           cuid.New(),
		UserID:       s.UserID,
		RestaurantID: items[0].RestaurantID,
		Status:       models.OrderStatusPending,
		OrderType:    models.OrderTypeRegular,
		TotalAmount:  s.TotalAmount,
		CreatedAt:    now,
	}
	for _, item := range items {
		order.Items = append(order.Items, models.OrderItem{
			OrderID:    order.ID,
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			Price:      item.Price,
		})
	}
	if err := e.orders.CreateOrder(ctx, order); err != nil {
		// restore PENDING
		if rerr := e.suggestions.Update(ctx, &original, status); rerr != nil {
			e.opts.Logger.Error("failed to restore suggestion after order failure", "suggestion_id", id, "error", rerr)
		}
		return nil, fmt.Errorf("creating order from suggestion %s: %w", id, err)
	}

	if s.PatternID != nil {
		if err := e.recognizer.TriggerPattern(ctx, *s.PatternID); err != nil {
			e.opts.Logger.Warn("failed to mark pattern triggered", "pattern_id", *s.PatternID, "error", err)
		}
	}

	e.opts.Logger.Info("accepted suggestion", "suggestion_id", id, "status", status, "order_id", order.ID)
	e.opts.publish(ctx, models.TopicSuggestionEvents, models.EventSuggestionResponded, s)
	return order, nil
}

func (e *SuggestionEngine) RejectSuggestion(ctx context.Context, id, reason string) (*models.AutoOrderSuggestion, error) {
	now := e.opts.now()
	s, err := e.loadPending(ctx, id, models.SuggestionRejected, now)
	if err != nil {
		return nil, err
	}
	s.Status = models.SuggestionRejected
	s.RespondedAt = &now
	if reason != "" {
		s.UserResponse = &reason
	}
	if err := e.suggestions.Update(ctx, s, models.SuggestionPending); err != nil {
		return nil, err
	}
	e.opts.Logger.Info("rejected suggestion", "suggestion_id", id)
	e.opts.publish(ctx, models.TopicSuggestionEvents, models.EventSuggestionResponded, s)
	return s, nil
}

// ModifySuggestion edits the item list of a pending suggestion in place and
// recomputes its total. The status stays PENDING.
func (e *SuggestionEngine) ModifySuggestion(ctx context.Context, id string, mods models.SuggestionModification) (*models.AutoOrderSuggestion, error) {
	s, err := e.loadPending(ctx, id, models.SuggestionModified, e.opts.now())
	if err != nil {
		return nil, err
	}
	items, err := applyModification(s.SuggestedItems, mods)
	if err != nil {
		return nil, err
	}
	s.SuggestedItems = items
	s.TotalAmount = models.ItemsTotal(items)
	if err := e.suggestions.Update(ctx, s, models.SuggestionPending); err != nil {
		return nil, err
	}
	return s, nil
}

// applyModification adds, then removes, then requantifies items. Adding an
// item already present increases its quantity, and removing an item drops
// its whole line.
func applyModification(items []models.SuggestedItem, mods models.SuggestionModification) ([]models.SuggestedItem, error) {
	out := append([]models.SuggestedItem(nil), items...)
	index := func(id string) int {
		for i := range out {
			if out[i].MenuItemID == id {
				return i
			}
		}
		return -1
	}

	for _, add := range mods.Add {
		if add.MenuItemID == "" || add.Quantity < 1 {
			return nil, fmt.Errorf("add %q with quantity %d: %w", add.MenuItemID, add.Quantity, models.ErrInvalidInput)
		}
		if i := index(add.MenuItemID); i >= 0 {
			out[i].Quantity += add.Quantity
			continue
		}
		out = append(out, add)
	}

	if len(mods.Remove) > 0 {
		remove := make(map[string]bool, len(mods.Remove))
		for _, id := range mods.Remove {
			remove[id] = true
		}
		kept := out[:0]
		for _, item := range out {
			if !remove[item.MenuItemID] {
				kept = append(kept, item)
			}
		}
		out = kept
	}

	for _, u := range mods.UpdateQuantity {
		if u.Quantity < 1 {
			return nil, fmt.Errorf("quantity %d for %q: %w", u.Quantity, u.MenuItemID, models.ErrInvalidInput)
		}
		if i := index(u.MenuItemID); i >= 0 {
			out[i].Quantity = u.Quantity
		}
	}
	return out, nil
}

// CleanupExpiredSuggestions expires every pending suggestion past its expiry.
func (e *SuggestionEngine) CleanupExpiredSuggestions(ctx context.Context) (int, error) {
	n, err := e.suggestions.ExpireBefore(ctx, "", e.opts.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		e.opts.Logger.Info("expired stale suggestions", "count", n)
	}
	return n, nil
}

// GetUserSuggestions returns the user's latest suggestions, optionally filtered by status.
func (e *SuggestionEngine) GetUserSuggestions(ctx context.Context, userID string, status *models.SuggestionStatus) ([]models.AutoOrderSuggestion, error) {
	return e.suggestions.List(ctx, userID, status, models.DefaultSuggestionListLimit)
}

// GetSuggestionStats counts suggestions by status for one user, or all users
// when userID is empty.
func (e *SuggestionEngine) GetSuggestionStats(ctx context.Context, userID string) (models.SuggestionStats, error) {
	counts, err := e.suggestions.CountByStatus(ctx, userID)
	if err != nil {
		return models.SuggestionStats{}, err
	}
	stats := models.SuggestionStats{ByStatus: counts}
	for _, n := range counts {
		stats.Total += n
	}
	if stats.Total > 0 {
		taken := counts[models.SuggestionAccepted] + counts[models.SuggestionModified]
		stats.AcceptanceRate = round2(float64(taken) / float64(stats.Total) * 100)
	}
	return stats, nil
}
