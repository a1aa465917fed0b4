package memory

import (
	"context"
	"sort"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
)

type BehaviorProfileRepository struct{ s *Store }

func (r *BehaviorProfileRepository) UpsertBatch(ctx context.Context, profiles []models.BehaviorProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range profiles {
		if existing, ok := r.s.profiles[p.Key()]; ok {
			p.ID = existing.ID
		}
		p.PreferredCuisines = cloneStrings(p.PreferredCuisines)
		p.PreferredItems = cloneStrings(p.PreferredItems)
		p.TopItems = append([]models.ItemCount(nil), p.TopItems...)
		r.s.profiles[p.Key()] = p
	}
	return nil
}

func (r *BehaviorProfileRepository) ListByUser(ctx context.Context, userID string) ([]models.BehaviorProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.BehaviorProfile
	for k, p := range r.s.profiles {
		if k.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

type PatternRepository struct{ s *Store }

func (r *PatternRepository) ReplaceActive(ctx context.Context, userID string, patterns []models.OrderPattern) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, p := range r.s.patterns {
		if p.UserID == userID && p.IsActive {
			delete(r.s.patterns, id)
		}
	}
	for _, p := range patterns {
		p.MenuItemIDs = cloneStrings(p.MenuItemIDs)
		r.s.patterns[p.ID] = p
	}
	return nil
}

func (r *PatternRepository) ListActive(ctx context.Context, userID string) ([]models.OrderPattern, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.OrderPattern
	for _, p := range r.s.patterns {
		if p.UserID == userID && p.IsActive {
			p.MenuItemIDs = cloneStrings(p.MenuItemIDs)
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *PatternRepository) MarkTriggered(ctx context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.patterns[id]
	if !ok {
		return models.NotFound("pattern", id)
	}
	p.LastTriggered = &at
	r.s.patterns[id] = p
	return nil
}

type SuggestionRepository struct{ s *Store }

func cloneSuggestion(s models.AutoOrderSuggestion) models.AutoOrderSuggestion {
	s.SuggestedItems = append([]models.SuggestedItem(nil), s.SuggestedItems...)
	return s
}

func (r *SuggestionRepository) Create(ctx context.Context, suggestion *models.AutoOrderSuggestion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if suggestion.Status == models.SuggestionPending {
		for _, existing := range r.s.suggestions {
			if existing.UserID == suggestion.UserID && existing.Status == models.SuggestionPending {
				return models.ErrPendingExists
			}
		}
	}
	r.s.suggestions[suggestion.ID] = cloneSuggestion(*suggestion)
	return nil
}

func (r *SuggestionRepository) Get(ctx context.Context, id string) (*models.AutoOrderSuggestion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	s, ok := r.s.suggestions[id]
	if !ok {
		return nil, models.NotFound("suggestion", id)
	}
	s = cloneSuggestion(s)
	return &s, nil
}

func (r *SuggestionRepository) Update(ctx context.Context, suggestion *models.AutoOrderSuggestion, expected models.SuggestionStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.suggestions[suggestion.ID]
	if !ok {
		return models.NotFound("suggestion", suggestion.ID)
	}
	if current.Status != expected {
		return &models.TransitionError{Entity: "suggestion", ID: suggestion.ID, From: string(current.Status), To: string(suggestion.Status)}
	}
	r.s.suggestions[suggestion.ID] = cloneSuggestion(*suggestion)
	return nil
}

func (r *SuggestionRepository) PendingForUser(ctx context.Context, userID string) (*models.AutoOrderSuggestion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, s := range r.s.suggestions {
		if s.UserID == userID && s.Status == models.SuggestionPending {
			s = cloneSuggestion(s)
			return &s, nil
		}
	}
	return nil, nil
}

func (r *SuggestionRepository) ExpireBefore(ctx context.Context, userID string, now time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for id, s := range r.s.suggestions {
		if userID != "" && s.UserID != userID {
			continue
		}
		if s.Status == models.SuggestionPending && !s.ExpiresAt.After(now) {
			s.Status = models.SuggestionExpired
			r.s.suggestions[id] = s
			n++
		}
	}
	return n, nil
}

func (r *SuggestionRepository) List(ctx context.Context, userID string, status *models.SuggestionStatus, limit int) ([]models.AutoOrderSuggestion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.AutoOrderSuggestion
	for _, s := range r.s.suggestions {
		if s.UserID != userID || (status != nil && s.Status != *status) {
			continue
		}
		out = append(out, cloneSuggestion(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *SuggestionRepository) CountByStatus(ctx context.Context, userID string) (map[models.SuggestionStatus]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[models.SuggestionStatus]int)
	for _, s := range r.s.suggestions {
		if userID == "" || s.UserID == userID {
			counts[s.Status]++
		}
	}
	return counts, nil
}

type ForecastRepository struct{ s *Store }

func (r *ForecastRepository) UpsertBatch(ctx context.Context, forecasts []models.QuantityForecast) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, f := range forecasts {
		key := toForecastKey(f.Key())
		if existing, ok := r.s.forecasts[key]; ok {
			f.ID = existing.ID
			f.CreatedAt = existing.CreatedAt
			if existing.ActualQty != nil {
				f.ActualQty = existing.ActualQty
			}
		}
		r.s.forecasts[key] = f
	}
	return nil
}

func (r *ForecastRepository) Range(ctx context.Context, restaurantID string, from, to time.Time) ([]models.QuantityForecast, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.QuantityForecast
	for _, f := range r.s.forecasts {
		if f.RestaurantID == restaurantID && inWindow(f.ForecastDate, from, to) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ForecastDate.Equal(out[j].ForecastDate) {
			return out[i].ForecastDate.Before(out[j].ForecastDate)
		}
		return out[i].MenuItemID < out[j].MenuItemID
	})
	return out, nil
}

func (r *ForecastRepository) SetActual(ctx context.Context, key models.ForecastKey, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := toForecastKey(key)
	f, ok := r.s.forecasts[k]
	if !ok {
		return models.NotFound("forecast", key.MenuItemID+"@"+k.date)
	}
	f.ActualQty = &qty
	r.s.forecasts[k] = f
	return nil
}

type ScheduleRepository struct{ s *Store }

func (r *ScheduleRepository) UpsertBatch(ctx context.Context, schedules []models.DeliverySchedule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sc := range schedules {
		key := toScheduleKey(sc.Key())
		if existing, ok := r.s.schedules[key]; ok {
			sc.ID = existing.ID
			if existing.ActualOrders != nil {
				sc.ActualOrders = existing.ActualOrders
			}
		}
		r.s.schedules[key] = sc
	}
	return nil
}

func (r *ScheduleRepository) Range(ctx context.Context, from, to time.Time) ([]models.DeliverySchedule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.DeliverySchedule
	for _, sc := range r.s.schedules {
		if inWindow(sc.Date, from, to) {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].TimeSlot < out[j].TimeSlot
	})
	return out, nil
}

func (r *ScheduleRepository) SetActual(ctx context.Context, key models.ScheduleKey, orders int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := toScheduleKey(key)
	sc, ok := r.s.schedules[k]
	if !ok {
		return models.NotFound("schedule", k.date+" "+k.timeSlot)
	}
	sc.ActualOrders = &orders
	r.s.schedules[k] = sc
	return nil
}

type ReportRepository struct{ s *Store }

func cloneReport(r models.DemandForecastReport) models.DemandForecastReport {
	r.ItemForecasts = append([]models.ItemForecast(nil), r.ItemForecasts...)
	if r.RestaurantResponse != nil {
		resp := *r.RestaurantResponse
		r.RestaurantResponse = &resp
	}
	return r
}

func (r *ReportRepository) Create(ctx context.Context, report *models.DemandForecastReport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.reports[report.ID] = cloneReport(*report)
	return nil
}

func (r *ReportRepository) Get(ctx context.Context, id string) (*models.DemandForecastReport, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rep, ok := r.s.reports[id]
	if !ok {
		return nil, models.NotFound("report", id)
	}
	rep = cloneReport(rep)
	return &rep, nil
}

func (r *ReportRepository) Update(ctx context.Context, report *models.DemandForecastReport, expected models.ReportStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.reports[report.ID]
	if !ok {
		return models.NotFound("report", report.ID)
	}
	if current.Status != expected {
		return &models.TransitionError{Entity: "report", ID: report.ID, From: string(current.Status), To: string(report.Status)}
	}
	r.s.reports[report.ID] = cloneReport(*report)
	return nil
}

func (r *ReportRepository) List(ctx context.Context, restaurantID string, status *models.ReportStatus, limit int) ([]models.DemandForecastReport, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.DemandForecastReport
	for _, rep := range r.s.reports {
		if restaurantID != "" && rep.RestaurantID != restaurantID {
			continue
		}
		if status != nil && rep.Status != *status {
			continue
		}
		out = append(out, cloneReport(rep))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
