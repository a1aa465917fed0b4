package models

import "time"

type OrderPattern struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user_id"`
	PatternType    PatternType   `json:"pattern_type"`
	DayOfWeek      *time.Weekday `json:"day_of_week"`
	TimePreference *TimeSlot     `json:"time_preference"`
	RestaurantID   *string       `json:"restaurant_id"`
	MenuItemIDs    []string      `json:"menu_item_ids"`
	Frequency      int           `json:"frequency"`
	Confidence     float64       `json:"confidence"`
	IsActive       bool          `json:"is_active"`
	LastTriggered  *time.Time    `json:"last_triggered,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Matches reports whether the pattern applies to the given day and slot.
func (p OrderPattern) Matches(day time.Weekday, slot TimeSlot) bool {
	if !p.IsActive {
		return false
	}
	if p.TimePreference != nil && *p.TimePreference != slot {
		return false
	}
	if p.DayOfWeek != nil {
		return *p.DayOfWeek == day
	}
	return p.TimePreference != nil && *p.TimePreference == slot
}
