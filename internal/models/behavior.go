package models

import "time"

type BehaviorKey struct {
	UserID    string
	DayOfWeek time.Weekday
	TimeSlot  TimeSlot
}

// BehaviorProfile summarises a user's ordering in one (day of week, time slot) cell.
type BehaviorProfile struct {
	ID                string       `json:"id"`
	UserID            string       `json:"user_id"`
	DayOfWeek         time.Weekday `json:"day_of_week"`
	TimeSlot          TimeSlot     `json:"time_slot"`
	AverageOrderValue float64      `json:"average_order_value"`
	OrderFrequency    float64      `json:"order_frequency"`
	PreferredCuisines []string     `json:"preferred_cuisines"`
	PreferredItems    []string     `json:"preferred_items"`
	TopItems          []ItemCount  `json:"top_items"`
	TotalOrders       int          `json:"total_orders"`
	LastOrderDate     time.Time    `json:"last_order_date"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

func (p BehaviorProfile) Key() BehaviorKey {
	return BehaviorKey{UserID: p.UserID, DayOfWeek: p.DayOfWeek, TimeSlot: p.TimeSlot}
}

type ItemCount struct {
	MenuItemID string `json:"menu_item_id"`
	Count      int    `json:"count"`
}

type CuisinePreference struct {
	Cuisine    string  `json:"cuisine"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type ItemPreference struct {
	MenuItemID    string `json:"menu_item_id"`
	Name          string `json:"name,omitempty"`
	Count         int    `json:"count"`
	TotalQuantity int    `json:"total_quantity"`
}

// BehaviorAnalysis is the result of one analysis run for a user.
type BehaviorAnalysis struct {
	UserID            string              `json:"user_id"`
	TotalOrders       int                 `json:"total_orders"`
	AverageOrderValue float64             `json:"average_order_value"`
	OrderFrequency    float64             `json:"order_frequency"`
	PreferredCuisines []CuisinePreference `json:"preferred_cuisines"`
	PreferredItems    []ItemPreference    `json:"preferred_items"`
	Profiles          []BehaviorProfile   `json:"profiles"`
}

type BatchAnalysisSummary struct {
	TotalUsers    int       `json:"total_users"`
	TotalAnalyzed int       `json:"total_analyzed"`
	Failed        int       `json:"failed"`
	Timestamp     time.Time `json:"timestamp"`
}
