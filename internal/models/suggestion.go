package models

import "time"

type SuggestedItem struct {
	MenuItemID   string  `json:"menu_item_id"`
	Name         string  `json:"name,omitempty"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	RestaurantID string  `json:"restaurant_id"`
}

type AutoOrderSuggestion struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	PatternID      *string          `json:"pattern_id,omitempty"`
	SuggestedItems []SuggestedItem  `json:"suggested_items"`
	TotalAmount    float64          `json:"total_amount"`
	SuggestedTime  time.Time        `json:"suggested_time"`
	Reason         string           `json:"reason"`
	Confidence     float64          `json:"confidence"`
	Status         SuggestionStatus `json:"status"`
	ExpiresAt      time.Time        `json:"expires_at"`
	UserResponse   *string          `json:"user_response,omitempty"`
	RespondedAt    *time.Time       `json:"responded_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Live reports whether the suggestion is pending and not yet expired at now.
func (s AutoOrderSuggestion) Live(now time.Time) bool {
	return s.Status == SuggestionPending && s.ExpiresAt.After(now)
}

// ItemsTotal sums price × quantity in list order.
func ItemsTotal(items []SuggestedItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

type QuantityUpdate struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

type SuggestionModification struct {
	Add            []SuggestedItem  `json:"add,omitempty"`
	Remove         []string         `json:"remove,omitempty"`
	UpdateQuantity []QuantityUpdate `json:"update_quantity,omitempty"`
}

type SuggestionStats struct {
	Total          int                      `json:"total"`
	ByStatus       map[SuggestionStatus]int `json:"by_status"`
	AcceptanceRate float64                  `json:"acceptance_rate"`
}

func (m SuggestionModification) Empty() bool {
	return len(m.Add) == 0 && len(m.Remove) == 0 && len(m.UpdateQuantity) == 0
}
