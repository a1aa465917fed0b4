package models

import "time"

type DiscountTier struct {
	MinOrders   int     `json:"min_orders" mapstructure:"min_orders"`
	MinRevenue  float64 `json:"min_revenue" mapstructure:"min_revenue"`
	DiscountPct float64 `json:"discount_pct" mapstructure:"discount_pct"`
}

type ItemForecast struct {
	MenuItemID       string  `json:"menu_item_id"`
	Name             string  `json:"name"`
	PredictedQty     int     `json:"predicted_qty"`
	PredictedRevenue float64 `json:"predicted_revenue"`
	AvgConfidence    float64 `json:"avg_confidence"`
	UnitPrice        float64 `json:"unit_price"`
}

type HistoricalComparison struct {
	PreviousPeriodOrders  int     `json:"previous_period_orders"`
	PreviousPeriodRevenue float64 `json:"previous_period_revenue"`
	CurrentPeriodOrders   int     `json:"current_period_orders"`
	CurrentPeriodRevenue  float64 `json:"current_period_revenue"`
	GrowthRate            float64 `json:"growth_rate"`
}

type RestaurantResponse struct {
	Accepted     bool      `json:"accepted"`
	CounterOffer *float64  `json:"counter_offer,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	RespondedAt  time.Time `json:"responded_at"`
}

// DemandForecastReport freezes ItemForecasts at generation time.
type DemandForecastReport struct {
	ID                    string               `json:"id"`
	RestaurantID          string               `json:"restaurant_id"`
	ReportPeriod          ReportPeriod         `json:"report_period"`
	StartDate             time.Time            `json:"start_date"`
	EndDate               time.Time            `json:"end_date"`
	TotalPredictedOrders  int                  `json:"total_predicted_orders"`
	TotalPredictedRevenue float64              `json:"total_predicted_revenue"`
	ItemForecasts         []ItemForecast       `json:"item_forecasts"`
	BulkDiscountEligible  bool                 `json:"bulk_discount_eligible"`
	SuggestedDiscount     float64              `json:"suggested_discount"`
	Status                ReportStatus         `json:"status"`
	RestaurantResponse    *RestaurantResponse  `json:"restaurant_response,omitempty"`
	SentToRestaurant      bool                 `json:"sent_to_restaurant"`
	HistoricalComparison  HistoricalComparison `json:"historical_comparison"`
	CreatedAt             time.Time            `json:"created_at"`
	UpdatedAt             time.Time            `json:"updated_at"`
}

type ItemComparison struct {
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	Predicted  int     `json:"predicted"`
	Actual     int     `json:"actual"`
	Accuracy   float64 `json:"accuracy"`
}

// Comparison is the backtest of a report. Complete is false while the
// report window has not yet elapsed; the remaining fields are then empty.
// PredictedOrders and ActualOrders count item units, ActualOrderCount orders.
type Comparison struct {
	ReportID         string           `json:"report_id"`
	Complete         bool             `json:"complete"`
	PredictedOrders  int              `json:"predicted_orders"`
	PredictedRevenue float64          `json:"predicted_revenue"`
	ActualOrders     int              `json:"actual_orders"`
	ActualOrderCount int              `json:"actual_order_count"`
	ActualRevenue    float64          `json:"actual_revenue"`
	OrdersAccuracy   float64          `json:"orders_accuracy"`
	RevenueAccuracy  float64          `json:"revenue_accuracy"`
	ItemComparison   []ItemComparison `json:"item_comparison"`
}

type AgreedDiscount struct {
	ReportID         string  `json:"report_id"`
	RestaurantID     string  `json:"restaurant_id"`
	RestaurantName   string  `json:"restaurant_name"`
	Discount         float64 `json:"discount"`
	EstimatedSavings float64 `json:"estimated_savings"`
}

type NegotiationsSummary struct {
	TotalReports          int                  `json:"total_reports"`
	ByStatus              map[ReportStatus]int `json:"by_status"`
	TotalPotentialSavings float64              `json:"total_potential_savings"`
	AgreedDiscounts       []AgreedDiscount     `json:"agreed_discounts"`
}
