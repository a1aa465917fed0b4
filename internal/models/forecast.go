package models

import "time"

// ForecastKey identifies one forecast row. ForecastDate is a calendar date at midnight.
type ForecastKey struct {
	RestaurantID string
	MenuItemID   string
	ForecastDate time.Time
}

type ForecastFactors struct {
	DayOfWeek          time.Weekday `json:"day_of_week"`
	HistoricalAvg      float64      `json:"historical_avg"`
	DaySpecificAvg     float64      `json:"day_specific_avg"`
	Trend              string       `json:"trend"`
	TrendMultiplier    float64      `json:"trend_multiplier"`
	SeasonalAdjustment float64      `json:"seasonal_adjustment"`
}

type QuantityForecast struct {
	ID           string          `json:"id"`
	RestaurantID string          `json:"restaurant_id"`
	MenuItemID   string          `json:"menu_item_id"`
	ItemName     string          `json:"item_name,omitempty"`
	ForecastDate time.Time       `json:"forecast_date"`
	PredictedQty int             `json:"predicted_qty"`
	ActualQty    *int            `json:"actual_qty,omitempty"`
	Confidence   float64         `json:"confidence"`
	Factors      ForecastFactors `json:"factors"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (f QuantityForecast) Key() ForecastKey {
	return ForecastKey{RestaurantID: f.RestaurantID, MenuItemID: f.MenuItemID, ForecastDate: f.ForecastDate}
}

// AccuracyReport is the result of a backtest. HasData is false when no actuals
// have been recorded for the window yet.
type AccuracyReport struct {
	HasData      bool      `json:"has_data"`
	Accuracy     float64   `json:"accuracy"`
	Samples      int       `json:"samples"`
	AverageError float64   `json:"average_error"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
}
