package simulator

import "github.com/chrisdamba/foodpredict/internal/models"

// Summary reports what a simulation run did.
type Summary struct {
	EventsProcessed int `json:"events_processed"`
	FailedEvents    int `json:"failed_events"`
	OrdersPlaced    int `json:"orders_placed"`

	BehaviorRefreshes  int `json:"behavior_refreshes"`
	PatternsDiscovered int `json:"patterns_discovered"`
	ForecastsCreated   int `json:"forecasts_created"`
	SchedulesPredicted int `json:"schedules_predicted"`
	RoutesPlanned      int `json:"routes_planned"`

	SuggestionsCreated   int `json:"suggestions_created"`
	SuggestionsAccepted  int `json:"suggestions_accepted"`
	SuggestionsModified  int `json:"suggestions_modified"`
	SuggestionsRejected  int `json:"suggestions_rejected"`
	SuggestionsExpired   int `json:"suggestions_expired"`
	ReportsGenerated     int `json:"reports_generated"`
	ReportsCounterOffers int `json:"reports_counter_offers"`

	ForecastAccuracy float64                     `json:"forecast_accuracy"`
	ScheduleAccuracy float64                     `json:"schedule_accuracy"`
	Suggestions      models.SuggestionStats      `json:"suggestion_stats"`
	Negotiations     *models.NegotiationsSummary `json:"negotiations"`
}
