package memory

import (
	"sync"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/chrisdamba/foodpredict/internal/repositories"
)

// Store keeps every entity in process memory behind a single lock. It backs
// tests and the simulate command.
type Store struct {
	mu sync.RWMutex

	orders      []models.Order
	users       map[string]*models.User
	restaurants map[string]*models.Restaurant
	menuItems   map[string]*models.MenuItem
	profiles    map[models.BehaviorKey]models.BehaviorProfile
	patterns    map[string]models.OrderPattern
	suggestions map[string]models.AutoOrderSuggestion
	forecasts   map[forecastKey]models.QuantityForecast
	schedules   map[scheduleKey]models.DeliverySchedule
	reports     map[string]models.DemandForecastReport
}

func NewStore() *Store {
	return &Store{
		users:       make(map[string]*models.User),
		restaurants: make(map[string]*models.Restaurant),
		menuItems:   make(map[string]*models.MenuItem),
		profiles:    make(map[models.BehaviorKey]models.BehaviorProfile),
		patterns:    make(map[string]models.OrderPattern),
		suggestions: make(map[string]models.AutoOrderSuggestion),
		forecasts:   make(map[forecastKey]models.QuantityForecast),
		schedules:   make(map[scheduleKey]models.DeliverySchedule),
		reports:     make(map[string]models.DemandForecastReport),
	}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() repositories.Repositories {
	return repositories.Repositories{
		Orders:      &OrderRepository{s: s},
		Users:       &UserRepository{s: s},
		Restaurants: &RestaurantRepository{s: s},
		MenuItems:   &MenuItemRepository{s: s},
		Profiles:    &BehaviorProfileRepository{s: s},
		Patterns:    &PatternRepository{s: s},
		Suggestions: &SuggestionRepository{s: s},
		Forecasts:   &ForecastRepository{s: s},
		Schedules:   &ScheduleRepository{s: s},
		Reports:     &ReportRepository{s: s},
	}
}

// time.Time is not a reliable map key across locations, so dated keys are
// normalised to their calendar date.
type forecastKey struct {
	restaurantID string
	menuItemID   string
	date         string
}

type scheduleKey struct {
	date     string
	timeSlot string
}

func toForecastKey(k models.ForecastKey) forecastKey {
	return forecastKey{restaurantID: k.RestaurantID, menuItemID: k.MenuItemID, date: k.ForecastDate.Format(models.DateLayout)}
}

func toScheduleKey(k models.ScheduleKey) scheduleKey {
	return scheduleKey{date: k.Date.Format(models.DateLayout), timeSlot: k.TimeSlot}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
