package simulator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/chrisdamba/foodpredict/internal/factories"
	"github.com/chrisdamba/foodpredict/internal/logger"
	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/chrisdamba/foodpredict/internal/predictive"
	"github.com/chrisdamba/foodpredict/internal/repositories"
)

// Progress is advanced once per simulated day.
type Progress interface {
	Add(num int) error
}

// Simulator replays generated order traffic day by day against a store and
// runs every predictive service on the simulated clock.
type Simulator struct {
	Config      *models.Config
	CurrentTime time.Time
	Rng         *rand.Rand
	EventQueue  *models.EventQueue

	repos      repositories.Repositories
	log        *logger.Logger
	analyzer   *predictive.BehaviorAnalyzer
	recognizer *predictive.PatternRecognizer
	forecaster *predictive.QuantityForecaster
	engine     *predictive.SuggestionEngine
	scheduler  *predictive.DeliveryScheduler
	reporter   *predictive.DemandReporter

	dataset  *factories.Dataset
	homes    map[string]models.Location
	recent   []models.Order
	summary  Summary
	progress Progress
}

func NewSimulator(config *models.Config, repos repositories.Repositories, events predictive.Publisher, log *logger.Logger) (*Simulator, error) {
	loc, err := config.Location()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &Simulator{
		Config:     config,
		Rng:        rand.New(rand.NewSource(int64(config.Seed.Seed))),
		EventQueue: models.NewEventQueue(),
		repos:      repos,
		log:        log,
	}
	opts := predictive.Options{
		Config:   config.Predictive,
		Logger:   log,
		Now:      func() time.Time { return s.CurrentTime },
		Location: loc,
		Events:   events,
	}
	s.analyzer = predictive.NewBehaviorAnalyzer(repos, opts)
	s.recognizer = predictive.NewPatternRecognizer(repos, opts)
	s.forecaster = predictive.NewQuantityForecaster(repos, opts)
	s.engine = predictive.NewSuggestionEngine(repos, s.recognizer, s.analyzer, opts)
	s.scheduler = predictive.NewDeliveryScheduler(repos, opts)
	s.reporter = predictive.NewDemandReporter(repos, s.forecaster, opts)
	return s, nil
}

// Run seeds history ending at start, then simulates days days from start.
func (s *Simulator) Run(ctx context.Context, start time.Time, days int, progress Progress) (*Summary, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be positive: %w", models.ErrInvalidInput)
	}
	loc, err := s.Config.Location()
	if err != nil {
		return nil, err
	}
	start = models.DateOf(start.In(loc))
	end := start.AddDate(0, 0, days)
	s.progress = progress

	if err := s.initializeData(ctx, start, end, days); err != nil {
		return nil, err
	}
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		s.scheduleDay(day, day.Equal(start))
	}

	s.log.Info("simulation starts", "from", start.Format(time.RFC3339), "to", end.Format(time.RFC3339), "events", s.EventQueue.Len())
	for {
		event := s.EventQueue.Dequeue()
		if event == nil || !event.Time.Before(end) {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.CurrentTime = event.Time
		if err := s.processEvent(ctx, event); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.log.Warn("simulation event failed", "event", event.Type, "at", event.Time.Format(time.RFC3339), "error", err)
			s.summary.FailedEvents++
		}
		s.summary.EventsProcessed++
	}
	s.CurrentTime = end

	if err := s.finish(ctx, start, end, days); err != nil {
		return nil, err
	}
	s.log.Info("simulation completed", "events", s.summary.EventsProcessed, "orders", s.summary.OrdersPlaced)
	return &s.summary, nil
}

// initializeData generates history up to end, stores what precedes start
// and queues the rest as PlaceOrder events.
func (s *Simulator) initializeData(ctx context.Context, start, end time.Time, days int) error {
	seedCfg := s.Config.Seed
	seedCfg.HistoryDays += days
	ds, err := factories.NewGenerator(seedCfg).Generate(end, 0)
	if err != nil {
		return err
	}
	s.dataset = ds
	s.homes = make(map[string]models.Location, len(ds.Users))
	for _, u := range ds.Users {
		s.homes[u.ID] = u.Location
	}

	history := &factories.Dataset{Restaurants: ds.Restaurants, MenuItems: ds.MenuItems, Users: ds.Users}
	for i := range ds.Orders {
		o := ds.Orders[i]
		if o.CreatedAt.Before(start) {
			history.Orders = append(history.Orders, o)
			continue
		}
		s.EventQueue.Enqueue(&models.Event{Time: o.CreatedAt, Type: models.EventPlaceOrder, Data: &o})
	}
	s.CurrentTime = start
	if err := history.Load(ctx, s.repos, 500, nil); err != nil {
		return err
	}
	s.log.Info("seeded history", "restaurants", len(ds.Restaurants), "users", len(ds.Users), "orders", len(history.Orders))
	return nil
}

func (s *Simulator) scheduleDay(day time.Time, first bool) {
	at := func(hour, minute int) time.Time {
		return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	}
	s.EventQueue.Enqueue(&models.Event{Time: at(5, 0), Type: models.EventRefreshInsights})
	s.EventQueue.Enqueue(&models.Event{Time: at(5, 30), Type: models.EventForecastDemand})
	if first || day.Weekday() == time.Monday {
		s.EventQueue.Enqueue(&models.Event{Time: at(7, 0), Type: models.EventGenerateReports})
	}
	s.EventQueue.Enqueue(&models.Event{Time: at(11, 0), Type: models.EventSuggestOrders})
	s.EventQueue.Enqueue(&models.Event{Time: at(18, 0), Type: models.EventSuggestOrders})
	for _, hm := range [][2]int{{12, 30}, {13, 30}, {19, 30}, {20, 30}} {
		s.EventQueue.Enqueue(&models.Event{Time: at(hm[0], hm[1]), Type: models.EventDispatchRoutes})
	}
	s.EventQueue.Enqueue(&models.Event{Time: at(23, 59), Type: models.EventCloseDay, Data: day})
}

func (s *Simulator) processEvent(ctx context.Context, event *models.Event) error {
	switch event.Type {
	case models.EventPlaceOrder:
		return s.handlePlaceOrder(ctx, event.Data.(*models.Order))
	case models.EventRefreshInsights:
		return s.handleRefreshInsights(ctx)
	case models.EventForecastDemand:
		return s.handleForecastDemand(ctx)
	case models.EventGenerateReports:
		return s.handleGenerateReports(ctx)
	case models.EventSuggestOrders:
		return s.handleSuggestOrders(ctx)
	case models.EventRespondSuggestion:
		return s.handleRespondSuggestion(ctx, event.Data.(*models.AutoOrderSuggestion))
	case models.EventDispatchRoutes:
		return s.handleDispatchRoutes()
	case models.EventRespondReport:
		return s.handleRespondReport(ctx, event.Data.(*models.DemandForecastReport))
	case models.EventCloseDay:
		return s.handleCloseDay(ctx, event.Data.(time.Time))
	}
	return fmt.Errorf("unknown event type: %s", event.Type)
}

func (s *Simulator) finish(ctx context.Context, start, end time.Time, days int) error {
	stats, err := s.engine.GetSuggestionStats(ctx, "")
	if err != nil {
		return err
	}
	s.summary.Suggestions = stats

	negotiations, err := s.reporter.GetNegotiationsSummary(ctx)
	if err != nil {
		return err
	}
	s.summary.Negotiations = negotiations

	var total float64
	var counted int
	for _, r := range s.dataset.Restaurants {
		acc, err := s.forecaster.EvaluateForecastAccuracy(ctx, r.ID, days)
		if err != nil {
			return err
		}
		if acc.HasData {
			total += acc.Accuracy
			counted++
		}
	}
	if counted > 0 {
		s.summary.ForecastAccuracy = total / float64(counted)
	}

	schedule, err := s.scheduler.EvaluateAccuracy(ctx, start, end.AddDate(0, 0, -1))
	if err != nil {
		return err
	}
	s.summary.ScheduleAccuracy = schedule.Accuracy
	return nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	return err
}
