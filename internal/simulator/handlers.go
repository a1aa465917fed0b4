package simulator

import (
	"context"
	"errors"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
)

const (
	routeWindow    = time.Hour
	reportResponse = 24 * time.Hour
)

func (s *Simulator) handlePlaceOrder(ctx context.Context, order *models.Order) error {
	if err := s.repos.Orders.CreateOrder(ctx, order); err != nil {
		return err
	}
	s.summary.OrdersPlaced++
	s.recent = append(s.recent, *order)
	return nil
}

func (s *Simulator) handleRefreshInsights(ctx context.Context) error {
	res, err := s.analyzer.AnalyzeAllUsers(ctx, s.Config.AnalyzeWorkers, nil)
	if err != nil {
		return err
	}
	s.summary.BehaviorRefreshes += res.TotalAnalyzed

	for _, u := range s.dataset.Users {
		patterns, err := s.recognizer.DiscoverPatterns(ctx, u.ID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warn("pattern discovery failed", "user_id", u.ID, "error", err)
			continue
		}
		s.summary.PatternsDiscovered += len(patterns)
	}
	return nil
}

func (s *Simulator) handleForecastDemand(ctx context.Context) error {
	target := models.DateOf(s.CurrentTime)
	for _, r := range s.dataset.Restaurants {
		forecasts, err := s.forecaster.ForecastForRestaurant(ctx, r.ID, target)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warn("forecast failed", "restaurant_id", r.ID, "error", err)
			continue
		}
		s.summary.ForecastsCreated += len(forecasts)
	}
	schedule, err := s.scheduler.PredictDeliverySchedule(ctx, target)
	if err != nil {
		return err
	}
	s.summary.SchedulesPredicted += len(schedule)
	return nil
}

func (s *Simulator) handleSuggestOrders(ctx context.Context) error {
	for _, u := range s.dataset.Users {
		suggestion, err := s.engine.GenerateSuggestion(ctx, u.ID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warn("suggestion failed", "user_id", u.ID, "error", err)
			continue
		}
		if suggestion == nil || !suggestion.CreatedAt.Equal(s.CurrentTime) {
			continue
		}
		s.summary.SuggestionsCreated++
		delay := time.Duration(5+s.Rng.Intn(146)) * time.Minute
		s.EventQueue.Enqueue(&models.Event{
			Time: s.CurrentTime.Add(delay),
			Type: models.EventRespondSuggestion,
			Data: suggestion,
		})
	}
	return nil
}

// handleRespondSuggestion plays the user's answer. Confident suggestions are
// accepted more often and a share of acceptances bump the first item.
func (s *Simulator) handleRespondSuggestion(ctx context.Context, suggestion *models.AutoOrderSuggestion) error {
	var err error
	if s.Rng.Float64() < suggestion.Confidence*0.8 {
		var mods *models.SuggestionModification
		if s.Rng.Float64() < 0.2 && len(suggestion.SuggestedItems) > 0 {
			first := suggestion.SuggestedItems[0]
			mods = &models.SuggestionModification{
				UpdateQuantity: []models.QuantityUpdate{{MenuItemID: first.MenuItemID, Quantity: first.Quantity + 1}},
			}
		}
		var order *models.Order
		if order, err = s.engine.AcceptSuggestion(ctx, suggestion.ID, mods); err == nil {
			s.summary.OrdersPlaced++
			if mods != nil {
				s.summary.SuggestionsModified++
			} else {
				s.summary.SuggestionsAccepted++
			}
			if home, ok := s.homes[order.UserID]; ok {
				order.DeliveryLocation = &home
			}
			s.recent = append(s.recent, *order)
		}
	} else {
		if _, err = s.engine.RejectSuggestion(ctx, suggestion.ID, "not today"); err == nil {
			s.summary.SuggestionsRejected++
		}
	}
	if errors.Is(err, models.ErrInvalidState) {
		s.summary.SuggestionsExpired++
		return nil
	}
	return err
}

func (s *Simulator) handleDispatchRoutes() error {
	cutoff := s.CurrentTime.Add(-routeWindow)
	var batch []models.Order
	kept := s.recent[:0]
	for _, o := range s.recent {
		switch {
		case o.CreatedAt.Before(cutoff):
		case o.CreatedAt.After(s.CurrentTime):
			kept = append(kept, o)
		default:
			batch = append(batch, o)
		}
	}
	s.recent = kept
	routes := s.scheduler.OptimizeRoutes(batch)
	s.summary.RoutesPlanned += len(routes)
	s.log.Debug("dispatched routes", "orders", len(batch), "routes", len(routes))
	return nil
}

func (s *Simulator) handleGenerateReports(ctx context.Context) error {
	for _, r := range s.dataset.Restaurants {
		report, err := s.reporter.GenerateReport(ctx, r.ID, models.PeriodWeekly)
		if err == nil {
			report, err = s.reporter.SendReportToRestaurant(ctx, report.ID)
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warn("report failed", "restaurant_id", r.ID, "error", err)
			continue
		}
		s.summary.ReportsGenerated++
		s.EventQueue.Enqueue(&models.Event{
			Time: s.CurrentTime.Add(reportResponse),
			Type: models.EventRespondReport,
			Data: report,
		})
	}
	return nil
}

// handleRespondReport plays the restaurant's answer. A counter offer gets a
// final answer a day later.
func (s *Simulator) handleRespondReport(ctx context.Context, report *models.DemandForecastReport) error {
	response := models.RestaurantResponse{}
	roll := s.Rng.Float64()
	switch {
	case report.Status == models.ReportNegotiating:
		response.Accepted = roll < 0.7
		response.Notes = "final answer"
	case roll < 0.5:
		response.Accepted = true
	case roll < 0.8 && report.SuggestedDiscount > 0:
		offer := report.SuggestedDiscount / 2
		response.CounterOffer = &offer
		response.Notes = "counter offer"
	}
	updated, err := s.reporter.RecordRestaurantResponse(ctx, report.ID, response)
	if err != nil {
		return err
	}
	if updated.Status == models.ReportNegotiating {
		s.summary.ReportsCounterOffers++
		s.EventQueue.Enqueue(&models.Event{
			Time: s.CurrentTime.Add(reportResponse),
			Type: models.EventRespondReport,
			Data: updated,
		})
	}
	return nil
}

// handleCloseDay records the day's actual item quantities and slot volumes,
// then expires suggestions nobody answered.
func (s *Simulator) handleCloseDay(ctx context.Context, day time.Time) error {
	next := day.AddDate(0, 0, 1)
	for _, r := range s.dataset.Restaurants {
		sales, err := s.repos.Orders.ItemSales(ctx, r.ID, day, next)
		if err != nil {
			return err
		}
		sold := make(map[string]int)
		for _, sale := range sales {
			sold[sale.MenuItemID] += sale.Quantity
		}
		for itemID, qty := range sold {
			if err := ignoreNotFound(s.forecaster.UpdateActualQuantity(ctx, r.ID, itemID, day, qty)); err != nil {
				return err
			}
		}
	}

	orders, err := s.repos.Orders.ListInWindow(ctx, models.DeliveryStageStatuses, day, next)
	if err != nil {
		return err
	}
	perSlot := make(map[string]int)
	for _, o := range orders {
		perSlot[models.HalfHourSlot(o.CreatedAt.In(day.Location()))]++
	}
	for slot, n := range perSlot {
		if err := ignoreNotFound(s.scheduler.UpdateActualOrders(ctx, day, slot, n)); err != nil {
			return err
		}
	}

	expired, err := s.engine.CleanupExpiredSuggestions(ctx)
	if err != nil {
		return err
	}
	s.summary.SuggestionsExpired += expired
	if s.progress != nil {
		_ = s.progress.Add(1)
	}
	s.log.Info("closed simulated day", "date", day.Format(models.DateLayout), "orders", len(orders), "expired_suggestions", expired)
	return nil
}
