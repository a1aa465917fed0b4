package predictive

import (
	"context"
	"fmt"
	"sort"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/chrisdamba/foodpredict/internal/repositories"
	"github.com/lucsky/cuid"
)

type DemandReporter struct {
	reports     repositories.ReportRepository
	orders      repositories.OrderRepository
	menu        repositories.MenuItemRepository
	restaurants repositories.RestaurantRepository
	forecaster  *QuantityForecaster
	opts        Options
}

func NewDemandReporter(repos repositories.Repositories, forecaster *QuantityForecaster, opts Options) *DemandReporter {
	return &DemandReporter{
		reports:     repos.Reports,
		orders:      repos.Orders,
		menu:        repos.MenuItems,
		restaurants: repos.Restaurants,
		forecaster:  forecaster,
		opts:        opts.withDefaults(),
	}
}

type itemAccumulator struct {
	name          string
	qty           int
	confidenceSum float64
	days          int
}

// GenerateReport forecasts every day of the period starting today, freezes the
// per-item totals into a new GENERATED report and rates it against the
// discount tiers.
func (r *DemandReporter) GenerateReport(ctx context.Context, restaurantID string, period models.ReportPeriod) (*models.DemandForecastReport, error) {
	days := period.Days()
	if days == 0 {
		return nil, fmt.Errorf("report period %q: %w", period, models.ErrInvalidInput)
	}
	if _, err := r.restaurants.Get(ctx, restaurantID); err != nil {
		return nil, err
	}

	start := r.opts.today()
	end := addDays(start, days)

	acc := make(map[string]*itemAccumulator)
	for day := start; day.Before(end); day = addDays(day, 1) {
		forecasts, err := r.forecaster.ForecastForRestaurant(ctx, restaurantID, day)
		if err != nil {
			return nil, err
		}
		for _, f := range forecasts {
			a, ok := acc[f.MenuItemID]
			if !ok {
				a = &itemAccumulator{name: f.ItemName}
				acc[f.MenuItemID] = a
			}
			a.qty += f.PredictedQty
			a.confidenceSum += f.Confidence
			a.days++
		}
	}

	items, err := r.itemForecasts(ctx, acc)
	if err != nil {
		return nil, err
	}

	report := &models.DemandForecastReport{
		ID:            cuid.New(),
		RestaurantID:  restaurantID,
		ReportPeriod:  period,
		StartDate:     start,
		EndDate:       end,
		ItemForecasts: items,
		Status:        models.ReportGenerated,
	}
	for _, item := range items {
		report.TotalPredictedOrders += item.PredictedQty
		report.TotalPredictedRevenue += item.PredictedRevenue
	}
	report.TotalPredictedRevenue = round2(report.TotalPredictedRevenue)
	report.BulkDiscountEligible, report.SuggestedDiscount = selectDiscountTier(
		r.opts.Config.DiscountTiers, report.TotalPredictedOrders, report.TotalPredictedRevenue)

	report.HistoricalComparison, err = r.historicalComparison(ctx, restaurantID, days)
	if err != nil {
		return nil, err
	}

	now := r.opts.now()
	report.CreatedAt, report.UpdatedAt = now, now
	if err := r.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("saving report for restaurant %s: %w", restaurantID, err)
	}

	r.opts.Logger.Info("generated demand forecast report",
		"report_id", report.ID,
		"restaurant_id", restaurantID,
		"period", period,
		"items", len(items),
		"predicted_revenue", report.TotalPredictedRevenue,
		"discount", report.SuggestedDiscount,
	)
	return report, nil
}

// itemForecasts prices the accumulated quantities at current menu prices and
// orders them by revenue. Items no longer on the menu are dropped.
func (r *DemandReporter) itemForecasts(ctx context.Context, acc map[string]*itemAccumulator) ([]models.ItemForecast, error) {
	ids := make([]string, 0, len(acc))
	for id := range acc {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	menu, err := r.menu.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading menu items: %w", err)
	}

	items := make([]models.ItemForecast, 0, len(ids))
	for _, id := range ids {
		mi, ok := menu[id]
		if !ok {
			continue
		}
		a := acc[id]
		items = append(items, models.ItemForecast{
			MenuItemID:       id,
			Name:             mi.Name,
			PredictedQty:     a.qty,
			PredictedRevenue: round2(float64(a.qty) * mi.Price),
			AvgConfidence:    round2(a.confidenceSum / float64(a.days)),
			UnitPrice:        mi.Price,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PredictedRevenue > items[j].PredictedRevenue
	})
	return items, nil
}

// selectDiscountTier picks the highest discount whose minimums are both met.
// The tier table is not modified.
func selectDiscountTier(tiers []models.DiscountTier, orders int, revenue float64) (bool, float64) {
	ranked := append([]models.DiscountTier(nil), tiers...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].DiscountPct > ranked[j].DiscountPct })
	for _, tier := range ranked {
		if orders >= tier.MinOrders && revenue >= tier.MinRevenue {
			return true, tier.DiscountPct
		}
	}
	return false, 0
}

// historicalComparison compares the trailing window of the period length with
// the window before it.
func (r *DemandReporter) historicalComparison(ctx context.Context, restaurantID string, days int) (models.HistoricalComparison, error) {
	now := r.opts.now()
	currentStart := addDays(now, -days)
	previousStart := addDays(currentStart, -days)

	current, err := r.orders.RestaurantMetrics(ctx, restaurantID, currentStart, now)
	if err != nil {
		return models.HistoricalComparison{}, err
	}
	previous, err := r.orders.RestaurantMetrics(ctx, restaurantID, previousStart, currentStart)
	if err != nil {
		return models.HistoricalComparison{}, err
	}

	hc := models.HistoricalComparison{
		PreviousPeriodOrders:  previous.TotalOrders,
		PreviousPeriodRevenue: round2(previous.TotalRevenue),
		CurrentPeriodOrders:   current.TotalOrders,
		CurrentPeriodRevenue:  round2(current.TotalRevenue),
	}
	if previous.TotalRevenue > 0 {
		hc.GrowthRate = round2((current.TotalRevenue - previous.TotalRevenue) / previous.TotalRevenue * 100)
	}
	return hc, nil
}

func (r *DemandReporter) transition(ctx context.Context, id string, next models.ReportStatus, mutate func(*models.DemandForecastReport)) (*models.DemandForecastReport, error) {
	report, err := r.reports.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !report.Status.CanTransitionTo(next) {
		return nil, &models.TransitionError{Entity: "report", ID: id, From: string(report.Status), To: string(next)}
	}
	previous := report.Status
	report.Status = next
	report.UpdatedAt = r.opts.now()
	mutate(report)
	if err := r.reports.Update(ctx, report, previous); err != nil {
		return nil, err
	}
	return report, nil
}

// SendReportToRestaurant marks the report SENT. Resending a sent report is allowed.
func (r *DemandReporter) SendReportToRestaurant(ctx context.Context, id string) (*models.DemandForecastReport, error) {
	report, err := r.transition(ctx, id, models.ReportSent, func(rep *models.DemandForecastReport) {
		rep.SentToRestaurant = true
	})
	if err != nil {
		return nil, err
	}
	r.opts.Logger.Info("sent report to restaurant", "report_id", id, "restaurant_id", report.RestaurantID)
	r.opts.publish(ctx, models.TopicReportEvents, models.EventReportSent, report)
	return report, nil
}

// RecordRestaurantResponse moves the report to AGREED on acceptance, to
// NEGOTIATING on a counter offer and to REJECTED otherwise.
func (r *DemandReporter) RecordRestaurantResponse(ctx context.Context, id string, response models.RestaurantResponse) (*models.DemandForecastReport, error) {
	if response.CounterOffer != nil && *response.CounterOffer < 0 {
		return nil, fmt.Errorf("counter offer %.2f: %w", *response.CounterOffer, models.ErrInvalidInput)
	}
	next := models.ReportRejected
	switch {
	case response.Accepted:
		next = models.ReportAgreed
	case response.CounterOffer != nil && *response.CounterOffer > 0:
		next = models.ReportNegotiating
	}
	response.RespondedAt = r.opts.now()

	report, err := r.transition(ctx, id, next, func(rep *models.DemandForecastReport) {
		rep.RestaurantResponse = &response
	})
	if err != nil {
		return nil, err
	}
	r.opts.Logger.Info("recorded restaurant response", "report_id", id, "status", next)
	r.opts.publish(ctx, models.TopicReportEvents, models.EventReportResponded, report)
	return report, nil
}

// CompareActualVsPredicted backtests a report once its window has elapsed.
// Before that it returns an incomplete comparison rather than an error.
func (r *DemandReporter) CompareActualVsPredicted(ctx context.Context, id string) (*models.Comparison, error) {
	report, err := r.reports.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cmp := &models.Comparison{ReportID: id}
	if r.opts.now().Before(report.EndDate) {
		return cmp, nil
	}
	cmp.Complete = true

	sales, err := r.orders.ItemSales(ctx, report.RestaurantID, report.StartDate, report.EndDate)
	if err != nil {
		return nil, err
	}
	metrics, err := r.orders.RestaurantMetrics(ctx, report.RestaurantID, report.StartDate, report.EndDate)
	if err != nil {
		return nil, err
	}

	actual := make(map[string]int)
	for _, s := range sales {
		actual[s.MenuItemID] += s.Quantity
		cmp.ActualOrders += s.Quantity
	}
	cmp.PredictedOrders = report.TotalPredictedOrders
	cmp.PredictedRevenue = report.TotalPredictedRevenue
	cmp.ActualOrderCount = metrics.TotalOrders
	cmp.ActualRevenue = round2(metrics.TotalRevenue)
	cmp.OrdersAccuracy = ratioAccuracy(float64(cmp.PredictedOrders), float64(cmp.ActualOrders))
	cmp.RevenueAccuracy = ratioAccuracy(cmp.PredictedRevenue, cmp.ActualRevenue)

	cmp.ItemComparison = make([]models.ItemComparison, 0, len(report.ItemForecasts))
	for _, item := range report.ItemForecasts {
		cmp.ItemComparison = append(cmp.ItemComparison, models.ItemComparison{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Predicted:  item.PredictedQty,
			Actual:     actual[item.MenuItemID],
			Accuracy:   ratioAccuracy(float64(item.PredictedQty), float64(actual[item.MenuItemID])),
		})
	}
	return cmp, nil
}

// GetRestaurantReports returns the restaurant's latest reports, optionally filtered by status.
func (r *DemandReporter) GetRestaurantReports(ctx context.Context, restaurantID string, status *models.ReportStatus) ([]models.DemandForecastReport, error) {
	return r.reports.List(ctx, restaurantID, status, models.DefaultReportListLimit)
}

// GetNegotiationsSummary aggregates every report that has reached a restaurant.
func (r *DemandReporter) GetNegotiationsSummary(ctx context.Context) (*models.NegotiationsSummary, error) {
	reports, err := r.reports.List(ctx, "", nil, 0)
	if err != nil {
		return nil, err
	}
	restaurants, err := r.restaurants.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := &models.NegotiationsSummary{
		ByStatus:        make(map[models.ReportStatus]int),
		AgreedDiscounts: []models.AgreedDiscount{},
	}
	for _, rep := range reports {
		if rep.Status == models.ReportGenerated {
			continue
		}
		summary.TotalReports++
		summary.ByStatus[rep.Status]++
		if rep.Status != models.ReportAgreed || rep.SuggestedDiscount <= 0 {
			continue
		}
		savings := round2(rep.TotalPredictedRevenue * rep.SuggestedDiscount / 100)
		summary.TotalPotentialSavings += savings
		agreed := models.AgreedDiscount{
			ReportID:         rep.ID,
			RestaurantID:     rep.RestaurantID,
			Discount:         rep.SuggestedDiscount,
			EstimatedSavings: savings,
		}
		if rest, ok := restaurants[rep.RestaurantID]; ok {
			agreed.RestaurantName = rest.Name
		}
		summary.AgreedDiscounts = append(summary.AgreedDiscounts, agreed)
	}
	summary.TotalPotentialSavings = round2(summary.TotalPotentialSavings)
	return summary, nil
}
