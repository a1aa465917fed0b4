package predictive

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/chrisdamba/foodpredict/internal/repositories"
	"github.com/lucsky/cuid"
)

const (
	dayWeight           = 0.6
	historicalWeight    = 0.4
	minTrendPoints      = 7
	trendUpRatio        = 1.15
	trendDownRatio      = 0.85
	trendUpMultiplier   = 1.1
	trendDownMultiplier = 0.9
	maxConfidence       = 0.95
	stableVarianceMax   = 0.3
)

const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

type QuantityForecaster struct {
	orders    repositories.OrderRepository
	forecasts repositories.ForecastRepository
	opts      Options
}

func NewQuantityForecaster(repos repositories.Repositories, opts Options) *QuantityForecaster {
	return &QuantityForecaster{
		orders:    repos.Orders,
		forecasts: repos.Forecasts,
		opts:      opts.withDefaults(),
	}
}

type dayStats struct {
	qty   int
	count int
}

type itemStats struct {
	name          string
	totalQuantity int
	orderCount    int
	byDay         map[time.Weekday]*dayStats
	byWeek        map[int]int
	points        []float64
}

// ForecastForRestaurant predicts per-item demand for the target date from the
// trailing history window and upserts one forecast per item. A restaurant with
// no delivered sales in the window gets an empty result.
func (f *QuantityForecaster) ForecastForRestaurant(ctx context.Context, restaurantID string, target time.Time) ([]models.QuantityForecast, error) {
	cfg := f.opts.Config
	target = models.DateOf(target.In(f.opts.Location))
	from := addDays(target, -cfg.HistoryDays)

	sales, err := f.orders.ItemSales(ctx, restaurantID, from, target)
	if err != nil {
		return nil, fmt.Errorf("loading sales for restaurant %s: %w", restaurantID, err)
	}
	if len(sales) == 0 {
		f.opts.Logger.Debug("no sales history", "restaurant_id", restaurantID, "target", target.Format(models.DateLayout))
		return []models.QuantityForecast{}, nil
	}

	stats := f.aggregate(sales)
	ids := make([]string, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	now := f.opts.now()
	forecasts := make([]models.QuantityForecast, 0, len(ids))
	for _, id := range ids {
		st := stats[id]
		qty, factors := f.predict(st, target)
		forecasts = append(forecasts, models.QuantityForecast{
			ID:           cuid.New(),
			RestaurantID: restaurantID,
			MenuItemID:   id,
			ItemName:     st.name,
			ForecastDate: target,
			PredictedQty: qty,
			Confidence:   forecastConfidence(st),
			Factors:      factors,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	if err := f.forecasts.UpsertBatch(ctx, forecasts); err != nil {
		return nil, fmt.Errorf("saving forecasts for restaurant %s: %w", restaurantID, err)
	}
	f.opts.Logger.Info("forecast restaurant demand",
		"restaurant_id", restaurantID,
		"target", target.Format(models.DateLayout),
		"items", len(forecasts),
	)
	return forecasts, nil
}

func (f *QuantityForecaster) aggregate(sales []models.ItemSale) map[string]*itemStats {
	sort.SliceStable(sales, func(i, j int) bool { return sales[i].OrderedAt.Before(sales[j].OrderedAt) })

	stats := make(map[string]*itemStats)
	for _, sale := range sales {
		st, ok := stats[sale.MenuItemID]
		if !ok {
			st = &itemStats{
				name:   sale.ItemName,
				byDay:  make(map[time.Weekday]*dayStats),
				byWeek: make(map[int]int),
			}
			stats[sale.MenuItemID] = st
		}
		at := sale.OrderedAt.In(f.opts.Location)
		st.totalQuantity += sale.Quantity
		st.orderCount++

		ds, ok := st.byDay[at.Weekday()]
		if !ok {
			ds = &dayStats{}
			st.byDay[at.Weekday()] = ds
		}
		ds.qty += sale.Quantity
		ds.count++

		year, week := at.ISOWeek()
		st.byWeek[year*100+week] += sale.Quantity
		st.points = append(st.points, float64(sale.Quantity))
	}
	return stats
}

func (f *QuantityForecaster) predict(st *itemStats, target time.Time) (int, models.ForecastFactors) {
	cfg := f.opts.Config
	historicalAvg := float64(st.totalQuantity) / float64(cfg.HistoryDays)
	daySpecificAvg := historicalAvg
	if ds, ok := st.byDay[target.Weekday()]; ok && ds.count > 0 {
		daySpecificAvg = float64(ds.qty) / float64(ds.count)
	}

	trend, trendMultiplier := analyzeTrend(st.points)
	seasonal := 1.0
	if isWeekend(target.Weekday()) {
		seasonal = cfg.SeasonalFactor
	}

	base := dayWeight*daySpecificAvg + historicalWeight*historicalAvg
	qty := int(math.Round(base * trendMultiplier * seasonal))
	if qty < 0 {
		qty = 0
	}

	return qty, models.ForecastFactors{
		DayOfWeek:          target.Weekday(),
		HistoricalAvg:      historicalAvg,
		DaySpecificAvg:     daySpecificAvg,
		Trend:              trend,
		TrendMultiplier:    trendMultiplier,
		SeasonalAdjustment: seasonal,
	}
}

func isWeekend(day time.Weekday) bool {
	return day == time.Friday || day == time.Saturday
}

// analyzeTrend compares the mean of the later half of the points against the
// earlier half. Fewer than minTrendPoints points are always stable.
func analyzeTrend(points []float64) (string, float64) {
	if len(points) < minTrendPoints {
		return TrendStable, 1
	}
	mid := len(points) / 2
	ratio := mean(points[mid:]) / math.Max(mean(points[:mid]), 1)
	switch {
	case ratio > trendUpRatio:
		return TrendIncreasing, trendUpMultiplier
	case ratio < trendDownRatio:
		return TrendDecreasing, trendDownMultiplier
	}
	return TrendStable, 1
}

func forecastConfidence(st *itemStats) float64 {
	confidence := 0.5
	switch {
	case st.orderCount >= 20:
		confidence += 0.2
	case st.orderCount >= 10:
		confidence += 0.1
	}
	switch days := len(st.byDay); {
	case days >= 5:
		confidence += 0.2
	case days >= 3:
		confidence += 0.1
	}
	weekly := make([]float64, 0, len(st.byWeek))
	for _, q := range st.byWeek {
		weekly = append(weekly, float64(q))
	}
	if normalizedVariance(weekly) < stableVarianceMax {
		confidence += 0.1
	}
	return math.Min(confidence, maxConfidence)
}

// normalizedVariance is the population variance over max(mean², 1), 0 for fewer than two values.
func normalizedVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return (sum / float64(len(values))) / math.Max(m*m, 1)
}

// GetRestaurantForecasts returns stored forecasts dated from..to inclusive.
func (f *QuantityForecaster) GetRestaurantForecasts(ctx context.Context, restaurantID string, from, to time.Time) ([]models.QuantityForecast, error) {
	from = models.DateOf(from.In(f.opts.Location))
	to = addDays(models.DateOf(to.In(f.opts.Location)), 1)
	return f.forecasts.Range(ctx, restaurantID, from, to)
}

func (f *QuantityForecaster) UpdateActualQuantity(ctx context.Context, restaurantID, menuItemID string, date time.Time, qty int) error {
	if qty < 0 {
		return fmt.Errorf("actual quantity %d: %w", qty, models.ErrInvalidInput)
	}
	key := models.ForecastKey{
		RestaurantID: restaurantID,
		MenuItemID:   menuItemID,
		ForecastDate: models.DateOf(date.In(f.opts.Location)),
	}
	return f.forecasts.SetActual(ctx, key, qty)
}

// EvaluateForecastAccuracy backtests forecasts dated in the last days days,
// today included, against the recorded actual quantities.
func (f *QuantityForecaster) EvaluateForecastAccuracy(ctx context.Context, restaurantID string, days int) (models.AccuracyReport, error) {
	if days <= 0 {
		days = 7
	}
	today := f.opts.today()
	start, end := addDays(today, -days), addDays(today, 1)
	forecasts, err := f.forecasts.Range(ctx, restaurantID, start, end)
	if err != nil {
		return models.AccuracyReport{}, err
	}
	var samples []accuracySample
	for _, fc := range forecasts {
		if fc.ActualQty != nil {
			samples = append(samples, accuracySample{predicted: fc.PredictedQty, actual: *fc.ActualQty})
		}
	}
	return mapeAccuracy(samples, start, today), nil
}
