package predictive

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/chrisdamba/foodpredict/internal/repositories"
	"github.com/lucsky/cuid"
)

const (
	sameWeekdayWeight = 0.7
	allDaysWeight     = 0.3
)

type DeliveryScheduler struct {
	orders    repositories.OrderRepository
	schedules repositories.ScheduleRepository
	opts      Options
}

func NewDeliveryScheduler(repos repositories.Repositories, opts Options) *DeliveryScheduler {
	return &DeliveryScheduler{
		orders:    repos.Orders,
		schedules: repos.Schedules,
		opts:      opts.withDefaults(),
	}
}

type scheduleEvent struct {
	Date            string   `json:"date"`
	Slots           int      `json:"slots"`
	PredictedOrders int      `json:"predicted_orders"`
	PeakSlots       []string `json:"peak_slots"`
}

// PredictDeliverySchedule forecasts order volume for every half-hour slot of
// the target date and upserts one schedule row per slot.
func (d *DeliveryScheduler) PredictDeliverySchedule(ctx context.Context, target time.Time) ([]models.DeliverySchedule, error) {
	cfg := d.opts.Config
	target = models.DateOf(target.In(d.opts.Location))
	from := addDays(target, -cfg.AnalysisDays)

	orders, err := d.orders.ListInWindow(ctx, models.DeliveryStageStatuses, from, target)
	if err != nil {
		return nil, fmt.Errorf("loading delivery history: %w", err)
	}

	allDays := make(map[string]int)
	sameDay := make(map[string]int)
	for _, o := range orders {
		created := o.CreatedAt.In(d.opts.Location)
		slot := models.HalfHourSlot(created)
		allDays[slot]++
		if created.Weekday() == target.Weekday() {
			sameDay[slot]++
		}
	}

	weeks := math.Ceil(float64(cfg.AnalysisDays) / 7)
	now := d.opts.now()
	event := scheduleEvent{Date: target.Format(models.DateLayout), PeakSlots: []string{}}
	var schedule []models.DeliverySchedule
	for _, slot := range models.DeliverySlots(cfg.ScheduleStartHour, cfg.ScheduleEndHour) {
		sameAvg := float64(sameDay[slot]) / weeks
		allAvg := float64(allDays[slot]) / float64(cfg.AnalysisDays)
		predicted := int(math.Round(sameWeekdayWeight*sameAvg + allDaysWeight*allAvg))

		entry := models.DeliverySchedule{
			ID:                 cuid.New(),
			Date:               target,
			TimeSlot:           slot,
			PredictedOrders:    predicted,
			IsPeakTime:         predicted >= cfg.PeakThreshold,
			CapacityStatus:     models.CapacityFor(predicted),
			RecommendedDrivers: d.recommendedDrivers(predicted),
			UpdatedAt:          now,
		}
		schedule = append(schedule, entry)

		event.PredictedOrders += predicted
		if entry.IsPeakTime {
			event.PeakSlots = append(event.PeakSlots, slot)
		}
	}
	event.Slots = len(schedule)

	if err := d.schedules.UpsertBatch(ctx, schedule); err != nil {
		return nil, fmt.Errorf("saving delivery schedule: %w", err)
	}
	d.opts.Logger.Info("predicted delivery schedule",
		"date", event.Date,
		"history_orders", len(orders),
		"predicted_orders", event.PredictedOrders,
		"peak_slots", len(event.PeakSlots),
	)
	d.opts.publish(ctx, models.TopicScheduleEvents, models.EventSchedulePredicted, event)
	return schedule, nil
}

// recommendedDrivers sizes staffing with a buffer on top of the per-driver
// throughput. An idle slot needs no driver.
func (d *DeliveryScheduler) recommendedDrivers(predicted int) int {
	if predicted <= 0 {
		return 0
	}
	cfg := d.opts.Config
	drivers := float64(predicted) * cfg.DriverBuffer / cfg.OrdersPerDriverHour
	return int(math.Ceil(drivers - 1e-9))
}

// GetDaySchedule returns the stored schedule of a date ordered by slot.
func (d *DeliveryScheduler) GetDaySchedule(ctx context.Context, date time.Time) ([]models.DeliverySchedule, error) {
	day := models.DateOf(date.In(d.opts.Location))
	return d.schedules.Range(ctx, day, addDays(day, 1))
}

func (d *DeliveryScheduler) GetPeakTimes(ctx context.Context, date time.Time) ([]models.DeliverySchedule, error) {
	schedule, err := d.GetDaySchedule(ctx, date)
	if err != nil {
		return nil, err
	}
	peaks := []models.DeliverySchedule{}
	for _, s := range schedule {
		if s.IsPeakTime {
			peaks = append(peaks, s)
		}
	}
	return peaks, nil
}

func (d *DeliveryScheduler) UpdateActualOrders(ctx context.Context, date time.Time, timeSlot string, actual int) error {
	if actual < 0 {
		return fmt.Errorf("actual orders %d: %w", actual, models.ErrInvalidInput)
	}
	key := models.ScheduleKey{Date: models.DateOf(date.In(d.opts.Location)), TimeSlot: timeSlot}
	return d.schedules.SetActual(ctx, key, actual)
}

// EvaluateAccuracy backtests the slots dated from start to end inclusive that
// have recorded actuals.
func (d *DeliveryScheduler) EvaluateAccuracy(ctx context.Context, start, end time.Time) (models.AccuracyReport, error) {
	start = models.DateOf(start.In(d.opts.Location))
	end = models.DateOf(end.In(d.opts.Location))
	schedules, err := d.schedules.Range(ctx, start, addDays(end, 1))
	if err != nil {
		return models.AccuracyReport{}, err
	}
	var samples []accuracySample
	for _, s := range schedules {
		if s.ActualOrders != nil {
			samples = append(samples, accuracySample{predicted: s.PredictedOrders, actual: *s.ActualOrders})
		}
	}
	return mapeAccuracy(samples, start, end), nil
}

// GetCapacityRecommendations summarises a stored day schedule into a staffing plan.
func (d *DeliveryScheduler) GetCapacityRecommendations(ctx context.Context, date time.Time) (*models.CapacityRecommendation, error) {
	schedule, err := d.GetDaySchedule(ctx, date)
	if err != nil {
		return nil, err
	}
	rec := &models.CapacityRecommendation{
		Date:             models.DateOf(date.In(d.opts.Location)),
		PeakHours:        []string{},
		LowActivityHours: []string{},
		StaffingPlan:     make([]models.StaffingEntry, 0, len(schedule)),
	}
	for _, s := range schedule {
		if s.IsPeakTime {
			rec.PeakHours = append(rec.PeakHours, s.TimeSlot)
		}
		if s.CapacityStatus == models.CapacityLow {
			rec.LowActivityHours = append(rec.LowActivityHours, s.TimeSlot)
		}
		if s.RecommendedDrivers > rec.TotalDriversNeeded {
			rec.TotalDriversNeeded = s.RecommendedDrivers
		}
		rec.StaffingPlan = append(rec.StaffingPlan, models.StaffingEntry{
			TimeSlot: s.TimeSlot,
			Drivers:  s.RecommendedDrivers,
			Status:   s.CapacityStatus,
		})
	}
	return rec, nil
}
