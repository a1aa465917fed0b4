package postgres

import (
	"context"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ScheduleRepository struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

func NewScheduleRepository(pool *pgxpool.Pool, loc *time.Location) *ScheduleRepository {
	return &ScheduleRepository{pool: pool, loc: loc}
}

func (r *ScheduleRepository) UpsertBatch(ctx context.Context, schedules []models.DeliverySchedule) error {
	if len(schedules) == 0 {
		return nil
	}
	query := `
        INSERT INTO delivery_schedules (
            id, date, time_slot, predicted_orders, actual_orders, is_peak_time,
            capacity_status, recommended_drivers, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (date, time_slot) DO UPDATE SET
            predicted_orders = EXCLUDED.predicted_orders,
            actual_orders = COALESCE(delivery_schedules.actual_orders, EXCLUDED.actual_orders),
            is_peak_time = EXCLUDED.is_peak_time,
            capacity_status = EXCLUDED.capacity_status,
            recommended_drivers = EXCLUDED.recommended_drivers,
            updated_at = EXCLUDED.updated_at
    `
	batch := &pgx.Batch{}
	for _, s := range schedules {
		batch.Queue(query,
			s.ID,
			s.Date,
			s.TimeSlot,
			s.PredictedOrders,
			s.ActualOrders,
			s.IsPeakTime,
			string(s.CapacityStatus),
			s.RecommendedDrivers,
			s.UpdatedAt,
		)
	}
	return execTx(ctx, r.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (r *ScheduleRepository) Range(ctx context.Context, from, to time.Time) ([]models.DeliverySchedule, error) {
	query := `
        SELECT
            id, date, time_slot, predicted_orders, actual_orders, is_peak_time,
            capacity_status, recommended_drivers, updated_at
        FROM delivery_schedules
        WHERE date >= $1::date AND date < $2::date
        ORDER BY date, time_slot
    `
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []models.DeliverySchedule
	for rows.Next() {
		var s models.DeliverySchedule
		var status string
		err := rows.Scan(
			&s.ID,
			&s.Date,
			&s.TimeSlot,
			&s.PredictedOrders,
			&s.ActualOrders,
			&s.IsPeakTime,
			&status,
			&s.RecommendedDrivers,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		s.Date = dateIn(s.Date, r.loc)
		s.CapacityStatus = models.CapacityStatus(status)
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

func (r *ScheduleRepository) SetActual(ctx context.Context, key models.ScheduleKey, orders int) error {
	tag, err := r.pool.Exec(ctx, `
        UPDATE delivery_schedules SET actual_orders = $3, updated_at = now()
        WHERE date = $1::date AND time_slot = $2
    `, key.Date, key.TimeSlot, orders)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NotFound("schedule", key.Date.Format(time.DateOnly)+" "+key.TimeSlot)
	}
	return nil
}
