package postgres

import (
	"context"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BehaviorProfileRepository struct {
	pool *pgxpool.Pool
}

func NewBehaviorProfileRepository(pool *pgxpool.Pool) *BehaviorProfileRepository {
	return &BehaviorProfileRepository{pool: pool}
}

// UpsertBatch keeps the stored id of an existing (user, day, slot) row.
func (r *BehaviorProfileRepository) UpsertBatch(ctx context.Context, profiles []models.BehaviorProfile) error {
	if len(profiles) == 0 {
		return nil
	}
	query := `
        INSERT INTO user_behavior_profiles (
            id, user_id, day_of_week, time_slot, average_order_value, order_frequency,
            preferred_cuisines, preferred_items, top_items, total_orders,
            last_order_date, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        ON CONFLICT (user_id, day_of_week, time_slot) DO UPDATE SET
            average_order_value = EXCLUDED.average_order_value,
            order_frequency = EXCLUDED.order_frequency,
            preferred_cuisines = EXCLUDED.preferred_cuisines,
            preferred_items = EXCLUDED.preferred_items,
            top_items = EXCLUDED.top_items,
            total_orders = EXCLUDED.total_orders,
            last_order_date = EXCLUDED.last_order_date,
            updated_at = EXCLUDED.updated_at
    `
	batch := &pgx.Batch{}
	for _, p := range profiles {
		topItems := p.TopItems
		if topItems == nil {
			topItems = []models.ItemCount{}
		}
		batch.Queue(query,
			p.ID,
			p.UserID,
			int16(p.DayOfWeek),
			string(p.TimeSlot),
			p.AverageOrderValue,
			p.OrderFrequency,
			nonNilStrings(p.PreferredCuisines),
			nonNilStrings(p.PreferredItems),
			topItems,
			p.TotalOrders,
			p.LastOrderDate,
			p.UpdatedAt,
		)
	}
	return execTx(ctx, r.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (r *BehaviorProfileRepository) ListByUser(ctx context.Context, userID string) ([]models.BehaviorProfile, error) {
	query := `
        SELECT
            id, user_id, day_of_week, time_slot, average_order_value, order_frequency,
            preferred_cuisines, preferred_items, top_items, total_orders,
            last_order_date, updated_at
        FROM user_behavior_profiles
        WHERE user_id = $1
        ORDER BY day_of_week, time_slot
    `
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []models.BehaviorProfile
	for rows.Next() {
		var p models.BehaviorProfile
		var day int16
		var slot string
		err := rows.Scan(
			&p.ID,
			&p.UserID,
			&day,
			&slot,
			&p.AverageOrderValue,
			&p.OrderFrequency,
			&p.PreferredCuisines,
			&p.PreferredItems,
			&p.TopItems,
			&p.TotalOrders,
			&p.LastOrderDate,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		p.DayOfWeek = time.Weekday(day)
		p.TimeSlot = models.TimeSlot(slot)
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
