package postgres

import (
	"context"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PatternRepository struct {
	pool *pgxpool.Pool
}

func NewPatternRepository(pool *pgxpool.Pool) *PatternRepository {
	return &PatternRepository{pool: pool}
}

func (r *PatternRepository) ReplaceActive(ctx context.Context, userID string, patterns []models.OrderPattern) error {
	return execTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM order_patterns WHERE user_id = $1 AND is_active", userID); err != nil {
			return err
		}
		if len(patterns) == 0 {
			return nil
		}
		_, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{"order_patterns"},
			[]string{
				"id", "user_id", "pattern_type", "day_of_week", "time_preference",
				"restaurant_id", "menu_item_ids", "frequency", "confidence",
				"is_active", "last_triggered", "created_at",
			},
			pgx.CopyFromSlice(len(patterns), func(i int) ([]interface{}, error) {
				p := patterns[i]
				var day *int16
				if p.DayOfWeek != nil {
					d := int16(*p.DayOfWeek)
					day = &d
				}
				var slot *string
				if p.TimePreference != nil {
					s := string(*p.TimePreference)
					slot = &s
				}
				return []interface{}{
					p.ID,
					p.UserID,
					string(p.PatternType),
					day,
					slot,
					p.RestaurantID,
					nonNilStrings(p.MenuItemIDs),
					p.Frequency,
					p.Confidence,
					p.IsActive,
					p.LastTriggered,
					p.CreatedAt,
				}, nil
			}),
		)
		return err
	})
}

func (r *PatternRepository) ListActive(ctx context.Context, userID string) ([]models.OrderPattern, error) {
	query := `
        SELECT
            id, user_id, pattern_type, day_of_week, time_preference, restaurant_id,
            menu_item_ids, frequency, confidence, is_active, last_triggered, created_at
        FROM order_patterns
        WHERE user_id = $1 AND is_active
        ORDER BY confidence DESC, id
    `
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patterns []models.OrderPattern
	for rows.Next() {
		var p models.OrderPattern
		var patternType string
		var day *int16
		var slot *string
		err := rows.Scan(
			&p.ID,
			&p.UserID,
			&patternType,
			&day,
			&slot,
			&p.RestaurantID,
			&p.MenuItemIDs,
			&p.Frequency,
			&p.Confidence,
			&p.IsActive,
			&p.LastTriggered,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		p.PatternType = models.PatternType(patternType)
		if day != nil {
			d := time.Weekday(*day)
			p.DayOfWeek = &d
		}
		if slot != nil {
			s := models.TimeSlot(*slot)
			p.TimePreference = &s
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

func (r *PatternRepository) MarkTriggered(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, "UPDATE order_patterns SET last_triggered = $2 WHERE id = $1", id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NotFound("pattern", id)
	}
	return nil
}
