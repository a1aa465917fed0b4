package postgres

import (
	"context"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ForecastRepository struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

func NewForecastRepository(pool *pgxpool.Pool, loc *time.Location) *ForecastRepository {
	return &ForecastRepository{pool: pool, loc: loc}
}

// UpsertBatch leaves id, created_at and actual_qty of existing rows untouched.
func (r *ForecastRepository) UpsertBatch(ctx context.Context, forecasts []models.QuantityForecast) error {
	if len(forecasts) == 0 {
		return nil
	}
	query := `
        INSERT INTO quantity_forecasts (
            id, restaurant_id, menu_item_id, item_name, forecast_date, predicted_qty,
            actual_qty, confidence, factors, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (restaurant_id, menu_item_id, forecast_date) DO UPDATE SET
            item_name = EXCLUDED.item_name,
            predicted_qty = EXCLUDED.predicted_qty,
            actual_qty = COALESCE(quantity_forecasts.actual_qty, EXCLUDED.actual_qty),
            confidence = EXCLUDED.confidence,
            factors = EXCLUDED.factors,
            updated_at = EXCLUDED.updated_at
    `
	batch := &pgx.Batch{}
	for _, f := range forecasts {
		batch.Queue(query,
			f.ID,
			f.RestaurantID,
			f.MenuItemID,
			f.ItemName,
			f.ForecastDate,
			f.PredictedQty,
			f.ActualQty,
			f.Confidence,
			f.Factors,
			f.CreatedAt,
			f.UpdatedAt,
		)
	}
	return execTx(ctx, r.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (r *ForecastRepository) Range(ctx context.Context, restaurantID string, from, to time.Time) ([]models.QuantityForecast, error) {
	query := `
        SELECT
            id, restaurant_id, menu_item_id, item_name, forecast_date, predicted_qty,
            actual_qty, confidence, factors, created_at, updated_at
        FROM quantity_forecasts
        WHERE restaurant_id = $1 AND forecast_date >= $2::date AND forecast_date < $3::date
        ORDER BY forecast_date, menu_item_id
    `
	rows, err := r.pool.Query(ctx, query, restaurantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var forecasts []models.QuantityForecast
	for rows.Next() {
		var f models.QuantityForecast
		err := rows.Scan(
			&f.ID,
			&f.RestaurantID,
			&f.MenuItemID,
			&f.ItemName,
			&f.ForecastDate,
			&f.PredictedQty,
			&f.ActualQty,
			&f.Confidence,
			&f.Factors,
			&f.CreatedAt,
			&f.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		f.ForecastDate = dateIn(f.ForecastDate, r.loc)
		forecasts = append(forecasts, f)
	}
	return forecasts, rows.Err()
}

func (r *ForecastRepository) SetActual(ctx context.Context, key models.ForecastKey, qty int) error {
	tag, err := r.pool.Exec(ctx, `
        UPDATE quantity_forecasts SET actual_qty = $4, updated_at = now()
        WHERE restaurant_id = $1 AND menu_item_id = $2 AND forecast_date = $3::date
    `, key.RestaurantID, key.MenuItemID, key.ForecastDate, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NotFound("forecast", key.MenuItemID+"@"+key.ForecastDate.Format(time.DateOnly))
	}
	return nil
}
