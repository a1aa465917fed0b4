package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reportColumns = `
    id, restaurant_id, report_period, start_date, end_date, total_predicted_orders,
    total_predicted_revenue, item_forecasts, bulk_discount_eligible, suggested_discount,
    status, restaurant_response, sent_to_restaurant, historical_comparison,
    created_at, updated_at
`

type ReportRepository struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

func NewReportRepository(pool *pgxpool.Pool, loc *time.Location) *ReportRepository {
	return &ReportRepository{pool: pool, loc: loc}
}

func (r *ReportRepository) Create(ctx context.Context, rep *models.DemandForecastReport) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO demand_forecast_reports (`+reportColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
    `,
		rep.ID,
		rep.RestaurantID,
		string(rep.ReportPeriod),
		rep.StartDate,
		rep.EndDate,
		rep.TotalPredictedOrders,
		rep.TotalPredictedRevenue,
		itemForecasts(rep.ItemForecasts),
		rep.BulkDiscountEligible,
		rep.SuggestedDiscount,
		string(rep.Status),
		rep.RestaurantResponse,
		rep.SentToRestaurant,
		rep.HistoricalComparison,
		rep.CreatedAt,
		rep.UpdatedAt,
	)
	return err
}

func (r *ReportRepository) Get(ctx context.Context, id string) (*models.DemandForecastReport, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+reportColumns+" FROM demand_forecast_reports WHERE id = $1", id)
	rep, err := r.scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NotFound("report", id)
	}
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// Update writes the mutable negotiation fields; the forecast body is frozen at creation.
func (r *ReportRepository) Update(ctx context.Context, rep *models.DemandForecastReport, expected models.ReportStatus) error {
	tag, err := r.pool.Exec(ctx, `
        UPDATE demand_forecast_reports SET
            status = $2,
            restaurant_response = $3,
            sent_to_restaurant = $4,
            updated_at = $5
        WHERE id = $1 AND status = $6
    `,
		rep.ID,
		string(rep.Status),
		rep.RestaurantResponse,
		rep.SentToRestaurant,
		rep.UpdatedAt,
		string(expected),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	current, err := r.Get(ctx, rep.ID)
	if err != nil {
		return err
	}
	return &models.TransitionError{Entity: "report", ID: rep.ID, From: string(current.Status), To: string(rep.Status)}
}

func (r *ReportRepository) List(ctx context.Context, restaurantID string, status *models.ReportStatus, limit int) ([]models.DemandForecastReport, error) {
	var statusArg *string
	if status != nil {
		s := string(*status)
		statusArg = &s
	}
	rows, err := r.pool.Query(ctx, `
        SELECT `+reportColumns+`
        FROM demand_forecast_reports
        WHERE ($1::text = '' OR restaurant_id = $1) AND ($2::text IS NULL OR status = $2)
        ORDER BY created_at DESC, id DESC
        LIMIT $3
    `, restaurantID, statusArg, limitArg(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DemandForecastReport
	for rows.Next() {
		rep, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rep)
	}
	return out, rows.Err()
}

func (r *ReportRepository) scan(row pgx.Row) (*models.DemandForecastReport, error) {
	var rep models.DemandForecastReport
	var period, status string
	err := row.Scan(
		&rep.ID,
		&rep.RestaurantID,
		&period,
		&rep.StartDate,
		&rep.EndDate,
		&rep.TotalPredictedOrders,
		&rep.TotalPredictedRevenue,
		&rep.ItemForecasts,
		&rep.BulkDiscountEligible,
		&rep.SuggestedDiscount,
		&status,
		&rep.RestaurantResponse,
		&rep.SentToRestaurant,
		&rep.HistoricalComparison,
		&rep.CreatedAt,
		&rep.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rep.ReportPeriod = models.ReportPeriod(period)
	rep.Status = models.ReportStatus(status)
	rep.StartDate = dateIn(rep.StartDate, r.loc)
	rep.EndDate = dateIn(rep.EndDate, r.loc)
	return &rep, nil
}

func itemForecasts(items []models.ItemForecast) []models.ItemForecast {
	if items == nil {
		return []models.ItemForecast{}
	}
	return items
}
