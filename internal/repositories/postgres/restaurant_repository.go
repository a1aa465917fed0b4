package postgres

import (
	"context"
	"errors"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RestaurantRepository struct {
	pool *pgxpool.Pool
}

func NewRestaurantRepository(pool *pgxpool.Pool) *RestaurantRepository {
	return &RestaurantRepository{pool: pool}
}

const restaurantColumns = `
            id, name, cuisine_type,
            COALESCE(ST_X(location::geometry), 0) AS longitude,
            COALESCE(ST_Y(location::geometry), 0) AS latitude`

func (r *RestaurantRepository) BulkCreate(ctx context.Context, restaurants []*models.Restaurant) error {
	query := `
        INSERT INTO restaurants (id, name, cuisine_type, location)
        VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography)
        ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, cuisine_type = EXCLUDED.cuisine_type
    `
	return execTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, restaurant := range restaurants {
			_, err := tx.Exec(ctx, query,
				restaurant.ID,
				restaurant.Name,
				restaurant.CuisineType,
				restaurant.Location.Lon,
				restaurant.Location.Lat,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func scanRestaurant(row pgx.Row) (*models.Restaurant, error) {
	restaurant := &models.Restaurant{}
	err := row.Scan(
		&restaurant.ID,
		&restaurant.Name,
		&restaurant.CuisineType,
		&restaurant.Location.Lon,
		&restaurant.Location.Lat,
	)
	return restaurant, err
}

func (r *RestaurantRepository) Get(ctx context.Context, id string) (*models.Restaurant, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`, id)
	restaurant, err := scanRestaurant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NotFound("restaurant", id)
	}
	if err != nil {
		return nil, err
	}
	return restaurant, nil
}

func (r *RestaurantRepository) GetAll(ctx context.Context) (map[string]*models.Restaurant, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+restaurantColumns+` FROM restaurants`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	restaurants := make(map[string]*models.Restaurant)
	for rows.Next() {
		restaurant, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		restaurants[restaurant.ID] = restaurant
	}
	return restaurants, rows.Err()
}

func (r *RestaurantRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM restaurants").Scan(&count)
	return count, err
}
