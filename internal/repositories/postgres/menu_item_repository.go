package postgres

import (
	"context"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MenuItemRepository struct {
	pool *pgxpool.Pool
}

func NewMenuItemRepository(pool *pgxpool.Pool) *MenuItemRepository {
	return &MenuItemRepository{pool: pool}
}

func (r *MenuItemRepository) BulkCreate(ctx context.Context, menuItems []*models.MenuItem) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"menu_items"},
		[]string{"id", "restaurant_id", "name", "price", "category", "is_available"},
		pgx.CopyFromSlice(len(menuItems), func(i int) ([]interface{}, error) {
			return []interface{}{
				menuItems[i].ID,
				menuItems[i].RestaurantID,
				menuItems[i].Name,
				menuItems[i].Price,
				menuItems[i].Category,
				menuItems[i].IsAvailable,
			}, nil
		}),
	)
	return err
}

func (r *MenuItemRepository) query(ctx context.Context, where string, args ...interface{}) ([]*models.MenuItem, error) {
	query := `
        SELECT id, restaurant_id, name, price::float8, category, is_available
        FROM menu_items
        WHERE ` + where + `
        ORDER BY id
    `
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var menuItems []*models.MenuItem
	for rows.Next() {
		menuItem := &models.MenuItem{}
		err := rows.Scan(
			&menuItem.ID,
			&menuItem.RestaurantID,
			&menuItem.Name,
			&menuItem.Price,
			&menuItem.Category,
			&menuItem.IsAvailable,
		)
		if err != nil {
			return nil, err
		}
		menuItems = append(menuItems, menuItem)
	}
	return menuItems, rows.Err()
}

func (r *MenuItemRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.MenuItem, error) {
	items, err := r.query(ctx, "id = ANY($1)", ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.MenuItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return byID, nil
}

func (r *MenuItemRepository) GetByRestaurantID(ctx context.Context, restaurantID string) ([]*models.MenuItem, error) {
	return r.query(ctx, "restaurant_id = $1", restaurantID)
}

func (r *MenuItemRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM menu_items").Scan(&count)
	return count, err
}
