package postgres

import (
	"context"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// BulkCreate inserts orders and their items in one transaction. Orders go
// through a batch for the geography column, items through COPY.
func (r *OrderRepository) BulkCreate(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	query := `
        INSERT INTO orders (
            id, user_id, restaurant_id, status, order_type, total_amount,
            created_at, delivered_at, delivery_location
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8,
            ST_SetSRID(ST_MakePoint($9::float8, $10::float8), 4326)::geography
        )
    `
	type itemRow struct {
		orderID string
		item    models.OrderItem
	}
	var items []itemRow
	batch := &pgx.Batch{}
	for _, o := range orders {
		var lon, lat *float64
		if o.DeliveryLocation != nil {
			lon, lat = &o.DeliveryLocation.Lon, &o.DeliveryLocation.Lat
		}
		orderType := o.OrderType
		if orderType == "" {
			orderType = models.OrderTypeRegular
		}
		batch.Queue(query,
			o.ID,
			o.UserID,
			o.RestaurantID,
			o.Status,
			orderType,
			o.TotalAmount,
			o.CreatedAt,
			o.DeliveredAt,
			lon,
			lat,
		)
		for _, item := range o.Items {
			items = append(items, itemRow{orderID: o.ID, item: item})
		}
	}

	return execTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
		_, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{"order_items"},
			[]string{"order_id", "menu_item_id", "quantity", "price"},
			pgx.CopyFromSlice(len(items), func(i int) ([]interface{}, error) {
				return []interface{}{
					items[i].orderID,
					items[i].item.MenuItemID,
					items[i].item.Quantity,
					items[i].item.Price,
				}, nil
			}),
		)
		return err
	})
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.BulkCreate(ctx, []models.Order{*order})
}

func (r *OrderRepository) DeliveredByUser(ctx context.Context, userID string) ([]models.Order, error) {
	query := `
        SELECT
            o.id, o.user_id, o.restaurant_id, o.status, o.order_type,
            o.total_amount::float8, o.created_at, o.delivered_at,
            ST_AsText(o.delivery_location::geometry),
            r.name, r.cuisine_type
        FROM orders o
        LEFT JOIN restaurants r ON r.id = o.restaurant_id
        WHERE o.user_id = $1 AND o.status = $2
        ORDER BY o.created_at, o.id
    `
	rows, err := r.pool.Query(ctx, query, userID, models.OrderStatusDelivered)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	index := make(map[string]int)
	for rows.Next() {
		var o models.Order
		var point, restaurantName, cuisine *string
		err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.RestaurantID,
			&o.Status,
			&o.OrderType,
			&o.TotalAmount,
			&o.CreatedAt,
			&o.DeliveredAt,
			&point,
			&restaurantName,
			&cuisine,
		)
		if err != nil {
			return nil, err
		}
		if point != nil {
			o.DeliveryLocation = &models.Location{}
			if err := o.DeliveryLocation.Scan(*point); err != nil {
				return nil, err
			}
		}
		if restaurantName != nil {
			o.Restaurant = &models.Restaurant{ID: o.RestaurantID, Name: *restaurantName}
			if cuisine != nil {
				o.Restaurant.CuisineType = *cuisine
			}
		}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	itemRows, err := r.pool.Query(ctx, `
        SELECT order_id, menu_item_id, quantity, price::float8
        FROM order_items
        WHERE order_id = ANY($1)
        ORDER BY id
    `, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var item models.OrderItem
		if err := itemRows.Scan(&item.OrderID, &item.MenuItemID, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return orders, itemRows.Err()
}

func (r *OrderRepository) ItemSales(ctx context.Context, restaurantID string, from, to time.Time) ([]models.ItemSale, error) {
	query := `
        SELECT oi.order_id, oi.menu_item_id, COALESCE(mi.name, ''), oi.quantity, oi.price::float8, o.created_at
        FROM order_items oi
        JOIN orders o ON o.id = oi.order_id
        LEFT JOIN menu_items mi ON mi.id = oi.menu_item_id
        WHERE o.restaurant_id = $1 AND o.status = $2
          AND o.created_at >= $3 AND o.created_at < $4
        ORDER BY o.created_at, oi.id
    `
	rows, err := r.pool.Query(ctx, query, restaurantID, models.OrderStatusDelivered, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []models.ItemSale
	for rows.Next() {
		var sale models.ItemSale
		err := rows.Scan(
			&sale.OrderID,
			&sale.MenuItemID,
			&sale.ItemName,
			&sale.Quantity,
			&sale.Price,
			&sale.OrderedAt,
		)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

func (r *OrderRepository) ListInWindow(ctx context.Context, statuses []string, from, to time.Time) ([]models.Order, error) {
	query := `
        SELECT
            id, user_id, restaurant_id, status, order_type, total_amount::float8,
            created_at, delivered_at, ST_AsText(delivery_location::geometry)
        FROM orders
        WHERE status = ANY($1) AND created_at >= $2 AND created_at < $3
        ORDER BY created_at, id
    `
	rows, err := r.pool.Query(ctx, query, statuses, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		var point *string
		err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.RestaurantID,
			&o.Status,
			&o.OrderType,
			&o.TotalAmount,
			&o.CreatedAt,
			&o.DeliveredAt,
			&point,
		)
		if err != nil {
			return nil, err
		}
		if point != nil {
			o.DeliveryLocation = &models.Location{}
			if err := o.DeliveryLocation.Scan(*point); err != nil {
				return nil, err
			}
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) RestaurantMetrics(ctx context.Context, restaurantID string, from, to time.Time) (models.OrderMetrics, error) {
	var m models.OrderMetrics
	err := r.pool.QueryRow(ctx, `
        SELECT COUNT(*), COALESCE(SUM(total_amount), 0)::float8
        FROM orders
        WHERE restaurant_id = $1 AND status = $2 AND created_at >= $3 AND created_at < $4
    `, restaurantID, models.OrderStatusDelivered, from, to).Scan(&m.TotalOrders, &m.TotalRevenue)
	return m, err
}

func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders").Scan(&count)
	return count, err
}
