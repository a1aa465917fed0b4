package models

import "time"

// Order is a record owned by the order-management system. The predictive
// services only read it, apart from materialising accepted suggestions.
type Order struct {
	ID               string      `json:"id"`
	UserID           string      `json:"user_id"`
	RestaurantID     string      `json:"restaurant_id"`
	Status           string      `json:"status"`
	OrderType        string      `json:"order_type,omitempty"`
	TotalAmount      float64     `json:"total_amount"`
	CreatedAt        time.Time   `json:"created_at"`
	DeliveredAt      *time.Time  `json:"delivered_at,omitempty"`
	DeliveryLocation *Location   `json:"delivery_location,omitempty"`
	Items            []OrderItem `json:"items"`

	// Restaurant is populated by sources that join it, nil otherwise.
	Restaurant *Restaurant `json:"restaurant,omitempty"`
}

type OrderItem struct {
	OrderID    string  `json:"order_id"`
	MenuItemID string  `json:"menu_item_id"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

// ItemSale is an order item joined with its parent order date and menu item name.
type ItemSale struct {
	OrderID    string    `json:"order_id"`
	MenuItemID string    `json:"menu_item_id"`
	ItemName   string    `json:"item_name"`
	Quantity   int       `json:"quantity"`
	Price      float64   `json:"price"`
	OrderedAt  time.Time `json:"ordered_at"`
}

type OrderMetrics struct {
	TotalOrders  int
	TotalRevenue float64
}
