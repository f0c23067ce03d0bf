package contracts

import "time"

const (
	TopicOrders = "storefront.orders"

	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

type Event struct {
	EventID   string         `json:"event_id"`
	OrderID   string         `json:"order_id"`
	Type      string         `json:"type"`
	CreatedAt time.Time      `json:"created_at"`
	Payload   map[string]any `json:"payload"`
}
