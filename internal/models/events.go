package models

import "time"

// Event types
const (
	EventTypeOrderCreated   = "ORDER_CREATED"
	EventTypeOrderConfirmed = "ORDER_CONFIRMED"
	EventTypeOrderCancelled = "ORDER_CANCELLED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published after an order and its items are written
type OrderCreatedEvent struct {
	BaseEvent
	OrderID     string          `json:"order_id"`
	UserID      string          `json:"user_id"`
	OutletID    string          `json:"outlet_id"`
	TotalAmount float64         `json:"total_amount"`
	DeliveryFee float64         `json:"delivery_fee"`
	Items       []OrderItemData `json:"items"`
}

// OrderConfirmedEvent published when the outlet accepts an order
type OrderConfirmedEvent struct {
	BaseEvent
	OrderID  string `json:"order_id"`
	OutletID string `json:"outlet_id"`
}

// OrderCancelledEvent published when a customer cancels an order
type OrderCancelledEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	Reason  string `json:"reason"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID      string  `json:"product_id"`
	QuantityLitres float64 `json:"quantity_litres"`
	UnitPrice      float64 `json:"unit_price"`
}
