package models

import "time"

// Event types
const (
	EventTypeCheckoutCreated     = "CHECKOUT_CREATED"
	EventTypePaymentNotification = "PAYMENT_NOTIFICATION"
	EventTypePaymentSettled      = "PAYMENT_SETTLED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// CheckoutCreatedEvent published when a cart is turned into an order
type CheckoutCreatedEvent struct {
	BaseEvent
	OrderID      string          `json:"order_id"`
	SessionID    string          `json:"session_id"`
	TotalAmount  float64         `json:"total_amount"`
	PreferenceID string          `json:"preference_id"`
	Items        []OrderItemData `json:"items"`
}

// PaymentNotificationEvent published when the provider webhook fires. The
// raw provider payload is carried opaquely; the worker interprets it.
type PaymentNotificationEvent struct {
	BaseEvent
	ProviderEventType string `json:"provider_event_type"`
	ProviderTxID      string `json:"provider_tx_id"`
	OrderID           string `json:"order_id"`
	Approved          bool   `json:"approved"`
}

// PaymentSettledEvent published after the worker resolves a notification
type PaymentSettledEvent struct {
	BaseEvent
	OrderID   string  `json:"order_id"`
	PaymentID string  `json:"payment_id"`
	Amount    float64 `json:"amount"`
	TxID      string  `json:"tx_id"`
	Success   bool    `json:"success"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}
