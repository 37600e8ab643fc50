package models

import (
	"time"

	"github.com/lib/pq"
)

// Product represents a catalog item. Prices are decimal BRL values; the
// price a customer actually pays is derived by catalog.EffectivePrice, never
// read from Price directly.
type Product struct {
	ID            string         `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	Description   string         `db:"description" json:"description"`
	Price         float64        `db:"price" json:"price"`
	HasDiscount   bool           `db:"has_discount" json:"hasDiscount"`
	DiscountPrice *float64       `db:"discount_price" json:"discountPrice,omitempty"`
	Images        pq.StringArray `db:"images" json:"images"`
	IsAvailable   bool           `db:"is_available" json:"isAvailable"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
}

// CartItem is a line in a session cart. ID equals the source product ID and
// is the merge key; Price is the effective price captured at add time and is
// never re-derived afterwards.
type CartItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Order represents a checkout created from a session cart
type Order struct {
	ID          string    `db:"id" json:"id"`
	SessionID   string    `db:"session_id" json:"session_id"`
	TotalAmount float64   `db:"total_amount" json:"total_amount"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// OrderItem represents a line in an order with the unit price frozen at
// checkout time
type OrderItem struct {
	ID        string  `db:"id" json:"id"`
	OrderID   string  `db:"order_id" json:"order_id"`
	ProductID string  `db:"product_id" json:"product_id"`
	Name      string  `db:"name" json:"name"`
	Quantity  int     `db:"quantity" json:"quantity"`
	UnitPrice float64 `db:"unit_price" json:"unit_price"`
}

// Payment represents a payment attempt at the hosted provider
type Payment struct {
	ID           string    `db:"id" json:"id"`
	OrderID      string    `db:"order_id" json:"order_id"`
	Status       string    `db:"status" json:"status"`
	PreferenceID string    `db:"preference_id" json:"preference_id,omitempty"`
	ProviderTxID string    `db:"provider_tx_id" json:"provider_tx_id,omitempty"`
	Amount       float64   `db:"amount" json:"amount"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Order statuses
const (
	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusCancelled = "CANCELLED"
)

// Payment statuses
const (
	PaymentStatusPending = "PENDING"
	PaymentStatusSuccess = "SUCCESS"
	PaymentStatusFailed  = "FAILED"
)

// ProcessedEvent for webhook idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
