package store

import (
	"context"
	"database/sql"
	"fmt"

	"bakery-service/internal/models"

	"github.com/google/uuid"
)

// CreateOrder creates a new order
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	order.ID = uuid.New().String()

	query := `
		INSERT INTO orders (id, session_id, total_amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	row := s.db.QueryRowxContext(ctx, query,
		order.ID, order.SessionID, order.TotalAmount, order.Status)
	return row.Scan(&order.CreatedAt, &order.UpdatedAt)
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus updates order status
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	return err
}

// CreateOrderItem creates a new order item
func (s *Store) CreateOrderItem(ctx context.Context, item *models.OrderItem) error {
	item.ID = uuid.New().String()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO order_items (id, order_id, product_id, name, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		item.ID, item.OrderID, item.ProductID, item.Name, item.Quantity, item.UnitPrice)
	return err
}

// GetOrderItemsByOrderID retrieves all items for an order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1", orderID)
	return items, err
}

// CreatePayment creates a new payment record
func (s *Store) CreatePayment(ctx context.Context, payment *models.Payment) error {
	payment.ID = uuid.New().String()

	query := `
		INSERT INTO payments (id, order_id, status, preference_id, provider_tx_id, amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	row := s.db.QueryRowxContext(ctx, query,
		payment.ID, payment.OrderID, payment.Status,
		payment.PreferenceID, payment.ProviderTxID, payment.Amount)
	return row.Scan(&payment.CreatedAt, &payment.UpdatedAt)
}

// GetPaymentByPreferenceID retrieves the payment tied to a provider
// preference. Webhook notifications correlate on this ID.
func (s *Store) GetPaymentByPreferenceID(ctx context.Context, preferenceID string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.GetContext(ctx, &payment,
		"SELECT * FROM payments WHERE preference_id = $1 ORDER BY created_at DESC LIMIT 1", preferenceID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payment not found for preference: %s", preferenceID)
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetPaymentByOrderID retrieves payment for an order
func (s *Store) GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.GetContext(ctx, &payment,
		"SELECT * FROM payments WHERE order_id = $1 ORDER BY created_at DESC LIMIT 1", orderID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payment not found for order: %s", orderID)
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdatePaymentStatus updates payment status
func (s *Store) UpdatePaymentStatus(ctx context.Context, paymentID string, status, providerTxID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE payments SET status = $1, provider_tx_id = $2, updated_at = NOW() WHERE id = $3",
		status, providerTxID, paymentID)
	return err
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
