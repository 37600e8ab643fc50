package service

import (
	"context"
	"fmt"
	"time"

	"bakery-service/internal/broker"
	"bakery-service/internal/models"
	"bakery-service/internal/store"
	"bakery-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutService turns a session cart into an order with a pending
// payment at the hosted provider
type CheckoutService struct {
	store     *store.Store
	carts     *CartService
	payments  *PaymentService
	publisher *broker.EventPublisher
	logger    *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(store *store.Store, carts *CartService, payments *PaymentService, publisher *broker.EventPublisher) *CheckoutService {
	return &CheckoutService{
		store:     store,
		carts:     carts,
		payments:  payments,
		publisher: publisher,
		logger:    util.Named("checkout"),
	}
}

// CheckoutResponse is returned to the client to redirect it to the
// provider
type CheckoutResponse struct {
	OrderID      string  `json:"order_id"`
	PreferenceID string  `json:"preference_id"`
	RedirectURL  string  `json:"redirect_url"`
	TotalAmount  float64 `json:"total_amount"`
}

// CreateCheckout persists an order for the session cart and opens a
// payment preference at the provider. The cart stays intact until the
// payment is confirmed by the worker.
func (cs *CheckoutService) CreateCheckout(ctx context.Context, sessionID string) (*CheckoutResponse, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.CreateCheckout")
	defer span.End()

	summary, err := cs.carts.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if summary.ItemCount == 0 {
		util.CheckoutsFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, fmt.Errorf("cart is empty")
	}

	order := &models.Order{
		SessionID:   sessionID,
		TotalAmount: summary.Total,
		Status:      models.OrderStatusPending,
	}
	if err := cs.store.CreateOrder(ctx, order); err != nil {
		util.CheckoutsFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	eventItems := make([]models.OrderItemData, 0, len(summary.Items))
	for _, item := range summary.Items {
		orderItem := &models.OrderItem{
			OrderID:   order.ID,
			ProductID: item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		}
		if err := cs.store.CreateOrderItem(ctx, orderItem); err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
		eventItems = append(eventItems, models.OrderItemData{
			ProductID: item.ID,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		})
	}

	pref, err := cs.payments.CreatePreference(ctx, order.ID, summary.Items)
	if err != nil {
		_ = cs.store.UpdateOrderStatus(ctx, order.ID, models.OrderStatusCancelled)
		util.CheckoutsFailedTotal.WithLabelValues("provider_error").Inc()
		return nil, fmt.Errorf("failed to create payment preference: %w", err)
	}

	payment := &models.Payment{
		OrderID:      order.ID,
		Status:       models.PaymentStatusPending,
		PreferenceID: pref.ID,
		Amount:       order.TotalAmount,
	}
	if err := cs.store.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	util.CheckoutsCreatedTotal.Inc()
	cs.logger.Info("Checkout created",
		zap.String("order_id", order.ID),
		zap.String("preference_id", pref.ID),
		zap.Float64("total", order.TotalAmount))

	event := &models.CheckoutCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCheckoutCreated,
			Timestamp: time.Now(),
		},
		OrderID:      order.ID,
		SessionID:    sessionID,
		TotalAmount:  order.TotalAmount,
		PreferenceID: pref.ID,
		Items:        eventItems,
	}
	if err := cs.publisher.PublishCheckoutCreated(ctx, event); err != nil {
		cs.logger.Error("Failed to publish CheckoutCreated event", zap.Error(err))
	}

	return &CheckoutResponse{
		OrderID:      order.ID,
		PreferenceID: pref.ID,
		RedirectURL:  pref.RedirectURL,
		TotalAmount:  order.TotalAmount,
	}, nil
}

// GetOrder retrieves an order with its items and latest payment
func (cs *CheckoutService) GetOrder(ctx context.Context, orderID string) (*models.Order, []models.OrderItem, *models.Payment, error) {
	order, err := cs.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, nil, err
	}

	items, err := cs.store.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, nil, err
	}

	payment, err := cs.store.GetPaymentByOrderID(ctx, orderID)
	if err != nil {
		// orders briefly have no payment row between order insert and
		// preference creation
		payment = nil
	}

	return order, items, payment, nil
}
