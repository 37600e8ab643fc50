package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bakery-service/internal/broker"
	"bakery-service/internal/models"
	"bakery-service/internal/store"
	"bakery-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProviderConfig holds the hosted payment provider settings
type ProviderConfig struct {
	BaseURL         string
	AccessToken     string
	SuccessURL      string
	NotificationURL string
}

// PaymentService talks to the hosted payment provider and settles webhook
// notifications. Preference creation happens inline during checkout; the
// settlement path runs on the payment worker.
type PaymentService struct {
	store     *store.Store
	carts     *CartService
	publisher *broker.EventPublisher
	client    *http.Client
	cfg       ProviderConfig
	logger    *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(store *store.Store, carts *CartService, publisher *broker.EventPublisher, cfg ProviderConfig) *PaymentService {
	return &PaymentService{
		store:     store,
		carts:     carts,
		publisher: publisher,
		client:    &http.Client{Timeout: 15 * time.Second},
		cfg:       cfg,
		logger:    util.Named("payment"),
	}
}

// Preference is the provider-side checkout session the customer is
// redirected to
type Preference struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirect_url"`
}

type preferenceItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type preferenceRequest struct {
	Items             []preferenceItem  `json:"items"`
	BackURLs          map[string]string `json:"back_urls"`
	AutoReturn        string            `json:"auto_return"`
	NotificationURL   string            `json:"notification_url"`
	ExternalReference string            `json:"external_reference"`
}

type preferenceResponse struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// CreatePreference creates a payment preference at the provider for the
// given cart lines. Line prices are the captured cart prices, not
// re-derived from the catalog.
func (ps *PaymentService) CreatePreference(ctx context.Context, orderID string, items []models.CartItem) (*Preference, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.CreatePreference")
	defer span.End()

	start := time.Now()
	defer func() {
		util.PreferenceCreateLatency.Observe(time.Since(start).Seconds())
	}()

	prefItems := make([]preferenceItem, 0, len(items))
	for _, item := range items {
		prefItems = append(prefItems, preferenceItem{
			ID:         item.ID,
			Title:      item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.Price,
			CurrencyID: "BRL",
		})
	}

	body, err := json.Marshal(preferenceRequest{
		Items: prefItems,
		BackURLs: map[string]string{
			"success": ps.cfg.SuccessURL,
			"failure": ps.cfg.SuccessURL,
			"pending": ps.cfg.SuccessURL,
		},
		AutoReturn:        "approved",
		NotificationURL:   ps.cfg.NotificationURL,
		ExternalReference: orderID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		ps.cfg.BaseURL+"/checkout/preferences", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ps.cfg.AccessToken)

	resp, err := ps.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("preference request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var prefResp preferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&prefResp); err != nil {
		return nil, fmt.Errorf("failed to decode preference response: %w", err)
	}

	ps.logger.Info("Preference created",
		zap.String("order_id", orderID),
		zap.String("preference_id", prefResp.ID))

	return &Preference{ID: prefResp.ID, RedirectURL: prefResp.InitPoint}, nil
}

// WebhookNotification is the payload the provider posts to our webhook
type WebhookNotification struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
	ExternalReference string `json:"external_reference"`
	Status            string `json:"status"`
}

// HandleNotification acknowledges a provider webhook by turning it into a
// PaymentNotification event on the broker. The HTTP handler returns 200
// once the event is published; settlement happens on the worker.
func (ps *PaymentService) HandleNotification(ctx context.Context, n *WebhookNotification) error {
	ctx, span := util.StartSpan(ctx, "PaymentService.HandleNotification")
	defer span.End()

	util.PaymentWebhooksTotal.WithLabelValues(n.Type).Inc()

	event := &models.PaymentNotificationEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePaymentNotification,
			Timestamp: time.Now(),
		},
		ProviderEventType: n.Type,
		ProviderTxID:      n.Data.ID,
		OrderID:           n.ExternalReference,
		Approved:          n.Status == "approved",
	}

	if err := ps.publisher.PublishPaymentNotification(ctx, event); err != nil {
		return fmt.Errorf("failed to publish payment notification: %w", err)
	}
	return nil
}

// SettleNotification resolves a payment notification: it marks the payment
// and order, clears the session cart on success and records the event for
// idempotency. Safe to call more than once per event.
func (ps *PaymentService) SettleNotification(ctx context.Context, event *models.PaymentNotificationEvent) error {
	ctx, span := util.StartSpan(ctx, "PaymentService.SettleNotification")
	defer span.End()

	if event.ProviderEventType != "payment" {
		ps.logger.Debug("Ignoring non-payment notification",
			zap.String("provider_event_type", event.ProviderEventType))
		return nil
	}

	processed, err := ps.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		ps.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	order, err := ps.store.GetOrderByID(ctx, event.OrderID)
	if err != nil {
		return fmt.Errorf("failed to load order for notification: %w", err)
	}

	payment, err := ps.store.GetPaymentByOrderID(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load payment for order: %w", err)
	}

	if event.Approved {
		if err := ps.store.UpdatePaymentStatus(ctx, payment.ID, models.PaymentStatusSuccess, event.ProviderTxID); err != nil {
			return fmt.Errorf("failed to update payment status: %w", err)
		}
		if err := ps.store.UpdateOrderStatus(ctx, order.ID, models.OrderStatusPaid); err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		if err := ps.carts.ClearCart(ctx, order.SessionID); err != nil {
			ps.logger.Warn("Failed to clear cart after payment",
				zap.String("session_id", order.SessionID),
				zap.Error(err))
		}

		util.PaymentsSettledTotal.WithLabelValues("success").Inc()
		ps.logger.Info("Payment settled",
			zap.String("order_id", order.ID),
			zap.String("tx_id", event.ProviderTxID))
	} else {
		if err := ps.store.UpdatePaymentStatus(ctx, payment.ID, models.PaymentStatusFailed, event.ProviderTxID); err != nil {
			return fmt.Errorf("failed to update payment status: %w", err)
		}
		if err := ps.store.UpdateOrderStatus(ctx, order.ID, models.OrderStatusCancelled); err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		util.PaymentsSettledTotal.WithLabelValues("failed").Inc()
		ps.logger.Warn("Payment rejected", zap.String("order_id", order.ID))
	}

	settled := &models.PaymentSettledEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePaymentSettled,
			Timestamp: time.Now(),
		},
		OrderID:   order.ID,
		PaymentID: payment.ID,
		Amount:    payment.Amount,
		TxID:      event.ProviderTxID,
		Success:   event.Approved,
	}
	if err := ps.publisher.PublishPaymentSettled(ctx, settled); err != nil {
		ps.logger.Error("Failed to publish PaymentSettled event", zap.Error(err))
	}

	if err := ps.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		ps.logger.Error("Failed to mark event processed", zap.Error(err))
	}

	return nil
}
