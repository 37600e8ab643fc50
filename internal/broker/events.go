package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"bakery-service/internal/models"
	"bakery-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishCheckoutCreated publishes a CheckoutCreated event
func (ep *EventPublisher) PublishCheckoutCreated(ctx context.Context, event *models.CheckoutCreatedEvent) error {
	key := fmt.Sprintf("order-%s", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPaymentNotification publishes a PaymentNotification event
func (ep *EventPublisher) PublishPaymentNotification(ctx context.Context, event *models.PaymentNotificationEvent) error {
	key := fmt.Sprintf("payment-%s", event.ProviderTxID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPaymentSettled publishes a PaymentSettled event
func (ep *EventPublisher) PublishPaymentSettled(ctx context.Context, event *models.PaymentSettledEvent) error {
	key := fmt.Sprintf("order-%s", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered handlers
type EventHandler struct {
	logger                *zap.Logger
	onPaymentNotification func(context.Context, *models.PaymentNotificationEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.Named("events")}
}

// OnPaymentNotification registers a handler for PaymentNotification events
func (eh *EventHandler) OnPaymentNotification(handler func(context.Context, *models.PaymentNotificationEvent) error) {
	eh.onPaymentNotification = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypePaymentNotification:
		if eh.onPaymentNotification != nil {
			var event models.PaymentNotificationEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PaymentNotification event: %w", err)
			}
			return eh.onPaymentNotification(ctx, &event)
		}

	default:
		eh.logger.Debug("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
