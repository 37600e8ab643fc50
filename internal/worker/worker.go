package worker

import (
	"context"

	"bakery-service/internal/broker"
	"bakery-service/internal/service"
	"bakery-service/internal/util"

	"go.uber.org/zap"
)

// PaymentWorker consumes payment notification events and settles them
// against the order and payment records. Settlement is idempotent, so
// redelivered messages are harmless.
type PaymentWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewPaymentWorker creates a new payment worker
func NewPaymentWorker(consumer *broker.Consumer, payments *service.PaymentService) *PaymentWorker {
	eventHandler := broker.NewEventHandler()
	eventHandler.OnPaymentNotification(payments.SettleNotification)

	return &PaymentWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		logger:       util.Named("payment-worker"),
	}
}

// Start starts the worker loop until the context is cancelled
func (w *PaymentWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting payment worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *PaymentWorker) Stop() error {
	w.logger.Info("Stopping payment worker")
	return w.consumer.Close()
}
