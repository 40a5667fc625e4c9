package worker

import (
	"context"
	"time"

	"juicedash/internal/broker"
	"juicedash/internal/models"
	"juicedash/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderConfirmer is the store operation the dispatch worker needs.
type OrderConfirmer interface {
	ConfirmPendingOrder(ctx context.Context, orderID string) (bool, error)
}

// DispatchWorker simulates outlet acceptance: it consumes OrderCreated
// events and moves pending orders to confirmed. Orders cancelled before
// the worker gets to them stay untouched.
type DispatchWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        OrderConfirmer
	publisher    *broker.EventPublisher
	logger       *zap.Logger
}

// NewDispatchWorker creates a new dispatch worker
func NewDispatchWorker(consumer *broker.Consumer, store OrderConfirmer, publisher *broker.EventPublisher) *DispatchWorker {
	w := &DispatchWorker{
		consumer:  consumer,
		store:     store,
		publisher: publisher,
		logger:    util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderCreated(w.handleOrderCreated)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *DispatchWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting dispatch worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *DispatchWorker) Stop() error {
	w.logger.Info("Stopping dispatch worker")
	return w.consumer.Close()
}

func (w *DispatchWorker) handleOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	confirmed, err := w.store.ConfirmPendingOrder(ctx, event.OrderID)
	if err != nil {
		w.logger.Error("Failed to confirm order",
			zap.String("order_id", event.OrderID),
			zap.Error(err))
		return err
	}

	if !confirmed {
		w.logger.Info("Order no longer pending, skipping confirmation",
			zap.String("order_id", event.OrderID))
		return nil
	}

	w.logger.Info("Order confirmed", zap.String("order_id", event.OrderID))

	if w.publisher != nil {
		confirmedEvent := &models.OrderConfirmedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderConfirmed,
				Timestamp: time.Now(),
			},
			OrderID:  event.OrderID,
			OutletID: event.OutletID,
		}
		if err := w.publisher.PublishOrderConfirmed(ctx, confirmedEvent); err != nil {
			w.logger.Error("Failed to publish OrderConfirmed event",
				zap.String("order_id", event.OrderID),
				zap.Error(err))
		}
	}

	return nil
}
