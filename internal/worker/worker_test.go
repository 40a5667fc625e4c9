package worker

import (
	"context"
	"errors"
	"testing"

	"juicedash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderConfirmer is a mock implementation of OrderConfirmer.
type MockOrderConfirmer struct {
	mock.Mock
}

func (m *MockOrderConfirmer) ConfirmPendingOrder(ctx context.Context, orderID string) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func createdEvent(orderID string) *models.OrderCreatedEvent {
	return &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-1",
			EventType: models.EventTypeOrderCreated,
		},
		OrderID:  orderID,
		OutletID: "outlet-1",
	}
}

func TestHandleOrderCreatedConfirmsPendingOrder(t *testing.T) {
	store := new(MockOrderConfirmer)
	store.On("ConfirmPendingOrder", mock.Anything, "order-1").Return(true, nil)

	w := NewDispatchWorker(nil, store, nil)
	err := w.handleOrderCreated(context.Background(), createdEvent("order-1"))

	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestHandleOrderCreatedSkipsNonPendingOrder(t *testing.T) {
	store := new(MockOrderConfirmer)
	store.On("ConfirmPendingOrder", mock.Anything, "order-1").Return(false, nil)

	w := NewDispatchWorker(nil, store, nil)
	err := w.handleOrderCreated(context.Background(), createdEvent("order-1"))

	// A cancelled-before-dispatch order is left alone, not an error.
	require.NoError(t, err)
}

func TestHandleOrderCreatedPropagatesStoreError(t *testing.T) {
	store := new(MockOrderConfirmer)
	store.On("ConfirmPendingOrder", mock.Anything, "order-1").Return(false, errors.New("db down"))

	w := NewDispatchWorker(nil, store, nil)
	err := w.handleOrderCreated(context.Background(), createdEvent("order-1"))

	assert.Error(t, err)
}
