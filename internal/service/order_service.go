package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"juicedash/internal/models"
	"juicedash/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderStore is the slice of the store the order pipeline depends on.
type OrderStore interface {
	GetAvailableProductByID(ctx context.Context, id string) (*models.Product, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	DeleteOrder(ctx context.Context, orderID string) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error)
	GetOrderDetails(ctx context.Context, orderID string) (*models.OrderDetails, error)
	GetOrdersByUserID(ctx context.Context, userID string) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
}

// OutletResolver resolves the nearest active outlet for a coordinate.
type OutletResolver interface {
	NearestOutlet(ctx context.Context, lat, lng float64) (*models.NearestOutlet, error)
}

// Publisher publishes order lifecycle events.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error
}

// TrackingCache is the optional cache for tracking snapshots.
type TrackingCache interface {
	GetTrackingSnapshot(ctx context.Context, orderID string) (*models.OrderTracking, error)
	SetTrackingSnapshot(ctx context.Context, orderID string, tracking *models.OrderTracking, ttl time.Duration) error
	DeleteTrackingSnapshot(ctx context.Context, orderID string) error
}

const (
	maxQuantityLitres  = 10.0
	trackingCacheTTL   = 15 * time.Second
	defaultPayMethod   = "cash_on_delivery"
	cancelReasonByUser = "cancelled_by_customer"
)

// Demo rider roster. Assignment is random at order creation.
var demoRiders = []models.Rider{
	{Name: "Budi Santoso", Phone: "+62811111001", Plate: "B 4321 JD"},
	{Name: "Agus Wijaya", Phone: "+62811111002", Plate: "B 8765 KF"},
	{Name: "Siti Rahma", Phone: "+62811111003", Plate: "B 1357 LM"},
	{Name: "Dewi Lestari", Phone: "+62811111004", Plate: "B 2468 NP"},
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	UserID          string             `json:"user_id" binding:"required"`
	Items           []OrderItemRequest `json:"items" binding:"required,min=1"`
	DeliveryAddress DeliveryAddress    `json:"delivery_address" binding:"required"`
	DeliveryLat     float64            `json:"delivery_lat" binding:"required"`
	DeliveryLng     float64            `json:"delivery_lng" binding:"required"`
	PaymentMethod   string             `json:"payment_method,omitempty"`
	Notes           string             `json:"notes,omitempty"`
}

// OrderItemRequest represents an item in an order
type OrderItemRequest struct {
	ProductID      string  `json:"product_id" binding:"required"`
	QuantityLitres float64 `json:"quantity_litres" binding:"required"`
}

// DeliveryAddress is the structured delivery address
type DeliveryAddress struct {
	Street   string `json:"street" binding:"required"`
	City     string `json:"city" binding:"required"`
	District string `json:"district" binding:"required"`
}

// ReorderRequest carries optional overrides when re-placing a prior
// order; anything unset is copied from the original.
type ReorderRequest struct {
	DeliveryAddress *DeliveryAddress `json:"delivery_address,omitempty"`
	DeliveryLat     *float64         `json:"delivery_lat,omitempty"`
	DeliveryLng     *float64         `json:"delivery_lng,omitempty"`
	PaymentMethod   string           `json:"payment_method,omitempty"`
	Notes           string           `json:"notes,omitempty"`
}

// OrderService runs the order pricing and assembly pipeline.
type OrderService struct {
	store     OrderStore
	resolver  OutletResolver
	publisher Publisher
	cache     TrackingCache
	tariff    Tariff
	sampler   Sampler
	now       func() time.Time
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store OrderStore, resolver OutletResolver, publisher Publisher, cache TrackingCache, tariff Tariff) *OrderService {
	return &OrderService{
		store:     store,
		resolver:  resolver,
		publisher: publisher,
		cache:     cache,
		tariff:    tariff,
		sampler:   globalSampler{},
		now:       time.Now,
		logger:    util.GetLogger(),
	}
}

// WithSampler overrides the random source used for rider assignment.
func (s *OrderService) WithSampler(sampler Sampler) *OrderService {
	s.sampler = sampler
	return s
}

// WithClock overrides the time source.
func (s *OrderService) WithClock(now func() time.Time) *OrderService {
	s.now = now
	return s
}

// CreateOrder resolves the nearest outlet, prices every line item
// against current catalog prices, and persists the order. If line-item
// persistence fails after the header was written, the header is
// deleted before the error is surfaced.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.OrderDetails, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.OrderPipelineLatency.Observe(time.Since(start).Seconds())
	}()

	if err := validateCreateOrderRequest(req); err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	nearest, err := s.resolver.NearestOutlet(ctx, req.DeliveryLat, req.DeliveryLng)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("resolver_error").Inc()
		return nil, models.WrapDomainError(models.ErrCodeStoreUnavailable, "failed to resolve nearest outlet", err)
	}
	if nearest == nil {
		util.OrdersFailedTotal.WithLabelValues("no_outlet").Inc()
		return nil, models.ErrNoOutletAvailable
	}

	now := s.now()
	deliveryFee := s.tariff.DeliveryFee(nearest.DistanceKm)
	estimatedDelivery := s.tariff.EstimatedDeliveryTime(now, nearest.DistanceKm)

	orderID := uuid.New().String()
	items := make([]models.OrderItem, 0, len(req.Items))
	totalAmount := 0.0

	for _, item := range req.Items {
		product, err := s.store.GetAvailableProductByID(ctx, item.ProductID)
		if err != nil {
			util.OrdersFailedTotal.WithLabelValues("store_error").Inc()
			return nil, models.WrapDomainError(models.ErrCodeStoreUnavailable, "failed to fetch product", err)
		}
		if product == nil {
			util.OrdersFailedTotal.WithLabelValues("product_unavailable").Inc()
			return nil, models.NewDomainError(models.ErrCodeProductUnavailable,
				fmt.Sprintf("product %s is not available", item.ProductID))
		}

		subtotal := product.PricePerLitre * item.QuantityLitres
		totalAmount += subtotal

		items = append(items, models.OrderItem{
			ID:             uuid.New().String(),
			OrderID:        orderID,
			ProductID:      product.ID,
			QuantityLitres: item.QuantityLitres,
			UnitPrice:      product.PricePerLitre,
			Subtotal:       subtotal,
		})
	}
	totalAmount += deliveryFee

	rider := demoRiders[s.sampler.Intn(len(demoRiders))]
	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = defaultPayMethod
	}

	order := &models.Order{
		ID:                    orderID,
		UserID:                req.UserID,
		OutletID:              nearest.OutletID,
		Status:                models.OrderStatusPending,
		TotalAmount:           totalAmount,
		DeliveryFee:           deliveryFee,
		DeliveryStreet:        req.DeliveryAddress.Street,
		DeliveryCity:          req.DeliveryAddress.City,
		DeliveryDistrict:      req.DeliveryAddress.District,
		DeliveryLat:           req.DeliveryLat,
		DeliveryLng:           req.DeliveryLng,
		PaymentMethod:         paymentMethod,
		Notes:                 req.Notes,
		RiderName:             rider.Name,
		RiderPhone:            rider.Phone,
		RiderPlate:            rider.Plate,
		EstimatedDeliveryTime: estimatedDelivery,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, models.WrapDomainError(models.ErrCodeOrderCreationFailed, "failed to create order", err)
	}

	if err := s.store.CreateOrderItems(ctx, items); err != nil {
		// Compensating rollback: never leave a header without items.
		util.OrderRollbacksTotal.Inc()
		if delErr := s.store.DeleteOrder(ctx, orderID); delErr != nil {
			s.logger.Error("Compensating order deletion failed",
				zap.String("order_id", orderID),
				zap.Error(delErr))
		}
		util.OrdersFailedTotal.WithLabelValues("items_db_error").Inc()
		return nil, models.WrapDomainError(models.ErrCodeOrderItemsFailed, "failed to create order items", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", orderID),
		zap.String("outlet_id", nearest.OutletID),
		zap.Float64("total_amount", totalAmount))

	s.publishOrderCreated(ctx, order, items)

	// Enrichment is best-effort: the order is already durable.
	details, err := s.store.GetOrderDetails(ctx, orderID)
	if err != nil {
		s.logger.Warn("Order enrichment fetch failed, returning bare header",
			zap.String("order_id", orderID),
			zap.Error(err))
		return &models.OrderDetails{Order: *order}, nil
	}
	return details, nil
}

func validateCreateOrderRequest(req *CreateOrderRequest) error {
	if req == nil || len(req.Items) == 0 {
		return models.ErrEmptyItems
	}
	if req.UserID == "" {
		return models.NewDomainError(models.ErrCodeInvalidInput, "user_id is required")
	}
	for i, item := range req.Items {
		if item.ProductID == "" {
			return models.NewDomainError(models.ErrCodeInvalidInput,
				fmt.Sprintf("item %d: product_id is required", i))
		}
		if item.QuantityLitres <= 0 || item.QuantityLitres > maxQuantityLitres {
			return models.NewDomainError(models.ErrCodeInvalidInput,
				fmt.Sprintf("item %d: quantity_litres must be greater than 0 and at most %s litres",
					i, strconv.FormatFloat(maxQuantityLitres, 'f', -1, 64)))
		}
	}
	return nil
}

func (s *OrderService) publishOrderCreated(ctx context.Context, order *models.Order, items []models.OrderItem) {
	if s.publisher == nil {
		return
	}

	eventItems := make([]models.OrderItemData, len(items))
	for i, item := range items {
		eventItems[i] = models.OrderItemData{
			ProductID:      item.ProductID,
			QuantityLitres: item.QuantityLitres,
			UnitPrice:      item.UnitPrice,
		}
	}

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: s.now(),
		},
		OrderID:     order.ID,
		UserID:      order.UserID,
		OutletID:    order.OutletID,
		TotalAmount: order.TotalAmount,
		DeliveryFee: order.DeliveryFee,
		Items:       eventItems,
	}

	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event",
			zap.String("order_id", order.ID),
			zap.Error(err))
	}
}

// Reorder re-runs the full pipeline from a prior order's line items
// and addressing. Prices are re-resolved against the current catalog,
// never copied.
func (s *OrderService) Reorder(ctx context.Context, orderID string, overrides *ReorderRequest) (*models.OrderDetails, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Reorder")
	defer span.End()

	prior, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, models.WrapDomainError(models.ErrCodeStoreUnavailable, "failed to load order", err)
	}
	if prior == nil {
		return nil, models.ErrOrderNotFound
	}

	priorItems, err := s.store.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, models.WrapDomainError(models.ErrCodeStoreUnavailable, "failed to load order items", err)
	}

	req := &CreateOrderRequest{
		UserID: prior.UserID,
		DeliveryAddress: DeliveryAddress{
			Street:   prior.DeliveryStreet,
			City:     prior.DeliveryCity,
			District: prior.DeliveryDistrict,
		},
		DeliveryLat:   prior.DeliveryLat,
		DeliveryLng:   prior.DeliveryLng,
		PaymentMethod: prior.PaymentMethod,
		Notes:         prior.Notes,
	}
	for _, item := range priorItems {
		req.Items = append(req.Items, OrderItemRequest{
			ProductID:      item.ProductID,
			QuantityLitres: item.QuantityLitres,
		})
	}

	if overrides != nil {
		if overrides.DeliveryAddress != nil {
			req.DeliveryAddress = *overrides.DeliveryAddress
		}
		if overrides.DeliveryLat != nil {
			req.DeliveryLat = *overrides.DeliveryLat
		}
		if overrides.DeliveryLng != nil {
			req.DeliveryLng = *overrides.DeliveryLng
		}
		if overrides.PaymentMethod != "" {
			req.PaymentMethod = overrides.PaymentMethod
		}
		if overrides.Notes != "" {
			req.Notes = overrides.Notes
		}
	}

	return s.CreateOrder(ctx, req)
}

// GetOrder retrieves the fully joined order
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.OrderDetails, error) {
	details, err := s.store.GetOrderDetails(ctx, orderID)
	if err != nil {
		var domainErr *models.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, models.WrapDomainError(models.ErrCodeStoreUnavailable, "failed to load order", err)
	}
	return details, nil
}

// ListOrders retrieves a user's orders, newest first
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	if userID == "" {
		return nil, models.NewDomainError(models.ErrCodeInvalidInput, "user_id is required")
	}
	orders, err := s.store.GetOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, models.WrapDomainError(models.ErrCodeStoreUnavailable, "failed to list orders", err)
	}
	return orders, nil
}

// TrackOrder derives the tracking view for an order: fixed progress
// percentage and message per status, and whole minutes remaining for
// in-flight orders.
func (s *OrderService) TrackOrder(ctx context.Context, orderID string) (*models.OrderTracking, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.TrackOrder")
	defer span.End()

	if s.cache != nil {
		if cached, err := s.cache.GetTrackingSnapshot(ctx, orderID); err == nil && cached != nil {
			return cached, nil
		}
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, models.WrapDomainError(models.ErrCodeStoreUnavailable, "failed to load order", err)
	}
	if order == nil {
		return nil, models.ErrOrderNotFound
	}

	tracking := &models.OrderTracking{
		OrderID:               order.ID,
		Status:                order.Status,
		ProgressPercent:       ProgressForStatus(order.Status),
		StatusMessage:         MessageForStatus(order.Status),
		EstimatedDeliveryTime: order.EstimatedDeliveryTime,
		TimeRemainingMinutes:  TimeRemainingMinutes(order.Status, order.EstimatedDeliveryTime, s.now()),
	}
	if order.RiderName != "" {
		tracking.Rider = &models.Rider{
			Name:  order.RiderName,
			Phone: order.RiderPhone,
			Plate: order.RiderPlate,
		}
	}

	if s.cache != nil {
		if err := s.cache.SetTrackingSnapshot(ctx, orderID, tracking, trackingCacheTTL); err != nil {
			s.logger.Warn("Tracking cache write failed", zap.Error(err))
		}
	}
	return tracking, nil
}

// CancelOrder cancels an order. Only pending and confirmed orders can
// be cancelled.
func (s *OrderService) CancelOrder(ctx context.Context, orderID string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CancelOrder")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, models.WrapDomainError(models.ErrCodeStoreUnavailable, "failed to load order", err)
	}
	if order == nil {
		return nil, models.ErrOrderNotFound
	}

	if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusConfirmed {
		return nil, models.NewDomainError(models.ErrCodeInvalidStateTransition,
			fmt.Sprintf("cannot cancel an order in status %s", order.Status))
	}

	if err := s.store.UpdateOrderStatus(ctx, orderID, models.OrderStatusCancelled); err != nil {
		return nil, models.WrapDomainError(models.ErrCodeStoreUnavailable, "failed to cancel order", err)
	}
	order.Status = models.OrderStatusCancelled

	util.OrdersCancelledTotal.Inc()
	s.logger.Info("Order cancelled", zap.String("order_id", orderID))

	if s.cache != nil {
		if err := s.cache.DeleteTrackingSnapshot(ctx, orderID); err != nil {
			s.logger.Warn("Tracking cache invalidation failed", zap.Error(err))
		}
	}

	if s.publisher != nil {
		event := &models.OrderCancelledEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderCancelled,
				Timestamp: s.now(),
			},
			OrderID: orderID,
			UserID:  order.UserID,
			Reason:  cancelReasonByUser,
		}
		if err := s.publisher.PublishOrderCancelled(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderCancelled event",
				zap.String("order_id", orderID),
				zap.Error(err))
		}
	}

	return order, nil
}

// DeliveryQuote computes the delivery fee and availability for a
// coordinate.
func (s *OrderService) DeliveryQuote(ctx context.Context, lat, lng float64) (*models.DeliveryQuote, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.DeliveryQuote")
	defer span.End()

	nearest, err := s.resolver.NearestOutlet(ctx, lat, lng)
	if err != nil {
		return nil, models.WrapDomainError(models.ErrCodeStoreUnavailable, "failed to resolve nearest outlet", err)
	}
	if nearest == nil {
		util.DeliveryQuotesTotal.WithLabelValues("false").Inc()
		return &models.DeliveryQuote{
			DeliveryAvailable: false,
			Message:           "No outlets are currently available",
		}, nil
	}

	quote := &models.DeliveryQuote{
		NearestOutlet:            nearest,
		DeliveryFee:              s.tariff.DeliveryFee(nearest.DistanceKm),
		EstimatedDeliveryMinutes: s.tariff.EstimatedMinutes(nearest.DistanceKm),
		DeliveryAvailable:        s.tariff.Deliverable(nearest.DistanceKm),
	}
	if !quote.DeliveryAvailable {
		quote.Message = fmt.Sprintf("%s is %.1f km away, outside our %.0f km delivery range",
			nearest.Name, nearest.DistanceKm, s.tariff.MaxDeliveryKm)
	}

	util.DeliveryQuotesTotal.WithLabelValues(strconv.FormatBool(quote.DeliveryAvailable)).Inc()
	return quote, nil
}
