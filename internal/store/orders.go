package store

import (
	"context"
	"database/sql"
	"fmt"

	"juicedash/internal/models"
)

// CreateOrder inserts the order header
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (
			id, user_id, outlet_id, status, total_amount, delivery_fee,
			delivery_street, delivery_city, delivery_district, delivery_lat, delivery_lng,
			payment_method, notes, rider_name, rider_phone, rider_plate,
			estimated_delivery_time
		) VALUES (
			:id, :user_id, :outlet_id, :status, :total_amount, :delivery_fee,
			:delivery_street, :delivery_city, :delivery_district, :delivery_lat, :delivery_lng,
			:payment_method, :notes, :rider_name, :rider_phone, :rider_plate,
			:estimated_delivery_time
		)`

	_, err := s.db.NamedExecContext(ctx, query, order)
	return err
}

// CreateOrderItems inserts all line items for an order
func (s *Store) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return fmt.Errorf("no order items to insert")
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity_litres, unit_price, subtotal)
		VALUES (:id, :order_id, :product_id, :quantity_litres, :unit_price, :subtotal)`

	_, err := s.db.NamedExecContext(ctx, query, items)
	return err
}

// DeleteOrder removes an order header. Used as the compensating action
// when line-item insertion fails after the header was written.
func (s *Store) DeleteOrder(ctx context.Context, orderID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", orderID)
	return err
}

// GetOrderByID retrieves an order header. Returns nil without error
// when not found.
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderItems retrieves all line items for an order
func (s *Store) GetOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// GetOrderDetails retrieves the fully joined order: header, items with
// product details, and the fulfilling outlet.
func (s *Store) GetOrderDetails(ctx context.Context, orderID string) (*models.OrderDetails, error) {
	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, models.ErrOrderNotFound
	}

	var items []models.OrderItemDetail
	err = s.db.SelectContext(ctx, &items, `
		SELECT oi.*, p.name AS product_name, COALESCE(p.image_url, '') AS product_image
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`, orderID)
	if err != nil {
		return nil, err
	}

	details := &models.OrderDetails{Order: *order, Items: items}

	outlet, err := s.GetOutletByID(ctx, order.OutletID)
	if err == nil {
		details.Outlet = outlet
	}

	return details, nil
}

// GetOrdersByUserID retrieves orders for a user, newest first
func (s *Store) GetOrdersByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return orders, err
}

// UpdateOrderStatus updates the status of an order
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	return err
}

// ConfirmPendingOrder moves a pending order to confirmed. Returns
// false when the order was not pending anymore.
func (s *Store) ConfirmPendingOrder(ctx context.Context, orderID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		models.OrderStatusConfirmed, orderID, models.OrderStatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
