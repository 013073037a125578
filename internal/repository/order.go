package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Order mirrors the orders table.
type Order struct {
	ID          pgtype.UUID
	UserID      pgtype.UUID
	TotalCents  int64
	PaymentType string
	Status      string
	Delivery    string
	CreatedAt   pgtype.Timestamptz
}

// OrderItem mirrors the order_items table. UnitPriceCents is the product
// price frozen at checkout.
type OrderItem struct {
	ID             pgtype.UUID
	OrderID        pgtype.UUID
	ProductID      pgtype.UUID
	Quantity       int32
	UnitPriceCents int64
}

// OrderItemDetail is an order line joined with its product for display.
// The price still comes from the order line, not the product.
type OrderItemDetail struct {
	ID                 pgtype.UUID
	ProductID          pgtype.UUID
	ProductName        string
	ProductDescription string
	ProductImageURL    string
	Quantity           int32
	UnitPriceCents     int64
}

const orderColumns = `id, user_id, total_cents, payment_type, status, delivery, created_at`

func (q *Queries) scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.TotalCents, &o.PaymentType,
		&o.Status, &o.Delivery, &o.CreatedAt)
	return o, err
}

// CreateOrderParams contains parameters for creating an order.
type CreateOrderParams struct {
	UserID      pgtype.UUID
	TotalCents  int64
	PaymentType string
}

const createOrder = `
INSERT INTO orders (user_id, total_cents, payment_type)
VALUES ($1, $2, $3)
RETURNING ` + orderColumns

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return q.scanOrder(q.db.QueryRow(ctx, createOrder, arg.UserID, arg.TotalCents, arg.PaymentType))
}

// CreateOrderItemParams contains parameters for creating an order line.
type CreateOrderItemParams struct {
	OrderID        pgtype.UUID
	ProductID      pgtype.UUID
	Quantity       int32
	UnitPriceCents int64
}

const createOrderItem = `
INSERT INTO order_items (order_id, product_id, quantity, unit_price_cents)
VALUES ($1, $2, $3, $4)
RETURNING id, order_id, product_id, quantity, unit_price_cents
`

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem, arg.OrderID, arg.ProductID, arg.Quantity, arg.UnitPriceCents)
	var oi OrderItem
	err := row.Scan(&oi.ID, &oi.OrderID, &oi.ProductID, &oi.Quantity, &oi.UnitPriceCents)
	return oi, err
}

const getOrder = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id pgtype.UUID) (Order, error) {
	return q.scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const listOrderItems = `
SELECT oi.id, oi.product_id, p.name, p.description, p.image_url, oi.quantity, oi.unit_price_cents
FROM order_items oi
JOIN products p ON p.id = oi.product_id
WHERE oi.order_id = $1
ORDER BY oi.id
`

func (q *Queries) ListOrderItems(ctx context.Context, orderID pgtype.UUID) ([]OrderItemDetail, error) {
	rows, err := q.db.Query(ctx, listOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItemDetail
	for rows.Next() {
		var it OrderItemDetail
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.ProductDescription,
			&it.ProductImageURL, &it.Quantity, &it.UnitPriceCents); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (q *Queries) listOrders(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalCents, &o.PaymentType,
			&o.Status, &o.Delivery, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const listAllOrders = `
SELECT ` + orderColumns + `
FROM orders
ORDER BY created_at DESC
`

func (q *Queries) ListOrders(ctx context.Context) ([]Order, error) {
	return q.listOrders(ctx, listAllOrders)
}

const listOrdersByUser = `
SELECT ` + orderColumns + `
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListOrdersByUser(ctx context.Context, userID pgtype.UUID) ([]Order, error) {
	return q.listOrders(ctx, listOrdersByUser, userID)
}

const listOrdersBySeller = `
SELECT ` + orderColumns + `
FROM orders o
WHERE EXISTS (
    SELECT 1
    FROM order_items oi
    JOIN products p ON p.id = oi.product_id
    WHERE oi.order_id = o.id AND p.seller_id = $1
)
ORDER BY created_at DESC
`

// ListOrdersBySeller returns orders containing at least one line for a
// product owned by the seller.
func (q *Queries) ListOrdersBySeller(ctx context.Context, sellerID pgtype.UUID) ([]Order, error) {
	return q.listOrders(ctx, listOrdersBySeller, sellerID)
}

// SetOrderStatusParams contains parameters for a payment status write.
type SetOrderStatusParams struct {
	ID     pgtype.UUID
	Status string
}

const setOrderStatus = `
UPDATE orders
SET status = $2
WHERE id = $1
RETURNING ` + orderColumns

func (q *Queries) SetOrderStatus(ctx context.Context, arg SetOrderStatusParams) (Order, error) {
	return q.scanOrder(q.db.QueryRow(ctx, setOrderStatus, arg.ID, arg.Status))
}

const setOrderStatusFromPending = `
UPDATE orders
SET status = $2
WHERE id = $1 AND status = 'PENDING'
`

// SetOrderStatusFromPending transitions only out of PENDING. Returns the
// affected row count; 0 means the order was already settled.
func (q *Queries) SetOrderStatusFromPending(ctx context.Context, arg SetOrderStatusParams) (int64, error) {
	tag, err := q.db.Exec(ctx, setOrderStatusFromPending, arg.ID, arg.Status)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// SetOrderDeliveryParams contains parameters for a delivery status write.
type SetOrderDeliveryParams struct {
	ID       pgtype.UUID
	Delivery string
}

const setOrderDelivery = `
UPDATE orders
SET delivery = $2
WHERE id = $1
RETURNING ` + orderColumns

func (q *Queries) SetOrderDelivery(ctx context.Context, arg SetOrderDeliveryParams) (Order, error) {
	return q.scanOrder(q.db.QueryRow(ctx, setOrderDelivery, arg.ID, arg.Delivery))
}

const deleteOrderIfPending = `
DELETE FROM orders
WHERE id = $1 AND status = 'PENDING'
`

// DeleteOrderIfPending cancels an unsettled order. Returns the affected
// row count; 0 means the order has already left PENDING.
func (q *Queries) DeleteOrderIfPending(ctx context.Context, id pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteOrderIfPending, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
