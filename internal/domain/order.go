package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Order domain errors.
var (
	ErrOrderNotFound        = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrNoCart               = &Error{Code: ENOTFOUND, Message: "User has no cart"}
	ErrInvalidPaymentType   = &Error{Code: EINVALID, Message: "Invalid payment type"}
	ErrWrongPaymentType     = &Error{Code: EINVALID, Message: "Order is not cash on delivery"}
	ErrOrderNotPending      = &Error{Code: ECONFLICT, Message: "Order is no longer pending"}
	ErrOrderAccessForbidden = &Error{Code: EFORBIDDEN, Message: "You are not authorized to access this order"}
	ErrInvalidDeliveryState = &Error{Code: EINVALID, Message: "Invalid delivery status"}
	ErrOrderNotPaid         = &Error{Code: ECONFLICT, Message: "Order has not been paid"}
)

// PaymentType selects the payment path at checkout.
type PaymentType string

const (
	PaymentCOD  PaymentType = "COD"
	PaymentCard PaymentType = "CARD"
)

// Valid reports whether t is a known payment type.
func (t PaymentType) Valid() bool {
	return t == PaymentCOD || t == PaymentCard
}

// PaymentStatus is the payment axis of an order's state.
//
// PENDING -> PAID and PENDING -> FAILED are the only legal payment-driven
// transitions; PAID and FAILED are terminal.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

// DeliveryStatus is the fulfillment axis of an order's state, independent
// of the payment axis except that DELIVERED requires PAID.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "PENDING"
	DeliveryAccepted  DeliveryStatus = "ACCEPTED"
	DeliveryDelivered DeliveryStatus = "DELIVERED"
	DeliveryRejected  DeliveryStatus = "REJECTED"
)

// Valid reports whether s is a known delivery status.
func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryPending, DeliveryAccepted, DeliveryDelivered, DeliveryRejected:
		return true
	}
	return false
}

// ProviderEventKind classifies verified payment-provider webhook events.
type ProviderEventKind string

const (
	ProviderPaymentCompleted ProviderEventKind = "payment_completed"
	ProviderPaymentFailed    ProviderEventKind = "payment_failed"
	ProviderEventUnknown     ProviderEventKind = "unknown"
)

// OrderService consolidates carts into orders and drives the order state
// machine.
type OrderService interface {
	// Checkout converts the actor's cart into an immutable order.
	// The order total is the cart's discounted total when a coupon is
	// applied, the plain total otherwise. Stock is re-validated and
	// decremented, order items freeze the cart-time unit price, and the
	// cart is deleted, all in one transaction.
	Checkout(ctx context.Context, actor Identity, paymentType PaymentType) (*OrderDetail, error)

	// Get retrieves a single order with items. Permitted for the order's
	// owner and administrators.
	Get(ctx context.Context, actor Identity, orderID pgtype.UUID) (*OrderDetail, error)

	// List returns orders visible to the actor: own orders for users,
	// orders containing their products for sellers, all orders for
	// administrators. Optional filters narrow by status fields.
	List(ctx context.Context, actor Identity, filter OrderFilter) ([]OrderDetail, error)

	// PayCash marks a cash-on-delivery order as paid. Fails with
	// ErrWrongPaymentType for CARD orders. Not idempotency-guarded: a
	// second call rewrites PAID.
	PayCash(ctx context.Context, orderID pgtype.UUID) (*OrderDetail, error)

	// HandleProviderEvent applies a verified payment-provider event to
	// the order's payment status. Safe under at-least-once delivery:
	// redelivered and conflicting terminal events are absorbed without
	// error so the provider stops retrying.
	HandleProviderEvent(ctx context.Context, kind ProviderEventKind, orderID pgtype.UUID) error

	// UpdateDelivery sets the delivery status. Staff only (ADMIN or
	// SELLER). DELIVERED additionally requires the order to be PAID.
	UpdateDelivery(ctx context.Context, actor Identity, orderID pgtype.UUID, status DeliveryStatus) (*OrderDetail, error)

	// Cancel hard-deletes a PENDING order and its items. Permitted for
	// the order's owner and administrators.
	Cancel(ctx context.Context, actor Identity, orderID pgtype.UUID) error
}

// OrderFilter narrows List results. Empty fields match everything.
type OrderFilter struct {
	Status      PaymentStatus
	Delivery    DeliveryStatus
	PaymentType PaymentType
}

// OrderDetail is the hydrated order view: the order row plus line items
// with product snapshots.
type OrderDetail struct {
	ID          pgtype.UUID        `json:"id"`
	UserID      pgtype.UUID        `json:"userId"`
	TotalCents  int64              `json:"totalCents"`
	PaymentType PaymentType        `json:"paymentType"`
	Status      PaymentStatus      `json:"status"`
	Delivery    DeliveryStatus     `json:"delivery"`
	Items       []OrderItemDetail  `json:"orderItems"`
	CreatedAt   pgtype.Timestamptz `json:"createdAt"`
}

// OrderItemDetail is an order line item. UnitPriceCents is frozen at
// order creation; product fields are joined for display only.
type OrderItemDetail struct {
	ID             pgtype.UUID `json:"id"`
	ProductID      pgtype.UUID `json:"productId"`
	ProductName    string      `json:"productName"`
	Description    string      `json:"description"`
	ImageURL       string      `json:"imageUrl"`
	Quantity       int32       `json:"quantity"`
	UnitPriceCents int64       `json:"unitPriceCents"`
}

// CheckoutService opens hosted payment sessions for CARD orders.
type CheckoutService interface {
	// CreateSession creates a payment-provider hosted session for the
	// actor's PENDING CARD order and returns the redirect URL.
	CreateSession(ctx context.Context, actor Identity, orderID pgtype.UUID) (string, error)
}
