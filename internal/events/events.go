// Package events publishes order lifecycle events so other systems can
// react to checkouts and payment outcomes without polling the database.
package events

import (
	"context"
	"time"
)

// Subjects for order lifecycle events.
const (
	SubjectOrderCreated       = "orders.created"
	SubjectOrderPaid          = "orders.paid"
	SubjectOrderPaymentFailed = "orders.payment_failed"
	SubjectOrderCancelled     = "orders.cancelled"
)

// OrderEvent is the payload published on every order subject.
type OrderEvent struct {
	EventID     string    `json:"eventId"`
	OrderID     string    `json:"orderId"`
	UserID      string    `json:"userId"`
	TotalCents  int64     `json:"totalCents"`
	PaymentType string    `json:"paymentType"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Publisher emits order lifecycle events. Publishing is best-effort:
// callers log failures but never fail the operation that triggered the
// event.
type Publisher interface {
	Publish(ctx context.Context, subject string, event OrderEvent) error
	Close()
}
