// Package billing abstracts the payment provider behind a Provider
// interface so the rest of the system never imports the Stripe SDK
// directly.
package billing

import (
	"context"
	"time"
)

// EventKind classifies verified webhook events by what they mean for an
// order, independent of the provider's own event taxonomy.
type EventKind string

const (
	// EventPaymentCompleted means the hosted session finished and the
	// payment succeeded.
	EventPaymentCompleted EventKind = "payment_completed"

	// EventPaymentFailed means the payment attempt failed.
	EventPaymentFailed EventKind = "payment_failed"

	// EventIgnored is any verified event type we do not act on.
	EventIgnored EventKind = "ignored"
)

// Provider defines the interface for payment processing.
// Implementations can use Stripe, PayPal, Square, etc.
type Provider interface {
	// CreateCheckoutSession creates a hosted checkout session for a
	// pending order and returns the URL to redirect the buyer to.
	CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error)

	// VerifyWebhook authenticates a webhook payload against its
	// signature header and classifies the event. Returns
	// ErrInvalidWebhookSignature when the payload cannot be trusted.
	VerifyWebhook(payload []byte, signature string) (*Event, error)
}

// CreateCheckoutSessionParams contains parameters for creating a hosted
// checkout session.
type CreateCheckoutSessionParams struct {
	// OrderID is carried in session and payment metadata so webhook
	// events can be tied back to the order.
	OrderID string

	// CustomerEmail prefills the buyer's email on the payment page.
	CustomerEmail string

	// SuccessURL and CancelURL are where the provider redirects the
	// buyer after the session finishes or is abandoned.
	SuccessURL string
	CancelURL  string

	// LineItems describe what is being paid for. Unit prices are in the
	// smallest currency unit.
	LineItems []CheckoutLineItem
}

// CheckoutLineItem is one purchasable line in a checkout session.
type CheckoutLineItem struct {
	ProductID      string
	Name           string
	Description    string
	ImageURL       string
	UnitPriceCents int64
	Quantity       int32
}

// CheckoutSession is a created hosted checkout session.
type CheckoutSession struct {
	ID        string
	URL       string
	CreatedAt time.Time
}

// Event is a verified, classified webhook event.
type Event struct {
	// Kind is what the event means for the order.
	Kind EventKind

	// OrderID is the order the event refers to, taken from provider
	// metadata. Empty for EventIgnored.
	OrderID string

	// ProviderEventID is the provider's own event identifier, kept for
	// logging.
	ProviderEventID string

	// Type is the provider's raw event type string.
	Type string
}
