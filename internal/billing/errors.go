package billing

import "errors"

var (
	// ErrInvalidWebhookSignature is returned when webhook signature
	// verification fails.
	ErrInvalidWebhookSignature = errors.New("billing: invalid webhook signature")

	// ErrMissingOrderID is returned when a payment event carries no
	// order reference in its metadata.
	ErrMissingOrderID = errors.New("billing: event metadata has no order id")
)
