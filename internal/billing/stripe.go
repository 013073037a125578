package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// metadataOrderID is the metadata key carrying our order id through the
// session and its payment intent.
const metadataOrderID = "order_id"

// StripeProvider implements Provider using Stripe hosted checkout.
type StripeProvider struct {
	webhookSecret string
}

var _ Provider = (*StripeProvider)(nil)

// NewStripeProvider creates a Stripe billing provider. The API key is
// set process-wide, matching how the Stripe SDK expects it.
func NewStripeProvider(apiKey, webhookSecret string) *StripeProvider {
	stripe.Key = apiKey
	return &StripeProvider{webhookSecret: webhookSecret}
}

// CreateCheckoutSession creates a Stripe Checkout session in payment
// mode. The order id rides in both session metadata and payment intent
// metadata so either webhook object can be tied back to the order.
func (s *StripeProvider) CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(params.LineItems))
	for _, item := range params.LineItems {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
			Metadata: map[string]string{
				"product_id":    item.ProductID,
				metadataOrderID: params.OrderID,
			},
		}
		if item.Description != "" {
			productData.Description = stripe.String(item.Description)
		}
		if item.ImageURL != "" {
			productData.Images = stripe.StringSlice([]string{item.ImageURL})
		}

		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(string(stripe.CurrencyUSD)),
				ProductData: productData,
				UnitAmount:  stripe.Int64(item.UnitPriceCents),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode:                     stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes:       stripe.StringSlice([]string{"card"}),
		LineItems:                lineItems,
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
		PhoneNumberCollection: &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
		CustomerEmail: stripe.String(params.CustomerEmail),
		SuccessURL:    stripe.String(params.SuccessURL),
		CancelURL:     stripe.String(params.CancelURL),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{metadataOrderID: params.OrderID},
		},
	}
	sessionParams.Context = ctx
	sessionParams.AddMetadata(metadataOrderID, params.OrderID)

	sess, err := session.New(sessionParams)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return &CheckoutSession{
		ID:        sess.ID,
		URL:       sess.URL,
		CreatedAt: time.Unix(sess.Created, 0),
	}, nil
}

// VerifyWebhook authenticates the payload with Stripe's signature scheme
// and classifies the event.
func (s *StripeProvider) VerifyWebhook(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhookSignature, err)
	}

	out := &Event{
		Kind:            EventIgnored,
		ProviderEventID: event.ID,
		Type:            string(event.Type),
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		out.Kind = EventPaymentCompleted
	case stripe.EventTypePaymentIntentPaymentFailed:
		out.Kind = EventPaymentFailed
	default:
		return out, nil
	}

	orderID, err := orderIDFromEvent(event.Data.Raw)
	if err != nil {
		return nil, err
	}
	out.OrderID = orderID
	return out, nil
}

// orderIDFromEvent pulls the order id out of the event object's
// metadata. Checkout sessions and payment intents both carry it.
func orderIDFromEvent(raw json.RawMessage) (string, error) {
	var obj struct {
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", fmt.Errorf("decode event object: %w", err)
	}
	id, ok := obj.Metadata[metadataOrderID]
	if !ok || id == "" {
		return "", ErrMissingOrderID
	}
	return id, nil
}
