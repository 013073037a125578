package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/aelshahawy/dokan/internal/billing"
	"github.com/aelshahawy/dokan/internal/domain"
)

// ErrNotCardOrder is returned when a hosted payment session is requested
// for an order that is not paid by card.
var ErrNotCardOrder = domain.Errorf(domain.EINVALID, "", "Order payment type is not CARD")

type checkoutService struct {
	store    Store
	provider billing.Provider
	baseURL  string
}

// NewCheckoutService creates a new CheckoutService instance. baseURL is
// where the provider redirects the buyer after the session ends.
func NewCheckoutService(store Store, provider billing.Provider, baseURL string) domain.CheckoutService {
	return &checkoutService{store: store, provider: provider, baseURL: baseURL}
}

// CreateSession opens a hosted payment session for the actor's PENDING
// CARD order and returns the redirect URL. Line items charge the unit
// price frozen on the order, not the current product price.
func (s *checkoutService) CreateSession(ctx context.Context, actor domain.Identity, orderID pgtype.UUID) (string, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if isNoRows(err) {
			return "", domain.ErrOrderNotFound
		}
		return "", fmt.Errorf("get order: %w", err)
	}

	if order.UserID != actor.ID && !actor.IsAdmin() {
		return "", domain.ErrOrderAccessForbidden
	}
	if order.PaymentType != string(domain.PaymentCard) {
		return "", ErrNotCardOrder
	}
	if order.Status != string(domain.PaymentPending) {
		return "", domain.ErrOrderNotPending
	}

	rows, err := s.store.ListOrderItems(ctx, order.ID)
	if err != nil {
		return "", fmt.Errorf("list order items: %w", err)
	}

	lineItems := make([]billing.CheckoutLineItem, 0, len(rows))
	for _, r := range rows {
		lineItems = append(lineItems, billing.CheckoutLineItem{
			ProductID:      domain.UUIDString(r.ProductID),
			Name:           r.ProductName,
			Description:    r.ProductDescription,
			ImageURL:       r.ProductImageURL,
			UnitPriceCents: r.UnitPriceCents,
			Quantity:       r.Quantity,
		})
	}

	id := domain.UUIDString(order.ID)
	sess, err := s.provider.CreateCheckoutSession(ctx, billing.CreateCheckoutSessionParams{
		OrderID:       id,
		CustomerEmail: actor.Email,
		SuccessURL:    fmt.Sprintf("%s/order?success=1&orderId=%s", s.baseURL, id),
		CancelURL:     fmt.Sprintf("%s/order?success=0&orderId=%s", s.baseURL, id),
		LineItems:     lineItems,
	})
	if err != nil {
		return "", domain.Internal(err, "checkout.create_session", "failed to create payment session")
	}

	return sess.URL, nil
}
