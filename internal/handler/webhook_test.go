package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aelshahawy/dokan/internal/billing"
	"github.com/aelshahawy/dokan/internal/domain"
)

func newWebhookTestServer(provider billing.Provider, orders domain.OrderService) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(testLogger())
	NewWebhookHandler(provider, orders, testMetrics()).Register(e)
	return e
}

func postWebhook(e *echo.Echo, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_InvalidSignature(t *testing.T) {
	provider := billing.NewMockProvider()
	provider.VerifyWebhookFunc = func([]byte, string) (*billing.Event, error) {
		return nil, billing.ErrInvalidWebhookSignature
	}
	orders := &stubOrderService{}

	rec := postWebhook(newWebhookTestServer(provider, orders), `{}`, "t=1,v1=bad")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, orders.calls)
}

func TestWebhook_PaymentCompleted(t *testing.T) {
	orderID := uuid.New().String()

	provider := billing.NewMockProvider()
	provider.VerifyWebhookFunc = func([]byte, string) (*billing.Event, error) {
		return &billing.Event{
			Kind:    billing.EventPaymentCompleted,
			OrderID: orderID,
			Type:    "checkout.session.completed",
		}, nil
	}

	var gotOrderID pgtype.UUID
	orders := &stubOrderService{
		handleProviderEvent: func(_ context.Context, _ domain.ProviderEventKind, id pgtype.UUID) error {
			gotOrderID = id
			return nil
		},
	}

	rec := postWebhook(newWebhookTestServer(provider, orders), `{}`, "t=1,v1=good")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, orders.calls, 1)
	assert.Equal(t, domain.ProviderPaymentCompleted, orders.calls[0])
	assert.Equal(t, orderID, domain.UUIDString(gotOrderID))
}

func TestWebhook_PaymentFailed(t *testing.T) {
	provider := billing.NewMockProvider()
	provider.VerifyWebhookFunc = func([]byte, string) (*billing.Event, error) {
		return &billing.Event{
			Kind:    billing.EventPaymentFailed,
			OrderID: uuid.New().String(),
			Type:    "payment_intent.payment_failed",
		}, nil
	}
	orders := &stubOrderService{}

	rec := postWebhook(newWebhookTestServer(provider, orders), `{}`, "t=1,v1=good")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, orders.calls, 1)
	assert.Equal(t, domain.ProviderPaymentFailed, orders.calls[0])
}

func TestWebhook_IgnoredEvent(t *testing.T) {
	provider := billing.NewMockProvider()
	provider.VerifyWebhookFunc = func([]byte, string) (*billing.Event, error) {
		return &billing.Event{Kind: billing.EventIgnored, Type: "invoice.created"}, nil
	}
	orders := &stubOrderService{}

	rec := postWebhook(newWebhookTestServer(provider, orders), `{}`, "t=1,v1=good")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, orders.calls)
}

func TestWebhook_StorageErrorSignalsRetry(t *testing.T) {
	provider := billing.NewMockProvider()
	provider.VerifyWebhookFunc = func([]byte, string) (*billing.Event, error) {
		return &billing.Event{
			Kind:    billing.EventPaymentCompleted,
			OrderID: uuid.New().String(),
			Type:    "checkout.session.completed",
		}, nil
	}
	orders := &stubOrderService{
		handleProviderEvent: func(context.Context, domain.ProviderEventKind, pgtype.UUID) error {
			return errors.New("connection reset")
		},
	}

	rec := postWebhook(newWebhookTestServer(provider, orders), `{}`, "t=1,v1=good")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWebhook_BadOrderID(t *testing.T) {
	provider := billing.NewMockProvider()
	provider.VerifyWebhookFunc = func([]byte, string) (*billing.Event, error) {
		return &billing.Event{
			Kind:    billing.EventPaymentCompleted,
			OrderID: "not-a-uuid",
			Type:    "checkout.session.completed",
		}, nil
	}
	orders := &stubOrderService{}

	rec := postWebhook(newWebhookTestServer(provider, orders), `{}`, "t=1,v1=good")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, orders.calls)
}
