package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aelshahawy/dokan/internal/billing"
	"github.com/aelshahawy/dokan/internal/domain"
	"github.com/aelshahawy/dokan/internal/telemetry"
)

// WebhookHandler ingests payment-provider webhook deliveries.
type WebhookHandler struct {
	provider billing.Provider
	orders   domain.OrderService
	metrics  *telemetry.Metrics
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(provider billing.Provider, orders domain.OrderService, metrics *telemetry.Metrics) *WebhookHandler {
	return &WebhookHandler{provider: provider, orders: orders, metrics: metrics}
}

// Register mounts the webhook route on e. The route is unauthenticated;
// trust comes from signature verification.
func (h *WebhookHandler) Register(e *echo.Echo) {
	e.POST("/webhook", h.Receive)
}

// Receive verifies and applies one webhook delivery. The body is
// consumed as raw bytes before any parsing, since the signature covers
// the exact payload. A 200 tells the provider the delivery is settled;
// 5xx responses make it redeliver, which the order state machine
// absorbs.
func (h *WebhookHandler) Receive(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return domain.Invalid("webhook.receive", "Unreadable request body")
	}

	signature := c.Request().Header.Get("Stripe-Signature")

	event, err := h.provider.VerifyWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidWebhookSignature) {
			h.metrics.WebhookFailed.WithLabelValues("unknown", "bad_signature").Inc()
			return domain.Invalid("webhook.receive", "Invalid signature")
		}
		h.metrics.WebhookFailed.WithLabelValues("unknown", "bad_payload").Inc()
		return domain.Invalid("webhook.receive", "Malformed event payload")
	}

	h.metrics.WebhookReceived.WithLabelValues(event.Type).Inc()

	var kind domain.ProviderEventKind
	switch event.Kind {
	case billing.EventPaymentCompleted:
		kind = domain.ProviderPaymentCompleted
	case billing.EventPaymentFailed:
		kind = domain.ProviderPaymentFailed
	default:
		return respond(c, http.StatusOK, "Event ignored", nil)
	}

	orderID, err := domain.ParseUUID("webhook.receive", event.OrderID)
	if err != nil {
		h.metrics.WebhookFailed.WithLabelValues(event.Type, "bad_payload").Inc()
		return err
	}

	if err := h.orders.HandleProviderEvent(c.Request().Context(), kind, orderID); err != nil {
		h.metrics.WebhookFailed.WithLabelValues(event.Type, "storage").Inc()
		return err
	}

	h.metrics.WebhookProcessed.WithLabelValues(event.Type).Inc()
	return respond(c, http.StatusOK, "Webhook processed", nil)
}
