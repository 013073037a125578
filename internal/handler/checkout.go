package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aelshahawy/dokan/internal/domain"
	"github.com/aelshahawy/dokan/internal/middleware"
)

// CheckoutHandler serves the payment endpoints: hosted session creation
// for CARD orders and cash settlement for COD orders.
type CheckoutHandler struct {
	checkout domain.CheckoutService
	orders   domain.OrderService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkout domain.CheckoutService, orders domain.OrderService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, orders: orders}
}

// Register mounts the checkout routes on g.
func (h *CheckoutHandler) Register(g *echo.Group) {
	g.POST("/:id", h.CreateSession)
	g.PUT("/cash/:id", h.PayCash,
		middleware.RequireRoles(domain.RoleAdmin, domain.RoleSeller))
}

// CreateSession opens a hosted payment session for a PENDING CARD order
// and returns the redirect URL.
func (h *CheckoutHandler) CreateSession(c echo.Context) error {
	ident, err := actor(c)
	if err != nil {
		return err
	}

	orderID, err := domain.ParseUUID("checkout.create_session", c.Param("id"))
	if err != nil {
		return err
	}

	url, err := h.checkout.CreateSession(c.Request().Context(), ident, orderID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Checkout created", map[string]string{"url": url})
}

// PayCash marks a cash-on-delivery order as paid. Staff only.
func (h *CheckoutHandler) PayCash(c echo.Context) error {
	orderID, err := domain.ParseUUID("checkout.pay_cash", c.Param("id"))
	if err != nil {
		return err
	}

	order, err := h.orders.PayCash(c.Request().Context(), orderID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Order marked as paid", order)
}
