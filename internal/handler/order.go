package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aelshahawy/dokan/internal/domain"
	"github.com/aelshahawy/dokan/internal/middleware"
)

// OrderHandler serves the order endpoints.
type OrderHandler struct {
	orders domain.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders domain.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Register mounts the order routes on g.
func (h *OrderHandler) Register(g *echo.Group) {
	g.POST("/create", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/me/cancel/:id", h.Cancel)
	g.PUT("/delivery/:id", h.UpdateDelivery,
		middleware.RequireRoles(domain.RoleAdmin, domain.RoleSeller))
	g.DELETE("/:id", h.Delete,
		middleware.RequireRoles(domain.RoleAdmin))
}

// Create consolidates the user's cart into an order. The payment type
// comes from the "payment" query parameter.
func (h *OrderHandler) Create(c echo.Context) error {
	ident, err := actor(c)
	if err != nil {
		return err
	}

	paymentType := domain.PaymentType(c.QueryParam("payment"))

	order, err := h.orders.Checkout(c.Request().Context(), ident, paymentType)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Order created", order)
}

// List returns the orders visible to the actor, optionally narrowed by
// status, delivery, and payment query parameters.
func (h *OrderHandler) List(c echo.Context) error {
	ident, err := actor(c)
	if err != nil {
		return err
	}

	filter := domain.OrderFilter{
		Status:      domain.PaymentStatus(c.QueryParam("status")),
		Delivery:    domain.DeliveryStatus(c.QueryParam("delivery")),
		PaymentType: domain.PaymentType(c.QueryParam("payment")),
	}

	orders, err := h.orders.List(c.Request().Context(), ident, filter)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Orders fetched", orders)
}

// Get returns a single order. Owner or administrator only.
func (h *OrderHandler) Get(c echo.Context) error {
	ident, err := actor(c)
	if err != nil {
		return err
	}

	orderID, err := domain.ParseUUID("order.get", c.Param("id"))
	if err != nil {
		return err
	}

	order, err := h.orders.Get(c.Request().Context(), ident, orderID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Order fetched", order)
}

// Cancel cancels the actor's own PENDING order.
func (h *OrderHandler) Cancel(c echo.Context) error {
	ident, err := actor(c)
	if err != nil {
		return err
	}

	orderID, err := domain.ParseUUID("order.cancel", c.Param("id"))
	if err != nil {
		return err
	}

	if err := h.orders.Cancel(c.Request().Context(), ident, orderID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Order cancelled", nil)
}

// Delete removes a PENDING order. Administrator only; settled orders are
// immutable and cannot be deleted.
func (h *OrderHandler) Delete(c echo.Context) error {
	ident, err := actor(c)
	if err != nil {
		return err
	}

	orderID, err := domain.ParseUUID("order.delete", c.Param("id"))
	if err != nil {
		return err
	}

	if err := h.orders.Cancel(c.Request().Context(), ident, orderID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Order deleted", nil)
}

type updateDeliveryRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING ACCEPTED DELIVERED REJECTED"`
}

// UpdateDelivery sets the delivery status of an order. Staff only.
func (h *OrderHandler) UpdateDelivery(c echo.Context) error {
	ident, err := actor(c)
	if err != nil {
		return err
	}

	orderID, err := domain.ParseUUID("order.update_delivery", c.Param("id"))
	if err != nil {
		return err
	}

	var req updateDeliveryRequest
	if err := bind(c, "order.update_delivery", &req); err != nil {
		return err
	}

	order, err := h.orders.UpdateDelivery(c.Request().Context(), ident, orderID, domain.DeliveryStatus(req.Status))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Delivery status updated", order)
}
