package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aelshahawy/dokan/internal/domain"
)

// CouponHandler serves the coupon endpoints.
type CouponHandler struct {
	coupons domain.CouponService
}

// NewCouponHandler creates a new CouponHandler.
func NewCouponHandler(coupons domain.CouponService) *CouponHandler {
	return &CouponHandler{coupons: coupons}
}

// Register mounts the coupon routes on g. Creation and deletion are
// additionally guarded by an admin role check in the service.
func (h *CouponHandler) Register(g *echo.Group) {
	g.POST("/create", h.Create)
	g.POST("/apply", h.Apply)
	g.DELETE("/:code", h.Delete)
}

type createCouponRequest struct {
	Code         string `json:"code" validate:"required"`
	Discount     int32  `json:"discount" validate:"gte=1,lte=100"`
	ExpiryInDays int32  `json:"expiryInDays" validate:"gte=1"`
}

// Create stores a new coupon. Administrator only.
func (h *CouponHandler) Create(c echo.Context) error {
	ident, err := actor(c)
	if err != nil {
		return err
	}

	var req createCouponRequest
	if err := bind(c, "coupon.create", &req); err != nil {
		return err
	}

	err = h.coupons.Create(c.Request().Context(), ident, domain.Coupon{
		Code:         req.Code,
		Discount:     req.Discount,
		ExpiryInDays: req.ExpiryInDays,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Coupon created", nil)
}

type applyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

// Apply applies a coupon to the current user's cart.
func (h *CouponHandler) Apply(c echo.Context) error {
	ident, err := actor(c)
	if err != nil {
		return err
	}

	var req applyCouponRequest
	if err := bind(c, "coupon.apply", &req); err != nil {
		return err
	}

	applied, err := h.coupons.Apply(c.Request().Context(), ident.ID, req.Code)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Coupon applied", applied)
}

// Delete removes a coupon by code. Administrator only.
func (h *CouponHandler) Delete(c echo.Context) error {
	ident, err := actor(c)
	if err != nil {
		return err
	}

	if err := h.coupons.Delete(c.Request().Context(), ident, c.Param("code")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Coupon deleted", nil)
}
