package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aelshahawy/dokan/internal/domain"
)

// CartHandler serves the cart endpoints.
type CartHandler struct {
	carts domain.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts domain.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// Register mounts the cart routes on g. All routes require
// authentication.
func (h *CartHandler) Register(g *echo.Group) {
	g.GET("", h.GetCart)
	g.POST("/product/:productId", h.AddProduct)
	g.PUT("/product/:productId", h.UpdateProduct)
	g.DELETE("/product/:productId", h.RemoveProduct)
	g.DELETE("/:cartId", h.Clear)
}

// GetCart returns the current user's cart. A user without a cart gets a
// success response with null data.
func (h *CartHandler) GetCart(c echo.Context) error {
	ident, err := actor(c)
	if err != nil {
		return err
	}

	cart, err := h.carts.GetCart(c.Request().Context(), ident.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Cart fetched", cart)
}

// AddProduct adds one unit of the product to the cart.
func (h *CartHandler) AddProduct(c echo.Context) error {
	ident, err := actor(c)
	if err != nil {
		return err
	}

	productID, err := domain.ParseUUID("cart.add_product", c.Param("productId"))
	if err != nil {
		return err
	}

	cart, err := h.carts.AddItem(c.Request().Context(), ident.ID, productID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Product added to cart", cart)
}

type updateCartItemRequest struct {
	Quantity int32 `json:"quantity" validate:"gte=0"`
}

// UpdateProduct sets the absolute quantity of the product in the cart.
// Quantity 0 removes the line item.
func (h *CartHandler) UpdateProduct(c echo.Context) error {
	ident, err := actor(c)
	if err != nil {
		return err
	}

	productID, err := domain.ParseUUID("cart.update_product", c.Param("productId"))
	if err != nil {
		return err
	}

	var req updateCartItemRequest
	if err := bind(c, "cart.update_product", &req); err != nil {
		return err
	}

	cart, err := h.carts.SetItemQuantity(c.Request().Context(), ident.ID, productID, req.Quantity)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Cart updated", cart)
}

// RemoveProduct deletes the product's line item from the cart.
func (h *CartHandler) RemoveProduct(c echo.Context) error {
	ident, err := actor(c)
	if err != nil {
		return err
	}

	productID, err := domain.ParseUUID("cart.remove_product", c.Param("productId"))
	if err != nil {
		return err
	}

	cart, err := h.carts.RemoveItem(c.Request().Context(), ident.ID, productID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Product removed from cart", cart)
}

// Clear force-deletes a cart by id. Owner or administrator only.
func (h *CartHandler) Clear(c echo.Context) error {
	ident, err := actor(c)
	if err != nil {
		return err
	}

	cartID, err := domain.ParseUUID("cart.clear", c.Param("cartId"))
	if err != nil {
		return err
	}

	if err := h.carts.Clear(c.Request().Context(), ident, cartID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Cart cleared", nil)
}
