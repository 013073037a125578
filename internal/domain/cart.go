package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Cart domain errors.
var (
	ErrCartNotFound        = &Error{Code: ENOTFOUND, Message: "Cart not found"}
	ErrCartItemNotFound    = &Error{Code: ENOTFOUND, Message: "Product not found in cart"}
	ErrProductNotFound     = &Error{Code: ENOTFOUND, Message: "Product not found"}
	ErrOutOfStock          = &Error{Code: ECONFLICT, Message: "Product out of stock"}
	ErrInvalidQuantity     = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}
	ErrCartAccessForbidden = &Error{Code: EFORBIDDEN, Message: "You are not authorized to modify this cart"}
)

// CartService provides business logic for shopping cart operations.
//
// A user has at most one open cart. Every mutation recomputes the cart
// total from its line items and reapplies any stored discount inside the
// same transaction, so the returned cart is always the committed
// post-mutation state.
type CartService interface {
	// GetCart retrieves the user's cart with line items and product
	// snapshots. Returns (nil, nil) when the user has no cart.
	GetCart(ctx context.Context, userID pgtype.UUID) (*CartDetail, error)

	// AddItem adds one unit of a product to the cart, creating the cart
	// if needed and incrementing quantity if the product is already a
	// line item. Fails with ErrOutOfStock when the resulting quantity
	// would exceed the product's stock.
	AddItem(ctx context.Context, userID, productID pgtype.UUID) (*CartDetail, error)

	// SetItemQuantity sets the absolute quantity of a product in the
	// cart. Quantity 0 behaves as removal. A product not yet in the cart
	// is inserted at the given quantity.
	SetItemQuantity(ctx context.Context, userID, productID pgtype.UUID, quantity int32) (*CartDetail, error)

	// RemoveItem deletes the product's line item. When the last line
	// item is removed the cart itself is deleted and (nil, nil) is
	// returned.
	RemoveItem(ctx context.Context, userID, productID pgtype.UUID) (*CartDetail, error)

	// Clear deletes the cart and all its line items unconditionally.
	// Permitted for the cart's owner and administrators.
	Clear(ctx context.Context, actor Identity, cartID pgtype.UUID) error
}

// CartDetail is the hydrated cart view: the cart row plus line items with
// joined product snapshots.
type CartDetail struct {
	ID                      pgtype.UUID        `json:"id"`
	UserID                  pgtype.UUID        `json:"userId"`
	TotalCents              int64              `json:"totalCents"`
	DiscountPercent         int32              `json:"discount"`
	TotalAfterDiscountCents *int64             `json:"totalAfterDiscountCents"`
	Items                   []CartItemDetail   `json:"cartItems"`
	CreatedAt               pgtype.Timestamptz `json:"createdAt"`
	UpdatedAt               pgtype.Timestamptz `json:"updatedAt"`
}

// CartItemDetail is a cart line item with denormalized product info.
type CartItemDetail struct {
	ID          pgtype.UUID `json:"id"`
	ProductID   pgtype.UUID `json:"productId"`
	ProductName string      `json:"productName"`
	Description string      `json:"description"`
	ImageURL    string      `json:"imageUrl"`
	PriceCents  int64       `json:"priceCents"`
	Stock       int32       `json:"stock"`
	Quantity    int32       `json:"quantity"`
	AmountCents int64       `json:"amountCents"`
}
