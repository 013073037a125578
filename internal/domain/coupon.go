package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Coupon domain errors.
var (
	ErrCouponNotFound = &Error{Code: ENOTFOUND, Message: "Coupon not found or expired"}
	ErrCouponExists   = &Error{Code: ECONFLICT, Message: "Coupon already exists"}
)

// Coupon is a time-limited percentage discount code. Coupons live only in
// the keyed TTL store; expiry is the store's eviction, not application
// logic. An expired coupon is simply unreadable.
type Coupon struct {
	Code         string `json:"code"`
	Discount     int32  `json:"discount"` // percent, 1-100
	ExpiryInDays int32  `json:"expiryInDays"`
}

// CouponService provides coupon lookup and administration.
type CouponService interface {
	// Apply looks up the code, loads the user's cart, and persists the
	// discount onto the cart (discount percent and total after
	// discount). Re-applying the same code is idempotent; a different
	// code overwrites the previous one (no stacking).
	Apply(ctx context.Context, userID pgtype.UUID, code string) (*CouponApplication, error)

	// Create stores a new coupon with TTL = expiryDays days.
	// Administrator only. Fails with ErrCouponExists when the code is
	// already stored and unexpired.
	Create(ctx context.Context, actor Identity, coupon Coupon) error

	// Delete removes a coupon by code. Administrator only.
	Delete(ctx context.Context, actor Identity, code string) error
}

// CouponApplication reports the outcome of applying a coupon to a cart.
type CouponApplication struct {
	Code                    string `json:"code"`
	DiscountPercent         int32  `json:"discount"`
	DiscountCents           int64  `json:"discountCents"`
	TotalAfterDiscountCents int64  `json:"totalAfterDiscountCents"`
}
