package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Cart mirrors the carts table. TotalAfterDiscountCents is null until a
// coupon is applied.
type Cart struct {
	ID                      pgtype.UUID
	UserID                  pgtype.UUID
	TotalCents              int64
	DiscountPercent         int32
	TotalAfterDiscountCents pgtype.Int8
	CreatedAt               pgtype.Timestamptz
	UpdatedAt               pgtype.Timestamptz
}

// CartItem mirrors the cart_items table.
type CartItem struct {
	ID          pgtype.UUID
	CartID      pgtype.UUID
	ProductID   pgtype.UUID
	Quantity    int32
	AmountCents int64
}

// CartItemDetail is a cart line item joined with its product.
type CartItemDetail struct {
	ID                 pgtype.UUID
	ProductID          pgtype.UUID
	ProductName        string
	ProductDescription string
	ProductImageURL    string
	ProductPriceCents  int64
	ProductStock       int32
	Quantity           int32
	AmountCents        int64
}

const cartColumns = `id, user_id, total_cents, discount_percent, total_after_discount_cents, created_at, updated_at`

func (q *Queries) scanCart(row interface{ Scan(...any) error }) (Cart, error) {
	var c Cart
	err := row.Scan(&c.ID, &c.UserID, &c.TotalCents, &c.DiscountPercent,
		&c.TotalAfterDiscountCents, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const getCartByID = `
SELECT ` + cartColumns + `
FROM carts
WHERE id = $1
`

func (q *Queries) GetCartByID(ctx context.Context, id pgtype.UUID) (Cart, error) {
	return q.scanCart(q.db.QueryRow(ctx, getCartByID, id))
}

const getCartByUserID = `
SELECT ` + cartColumns + `
FROM carts
WHERE user_id = $1
`

func (q *Queries) GetCartByUserID(ctx context.Context, userID pgtype.UUID) (Cart, error) {
	return q.scanCart(q.db.QueryRow(ctx, getCartByUserID, userID))
}

const getCartByUserIDForUpdate = getCartByUserID + `FOR UPDATE
`

// GetCartByUserIDForUpdate locks the cart row, funneling concurrent
// mutations of the same user's cart through one writer at a time.
func (q *Queries) GetCartByUserIDForUpdate(ctx context.Context, userID pgtype.UUID) (Cart, error) {
	return q.scanCart(q.db.QueryRow(ctx, getCartByUserIDForUpdate, userID))
}

// CreateCartParams contains parameters for creating a cart.
type CreateCartParams struct {
	UserID     pgtype.UUID
	TotalCents int64
}

const createCart = `
INSERT INTO carts (user_id, total_cents)
VALUES ($1, $2)
RETURNING ` + cartColumns

func (q *Queries) CreateCart(ctx context.Context, arg CreateCartParams) (Cart, error) {
	return q.scanCart(q.db.QueryRow(ctx, createCart, arg.UserID, arg.TotalCents))
}

// UpdateCartTotalsParams contains parameters for rewriting a cart's
// totals after a mutation. TotalAfterDiscountCents is stored as-is, so a
// null clears any previous discount total.
type UpdateCartTotalsParams struct {
	ID                      pgtype.UUID
	TotalCents              int64
	DiscountPercent         int32
	TotalAfterDiscountCents pgtype.Int8
}

const updateCartTotals = `
UPDATE carts
SET total_cents = $2,
    discount_percent = $3,
    total_after_discount_cents = $4,
    updated_at = now()
WHERE id = $1
RETURNING ` + cartColumns

func (q *Queries) UpdateCartTotals(ctx context.Context, arg UpdateCartTotalsParams) (Cart, error) {
	return q.scanCart(q.db.QueryRow(ctx, updateCartTotals,
		arg.ID, arg.TotalCents, arg.DiscountPercent, arg.TotalAfterDiscountCents))
}

const deleteCart = `
DELETE FROM carts
WHERE id = $1
`

// DeleteCart removes the cart; its items go with it (ON DELETE CASCADE).
func (q *Queries) DeleteCart(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, deleteCart, id)
	return err
}

// GetCartItemParams identifies a line item by cart and product.
type GetCartItemParams struct {
	CartID    pgtype.UUID
	ProductID pgtype.UUID
}

const getCartItem = `
SELECT id, cart_id, product_id, quantity, amount_cents
FROM cart_items
WHERE cart_id = $1 AND product_id = $2
`

func (q *Queries) GetCartItem(ctx context.Context, arg GetCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, getCartItem, arg.CartID, arg.ProductID)
	var ci CartItem
	err := row.Scan(&ci.ID, &ci.CartID, &ci.ProductID, &ci.Quantity, &ci.AmountCents)
	return ci, err
}

// CreateCartItemParams contains parameters for creating a line item.
type CreateCartItemParams struct {
	CartID      pgtype.UUID
	ProductID   pgtype.UUID
	Quantity    int32
	AmountCents int64
}

const createCartItem = `
INSERT INTO cart_items (cart_id, product_id, quantity, amount_cents)
VALUES ($1, $2, $3, $4)
RETURNING id, cart_id, product_id, quantity, amount_cents
`

func (q *Queries) CreateCartItem(ctx context.Context, arg CreateCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, createCartItem, arg.CartID, arg.ProductID, arg.Quantity, arg.AmountCents)
	var ci CartItem
	err := row.Scan(&ci.ID, &ci.CartID, &ci.ProductID, &ci.Quantity, &ci.AmountCents)
	return ci, err
}

// UpdateCartItemParams contains parameters for rewriting a line item's
// quantity and amount.
type UpdateCartItemParams struct {
	ID          pgtype.UUID
	Quantity    int32
	AmountCents int64
}

const updateCartItem = `
UPDATE cart_items
SET quantity = $2, amount_cents = $3
WHERE id = $1
`

func (q *Queries) UpdateCartItem(ctx context.Context, arg UpdateCartItemParams) error {
	_, err := q.db.Exec(ctx, updateCartItem, arg.ID, arg.Quantity, arg.AmountCents)
	return err
}

const deleteCartItem = `
DELETE FROM cart_items
WHERE id = $1
`

func (q *Queries) DeleteCartItem(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, deleteCartItem, id)
	return err
}

const listCartItems = `
SELECT ci.id, ci.product_id, p.name, p.description, p.image_url, p.price_cents, p.stock,
       ci.quantity, ci.amount_cents
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $1
ORDER BY ci.id
`

func (q *Queries) ListCartItems(ctx context.Context, cartID pgtype.UUID) ([]CartItemDetail, error) {
	rows, err := q.db.Query(ctx, listCartItems, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CartItemDetail
	for rows.Next() {
		var it CartItemDetail
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.ProductDescription,
			&it.ProductImageURL, &it.ProductPriceCents, &it.ProductStock,
			&it.Quantity, &it.AmountCents); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const sumCartItemAmounts = `
SELECT COALESCE(SUM(amount_cents), 0)::bigint
FROM cart_items
WHERE cart_id = $1
`

func (q *Queries) SumCartItemAmounts(ctx context.Context, cartID pgtype.UUID) (int64, error) {
	var sum int64
	err := q.db.QueryRow(ctx, sumCartItemAmounts, cartID).Scan(&sum)
	return sum, err
}

const countCartItems = `
SELECT COUNT(*)
FROM cart_items
WHERE cart_id = $1
`

func (q *Queries) CountCartItems(ctx context.Context, cartID pgtype.UUID) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countCartItems, cartID).Scan(&n)
	return n, err
}
