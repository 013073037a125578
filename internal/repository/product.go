package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Product mirrors the products table.
type Product struct {
	ID          pgtype.UUID
	SellerID    pgtype.UUID
	Name        string
	Description string
	ImageURL    string
	PriceCents  int64
	Stock       int32
	CreatedAt   pgtype.Timestamptz
}

const getProduct = `
SELECT id, seller_id, name, description, image_url, price_cents, stock, created_at
FROM products
WHERE id = $1
`

func (q *Queries) GetProduct(ctx context.Context, id pgtype.UUID) (Product, error) {
	return q.scanProduct(q.db.QueryRow(ctx, getProduct, id))
}

const getProductForUpdate = getProduct + `FOR UPDATE
`

// GetProductForUpdate locks the product row so stock checks read the
// latest committed value and concurrent writers serialize.
func (q *Queries) GetProductForUpdate(ctx context.Context, id pgtype.UUID) (Product, error) {
	return q.scanProduct(q.db.QueryRow(ctx, getProductForUpdate, id))
}

func (q *Queries) scanProduct(row interface{ Scan(...any) error }) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.ImageURL,
		&p.PriceCents, &p.Stock, &p.CreatedAt)
	return p, err
}

// DecrementProductStockParams contains parameters for an atomic stock
// decrement.
type DecrementProductStockParams struct {
	ID       pgtype.UUID
	Quantity int32
}

const decrementProductStock = `
UPDATE products
SET stock = stock - $2
WHERE id = $1 AND stock >= $2
`

// DecrementProductStock subtracts quantity from stock only when enough
// remains. Returns the affected row count; 0 means insufficient stock.
func (q *Queries) DecrementProductStock(ctx context.Context, arg DecrementProductStockParams) (int64, error) {
	tag, err := q.db.Exec(ctx, decrementProductStock, arg.ID, arg.Quantity)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
