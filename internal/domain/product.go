package domain

import "github.com/jackc/pgx/v5/pgtype"

// Product is the catalog entry carts and orders reference. Catalog CRUD is
// managed outside this service; only the fields cart and checkout logic
// read are modeled.
type Product struct {
	ID          pgtype.UUID `json:"id"`
	SellerID    pgtype.UUID `json:"sellerId"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	ImageURL    string      `json:"imageUrl"`
	PriceCents  int64       `json:"priceCents"`
	Stock       int32       `json:"stock"`
}
