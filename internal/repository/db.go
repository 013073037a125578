// Package repository provides hand-written PostgreSQL queries behind a
// narrow Querier interface, plus a Store wrapper that runs multi-statement
// operations inside a single transaction.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so the
// same queries run inside and outside transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Querier is the full query surface the services code against. The Store's
// Queries implement it over Postgres; tests substitute an in-memory fake.
type Querier interface {
	// users
	GetUserByID(ctx context.Context, id pgtype.UUID) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	CreateUser(ctx context.Context, arg CreateUserParams) (User, error)

	// products
	GetProduct(ctx context.Context, id pgtype.UUID) (Product, error)
	GetProductForUpdate(ctx context.Context, id pgtype.UUID) (Product, error)
	DecrementProductStock(ctx context.Context, arg DecrementProductStockParams) (int64, error)

	// carts
	GetCartByID(ctx context.Context, id pgtype.UUID) (Cart, error)
	GetCartByUserID(ctx context.Context, userID pgtype.UUID) (Cart, error)
	GetCartByUserIDForUpdate(ctx context.Context, userID pgtype.UUID) (Cart, error)
	CreateCart(ctx context.Context, arg CreateCartParams) (Cart, error)
	UpdateCartTotals(ctx context.Context, arg UpdateCartTotalsParams) (Cart, error)
	DeleteCart(ctx context.Context, id pgtype.UUID) error
	GetCartItem(ctx context.Context, arg GetCartItemParams) (CartItem, error)
	CreateCartItem(ctx context.Context, arg CreateCartItemParams) (CartItem, error)
	UpdateCartItem(ctx context.Context, arg UpdateCartItemParams) error
	DeleteCartItem(ctx context.Context, id pgtype.UUID) error
	ListCartItems(ctx context.Context, cartID pgtype.UUID) ([]CartItemDetail, error)
	SumCartItemAmounts(ctx context.Context, cartID pgtype.UUID) (int64, error)
	CountCartItems(ctx context.Context, cartID pgtype.UUID) (int64, error)

	// orders
	CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error)
	CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error)
	GetOrder(ctx context.Context, id pgtype.UUID) (Order, error)
	ListOrderItems(ctx context.Context, orderID pgtype.UUID) ([]OrderItemDetail, error)
	ListOrders(ctx context.Context) ([]Order, error)
	ListOrdersByUser(ctx context.Context, userID pgtype.UUID) ([]Order, error)
	ListOrdersBySeller(ctx context.Context, sellerID pgtype.UUID) ([]Order, error)
	SetOrderStatus(ctx context.Context, arg SetOrderStatusParams) (Order, error)
	SetOrderStatusFromPending(ctx context.Context, arg SetOrderStatusParams) (int64, error)
	SetOrderDelivery(ctx context.Context, arg SetOrderDeliveryParams) (Order, error)
	DeleteOrderIfPending(ctx context.Context, id pgtype.UUID) (int64, error)
}

// Transactor runs a function against a Querier inside one transaction,
// committing on nil and rolling back on error.
type Transactor interface {
	ExecTx(ctx context.Context, fn func(Querier) error) error
}

// Queries executes SQL against a DBTX.
type Queries struct {
	db DBTX
}

var _ Querier = (*Queries)(nil)

// New creates Queries over a pool or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Store couples pool-level Queries with transaction execution.
type Store struct {
	*Queries
	pool *pgxpool.Pool
}

var _ Transactor = (*Store)(nil)

// NewStore creates a Store backed by a pgx connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Queries: New(pool),
		pool:    pool,
	}
}

// ExecTx runs fn inside a transaction. The Querier passed to fn is only
// valid for the duration of the call.
func (s *Store) ExecTx(ctx context.Context, fn func(Querier) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(New(tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("tx failed: %w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	return tx.Commit(ctx)
}
