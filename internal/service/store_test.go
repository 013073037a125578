package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/aelshahawy/dokan/internal/repository"
)

// fakeStore is an in-memory implementation of Store. ExecTx snapshots
// the state up front and restores it when the function fails, mirroring
// a rolled-back transaction.
type fakeStore struct {
	mu  sync.Mutex
	seq int

	users      map[pgtype.UUID]repository.User
	products   map[pgtype.UUID]repository.Product
	carts      map[pgtype.UUID]repository.Cart
	cartItems  map[pgtype.UUID]fakeCartItem
	orders     map[pgtype.UUID]repository.Order
	orderItems map[pgtype.UUID]fakeOrderItem

	// failures maps a Querier method name to an error it should return.
	failures map[string]error
}

type fakeCartItem struct {
	repository.CartItem
	seq int
}

type fakeOrderItem struct {
	repository.OrderItem
	seq int
}

var _ Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      make(map[pgtype.UUID]repository.User),
		products:   make(map[pgtype.UUID]repository.Product),
		carts:      make(map[pgtype.UUID]repository.Cart),
		cartItems:  make(map[pgtype.UUID]fakeCartItem),
		orders:     make(map[pgtype.UUID]repository.Order),
		orderItems: make(map[pgtype.UUID]fakeOrderItem),
		failures:   make(map[string]error),
	}
}

func newUUID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}

func now() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: time.Now(), Valid: true}
}

func (f *fakeStore) failErr(method string) error {
	return f.failures[method]
}

type fakeSnapshot struct {
	products   map[pgtype.UUID]repository.Product
	carts      map[pgtype.UUID]repository.Cart
	cartItems  map[pgtype.UUID]fakeCartItem
	orders     map[pgtype.UUID]repository.Order
	orderItems map[pgtype.UUID]fakeOrderItem
}

func (f *fakeStore) snapshot() fakeSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := fakeSnapshot{
		products:   make(map[pgtype.UUID]repository.Product, len(f.products)),
		carts:      make(map[pgtype.UUID]repository.Cart, len(f.carts)),
		cartItems:  make(map[pgtype.UUID]fakeCartItem, len(f.cartItems)),
		orders:     make(map[pgtype.UUID]repository.Order, len(f.orders)),
		orderItems: make(map[pgtype.UUID]fakeOrderItem, len(f.orderItems)),
	}
	for k, v := range f.products {
		s.products[k] = v
	}
	for k, v := range f.carts {
		s.carts[k] = v
	}
	for k, v := range f.cartItems {
		s.cartItems[k] = v
	}
	for k, v := range f.orders {
		s.orders[k] = v
	}
	for k, v := range f.orderItems {
		s.orderItems[k] = v
	}
	return s
}

func (f *fakeStore) restore(s fakeSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.products = s.products
	f.carts = s.carts
	f.cartItems = s.cartItems
	f.orders = s.orders
	f.orderItems = s.orderItems
}

func (f *fakeStore) ExecTx(_ context.Context, fn func(repository.Querier) error) error {
	snap := f.snapshot()
	if err := fn(f); err != nil {
		f.restore(snap)
		return err
	}
	return nil
}

// seeding helpers

func (f *fakeStore) seedProduct(sellerID pgtype.UUID, name string, priceCents int64, stock int32) repository.Product {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := repository.Product{
		ID:         newUUID(),
		SellerID:   sellerID,
		Name:       name,
		PriceCents: priceCents,
		Stock:      stock,
		CreatedAt:  now(),
	}
	f.products[p.ID] = p
	return p
}

// users

func (f *fakeStore) GetUserByID(_ context.Context, id pgtype.UUID) (repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return repository.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return repository.User{}, pgx.ErrNoRows
}

func (f *fakeStore) CreateUser(_ context.Context, arg repository.CreateUserParams) (repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u := repository.User{
		ID:           newUUID(),
		Email:        arg.Email,
		Name:         arg.Name,
		PasswordHash: arg.PasswordHash,
		Role:         arg.Role,
		CreatedAt:    now(),
	}
	f.users[u.ID] = u
	return u, nil
}

// products

func (f *fakeStore) GetProduct(_ context.Context, id pgtype.UUID) (repository.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.products[id]
	if !ok {
		return repository.Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func (f *fakeStore) GetProductForUpdate(ctx context.Context, id pgtype.UUID) (repository.Product, error) {
	return f.GetProduct(ctx, id)
}

func (f *fakeStore) DecrementProductStock(_ context.Context, arg repository.DecrementProductStockParams) (int64, error) {
	if err := f.failErr("DecrementProductStock"); err != nil {
		return 0, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.products[arg.ID]
	if !ok || p.Stock < arg.Quantity {
		return 0, nil
	}
	p.Stock -= arg.Quantity
	f.products[p.ID] = p
	return 1, nil
}

// carts

func (f *fakeStore) GetCartByID(_ context.Context, id pgtype.UUID) (repository.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.carts[id]
	if !ok {
		return repository.Cart{}, pgx.ErrNoRows
	}
	return c, nil
}

func (f *fakeStore) GetCartByUserID(_ context.Context, userID pgtype.UUID) (repository.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	return repository.Cart{}, pgx.ErrNoRows
}

func (f *fakeStore) GetCartByUserIDForUpdate(ctx context.Context, userID pgtype.UUID) (repository.Cart, error) {
	return f.GetCartByUserID(ctx, userID)
}

func (f *fakeStore) CreateCart(_ context.Context, arg repository.CreateCartParams) (repository.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := repository.Cart{
		ID:         newUUID(),
		UserID:     arg.UserID,
		TotalCents: arg.TotalCents,
		CreatedAt:  now(),
		UpdatedAt:  now(),
	}
	f.carts[c.ID] = c
	return c, nil
}

func (f *fakeStore) UpdateCartTotals(_ context.Context, arg repository.UpdateCartTotalsParams) (repository.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.carts[arg.ID]
	if !ok {
		return repository.Cart{}, pgx.ErrNoRows
	}
	c.TotalCents = arg.TotalCents
	c.DiscountPercent = arg.DiscountPercent
	c.TotalAfterDiscountCents = arg.TotalAfterDiscountCents
	c.UpdatedAt = now()
	f.carts[c.ID] = c
	return c, nil
}

func (f *fakeStore) DeleteCart(_ context.Context, id pgtype.UUID) error {
	if err := f.failErr("DeleteCart"); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.carts, id)
	for itemID, item := range f.cartItems {
		if item.CartID == id {
			delete(f.cartItems, itemID)
		}
	}
	return nil
}

func (f *fakeStore) GetCartItem(_ context.Context, arg repository.GetCartItemParams) (repository.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, item := range f.cartItems {
		if item.CartID == arg.CartID && item.ProductID == arg.ProductID {
			return item.CartItem, nil
		}
	}
	return repository.CartItem{}, pgx.ErrNoRows
}

func (f *fakeStore) CreateCartItem(_ context.Context, arg repository.CreateCartItemParams) (repository.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	item := repository.CartItem{
		ID:          newUUID(),
		CartID:      arg.CartID,
		ProductID:   arg.ProductID,
		Quantity:    arg.Quantity,
		AmountCents: arg.AmountCents,
	}
	f.cartItems[item.ID] = fakeCartItem{CartItem: item, seq: f.seq}
	return item, nil
}

func (f *fakeStore) UpdateCartItem(_ context.Context, arg repository.UpdateCartItemParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	item, ok := f.cartItems[arg.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	item.Quantity = arg.Quantity
	item.AmountCents = arg.AmountCents
	f.cartItems[arg.ID] = item
	return nil
}

func (f *fakeStore) DeleteCartItem(_ context.Context, id pgtype.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.cartItems, id)
	return nil
}

func (f *fakeStore) ListCartItems(_ context.Context, cartID pgtype.UUID) ([]repository.CartItemDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var rows []fakeCartItem
	for _, item := range f.cartItems {
		if item.CartID == cartID {
			rows = append(rows, item)
		}
	}
	sortBySeq(rows, func(i fakeCartItem) int { return i.seq })

	var details []repository.CartItemDetail
	for _, item := range rows {
		p := f.products[item.ProductID]
		details = append(details, repository.CartItemDetail{
			ID:                 item.ID,
			ProductID:          item.ProductID,
			ProductName:        p.Name,
			ProductDescription: p.Description,
			ProductImageURL:    p.ImageURL,
			ProductPriceCents:  p.PriceCents,
			ProductStock:       p.Stock,
			Quantity:           item.Quantity,
			AmountCents:        item.AmountCents,
		})
	}
	return details, nil
}

func (f *fakeStore) SumCartItemAmounts(_ context.Context, cartID pgtype.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var sum int64
	for _, item := range f.cartItems {
		if item.CartID == cartID {
			sum += item.AmountCents
		}
	}
	return sum, nil
}

func (f *fakeStore) CountCartItems(_ context.Context, cartID pgtype.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int64
	for _, item := range f.cartItems {
		if item.CartID == cartID {
			n++
		}
	}
	return n, nil
}

// orders

func (f *fakeStore) CreateOrder(_ context.Context, arg repository.CreateOrderParams) (repository.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o := repository.Order{
		ID:          newUUID(),
		UserID:      arg.UserID,
		TotalCents:  arg.TotalCents,
		PaymentType: arg.PaymentType,
		Status:      "PENDING",
		Delivery:    "PENDING",
		CreatedAt:   now(),
	}
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeStore) CreateOrderItem(_ context.Context, arg repository.CreateOrderItemParams) (repository.OrderItem, error) {
	if err := f.failErr("CreateOrderItem"); err != nil {
		return repository.OrderItem{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	item := repository.OrderItem{
		ID:             newUUID(),
		OrderID:        arg.OrderID,
		ProductID:      arg.ProductID,
		Quantity:       arg.Quantity,
		UnitPriceCents: arg.UnitPriceCents,
	}
	f.orderItems[item.ID] = fakeOrderItem{OrderItem: item, seq: f.seq}
	return item, nil
}

func (f *fakeStore) GetOrder(_ context.Context, id pgtype.UUID) (repository.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[id]
	if !ok {
		return repository.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (f *fakeStore) ListOrderItems(_ context.Context, orderID pgtype.UUID) ([]repository.OrderItemDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var rows []fakeOrderItem
	for _, item := range f.orderItems {
		if item.OrderID == orderID {
			rows = append(rows, item)
		}
	}
	sortBySeq(rows, func(i fakeOrderItem) int { return i.seq })

	var details []repository.OrderItemDetail
	for _, item := range rows {
		p := f.products[item.ProductID]
		details = append(details, repository.OrderItemDetail{
			ID:                 item.ID,
			ProductID:          item.ProductID,
			ProductName:        p.Name,
			ProductDescription: p.Description,
			ProductImageURL:    p.ImageURL,
			Quantity:           item.Quantity,
			UnitPriceCents:     item.UnitPriceCents,
		})
	}
	return details, nil
}

func (f *fakeStore) ListOrders(_ context.Context) ([]repository.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var orders []repository.Order
	for _, o := range f.orders {
		orders = append(orders, o)
	}
	return orders, nil
}

func (f *fakeStore) ListOrdersByUser(_ context.Context, userID pgtype.UUID) ([]repository.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var orders []repository.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (f *fakeStore) ListOrdersBySeller(_ context.Context, sellerID pgtype.UUID) ([]repository.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var orders []repository.Order
	for _, o := range f.orders {
		for _, item := range f.orderItems {
			if item.OrderID != o.ID {
				continue
			}
			if p, ok := f.products[item.ProductID]; ok && p.SellerID == sellerID {
				orders = append(orders, o)
				break
			}
		}
	}
	return orders, nil
}

func (f *fakeStore) SetOrderStatus(_ context.Context, arg repository.SetOrderStatusParams) (repository.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[arg.ID]
	if !ok {
		return repository.Order{}, pgx.ErrNoRows
	}
	o.Status = arg.Status
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeStore) SetOrderStatusFromPending(_ context.Context, arg repository.SetOrderStatusParams) (int64, error) {
	if err := f.failErr("SetOrderStatusFromPending"); err != nil {
		return 0, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[arg.ID]
	if !ok || o.Status != "PENDING" {
		return 0, nil
	}
	o.Status = arg.Status
	f.orders[o.ID] = o
	return 1, nil
}

func (f *fakeStore) SetOrderDelivery(_ context.Context, arg repository.SetOrderDeliveryParams) (repository.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[arg.ID]
	if !ok {
		return repository.Order{}, pgx.ErrNoRows
	}
	o.Delivery = arg.Delivery
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeStore) DeleteOrderIfPending(_ context.Context, id pgtype.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[id]
	if !ok || o.Status != "PENDING" {
		return 0, nil
	}
	delete(f.orders, id)
	for itemID, item := range f.orderItems {
		if item.OrderID == id {
			delete(f.orderItems, itemID)
		}
	}
	return 1, nil
}

func sortBySeq[T any](items []T, seq func(T) int) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && seq(items[j]) < seq(items[j-1]); j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}
