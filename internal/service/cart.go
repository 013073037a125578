package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/aelshahawy/dokan/internal/domain"
	"github.com/aelshahawy/dokan/internal/repository"
	"github.com/aelshahawy/dokan/internal/telemetry"
)

type cartService struct {
	store   Store
	metrics *telemetry.Metrics
}

// NewCartService creates a new CartService instance.
func NewCartService(store Store, metrics *telemetry.Metrics) domain.CartService {
	return &cartService{store: store, metrics: metrics}
}

// GetCart retrieves the user's cart. Returns (nil, nil) when the user has
// no cart; a missing cart is an empty state, not an error.
func (s *cartService) GetCart(ctx context.Context, userID pgtype.UUID) (*domain.CartDetail, error) {
	cart, err := s.store.GetCartByUserID(ctx, userID)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return s.hydrate(ctx, s.store, cart)
}

func (s *cartService) AddItem(ctx context.Context, userID, productID pgtype.UUID) (*domain.CartDetail, error) {
	var detail *domain.CartDetail

	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		product, err := q.GetProductForUpdate(ctx, productID)
		if err != nil {
			if isNoRows(err) {
				return domain.ErrProductNotFound
			}
			return fmt.Errorf("get product: %w", err)
		}

		cart, err := q.GetCartByUserIDForUpdate(ctx, userID)
		if isNoRows(err) {
			cart, err = q.CreateCart(ctx, repository.CreateCartParams{UserID: userID})
		}
		if err != nil {
			return fmt.Errorf("get or create cart: %w", err)
		}

		quantity := int32(1)
		item, err := q.GetCartItem(ctx, repository.GetCartItemParams{CartID: cart.ID, ProductID: productID})
		switch {
		case err == nil:
			quantity = item.Quantity + 1
		case !isNoRows(err):
			return fmt.Errorf("get cart item: %w", err)
		}

		if quantity > product.Stock {
			return domain.ErrOutOfStock
		}

		amount := domain.LineAmount(product.PriceCents, quantity)
		if item.ID.Valid {
			err = q.UpdateCartItem(ctx, repository.UpdateCartItemParams{
				ID:          item.ID,
				Quantity:    quantity,
				AmountCents: amount,
			})
		} else {
			_, err = q.CreateCartItem(ctx, repository.CreateCartItemParams{
				CartID:      cart.ID,
				ProductID:   productID,
				Quantity:    quantity,
				AmountCents: amount,
			})
		}
		if err != nil {
			return fmt.Errorf("write cart item: %w", err)
		}

		cart, err = s.refreshTotals(ctx, q, cart)
		if err != nil {
			return err
		}

		detail, err = s.hydrate(ctx, q, cart)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.CartMutations.WithLabelValues("add").Inc()
	s.metrics.CartValue.Observe(float64(detail.TotalCents))
	return detail, nil
}

func (s *cartService) SetItemQuantity(ctx context.Context, userID, productID pgtype.UUID, quantity int32) (*domain.CartDetail, error) {
	if quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	var detail *domain.CartDetail

	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		product, err := q.GetProductForUpdate(ctx, productID)
		if err != nil {
			if isNoRows(err) {
				return domain.ErrProductNotFound
			}
			return fmt.Errorf("get product: %w", err)
		}

		if quantity > product.Stock {
			return domain.ErrOutOfStock
		}

		cart, err := q.GetCartByUserIDForUpdate(ctx, userID)
		if isNoRows(err) {
			cart, err = q.CreateCart(ctx, repository.CreateCartParams{UserID: userID})
		}
		if err != nil {
			return fmt.Errorf("get or create cart: %w", err)
		}

		amount := domain.LineAmount(product.PriceCents, quantity)

		item, err := q.GetCartItem(ctx, repository.GetCartItemParams{CartID: cart.ID, ProductID: productID})
		switch {
		case err == nil:
			err = q.UpdateCartItem(ctx, repository.UpdateCartItemParams{
				ID:          item.ID,
				Quantity:    quantity,
				AmountCents: amount,
			})
		case isNoRows(err):
			_, err = q.CreateCartItem(ctx, repository.CreateCartItemParams{
				CartID:      cart.ID,
				ProductID:   productID,
				Quantity:    quantity,
				AmountCents: amount,
			})
		}
		if err != nil {
			return fmt.Errorf("write cart item: %w", err)
		}

		cart, err = s.refreshTotals(ctx, q, cart)
		if err != nil {
			return err
		}

		detail, err = s.hydrate(ctx, q, cart)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.CartMutations.WithLabelValues("update").Inc()
	s.metrics.CartValue.Observe(float64(detail.TotalCents))
	return detail, nil
}

// RemoveItem deletes the product's line item. Removing the last item
// deletes the cart and returns (nil, nil).
func (s *cartService) RemoveItem(ctx context.Context, userID, productID pgtype.UUID) (*domain.CartDetail, error) {
	var detail *domain.CartDetail

	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		cart, err := q.GetCartByUserIDForUpdate(ctx, userID)
		if err != nil {
			if isNoRows(err) {
				return domain.ErrCartNotFound
			}
			return fmt.Errorf("get cart: %w", err)
		}

		item, err := q.GetCartItem(ctx, repository.GetCartItemParams{CartID: cart.ID, ProductID: productID})
		if err != nil {
			if isNoRows(err) {
				return domain.ErrCartItemNotFound
			}
			return fmt.Errorf("get cart item: %w", err)
		}

		if err := q.DeleteCartItem(ctx, item.ID); err != nil {
			return fmt.Errorf("delete cart item: %w", err)
		}

		count, err := q.CountCartItems(ctx, cart.ID)
		if err != nil {
			return fmt.Errorf("count cart items: %w", err)
		}
		if count == 0 {
			return q.DeleteCart(ctx, cart.ID)
		}

		cart, err = s.refreshTotals(ctx, q, cart)
		if err != nil {
			return err
		}

		detail, err = s.hydrate(ctx, q, cart)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.CartMutations.WithLabelValues("remove").Inc()
	return detail, nil
}

// Clear deletes the cart unconditionally. Owner or administrator only.
func (s *cartService) Clear(ctx context.Context, actor domain.Identity, cartID pgtype.UUID) error {
	cart, err := s.store.GetCartByID(ctx, cartID)
	if err != nil {
		if isNoRows(err) {
			return domain.ErrCartNotFound
		}
		return fmt.Errorf("get cart: %w", err)
	}

	if cart.UserID != actor.ID && !actor.IsAdmin() {
		return domain.ErrCartAccessForbidden
	}

	if err := s.store.DeleteCart(ctx, cart.ID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	s.metrics.CartMutations.WithLabelValues("clear").Inc()
	return nil
}

// refreshTotals recomputes the cart total from its line items and
// reapplies the stored discount, keeping the denormalized totals
// consistent with the items within the same transaction.
func (s *cartService) refreshTotals(ctx context.Context, q repository.Querier, cart repository.Cart) (repository.Cart, error) {
	total, err := q.SumCartItemAmounts(ctx, cart.ID)
	if err != nil {
		return repository.Cart{}, fmt.Errorf("sum cart items: %w", err)
	}

	var afterDiscount pgtype.Int8
	if cart.DiscountPercent > 0 {
		afterDiscount = pgtype.Int8{
			Int64: domain.ApplyDiscount(total, cart.DiscountPercent),
			Valid: true,
		}
	}

	updated, err := q.UpdateCartTotals(ctx, repository.UpdateCartTotalsParams{
		ID:                      cart.ID,
		TotalCents:              total,
		DiscountPercent:         cart.DiscountPercent,
		TotalAfterDiscountCents: afterDiscount,
	})
	if err != nil {
		return repository.Cart{}, fmt.Errorf("update cart totals: %w", err)
	}
	return updated, nil
}

func (s *cartService) hydrate(ctx context.Context, q repository.Querier, cart repository.Cart) (*domain.CartDetail, error) {
	rows, err := q.ListCartItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}

	items := make([]domain.CartItemDetail, 0, len(rows))
	for _, r := range rows {
		items = append(items, domain.CartItemDetail{
			ID:          r.ID,
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			Description: r.ProductDescription,
			ImageURL:    r.ProductImageURL,
			PriceCents:  r.ProductPriceCents,
			Stock:       r.ProductStock,
			Quantity:    r.Quantity,
			AmountCents: r.AmountCents,
		})
	}

	detail := &domain.CartDetail{
		ID:              cart.ID,
		UserID:          cart.UserID,
		TotalCents:      cart.TotalCents,
		DiscountPercent: cart.DiscountPercent,
		Items:           items,
		CreatedAt:       cart.CreatedAt,
		UpdatedAt:       cart.UpdatedAt,
	}
	if cart.TotalAfterDiscountCents.Valid {
		v := cart.TotalAfterDiscountCents.Int64
		detail.TotalAfterDiscountCents = &v
	}
	return detail, nil
}
