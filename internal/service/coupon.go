package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/aelshahawy/dokan/internal/domain"
	"github.com/aelshahawy/dokan/internal/kvstore"
	"github.com/aelshahawy/dokan/internal/repository"
	"github.com/aelshahawy/dokan/internal/telemetry"
)

const couponKeyPrefix = "coupon:"

type couponService struct {
	store   Store
	kv      kvstore.Store
	metrics *telemetry.Metrics
}

// NewCouponService creates a new CouponService instance. Coupons live in
// the key-value store so expiry is handled by TTL eviction.
func NewCouponService(store Store, kv kvstore.Store, metrics *telemetry.Metrics) domain.CouponService {
	return &couponService{store: store, kv: kv, metrics: metrics}
}

func couponKey(code string) string {
	return couponKeyPrefix + code
}

// Apply looks up the coupon and persists its discount onto the user's
// cart. Applying the same code twice is idempotent; a different code
// overwrites the previous discount.
func (s *couponService) Apply(ctx context.Context, userID pgtype.UUID, code string) (*domain.CouponApplication, error) {
	payload, err := s.kv.Get(ctx, couponKey(code))
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, domain.Internal(err, "coupon.apply", "failed to load coupon")
	}

	var coupon domain.Coupon
	if err := json.Unmarshal(payload, &coupon); err != nil {
		return nil, domain.Internal(err, "coupon.apply", "failed to decode coupon")
	}

	var result *domain.CouponApplication

	err = s.store.ExecTx(ctx, func(q repository.Querier) error {
		cart, err := q.GetCartByUserIDForUpdate(ctx, userID)
		if err != nil {
			if isNoRows(err) {
				return domain.ErrCartNotFound
			}
			return fmt.Errorf("get cart: %w", err)
		}

		discountCents := domain.DiscountAmount(cart.TotalCents, coupon.Discount)
		afterDiscount := cart.TotalCents - discountCents

		_, err = q.UpdateCartTotals(ctx, repository.UpdateCartTotalsParams{
			ID:                      cart.ID,
			TotalCents:              cart.TotalCents,
			DiscountPercent:         coupon.Discount,
			TotalAfterDiscountCents: pgtype.Int8{Int64: afterDiscount, Valid: true},
		})
		if err != nil {
			return fmt.Errorf("update cart totals: %w", err)
		}

		result = &domain.CouponApplication{
			Code:                    coupon.Code,
			DiscountPercent:         coupon.Discount,
			DiscountCents:           discountCents,
			TotalAfterDiscountCents: afterDiscount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.CouponsApplied.Inc()
	return result, nil
}

// Create stores a new coupon with a TTL of ExpiryInDays days.
// Administrator only.
func (s *couponService) Create(ctx context.Context, actor domain.Identity, coupon domain.Coupon) error {
	if !actor.IsAdmin() {
		return domain.Forbidden("coupon.create", "Only administrators can create coupons")
	}
	if coupon.Code == "" {
		return domain.Invalid("coupon.create", "Coupon code is required")
	}
	if coupon.Discount < 1 || coupon.Discount > 100 {
		return domain.Invalid("coupon.create", "Discount must be between 1 and 100 percent")
	}
	if coupon.ExpiryInDays < 1 {
		return domain.Invalid("coupon.create", "Expiry must be at least one day")
	}

	if _, err := s.kv.Get(ctx, couponKey(coupon.Code)); err == nil {
		return domain.ErrCouponExists
	} else if !errors.Is(err, kvstore.ErrNotFound) {
		return domain.Internal(err, "coupon.create", "failed to check coupon")
	}

	payload, err := json.Marshal(coupon)
	if err != nil {
		return domain.Internal(err, "coupon.create", "failed to encode coupon")
	}

	ttl := time.Duration(coupon.ExpiryInDays) * 24 * time.Hour
	if err := s.kv.Put(ctx, couponKey(coupon.Code), payload, ttl); err != nil {
		return domain.Internal(err, "coupon.create", "failed to store coupon")
	}
	return nil
}

// Delete removes a coupon by code. Administrator only.
func (s *couponService) Delete(ctx context.Context, actor domain.Identity, code string) error {
	if !actor.IsAdmin() {
		return domain.Forbidden("coupon.delete", "Only administrators can delete coupons")
	}

	if _, err := s.kv.Get(ctx, couponKey(code)); err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return domain.ErrCouponNotFound
		}
		return domain.Internal(err, "coupon.delete", "failed to check coupon")
	}

	if err := s.kv.Delete(ctx, couponKey(code)); err != nil {
		return domain.Internal(err, "coupon.delete", "failed to delete coupon")
	}
	return nil
}
