package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aelshahawy/dokan/internal/domain"
	"github.com/aelshahawy/dokan/internal/repository"
)

func TestCartService_AddItem_CreatesCart(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewCartService(store, testMetrics())

	userID := newUUID()
	product := store.seedProduct(newUUID(), "Keyboard", 10_50, 5)

	cart, err := svc.AddItem(ctx, userID, product.ID)
	require.NoError(t, err)

	assert.Equal(t, userID, cart.UserID)
	assert.Equal(t, int64(10_50), cart.TotalCents)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(1), cart.Items[0].Quantity)
	assert.Equal(t, int64(10_50), cart.Items[0].AmountCents)
	assert.Nil(t, cart.TotalAfterDiscountCents)
}

func TestCartService_AddItem_IncrementsQuantity(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewCartService(store, testMetrics())

	userID := newUUID()
	product := store.seedProduct(newUUID(), "Keyboard", 10_50, 5)

	_, err := svc.AddItem(ctx, userID, product.ID)
	require.NoError(t, err)

	cart, err := svc.AddItem(ctx, userID, product.ID)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(2), cart.Items[0].Quantity)
	assert.Equal(t, int64(21_00), cart.TotalCents)
}

func TestCartService_AddItem_OutOfStock(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewCartService(store, testMetrics())

	userID := newUUID()
	product := store.seedProduct(newUUID(), "Limited", 5_00, 1)

	_, err := svc.AddItem(ctx, userID, product.ID)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, userID, product.ID)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)

	// the failed mutation must leave the cart untouched
	cart, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(1), cart.Items[0].Quantity)
	assert.Equal(t, int64(5_00), cart.TotalCents)
}

func TestCartService_AddItem_ProductMissing(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, testMetrics())

	_, err := svc.AddItem(context.Background(), newUUID(), newUUID())
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCartService_SetItemQuantity(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewCartService(store, testMetrics())

	userID := newUUID()
	product := store.seedProduct(newUUID(), "Keyboard", 10_00, 10)

	cart, err := svc.SetItemQuantity(ctx, userID, product.ID, 3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(3), cart.Items[0].Quantity)
	assert.Equal(t, int64(30_00), cart.TotalCents)

	cart, err = svc.SetItemQuantity(ctx, userID, product.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, int32(7), cart.Items[0].Quantity)
	assert.Equal(t, int64(70_00), cart.TotalCents)
}

func TestCartService_SetItemQuantity_ZeroRemoves(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewCartService(store, testMetrics())

	userID := newUUID()
	product := store.seedProduct(newUUID(), "Keyboard", 10_00, 10)

	_, err := svc.AddItem(ctx, userID, product.ID)
	require.NoError(t, err)

	cart, err := svc.SetItemQuantity(ctx, userID, product.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, cart)

	cart, err = svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, cart)
}

func TestCartService_SetItemQuantity_ExceedsStock(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewCartService(store, testMetrics())

	userID := newUUID()
	product := store.seedProduct(newUUID(), "Limited", 10_00, 3)

	_, err := svc.SetItemQuantity(ctx, userID, product.ID, 4)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)
}

func TestCartService_SetItemQuantity_Negative(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, testMetrics())

	_, err := svc.SetItemQuantity(context.Background(), newUUID(), newUUID(), -1)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestCartService_RemoveItem(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewCartService(store, testMetrics())

	userID := newUUID()
	keyboard := store.seedProduct(newUUID(), "Keyboard", 10_00, 10)
	mouse := store.seedProduct(newUUID(), "Mouse", 4_00, 10)

	_, err := svc.AddItem(ctx, userID, keyboard.ID)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, userID, mouse.ID)
	require.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, userID, keyboard.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, mouse.ID, cart.Items[0].ProductID)
	assert.Equal(t, int64(4_00), cart.TotalCents)
}

func TestCartService_RemoveItem_LastDeletesCart(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewCartService(store, testMetrics())

	userID := newUUID()
	product := store.seedProduct(newUUID(), "Keyboard", 10_00, 10)

	_, err := svc.AddItem(ctx, userID, product.ID)
	require.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, userID, product.ID)
	require.NoError(t, err)
	assert.Nil(t, cart)

	cart, err = svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, cart)
}

func TestCartService_RemoveItem_NotInCart(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewCartService(store, testMetrics())

	userID := newUUID()
	keyboard := store.seedProduct(newUUID(), "Keyboard", 10_00, 10)
	mouse := store.seedProduct(newUUID(), "Mouse", 4_00, 10)

	_, err := svc.AddItem(ctx, userID, keyboard.ID)
	require.NoError(t, err)

	_, err = svc.RemoveItem(ctx, userID, mouse.ID)
	assert.ErrorIs(t, err, domain.ErrCartItemNotFound)
}

func TestCartService_MutationReappliesDiscount(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewCartService(store, testMetrics())

	userID := newUUID()
	keyboard := store.seedProduct(newUUID(), "Keyboard", 100_00, 10)
	mouse := store.seedProduct(newUUID(), "Mouse", 50_00, 10)

	cart, err := svc.AddItem(ctx, userID, keyboard.ID)
	require.NoError(t, err)

	// stored discount, as left behind by a coupon application
	_, err = store.UpdateCartTotals(ctx, repository.UpdateCartTotalsParams{
		ID:                      cart.ID,
		TotalCents:              cart.TotalCents,
		DiscountPercent:         10,
		TotalAfterDiscountCents: pgtype.Int8{Int64: 90_00, Valid: true},
	})
	require.NoError(t, err)

	updated, err := svc.AddItem(ctx, userID, mouse.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(150_00), updated.TotalCents)
	require.NotNil(t, updated.TotalAfterDiscountCents)
	assert.Equal(t, int64(135_00), *updated.TotalAfterDiscountCents)
}

func TestCartService_Clear(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewCartService(store, testMetrics())

	userID := newUUID()
	product := store.seedProduct(newUUID(), "Keyboard", 10_00, 10)

	cart, err := svc.AddItem(ctx, userID, product.ID)
	require.NoError(t, err)

	owner := domain.Identity{ID: userID, Role: domain.RoleUser}
	require.NoError(t, svc.Clear(ctx, owner, cart.ID))

	got, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCartService_Clear_Forbidden(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewCartService(store, testMetrics())

	userID := newUUID()
	product := store.seedProduct(newUUID(), "Keyboard", 10_00, 10)

	cart, err := svc.AddItem(ctx, userID, product.ID)
	require.NoError(t, err)

	stranger := domain.Identity{ID: newUUID(), Role: domain.RoleUser}
	err = svc.Clear(ctx, stranger, cart.ID)
	assert.ErrorIs(t, err, domain.ErrCartAccessForbidden)

	admin := domain.Identity{ID: newUUID(), Role: domain.RoleAdmin}
	assert.NoError(t, svc.Clear(ctx, admin, cart.ID))
}

func TestCartService_GetCart_NoCart(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, testMetrics())

	cart, err := svc.GetCart(context.Background(), newUUID())
	require.NoError(t, err)
	assert.Nil(t, cart)
}
