package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nkarpov/sneakershop/internal/models"
)

func TestAddToCart_MergesSameProductSize(t *testing.T) {
	r := InitTestDB(t)
	ctx := context.Background()

	userID := uuid.New()
	p := seedProduct(t, r, "Air Runner", "running", 12900, map[string]uint{"M": 10})

	first := &models.CartItem{UserID: userID, ProductID: p.ID, Size: "M", Quantity: 2}
	require.NoError(t, r.AddToCart(ctx, first))

	second := &models.CartItem{UserID: userID, ProductID: p.ID, Size: "M", Quantity: 3}
	require.NoError(t, r.AddToCart(ctx, second))

	items, err := r.GetCartItems(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint(5), items[0].Quantity)
}

func TestAddToCart_DifferentSizesStaySeparate(t *testing.T) {
	r := InitTestDB(t)
	ctx := context.Background()

	userID := uuid.New()
	p := seedProduct(t, r, "Air Runner", "running", 12900, map[string]uint{"9": 5, "10": 5})

	require.NoError(t, r.AddToCart(ctx, &models.CartItem{UserID: userID, ProductID: p.ID, Size: "9", Quantity: 1}))
	require.NoError(t, r.AddToCart(ctx, &models.CartItem{UserID: userID, ProductID: p.ID, Size: "10", Quantity: 1}))

	items, err := r.GetCartItems(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestAddToCart_ScopedToUser(t *testing.T) {
	r := InitTestDB(t)
	ctx := context.Background()

	p := seedProduct(t, r, "Air Runner", "running", 12900, map[string]uint{"M": 10})
	alice, bob := uuid.New(), uuid.New()

	require.NoError(t, r.AddToCart(ctx, &models.CartItem{UserID: alice, ProductID: p.ID, Size: "M", Quantity: 2}))
	require.NoError(t, r.AddToCart(ctx, &models.CartItem{UserID: bob, ProductID: p.ID, Size: "M", Quantity: 1}))

	aliceItems, err := r.GetCartItems(ctx, alice)
	require.NoError(t, err)
	require.Len(t, aliceItems, 1)
	assert.Equal(t, uint(2), aliceItems[0].Quantity)
}

func TestRemoveCartLine_NotFound(t *testing.T) {
	r := InitTestDB(t)
	ctx := context.Background()

	err := r.RemoveCartLine(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestClearCart(t *testing.T) {
	r := InitTestDB(t)
	ctx := context.Background()

	userID := uuid.New()
	p := seedProduct(t, r, "Air Runner", "running", 12900, map[string]uint{"M": 10})
	require.NoError(t, r.AddToCart(ctx, &models.CartItem{UserID: userID, ProductID: p.ID, Size: "M", Quantity: 2}))

	require.NoError(t, r.ClearCart(ctx, userID))

	items, err := r.GetCartItems(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUpdateCartQuantity(t *testing.T) {
	r := InitTestDB(t)
	ctx := context.Background()

	userID := uuid.New()
	p := seedProduct(t, r, "Air Runner", "running", 12900, map[string]uint{"M": 10})

	item := &models.CartItem{UserID: userID, ProductID: p.ID, Size: "M", Quantity: 2}
	require.NoError(t, r.AddToCart(ctx, item))

	updated, err := r.UpdateCartQuantity(ctx, userID, item.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), updated.Quantity)

	_, err = r.UpdateCartQuantity(ctx, userID, uuid.New(), 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
