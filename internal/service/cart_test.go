package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkarpov/sneakershop/internal/repo"
)

func TestCart_TotalsFollowCurrentPrice(t *testing.T) {
	r := initTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	userID := uuid.New()
	p := seedProduct(t, r, "Air Runner", 12900, map[string]uint{"9": 5})

	view, err := svc.AddItem(ctx, userID, p.ID, "9", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2*12900), view.TotalPrice)

	// price change after the line was added shows up on the next read
	require.NoError(t, r.DB.Model(p).Update("price", 15900).Error)

	view, err = svc.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(15900), view.Items[0].UnitPrice)
	assert.Equal(t, int64(2*15900), view.TotalPrice)
}

func TestCart_DiscountPreferred(t *testing.T) {
	r := initTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	userID := uuid.New()
	p := seedProduct(t, r, "Air Runner", 12900, map[string]uint{"9": 5})
	require.NoError(t, r.DB.Model(p).Update("discount_price", 9900).Error)

	view, err := svc.AddItem(ctx, userID, p.ID, "9", 1)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(9900), view.Items[0].UnitPrice)
}

func TestCart_DropsDeactivatedProducts(t *testing.T) {
	r := initTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	userID := uuid.New()
	keep := seedProduct(t, r, "Keep", 10000, map[string]uint{"9": 5})
	gone := seedProduct(t, r, "Gone", 20000, map[string]uint{"9": 5})

	_, err := svc.AddItem(ctx, userID, keep.ID, "9", 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, userID, gone.ID, "9", 1)
	require.NoError(t, err)

	require.NoError(t, r.DeleteProduct(ctx, gone.ID))

	view, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, keep.ID, view.Items[0].ProductID)
	assert.Equal(t, int64(10000), view.TotalPrice)
}

func TestCart_AddItemValidation(t *testing.T) {
	r := initTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	p := seedProduct(t, r, "Air Runner", 12900, map[string]uint{"9": 5})

	_, err := svc.AddItem(ctx, uuid.New(), uuid.New(), "9", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AddItem(ctx, uuid.New(), p.ID, "13", 1)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AddItem(ctx, uuid.New(), p.ID, "9", 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCart_UpdateQuantityBoundedByStock(t *testing.T) {
	r := initTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	userID := uuid.New()
	p := seedProduct(t, r, "Air Runner", 12900, map[string]uint{"9": 3})

	view, err := svc.AddItem(ctx, userID, p.ID, "9", 1)
	require.NoError(t, err)
	lineID := view.Items[0].ID

	view, err = svc.UpdateQuantity(ctx, userID, lineID, 3)
	require.NoError(t, err)
	assert.Equal(t, uint(3), view.Items[0].Quantity)

	_, err = svc.UpdateQuantity(ctx, userID, lineID, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, repo.ErrInsufficientStock)
}

func TestCart_RemoveAbsentLine(t *testing.T) {
	r := initTestRepo(t)
	svc := &CartService{Repo: r}

	_, err := svc.RemoveLine(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCart_Clear(t *testing.T) {
	r := initTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	userID := uuid.New()
	p := seedProduct(t, r, "Air Runner", 12900, map[string]uint{"9": 5})
	_, err := svc.AddItem(ctx, userID, p.ID, "9", 2)
	require.NoError(t, err)

	view, err := svc.Clear(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	view, err = svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.TotalPrice)
}
