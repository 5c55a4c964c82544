package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkarpov/sneakershop/internal/models"
	"github.com/nkarpov/sneakershop/internal/repo"
	"github.com/nkarpov/sneakershop/internal/transport"
)

func placeCODOrder(t *testing.T, r *repo.GormRepo, userID uuid.UUID, p *models.Product, size string, qty uint) *models.Order {
	t.Helper()

	svc := &CheckoutService{Repo: r, Pricing: PricingPolicy{}}
	order, err := svc.Checkout(context.Background(), userID, transport.CheckoutRequest{
		PaymentMethod: models.PaymentMethodCOD,
		Items:         []transport.CheckoutItem{{ProductID: p.ID, Size: size, Quantity: qty}},
	})
	require.NoError(t, err)
	return order
}

func TestOrder_OwnershipScoping(t *testing.T) {
	r := initTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	owner := uuid.New()
	p := seedProduct(t, r, "Air Runner", 12900, map[string]uint{"9": 5})
	order := placeCODOrder(t, r, owner, p, "9", 1)

	got, err := svc.GetOrder(ctx, owner, false, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	// someone else's order reads as not found, not forbidden
	_, err = svc.GetOrder(ctx, uuid.New(), false, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// admins see everything
	_, err = svc.GetOrder(ctx, uuid.New(), true, order.ID)
	assert.NoError(t, err)
}

func TestOrder_CancelRestoresStock(t *testing.T) {
	r := initTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	owner := uuid.New()
	p := seedProduct(t, r, "Air Runner", 12900, map[string]uint{"9": 5})
	order := placeCODOrder(t, r, owner, p, "9", 2)
	require.Equal(t, uint(3), stockOf(t, r, p, "9"))

	cancelled, err := svc.Cancel(ctx, owner, false, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, uint(5), stockOf(t, r, p, "9"))

	// second cancel is a no-op success and does not restore twice
	again, err := svc.Cancel(ctx, owner, false, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, again.Status)
	assert.Equal(t, uint(5), stockOf(t, r, p, "9"))
}

func TestOrder_CancelRejectedAfterShipment(t *testing.T) {
	r := initTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	owner := uuid.New()
	p := seedProduct(t, r, "Air Runner", 12900, map[string]uint{"9": 5})
	order := placeCODOrder(t, r, owner, p, "9", 1)

	_, err := svc.UpdateStatus(ctx, order.ID, models.OrderStatusShipped)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, owner, false, order.ID)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, uint(4), stockOf(t, r, p, "9"))
}

func TestOrder_UpdateStatus(t *testing.T) {
	r := initTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	p := seedProduct(t, r, "Air Runner", 12900, map[string]uint{"9": 5})
	order := placeCODOrder(t, r, uuid.New(), p, "9", 1)

	_, err := svc.UpdateStatus(ctx, order.ID, "misplaced")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateStatus(ctx, uuid.New(), models.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrNotFound)

	shipped, err := svc.UpdateStatus(ctx, order.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, shipped.Status)

	delivered, err := svc.UpdateStatus(ctx, order.ID, models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	require.NotNil(t, delivered.DeliveredAt)

	_, err = svc.UpdateStatus(ctx, order.ID, models.OrderStatusProcessing)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestOrder_ListPagination(t *testing.T) {
	r := initTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	owner := uuid.New()
	p := seedProduct(t, r, "Air Runner", 12900, map[string]uint{"9": 10})
	for i := 0; i < 3; i++ {
		placeCODOrder(t, r, owner, p, "9", 1)
	}

	page, err := svc.ListOrders(ctx, owner, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Orders, 2)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, int64(2), page.Pagination.TotalPages)

	page, err = svc.ListOrders(ctx, owner, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Orders, 1)
}
