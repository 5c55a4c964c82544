package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nkarpov/sneakershop/internal/cache"
	"github.com/nkarpov/sneakershop/internal/models"
	"github.com/nkarpov/sneakershop/internal/repo"
	"github.com/nkarpov/sneakershop/internal/transport"
	"github.com/nkarpov/sneakershop/internal/util"
)

type OrderService struct {
	Repo  *repo.GormRepo
	Cache *cache.Client
}

type OrderPage struct {
	Orders     []models.Order       `json:"orders"`
	Pagination transport.Pagination `json:"pagination"`
}

// GetOrder fetches one order scoped to its owner. A mismatched owner gets
// the same not-found as a missing order, so order ids cannot be probed.
func (s *OrderService) GetOrder(ctx context.Context, userID uuid.UUID, admin bool, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil, err
	}
	if !admin && order.UserID != userID {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID, page, size int) (*OrderPage, error) {
	offset, limit := util.Calculate(page, size)
	if page < 1 {
		page = 1
	}

	total, orders, err := s.Repo.ListOrders(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return &OrderPage{
		Orders:     orders,
		Pagination: transport.NewPagination(page, limit, total),
	}, nil
}

// Cancel moves an order to cancelled, restoring its reserved stock.
// Allowed from pending/processing; rejected once shipped or delivered;
// cancelling an already-cancelled order is an idempotent success.
func (s *OrderService) Cancel(ctx context.Context, userID uuid.UUID, admin bool, orderID uuid.UUID) (*models.Order, error) {
	current, err := s.GetOrder(ctx, userID, admin, orderID)
	if err != nil {
		return nil, err
	}

	order, err := s.Repo.TransitionOrder(ctx, orderID, models.OrderStatusCancelled)
	if err != nil {
		if errors.Is(err, repo.ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: cannot cancel a %s order", ErrConflict, current.Status)
		}
		return nil, err
	}

	// Restored stock makes cached catalog reads stale.
	s.Cache.InvalidateCatalog(ctx)
	return order, nil
}

// UpdateStatus is the administrative transition. The same state machine
// applies: no exit from delivered or cancelled, cancellation only before
// shipment (and it restores stock like a user cancel).
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, error) {
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	order, err := s.Repo.TransitionOrder(ctx, orderID, status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		if errors.Is(err, repo.ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return nil, err
	}

	if status == models.OrderStatusCancelled {
		s.Cache.InvalidateCatalog(ctx)
	}
	return order, nil
}
