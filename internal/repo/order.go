package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nkarpov/sneakershop/internal/models"
)

// CreateOrderReservingStock is the checkout transaction boundary: the
// order and its item snapshots are persisted, every (product, size) stock
// counter is decremented through the conditional UPDATE, and the user's
// cart is emptied. Any failed decrement rolls the whole transaction back,
// so there is never an order without its stock or a half-decremented
// product.
func (r *GormRepo) CreateOrderReservingStock(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for _, it := range order.Items {
			if err := decrementStock(tx, it.ProductID, it.Size, it.Quantity); err != nil {
				return err
			}
		}
		return tx.Where("user_id = ?", order.UserID).Delete(&models.CartItem{}).Error
	})
}

func (r *GormRepo) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").
		Where("id = ?", orderID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, userID uuid.UUID, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	if err := q.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

// TransitionOrder moves an order to a new status under the state-machine
// rules. The status flip is a compare-and-set on the previously observed
// status, so two concurrent transitions cannot both apply. Transitioning
// to the order's current status is an idempotent no-op (cancel twice is a
// success, with no double stock restore). Entering cancelled restores the
// reserved stock in the same transaction; entering delivered stamps the
// delivery fields.
func (r *GormRepo) TransitionOrder(ctx context.Context, orderID uuid.UUID, to string) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").Where("id = ?", orderID).First(&order).Error; err != nil {
			return err
		}

		if order.Status == to {
			return nil
		}
		if !models.CanTransition(order.Status, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, to)
		}

		updates := map[string]any{"status": to}
		if to == models.OrderStatusDelivered {
			now := time.Now().UTC()
			updates["is_delivered"] = true
			updates["delivered_at"] = now
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, order.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// lost the race against a concurrent transition
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, to)
		}

		if to == models.OrderStatusCancelled {
			var items []models.OrderItem
			if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
				return err
			}
			for _, it := range items {
				if err := restoreStock(tx, it.ProductID, it.Size, it.Quantity); err != nil {
					return err
				}
			}
		}

		return tx.Preload("Items").Where("id = ?", orderID).First(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
