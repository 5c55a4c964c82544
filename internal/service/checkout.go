package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nkarpov/sneakershop/internal/cache"
	"github.com/nkarpov/sneakershop/internal/logging"
	"github.com/nkarpov/sneakershop/internal/models"
	"github.com/nkarpov/sneakershop/internal/mykafka"
	"github.com/nkarpov/sneakershop/internal/payment"
	"github.com/nkarpov/sneakershop/internal/repo"
	"github.com/nkarpov/sneakershop/internal/transport"
)

// PricingPolicy is the server-side price computation: tax as basis points
// of the item subtotal, a flat shipping fee waived above a threshold.
// Client-supplied breakdown fields are never persisted.
type PricingPolicy struct {
	TaxRateBP        int64
	ShippingFlatFee  int64
	FreeShippingOver int64
}

func (p PricingPolicy) Tax(itemsPrice int64) int64 {
	return itemsPrice * p.TaxRateBP / 10000
}

func (p PricingPolicy) Shipping(itemsPrice int64) int64 {
	if p.FreeShippingOver > 0 && itemsPrice >= p.FreeShippingOver {
		return 0
	}
	return p.ShippingFlatFee
}

type InvoiceJob struct {
	OrderID uuid.UUID `json:"order_id"`
}

// CheckoutService turns a payment confirmation plus requested line items
// into a durable order with stock reserved and the cart reset.
type CheckoutService struct {
	Repo         *repo.GormRepo
	Verifier     *payment.Verifier
	Cache        *cache.Client
	Queue        *mykafka.Producer
	InvoiceTopic string
	Pricing      PricingPolicy
}

// Checkout runs the pipeline in spec order: payment authentication first
// (zero side effects on mismatch), advisory per-line validation, snapshot
// normalization and server-side pricing, then one store transaction for
// order creation + atomic stock decrement + cart clear, and finally the
// best-effort invoice enqueue.
func (s *CheckoutService) Checkout(ctx context.Context, userID uuid.UUID, req transport.CheckoutRequest) (*models.Order, error) {
	l := logging.FromContext(ctx)

	if req.PaymentMethod != models.PaymentMethodOnline && req.PaymentMethod != models.PaymentMethodCOD {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, req.PaymentMethod)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: items required", ErrValidation)
	}

	if req.PaymentMethod == models.PaymentMethodOnline {
		if req.GatewayOrderID == "" || req.PaymentID == "" || req.Signature == "" {
			return nil, fmt.Errorf("%w: gateway_order_id, payment_id and signature required for online payment", ErrValidation)
		}
		if !s.Verifier.Verify(req.GatewayOrderID, req.PaymentID, req.Signature) {
			return nil, fmt.Errorf("%w: order %s payment %s", ErrPaymentSignature, req.GatewayOrderID, req.PaymentID)
		}
	}

	// Advisory validation + snapshot build. The decrement inside the
	// transaction below is the actual enforcement point; this pass exists
	// to fail fast and to capture catalog data at purchase time.
	items := make([]models.OrderItem, 0, len(req.Items))
	var itemsPrice int64
	for _, line := range req.Items {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
		}

		p, err := s.Repo.GetActiveProduct(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: product %s", ErrNotFound, line.ProductID)
			}
			return nil, err
		}

		sz, ok := p.SizeStock(line.Size)
		if !ok {
			return nil, fmt.Errorf("%w: product %s has no size %s", ErrValidation, line.ProductID, line.Size)
		}
		if sz.Stock < line.Quantity {
			return nil, &repo.StockError{ProductID: line.ProductID, Size: line.Size}
		}

		unit := p.UnitPrice()
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.Image,
			Size:      line.Size,
			Quantity:  line.Quantity,
			UnitPrice: unit,
			LineTotal: int64(line.Quantity) * unit,
		})
		itemsPrice += int64(line.Quantity) * unit
	}

	taxPrice := s.Pricing.Tax(itemsPrice)
	shippingPrice := s.Pricing.Shipping(itemsPrice)

	order := &models.Order{
		UserID:          userID,
		PaymentMethod:   req.PaymentMethod,
		Status:          models.OrderStatusPending,
		ShippingAddress: req.ShippingAddress,
		ItemsPrice:      itemsPrice,
		TaxPrice:        taxPrice,
		ShippingPrice:   shippingPrice,
		TotalPrice:      itemsPrice + taxPrice + shippingPrice,
		Items:           items,
	}

	if req.PaymentMethod == models.PaymentMethodOnline {
		now := time.Now().UTC()
		order.Status = models.OrderStatusProcessing
		order.IsPaid = true
		order.PaidAt = &now
		order.PaymentResult = models.PaymentResult{
			GatewayOrderID: req.GatewayOrderID,
			PaymentID:      req.PaymentID,
		}
	}

	if err := s.Repo.CreateOrderReservingStock(ctx, order); err != nil {
		var stockErr *repo.StockError
		if errors.As(err, &stockErr) {
			l.Warn("checkout_stock_conflict", "user_id", userID,
				"product_id", stockErr.ProductID, "size", stockErr.Size)
		}
		return nil, err
	}

	// Stock moved, so cached catalog reads are stale.
	s.Cache.InvalidateCatalog(ctx)

	s.enqueueInvoice(ctx, order.ID)

	l.Info("checkout_success", "user_id", userID, "order_id", order.ID,
		"status", order.Status, "total", order.TotalPrice)
	return order, nil
}

// enqueueInvoice is fire-and-forget: a dead broker never fails a
// checkout, the job is logged for independent retry.
func (s *CheckoutService) enqueueInvoice(ctx context.Context, orderID uuid.UUID) {
	if s.Queue == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Queue.PublishEvent(pubCtx, s.InvoiceTopic, orderID.String(), InvoiceJob{OrderID: orderID}); err != nil {
		logging.FromContext(ctx).Error("invoice_enqueue_failed", "order_id", orderID, "error", err)
	}
}
