package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nkarpov/sneakershop/internal/models"
	"github.com/nkarpov/sneakershop/internal/repo"
)

type CartService struct {
	Repo *repo.GormRepo
}

// CartLine is a cart row joined with the catalog data its totals are
// derived from. UnitPrice always comes from the current product price,
// never from anything the client sent.
type CartLine struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Size      string    `json:"size"`
	Quantity  uint      `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
	LineTotal int64     `json:"line_total"`
	AddedAt   time.Time `json:"added_at"`
}

type CartView struct {
	Items      []CartLine `json:"items"`
	TotalItems uint       `json:"total_items"`
	TotalPrice int64      `json:"total_price"`
}

// GetCart recomputes totals from current product prices on every read, so
// a price change after a line was added is reflected immediately. Lines
// whose product has gone missing or inactive are dropped from the view.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	items, err := s.Repo.GetCartItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &CartView{Items: make([]CartLine, 0, len(items))}
	for _, it := range items {
		p, err := s.Repo.GetActiveProduct(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}

		unit := p.UnitPrice()
		line := CartLine{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      p.Name,
			Image:     p.Image,
			Size:      it.Size,
			Quantity:  it.Quantity,
			UnitPrice: unit,
			LineTotal: int64(it.Quantity) * unit,
			AddedAt:   it.AddedAt,
		}
		view.Items = append(view.Items, line)
		view.TotalItems += it.Quantity
		view.TotalPrice += line.LineTotal
	}

	return view, nil
}

func (s *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID, size string, qty uint) (*CartView, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("%w: product_id required", ErrValidation)
	}
	if size == "" {
		return nil, fmt.Errorf("%w: size required", ErrValidation)
	}
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
	}

	p, err := s.Repo.GetActiveProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, productID)
		}
		return nil, err
	}
	if _, ok := p.SizeStock(size); !ok {
		return nil, fmt.Errorf("%w: product %s has no size %s", ErrValidation, productID, size)
	}

	item := &models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Size:      size,
		Quantity:  qty,
	}
	if err := s.Repo.AddToCart(ctx, item); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

// UpdateQuantity sets an exact quantity on a line, rejecting anything the
// current stock for that product/size cannot cover.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, lineID uuid.UUID, qty uint) (*CartView, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
	}

	line, err := s.Repo.GetCartLine(ctx, userID, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cart line %s", ErrNotFound, lineID)
		}
		return nil, err
	}

	p, err := s.Repo.GetActiveProduct(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, line.ProductID)
		}
		return nil, err
	}
	sz, ok := p.SizeStock(line.Size)
	if !ok || sz.Stock < qty {
		return nil, &repo.StockError{ProductID: line.ProductID, Size: line.Size}
	}

	if _, err := s.Repo.UpdateCartQuantity(ctx, userID, lineID, qty); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

func (s *CartService) RemoveLine(ctx context.Context, userID, lineID uuid.UUID) (*CartView, error) {
	if err := s.Repo.RemoveCartLine(ctx, userID, lineID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cart line %s", ErrNotFound, lineID)
		}
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	if err := s.Repo.ClearCart(ctx, userID); err != nil {
		return nil, err
	}
	return &CartView{Items: []CartLine{}}, nil
}
