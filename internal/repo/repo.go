package repo

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type GormRepo struct {
	DB *gorm.DB
}

// StockError names the line a stock decrement (or advisory check) failed
// on, so callers can tell the user which product/size ran out.
type StockError struct {
	ProductID uuid.UUID
	Size      string
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s size %s", e.ProductID, e.Size)
}

func (e *StockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
