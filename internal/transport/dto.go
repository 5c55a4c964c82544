package transport

import (
	"github.com/google/uuid"

	"github.com/nkarpov/sneakershop/internal/models"
)

type SizeInput struct {
	Size  string `json:"size"  validate:"required"`
	Stock uint   `json:"stock"`
}

type CreateProductRequest struct {
	Name          string      `json:"name"     validate:"required"`
	Description   string      `json:"description"`
	Brand         string      `json:"brand"`
	Category      string      `json:"category" validate:"required"`
	Image         string      `json:"image"`
	Price         int64       `json:"price"    validate:"required,gt=0"`
	DiscountPrice *int64      `json:"discount_price" validate:"omitempty,gt=0"`
	Sizes         []SizeInput `json:"sizes"    validate:"required,min=1,dive"`
}

type PatchProductRequest struct {
	Name          *string     `json:"name"`
	Description   *string     `json:"description"`
	Brand         *string     `json:"brand"`
	Category      *string     `json:"category"`
	Image         *string     `json:"image"`
	Price         *int64      `json:"price" validate:"omitempty,gt=0"`
	DiscountPrice *int64      `json:"discount_price" validate:"omitempty,gt=0"`
	Active        *bool       `json:"active"`
	Sizes         []SizeInput `json:"sizes" validate:"omitempty,dive"`
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Size      string    `json:"size"       validate:"required"`
	Quantity  uint      `json:"quantity"   validate:"required,gte=1"`
}

type UpdateCartItemRequest struct {
	Quantity uint `json:"quantity" validate:"required,gte=1"`
}

type CheckoutItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Size      string    `json:"size"       validate:"required"`
	Quantity  uint      `json:"quantity"   validate:"required,gte=1"`
	// advisory: the pipeline recomputes from the catalog
	UnitPrice int64 `json:"unit_price"`
}

type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=online cash-on-delivery"`

	GatewayOrderID string `json:"gateway_order_id"`
	PaymentID      string `json:"payment_id"`
	Signature      string `json:"signature"`

	Items           []CheckoutItem         `json:"items" validate:"required,min=1,dive"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`

	// display-only breakdown from the client; never persisted, the
	// pipeline recomputes all four server-side
	ItemsPrice    int64 `json:"items_price"`
	TaxPrice      int64 `json:"tax_price"`
	ShippingPrice int64 `json:"shipping_price"`
	TotalPrice    int64 `json:"total_price"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func NewPagination(page, size int, total int64) Pagination {
	pages := int64(0)
	if size > 0 {
		pages = (total + int64(size) - 1) / int64(size)
	}
	return Pagination{Page: page, Size: size, Total: total, TotalPages: pages}
}
