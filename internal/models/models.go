package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

const (
	PaymentMethodOnline = "online"
	PaymentMethodCOD    = "cash-on-delivery"
)

func ValidStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to
// another. Delivered and cancelled are terminal; cancellation is only
// reachable while the order has not shipped.
func CanTransition(from, to string) bool {
	if !ValidStatus(from) || !ValidStatus(to) || from == to {
		return false
	}
	if from == OrderStatusDelivered || from == OrderStatusCancelled {
		return false
	}
	if to == OrderStatusCancelled {
		return from == OrderStatusPending || from == OrderStatusProcessing
	}
	return true
}

type Product struct {
	ID            uuid.UUID     `gorm:"primaryKey"       json:"id"`
	Name          string        `gorm:"not null"         json:"name"`
	Description   string        `json:"description"`
	Brand         string        `json:"brand"`
	Category      string        `gorm:"index;not null"   json:"category"`
	Image         string        `json:"image"`
	Price         int64         `gorm:"not null"         json:"price"`
	DiscountPrice *int64        `json:"discount_price,omitempty"`
	Active        bool          `gorm:"index;default:true" json:"active"`
	Sizes         []ProductSize `gorm:"constraint:OnDelete:CASCADE" json:"sizes"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// UnitPrice is what a buyer actually pays: the discounted price when one
// is set and lower than the list price, the list price otherwise.
func (p *Product) UnitPrice() int64 {
	if p.DiscountPrice != nil && *p.DiscountPrice > 0 && *p.DiscountPrice < p.Price {
		return *p.DiscountPrice
	}
	return p.Price
}

// SizeStock returns the stock counter row for the given size, if any.
func (p *Product) SizeStock(size string) (*ProductSize, bool) {
	for i := range p.Sizes {
		if p.Sizes[i].Size == size {
			return &p.Sizes[i], true
		}
	}
	return nil, false
}

type ProductSize struct {
	ID        uint      `gorm:"primaryKey"                              json:"-"`
	ProductID uuid.UUID `gorm:"uniqueIndex:idx_product_size;not null"   json:"-"`
	Size      string    `gorm:"uniqueIndex:idx_product_size;not null"   json:"size"`
	Stock     uint      `gorm:"not null;default:0;check:stock >= 0"    json:"stock"`
}

func (ProductSize) TableName() string { return "product_sizes" }

type CartItem struct {
	ID        uuid.UUID `gorm:"primaryKey"                                  json:"id"`
	UserID    uuid.UUID `gorm:"uniqueIndex:idx_user_product_size;not null"  json:"user_id"`
	ProductID uuid.UUID `gorm:"uniqueIndex:idx_user_product_size;not null"  json:"product_id"`
	Size      string    `gorm:"uniqueIndex:idx_user_product_size;not null"  json:"size"`
	Quantity  uint      `gorm:"default:1;check:quantity>0"                  json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.AddedAt.IsZero() {
		c.AddedAt = time.Now().UTC()
	}
	return nil
}

func (CartItem) TableName() string { return "cart_items" }

type ShippingAddress struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type PaymentResult struct {
	GatewayOrderID string `json:"gateway_order_id,omitempty"`
	PaymentID      string `json:"payment_id,omitempty"`
}

type Order struct {
	ID     uuid.UUID `gorm:"primaryKey"     json:"id"`
	UserID uuid.UUID `gorm:"index;not null" json:"user_id"`

	Status        string `gorm:"not null;default:pending" json:"status"`
	PaymentMethod string `gorm:"not null"                 json:"payment_method"`

	IsPaid      bool       `gorm:"not null;default:false" json:"is_paid"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	IsDelivered bool       `gorm:"not null;default:false" json:"is_delivered"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`

	PaymentResult   PaymentResult   `gorm:"embedded;embeddedPrefix:payment_" json:"payment_result"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:ship_"    json:"shipping_address"`

	ItemsPrice    int64 `gorm:"not null" json:"items_price"`
	TaxPrice      int64 `gorm:"not null" json:"tax_price"`
	ShippingPrice int64 `gorm:"not null" json:"shipping_price"`
	TotalPrice    int64 `gorm:"not null" json:"total_price"`

	Items []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is the immutable per-line snapshot captured at purchase time.
// Later catalog edits never alter it.
type OrderItem struct {
	ID        uint      `gorm:"primaryKey"     json:"-"`
	OrderID   uuid.UUID `gorm:"index;not null" json:"-"`
	ProductID uuid.UUID `gorm:"not null"       json:"product_id"`
	Name      string    `gorm:"not null"       json:"name"`
	Image     string    `json:"image"`
	Size      string    `gorm:"not null"       json:"size"`
	Quantity  uint      `gorm:"not null"       json:"quantity"`
	UnitPrice int64     `gorm:"not null"       json:"unit_price"`
	LineTotal int64     `gorm:"not null"       json:"line_total"`
}
