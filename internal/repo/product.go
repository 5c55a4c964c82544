package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nkarpov/sneakershop/internal/models"
	"github.com/nkarpov/sneakershop/internal/transport"
)

type ProductFilter struct {
	Category string
	Sort     string
	Offset   int
	Limit    int
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product := models.Product{}
	if err := r.DB.WithContext(ctx).Preload("Sizes").Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetActiveProduct is the customer-facing read: soft-deleted products are
// not visible here even though historical orders still reference them.
func (r *GormRepo) GetActiveProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product := models.Product{}
	if err := r.DB.WithContext(ctx).Preload("Sizes").
		Where("id = ? AND active = ?", id, true).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func sortExpr(sort string) string {
	switch sort {
	case "price_asc":
		return "price ASC"
	case "price_desc":
		return "price DESC"
	case "name":
		return "name ASC"
	default:
		return "created_at DESC"
	}
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) (int64, []models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{}).Where("active = ?", true)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := q.Preload("Sizes").
		Order(sortExpr(f.Sort)).
		Offset(f.Offset).Limit(f.Limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("active = ?", true).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		return nil, err
	}
	return prod, nil
}

func (r *GormRepo) PatchProduct(ctx context.Context, req transport.PatchProductRequest, id uuid.UUID) (*models.Product, error) {
	var prod models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Sizes").Where("id = ?", id).First(&prod).Error; err != nil {
			return err
		}

		if req.Name != nil {
			prod.Name = *req.Name
		}
		if req.Description != nil {
			prod.Description = *req.Description
		}
		if req.Brand != nil {
			prod.Brand = *req.Brand
		}
		if req.Category != nil {
			prod.Category = *req.Category
		}
		if req.Image != nil {
			prod.Image = *req.Image
		}
		if req.Price != nil {
			prod.Price = *req.Price
		}
		if req.DiscountPrice != nil {
			prod.DiscountPrice = req.DiscountPrice
		}
		if req.Active != nil {
			prod.Active = *req.Active
		}

		if req.Sizes != nil {
			if err := tx.Where("product_id = ?", id).Delete(&models.ProductSize{}).Error; err != nil {
				return err
			}
			sizes := make([]models.ProductSize, 0, len(req.Sizes))
			for _, s := range req.Sizes {
				sizes = append(sizes, models.ProductSize{ProductID: id, Size: s.Size, Stock: s.Stock})
			}
			if len(sizes) > 0 {
				if err := tx.Create(&sizes).Error; err != nil {
					return err
				}
			}
			prod.Sizes = sizes
		}

		return tx.Omit("Sizes").Save(&prod).Error
	})
	if err != nil {
		return nil, err
	}
	return &prod, nil
}

// DeleteProduct is a soft delete: the row stays for historical orders,
// customer reads stop seeing it.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// decrementStock is the single enforcement point for stock reservation:
// one conditional UPDATE scoped to (product, size), so concurrent
// checkouts serialize at the store and the counter can never go negative.
func decrementStock(tx *gorm.DB, productID uuid.UUID, size string, qty uint) error {
	res := tx.Model(&models.ProductSize{}).
		Where("product_id = ? AND size = ? AND stock >= ?", productID, size, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &StockError{ProductID: productID, Size: size}
	}
	return nil
}

func restoreStock(tx *gorm.DB, productID uuid.UUID, size string, qty uint) error {
	return tx.Model(&models.ProductSize{}).
		Where("product_id = ? AND size = ?", productID, size).
		Update("stock", gorm.Expr("stock + ?", qty)).Error
}

func (r *GormRepo) DecrementStock(ctx context.Context, productID uuid.UUID, size string, qty uint) error {
	return decrementStock(r.DB.WithContext(ctx), productID, size, qty)
}

func (r *GormRepo) RestoreStock(ctx context.Context, productID uuid.UUID, size string, qty uint) error {
	return restoreStock(r.DB.WithContext(ctx), productID, size, qty)
}
