package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nkarpov/sneakershop/internal/models"
	"github.com/nkarpov/sneakershop/internal/repo"
)

func initTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// in-memory sqlite is per-connection; a single connection keeps all
	// goroutines on the same database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Product{}, &models.ProductSize{},
		&models.CartItem{},
		&models.Order{}, &models.OrderItem{},
	))

	return &repo.GormRepo{DB: db}
}

func seedProduct(t *testing.T, r *repo.GormRepo, name string, price int64, stocks map[string]uint) *models.Product {
	t.Helper()

	sizes := make([]models.ProductSize, 0, len(stocks))
	for size, stock := range stocks {
		sizes = append(sizes, models.ProductSize{Size: size, Stock: stock})
	}

	p := &models.Product{
		Name:     name,
		Category: "sneakers",
		Price:    price,
		Active:   true,
		Sizes:    sizes,
	}
	require.NoError(t, r.DB.Create(p).Error)
	return p
}

func stockOf(t *testing.T, r *repo.GormRepo, p *models.Product, size string) uint {
	t.Helper()

	var row models.ProductSize
	require.NoError(t, r.DB.Where("product_id = ? AND size = ?", p.ID, size).First(&row).Error)
	return row.Stock
}
