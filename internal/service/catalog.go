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
	"github.com/nkarpov/sneakershop/internal/repo"
	"github.com/nkarpov/sneakershop/internal/search"
	"github.com/nkarpov/sneakershop/internal/transport"
	"github.com/nkarpov/sneakershop/internal/util"
)

// CatalogService owns customer-facing product reads (through the cache)
// and admin mutations (which invalidate it). The checkout pipeline never
// goes through here — it reads the store directly.
type CatalogService struct {
	Repo     *repo.GormRepo
	Cache    *cache.Client
	Search   *search.Service
	Producer *mykafka.Producer
	Topic    string
}

type ProductPage struct {
	Products   []models.Product     `json:"products"`
	Pagination transport.Pagination `json:"pagination"`
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	key := cache.ProductKey(id)

	var cached models.Product
	if s.Cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	product, err := s.Repo.GetActiveProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return nil, err
	}

	s.Cache.Set(ctx, key, product)
	return product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, category, sort string, page, size int) (*ProductPage, error) {
	offset, limit := util.Calculate(page, size)
	if page < 1 {
		page = 1
	}
	key := cache.ProductListKey(category, sort, page, limit)

	var cached ProductPage
	if s.Cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	total, items, err := s.Repo.ListProducts(ctx, repo.ProductFilter{
		Category: category,
		Sort:     sort,
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}

	result := &ProductPage{
		Products:   items,
		Pagination: transport.NewPagination(page, limit, total),
	}
	s.Cache.Set(ctx, key, result)
	return result, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]string, error) {
	key := cache.CategoriesKey()

	var cached []string
	if s.Cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	categories, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	s.Cache.Set(ctx, key, categories)
	return categories, nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, query string, page, size int) (*ProductPage, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query required", ErrValidation)
	}
	from, limit := util.Calculate(page, size)
	if page < 1 {
		page = 1
	}

	total, items, err := s.Search.Search(ctx, query, from, limit)
	if err != nil {
		return nil, err
	}
	return &ProductPage{
		Products:   items,
		Pagination: transport.NewPagination(page, limit, total),
	}, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if req.Name == "" || req.Category == "" {
		return nil, fmt.Errorf("%w: name and category required", ErrValidation)
	}
	if req.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be > 0", ErrValidation)
	}
	if len(req.Sizes) == 0 {
		return nil, fmt.Errorf("%w: at least one size required", ErrValidation)
	}
	seen := make(map[string]bool, len(req.Sizes))
	sizes := make([]models.ProductSize, 0, len(req.Sizes))
	for _, sz := range req.Sizes {
		if sz.Size == "" {
			return nil, fmt.Errorf("%w: size label required", ErrValidation)
		}
		if seen[sz.Size] {
			return nil, fmt.Errorf("%w: duplicate size %s", ErrValidation, sz.Size)
		}
		seen[sz.Size] = true
		sizes = append(sizes, models.ProductSize{Size: sz.Size, Stock: sz.Stock})
	}

	prod := &models.Product{
		Name:          req.Name,
		Description:   req.Description,
		Brand:         req.Brand,
		Category:      req.Category,
		Image:         req.Image,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Active:        true,
		Sizes:         sizes,
	}

	if _, err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, err
	}

	s.afterMutation(ctx, "product_created", prod)
	return prod, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	prod, err := s.Repo.PatchProduct(ctx, req, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return nil, err
	}

	s.afterMutation(ctx, "product_updated", prod)
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return err
	}

	l := logging.FromContext(ctx)
	s.Cache.InvalidateCatalog(ctx)
	if err := s.Search.DeleteProduct(ctx, id); err != nil {
		l.Warn("search_delete_failed", "product_id", id, "error", err)
	}
	s.publish(ctx, map[string]any{"type": "product_deleted", "productID": id})
	return nil
}

// afterMutation runs the write-invalidate discipline: drop the whole
// catalog cache namespace, reindex the document, emit the catalog event.
// Only the store write is authoritative; the rest is best-effort.
func (s *CatalogService) afterMutation(ctx context.Context, eventType string, prod *models.Product) {
	l := logging.FromContext(ctx)

	s.Cache.InvalidateCatalog(ctx)

	if err := s.Search.IndexProduct(ctx, prod); err != nil {
		l.Warn("search_index_failed", "product_id", prod.ID, "error", err)
	}

	s.publish(ctx, map[string]any{
		"type":      eventType,
		"productID": prod.ID,
		"name":      prod.Name,
	})
}

func (s *CatalogService) publish(ctx context.Context, event map[string]any) {
	if s.Producer == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, s.Topic, fmt.Sprint(event["productID"]), event); err != nil {
		logging.FromContext(ctx).Warn("kafka_publish_failed", "topic", s.Topic, "error", err)
	}
}
