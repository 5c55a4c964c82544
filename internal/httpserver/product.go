package httpserver

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nkarpov/sneakershop/internal/logging"
	"github.com/nkarpov/sneakershop/internal/service"
	"github.com/nkarpov/sneakershop/internal/transport"
)

type ProductHTTP struct {
	Svc *service.CatalogService
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_product_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		he := httpError(err)
		l.Warn("get_product_error", "status", he.Code, "error", err)
		return he
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "product": product})
}

func (h *ProductHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list_products")

	category := c.QueryParam("category")
	sort := c.QueryParam("sort")
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), 0)

	result, err := h.Svc.ListProducts(ctx, category, sort, page, size)
	if err != nil {
		he := httpError(err)
		l.Error("list_products_error", "status", he.Code, "error", err)
		return he
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"products":   result.Products,
		"pagination": result.Pagination,
	})
}

func (h *ProductHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list_categories")

	categories, err := h.Svc.ListCategories(ctx)
	if err != nil {
		he := httpError(err)
		l.Error("list_categories_error", "status", he.Code, "error", err)
		return he
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "categories": categories})
}

func (h *ProductHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	q := c.QueryParam("q")
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), 0)

	result, err := h.Svc.SearchProducts(ctx, q, page, size)
	if err != nil {
		he := httpError(err)
		l.Warn("search_error", "status", he.Code, "error", err)
		return he
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"products":   result.Products,
		"pagination": result.Pagination,
	})
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	product, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		he := httpError(err)
		l.Warn("create_product_error", "status", he.Code, "error", err)
		return he
	}

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "product": product})
}

func (h *ProductHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("patch_product_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_product_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	product, err := h.Svc.PatchProduct(ctx, id, req)
	if err != nil {
		he := httpError(err)
		l.Warn("patch_product_error", "status", he.Code, "error", err)
		return he
	}

	l.Info("patch_product_success", "product_id", product.ID)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "product": product})
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("delete_product_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		he := httpError(err)
		l.Warn("delete_product_error", "status", he.Code, "error", err)
		return he
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}
