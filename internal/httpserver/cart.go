package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nkarpov/sneakershop/internal/logging"
	"github.com/nkarpov/sneakershop/internal/middleware"
	"github.com/nkarpov/sneakershop/internal/service"
	"github.com/nkarpov/sneakershop/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_cart")

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	cart, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		he := httpError(err)
		l.Error("get_cart_error", "status", he.Code, "error", err)
		return he
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "cart": cart})
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req transport.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_item_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	cart, err := h.Svc.AddItem(ctx, userID, req.ProductID, req.Size, req.Quantity)
	if err != nil {
		he := httpError(err)
		l.Warn("add_item_error", "status", he.Code, "error", err)
		return he
	}

	l.Info("add_item_success", "user_id", userID, "product_id", req.ProductID, "size", req.Size)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "cart": cart})
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	lineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("update_item_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid line id")
	}

	var req transport.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_item_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	cart, err := h.Svc.UpdateQuantity(ctx, userID, lineID, req.Quantity)
	if err != nil {
		he := httpError(err)
		l.Warn("update_item_error", "status", he.Code, "error", err)
		return he
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "cart": cart})
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	lineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("remove_item_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid line id")
	}

	cart, err := h.Svc.RemoveLine(ctx, userID, lineID)
	if err != nil {
		he := httpError(err)
		l.Warn("remove_item_error", "status", he.Code, "error", err)
		return he
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "cart": cart})
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	cart, err := h.Svc.Clear(ctx, userID)
	if err != nil {
		he := httpError(err)
		l.Error("clear_cart_error", "status", he.Code, "error", err)
		return he
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "cart": cart})
}
