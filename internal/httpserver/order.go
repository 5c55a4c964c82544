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

type OrderHTTP struct {
	Checkout *service.CheckoutService
	Svc      *service.OrderService
}

func (h *OrderHTTP) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.Checkout.Checkout(ctx, userID, req)
	if err != nil {
		he := httpError(err)
		l.Warn("checkout_error", "status", he.Code, "user_id", userID, "error", err)
		return he
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "order": order})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_order_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, err := h.Svc.GetOrder(ctx, userID, middleware.IsAdmin(c), orderID)
	if err != nil {
		he := httpError(err)
		l.Warn("get_order_error", "status", he.Code, "error", err)
		return he
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "order": order})
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), 0)

	result, err := h.Svc.ListOrders(ctx, userID, page, size)
	if err != nil {
		he := httpError(err)
		l.Error("list_orders_error", "status", he.Code, "error", err)
		return he
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"orders":     result.Orders,
		"pagination": result.Pagination,
	})
}

func (h *OrderHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel_order")

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("cancel_order_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, err := h.Svc.Cancel(ctx, userID, middleware.IsAdmin(c), orderID)
	if err != nil {
		he := httpError(err)
		l.Warn("cancel_order_error", "status", he.Code, "order_id", orderID, "error", err)
		return he
	}

	l.Info("cancel_order_success", "order_id", orderID)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "order": order})
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.Svc.UpdateStatus(ctx, orderID, req.Status)
	if err != nil {
		he := httpError(err)
		l.Warn("update_status_error", "status", he.Code, "order_id", orderID, "error", err)
		return he
	}

	l.Info("update_status_success", "order_id", orderID, "new_status", req.Status)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "order": order})
}
