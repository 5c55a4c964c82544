package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nkarpov/sneakershop/internal/repo"
	"github.com/nkarpov/sneakershop/internal/service"
)

// httpError maps service/repo errors to the user-facing taxonomy:
// validation 400, payment-integrity 402, not-found 404, inventory and
// state conflicts 409, everything else 500 without leaking internals.
func httpError(err error) *echo.HTTPError {
	var stockErr *repo.StockError
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPaymentSignature):
		return echo.NewHTTPError(http.StatusPaymentRequired, "payment rejected: signature mismatch")
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.As(err, &stockErr):
		return echo.NewHTTPError(http.StatusConflict,
			fmt.Sprintf("out of stock for size %s of product %s", stockErr.Size, stockErr.ProductID))
	case errors.Is(err, repo.ErrInsufficientStock):
		return echo.NewHTTPError(http.StatusConflict, "out of stock")
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

// errorHandler renders every error in the response envelope:
// {"success": false, "message": ...}.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	he, ok := err.(*echo.HTTPError)
	if !ok {
		he = echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(he.Code)
		return
	}
	_ = c.JSON(he.Code, echo.Map{"success": false, "message": he.Message})
}
