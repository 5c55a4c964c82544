package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/nkarpov/sneakershop/internal/middleware"
)

type Deps struct {
	ProductHandler *ProductHTTP
	CartHandler    *CartHTTP
	OrderHandler   *OrderHTTP
	JWTSecret      []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = NewValidator()
	e.HTTPErrorHandler = errorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.ListProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)

	v1.GET("/categories", d.ProductHandler.ListCategories)
	v1.GET("/search", d.ProductHandler.Search)

	auth := middleware.RequireUser(d.JWTSecret)

	cart := v1.Group("/cart", auth)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddItem)
	cart.PATCH("/:id", d.CartHandler.UpdateItem)
	cart.DELETE("/:id", d.CartHandler.RemoveItem)
	cart.DELETE("", d.CartHandler.Clear)

	orders := v1.Group("/orders", auth)
	orders.POST("/checkout", d.OrderHandler.PlaceOrder)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.PUT("/:id/cancel", d.OrderHandler.CancelOrder)

	admin := v1.Group("/admin", auth, middleware.AdminOnly())
	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)
	admin.PATCH("/orders/:id/status", d.OrderHandler.UpdateStatus)
}
