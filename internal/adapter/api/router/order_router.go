package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/handler"
	"storefront/internal/adapter/api/middleware"
	"storefront/internal/infrastructure/ratelimit"
)

func SetupOrderRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware, limiter *ratelimit.RateLimiter) {
	orderHandler := handler.GetOrderHandler()

	e.POST("/v1/orders", orderHandler.PlaceOrder, middleware.RateLimit(limiter, ratelimit.ActionCheckout))

	admin := e.Group("/v1")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)
	admin.GET("/orders", orderHandler.ListOrders)
	admin.GET("/orders/:id", orderHandler.GetOrder)
	admin.POST("/update-order-status", orderHandler.UpdateOrderStatus)
}
