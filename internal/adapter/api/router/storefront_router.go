package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/handler"
	"storefront/internal/adapter/api/middleware"
	"storefront/internal/infrastructure/ratelimit"
)

// SetupStorefrontRouter registers the shopper-facing edge routes.
func SetupStorefrontRouter(e *echo.Echo, limiter *ratelimit.RateLimiter) {
	storefrontHandler := handler.GetStorefrontHandler()

	v1 := e.Group("/v1")
	v1.GET("/search", storefrontHandler.Search)
	v1.GET("/snapshot", storefrontHandler.GetSnapshot)
	v1.POST("/refresh", storefrontHandler.Refresh)
	v1.POST("/checkout", storefrontHandler.Checkout, middleware.RateLimit(limiter, ratelimit.ActionCheckout))

	SetupHealthRouter(e)
}
