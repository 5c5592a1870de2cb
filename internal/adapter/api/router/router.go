package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/middleware"
	"storefront/internal/infrastructure/ratelimit"
)

// Setup registers the catalog API routes. Handlers must already be set up.
func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware, limiter *ratelimit.RateLimiter) {
	SetupUserRouter(e, authMiddleware)
	SetupCategoryRouter(e, authMiddleware, adminMiddleware)
	SetupProductRouter(e, authMiddleware, adminMiddleware)
	SetupFileRouter(e, authMiddleware, adminMiddleware)
	SetupOrderRouter(e, authMiddleware, adminMiddleware, limiter)
	SetupAdminRouter(e, authMiddleware, adminMiddleware)
	SetupHealthRouter(e)
}
