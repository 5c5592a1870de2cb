package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/handler"
	"storefront/internal/adapter/api/middleware"
)

func SetupProductRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	productHandler := handler.GetProductHandler()

	products := e.Group("/v1/products")
	products.GET("", productHandler.ListProducts)
	products.GET("/:id", productHandler.GetProduct)

	admin := e.Group("/v1/products")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)
	admin.POST("", productHandler.CreateProduct)
	admin.PUT("/:id", productHandler.ReplaceProduct)
	admin.PATCH("/:id", productHandler.PatchProduct)
	admin.PATCH("/:id/stock", productHandler.UpdateStock)
	admin.DELETE("/:id", productHandler.DeleteProduct)
}
