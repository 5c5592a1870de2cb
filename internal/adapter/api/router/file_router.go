package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/handler"
	"storefront/internal/adapter/api/middleware"
)

func SetupFileRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	fileHandler := handler.GetFileHandler()
	if fileHandler == nil {
		return
	}

	images := e.Group("/v1/products")
	images.Use(authMiddleware.Authenticate)
	images.Use(adminMiddleware.AdminOnly)
	images.POST("/:id/image", fileHandler.UploadProductImage)
}
