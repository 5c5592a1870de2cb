package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"storefront/internal/usecase"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
	"storefront/pkg/response"
)

const maxImageSize = 5 * 1024 * 1024

type FileHandler struct {
	productUseCase *usecase.ProductUseCase
	maxFileSize    int64
}

var fileHandler *FileHandler

func NewFileHandler(productUseCase *usecase.ProductUseCase) *FileHandler {
	return &FileHandler{
		productUseCase: productUseCase,
		maxFileSize:    maxImageSize,
	}
}

func SetupFileHandler(productUseCase *usecase.ProductUseCase) {
	fileHandler = NewFileHandler(productUseCase)
}

func GetFileHandler() *FileHandler {
	return fileHandler
}

// UploadProductImage stores the multipart "file" field and points the
// product's image at it.
func (h *FileHandler) UploadProductImage(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("Missing or invalid file", err))
	}

	logger.Debug("Received image: %s, size: %d bytes, type: %s", file.Filename, file.Size, file.Header.Get("Content-Type"))

	if file.Size > h.maxFileSize {
		return response.Error(c, errors.BadRequest(fmt.Sprintf("File size exceeds maximum allowed (%dMB)", h.maxFileSize/(1024*1024)), nil))
	}

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Failed to read file", err))
	}
	defer src.Close()

	product, err := h.productUseCase.UploadProductImage(c.Request().Context(), c.Param("id"), src, file.Header.Get("Content-Type"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, product)
}
