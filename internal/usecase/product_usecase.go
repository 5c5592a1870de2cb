package usecase

import (
	"context"
	"io"
	"strings"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

type ProductUseCase struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	fileService  service.FileUploadService
}

func NewProductUseCase(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	fileService service.FileUploadService,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		fileService:  fileService,
	}
}

type CreateProductInput struct {
	Name        string
	Description string
	Category    string
	Price       float64
	Stock       int
	Image       string
	Rating      float64
	Reviews     int
}

// UpdateProductInput carries only the fields being changed.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Category    *string
	Price       *float64
	Stock       *int
	Image       *string
	Rating      *float64
	Reviews     *int
}

func (uc *ProductUseCase) validateCategory(ctx context.Context, slug string) error {
	if slug == "" {
		return nil
	}
	if _, err := uc.categoryRepo.GetBySlug(ctx, slug); err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return errors.BadRequest("Invalid category", err)
		}
		return err
	}
	return nil
}

func (uc *ProductUseCase) CreateProduct(ctx context.Context, input CreateProductInput) (*entity.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.BadRequest("Product name is required", nil)
	}
	if input.Price < 0 || input.Stock < 0 || input.Reviews < 0 {
		return nil, errors.BadRequest("Price, stock and reviews must not be negative", nil)
	}
	if input.Rating < 0 || input.Rating > 5 {
		return nil, errors.BadRequest("Rating must be between 0 and 5", nil)
	}
	if err := uc.validateCategory(ctx, input.Category); err != nil {
		return nil, err
	}

	product := &entity.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		Stock:       input.Stock,
		Image:       input.Image,
		Rating:      input.Rating,
		Reviews:     input.Reviews,
		Status:      entity.ProductStatusActive,
	}

	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	logger.Info("Product created: id=%s name=%q", product.ID, product.Name)
	return product, nil
}

func (uc *ProductUseCase) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, errors.BadRequest("Product name is required", nil)
		}
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil && *input.Category != product.Category {
		if err := uc.validateCategory(ctx, *input.Category); err != nil {
			return nil, err
		}
		product.Category = *input.Category
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, errors.BadRequest("Price must not be negative", nil)
		}
		product.Price = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, errors.BadRequest("Stock must not be negative", nil)
		}
		product.Stock = *input.Stock
	}
	if input.Image != nil {
		product.Image = *input.Image
	}
	if input.Rating != nil {
		if *input.Rating < 0 || *input.Rating > 5 {
			return nil, errors.BadRequest("Rating must be between 0 and 5", nil)
		}
		product.Rating = *input.Rating
	}
	if input.Reviews != nil {
		if *input.Reviews < 0 {
			return nil, errors.BadRequest("Reviews must not be negative", nil)
		}
		product.Reviews = *input.Reviews
	}

	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (uc *ProductUseCase) UpdateProductStock(ctx context.Context, id string, stock int) (*entity.Product, error) {
	if stock < 0 {
		return nil, errors.BadRequest("Stock must not be negative", nil)
	}
	if err := uc.productRepo.UpdateStock(ctx, id, stock); err != nil {
		return nil, err
	}
	return uc.productRepo.GetByID(ctx, id)
}

func (uc *ProductUseCase) GetProductByID(ctx context.Context, id string) (*entity.Product, error) {
	return uc.productRepo.GetByID(ctx, id)
}

func (uc *ProductUseCase) ListProducts(ctx context.Context, category string) ([]*entity.Product, error) {
	return uc.productRepo.List(ctx, repository.ProductFilter{
		Category: category,
		Status:   entity.ProductStatusActive,
	})
}

func (uc *ProductUseCase) DeleteProduct(ctx context.Context, id string) error {
	if _, err := uc.productRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return uc.productRepo.SoftDelete(ctx, id)
}

// UploadProductImage stores the image and points the product at it. The old
// image is removed best-effort.
func (uc *ProductUseCase) UploadProductImage(ctx context.Context, id string, file io.Reader, contentType string) (*entity.Product, error) {
	if uc.fileService == nil {
		return nil, errors.ServiceUnavailable("Image storage is not configured", nil)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errors.BadRequest("Only image uploads are allowed", nil)
	}

	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := uc.fileService.UploadFile(ctx, file, contentType, "products/"+product.ID)
	if err != nil {
		return nil, errors.Internal("Failed to upload image", err)
	}

	previous := product.Image
	product.Image = url
	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	if previous != "" && previous != url {
		if err := uc.fileService.DeleteFile(ctx, previous); err != nil {
			logger.Warn("Failed to delete previous image %s: %v", previous, err)
		}
	}

	return product, nil
}
