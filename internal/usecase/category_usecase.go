package usecase

import (
	"context"
	"strings"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
)

type CategoryUseCase struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryUseCase(categoryRepo repository.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{
		categoryRepo: categoryRepo,
	}
}

type CreateCategoryInput struct {
	Name        string
	Description string
	Status      string
}

func (uc *CategoryUseCase) CreateCategory(ctx context.Context, input CreateCategoryInput) (*entity.Category, error) {
	slug := entity.Slugify(input.Name)
	if slug == "" {
		return nil, errors.BadRequest("Category name is required", nil)
	}

	if existing, err := uc.categoryRepo.GetBySlug(ctx, slug); err == nil && existing != nil {
		return nil, errors.Conflict("Category with this name already exists")
	}

	status := input.Status
	if status == "" {
		status = "active"
	}

	category := &entity.Category{
		Name:        strings.TrimSpace(input.Name),
		Slug:        slug,
		Description: input.Description,
		Status:      status,
	}

	if err := uc.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (uc *CategoryUseCase) GetCategoryByID(ctx context.Context, id string) (*entity.Category, error) {
	return uc.categoryRepo.GetByID(ctx, id)
}

func (uc *CategoryUseCase) ListCategories(ctx context.Context, status string) ([]*entity.Category, error) {
	return uc.categoryRepo.List(ctx, status)
}

// UpdateCategory renames a category. The slug is kept so products that
// reference it stay attached.
func (uc *CategoryUseCase) UpdateCategory(ctx context.Context, id string, input CreateCategoryInput) (*entity.Category, error) {
	category, err := uc.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		category.Name = name
	}
	category.Description = input.Description
	if input.Status != "" {
		category.Status = input.Status
	}

	if err := uc.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}
