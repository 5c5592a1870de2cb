package repository

import (
	"context"

	"storefront/internal/domain/entity"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Category, error)
	List(ctx context.Context, status string) ([]*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
}
