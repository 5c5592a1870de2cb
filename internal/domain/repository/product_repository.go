package repository

import (
	"context"

	"storefront/internal/domain/entity"
)

// ProductFilter narrows List. Zero values mean "any".
type ProductFilter struct {
	Category string
	Status   string
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdateStock(ctx context.Context, id string, stock int) error
	// DecrementStock takes qty units atomically and returns a CONFLICT
	// AppError when fewer than qty are left.
	DecrementStock(ctx context.Context, id string, qty int) error
	// IncrementStock gives qty units back atomically.
	IncrementStock(ctx context.Context, id string, qty int) error
	SoftDelete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
