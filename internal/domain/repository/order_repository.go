package repository

import (
	"context"

	"storefront/internal/domain/entity"
)

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetByOrderID(ctx context.Context, orderID string) (*entity.Order, error)
	List(ctx context.Context, status entity.OrderStatus) ([]*entity.Order, error)
	UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) error
}
