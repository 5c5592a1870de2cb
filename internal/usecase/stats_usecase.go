package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
)

type StatsUseCase struct {
	productRepo       repository.ProductRepository
	orderRepo         repository.OrderRepository
	lowStockThreshold int
}

func NewStatsUseCase(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	lowStockThreshold int,
) *StatsUseCase {
	return &StatsUseCase{
		productRepo:       productRepo,
		orderRepo:         orderRepo,
		lowStockThreshold: lowStockThreshold,
	}
}

func (uc *StatsUseCase) GetStats(ctx context.Context) (*entity.Stats, error) {
	products, err := uc.productRepo.List(ctx, repository.ProductFilter{Status: entity.ProductStatusActive})
	if err != nil {
		return nil, err
	}

	orders, err := uc.orderRepo.List(ctx, "")
	if err != nil {
		return nil, err
	}

	stats := &entity.Stats{
		TotalProducts:  len(products),
		TotalOrders:    len(orders),
		OrdersByStatus: make(map[string]int, len(entity.OrderStatuses)),
	}
	for _, status := range entity.OrderStatuses {
		stats.OrdersByStatus[string(status)] = 0
	}

	for _, product := range products {
		if product.Stock < uc.lowStockThreshold {
			stats.LowStockProducts++
		}
	}

	revenue := decimal.Zero
	for _, order := range orders {
		stats.OrdersByStatus[string(order.Status)]++
		if order.Status == entity.OrderStatusPending {
			stats.PendingOrders++
		}
		if order.Status.CountsTowardRevenue() {
			revenue = revenue.Add(decimal.NewFromFloat(order.TotalAmount))
		}
	}
	stats.TotalRevenue = revenue.Round(2).InexactFloat64()

	return stats, nil
}
