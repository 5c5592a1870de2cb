package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

type OrderUseCase struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	pricing     *service.PricingService
}

func NewOrderUseCase(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	pricing *service.PricingService,
) *OrderUseCase {
	return &OrderUseCase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		pricing:     pricing,
	}
}

type OrderItemInput struct {
	ProductID string
	Quantity  int
}

type PlaceOrderInput struct {
	CustomerName    string
	CustomerEmail   string
	ShippingAddress string
	Items           []OrderItemInput
}

func newOrderID() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}

// mergeItems folds repeated product lines into one and keeps first-seen order.
func mergeItems(items []OrderItemInput) ([]OrderItemInput, error) {
	merged := make([]OrderItemInput, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		if item.ProductID == "" {
			return nil, errors.BadRequest("Order item is missing product_id", nil)
		}
		if item.Quantity <= 0 {
			return nil, errors.BadRequest("Order item quantity must be positive", nil)
		}
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

// PlaceOrder prices the cart against current product prices, takes the stock
// and stores a pending order. Stock already taken is put back if a later line
// fails.
func (uc *OrderUseCase) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*entity.Order, error) {
	if len(input.Items) == 0 {
		return nil, errors.BadRequest("Order must contain at least one item", nil)
	}

	items, err := mergeItems(input.Items)
	if err != nil {
		return nil, err
	}

	orderItems := make([]entity.OrderItem, 0, len(items))
	lines := make([]service.LineItem, 0, len(items))
	for _, item := range items {
		product, err := uc.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product.Status != entity.ProductStatusActive {
			return nil, errors.BadRequest(fmt.Sprintf("Product %s is not available", product.Name), nil)
		}
		if !product.InStock(item.Quantity) {
			return nil, errors.Conflict(fmt.Sprintf("Insufficient stock for %s", product.Name))
		}

		orderItems = append(orderItems, entity.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
		})
		lines = append(lines, service.LineItem{UnitPrice: product.Price, Quantity: item.Quantity})
	}

	taken := make([]entity.OrderItem, 0, len(orderItems))
	for _, item := range orderItems {
		if err := uc.productRepo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			uc.restoreStock(ctx, taken)
			return nil, err
		}
		taken = append(taken, item)
	}

	quote := uc.pricing.Quote(lines)
	order := &entity.Order{
		OrderID:         newOrderID(),
		CustomerName:    strings.TrimSpace(input.CustomerName),
		CustomerEmail:   strings.TrimSpace(input.CustomerEmail),
		ShippingAddress: input.ShippingAddress,
		Items:           orderItems,
		Subtotal:        quote.Subtotal,
		Shipping:        quote.Shipping,
		VAT:             quote.VAT,
		TotalAmount:     quote.Total,
		Status:          entity.OrderStatusPending,
	}

	if err := uc.orderRepo.Create(ctx, order); err != nil {
		uc.restoreStock(ctx, taken)
		return nil, err
	}

	logger.Info("Order placed: order_id=%s total=%.2f items=%d", order.OrderID, order.TotalAmount, len(order.Items))
	return order, nil
}

// restoreStock gives back what an unfinished checkout took. It outlives a
// cancelled request.
func (uc *OrderUseCase) restoreStock(ctx context.Context, items []entity.OrderItem) {
	ctx = context.WithoutCancel(ctx)
	for _, item := range items {
		if err := uc.productRepo.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			logger.Error("Failed to restore stock for %s: %v", item.ProductID, err)
		}
	}
}

func (uc *OrderUseCase) ListOrders(ctx context.Context, status string) ([]*entity.Order, error) {
	if status != "" && !entity.OrderStatus(status).Valid() {
		return nil, errors.BadRequest("Invalid order status", nil)
	}
	return uc.orderRepo.List(ctx, entity.OrderStatus(status))
}

// GetOrder accepts either the public ORD- identifier or the storage id.
func (uc *OrderUseCase) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	order, err := uc.orderRepo.GetByOrderID(ctx, id)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}
	return uc.orderRepo.GetByID(ctx, id)
}

func (uc *OrderUseCase) UpdateOrderStatus(ctx context.Context, id string, status entity.OrderStatus) (*entity.Order, error) {
	if !status.Valid() {
		return nil, errors.BadRequest("Invalid order status", nil)
	}

	order, err := uc.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if !entity.CanTransition(order.Status, status) {
		return nil, errors.BadRequest(fmt.Sprintf("Cannot move order from %s to %s", order.Status, status), nil)
	}

	if err := uc.orderRepo.UpdateStatus(ctx, order.ID, status); err != nil {
		return nil, err
	}

	logger.Info("Order status updated: order_id=%s %s -> %s", order.OrderID, order.Status, status)
	order.Status = status
	return order, nil
}
