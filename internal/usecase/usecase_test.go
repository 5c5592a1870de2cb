package usecase

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/adapter/repository"
	"storefront/internal/domain/entity"
	domainrepo "storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

type fixture struct {
	products   *ProductUseCase
	categories *CategoryUseCase
	orders     *OrderUseCase
	stats      *StatsUseCase
	users      *UserUseCase
	seeder     *CatalogSeeder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger.SetOutput(io.Discard)

	store, err := repository.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	productRepo := repository.NewSQLiteProductRepository(store)
	categoryRepo := repository.NewSQLiteCategoryRepository(store)
	orderRepo := repository.NewSQLiteOrderRepository(store)
	userRepo := repository.NewSQLiteUserRepository(store)

	pricing := service.NewPricingService(service.PricingRules{
		ShippingFlat:          5.99,
		FreeShippingThreshold: 50,
		VATRate:               0.2,
	})

	f := &fixture{
		products:   NewProductUseCase(productRepo, categoryRepo, nil),
		categories: NewCategoryUseCase(categoryRepo),
		orders:     NewOrderUseCase(orderRepo, productRepo, pricing),
		stats:      NewStatsUseCase(productRepo, orderRepo, 5),
		users:      NewUserUseCase(userRepo),
	}
	f.seeder = NewCatalogSeeder(productRepo, f.products, f.categories)
	return f
}

func (f *fixture) product(t *testing.T, name string, price float64, stock int) *entity.Product {
	t.Helper()
	p, err := f.products.CreateProduct(context.Background(), CreateProductInput{
		Name:  name,
		Price: price,
		Stock: stock,
	})
	require.NoError(t, err)
	return p
}

func TestCreateProductRejectsUnknownCategory(t *testing.T) {
	f := newFixture(t)

	_, err := f.products.CreateProduct(context.Background(), CreateProductInput{
		Name:     "Lamp",
		Category: "lighting",
		Price:    10,
	})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}

func TestCreateProductWithCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.categories.CreateCategory(ctx, CreateCategoryInput{Name: "Home & Living"})
	require.NoError(t, err)

	p, err := f.products.CreateProduct(ctx, CreateProductInput{Name: "Candle Set", Category: "home-living", Price: 34.99, Stock: 3})
	require.NoError(t, err)
	assert.Equal(t, entity.ProductStatusActive, p.Status)

	listed, err := f.products.ListProducts(ctx, "home-living")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, p.ID, listed[0].ID)
}

func TestUpdateProductChangesOnlyGivenFields(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Headphones", 99, 10)

	price := 79.5
	updated, err := f.products.UpdateProduct(context.Background(), p.ID, UpdateProductInput{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 79.5, updated.Price)
	assert.Equal(t, "Headphones", updated.Name)
	assert.Equal(t, 10, updated.Stock)

	bad := 6.0
	_, err = f.products.UpdateProduct(context.Background(), p.ID, UpdateProductInput{Rating: &bad})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}

func TestUpdateProductStock(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Headphones", 99, 10)

	updated, err := f.products.UpdateProductStock(context.Background(), p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Stock)

	_, err = f.products.UpdateProductStock(context.Background(), p.ID, -1)
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}

func TestDeleteProductHidesItFromList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Headphones", 99, 10)

	require.NoError(t, f.products.DeleteProduct(ctx, p.ID))

	listed, err := f.products.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestUploadProductImageWithoutStorage(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Headphones", 99, 10)

	_, err := f.products.UploadProductImage(context.Background(), p.ID, strings.NewReader("x"), "image/png")
	assert.True(t, errors.Is(err, errors.CodeServiceUnavailable))
}

func TestCreateCategoryConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.categories.CreateCategory(ctx, CreateCategoryInput{Name: "Electronics"})
	require.NoError(t, err)
	assert.Equal(t, "electronics", c.Slug)
	assert.Equal(t, "active", c.Status)

	_, err = f.categories.CreateCategory(ctx, CreateCategoryInput{Name: "electronics"})
	assert.True(t, errors.Is(err, errors.CodeConflict))
}

func TestUpdateCategoryKeepsSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.categories.CreateCategory(ctx, CreateCategoryInput{Name: "Electronics"})
	require.NoError(t, err)

	updated, err := f.categories.UpdateCategory(ctx, c.ID, CreateCategoryInput{Name: "Gadgets", Description: "Things"})
	require.NoError(t, err)
	assert.Equal(t, "Gadgets", updated.Name)
	assert.Equal(t, "electronics", updated.Slug)
}

func TestPlaceOrderPricesAndTakesStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	headphones := f.product(t, "Headphones", 12.5, 10)

	order, err := f.orders.PlaceOrder(ctx, PlaceOrderInput{
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Items: []OrderItemInput{
			{ProductID: headphones.ID, Quantity: 1},
			{ProductID: headphones.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Regexp(t, `^ORD-[0-9A-F]{8}$`, order.OrderID)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, 25.0, order.Subtotal)
	assert.Equal(t, 5.99, order.Shipping)
	assert.Equal(t, 5.0, order.VAT)
	assert.Equal(t, 35.99, order.TotalAmount)

	after, err := f.products.GetProductByID(ctx, headphones.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, after.Stock)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lamp := f.product(t, "Lamp", 20, 5)
	candle := f.product(t, "Candle", 10, 1)

	_, err := f.orders.PlaceOrder(ctx, PlaceOrderInput{
		Items: []OrderItemInput{
			{ProductID: lamp.ID, Quantity: 2},
			{ProductID: candle.ID, Quantity: 3},
		},
	})
	assert.True(t, errors.Is(err, errors.CodeConflict))

	after, err := f.products.GetProductByID(ctx, lamp.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, after.Stock)
}

// brokenOrderRepo fails every Create and cancels the caller's context first.
type brokenOrderRepo struct {
	domainrepo.OrderRepository
	cancel context.CancelFunc
}

func (r brokenOrderRepo) Create(ctx context.Context, order *entity.Order) error {
	r.cancel()
	return errors.Internal("Failed to create order", ctx.Err())
}

func TestPlaceOrderGivesStockBackWhenSaveFails(t *testing.T) {
	logger.SetOutput(io.Discard)
	store, err := repository.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	productRepo := repository.NewSQLiteProductRepository(store)
	products := NewProductUseCase(productRepo, repository.NewSQLiteCategoryRepository(store), nil)
	lamp, err := products.CreateProduct(context.Background(), CreateProductInput{Name: "Lamp", Price: 20, Stock: 5})
	require.NoError(t, err)
	candle, err := products.CreateProduct(context.Background(), CreateProductInput{Name: "Candle", Price: 10, Stock: 2})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	orders := NewOrderUseCase(
		brokenOrderRepo{OrderRepository: repository.NewSQLiteOrderRepository(store), cancel: cancel},
		productRepo,
		service.NewPricingService(service.PricingRules{ShippingFlat: 5.99, FreeShippingThreshold: 50, VATRate: 0.2}),
	)

	_, err = orders.PlaceOrder(ctx, PlaceOrderInput{
		Items: []OrderItemInput{
			{ProductID: lamp.ID, Quantity: 2},
			{ProductID: candle.ID, Quantity: 2},
		},
	})
	assert.True(t, errors.Is(err, errors.CodeInternal))

	after, err := products.GetProductByID(context.Background(), lamp.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, after.Stock)
	after, err = products.GetProductByID(context.Background(), candle.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, after.Stock)
}

func TestPlaceOrderValidatesItems(t *testing.T) {
	f := newFixture(t)

	_, err := f.orders.PlaceOrder(context.Background(), PlaceOrderInput{})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	_, err = f.orders.PlaceOrder(context.Background(), PlaceOrderInput{
		Items: []OrderItemInput{{ProductID: "x", Quantity: 0}},
	})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}

func TestUpdateOrderStatusByPublicID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Lamp", 20, 5)

	order, err := f.orders.PlaceOrder(ctx, PlaceOrderInput{Items: []OrderItemInput{{ProductID: p.ID, Quantity: 1}}})
	require.NoError(t, err)

	updated, err := f.orders.UpdateOrderStatus(ctx, order.OrderID, entity.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusShipped, updated.Status)

	// any status may follow any other
	updated, err = f.orders.UpdateOrderStatus(ctx, order.ID, entity.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, updated.Status)

	_, err = f.orders.UpdateOrderStatus(ctx, order.OrderID, "lost")
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	_, err = f.orders.UpdateOrderStatus(ctx, "ORD-MISSING", entity.OrderStatusShipped)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestGetStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lamp := f.product(t, "Lamp", 20, 10)
	f.product(t, "Candle", 10, 2)

	first, err := f.orders.PlaceOrder(ctx, PlaceOrderInput{Items: []OrderItemInput{{ProductID: lamp.ID, Quantity: 1}}})
	require.NoError(t, err)
	second, err := f.orders.PlaceOrder(ctx, PlaceOrderInput{Items: []OrderItemInput{{ProductID: lamp.ID, Quantity: 3}}})
	require.NoError(t, err)
	_, err = f.orders.UpdateOrderStatus(ctx, second.OrderID, entity.OrderStatusCancelled)
	require.NoError(t, err)

	stats, err := f.stats.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalProducts)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.Equal(t, 1, stats.LowStockProducts)
	assert.Equal(t, first.TotalAmount, stats.TotalRevenue)
	assert.Equal(t, 1, stats.OrdersByStatus["cancelled"])
	assert.Equal(t, 0, stats.OrdersByStatus["delivered"])
}

func TestEnsureUserProvisionsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.users.EnsureUser(ctx, "uid-1", "a@example.com", "superuser")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleCustomer, user.Role)

	again, err := f.users.EnsureUser(ctx, "uid-1", "a@example.com", entity.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleCustomer, again.Role)
}

const seedYAML = `
categories:
  - name: Electronics
  - name: Home & Living
products:
  - name: iPhone 15
    category: electronics
    price: 1299.99
    stock: 10
  - name: Candle Set
    category: home-living
    price: 34.99
    stock: 40
`

func TestSeedCatalogOnlyWhenEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.seeder.Seed(ctx, strings.NewReader(seedYAML))
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = f.seeder.Seed(ctx, strings.NewReader(seedYAML))
	require.NoError(t, err)
	assert.Zero(t, created)

	categories, err := f.categories.ListCategories(ctx, "")
	require.NoError(t, err)
	assert.Len(t, categories, 2)
}
