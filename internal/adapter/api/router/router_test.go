package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/adapter/api"
	"storefront/internal/adapter/api/handler"
	"storefront/internal/adapter/api/middleware"
	"storefront/internal/adapter/repository"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"
	"storefront/internal/infrastructure/firebase"
	"storefront/internal/infrastructure/ratelimit"
	"storefront/internal/search"
	"storefront/internal/storesync"
	"storefront/internal/usecase"
	"storefront/pkg/logger"
)

// newCatalogAPI serves the full catalog API over a sqlite store.
func newCatalogAPI(t *testing.T) *httptest.Server {
	t.Helper()
	logger.SetOutput(io.Discard)

	store, err := repository.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	userRepo := repository.NewSQLiteUserRepository(store)
	categoryRepo := repository.NewSQLiteCategoryRepository(store)
	productRepo := repository.NewSQLiteProductRepository(store)
	orderRepo := repository.NewSQLiteOrderRepository(store)

	pricing := service.NewPricingService(service.PricingRules{ShippingFlat: 5.99, FreeShippingThreshold: 50, VATRate: 0.2})
	userUseCase := usecase.NewUserUseCase(userRepo)
	productUseCase := usecase.NewProductUseCase(productRepo, categoryRepo, nil)

	handler.Setup(
		userUseCase,
		usecase.NewCategoryUseCase(categoryRepo),
		productUseCase,
		usecase.NewOrderUseCase(orderRepo, productRepo, pricing),
		usecase.NewStatsUseCase(productRepo, orderRepo, 5),
	)
	handler.SetupHealthHandler(store)
	handler.SetupFileHandler(productUseCase)
	issuer := firebase.NewDevTokenIssuer("test-secret", time.Hour)
	handler.SetupDevTokenHandler(issuer)

	e := echo.New()
	e.Validator = api.NewValidator()
	Setup(e,
		middleware.NewAuthMiddleware(issuer, userUseCase),
		middleware.NewAdminMiddleware(userRepo),
		ratelimit.NewRateLimiter(6000),
	)
	SetupDevRouter(e, "development")

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func devToken(t *testing.T, baseURL, uid, role string) string {
	t.Helper()
	body := `{"uid":"` + uid + `","email":"` + uid + `@example.com","role":"` + role + `"}`
	resp, err := http.Post(baseURL+"/_dev/token", echo.MIMEApplicationJSON, strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var env struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.NotEmpty(t, env.Data.Token)
	return env.Data.Token
}

func TestSynchronizerAgainstCatalogAPI(t *testing.T) {
	ctx := context.Background()
	srv := newCatalogAPI(t)
	token := devToken(t, srv.URL, "boss", entity.RoleAdmin)

	client := storesync.NewClient(storesync.WithBaseURL(srv.URL+"/v1/"), storesync.WithToken(token))
	store := storesync.NewSynchronizer(client, storesync.WithAdminScope(true))

	require.NoError(t, store.Refresh(ctx))
	assert.Equal(t, storesync.StateIdle, store.State())
	assert.Empty(t, store.Snapshot().Products)

	category, err := store.AddCategory(ctx, storesync.CategoryInput{Name: "Home & Living"})
	require.NoError(t, err)
	assert.Equal(t, "home-living", category.Slug)

	lamp, err := store.AddProduct(ctx, storesync.ProductInput{
		Name:        "Desk Lamp",
		Description: "Warm LED lamp",
		Category:    "home-living",
		Price:       30,
		Stock:       4,
	})
	require.NoError(t, err)
	require.Len(t, store.Snapshot().Products, 1)
	assert.Equal(t, 1, store.Snapshot().Stats.TotalProducts)

	price := 35.0
	_, err = store.UpdateProduct(ctx, lamp.ID, storesync.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 35.0, store.Snapshot().Products[0].Price)
	assert.Equal(t, "Desk Lamp", store.Snapshot().Products[0].Name)

	order, err := store.AddOrder(ctx, storesync.OrderInput{
		CustomerName:    "Ada",
		CustomerEmail:   "ada@example.com",
		ShippingAddress: "1 Loop Rd",
		Items:           []storesync.OrderLine{{ProductID: lamp.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, 70.0, order.Subtotal)
	assert.Equal(t, 0.0, order.Shipping)
	assert.Equal(t, 84.0, order.TotalAmount)

	snap := store.Snapshot()
	require.Len(t, snap.Orders, 1)
	assert.Equal(t, 2, snap.Products[0].Stock)
	assert.Equal(t, 1, snap.Stats.PendingOrders)

	_, err = store.UpdateOrderStatus(ctx, order.OrderID, entity.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, store.Snapshot().Orders[0].Status)

	_, err = store.UpdateProductStock(ctx, lamp.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Snapshot().Stats.LowStockProducts)

	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
}

func TestCatalogAPIGuardsAdminRoutes(t *testing.T) {
	ctx := context.Background()
	srv := newCatalogAPI(t)

	anonymous := storesync.NewClient(storesync.WithBaseURL(srv.URL + "/v1"))
	_, err := anonymous.CreateProduct(ctx, storesync.ProductInput{Name: "Lamp"})
	var apiErr *storesync.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)

	shopper := storesync.NewClient(storesync.WithBaseURL(srv.URL+"/v1"), storesync.WithToken(devToken(t, srv.URL, "shopper", entity.RoleCustomer)))
	_, err = shopper.ListOrders(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)

	products, err := anonymous.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStorefrontEdgeSearch(t *testing.T) {
	ctx := context.Background()
	srv := newCatalogAPI(t)
	token := devToken(t, srv.URL, "boss", entity.RoleAdmin)
	store := storesync.NewSynchronizer(storesync.NewClient(storesync.WithBaseURL(srv.URL+"/v1"), storesync.WithToken(token)))

	for _, p := range []storesync.ProductInput{
		{Name: "Desk Lamp", Description: "Warm LED lamp", Price: 30, Stock: 4},
		{Name: "Coffee Mug", Description: "Stoneware mug", Price: 12, Stock: 20},
	} {
		_, err := store.AddProduct(ctx, p)
		require.NoError(t, err)
	}

	handler.SetupStorefrontHandler(store)
	edge := echo.New()
	edge.Validator = api.NewValidator()
	SetupStorefrontRouter(edge, ratelimit.NewRateLimiter(6000))

	rec := httptest.NewRecorder()
	edge.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/search?q=lamp", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data struct {
			Items []search.ScoredProduct `json:"items"`
			Total int                    `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, 1, env.Data.Total)
	assert.Equal(t, "Desk Lamp", env.Data.Items[0].Name)

	rec = httptest.NewRecorder()
	edge.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/refresh", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
