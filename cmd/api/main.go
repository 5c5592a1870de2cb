package main

import (
	"context"
	stderrors "errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"storefront/internal/adapter/api"
	"storefront/internal/adapter/api/handler"
	apimiddleware "storefront/internal/adapter/api/middleware"
	"storefront/internal/adapter/api/router"
	"storefront/internal/adapter/repository"
	domainrepo "storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/infrastructure/firebase"
	"storefront/internal/infrastructure/ratelimit"
	"storefront/internal/infrastructure/storage"
	"storefront/internal/usecase"
	"storefront/pkg/config"
	"storefront/pkg/logger"
)

type repositories struct {
	users      domainrepo.UserRepository
	categories domainrepo.CategoryRepository
	products   domainrepo.ProductRepository
	orders     domainrepo.OrderRepository
	store      handler.Pinger
}

func credentialsOption(cfg *config.Config) option.ClientOption {
	if cfg.FirebaseCredentialsJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		return option.WithCredentialsJSON([]byte(cfg.FirebaseCredentialsJSON))
	}
	if cfg.FirebaseCredentialsPath != "" {
		if _, err := os.Stat(cfg.FirebaseCredentialsPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", cfg.FirebaseCredentialsPath)
		}
		log.Printf("Using Firebase service account from file: %s", cfg.FirebaseCredentialsPath)
		return option.WithCredentialsFile(cfg.FirebaseCredentialsPath)
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Configure(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var clientOpts []option.ClientOption
	if opt := credentialsOption(cfg); opt != nil {
		clientOpts = append(clientOpts, opt)
	}

	var repos repositories
	var verifier service.TokenVerifier

	switch cfg.StoreDriver {
	case "firestore":
		firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, clientOpts...)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}

		authClient, err := firebaseApp.Auth(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase Auth: %v", err)
		}
		verifier = firebase.NewFirebaseAuthClient(authClient)

		firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, clientOpts...)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()

		repos = repositories{
			users:      repository.NewFirestoreUserRepository(firestoreClient),
			categories: repository.NewFirestoreCategoryRepository(firestoreClient),
			products:   repository.NewFirestoreProductRepository(firestoreClient),
			orders:     repository.NewFirestoreOrderRepository(firestoreClient),
			store:      repository.NewFirestoreStore(firestoreClient),
		}
	default:
		store, err := repository.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open SQLite store: %v", err)
		}
		defer store.Close()

		repos = repositories{
			users:      repository.NewSQLiteUserRepository(store),
			categories: repository.NewSQLiteCategoryRepository(store),
			products:   repository.NewSQLiteProductRepository(store),
			orders:     repository.NewSQLiteOrderRepository(store),
			store:      store,
		}
	}
	log.Printf("Using %s store", cfg.StoreDriver)

	var devIssuer *firebase.DevTokenIssuer
	if cfg.IsDevelopment() {
		devIssuer = firebase.NewDevTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTExpiry)*time.Second)
		if verifier == nil {
			log.Printf("Firebase Auth not configured, accepting development tokens")
			verifier = devIssuer
		}
	}
	if verifier == nil {
		log.Fatalf("No token verifier: use STORE_DRIVER=firestore or ENVIRONMENT=development")
	}

	var fileService service.FileUploadService
	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, clientOpts...)
		if err != nil {
			log.Fatalf("Failed to initialize Cloud Storage: %v", err)
		}
		defer storageClient.Close()
		fileService = storageClient
	}

	pricing := service.NewPricingService(service.PricingRules{
		ShippingFlat:          cfg.Checkout.ShippingFlat,
		FreeShippingThreshold: cfg.Checkout.FreeShippingThreshold,
		VATRate:               cfg.Checkout.VATRate,
	})

	userUseCase := usecase.NewUserUseCase(repos.users)
	categoryUseCase := usecase.NewCategoryUseCase(repos.categories)
	productUseCase := usecase.NewProductUseCase(repos.products, repos.categories, fileService)
	orderUseCase := usecase.NewOrderUseCase(repos.orders, repos.products, pricing)
	statsUseCase := usecase.NewStatsUseCase(repos.products, repos.orders, cfg.Checkout.LowStockThreshold)

	if cfg.SeedCatalogPath != "" {
		seedCatalog(ctx, cfg.SeedCatalogPath, usecase.NewCatalogSeeder(repos.products, productUseCase, categoryUseCase))
	}

	handler.Setup(userUseCase, categoryUseCase, productUseCase, orderUseCase, statsUseCase)
	handler.SetupHealthHandler(repos.store)
	if fileService != nil {
		handler.SetupFileHandler(productUseCase)
	}
	if devIssuer != nil {
		handler.SetupDevTokenHandler(devIssuer)
	}

	limiter := ratelimit.NewRateLimiter(cfg.RateLimitPerMinute)
	limiter.StartCleanupRoutine(ctx, 5*time.Minute, 10*time.Minute)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(apimiddleware.RateLimit(limiter, ratelimit.ActionAPI))

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(verifier, userUseCase)
	adminMiddleware := apimiddleware.NewAdminMiddleware(repos.users)

	router.Setup(e, authMiddleware, adminMiddleware, limiter)
	router.SetupDevRouter(e, cfg.Environment)

	go func() {
		log.Printf("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

func seedCatalog(ctx context.Context, path string, seeder *usecase.CatalogSeeder) {
	f, err := os.Open(path)
	if err != nil {
		log.Printf("Catalog seed skipped: %v", err)
		return
	}
	defer f.Close()

	n, err := seeder.Seed(ctx, f)
	if err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}
	if n > 0 {
		log.Printf("Seeded %d products from %s", n, path)
	}
}
