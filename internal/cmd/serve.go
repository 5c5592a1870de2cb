package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"storefront/internal/adapter/api"
	"storefront/internal/adapter/api/handler"
	"storefront/internal/adapter/api/router"
	"storefront/internal/infrastructure/ratelimit"
	"storefront/internal/infrastructure/websocket"
	"storefront/internal/storesync"
	"storefront/pkg/logger"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the storefront edge server",
	Long: `serve starts the store synchronizer and serves search, the current
snapshot, checkout and the /ws live-update channel until interrupted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "8081", "Port for the storefront edge")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wsManager := websocket.NewManager(nil)
	store := newSynchronizer(storesync.WithNotifier(storesync.MultiNotifier{
		storesync.LogNotifier{},
		wsManager,
	}))
	wsManager.SetRefresher(store)
	wsManager.Start(ctx)

	unsubscribe := store.Subscribe(wsManager.PublishSnapshot)
	defer unsubscribe()

	if err := store.Start(ctx); err != nil {
		return fmt.Errorf("failed to start synchronizer: %w", err)
	}
	defer store.Stop()

	limiter := ratelimit.NewRateLimiter(cfg.RateLimitPerMinute)
	limiter.StartCleanupRoutine(ctx, 5*time.Minute, 10*time.Minute)

	handler.SetupStorefrontHandler(store)
	handler.SetupWebSocketHandler(wsManager, store)
	handler.SetupHealthHandler(nil)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	router.SetupStorefrontRouter(e, limiter)
	router.SetupWebSocketRouter(e)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Storefront edge listening on :%s (catalog API %s)", servePort, cfg.Sync.APIBaseURL)
		if err := e.Start(":" + servePort); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("Shutting down storefront edge...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
