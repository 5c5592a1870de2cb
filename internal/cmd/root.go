package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storefront/internal/storesync"
	"storefront/pkg/config"
	"storefront/pkg/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront edge and admin console for the catalog API",
	Long: `storefront keeps a synchronized snapshot of the catalog API, serves ranked
product search and live updates to shoppers, and runs admin mutations
against the catalog from the command line.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("api-url", "", "Catalog API base URL (API_BASE_URL)")
	flags.String("token", "", "Bearer token for the catalog API (API_TOKEN)")
	flags.Duration("interval", 0, "Background sync interval (SYNC_INTERVAL)")
	flags.Bool("admin", false, "Also sync orders and stats (SYNC_ADMIN_SCOPE)")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.LoadWithFlags(cmd.Flags(), map[string]string{
		"api_base_url":     "api-url",
		"api_token":        "token",
		"sync_interval":    "interval",
		"sync_admin_scope": "admin",
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg = c
	logger.Configure(cfg.Environment)
	return nil
}

func newClient() *storesync.Client {
	return storesync.NewClient(
		storesync.WithBaseURL(cfg.Sync.APIBaseURL),
		storesync.WithToken(cfg.Sync.APIToken),
	)
}

func newSynchronizer(opts ...storesync.SyncOption) *storesync.Synchronizer {
	opts = append([]storesync.SyncOption{
		storesync.WithInterval(cfg.Sync.Interval),
		storesync.WithAdminScope(cfg.Sync.AdminScope),
	}, opts...)
	return storesync.NewSynchronizer(newClient(), opts...)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
