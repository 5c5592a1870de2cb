package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort  string `mapstructure:"server_port"`
	Environment string `mapstructure:"environment"`

	StoreDriver     string `mapstructure:"store_driver"` // firestore, sqlite
	SQLitePath      string `mapstructure:"sqlite_path"`
	FirebaseProject string `mapstructure:"firebase_project_id"`
	// service account: inline JSON wins over the file path
	FirebaseCredentialsJSON string `mapstructure:"firebase_service_account_json"`
	FirebaseCredentialsPath string `mapstructure:"firebase_service_account_path"`
	StorageBucket           string `mapstructure:"storage_bucket"`
	SeedCatalogPath         string `mapstructure:"seed_catalog_path"`

	JWTSecret string `mapstructure:"jwt_secret"`
	JWTExpiry int64  `mapstructure:"jwt_expiry"`

	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute"`

	Checkout CheckoutConfig `mapstructure:",squash"`
	Sync     SyncConfig     `mapstructure:",squash"`
}

type CheckoutConfig struct {
	ShippingFlat          float64 `mapstructure:"shipping_flat"`
	FreeShippingThreshold float64 `mapstructure:"free_shipping_threshold"`
	VATRate               float64 `mapstructure:"vat_rate"`
	LowStockThreshold     int     `mapstructure:"low_stock_threshold"`
}

type SyncConfig struct {
	APIBaseURL string        `mapstructure:"api_base_url"`
	APIToken   string        `mapstructure:"api_token"`
	Interval   time.Duration `mapstructure:"sync_interval"`
	AdminScope bool          `mapstructure:"sync_admin_scope"`
}

var defaults = map[string]interface{}{
	"server_port":                   "8080",
	"environment":                   "development",
	"store_driver":                  "sqlite",
	"sqlite_path":                   "storefront.db",
	"firebase_project_id":           "",
	"firebase_service_account_json": "",
	"firebase_service_account_path": "",
	"storage_bucket":                "",
	"seed_catalog_path":             "",
	"jwt_secret":                    "your-secret-key",
	"jwt_expiry":                    24 * 60 * 60, // 24 hours
	"rate_limit_per_minute":         120,
	"shipping_flat":                 5.99,
	"free_shipping_threshold":       50.0,
	"vat_rate":                      0.20,
	"low_stock_threshold":           5,
	"api_base_url":                  "http://localhost:8080/v1",
	"api_token":                     "",
	"sync_interval":                 "30s",
	"sync_admin_scope":              false,
}

// Load reads .env (if present) and then the process environment. Keys are the
// upper-cased mapstructure names, e.g. SERVER_PORT or SYNC_INTERVAL.
func Load() (*Config, error) {
	return load(nil, nil)
}

// LoadWithFlags is Load with command-line overrides. bindings maps a config
// key to the name of the flag that overrides it; a flag only wins when it was
// set explicitly.
func LoadWithFlags(flags *pflag.FlagSet, bindings map[string]string) (*Config, error) {
	return load(flags, bindings)
}

func load(flags *pflag.FlagSet, bindings map[string]string) (*Config, error) {
	godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, name := range bindings {
		flag := flags.Lookup(name)
		if flag == nil {
			return nil, fmt.Errorf("unknown flag %q for config key %q", name, key)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("bind flag %q: %w", name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.StoreDriver != "firestore" && cfg.StoreDriver != "sqlite" {
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.Sync.Interval <= 0 {
		return nil, fmt.Errorf("SYNC_INTERVAL must be positive, got %s", cfg.Sync.Interval)
	}

	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
