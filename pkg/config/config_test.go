package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SYNC_INTERVAL", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Sync.Interval)
	assert.Equal(t, 5.99, cfg.Checkout.ShippingFlat)
	assert.Equal(t, 50.0, cfg.Checkout.FreeShippingThreshold)
	assert.Equal(t, 0.20, cfg.Checkout.VATRate)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SYNC_INTERVAL", "45s")
	t.Setenv("SYNC_ADMIN_SCOPE", "true")
	t.Setenv("VAT_RATE", "0.1")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Sync.Interval)
	assert.True(t, cfg.Sync.AdminScope)
	assert.Equal(t, 0.1, cfg.Checkout.VATRate)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mysql")
	t.Setenv("SYNC_INTERVAL", "30s")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SYNC_INTERVAL", "-5s")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadWithFlags(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SYNC_INTERVAL", "30s")
	t.Setenv("API_BASE_URL", "http://env.example/v1")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("api-url", "", "")
	flags.Duration("interval", 0, "")
	require.NoError(t, flags.Parse([]string{"--interval", "2m"}))

	bindings := map[string]string{"api_base_url": "api-url", "sync_interval": "interval"}
	cfg, err := LoadWithFlags(flags, bindings)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, "http://env.example/v1", cfg.Sync.APIBaseURL)

	require.NoError(t, flags.Parse([]string{"--api-url", "http://flag.example/v1"}))
	cfg, err = LoadWithFlags(flags, bindings)
	require.NoError(t, err)
	assert.Equal(t, "http://flag.example/v1", cfg.Sync.APIBaseURL)

	_, err = LoadWithFlags(flags, map[string]string{"api_token": "token"})
	assert.Error(t, err)
}
