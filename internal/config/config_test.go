package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
database:
  host: localhost
  user: restaurant_user
  password: "secret"
  database: restaurant_db
rabbitmq:
  host: localhost
  user: guest
  password: guest
pricing:
  tax_rate: 0.08
kitchen:
  cook_dine_in: 3s
`

func TestParse_AppliesDefaultsAndOverrides(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "/", cfg.RabbitMQ.VHost)
	assert.Equal(t, 5672, cfg.RabbitMQ.Port)

	assert.InDelta(t, 0.08, cfg.Pricing.TaxRate, 1e-9)
	assert.InDelta(t, 0.10, cfg.Pricing.DiscountRate, 1e-9)

	assert.Equal(t, 3*time.Second, cfg.Kitchen.CookDineIn)
	assert.Equal(t, 10*time.Second, cfg.Kitchen.CookTakeout)
	assert.Equal(t, 1, cfg.Kitchen.Prefetch)
}

func TestParse_Incomplete(t *testing.T) {
	_, err := Parse([]byte("database:\n  host: localhost\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database config incomplete")
	assert.Contains(t, err.Error(), "rabbitmq config incomplete")
}

func TestParse_BadRates(t *testing.T) {
	bad := []byte(`
database: {host: h, user: u, database: d}
rabbitmq: {host: h, user: u}
pricing: {discount_rate: 1.5}
`)
	_, err := Parse(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pricing rates out of range")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "restaurant_db", cfg.Database.Database)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
