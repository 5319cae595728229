package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/stockroom/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, config.StoragePostgres, cfg.Storage)
	assert.Equal(t, "Main Warehouse", cfg.Inventory.DefaultLocation)
	assert.Equal(t, 5*time.Second, cfg.Catalog.Timeout)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 10, cfg.DB.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, "postgres://postgres:@localhost:5432/stockroom?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE", " Memory ")
	t.Setenv("INVENTORY_DEFAULT_LOCATION", "Back Room")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StorageMemory, cfg.Storage)
	assert.Equal(t, "Back Room", cfg.Inventory.DefaultLocation)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_UnknownStorage(t *testing.T) {
	t.Setenv("STORAGE", "sqlite")

	_, err := config.Load()
	assert.ErrorContains(t, err, "unknown storage")
}
