package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Stockroom"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"stockroom"`

		MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
		MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
		ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Log struct {
		Level    string `envconfig:"LOG_LEVEL" default:"info"`
		Encoding string `envconfig:"LOG_ENCODING" default:"json"`
	}

	// Storage selects the collection backend: postgres or memory.
	Storage string `envconfig:"STORAGE" default:"postgres"`

	// Redis locks are used when Addr is set; otherwise locks are in-process
	// and only one server may run against the store.
	Redis struct {
		Addr     string        `envconfig:"REDIS_ADDR"`
		Password string        `envconfig:"REDIS_PASSWORD"`
		DB       int           `envconfig:"REDIS_DB" default:"0"`
		LockTTL  time.Duration `envconfig:"REDIS_LOCK_TTL" default:"30s"`
	}

	Catalog struct {
		BaseURL string        `envconfig:"CATALOG_BASE_URL"`
		Token   string        `envconfig:"CATALOG_TOKEN"`
		Timeout time.Duration `envconfig:"CATALOG_TIMEOUT" default:"5s"`
	}

	Inventory struct {
		DefaultLocation string `envconfig:"INVENTORY_DEFAULT_LOCATION" default:"Main Warehouse"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	if cfg.Storage != StorageMemory && cfg.Storage != StoragePostgres {
		return nil, fmt.Errorf("unknown storage %q: expected %s or %s", cfg.Storage, StoragePostgres, StorageMemory)
	}

	return &cfg, nil
}
