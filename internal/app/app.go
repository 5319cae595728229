// Package app wires the services of the stockroom from configuration. The API
// server, the admin CLI and the scanner UI all start from here.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stockroom/internal/batch"
	"github.com/MrJamesThe3rd/stockroom/internal/collection"
	"github.com/MrJamesThe3rd/stockroom/internal/collection/store"
	"github.com/MrJamesThe3rd/stockroom/internal/config"
	"github.com/MrJamesThe3rd/stockroom/internal/database"
	"github.com/MrJamesThe3rd/stockroom/internal/defect"
	"github.com/MrJamesThe3rd/stockroom/internal/ledger"
	"github.com/MrJamesThe3rd/stockroom/internal/location"
	"github.com/MrJamesThe3rd/stockroom/internal/lock"
	"github.com/MrJamesThe3rd/stockroom/internal/metrics"
	"github.com/MrJamesThe3rd/stockroom/internal/order"
	"github.com/MrJamesThe3rd/stockroom/internal/unit"
)

type App struct {
	Units    *unit.Service
	Defects  *defect.Service
	Batches  *batch.Service
	Tracker  *batch.Tracker
	Orders   *order.Service
	Sales    *order.Service
	Ledger   *ledger.Service
	Metrics  *metrics.Recorder
	Location *location.Resolver

	// DB is nil with memory storage.
	DB *sql.DB

	closers []func() error
}

// New connects the configured backends and builds every service.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{Metrics: metrics.New()}

	if cfg.Storage == config.StoragePostgres {
		db, err := database.New(ctx, cfg.ConnectionString(), database.Pool{
			MaxOpen:     cfg.DB.MaxOpenConns,
			MaxIdle:     cfg.DB.MaxIdleConns,
			MaxLifetime: cfg.DB.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}

		a.DB = db
		a.closers = append(a.closers, db.Close)
	}

	locker, err := a.locker(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	var (
		units   = repository[unit.Unit](a.DB, collection.Units)
		defects = repository[defect.Record](a.DB, collection.Defects)
	)

	a.Location = location.NewResolver(location.Config{
		BaseURL:  cfg.Catalog.BaseURL,
		Token:    cfg.Catalog.Token,
		Timeout:  cfg.Catalog.Timeout,
		Fallback: cfg.Inventory.DefaultLocation,
	}, log.Named("location"))

	a.Units = unit.NewService(units)
	a.Defects = defect.NewService(defects)
	a.Batches = batch.NewService(repository[batch.Batch](a.DB, collection.Batches), locker)
	a.Tracker = batch.NewTracker(a.Batches, a.Units, a.Location, locker, a.Metrics, log.Named("admission"))
	a.Ledger = ledger.NewService(repository[ledger.Entry](a.DB, collection.Ledger), locker, log.Named("ledger"))

	alloc := order.NewAllocator(units, defects, a.Metrics, log.Named("allocator"))
	a.Orders = order.NewService(order.KindOrder, repository[order.Order](a.DB, collection.Orders), alloc, a.Ledger, locker, a.Metrics, log.Named("orders"))
	a.Sales = order.NewService(order.KindSale, repository[order.Order](a.DB, collection.Sales), alloc, a.Ledger, locker, a.Metrics, log.Named("sales"))

	return a, nil
}

// LedgerSources maps each ledger kind to the service holding its sources.
func (a *App) LedgerSources() map[ledger.Kind]ledger.SourceProvider {
	return map[ledger.Kind]ledger.SourceProvider{
		ledger.KindOrder: a.Orders,
		ledger.KindSale:  a.Sales,
	}
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}

	a.closers = nil
}

func (a *App) locker(ctx context.Context, cfg *config.Config, log *zap.Logger) (lock.Locker, error) {
	if cfg.Redis.Addr == "" {
		return lock.NewLocal(), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	a.closers = append(a.closers, rdb.Close)

	return lock.NewRedis(rdb, cfg.Redis.LockTTL, log.Named("lock")), nil
}

func repository[T any](db *sql.DB, name string) collection.Repository[T] {
	if db == nil {
		return collection.NewMemory[T](name)
	}

	return store.New[T](db, name)
}
