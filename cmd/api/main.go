package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stockroom/internal/app"
	"github.com/MrJamesThe3rd/stockroom/internal/config"
	"github.com/MrJamesThe3rd/stockroom/internal/database"
	stockHttp "github.com/MrJamesThe3rd/stockroom/internal/http"
	batchHandler "github.com/MrJamesThe3rd/stockroom/internal/http/batch"
	defectHandler "github.com/MrJamesThe3rd/stockroom/internal/http/defect"
	ledgerHandler "github.com/MrJamesThe3rd/stockroom/internal/http/ledger"
	orderHandler "github.com/MrJamesThe3rd/stockroom/internal/http/order"
	unitHandler "github.com/MrJamesThe3rd/stockroom/internal/http/unit"
	"github.com/MrJamesThe3rd/stockroom/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.DB != nil {
		if err := database.Migrate(a.DB, log); err != nil {
			return err
		}
	}

	router := stockHttp.New(stockHttp.Handlers{
		Orders:  orderHandler.NewHandler(a.Orders),
		Sales:   orderHandler.NewHandler(a.Sales),
		Batches: batchHandler.NewHandler(a.Batches, a.Tracker),
		Defects: defectHandler.NewHandler(a.Defects),
		Units:   unitHandler.NewHandler(a.Units),
		Ledger:  ledgerHandler.NewHandler(a.Ledger, a.LedgerSources()),
		Metrics: a.Metrics.Handler(),
	}, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           http.TimeoutHandler(router, cfg.Server.Timeout, "request timed out"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)

	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr), zap.String("storage", cfg.Storage))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
