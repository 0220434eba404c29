package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/pricedesk/pricedesk/internal/app"
	"github.com/pricedesk/pricedesk/internal/export"
	"github.com/pricedesk/pricedesk/internal/platform/cache"
	"github.com/pricedesk/pricedesk/internal/platform/db"
	"github.com/pricedesk/pricedesk/internal/pricelist"
	"github.com/pricedesk/pricedesk/internal/viewstate"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	rdb, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		_ = rdb.Close()
	}()

	queue := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		_ = queue.Close()
	}()

	repo := pricelist.NewRepository(dbpool)
	service := pricelist.NewService(repo)
	prefs := viewstate.NewPrefs(rdb)
	store := viewstate.NewStore(logger, service, prefs)
	if err := store.Load(ctx); err != nil {
		// The session starts empty and recovers on the next refresh.
		logger.Warn("initial load failed", slog.Any("error", err))
	}

	exportService := export.NewService(logger, rdb, queue)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		PriceListHandler: pricelist.NewHandler(logger, service),
		ViewHandler:      viewstate.NewHandler(logger, store, prefs),
		ExportHandler:    export.NewHandler(logger, exportService, store),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
