package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/pricedesk/pricedesk/internal/app"
	"github.com/pricedesk/pricedesk/internal/export"
	"github.com/pricedesk/pricedesk/internal/platform/cache"
	"github.com/pricedesk/pricedesk/internal/platform/db"
	"github.com/pricedesk/pricedesk/internal/pricelist"
	"github.com/pricedesk/pricedesk/internal/viewstate"
	"github.com/pricedesk/pricedesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	renderer, err := export.NewRenderer()
	if err != nil {
		logger.Error("init renderer", slog.Any("error", err))
		os.Exit(1)
	}

	repo := pricelist.NewRepository(dbpool)
	exportJob := export.NewJob(export.JobConfig{
		Service:    export.NewService(logger, rdb, asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})),
		Source:     pricelist.NewService(repo),
		Prefs:      viewstate.NewPrefs(rdb),
		Renderer:   renderer,
		Rasterizer: export.NewChromiumRasterizer(cfg.RasterizerURL),
		Geometry:   export.PageGeometry{WidthMM: cfg.ExportPageWidthMM, HeightMM: cfg.ExportPageHeightMM},
		StorageDir: cfg.ExportDir,
		Logger:     logger,
	})

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskPriceListExport, Handler: exportJob.Handle},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started")
	if err := worker.Run(ctx); err != nil {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
