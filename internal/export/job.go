package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hibiken/asynq"

	"github.com/pricedesk/pricedesk/internal/columns"
	"github.com/pricedesk/pricedesk/internal/pricelist"
	"github.com/pricedesk/pricedesk/internal/viewstate"
	"github.com/pricedesk/pricedesk/jobs"
)

// DataSource provides the records and rate the export renders from.
type DataSource interface {
	ListProducts(ctx context.Context) ([]pricelist.Product, error)
	ListCategories(ctx context.Context) ([]pricelist.Category, error)
	GetRate(ctx context.Context) (float64, error)
}

// JobConfig wires dependencies required by the worker job.
type JobConfig struct {
	Service    *Service
	Source     DataSource
	Prefs      *viewstate.Prefs
	Renderer   *Renderer
	Rasterizer Rasterizer
	Geometry   PageGeometry
	StorageDir string
	Logger     *slog.Logger
}

// Job executes export runs from the queue: pipeline, render,
// rasterize, tile, write. Any failure surfaces as one failed status;
// there is no internal retry.
type Job struct {
	service    *Service
	source     DataSource
	prefs      *viewstate.Prefs
	renderer   *Renderer
	rasterizer Rasterizer
	geometry   PageGeometry
	storageDir string
	logger     *slog.Logger
}

// NewJob constructs a Job handler.
func NewJob(cfg JobConfig) *Job {
	geom := cfg.Geometry
	if geom.WidthMM <= 0 || geom.HeightMM <= 0 {
		geom = A4Portrait
	}
	return &Job{
		service:    cfg.Service,
		source:     cfg.Source,
		prefs:      cfg.Prefs,
		renderer:   cfg.Renderer,
		rasterizer: cfg.Rasterizer,
		geometry:   geom,
		storageDir: cfg.StorageDir,
		logger:     cfg.Logger,
	}
}

// Handle fulfils the asynq.HandlerFunc contract.
func (j *Job) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.service == nil || j.source == nil || j.renderer == nil || j.rasterizer == nil {
		return fmt.Errorf("export job not configured")
	}
	var payload jobs.PriceListExportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.ExportID == "" {
		return asynq.SkipRetry
	}

	path, err := j.run(ctx, payload)
	if err != nil {
		j.logger.Error("export failed", slog.String("export_id", payload.ExportID), slog.Any("error", err))
		_ = j.service.MarkFailed(ctx, payload.ExportID, err.Error())
		return asynq.SkipRetry
	}
	if err := j.service.MarkReady(ctx, payload.ExportID, path); err != nil {
		return err
	}
	j.logger.Info("export ready", slog.String("export_id", payload.ExportID), slog.String("file", path))
	return nil
}

func (j *Job) run(ctx context.Context, payload jobs.PriceListExportPayload) (string, error) {
	products, err := j.source.ListProducts(ctx)
	if err != nil {
		return "", fmt.Errorf("load products: %w", err)
	}
	categories, err := j.source.ListCategories(ctx)
	if err != nil {
		return "", fmt.Errorf("load categories: %w", err)
	}
	rate, err := j.source.GetRate(ctx)
	if err != nil {
		return "", fmt.Errorf("load rate: %w", err)
	}
	if override, ok := j.prefs.RateOverride(ctx); ok {
		rate = override
	}

	// The export always renders the complete filtered set through the
	// same pipeline as the live table, never a virtualized window.
	rows := pricelist.BuildRows(products, categories, pricelist.Filter{
		Search:     payload.Search,
		Category:   payload.Category,
		ShowHidden: payload.ShowHidden,
	})
	descs := columns.OrderedVisible(j.prefs.ColumnOrder(ctx), j.prefs.VisibleColumns(ctx), false)

	html, err := j.renderer.Render(rows, descs, rate, payload.FontSize)
	if err != nil {
		return "", err
	}
	img, err := j.rasterizer.Screenshot(ctx, html)
	if err != nil {
		return "", fmt.Errorf("rasterize: %w", err)
	}
	pdf, err := BuildPDF(img, j.geometry)
	if err != nil {
		return "", err
	}
	return j.save(payload.ExportID, pdf)
}

func (j *Job) save(id string, pdf []byte) (string, error) {
	dir := j.storageDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "pricedesk-exports")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("pricelist-%s.pdf", id))
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
