package export

import (
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/pricedesk/pricedesk/internal/pricelist"
	"github.com/pricedesk/pricedesk/internal/viewstate"
	"github.com/pricedesk/pricedesk/jobs"
)

type stubSource struct {
	products   []pricelist.Product
	categories []pricelist.Category
	rate       float64
}

func (s *stubSource) ListProducts(ctx context.Context) ([]pricelist.Product, error) {
	return s.products, nil
}

func (s *stubSource) ListCategories(ctx context.Context) ([]pricelist.Category, error) {
	return s.categories, nil
}

func (s *stubSource) GetRate(ctx context.Context) (float64, error) {
	return s.rate, nil
}

type stubRasterizer struct {
	html string
	err  error
}

func (s *stubRasterizer) Screenshot(ctx context.Context, html string) (image.Image, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.html = html
	img := image.NewRGBA(image.Rect(0, 0, 800, 3000))
	for y := 0; y < 3000; y += 10 {
		for x := 0; x < 800; x++ {
			img.Set(x, y, color.Black)
		}
	}
	return img, nil
}

func newTestJob(t *testing.T, raster *stubRasterizer) (*Job, *Service) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := slog.New(slog.DiscardHandler)
	svc := NewService(logger, rdb, &stubQueue{})
	renderer, err := NewRenderer()
	require.NoError(t, err)

	source := &stubSource{
		products: []pricelist.Product{
			{ID: 1, CategoryID: 2, Name: "Marlboro Red", CostUSD: 4.74, Profit: 500, CategoryName: "Cigarettes"},
			{ID: 2, CategoryID: 2, Name: "Secret Stock", Hidden: true, CategoryName: "Cigarettes"},
		},
		categories: []pricelist.Category{{ID: 2, Name: "Cigarettes", SortOrder: 1}},
		rate:       11700,
	}

	job := NewJob(JobConfig{
		Service:    svc,
		Source:     source,
		Prefs:      viewstate.NewPrefs(rdb),
		Renderer:   renderer,
		Rasterizer: raster,
		StorageDir: t.TempDir(),
		Logger:     logger,
	})
	return job, svc
}

func exportTask(t *testing.T, payload jobs.PriceListExportPayload) *asynq.Task {
	t.Helper()
	task, err := jobs.NewPriceListExportTask(payload)
	require.NoError(t, err)
	return task
}

func TestJobProducesReadyPDF(t *testing.T) {
	raster := &stubRasterizer{}
	job, svc := newTestJob(t, raster)
	ctx := context.Background()

	err := job.Handle(ctx, exportTask(t, jobs.PriceListExportPayload{
		ExportID: "job-1",
		Category: pricelist.CategoryAll,
		FontSize: 14,
	}))
	require.NoError(t, err)

	st, err := svc.Status(ctx, "job-1")
	require.NoError(t, err)
	require.Equal(t, StateReady, st.State)

	pdf, err := os.ReadFile(st.File)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(pdf), "%PDF"))

	// The export renders through the same pipeline as the live view.
	require.Contains(t, raster.html, "Marlboro Red")
	require.Contains(t, raster.html, "56,000")
	// Hidden rows stay excluded unless the view shows them.
	require.NotContains(t, raster.html, "Secret Stock")
}

func TestJobHonorsShowHiddenFromFrozenViewState(t *testing.T) {
	raster := &stubRasterizer{}
	job, _ := newTestJob(t, raster)

	err := job.Handle(context.Background(), exportTask(t, jobs.PriceListExportPayload{
		ExportID:   "job-2",
		Category:   pricelist.CategoryAll,
		ShowHidden: true,
	}))
	require.NoError(t, err)
	require.Contains(t, raster.html, "Secret Stock")
}

func TestJobFailureMarksStatusWithoutRetry(t *testing.T) {
	raster := &stubRasterizer{err: errors.New("chromium crashed")}
	job, svc := newTestJob(t, raster)
	ctx := context.Background()

	err := job.Handle(ctx, exportTask(t, jobs.PriceListExportPayload{ExportID: "job-3"}))
	require.ErrorIs(t, err, asynq.SkipRetry)

	st, err := svc.Status(ctx, "job-3")
	require.NoError(t, err)
	require.Equal(t, StateFailed, st.State)
	require.Contains(t, st.Error, "chromium crashed")
}

func TestJobRejectsMalformedPayload(t *testing.T) {
	job, _ := newTestJob(t, &stubRasterizer{})
	task := asynq.NewTask(jobs.TaskPriceListExport, []byte("{broken"))
	err := job.Handle(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}
