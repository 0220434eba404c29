package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pricedesk/pricedesk/internal/export"
	"github.com/pricedesk/pricedesk/internal/platform/httpx"
	"github.com/pricedesk/pricedesk/internal/pricelist"
	"github.com/pricedesk/pricedesk/internal/viewstate"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	PriceListHandler *pricelist.Handler
	ViewHandler      *viewstate.Handler
	ExportHandler    *export.Handler
}

// NewRouter constructs the chi.Router with PriceDesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/pricelist", params.PriceListHandler.Routes())
		api.Mount("/view", params.ViewHandler.Routes())
		api.Mount("/exports", params.ExportHandler.Routes())
	})

	return r
}
