package viewstate

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pricedesk/pricedesk/internal/columns"
	"github.com/pricedesk/pricedesk/internal/platform/httpx"
	"github.com/pricedesk/pricedesk/internal/pricelist"
	"github.com/pricedesk/pricedesk/internal/pricing"
)

// Handler exposes the view session over JSON.
type Handler struct {
	logger *slog.Logger
	store  *Store
	prefs  *Prefs
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, store *Store, prefs *Prefs) *Handler {
	return &Handler{logger: logger, store: store, prefs: prefs}
}

// Routes mounts the view-session endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/rows", h.rows)
	r.Get("/columns", h.columns)
	r.Post("/refresh", h.refresh)
	r.Put("/search", h.setSearch)
	r.Put("/category", h.setCategory)
	r.Put("/show-hidden", h.setShowHidden)
	r.Put("/font-size", h.setFontSize)
	r.Put("/rate", h.setRate)
	r.Put("/columns/order", h.setColumnOrder)
	r.Put("/columns/visible", h.setVisibleColumns)
	r.Post("/columns/reset", h.resetPrefs)
	r.Post("/edit/{id}", h.beginEdit)
	r.Put("/edit", h.stageField)
	r.Post("/edit/commit", h.commitEdit)
	r.Delete("/edit", h.cancelEdit)
	r.Post("/products/{id}/toggle-hidden", h.toggleHidden)
	return r
}

type rowDTO struct {
	Kind    string             `json:"kind"`
	Header  string             `json:"header,omitempty"`
	Product *pricelist.Product `json:"product,omitempty"`
	Price   int64              `json:"price,omitempty"`
	PerUnit int64              `json:"per_unit,omitempty"`
}

func (h *Handler) rows(w http.ResponseWriter, r *http.Request) {
	rate := h.store.Rate()
	rows := h.store.Rows()
	out := make([]rowDTO, 0, len(rows))
	for _, row := range rows {
		if row.Kind == pricelist.RowHeader {
			out = append(out, rowDTO{Kind: "header", Header: row.Header})
			continue
		}
		price := pricing.FinalPrice(row.Product.PriceInputs(), rate)
		out = append(out, rowDTO{
			Kind:    "product",
			Product: row.Product,
			Price:   price,
			PerUnit: pricing.PerUnit(price),
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"rate":      rate,
		"font_size": h.store.FontSize(),
		"rows":      out,
	})
}

func (h *Handler) columns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, editing := h.store.Editing()
	descs := columns.OrderedVisible(h.prefs.ColumnOrder(ctx), h.prefs.VisibleColumns(ctx), editing)
	httpx.JSON(w, http.StatusOK, map[string]any{"columns": descs})
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Load(r.Context()); err != nil {
		h.logger.Error("refresh failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) setSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	h.store.SetSearch(req.Text)
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) setCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	h.store.SetCategory(req.Name)
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) setShowHidden(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Show bool `json:"show"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	h.store.SetShowHidden(req.Show)
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) setFontSize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Size int `json:"size"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.store.SetFontSize(r.Context(), req.Size); err != nil {
		h.logger.Error("set font size failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"font_size": h.store.FontSize()})
}

func (h *Handler) setRate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rate float64 `json:"rate"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.store.SetRate(r.Context(), req.Rate); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rate": h.store.Rate()})
}

func (h *Handler) setColumnOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Order []string `json:"order"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.prefs.SetColumnOrder(r.Context(), req.Order); err != nil {
		h.logger.Error("set column order failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"order": h.prefs.ColumnOrder(r.Context())})
}

func (h *Handler) setVisibleColumns(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Visible []string `json:"visible"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.prefs.SetVisibleColumns(r.Context(), req.Visible); err != nil {
		h.logger.Error("set visible columns failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"visible": h.prefs.VisibleColumns(r.Context())})
}

func (h *Handler) resetPrefs(w http.ResponseWriter, r *http.Request) {
	if err := h.prefs.Reset(r.Context()); err != nil {
		h.logger.Error("reset prefs failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"order":   columns.DefaultOrder(),
		"visible": columns.DefaultVisible(),
	})
}

func (h *Handler) beginEdit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product ID")
		return
	}
	if err := h.store.BeginEdit(id); err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"editing": id})
}

func (h *Handler) stageField(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.store.StageField(req.Field, req.Value); err != nil {
		httpx.Problem(w, http.StatusConflict, "No Edit", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) commitEdit(w http.ResponseWriter, r *http.Request) {
	if err := h.store.CommitEdit(r.Context()); err != nil {
		httpx.Problem(w, http.StatusConflict, "No Edit", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) cancelEdit(w http.ResponseWriter, r *http.Request) {
	h.store.CancelEdit()
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) toggleHidden(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product ID")
		return
	}
	if err := h.store.ToggleHidden(r.Context(), id); err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
