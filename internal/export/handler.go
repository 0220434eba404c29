package export

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pricedesk/pricedesk/internal/platform/httpx"
	"github.com/pricedesk/pricedesk/internal/viewstate"
)

// Handler exposes export triggering and status over JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
	store   *viewstate.Store
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, store *viewstate.Store) *Handler {
	return &Handler{logger: logger, service: service, store: store}
}

// Routes mounts the export endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.trigger)
	r.Get("/{id}", h.status)
	r.Get("/{id}/download", h.download)
	return r
}

func (h *Handler) trigger(w http.ResponseWriter, r *http.Request) {
	id, err := h.service.Trigger(r.Context(), h.store.Filter(), h.store.FontSize())
	if err != nil {
		if errors.Is(err, ErrBusy) {
			httpx.RespondError(w, httpx.ErrBusy)
			return
		}
		h.logger.Error("trigger export failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"id": id, "state": StatePending})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrUnknownExport) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("export status failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil || st.State != StateReady || st.File == "" {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, st.File)
}
