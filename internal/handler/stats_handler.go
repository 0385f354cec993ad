package handler

import (
	"net/http"
	"time"

	"promokiosk/internal/export"
	"promokiosk/internal/middleware"
	"promokiosk/internal/model"
	"promokiosk/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StatsHandler handles admin stats requests.
type StatsHandler struct {
	service  service.StatsService
	exporter export.Exporter
	logger   zerolog.Logger
	now      func() time.Time
}

// NewStatsHandler creates a new stats handler. The exporter may be nil
// when report export is disabled.
func NewStatsHandler(service service.StatsService, exporter export.Exporter, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		service:  service,
		exporter: exporter,
		logger:   logger.With().Str("handler", "stats").Logger(),
		now:      time.Now,
	}
}

// Overview handles GET /api/admin/stats requests.
func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Overview(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Store handles GET /api/admin/stats/stores/{id} requests. Store admins
// may only view their own store.
func (h *StatsHandler) Store(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid store ID format", h.logger)
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims != nil && claims.Role == model.RoleStore {
		if claims.StoreID == nil || id != *claims.StoreID {
			writeError(w, http.StatusForbidden, model.ErrCodeForbidden, "store admins may only view their own store", h.logger)
			return
		}
	}

	stats, err := h.service.Store(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Stores handles GET /api/admin/stats/stores requests: the current-month
// rollup for every store.
func (h *StatsHandler) Stores(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.StoresCurrentMonth(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// exportResponse reports where an exported report was written.
type exportResponse struct {
	Key string `json:"key"`
}

// Export handles POST /api/admin/stats/export requests: writes the
// current-month per-store report to external storage.
func (h *StatsHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		writeError(w, http.StatusNotImplemented, model.ErrCodeInternalError, "report export is not configured", h.logger)
		return
	}

	stats, err := h.service.StoresCurrentMonth(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	month := h.now().Format("2006-01")
	key, err := h.exporter.ExportStoresMonthly(r.Context(), month, stats)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, exportResponse{Key: key})
}
