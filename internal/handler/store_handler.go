package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"promokiosk/internal/model"
	"promokiosk/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StoreHandler handles store directory and user affiliation requests.
type StoreHandler struct {
	service service.StoreService
	logger  zerolog.Logger
}

// NewStoreHandler creates a new store handler.
func NewStoreHandler(service service.StoreService, logger zerolog.Logger) *StoreHandler {
	return &StoreHandler{
		service: service,
		logger:  logger.With().Str("handler", "store").Logger(),
	}
}

// List handles GET /api/stores requests.
func (h *StoreHandler) List(w http.ResponseWriter, r *http.Request) {
	stores, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, stores)
}

// Get handles GET /api/stores/{id} requests.
func (h *StoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid store ID format", h.logger)
		return
	}

	store, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if store == nil {
		writeError(w, http.StatusNotFound, model.ErrCodeStoreNotFound, "store not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, store)
}

// Create handles POST /api/admin/stores requests.
func (h *StoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.StoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	store, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, store)
}

// Delete handles DELETE /api/admin/stores/{id} requests.
func (h *StoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid store ID format", h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AssignedStore handles GET /api/users/{externalID}/store requests.
func (h *StoreHandler) AssignedStore(w http.ResponseWriter, r *http.Request) {
	externalID, err := strconv.ParseInt(chi.URLParam(r, "externalID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid user ID format", h.logger)
		return
	}

	store, err := h.service.AssignedStore(r.Context(), externalID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if store == nil {
		writeError(w, http.StatusNotFound, model.ErrCodeNoStoreSelected, "no store selected", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, store)
}

// setStoreRequest is the payload for assigning a user to a store.
type setStoreRequest struct {
	StoreID uuid.UUID `json:"storeId"`
}

// SetAssignedStore handles POST /api/users/{externalID}/store requests.
func (h *StoreHandler) SetAssignedStore(w http.ResponseWriter, r *http.Request) {
	externalID, err := strconv.ParseInt(chi.URLParam(r, "externalID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid user ID format", h.logger)
		return
	}

	var req setStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if req.StoreID == uuid.Nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "storeId is required", h.logger)
		return
	}

	if err := h.service.SetAssignedStore(r.Context(), externalID, req.StoreID); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
