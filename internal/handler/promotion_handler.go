package handler

import (
	"encoding/json"
	"net/http"

	"promokiosk/internal/middleware"
	"promokiosk/internal/model"
	"promokiosk/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PromotionHandler handles promotion management requests. Store admins
// are confined to their own store; master admins see everything.
type PromotionHandler struct {
	service service.PromotionService
	logger  zerolog.Logger
}

// NewPromotionHandler creates a new promotion handler.
func NewPromotionHandler(service service.PromotionService, logger zerolog.Logger) *PromotionHandler {
	return &PromotionHandler{
		service: service,
		logger:  logger.With().Str("handler", "promotion").Logger(),
	}
}

// Create handles POST /api/admin/promotions requests.
func (h *PromotionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.PromotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims != nil && claims.Role == model.RoleStore {
		if claims.StoreID == nil || req.StoreID != *claims.StoreID {
			writeError(w, http.StatusForbidden, model.ErrCodeForbidden, "store admins may only manage their own store", h.logger)
			return
		}
	}

	promo, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, promo)
}

// List handles GET /api/admin/promotions requests. Master admins may
// filter by the storeId query parameter; store admins always get their
// own store.
func (h *PromotionHandler) List(w http.ResponseWriter, r *http.Request) {
	var storeID *uuid.UUID

	claims := middleware.ClaimsFromContext(r.Context())
	if claims != nil && claims.Role == model.RoleStore {
		storeID = claims.StoreID
	} else if raw := r.URL.Query().Get("storeId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid store ID format", h.logger)
			return
		}
		storeID = &id
	}

	listings, err := h.service.List(r.Context(), storeID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, listings)
}

// Delete handles DELETE /api/admin/promotions/{id} requests.
func (h *PromotionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid promotion ID format", h.logger)
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims != nil && claims.Role == model.RoleStore {
		promo, err := h.service.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, err, h.logger)
			return
		}
		if promo == nil {
			writeError(w, http.StatusNotFound, model.ErrCodePromotionNotFound, "promotion not found", h.logger)
			return
		}
		if claims.StoreID == nil || promo.StoreID != *claims.StoreID {
			writeError(w, http.StatusForbidden, model.ErrCodeForbidden, "store admins may only manage their own store", h.logger)
			return
		}
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
