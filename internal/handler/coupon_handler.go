package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"promokiosk/internal/model"
	"promokiosk/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CouponHandler handles coupon issuance and redemption requests.
type CouponHandler struct {
	service service.CouponService
	logger  zerolog.Logger
}

// NewCouponHandler creates a new coupon handler.
func NewCouponHandler(service service.CouponService, logger zerolog.Logger) *CouponHandler {
	return &CouponHandler{
		service: service,
		logger:  logger.With().Str("handler", "coupon").Logger(),
	}
}

// Issue handles POST /api/coupons requests.
func (h *CouponHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req model.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if req.ExternalUserID == 0 {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "externalUserId is required", h.logger)
		return
	}

	result, err := h.service.Issue(r.Context(), req.ExternalUserID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// Redeem handles POST /api/redemptions requests. The outcome drives the
// status code: 200 on success, 404 for unknown or spent codes, 410 for
// expired ones.
func (h *CouponHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req model.RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "code is required", h.logger)
		return
	}

	result, err := h.service.Redeem(r.Context(), code)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	status := http.StatusOK
	switch result.Status {
	case model.RedemptionNotFound:
		status = http.StatusNotFound
	case model.RedemptionExpired:
		status = http.StatusGone
	}

	writeJSON(w, status, result)
}

// ListActive handles GET /api/users/{externalID}/coupons requests.
func (h *CouponHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	externalID, err := strconv.ParseInt(chi.URLParam(r, "externalID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid user ID format", h.logger)
		return
	}

	coupons, err := h.service.ListActive(r.Context(), externalID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, coupons)
}
