package handler

import (
	"encoding/json"
	"net/http"

	"promokiosk/internal/auth"
	"promokiosk/internal/model"
	"promokiosk/internal/service"

	"github.com/rs/zerolog"
)

// AdminHandler handles admin account and login requests.
type AdminHandler struct {
	service service.AdminService
	tokens  *auth.TokenIssuer
	logger  zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(service service.AdminService, tokens *auth.TokenIssuer, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		tokens:  tokens,
		logger:  logger.With().Str("handler", "admin").Logger(),
	}
}

// Login handles POST /api/admin/login requests.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	admin, err := h.service.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if admin == nil {
		writeError(w, http.StatusUnauthorized, model.ErrCodeInvalidCredentials, "invalid login or password", h.logger)
		return
	}

	token, err := h.tokens.Issue(admin)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.LoginResponse{
		Token:   token,
		Role:    admin.Role,
		StoreID: admin.StoreID,
	})
}

// Create handles POST /api/admin/admins requests.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.AdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	admin, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, admin)
}
