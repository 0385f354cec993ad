package service

import (
	"context"
	"fmt"

	"promokiosk/internal/model"
	"promokiosk/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// adminService implements AdminService.
type adminService struct {
	adminRepo repository.AdminRepository
	storeRepo repository.StoreRepository
	logger    zerolog.Logger
}

// NewAdminService creates a new admin account service.
func NewAdminService(
	adminRepo repository.AdminRepository,
	storeRepo repository.StoreRepository,
	logger zerolog.Logger,
) AdminService {
	return &adminService{
		adminRepo: adminRepo,
		storeRepo: storeRepo,
		logger:    logger.With().Str("service", "admin").Logger(),
	}
}

// Create registers a new admin account with a bcrypt password hash.
func (s *adminService) Create(ctx context.Context, req *model.AdminRequest) (*model.Admin, error) {
	if err := s.validateAdminRequest(ctx, req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.Admin{
		ID:           uuid.New(),
		Login:        req.Login,
		PasswordHash: string(hash),
		Role:         req.Role,
		StoreID:      req.StoreID,
	}

	if err := s.adminRepo.Create(ctx, admin); err != nil {
		if err != model.ErrLoginTaken {
			s.logger.Error().Err(err).Str("login", req.Login).Msg("failed to create admin")
		}
		return nil, err
	}

	s.logger.Info().
		Str("login", admin.Login).
		Str("role", admin.Role).
		Msg("admin account created")

	return admin, nil
}

// Authenticate verifies credentials against the stored bcrypt hash.
// Unknown logins and wrong passwords both come back as (nil, nil).
func (s *adminService) Authenticate(ctx context.Context, login, password string) (*model.Admin, error) {
	admin, err := s.adminRepo.GetByLogin(ctx, login)
	if err != nil {
		s.logger.Error().Err(err).Str("login", login).Msg("failed to load admin")
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}
	if admin == nil {
		return nil, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn().Str("login", login).Msg("failed admin login attempt")
		return nil, nil
	}

	return admin, nil
}

// validateAdminRequest validates the admin creation payload, including
// the role/store pairing: master admins own no store, store admins own
// exactly one existing store.
func (s *adminService) validateAdminRequest(ctx context.Context, req *model.AdminRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeInvalidJSON, "admin request is nil")
	}
	if req.Login == "" {
		return model.NewDomainError(model.ErrCodeInvalidJSON, "login is required")
	}
	if req.Password == "" {
		return model.NewDomainError(model.ErrCodeInvalidJSON, "password is required")
	}

	switch req.Role {
	case model.RoleMaster:
		if req.StoreID != nil {
			return model.NewDomainError(model.ErrCodeInvalidJSON, "master admins are not scoped to a store")
		}
	case model.RoleStore:
		if req.StoreID == nil {
			return model.NewDomainError(model.ErrCodeInvalidJSON, "store admins need a store")
		}
		store, err := s.storeRepo.GetByID(ctx, *req.StoreID)
		if err != nil {
			return fmt.Errorf("failed to validate admin store: %w", err)
		}
		if store == nil {
			return model.ErrStoreNotFound
		}
	default:
		return model.NewDomainError(model.ErrCodeInvalidJSON,
			fmt.Sprintf("role must be %q or %q", model.RoleMaster, model.RoleStore))
	}

	return nil
}
