package service

import (
	"context"
	"fmt"
	"strings"

	"promokiosk/internal/model"
	"promokiosk/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// storeService implements StoreService.
type storeService struct {
	storeRepo repository.StoreRepository
	userRepo  repository.UserRepository
	logger    zerolog.Logger
}

// NewStoreService creates a new store service.
func NewStoreService(
	storeRepo repository.StoreRepository,
	userRepo repository.UserRepository,
	logger zerolog.Logger,
) StoreService {
	return &storeService{
		storeRepo: storeRepo,
		userRepo:  userRepo,
		logger:    logger.With().Str("service", "store").Logger(),
	}
}

// List retrieves all stores.
func (s *storeService) List(ctx context.Context) ([]model.Store, error) {
	stores, err := s.storeRepo.GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list stores")
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	return stores, nil
}

// Get retrieves a single store by ID.
func (s *storeService) Get(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	store, err := s.storeRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("store_id", id.String()).Msg("failed to get store")
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return store, nil
}

// Create registers a new store.
func (s *storeService) Create(ctx context.Context, req *model.StoreRequest) (*model.Store, error) {
	if err := validateStoreRequest(req); err != nil {
		return nil, err
	}

	store := &model.Store{
		ID:      uuid.New(),
		City:    strings.TrimSpace(req.City),
		Address: strings.TrimSpace(req.Address),
		Name:    strings.TrimSpace(req.Name),
	}

	if err := s.storeRepo.Create(ctx, store); err != nil {
		if err != model.ErrStoreExists {
			s.logger.Error().Err(err).Msg("failed to create store")
		}
		return nil, err
	}

	s.logger.Info().
		Str("store_id", store.ID.String()).
		Str("city", store.City).
		Str("name", store.Name).
		Msg("store created")

	return store, nil
}

// Delete removes a store and everything hanging off it.
func (s *storeService) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.storeRepo.Delete(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("store_id", id.String()).Msg("failed to delete store")
		return fmt.Errorf("failed to delete store: %w", err)
	}
	if !found {
		return model.ErrStoreNotFound
	}
	return nil
}

// AssignedStore returns the store the user picked, or nil when the user
// is unknown or has not picked one.
func (s *storeService) AssignedStore(ctx context.Context, externalUserID int64) (*model.Store, error) {
	user, err := s.userRepo.GetByExternalID(ctx, externalUserID)
	if err != nil {
		s.logger.Error().Err(err).Int64("external_id", externalUserID).Msg("failed to load user")
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || user.StoreID == nil {
		return nil, nil
	}

	return s.Get(ctx, *user.StoreID)
}

// SetAssignedStore affiliates the user with a store, creating the user
// on first contact.
func (s *storeService) SetAssignedStore(ctx context.Context, externalUserID int64, storeID uuid.UUID) error {
	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return fmt.Errorf("failed to assign store: %w", err)
	}
	if store == nil {
		return model.ErrStoreNotFound
	}

	if _, err := s.userRepo.SetStore(ctx, externalUserID, storeID); err != nil {
		s.logger.Error().
			Err(err).
			Int64("external_id", externalUserID).
			Str("store_id", storeID.String()).
			Msg("failed to assign store")
		return fmt.Errorf("failed to assign store: %w", err)
	}

	return nil
}

// validateStoreRequest validates the store creation payload.
func validateStoreRequest(req *model.StoreRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeInvalidJSON, "store request is nil")
	}
	if strings.TrimSpace(req.City) == "" || strings.TrimSpace(req.Address) == "" || strings.TrimSpace(req.Name) == "" {
		return model.NewDomainError(model.ErrCodeInvalidJSON, "city, address and name are all required")
	}
	return nil
}
