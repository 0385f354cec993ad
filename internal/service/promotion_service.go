package service

import (
	"context"
	"fmt"
	"time"

	"promokiosk/internal/model"
	"promokiosk/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// promotionService implements PromotionService.
type promotionService struct {
	promoRepo repository.PromotionRepository
	storeRepo repository.StoreRepository
	logger    zerolog.Logger
}

// NewPromotionService creates a new promotion service.
func NewPromotionService(
	promoRepo repository.PromotionRepository,
	storeRepo repository.StoreRepository,
	logger zerolog.Logger,
) PromotionService {
	return &promotionService{
		promoRepo: promoRepo,
		storeRepo: storeRepo,
		logger:    logger.With().Str("service", "promotion").Logger(),
	}
}

// Create registers a new promotion. All fields are fixed at creation;
// there is no update path.
func (s *promotionService) Create(ctx context.Context, req *model.PromotionRequest) (*model.Promotion, error) {
	if err := s.validatePromotionRequest(req); err != nil {
		return nil, err
	}

	store, err := s.storeRepo.GetByID(ctx, req.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to create promotion: %w", err)
	}
	if store == nil {
		s.logger.Warn().Str("store_id", req.StoreID.String()).Msg("promotion for unknown store")
		return nil, model.ErrStoreNotFound
	}

	promo := &model.Promotion{
		ID:          uuid.New(),
		StoreID:     req.StoreID,
		Description: req.Description,
		StartDate:   req.StartDate,
		Duration:    req.Duration,
		MaxCoupons:  req.MaxCoupons,
		ValidDays:   req.ValidDays,
		StartsToday: req.StartsToday,
		CreatedAt:   time.Now(),
	}

	if err := s.promoRepo.Create(ctx, promo); err != nil {
		s.logger.Error().Err(err).Str("store_id", req.StoreID.String()).Msg("failed to create promotion")
		return nil, fmt.Errorf("failed to create promotion: %w", err)
	}

	s.logger.Info().
		Str("promotion_id", promo.ID.String()).
		Str("store_id", promo.StoreID.String()).
		Int("max_coupons", promo.MaxCoupons).
		Msg("promotion created")

	return promo, nil
}

// Get retrieves a single promotion by ID.
func (s *promotionService) Get(ctx context.Context, id uuid.UUID) (*model.Promotion, error) {
	promo, err := s.promoRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("promotion_id", id.String()).Msg("failed to get promotion")
		return nil, fmt.Errorf("failed to get promotion: %w", err)
	}
	return promo, nil
}

// List retrieves promotions with per-store display indexes.
func (s *promotionService) List(ctx context.Context, storeID *uuid.UUID) ([]model.PromotionListing, error) {
	listings, err := s.promoRepo.List(ctx, storeID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list promotions")
		return nil, fmt.Errorf("failed to list promotions: %w", err)
	}
	return listings, nil
}

// Delete removes a promotion and its coupons.
func (s *promotionService) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.promoRepo.Delete(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("promotion_id", id.String()).Msg("failed to delete promotion")
		return fmt.Errorf("failed to delete promotion: %w", err)
	}
	if !found {
		return model.ErrPromotionNotFound
	}
	return nil
}

// Eligible returns the promotions of a store that may hand out a coupon
// as of the given date. Pure read; no side effects.
func (s *promotionService) Eligible(ctx context.Context, storeID uuid.UUID, asOf time.Time) ([]model.Promotion, error) {
	promos, err := s.promoRepo.GetByStoreWithIssued(ctx, storeID)
	if err != nil {
		s.logger.Error().Err(err).Str("store_id", storeID.String()).Msg("failed to load store promotions")
		return nil, fmt.Errorf("failed to load store promotions: %w", err)
	}

	var eligible []model.Promotion
	for _, promo := range filterEligible(promos, asOf) {
		eligible = append(eligible, promo.Promotion)
	}

	return eligible, nil
}

// validatePromotionRequest validates the creation payload.
func (s *promotionService) validatePromotionRequest(req *model.PromotionRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeInvalidPromotion, "promotion request is nil")
	}

	if req.Description == "" {
		return model.NewDomainError(model.ErrCodeInvalidPromotion, "description is required")
	}

	if _, ok := model.ParsePromotionDate(req.StartDate); !ok {
		return model.NewDomainError(model.ErrCodeInvalidPromotion,
			fmt.Sprintf("start date %q must be in %s or %s form", req.StartDate, model.DateLayoutDayFirst, model.DateLayoutISO))
	}

	if req.Duration < 0 {
		return model.NewDomainError(model.ErrCodeInvalidPromotion, "duration must not be negative")
	}

	if req.MaxCoupons < 0 {
		return model.NewDomainError(model.ErrCodeInvalidPromotion, "max coupons must not be negative")
	}

	if req.ValidDays < 1 {
		return model.NewDomainError(model.ErrCodeInvalidPromotion, "validity window must be at least one day")
	}

	return nil
}
