package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"promokiosk/internal/model"
	"promokiosk/internal/repository"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

// Stats are display-only, so a short cache keeps repeated admin views
// from re-aggregating the ledger. Nothing transactional reads these.
const (
	statsCacheTTL     = 30 * time.Second
	statsCacheCleanup = 5 * time.Minute
)

// statsService implements StatsService.
type statsService struct {
	statsRepo repository.StatsRepository
	storeRepo repository.StoreRepository
	cache     *cache.Cache
	logger    zerolog.Logger
	now       func() time.Time
}

// NewStatsService creates a new stats service.
func NewStatsService(
	statsRepo repository.StatsRepository,
	storeRepo repository.StoreRepository,
	logger zerolog.Logger,
) StatsService {
	return &statsService{
		statsRepo: statsRepo,
		storeRepo: storeRepo,
		cache:     cache.New(statsCacheTTL, statsCacheCleanup),
		logger:    logger.With().Str("service", "stats").Logger(),
		now:       time.Now,
	}
}

// Overview returns the global rollup across all stores.
func (s *statsService) Overview(ctx context.Context) (*model.GlobalStats, error) {
	const cacheKey = "stats:overview"
	if cached, found := s.cache.Get(cacheKey); found {
		stats := cached.(model.GlobalStats)
		return &stats, nil
	}

	totalStores, err := s.statsRepo.CountStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build overview: %w", err)
	}

	totalUsers, err := s.statsRepo.CountUsers(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build overview: %w", err)
	}

	active, err := s.activePromotionCount(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build overview: %w", err)
	}

	allTime, err := s.couponCounts(ctx, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build overview: %w", err)
	}

	month := s.now()
	currentMonth, err := s.couponCounts(ctx, nil, &month)
	if err != nil {
		return nil, fmt.Errorf("failed to build overview: %w", err)
	}

	stats := model.GlobalStats{
		TotalStores:      totalStores,
		ActivePromotions: active,
		TotalUsers:       totalUsers,
		AllTime:          allTime,
		CurrentMonth:     currentMonth,
	}

	s.cache.Set(cacheKey, stats, cache.DefaultExpiration)

	return &stats, nil
}

// Store returns the all-time rollup for one store.
func (s *statsService) Store(ctx context.Context, storeID uuid.UUID) (*model.StoreStats, error) {
	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to build store stats: %w", err)
	}
	if store == nil {
		return nil, model.ErrStoreNotFound
	}

	allTime, err := s.couponCounts(ctx, &storeID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build store stats: %w", err)
	}

	return &model.StoreStats{Store: *store, AllTime: allTime}, nil
}

// StoresCurrentMonth returns per-store rollups for the current calendar
// month, one entry per store in directory order.
func (s *statsService) StoresCurrentMonth(ctx context.Context) ([]model.StoreMonthlyStats, error) {
	const cacheKey = "stats:stores-current-month"
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.([]model.StoreMonthlyStats), nil
	}

	stores, err := s.storeRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build per-store stats: %w", err)
	}

	month := s.now()
	stats := make([]model.StoreMonthlyStats, 0, len(stores))
	for _, store := range stores {
		storeID := store.ID

		users, err := s.statsRepo.CountUsers(ctx, &storeID)
		if err != nil {
			return nil, fmt.Errorf("failed to build per-store stats: %w", err)
		}

		active, err := s.activePromotionCount(ctx, &storeID)
		if err != nil {
			return nil, fmt.Errorf("failed to build per-store stats: %w", err)
		}

		currentMonth, err := s.couponCounts(ctx, &storeID, &month)
		if err != nil {
			return nil, fmt.Errorf("failed to build per-store stats: %w", err)
		}

		stats = append(stats, model.StoreMonthlyStats{
			StoreID:          storeID,
			City:             store.City,
			Address:          store.Address,
			Users:            users,
			ActivePromotions: active,
			CurrentMonth:     currentMonth,
		})
	}

	s.cache.Set(cacheKey, stats, cache.DefaultExpiration)

	return stats, nil
}

// couponCounts aggregates issued/redeemed counts and the redemption rate.
func (s *statsService) couponCounts(ctx context.Context, storeID *uuid.UUID, month *time.Time) (model.CouponCounts, error) {
	issued, redeemed, err := s.statsRepo.CouponCounts(ctx, storeID, month)
	if err != nil {
		return model.CouponCounts{}, err
	}

	return model.CouponCounts{
		Issued:         issued,
		Redeemed:       redeemed,
		RedemptionRate: redemptionRate(issued, redeemed),
	}, nil
}

// activePromotionCount counts promotions inside their date window as of
// now. The issuance cap is deliberately ignored here: a capped-out
// promotion still counts as active for reporting.
func (s *statsService) activePromotionCount(ctx context.Context, storeID *uuid.UUID) (int, error) {
	windows, err := s.statsRepo.PromotionWindows(ctx, storeID)
	if err != nil {
		return 0, err
	}

	asOf := s.now()
	count := 0
	for _, window := range windows {
		if withinWindow(window.StartDate, window.Duration, asOf) {
			count++
		}
	}

	return count, nil
}

// redemptionRate computes redeemed/issued as a percentage rounded to one
// decimal place, 0 when nothing was issued.
func redemptionRate(issued, redeemed int) float64 {
	if issued == 0 {
		return 0
	}
	return math.Round(float64(redeemed)/float64(issued)*1000) / 10
}
