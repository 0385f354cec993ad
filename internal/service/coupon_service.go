package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"promokiosk/internal/model"
	"promokiosk/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const (
	// codeSpace is the number of distinct 6-digit codes. Collisions get
	// likelier as the ledger grows towards it; acceptable only while the
	// total stays far below.
	codeSpace = 1_000_000

	// maxCodeAttempts bounds the collision retry loop.
	maxCodeAttempts = 50
)

// couponService implements CouponService.
type couponService struct {
	couponRepo repository.CouponRepository
	storeRepo  repository.StoreRepository
	logger     zerolog.Logger

	// now and randIndex are swapped out in tests.
	now       func() time.Time
	randIndex func(n int) (int, error)
}

// NewCouponService creates a new coupon issuance and redemption service.
func NewCouponService(
	couponRepo repository.CouponRepository,
	storeRepo repository.StoreRepository,
	logger zerolog.Logger,
) CouponService {
	return &couponService{
		couponRepo: couponRepo,
		storeRepo:  storeRepo,
		logger:     logger.With().Str("service", "coupon").Logger(),
		now:        time.Now,
		randIndex:  cryptoRandIndex,
	}
}

// Issue hands the user one coupon for a randomly chosen eligible
// promotion of their store. The daily-limit check, eligibility scan, cap
// re-check and insert all run in one transaction; the user row lock at
// the top serialises duplicate rapid-fire requests from the same user.
func (s *couponService) Issue(ctx context.Context, externalUserID int64) (*model.IssueResult, error) {
	tx, err := s.couponRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to issue coupon: %w", err)
	}
	defer s.rollback(ctx, tx)

	user, err := s.couponRepo.LockUserByExternalID(ctx, tx, externalUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue coupon: %w", err)
	}
	if user == nil || user.StoreID == nil {
		s.logger.Debug().Int64("external_id", externalUserID).Msg("issuance without a selected store")
		return nil, model.ErrNoStoreSelected
	}

	issuedAt := s.now()

	hasToday, err := s.couponRepo.HasCouponOnDay(ctx, tx, user.ID, issuedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to issue coupon: %w", err)
	}
	if hasToday {
		s.logger.Debug().Int64("external_id", externalUserID).Msg("daily limit reached")
		return nil, model.ErrDailyLimitReached
	}

	promos, err := s.couponRepo.StorePromotionsWithIssued(ctx, tx, *user.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue coupon: %w", err)
	}

	chosen, err := s.pickPromotion(ctx, tx, filterEligible(promos, issuedAt))
	if err != nil {
		return nil, err
	}

	coupon, err := s.insertWithFreshCode(ctx, tx, user.ID, chosen.ID, issuedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("external_id", externalUserID).Msg("failed to commit issuance")
		return nil, fmt.Errorf("failed to issue coupon: %w", err)
	}

	s.logger.Info().
		Int64("external_id", externalUserID).
		Str("promotion_id", chosen.ID.String()).
		Str("code", coupon.Code).
		Msg("coupon issued")

	// Receipt decoration only; the issuance itself is already durable.
	store, err := s.storeRepo.GetByID(ctx, chosen.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to load store for receipt: %w", err)
	}

	result := &model.IssueResult{
		Code:        coupon.Code,
		Description: chosen.Description,
		IssuedOn:    day(issuedAt),
		ValidUntil:  expiryDate(issuedAt, chosen.ValidDays),
		ValidDays:   chosen.ValidDays,
		StartsToday: chosen.StartsToday,
	}
	if store != nil {
		result.StoreAddress = store.Address
	}

	return result, nil
}

// pickPromotion selects one eligible promotion uniformly at random,
// re-checking the cap under the promotion row lock. A promotion that hit
// its cap since the unlocked scan drops out and another one is drawn.
func (s *couponService) pickPromotion(ctx context.Context, tx pgx.Tx, candidates []model.PromotionWithIssued) (*model.PromotionWithIssued, error) {
	for len(candidates) > 0 {
		i, err := s.randIndex(len(candidates))
		if err != nil {
			return nil, fmt.Errorf("failed to pick promotion: %w", err)
		}

		promo := candidates[i]

		issued, err := s.couponRepo.CountIssuedLocked(ctx, tx, promo.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to pick promotion: %w", err)
		}

		if !underCap(promo.MaxCoupons, issued) {
			s.logger.Debug().Str("promotion_id", promo.ID.String()).Msg("promotion reached cap under lock")
			candidates = append(candidates[:i], candidates[i+1:]...)
			continue
		}

		return &promo, nil
	}

	return nil, model.ErrNoActivePromotions
}

// insertWithFreshCode persists the coupon, regenerating the code on
// collision until the insert lands.
func (s *couponService) insertWithFreshCode(ctx context.Context, tx pgx.Tx, userID, promotionID uuid.UUID, issuedAt time.Time) (*model.Coupon, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate coupon code: %w", err)
		}

		coupon := &model.Coupon{
			ID:          uuid.New(),
			UserID:      userID,
			PromotionID: promotionID,
			Code:        code,
			IssuedAt:    issuedAt,
		}

		inserted, err := s.couponRepo.Insert(ctx, tx, coupon)
		if err != nil {
			return nil, err
		}
		if inserted {
			return coupon, nil
		}
	}

	s.logger.Error().Int("attempts", maxCodeAttempts).Msg("could not find a free coupon code")
	return nil, fmt.Errorf("could not find a free coupon code after %d attempts", maxCodeAttempts)
}

// Redeem consumes a coupon code at most once. The row lock taken by the
// lookup makes concurrent attempts on the same code resolve to exactly
// one success; the loser finds no unredeemed coupon and reports NotFound.
func (s *couponService) Redeem(ctx context.Context, code string) (*model.RedeemResult, error) {
	tx, err := s.couponRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem coupon: %w", err)
	}
	defer s.rollback(ctx, tx)

	candidate, err := s.couponRepo.FindForRedemption(ctx, tx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem coupon: %w", err)
	}
	if candidate == nil {
		return &model.RedeemResult{Status: model.RedemptionNotFound}, nil
	}

	now := s.now()
	if day(now).After(expiryDate(candidate.IssuedAt, candidate.ValidDays)) {
		// The coupon stays unredeemed forever; its row is kept for audit.
		s.logger.Debug().Str("code", code).Msg("coupon expired")
		return &model.RedeemResult{Status: model.RedemptionExpired}, nil
	}

	if err := s.couponRepo.MarkRedeemed(ctx, tx, candidate.CouponID, now); err != nil {
		return nil, fmt.Errorf("failed to redeem coupon: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("code", code).Msg("failed to commit redemption")
		return nil, fmt.Errorf("failed to redeem coupon: %w", err)
	}

	s.logger.Info().
		Str("code", code).
		Int64("owner_external_id", candidate.OwnerExternalID).
		Msg("coupon redeemed")

	return &model.RedeemResult{
		Status: model.RedemptionSuccess,
		Receipt: &model.Receipt{
			Code:            candidate.Code,
			Description:     candidate.Description,
			StoreName:       candidate.StoreName,
			StoreAddress:    candidate.StoreAddress,
			StoreCity:       candidate.StoreCity,
			OwnerExternalID: candidate.OwnerExternalID,
		},
	}, nil
}

// ListActive retrieves the user's unredeemed coupons with computed
// expiry dates. Expired ones stay in the list; they are the owner's to
// see, even if redemption would refuse them.
func (s *couponService) ListActive(ctx context.Context, externalUserID int64) ([]model.ActiveCoupon, error) {
	rows, err := s.couponRepo.ListActiveByExternalID(ctx, externalUserID)
	if err != nil {
		s.logger.Error().Err(err).Int64("external_id", externalUserID).Msg("failed to list active coupons")
		return nil, fmt.Errorf("failed to list active coupons: %w", err)
	}

	coupons := make([]model.ActiveCoupon, len(rows))
	for i, row := range rows {
		coupons[i] = model.ActiveCoupon{
			Code:        row.Code,
			Description: row.Description,
			IssuedOn:    day(row.IssuedAt),
			ValidUntil:  expiryDate(row.IssuedAt, row.ValidDays),
			StartsToday: row.StartsToday,
		}
	}

	return coupons, nil
}

// rollback discards the transaction; called deferred, it is a no-op
// after a successful commit.
func (s *couponService) rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
		s.logger.Error().Err(err).Msg("failed to rollback transaction")
	}
}

// generateCode draws a uniformly random 6-digit code. Codes work as
// bearer tokens, so the randomness comes from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpace))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// cryptoRandIndex draws a uniform index in [0, n).
func cryptoRandIndex(n int) (int, error) {
	i, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(i.Int64()), nil
}
