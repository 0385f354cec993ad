package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"promokiosk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// couponRepository implements the CouponRepository interface using PostgreSQL.
type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *couponRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// LockUserByExternalID retrieves the user row for update. Two rapid-fire
// issuance attempts by the same user queue on this lock, so the second
// sees the first one's coupon when it re-checks the daily limit.
func (r *couponRepository) LockUserByExternalID(ctx context.Context, tx pgx.Tx, externalID int64) (*model.User, error) {
	query := `
		SELECT id, external_id, store_id, created_at
		FROM users
		WHERE external_id = $1
		FOR UPDATE
	`

	var user model.User
	err := tx.QueryRow(ctx, query, externalID).Scan(
		&user.ID,
		&user.ExternalID,
		&user.StoreID,
		&user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Int64("external_id", externalID).Msg("user not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("external_id", externalID).Msg("failed to lock user")
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}

	return &user, nil
}

// HasCouponOnDay reports whether the user already has any coupon issued
// on the given calendar day. Redemption status does not matter here.
func (r *couponRepository) HasCouponOnDay(ctx context.Context, tx pgx.Tx, userID uuid.UUID, day time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM coupons
			WHERE user_id = $1 AND issued_at::date = $2::date
		)
	`

	var exists bool
	if err := tx.QueryRow(ctx, query, userID, day).Scan(&exists); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to check daily coupon")
		return false, fmt.Errorf("failed to check daily coupon: %w", err)
	}

	return exists, nil
}

// StorePromotionsWithIssued retrieves a store's promotions with issued
// counts inside the issuance transaction.
func (r *couponRepository) StorePromotionsWithIssued(ctx context.Context, tx pgx.Tx, storeID uuid.UUID) ([]model.PromotionWithIssued, error) {
	query := `
		SELECT p.id, p.store_id, p.description, p.start_date, p.duration, p.max_coupons, p.valid_days, p.starts_today, p.created_at,
		       COUNT(c.id) AS issued_count
		FROM promotions p
		LEFT JOIN coupons c ON c.promotion_id = p.id
		WHERE p.store_id = $1
		GROUP BY p.id
		ORDER BY p.created_at, p.id
	`

	rows, err := tx.Query(ctx, query, storeID)
	if err != nil {
		r.logger.Error().Err(err).Str("store_id", storeID.String()).Msg("failed to query store promotions")
		return nil, fmt.Errorf("failed to query store promotions: %w", err)
	}
	defer rows.Close()

	return scanPromotionsWithIssued(rows, r.logger)
}

// CountIssuedLocked locks the promotion row and counts the coupons ever
// issued against it. Concurrent issuances for the same promotion queue
// on the row lock, so the count each sees already includes the winners
// ahead of it and a cap can never be raced past.
func (r *couponRepository) CountIssuedLocked(ctx context.Context, tx pgx.Tx, promotionID uuid.UUID) (int, error) {
	if _, err := tx.Exec(ctx, `SELECT 1 FROM promotions WHERE id = $1 FOR UPDATE`, promotionID); err != nil {
		r.logger.Error().Err(err).Str("promotion_id", promotionID.String()).Msg("failed to lock promotion")
		return 0, fmt.Errorf("failed to lock promotion: %w", err)
	}

	var count int
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM coupons WHERE promotion_id = $1`, promotionID).Scan(&count)
	if err != nil {
		r.logger.Error().Err(err).Str("promotion_id", promotionID.String()).Msg("failed to count issued coupons")
		return 0, fmt.Errorf("failed to count issued coupons: %w", err)
	}

	return count, nil
}

// Insert persists a new coupon. A code collision is reported as
// (false, nil) so the caller can retry with a fresh code; any other
// unique violation is a real error.
func (r *couponRepository) Insert(ctx context.Context, tx pgx.Tx, coupon *model.Coupon) (bool, error) {
	query := `
		INSERT INTO coupons (id, user_id, promotion_id, code, issued_at, redeemed)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		ON CONFLICT (code) DO NOTHING
	`

	tag, err := tx.Exec(ctx, query, coupon.ID, coupon.UserID, coupon.PromotionID, coupon.Code, coupon.IssuedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			// The expression index on (user_id, issued day) fired: the
			// daily limit was already consumed.
			r.logger.Debug().Str("user_id", coupon.UserID.String()).Msg("daily coupon already issued")
			return false, model.ErrDailyLimitReached
		}
		r.logger.Error().Err(err).Str("user_id", coupon.UserID.String()).Msg("failed to insert coupon")
		return false, fmt.Errorf("failed to insert coupon: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().Str("code", coupon.Code).Msg("coupon code collision, retrying")
		return false, nil
	}

	r.logger.Debug().
		Str("coupon_id", coupon.ID.String()).
		Str("promotion_id", coupon.PromotionID.String()).
		Msg("coupon inserted")

	return true, nil
}

// FindForRedemption retrieves the unredeemed coupon with the given code,
// locked for update and joined with its promotion, store and owner.
// Returns nil for unknown, malformed and already-redeemed codes alike.
func (r *couponRepository) FindForRedemption(ctx context.Context, tx pgx.Tx, code string) (*model.RedemptionCandidate, error) {
	query := `
		SELECT c.id, c.code, c.issued_at, p.valid_days, p.description,
		       s.name, s.address, s.city, u.external_id
		FROM coupons c
		JOIN promotions p ON c.promotion_id = p.id
		JOIN stores s ON p.store_id = s.id
		JOIN users u ON c.user_id = u.id
		WHERE c.code = $1 AND c.redeemed = FALSE
		FOR UPDATE OF c
	`

	var candidate model.RedemptionCandidate
	err := tx.QueryRow(ctx, query, code).Scan(
		&candidate.CouponID,
		&candidate.Code,
		&candidate.IssuedAt,
		&candidate.ValidDays,
		&candidate.Description,
		&candidate.StoreName,
		&candidate.StoreAddress,
		&candidate.StoreCity,
		&candidate.OwnerExternalID,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("code", code).Msg("no unredeemed coupon for code")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query coupon for redemption")
		return nil, fmt.Errorf("failed to query coupon for redemption: %w", err)
	}

	return &candidate, nil
}

// MarkRedeemed flips the coupon to redeemed at the given time.
func (r *couponRepository) MarkRedeemed(ctx context.Context, tx pgx.Tx, couponID uuid.UUID, redeemedAt time.Time) error {
	query := `
		UPDATE coupons
		SET redeemed = TRUE, redeemed_at = $2
		WHERE id = $1 AND redeemed = FALSE
	`

	tag, err := tx.Exec(ctx, query, couponID, redeemedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", couponID.String()).Msg("failed to mark coupon redeemed")
		return fmt.Errorf("failed to mark coupon redeemed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Unreachable while the caller holds the row lock from
		// FindForRedemption.
		return fmt.Errorf("coupon %s already redeemed", couponID)
	}

	r.logger.Debug().Str("coupon_id", couponID.String()).Msg("coupon marked redeemed")

	return nil
}

// ListActiveByExternalID retrieves the user's unredeemed coupons.
func (r *couponRepository) ListActiveByExternalID(ctx context.Context, externalID int64) ([]model.ActiveCouponRow, error) {
	query := `
		SELECT c.code, p.description, c.issued_at, p.valid_days, p.starts_today
		FROM coupons c
		JOIN promotions p ON c.promotion_id = p.id
		JOIN users u ON c.user_id = u.id
		WHERE u.external_id = $1 AND c.redeemed = FALSE
		ORDER BY c.issued_at DESC
	`

	rows, err := r.pool.Query(ctx, query, externalID)
	if err != nil {
		r.logger.Error().Err(err).Int64("external_id", externalID).Msg("failed to query active coupons")
		return nil, fmt.Errorf("failed to query active coupons: %w", err)
	}
	defer rows.Close()

	var coupons []model.ActiveCouponRow
	for rows.Next() {
		var row model.ActiveCouponRow
		err := rows.Scan(&row.Code, &row.Description, &row.IssuedAt, &row.ValidDays, &row.StartsToday)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan active coupon row")
			return nil, fmt.Errorf("failed to scan active coupon: %w", err)
		}
		coupons = append(coupons, row)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating active coupon rows")
		return nil, fmt.Errorf("error iterating active coupons: %w", err)
	}

	return coupons, nil
}
