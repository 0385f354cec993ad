package repository

import (
	"context"
	"fmt"

	"promokiosk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// promotionRepository implements the PromotionRepository interface using PostgreSQL.
type promotionRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPromotionRepository creates a new PostgreSQL-backed promotion repository.
func NewPromotionRepository(pool *pgxpool.Pool, logger zerolog.Logger) PromotionRepository {
	return &promotionRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "promotion").Logger(),
	}
}

// GetByID retrieves a single promotion by its ID.
func (r *promotionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Promotion, error) {
	query := `
		SELECT id, store_id, description, start_date, duration, max_coupons, valid_days, starts_today, created_at
		FROM promotions
		WHERE id = $1
	`

	var promo model.Promotion
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&promo.ID,
		&promo.StoreID,
		&promo.Description,
		&promo.StartDate,
		&promo.Duration,
		&promo.MaxCoupons,
		&promo.ValidDays,
		&promo.StartsToday,
		&promo.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("promotion_id", id.String()).Msg("promotion not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("promotion_id", id.String()).Msg("failed to query promotion")
		return nil, fmt.Errorf("failed to query promotion: %w", err)
	}

	return &promo, nil
}

// Create inserts a new promotion.
func (r *promotionRepository) Create(ctx context.Context, promotion *model.Promotion) error {
	query := `
		INSERT INTO promotions (id, store_id, description, start_date, duration, max_coupons, valid_days, starts_today, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		promotion.ID,
		promotion.StoreID,
		promotion.Description,
		promotion.StartDate,
		promotion.Duration,
		promotion.MaxCoupons,
		promotion.ValidDays,
		promotion.StartsToday,
		promotion.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("promotion_id", promotion.ID.String()).Msg("failed to create promotion")
		return fmt.Errorf("failed to create promotion: %w", err)
	}

	r.logger.Debug().
		Str("promotion_id", promotion.ID.String()).
		Str("store_id", promotion.StoreID.String()).
		Msg("promotion created successfully")

	return nil
}

// List retrieves promotions with a per-store ordinal display index,
// optionally filtered by store. The index restarts at 1 within each
// store and exists only for admin-facing display.
func (r *promotionRepository) List(ctx context.Context, storeID *uuid.UUID) ([]model.PromotionListing, error) {
	query := `
		SELECT id, store_id, description, start_date, duration, max_coupons, valid_days, starts_today, created_at,
		       ROW_NUMBER() OVER (PARTITION BY store_id ORDER BY created_at, id) AS display_index
		FROM promotions
		WHERE $1::uuid IS NULL OR store_id = $1
		ORDER BY store_id, created_at, id
	`

	rows, err := r.pool.Query(ctx, query, storeID)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query promotions")
		return nil, fmt.Errorf("failed to query promotions: %w", err)
	}
	defer rows.Close()

	var listings []model.PromotionListing
	for rows.Next() {
		var listing model.PromotionListing
		err := rows.Scan(
			&listing.ID,
			&listing.StoreID,
			&listing.Description,
			&listing.StartDate,
			&listing.Duration,
			&listing.MaxCoupons,
			&listing.ValidDays,
			&listing.StartsToday,
			&listing.CreatedAt,
			&listing.DisplayIndex,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan promotion row")
			return nil, fmt.Errorf("failed to scan promotion: %w", err)
		}
		listings = append(listings, listing)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating promotion rows")
		return nil, fmt.Errorf("error iterating promotions: %w", err)
	}

	return listings, nil
}

// GetByStoreWithIssued retrieves a store's promotions together with the
// number of coupons ever issued against each, redeemed or not.
func (r *promotionRepository) GetByStoreWithIssued(ctx context.Context, storeID uuid.UUID) ([]model.PromotionWithIssued, error) {
	query := `
		SELECT p.id, p.store_id, p.description, p.start_date, p.duration, p.max_coupons, p.valid_days, p.starts_today, p.created_at,
		       COUNT(c.id) AS issued_count
		FROM promotions p
		LEFT JOIN coupons c ON c.promotion_id = p.id
		WHERE p.store_id = $1
		GROUP BY p.id
		ORDER BY p.created_at, p.id
	`

	rows, err := r.pool.Query(ctx, query, storeID)
	if err != nil {
		r.logger.Error().Err(err).Str("store_id", storeID.String()).Msg("failed to query promotions with issued counts")
		return nil, fmt.Errorf("failed to query promotions: %w", err)
	}
	defer rows.Close()

	return scanPromotionsWithIssued(rows, r.logger)
}

// scanPromotionsWithIssued collects promotion rows carrying an issued
// count, shared with the coupon repository's in-transaction variant.
func scanPromotionsWithIssued(rows pgx.Rows, logger zerolog.Logger) ([]model.PromotionWithIssued, error) {
	var promos []model.PromotionWithIssued
	for rows.Next() {
		var promo model.PromotionWithIssued
		err := rows.Scan(
			&promo.ID,
			&promo.StoreID,
			&promo.Description,
			&promo.StartDate,
			&promo.Duration,
			&promo.MaxCoupons,
			&promo.ValidDays,
			&promo.StartsToday,
			&promo.CreatedAt,
			&promo.IssuedCount,
		)
		if err != nil {
			logger.Error().Err(err).Msg("failed to scan promotion row")
			return nil, fmt.Errorf("failed to scan promotion: %w", err)
		}
		promos = append(promos, promo)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("error iterating promotion rows")
		return nil, fmt.Errorf("error iterating promotions: %w", err)
	}

	return promos, nil
}

// Delete removes a promotion and its coupons in one transaction.
func (r *promotionRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM coupons WHERE promotion_id = $1`, id); err != nil {
		r.logger.Error().Err(err).Str("promotion_id", id.String()).Msg("failed to delete promotion coupons")
		return false, fmt.Errorf("failed to delete promotion coupons: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("promotion_id", id.String()).Msg("failed to delete promotion")
		return false, fmt.Errorf("failed to delete promotion: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().Str("promotion_id", id.String()).Msg("promotion not found")
		return false, nil
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("promotion_id", id.String()).Msg("failed to commit promotion deletion")
		return false, fmt.Errorf("failed to commit promotion deletion: %w", err)
	}

	r.logger.Info().Str("promotion_id", id.String()).Msg("promotion deleted with its coupons")

	return true, nil
}
