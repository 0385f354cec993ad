package repository

import (
	"context"
	"fmt"
	"time"

	"promokiosk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// statsRepository implements the StatsRepository interface using PostgreSQL.
type statsRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStatsRepository creates a new PostgreSQL-backed stats repository.
func NewStatsRepository(pool *pgxpool.Pool, logger zerolog.Logger) StatsRepository {
	return &statsRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "stats").Logger(),
	}
}

// CountStores returns the total number of stores.
func (r *statsRepository) CountStores(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM stores`).Scan(&count); err != nil {
		r.logger.Error().Err(err).Msg("failed to count stores")
		return 0, fmt.Errorf("failed to count stores: %w", err)
	}
	return count, nil
}

// CountUsers returns the number of users, optionally scoped to a store.
func (r *statsRepository) CountUsers(ctx context.Context, storeID *uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM users
		WHERE $1::uuid IS NULL OR store_id = $1
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, storeID).Scan(&count); err != nil {
		r.logger.Error().Err(err).Msg("failed to count users")
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// CouponCounts returns issued and redeemed coupon counts, optionally
// scoped to one store and/or to the calendar month containing month.
func (r *statsRepository) CouponCounts(ctx context.Context, storeID *uuid.UUID, month *time.Time) (int, int, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE c.redeemed)
		FROM coupons c
		JOIN promotions p ON c.promotion_id = p.id
		WHERE ($1::uuid IS NULL OR p.store_id = $1)
		  AND ($2::timestamp IS NULL OR date_trunc('month', c.issued_at) = date_trunc('month', $2::timestamp))
	`

	var issued, redeemed int
	if err := r.pool.QueryRow(ctx, query, storeID, month).Scan(&issued, &redeemed); err != nil {
		r.logger.Error().Err(err).Msg("failed to count coupons")
		return 0, 0, fmt.Errorf("failed to count coupons: %w", err)
	}

	return issued, redeemed, nil
}

// PromotionWindows returns the date windows of promotions, optionally
// scoped to one store. Window arithmetic happens in the service layer
// because start dates are stored as text in two accepted layouts.
func (r *statsRepository) PromotionWindows(ctx context.Context, storeID *uuid.UUID) ([]model.PromotionWindow, error) {
	query := `
		SELECT start_date, duration FROM promotions
		WHERE $1::uuid IS NULL OR store_id = $1
	`

	rows, err := r.pool.Query(ctx, query, storeID)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query promotion windows")
		return nil, fmt.Errorf("failed to query promotion windows: %w", err)
	}
	defer rows.Close()

	var windows []model.PromotionWindow
	for rows.Next() {
		var window model.PromotionWindow
		if err := rows.Scan(&window.StartDate, &window.Duration); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan promotion window")
			return nil, fmt.Errorf("failed to scan promotion window: %w", err)
		}
		windows = append(windows, window)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating promotion windows")
		return nil, fmt.Errorf("error iterating promotion windows: %w", err)
	}

	return windows, nil
}
