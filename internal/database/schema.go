package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Schema is the full table layout. Coupon codes are unique across every
// coupon ever issued, and the expression index on (user_id, issued day)
// backs the one-coupon-per-user-per-day rule at the storage level.
const Schema = `
	CREATE TABLE IF NOT EXISTS stores (
		id UUID PRIMARY KEY,
		city VARCHAR(255) NOT NULL,
		address VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL,
		UNIQUE (city, address, name)
	);

	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		external_id BIGINT UNIQUE NOT NULL,
		store_id UUID REFERENCES stores(id),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS admins (
		id UUID PRIMARY KEY,
		login VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(16) NOT NULL CHECK (role IN ('master', 'store')),
		store_id UUID REFERENCES stores(id)
	);

	CREATE TABLE IF NOT EXISTS promotions (
		id UUID PRIMARY KEY,
		store_id UUID NOT NULL REFERENCES stores(id),
		description TEXT NOT NULL,
		start_date TEXT NOT NULL,
		duration INTEGER NOT NULL,
		max_coupons INTEGER NOT NULL DEFAULT 0,
		valid_days INTEGER NOT NULL DEFAULT 1,
		starts_today BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS coupons (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		promotion_id UUID NOT NULL REFERENCES promotions(id),
		code VARCHAR(6) UNIQUE NOT NULL,
		issued_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		redeemed BOOLEAN NOT NULL DEFAULT FALSE,
		redeemed_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_promotions_store_id ON promotions(store_id);
	CREATE INDEX IF NOT EXISTS idx_coupons_promotion_id ON coupons(promotion_id);
	CREATE INDEX IF NOT EXISTS idx_coupons_user_id ON coupons(user_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_coupons_user_daily ON coupons(user_id, (issued_at::date));
`

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Info().Msg("database schema is up to date")
	return nil
}
