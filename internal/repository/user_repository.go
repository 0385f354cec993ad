package repository

import (
	"context"
	"fmt"
	"time"

	"promokiosk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

// GetByExternalID retrieves a user by their external chat-platform ID.
func (r *userRepository) GetByExternalID(ctx context.Context, externalID int64) (*model.User, error) {
	query := `
		SELECT id, external_id, store_id, created_at
		FROM users
		WHERE external_id = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, externalID).Scan(
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
		r.logger.Error().Err(err).Int64("external_id", externalID).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// SetStore assigns a store to the user, creating the user row on first
// contact. The external ID carries identity, so the upsert keys on it.
func (r *userRepository) SetStore(ctx context.Context, externalID int64, storeID uuid.UUID) (*model.User, error) {
	query := `
		INSERT INTO users (id, external_id, store_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (external_id) DO UPDATE SET store_id = EXCLUDED.store_id
		RETURNING id, external_id, store_id, created_at
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, uuid.New(), externalID, storeID, time.Now()).Scan(
		&user.ID,
		&user.ExternalID,
		&user.StoreID,
		&user.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("external_id", externalID).
			Str("store_id", storeID.String()).
			Msg("failed to set user store")
		return nil, fmt.Errorf("failed to set user store: %w", err)
	}

	r.logger.Debug().
		Int64("external_id", externalID).
		Str("store_id", storeID.String()).
		Msg("user store assigned")

	return &user, nil
}
