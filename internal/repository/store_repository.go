package repository

import (
	"context"
	"errors"
	"fmt"

	"promokiosk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

// storeRepository implements the StoreRepository interface using PostgreSQL.
type storeRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStoreRepository creates a new PostgreSQL-backed store repository.
func NewStoreRepository(pool *pgxpool.Pool, logger zerolog.Logger) StoreRepository {
	return &storeRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "store").Logger(),
	}
}

// GetAll retrieves all stores.
func (r *storeRepository) GetAll(ctx context.Context) ([]model.Store, error) {
	query := `
		SELECT id, city, address, name
		FROM stores
		ORDER BY city, address
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query stores")
		return nil, fmt.Errorf("failed to query stores: %w", err)
	}
	defer rows.Close()

	var stores []model.Store
	for rows.Next() {
		var store model.Store
		if err := rows.Scan(&store.ID, &store.City, &store.Address, &store.Name); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan store row")
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, store)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating store rows")
		return nil, fmt.Errorf("error iterating stores: %w", err)
	}

	return stores, nil
}

// GetByID retrieves a single store by its ID.
func (r *storeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	query := `
		SELECT id, city, address, name
		FROM stores
		WHERE id = $1
	`

	var store model.Store
	err := r.pool.QueryRow(ctx, query, id).Scan(&store.ID, &store.City, &store.Address, &store.Name)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("store_id", id.String()).Msg("store not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("store_id", id.String()).Msg("failed to query store")
		return nil, fmt.Errorf("failed to query store: %w", err)
	}

	return &store, nil
}

// Create inserts a new store.
func (r *storeRepository) Create(ctx context.Context, store *model.Store) error {
	query := `
		INSERT INTO stores (id, city, address, name)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query, store.ID, store.City, store.Address, store.Name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			r.logger.Debug().
				Str("city", store.City).
				Str("address", store.Address).
				Str("name", store.Name).
				Msg("store already exists")
			return model.ErrStoreExists
		}
		r.logger.Error().Err(err).Str("store_id", store.ID.String()).Msg("failed to create store")
		return fmt.Errorf("failed to create store: %w", err)
	}

	r.logger.Debug().Str("store_id", store.ID.String()).Msg("store created successfully")

	return nil
}

// Delete removes a store and its dependents in one transaction: the
// coupons of its promotions, the promotions themselves, its store-scoped
// admin accounts and the store references of affiliated users. Any
// failure rolls the whole cascade back.
func (r *storeRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	steps := []string{
		`DELETE FROM coupons WHERE promotion_id IN (SELECT id FROM promotions WHERE store_id = $1)`,
		`DELETE FROM promotions WHERE store_id = $1`,
		`DELETE FROM admins WHERE store_id = $1`,
		`UPDATE users SET store_id = NULL WHERE store_id = $1`,
	}

	for _, step := range steps {
		if _, err := tx.Exec(ctx, step, id); err != nil {
			r.logger.Error().Err(err).Str("store_id", id.String()).Msg("failed to cascade store deletion")
			return false, fmt.Errorf("failed to cascade store deletion: %w", err)
		}
	}

	tag, err := tx.Exec(ctx, `DELETE FROM stores WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("store_id", id.String()).Msg("failed to delete store")
		return false, fmt.Errorf("failed to delete store: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().Str("store_id", id.String()).Msg("store not found")
		return false, nil
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("store_id", id.String()).Msg("failed to commit store deletion")
		return false, fmt.Errorf("failed to commit store deletion: %w", err)
	}

	r.logger.Info().Str("store_id", id.String()).Msg("store deleted with dependents")

	return true, nil
}
