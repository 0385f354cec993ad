package repository

import (
	"context"
	"errors"
	"fmt"

	"promokiosk/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// adminRepository implements the AdminRepository interface using PostgreSQL.
type adminRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAdminRepository creates a new PostgreSQL-backed admin repository.
func NewAdminRepository(pool *pgxpool.Pool, logger zerolog.Logger) AdminRepository {
	return &adminRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "admin").Logger(),
	}
}

// GetByLogin retrieves an admin account by login.
func (r *adminRepository) GetByLogin(ctx context.Context, login string) (*model.Admin, error) {
	query := `
		SELECT id, login, password_hash, role, store_id
		FROM admins
		WHERE login = $1
	`

	var admin model.Admin
	err := r.pool.QueryRow(ctx, query, login).Scan(
		&admin.ID,
		&admin.Login,
		&admin.PasswordHash,
		&admin.Role,
		&admin.StoreID,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("login", login).Msg("admin not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("login", login).Msg("failed to query admin")
		return nil, fmt.Errorf("failed to query admin: %w", err)
	}

	return &admin, nil
}

// Create inserts a new admin account.
func (r *adminRepository) Create(ctx context.Context, admin *model.Admin) error {
	query := `
		INSERT INTO admins (id, login, password_hash, role, store_id)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query, admin.ID, admin.Login, admin.PasswordHash, admin.Role, admin.StoreID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			r.logger.Debug().Str("login", admin.Login).Msg("admin login already taken")
			return model.ErrLoginTaken
		}
		r.logger.Error().Err(err).Str("login", admin.Login).Msg("failed to create admin")
		return fmt.Errorf("failed to create admin: %w", err)
	}

	r.logger.Debug().
		Str("login", admin.Login).
		Str("role", admin.Role).
		Msg("admin created successfully")

	return nil
}
