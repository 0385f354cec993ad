package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"promokiosk/internal/database"
	"promokiosk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	poolConfig.MaxConns = 20

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	// Create schema
	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"coupons", "promotions", "admins", "users", "stores"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// SeedStore inserts a store and returns its ID.
func SeedStore(t *testing.T, pool *pgxpool.Pool, city, address, name string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		"INSERT INTO stores (id, city, address, name) VALUES ($1, $2, $3, $4)",
		id, city, address, name,
	)
	if err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
	return id
}

// SeedUser inserts a user affiliated with the given store.
func SeedUser(t *testing.T, pool *pgxpool.Pool, externalID int64, storeID uuid.UUID) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		"INSERT INTO users (id, external_id, store_id) VALUES ($1, $2, $3)",
		id, externalID, storeID,
	)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return id
}

// SeedPromotion inserts a promotion and returns its ID. The start date
// is today in day-first form, so the promotion is live immediately.
func SeedPromotion(t *testing.T, pool *pgxpool.Pool, storeID uuid.UUID, description string, duration, maxCoupons, validDays int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	startDate := time.Now().UTC().Format(model.DateLayoutDayFirst)
	_, err := pool.Exec(context.Background(),
		`INSERT INTO promotions (id, store_id, description, start_date, duration, max_coupons, valid_days, starts_today)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)`,
		id, storeID, description, startDate, duration, maxCoupons, validDays,
	)
	if err != nil {
		t.Fatalf("failed to seed promotion: %v", err)
	}
	return id
}

// SeedAdmin inserts an admin account with a bcrypt-hashed password.
func SeedAdmin(t *testing.T, pool *pgxpool.Pool, login, password, role string, storeID *uuid.UUID) uuid.UUID {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	id := uuid.New()
	_, err = pool.Exec(context.Background(),
		"INSERT INTO admins (id, login, password_hash, role, store_id) VALUES ($1, $2, $3, $4, $5)",
		id, login, string(hash), role, storeID,
	)
	if err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}
	return id
}
