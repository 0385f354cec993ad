package repository

import (
	"context"
	"time"

	"promokiosk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository defines the interface for user data access operations.
type UserRepository interface {
	// GetByExternalID retrieves a user by their external chat-platform ID.
	GetByExternalID(ctx context.Context, externalID int64) (*model.User, error)

	// SetStore assigns a store to the user identified by externalID,
	// creating the user row on first contact.
	SetStore(ctx context.Context, externalID int64, storeID uuid.UUID) (*model.User, error)
}

// StoreRepository defines the interface for store data access operations.
type StoreRepository interface {
	// GetAll retrieves all stores.
	GetAll(ctx context.Context) ([]model.Store, error)

	// GetByID retrieves a single store by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Store, error)

	// Create inserts a new store. Returns model.ErrStoreExists when the
	// (city, address, name) triple is already taken.
	Create(ctx context.Context, store *model.Store) error

	// Delete removes a store together with its promotions, their coupons
	// and its store-scoped admins, and clears the store reference of
	// affiliated users. The whole cascade runs in one transaction.
	// Returns false when no store with the given ID exists.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// AdminRepository defines the interface for admin account data access.
type AdminRepository interface {
	// GetByLogin retrieves an admin account by login.
	GetByLogin(ctx context.Context, login string) (*model.Admin, error)

	// Create inserts a new admin account. Returns model.ErrLoginTaken
	// when the login is already in use.
	Create(ctx context.Context, admin *model.Admin) error
}

// PromotionRepository defines the interface for promotion data access.
type PromotionRepository interface {
	// GetByID retrieves a single promotion by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Promotion, error)

	// Create inserts a new promotion.
	Create(ctx context.Context, promotion *model.Promotion) error

	// List retrieves promotions, optionally filtered by store, each
	// decorated with its per-store ordinal display index.
	List(ctx context.Context, storeID *uuid.UUID) ([]model.PromotionListing, error)

	// GetByStoreWithIssued retrieves a store's promotions together with
	// the number of coupons ever issued against each.
	GetByStoreWithIssued(ctx context.Context, storeID uuid.UUID) ([]model.PromotionWithIssued, error)

	// Delete removes a promotion and its coupons in one transaction.
	// Returns false when no promotion with the given ID exists.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// CouponRepository defines the interface for coupon data access. The
// transactional methods take an explicit pgx.Tx so the service layer can
// wrap the whole check-then-act sequence of issuance or redemption in a
// single transaction.
type CouponRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// LockUserByExternalID retrieves the user row for update, serialising
	// concurrent issuance attempts by the same user.
	LockUserByExternalID(ctx context.Context, tx pgx.Tx, externalID int64) (*model.User, error)

	// HasCouponOnDay reports whether the user already has any coupon,
	// redeemed or not, issued on the given calendar day.
	HasCouponOnDay(ctx context.Context, tx pgx.Tx, userID uuid.UUID, day time.Time) (bool, error)

	// StorePromotionsWithIssued retrieves a store's promotions with
	// per-promotion issued counts inside the issuance transaction.
	StorePromotionsWithIssued(ctx context.Context, tx pgx.Tx, storeID uuid.UUID) ([]model.PromotionWithIssued, error)

	// CountIssuedLocked locks the promotion row for update and returns
	// the number of coupons ever issued against it, so a cap can be
	// re-checked without racing concurrent issuances.
	CountIssuedLocked(ctx context.Context, tx pgx.Tx, promotionID uuid.UUID) (int, error)

	// Insert persists a new coupon. Returns false without error when the
	// code is already taken, so the caller can retry with a fresh code.
	Insert(ctx context.Context, tx pgx.Tx, coupon *model.Coupon) (bool, error)

	// FindForRedemption retrieves the unredeemed coupon with the given
	// code, locked for update and joined with its promotion, store and
	// owner. Returns nil when no such coupon exists.
	FindForRedemption(ctx context.Context, tx pgx.Tx, code string) (*model.RedemptionCandidate, error)

	// MarkRedeemed flips the coupon to redeemed at the given time.
	MarkRedeemed(ctx context.Context, tx pgx.Tx, couponID uuid.UUID, redeemedAt time.Time) error

	// ListActiveByExternalID retrieves the user's unredeemed coupons with
	// the promotion data needed to render them.
	ListActiveByExternalID(ctx context.Context, externalID int64) ([]model.ActiveCouponRow, error)
}

// StatsRepository defines the read-only aggregations over the coupon
// ledger used by the stats service.
type StatsRepository interface {
	// CountStores returns the total number of stores.
	CountStores(ctx context.Context) (int, error)

	// CountUsers returns the number of users, optionally scoped to the
	// users affiliated with one store.
	CountUsers(ctx context.Context, storeID *uuid.UUID) (int, error)

	// CouponCounts returns issued and redeemed coupon counts, optionally
	// scoped to one store and/or to the calendar month containing month.
	CouponCounts(ctx context.Context, storeID *uuid.UUID, month *time.Time) (issued, redeemed int, err error)

	// PromotionWindows returns the date windows of all promotions,
	// optionally scoped to one store, for active-promotion counting.
	PromotionWindows(ctx context.Context, storeID *uuid.UUID) ([]model.PromotionWindow, error)
}
