package service

import (
	"context"
	"time"

	"promokiosk/internal/model"

	"github.com/google/uuid"
)

// StoreService defines store directory and user affiliation operations.
type StoreService interface {
	// List retrieves all stores.
	List(ctx context.Context) ([]model.Store, error)

	// Get retrieves a single store by ID.
	Get(ctx context.Context, id uuid.UUID) (*model.Store, error)

	// Create registers a new store.
	Create(ctx context.Context, req *model.StoreRequest) (*model.Store, error)

	// Delete removes a store and everything hanging off it.
	Delete(ctx context.Context, id uuid.UUID) error

	// AssignedStore returns the store the user picked, or nil.
	AssignedStore(ctx context.Context, externalUserID int64) (*model.Store, error)

	// SetAssignedStore affiliates the user with a store, creating the
	// user on first contact.
	SetAssignedStore(ctx context.Context, externalUserID int64, storeID uuid.UUID) error
}

// AdminService defines admin account operations.
type AdminService interface {
	// Create registers a new admin account.
	Create(ctx context.Context, req *model.AdminRequest) (*model.Admin, error)

	// Authenticate verifies credentials. Returns nil for an unknown
	// login or a wrong password, without distinguishing the two.
	Authenticate(ctx context.Context, login, password string) (*model.Admin, error)
}

// PromotionService defines promotion management and eligibility.
type PromotionService interface {
	// Create registers a new promotion after validating its fields.
	Create(ctx context.Context, req *model.PromotionRequest) (*model.Promotion, error)

	// Get retrieves a single promotion by ID.
	Get(ctx context.Context, id uuid.UUID) (*model.Promotion, error)

	// List retrieves promotions with per-store display indexes,
	// optionally filtered by store.
	List(ctx context.Context, storeID *uuid.UUID) ([]model.PromotionListing, error)

	// Delete removes a promotion and its coupons.
	Delete(ctx context.Context, id uuid.UUID) error

	// Eligible returns the promotions of a store that may hand out a
	// coupon as of the given date: inside their date window and not at
	// their issuance cap.
	Eligible(ctx context.Context, storeID uuid.UUID, asOf time.Time) ([]model.Promotion, error)
}

// CouponService defines the issuance and redemption engine.
type CouponService interface {
	// Issue hands the user one coupon for a randomly chosen eligible
	// promotion of their store. Rejections are model.ErrNoStoreSelected,
	// model.ErrDailyLimitReached and model.ErrNoActivePromotions.
	Issue(ctx context.Context, externalUserID int64) (*model.IssueResult, error)

	// Redeem consumes a coupon code at most once and reports the outcome.
	Redeem(ctx context.Context, code string) (*model.RedeemResult, error)

	// ListActive retrieves the user's unredeemed coupons with computed
	// expiry dates.
	ListActive(ctx context.Context, externalUserID int64) ([]model.ActiveCoupon, error)
}

// StatsService defines the read-only rollups over the coupon ledger.
type StatsService interface {
	// Overview returns the global rollup across all stores.
	Overview(ctx context.Context) (*model.GlobalStats, error)

	// Store returns the all-time rollup for one store.
	Store(ctx context.Context, storeID uuid.UUID) (*model.StoreStats, error)

	// StoresCurrentMonth returns per-store rollups for the current
	// calendar month.
	StoresCurrentMonth(ctx context.Context) ([]model.StoreMonthlyStats, error)
}
