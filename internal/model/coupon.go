package model

import (
	"time"

	"github.com/google/uuid"
)

// Coupon represents one issuance of a promotion to one user. The code is
// unique across every coupon ever issued. Redeemed transitions false→true
// exactly once; RedeemedAt stays nil until then.
type Coupon struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"userId" db:"user_id"`
	PromotionID uuid.UUID  `json:"promotionId" db:"promotion_id"`
	Code        string     `json:"code" db:"code"`
	IssuedAt    time.Time  `json:"issuedAt" db:"issued_at"`
	Redeemed    bool       `json:"redeemed" db:"redeemed"`
	RedeemedAt  *time.Time `json:"redeemedAt,omitempty" db:"redeemed_at"`
}

// IssueRequest represents the request payload for issuing a coupon.
type IssueRequest struct {
	ExternalUserID int64 `json:"externalUserId"`
}

// IssueResult is the receipt returned for a freshly issued coupon,
// denormalised so the caller can render a confirmation without further
// lookups.
type IssueResult struct {
	Code         string    `json:"code"`
	Description  string    `json:"description"`
	StoreAddress string    `json:"storeAddress"`
	IssuedOn     time.Time `json:"issuedOn"`
	ValidUntil   time.Time `json:"validUntil"`
	ValidDays    int       `json:"validDays"`
	StartsToday  bool      `json:"startsToday"`
}

// RedeemRequest represents the request payload for redeeming a coupon code.
type RedeemRequest struct {
	Code string `json:"code"`
}

// RedemptionStatus is the outcome of a redemption attempt.
type RedemptionStatus string

const (
	// RedemptionNotFound covers malformed codes, codes never issued and
	// codes already redeemed; replaying a redeemed code always lands here.
	RedemptionNotFound RedemptionStatus = "not_found"
	RedemptionExpired  RedemptionStatus = "expired"
	RedemptionSuccess  RedemptionStatus = "success"
)

// RedeemResult is the outcome of a redemption attempt. Receipt is set
// only when Status is RedemptionSuccess.
type RedeemResult struct {
	Status  RedemptionStatus `json:"status"`
	Receipt *Receipt         `json:"receipt,omitempty"`
}

// Receipt carries the denormalised data a cashier-facing front end needs
// to confirm a redemption and notify the coupon's owner.
type Receipt struct {
	Code            string `json:"code"`
	Description     string `json:"description"`
	StoreName       string `json:"storeName"`
	StoreAddress    string `json:"storeAddress"`
	StoreCity       string `json:"storeCity"`
	OwnerExternalID int64  `json:"ownerExternalId"`
}

// ActiveCoupon is an unredeemed coupon as shown to its owner, with the
// computed expiry date and the start-availability flag of its promotion.
type ActiveCoupon struct {
	Code        string    `json:"code"`
	Description string    `json:"description"`
	IssuedOn    time.Time `json:"issuedOn"`
	ValidUntil  time.Time `json:"validUntil"`
	StartsToday bool      `json:"startsToday"`
}

// ActiveCouponRow is the raw joined row behind ActiveCoupon, before the
// expiry date is computed.
type ActiveCouponRow struct {
	Code        string
	Description string
	IssuedAt    time.Time
	ValidDays   int
	StartsToday bool
}

// RedemptionCandidate is the joined row the redemption engine works on:
// the unredeemed coupon plus the promotion, store and owner it resolves to.
type RedemptionCandidate struct {
	CouponID        uuid.UUID
	Code            string
	IssuedAt        time.Time
	ValidDays       int
	Description     string
	StoreName       string
	StoreAddress    string
	StoreCity       string
	OwnerExternalID int64
}
