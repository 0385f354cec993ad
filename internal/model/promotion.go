package model

import (
	"time"

	"github.com/google/uuid"
)

// Start dates arrive from admins in day-first form but some historic rows
// carry ISO dates, so both layouts must parse.
const (
	DateLayoutDayFirst = "02.01.2006"
	DateLayoutISO      = "2006-01-02"
)

// Promotion represents a store-defined offer. All fields are fixed at
// creation; there is no update operation.
//
// StartDate is kept as the raw text it was created with. MaxCoupons of
// zero means no issuance cap. ValidDays is how long an issued coupon
// stays redeemable. StartsToday controls whether the benefit may be
// shown to the owner on the issuance day or only from the next day on;
// it never gates redemption.
type Promotion struct {
	ID          uuid.UUID `json:"id" db:"id"`
	StoreID     uuid.UUID `json:"storeId" db:"store_id"`
	Description string    `json:"description" db:"description"`
	StartDate   string    `json:"startDate" db:"start_date"`
	Duration    int       `json:"duration" db:"duration"`
	MaxCoupons  int       `json:"maxCoupons" db:"max_coupons"`
	ValidDays   int       `json:"validDays" db:"valid_days"`
	StartsToday bool      `json:"startsToday" db:"starts_today"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// ParseStartDate parses the promotion's start date, trying the day-first
// layout before ISO. The ok result is false when neither layout matches.
func (p *Promotion) ParseStartDate() (time.Time, bool) {
	return ParsePromotionDate(p.StartDate)
}

// ParsePromotionDate parses a promotion start date in either accepted layout.
func ParsePromotionDate(s string) (time.Time, bool) {
	if t, err := time.Parse(DateLayoutDayFirst, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(DateLayoutISO, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// PromotionWithIssued pairs a promotion with the number of coupons ever
// issued against it, redeemed or not.
type PromotionWithIssued struct {
	Promotion
	IssuedCount int `json:"issuedCount" db:"issued_count"`
}

// PromotionWindow is the date window of a promotion, used for
// active-promotion counting in stats.
type PromotionWindow struct {
	StartDate string `db:"start_date"`
	Duration  int    `db:"duration"`
}

// PromotionListing is a promotion decorated with its per-store ordinal
// position, used only for admin-facing display and deletion prompts.
type PromotionListing struct {
	Promotion
	DisplayIndex int `json:"displayIndex"`
}

// PromotionRequest represents the request payload for creating a promotion.
type PromotionRequest struct {
	StoreID     uuid.UUID `json:"storeId"`
	Description string    `json:"description"`
	StartDate   string    `json:"startDate"`
	Duration    int       `json:"duration"`
	MaxCoupons  int       `json:"maxCoupons"`
	ValidDays   int       `json:"validDays"`
	StartsToday bool      `json:"startsToday"`
}
