package model

import "github.com/google/uuid"

// CouponCounts is a simple issued/redeemed rollup with the redemption
// rate as a percentage rounded to one decimal place (0 when nothing was
// issued).
type CouponCounts struct {
	Issued         int     `json:"issued"`
	Redeemed       int     `json:"redeemed"`
	RedemptionRate float64 `json:"redemptionRate"`
}

// GlobalStats is the master-admin overview across all stores.
type GlobalStats struct {
	TotalStores      int          `json:"totalStores"`
	ActivePromotions int          `json:"activePromotions"`
	TotalUsers       int          `json:"totalUsers"`
	AllTime          CouponCounts `json:"allTime"`
	CurrentMonth     CouponCounts `json:"currentMonth"`
}

// StoreStats is the all-time rollup for a single store.
type StoreStats struct {
	Store   Store        `json:"store"`
	AllTime CouponCounts `json:"allTime"`
}

// StoreMonthlyStats is the current-month rollup for a single store, as
// shown in the master admin's per-store listing.
type StoreMonthlyStats struct {
	StoreID          uuid.UUID    `json:"storeId"`
	City             string       `json:"city"`
	Address          string       `json:"address"`
	Users            int          `json:"users"`
	ActivePromotions int          `json:"activePromotions"`
	CurrentMonth     CouponCounts `json:"currentMonth"`
}
