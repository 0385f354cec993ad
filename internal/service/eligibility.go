package service

import (
	"time"

	"promokiosk/internal/model"
)

// day returns t reduced to calendar-day granularity. Promotion windows
// and coupon expiry are compared at whole days only.
func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// withinWindow reports whether asOf falls inside the promotion date
// window, both ends inclusive: a zero-duration promotion is live exactly
// on its start day. A start date that parses in neither accepted layout
// makes the promotion silently ineligible rather than an error.
func withinWindow(startDate string, duration int, asOf time.Time) bool {
	start, ok := model.ParsePromotionDate(startDate)
	if !ok {
		return false
	}

	today := day(asOf)
	end := start.AddDate(0, 0, duration)

	return !today.Before(start) && !today.After(end)
}

// underCap reports whether the promotion may still hand out a coupon.
// Zero means no cap; the count includes redeemed coupons.
func underCap(maxCoupons, issued int) bool {
	return maxCoupons == 0 || issued < maxCoupons
}

// expiryDate computes the last day a coupon is still redeemable: the
// issuance day plus the promotion's validity window, inclusive.
func expiryDate(issuedAt time.Time, validDays int) time.Time {
	return day(issuedAt).AddDate(0, 0, validDays)
}

// filterEligible keeps the promotions that could issue a coupon as of
// the given date.
func filterEligible(promos []model.PromotionWithIssued, asOf time.Time) []model.PromotionWithIssued {
	var eligible []model.PromotionWithIssued
	for _, promo := range promos {
		if withinWindow(promo.StartDate, promo.Duration, asOf) && underCap(promo.MaxCoupons, promo.IssuedCount) {
			eligible = append(eligible, promo)
		}
	}
	return eligible
}
