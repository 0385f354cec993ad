package service

import (
	"testing"
	"time"

	"promokiosk/internal/model"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWithinWindow(t *testing.T) {
	tests := []struct {
		name      string
		startDate string
		duration  int
		asOf      time.Time
		want      bool
	}{
		{
			name:      "day before start",
			startDate: "10.06.2025",
			duration:  5,
			asOf:      date(2025, 6, 9),
			want:      false,
		},
		{
			name:      "start day inclusive",
			startDate: "10.06.2025",
			duration:  5,
			asOf:      date(2025, 6, 10),
			want:      true,
		},
		{
			name:      "end day inclusive",
			startDate: "10.06.2025",
			duration:  5,
			asOf:      date(2025, 6, 15),
			want:      true,
		},
		{
			name:      "day after end",
			startDate: "10.06.2025",
			duration:  5,
			asOf:      date(2025, 6, 16),
			want:      false,
		},
		{
			name:      "zero duration live on start day only",
			startDate: "10.06.2025",
			duration:  0,
			asOf:      date(2025, 6, 10),
			want:      true,
		},
		{
			name:      "zero duration dead the next day",
			startDate: "10.06.2025",
			duration:  0,
			asOf:      date(2025, 6, 11),
			want:      false,
		},
		{
			name:      "ISO layout accepted",
			startDate: "2025-06-10",
			duration:  5,
			asOf:      date(2025, 6, 12),
			want:      true,
		},
		{
			name:      "time of day ignored",
			startDate: "10.06.2025",
			duration:  0,
			asOf:      time.Date(2025, 6, 10, 23, 59, 59, 0, time.UTC),
			want:      true,
		},
		{
			name:      "unparseable start date never eligible",
			startDate: "soon",
			duration:  30,
			asOf:      date(2025, 6, 10),
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, withinWindow(tt.startDate, tt.duration, tt.asOf))
		})
	}
}

func TestUnderCap(t *testing.T) {
	assert.True(t, underCap(0, 1_000_000), "zero cap means unlimited")
	assert.True(t, underCap(10, 9))
	assert.False(t, underCap(10, 10))
	assert.False(t, underCap(10, 11))
}

func TestExpiryDate(t *testing.T) {
	issued := time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, date(2025, 6, 13), expiryDate(issued, 3))
	// month rollover
	assert.Equal(t, date(2025, 7, 2), expiryDate(date(2025, 6, 29), 3))
}

func TestFilterEligible(t *testing.T) {
	asOf := date(2025, 6, 10)

	promos := []model.PromotionWithIssued{
		{Promotion: model.Promotion{Description: "live", StartDate: "09.06.2025", Duration: 5, MaxCoupons: 10}, IssuedCount: 3},
		{Promotion: model.Promotion{Description: "capped", StartDate: "09.06.2025", Duration: 5, MaxCoupons: 3}, IssuedCount: 3},
		{Promotion: model.Promotion{Description: "not started", StartDate: "11.06.2025", Duration: 5}},
		{Promotion: model.Promotion{Description: "ended", StartDate: "01.06.2025", Duration: 5}},
		{Promotion: model.Promotion{Description: "uncapped", StartDate: "2025-06-01", Duration: 30, MaxCoupons: 0}, IssuedCount: 999},
		{Promotion: model.Promotion{Description: "bad date", StartDate: "whenever", Duration: 30}},
	}

	eligible := filterEligible(promos, asOf)

	descriptions := make([]string, len(eligible))
	for i, p := range eligible {
		descriptions[i] = p.Description
	}
	assert.Equal(t, []string{"live", "uncapped"}, descriptions)
}

func TestFilterEligible_Empty(t *testing.T) {
	assert.Empty(t, filterEligible(nil, date(2025, 6, 10)))
}
