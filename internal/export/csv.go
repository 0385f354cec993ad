package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"promokiosk/internal/model"
)

// encodeStoresMonthlyCSV renders the per-store report as CSV. The column
// order matches what the admin dashboard shows.
func encodeStoresMonthlyCSV(stats []model.StoreMonthlyStats) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"store_id", "city", "address", "users", "active_promotions", "issued", "redeemed", "redemption_rate"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range stats {
		record := []string{
			row.StoreID.String(),
			row.City,
			row.Address,
			strconv.Itoa(row.Users),
			strconv.Itoa(row.ActivePromotions),
			strconv.Itoa(row.CurrentMonth.Issued),
			strconv.Itoa(row.CurrentMonth.Redeemed),
			strconv.FormatFloat(row.CurrentMonth.RedemptionRate, 'f', 1, 64),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buf.Bytes(), nil
}
