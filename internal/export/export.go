// Package export writes per-store stats reports to external storage.
package export

import (
	"context"

	"promokiosk/internal/model"
)

// Exporter writes a monthly per-store report and returns its location.
type Exporter interface {
	ExportStoresMonthly(ctx context.Context, asOfMonth string, stats []model.StoreMonthlyStats) (string, error)
}
