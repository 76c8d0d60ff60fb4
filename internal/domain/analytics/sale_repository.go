package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DailyVolume is aggregated units and revenue for one day
type DailyVolume struct {
	Date    time.Time `json:"date"`
	Units   int       `json:"units_sold"`
	Revenue float64   `json:"revenue"`
}

// CategoryVolume is aggregated units and revenue for one category and day
type CategoryVolume struct {
	Category string    `json:"category"`
	Date     time.Time `json:"date"`
	Units    int       `json:"units_sold"`
	Revenue  float64   `json:"revenue"`
}

// Totals are whole-table sales aggregates
type Totals struct {
	Units        int64   `json:"total_units"`
	Revenue      float64 `json:"total_revenue"`
	Transactions int64   `json:"total_transactions"`
}

// SaleRepository defines persistence operations for sales rows
type SaleRepository interface {
	Save(ctx context.Context, sale *Sale) error
	SaveBatch(ctx context.Context, sales []*Sale) error
	FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]Sale, error)
	DailyVolumesSince(ctx context.Context, since time.Time) ([]DailyVolume, error)
	CategoryVolumesSince(ctx context.Context, since time.Time) ([]CategoryVolume, error)
	UnitsSoldSince(ctx context.Context, since time.Time) (int64, error)
	UnitsSoldBetween(ctx context.Context, productID uuid.UUID, from, to time.Time) (int64, error)
	Totals(ctx context.Context) (Totals, error)
}
