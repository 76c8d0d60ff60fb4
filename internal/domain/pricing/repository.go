package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pricing/backend/internal/domain/catalog"
	"github.com/pricing/backend/internal/domain/shared"
)

// PriceChangeRepository is the append-only price history ledger.
// Records are returned in descending timestamp order.
type PriceChangeRepository interface {
	Append(ctx context.Context, record *PriceChange) error
	FindRecentByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]PriceChange, error)
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]PriceChange, int64, error)
	FindRecent(ctx context.Context, limit int) ([]PriceChange, error)
	FindSince(ctx context.Context, since time.Time) ([]PriceChange, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	CountByType(ctx context.Context, adjType AdjustmentType) (int64, error)
}

// PriceUpdateUnit persists a price mutation together with its ledger
// record as one atomic unit of work. When the record write fails the
// stored product price must remain unchanged.
type PriceUpdateUnit interface {
	ApplyPriceChange(ctx context.Context, product *catalog.Product, record *PriceChange) error
}
