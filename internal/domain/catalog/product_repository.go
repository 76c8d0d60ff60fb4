package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/pricing/backend/internal/domain/shared"
)

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	FindByCategory(ctx context.Context, category string, filter shared.Filter) ([]Product, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}
