package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pricing/backend/internal/domain/pricing"
	"github.com/pricing/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPriceChangeRepository implements PriceChangeRepository using GORM.
// Ledger entries are append-only; there is no update or delete path.
type GormPriceChangeRepository struct {
	db *gorm.DB
}

// NewGormPriceChangeRepository creates a new GormPriceChangeRepository
func NewGormPriceChangeRepository(db *gorm.DB) *GormPriceChangeRepository {
	return &GormPriceChangeRepository{db: db}
}

// Append adds a ledger entry
func (r *GormPriceChangeRepository) Append(ctx context.Context, record *pricing.PriceChange) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindRecentByProduct returns the newest entries for a product, newest first
func (r *GormPriceChangeRepository) FindRecentByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]pricing.PriceChange, error) {
	var records []pricing.PriceChange
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindByProduct returns a page of entries for a product, newest first,
// together with the total entry count for that product
func (r *GormPriceChangeRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]pricing.PriceChange, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&pricing.PriceChange{}).
		Where("product_id = ?", productID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("timestamp DESC")
	if !filter.Unpaged() {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}

	var records []pricing.PriceChange
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// FindRecent returns the newest entries across all products
func (r *GormPriceChangeRepository) FindRecent(ctx context.Context, limit int) ([]pricing.PriceChange, error) {
	var records []pricing.PriceChange
	if err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindSince returns all entries at or after the given time, oldest first
func (r *GormPriceChangeRepository) FindSince(ctx context.Context, since time.Time) ([]pricing.PriceChange, error) {
	var records []pricing.PriceChange
	if err := r.db.WithContext(ctx).
		Where("timestamp >= ?", since).
		Order("timestamp ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// CountSince counts entries at or after the given time
func (r *GormPriceChangeRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&pricing.PriceChange{}).
		Where("timestamp >= ?", since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByType counts entries with the given adjustment type
func (r *GormPriceChangeRepository) CountByType(ctx context.Context, adjType pricing.AdjustmentType) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&pricing.PriceChange{}).
		Where("adjustment_type = ?", adjType).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormPriceChangeRepository implements PriceChangeRepository
var _ pricing.PriceChangeRepository = (*GormPriceChangeRepository)(nil)
