package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pricing/backend/internal/domain/analytics"
	"gorm.io/gorm"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// Save creates or updates a sales row
func (r *GormSaleRepository) Save(ctx context.Context, sale *analytics.Sale) error {
	return r.db.WithContext(ctx).Save(sale).Error
}

// SaveBatch creates multiple sales rows
func (r *GormSaleRepository) SaveBatch(ctx context.Context, sales []*analytics.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(sales, 200).Error
}

// FindByProduct returns the newest sales rows for a product
func (r *GormSaleRepository) FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]analytics.Sale, error) {
	var sales []analytics.Sale
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("date DESC").
		Limit(limit).
		Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// DailyVolumesSince aggregates units and revenue per day, oldest first
func (r *GormSaleRepository) DailyVolumesSince(ctx context.Context, since time.Time) ([]analytics.DailyVolume, error) {
	var volumes []analytics.DailyVolume
	if err := r.db.WithContext(ctx).
		Model(&analytics.Sale{}).
		Select("date, SUM(units_sold) AS units, SUM(revenue) AS revenue").
		Where("date >= ?", since).
		Group("date").
		Order("date ASC").
		Scan(&volumes).Error; err != nil {
		return nil, err
	}
	return volumes, nil
}

// CategoryVolumesSince aggregates units and revenue per category and day,
// oldest first within each category
func (r *GormSaleRepository) CategoryVolumesSince(ctx context.Context, since time.Time) ([]analytics.CategoryVolume, error) {
	var volumes []analytics.CategoryVolume
	if err := r.db.WithContext(ctx).
		Model(&analytics.Sale{}).
		Select("products.category AS category, sales.date AS date, SUM(sales.units_sold) AS units, SUM(sales.revenue) AS revenue").
		Joins("JOIN products ON products.id = sales.product_id").
		Where("sales.date >= ?", since).
		Group("products.category, sales.date").
		Order("products.category ASC, sales.date ASC").
		Scan(&volumes).Error; err != nil {
		return nil, err
	}
	return volumes, nil
}

// UnitsSoldSince sums units sold at or after the given time
func (r *GormSaleRepository) UnitsSoldSince(ctx context.Context, since time.Time) (int64, error) {
	var units int64
	if err := r.db.WithContext(ctx).
		Model(&analytics.Sale{}).
		Select("COALESCE(SUM(units_sold), 0)").
		Where("date >= ?", since).
		Scan(&units).Error; err != nil {
		return 0, err
	}
	return units, nil
}

// UnitsSoldBetween sums units sold for a product in [from, to)
func (r *GormSaleRepository) UnitsSoldBetween(ctx context.Context, productID uuid.UUID, from, to time.Time) (int64, error) {
	var units int64
	if err := r.db.WithContext(ctx).
		Model(&analytics.Sale{}).
		Select("COALESCE(SUM(units_sold), 0)").
		Where("product_id = ? AND date >= ? AND date < ?", productID, from, to).
		Scan(&units).Error; err != nil {
		return 0, err
	}
	return units, nil
}

// Totals returns whole-table units, revenue, and row counts
func (r *GormSaleRepository) Totals(ctx context.Context) (analytics.Totals, error) {
	var totals analytics.Totals
	if err := r.db.WithContext(ctx).
		Model(&analytics.Sale{}).
		Select("COALESCE(SUM(units_sold), 0) AS units, COALESCE(SUM(revenue), 0) AS revenue, COUNT(*) AS transactions").
		Scan(&totals).Error; err != nil {
		return analytics.Totals{}, err
	}
	return totals, nil
}

// Ensure GormSaleRepository implements SaleRepository
var _ analytics.SaleRepository = (*GormSaleRepository)(nil)
