package persistence

import (
	"context"

	"github.com/pricing/backend/internal/domain/catalog"
	"github.com/pricing/backend/internal/domain/pricing"
	"gorm.io/gorm"
)

// GormPriceUpdateUnit persists a product's new price and its ledger entry
// inside one transaction
type GormPriceUpdateUnit struct {
	db *gorm.DB
}

// NewGormPriceUpdateUnit creates a new GormPriceUpdateUnit
func NewGormPriceUpdateUnit(db *gorm.DB) *GormPriceUpdateUnit {
	return &GormPriceUpdateUnit{db: db}
}

// ApplyPriceChange saves the product and appends the ledger record.
// Either both writes commit or neither does.
func (u *GormPriceUpdateUnit) ApplyPriceChange(ctx context.Context, product *catalog.Product, record *pricing.PriceChange) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(product).Error; err != nil {
			return err
		}
		return tx.Create(record).Error
	})
}

// Ensure GormPriceUpdateUnit implements PriceUpdateUnit
var _ pricing.PriceUpdateUnit = (*GormPriceUpdateUnit)(nil)
