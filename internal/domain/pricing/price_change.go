package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentType categorizes why a price changed, for audit and reporting
type AdjustmentType string

const (
	AdjustmentAIPrediction AdjustmentType = "AI_PREDICTION"
	AdjustmentInventoryLow AdjustmentType = "INVENTORY_LOW"
	AdjustmentCompetitor   AdjustmentType = "COMPETITOR_PRICE"
	AdjustmentManual       AdjustmentType = "MANUAL_ADJUSTMENT"
)

// DefaultAdjustmentReason is recorded when no business rule fired
const DefaultAdjustmentReason = "AI price optimization"

// PriceChange is one immutable entry in the append-only price ledger.
// Entries are written exactly once per successful price mutation and are
// never updated afterwards.
type PriceChange struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	OldPrice         decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"old_price"`
	NewPrice         decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"new_price"`
	AdjustmentReason string          `gorm:"type:varchar(200);not null" json:"adjustment_reason"`
	AdjustmentType   AdjustmentType  `gorm:"type:varchar(50);not null;index" json:"adjustment_type"`
	Timestamp        time.Time       `gorm:"not null;index" json:"timestamp"`
}

// TableName returns the table name for GORM
func (PriceChange) TableName() string {
	return "pricing_history"
}

// NewPriceChange creates a ledger entry stamped with the current time
func NewPriceChange(productID uuid.UUID, oldPrice, newPrice decimal.Decimal, reason string, adjType AdjustmentType) *PriceChange {
	if reason == "" {
		reason = DefaultAdjustmentReason
	}
	return &PriceChange{
		ID:               uuid.New(),
		ProductID:        productID,
		OldPrice:         oldPrice,
		NewPrice:         newPrice,
		AdjustmentReason: reason,
		AdjustmentType:   adjType,
		Timestamp:        time.Now(),
	}
}

// ChangePercent returns the relative price change as a percentage.
// Returns zero when the old price is zero.
func (c *PriceChange) ChangePercent() decimal.Decimal {
	if c.OldPrice.IsZero() {
		return decimal.Zero
	}
	return c.NewPrice.Sub(c.OldPrice).
		Div(c.OldPrice).
		Mul(decimal.NewFromInt(100))
}
