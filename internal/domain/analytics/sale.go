package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is one day's sales of a product at a given price
type Sale struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Date      time.Time       `gorm:"type:date;not null;index"`
	UnitsSold int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Revenue   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale creates a sales row; revenue is derived from units and price
func NewSale(productID uuid.UUID, date time.Time, unitsSold int, price decimal.Decimal) *Sale {
	return &Sale{
		ID:        uuid.New(),
		ProductID: productID,
		Date:      date,
		UnitsSold: unitsSold,
		Price:     price,
		Revenue:   price.Mul(decimal.NewFromInt(int64(unitsSold))),
		CreatedAt: time.Now(),
	}
}
