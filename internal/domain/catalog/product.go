package catalog

import (
	"strings"
	"time"

	"github.com/pricing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Price bound multipliers. Every price mutation must land inside
// [CostPrice*minPriceFactor, BasePrice*maxPriceFactor].
var (
	minPriceFactor = decimal.NewFromFloat(1.10)
	maxPriceFactor = decimal.NewFromFloat(1.50)
)

const defaultLowInventoryThreshold = 10

// Product is the aggregate root for a priced catalog item.
// CurrentPrice is the only field the pricing engine mutates.
type Product struct {
	shared.BaseEntity
	SKU             string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name            string          `gorm:"type:varchar(100);not null"`
	Description     string          `gorm:"type:text"`
	Category        string          `gorm:"type:varchar(50);not null;index"`
	BasePrice       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CurrentPrice    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CostPrice       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Inventory       int             `gorm:"not null;default:0"`
	SalesLast30Days int             `gorm:"not null;default:0"`
	AverageRating   float64         `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product priced at its base price
func NewProduct(sku, name, category string, basePrice, costPrice decimal.Decimal) (*Product, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if !basePrice.IsPositive() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Base price must be positive")
	}
	if costPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Cost price cannot be negative")
	}

	return &Product{
		BaseEntity:   shared.NewBaseEntity(),
		SKU:          strings.ToUpper(sku),
		Name:         name,
		Category:     category,
		BasePrice:    basePrice,
		CurrentPrice: basePrice,
		CostPrice:    costPrice,
	}, nil
}

// MinPrice returns the lowest allowable price (cost + 10%)
func (p *Product) MinPrice() decimal.Decimal {
	return p.CostPrice.Mul(minPriceFactor)
}

// MaxPrice returns the highest allowable price (base price + 50%)
func (p *Product) MaxPrice() decimal.Decimal {
	return p.BasePrice.Mul(maxPriceFactor)
}

// ProfitMargin returns the current margin over cost as a percentage.
// Returns zero when the cost price is zero.
func (p *Product) ProfitMargin() decimal.Decimal {
	if p.CostPrice.IsZero() {
		return decimal.Zero
	}
	return p.CurrentPrice.Sub(p.CostPrice).
		Div(p.CostPrice).
		Mul(decimal.NewFromInt(100))
}

// IsLowInventory reports whether inventory is at or below the threshold.
// A non-positive threshold selects the default of 10 units.
func (p *Product) IsLowInventory(threshold int) bool {
	if threshold <= 0 {
		threshold = defaultLowInventoryThreshold
	}
	return p.Inventory <= threshold
}

// ClampPrice forces a candidate price into the allowed bounds.
// Clamping an in-bounds price is a no-op.
func (p *Product) ClampPrice(price decimal.Decimal) decimal.Decimal {
	if minPrice := p.MinPrice(); price.LessThan(minPrice) {
		return minPrice
	}
	if maxPrice := p.MaxPrice(); price.GreaterThan(maxPrice) {
		return maxPrice
	}
	return price
}

// ApplyPrice sets the current price, clamped into bounds and rounded to
// two decimals, and returns the price that was actually applied.
func (p *Product) ApplyPrice(price decimal.Decimal) decimal.Decimal {
	p.CurrentPrice = p.ClampPrice(price).Round(2)
	p.UpdatedAt = time.Now()
	return p.CurrentPrice
}

// WithinBounds reports whether a price satisfies the product's invariant
func (p *Product) WithinBounds(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(p.MinPrice()) && price.LessThanOrEqual(p.MaxPrice())
}

// Update updates the product's descriptive fields
func (p *Product) Update(name, description, category string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	p.Name = name
	p.Description = description
	if category != "" {
		p.Category = category
	}
	p.UpdatedAt = time.Now()
	return nil
}

// SetInventory replaces the inventory count
func (p *Product) SetInventory(units int) error {
	if units < 0 {
		return shared.NewDomainError("INVALID_INVENTORY", "Inventory cannot be negative")
	}
	p.Inventory = units
	p.UpdatedAt = time.Now()
	return nil
}

// SetSalesLast30Days replaces the trailing sales counter
func (p *Product) SetSalesLast30Days(units int) error {
	if units < 0 {
		return shared.NewDomainError("INVALID_SALES", "Sales count cannot be negative")
	}
	p.SalesLast30Days = units
	p.UpdatedAt = time.Now()
	return nil
}

// SetAverageRating replaces the average rating (0-5 scale)
func (p *Product) SetAverageRating(rating float64) error {
	if rating < 0 || rating > 5 {
		return shared.NewDomainError("INVALID_RATING", "Rating must be between 0 and 5")
	}
	p.AverageRating = rating
	p.UpdatedAt = time.Now()
	return nil
}

func validateSKU(sku string) error {
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 20 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 20 characters")
	}
	for _, r := range sku {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_SKU", "SKU can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}
