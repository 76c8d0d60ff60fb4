package pricing

import (
	"fmt"

	"github.com/pricing/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

const (
	maxRecommendedIncrease   = 0.20
	increasePerMissingUnit   = 0.03
	lowMarginThreshold       = 20.0
	targetMargin             = 25.0
	clearanceInventory       = 50
	maxClearanceDiscount     = 0.15
	clearanceDiscountPerUnit = 0.002
)

// Recommendation is one advisory repricing suggestion. Unlike the rule
// engine it never mutates the product.
type Recommendation struct {
	Type             string          `json:"type"`
	Reason           string          `json:"reason"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	RecommendedPrice decimal.Decimal `json:"recommended_price"`
	ExpectedImpact   string          `json:"expected_impact"`
	Priority         string          `json:"priority"`
}

// RecommendationsFor analyzes a product's inventory and margin position
// and suggests price moves that stay inside its bounds. Suggestions that
// would leave the bounds are dropped rather than clamped.
func RecommendationsFor(product *catalog.Product) []Recommendation {
	recommendations := []Recommendation{}
	minPrice := product.MinPrice()
	maxPrice := product.MaxPrice()
	margin, _ := product.ProfitMargin().Float64()

	if product.IsLowInventory(0) {
		increase := float64(10-product.Inventory) * increasePerMissingUnit
		if increase > maxRecommendedIncrease {
			increase = maxRecommendedIncrease
		}
		newPrice := product.CurrentPrice.Mul(decimal.NewFromFloat(1 + increase)).Round(2)
		if newPrice.LessThanOrEqual(maxPrice) {
			recommendations = append(recommendations, Recommendation{
				Type:             "inventory_adjustment",
				Reason:           fmt.Sprintf("Low inventory (%d units)", product.Inventory),
				CurrentPrice:     product.CurrentPrice,
				RecommendedPrice: newPrice,
				ExpectedImpact:   fmt.Sprintf("+%.1f%% price increase", increase*100),
				Priority:         "high",
			})
		}
	}

	if margin < lowMarginThreshold {
		targetPrice := product.CostPrice.Mul(decimal.NewFromFloat(1 + targetMargin/100)).Round(2)
		if targetPrice.LessThanOrEqual(maxPrice) && targetPrice.GreaterThanOrEqual(minPrice) {
			recommendations = append(recommendations, Recommendation{
				Type:             "margin_optimization",
				Reason:           fmt.Sprintf("Low profit margin (%.1f%%)", margin),
				CurrentPrice:     product.CurrentPrice,
				RecommendedPrice: targetPrice,
				ExpectedImpact:   fmt.Sprintf("Target %.0f%% profit margin", targetMargin),
				Priority:         "medium",
			})
		}
	}

	if product.Inventory > clearanceInventory {
		discount := float64(product.Inventory-clearanceInventory) * clearanceDiscountPerUnit
		if discount > maxClearanceDiscount {
			discount = maxClearanceDiscount
		}
		newPrice := product.CurrentPrice.Mul(decimal.NewFromFloat(1 - discount)).Round(2)
		if newPrice.GreaterThanOrEqual(minPrice) {
			recommendations = append(recommendations, Recommendation{
				Type:             "inventory_clearance",
				Reason:           fmt.Sprintf("High inventory (%d units)", product.Inventory),
				CurrentPrice:     product.CurrentPrice,
				RecommendedPrice: newPrice,
				ExpectedImpact:   fmt.Sprintf("-%.1f%% price decrease to move inventory", discount*100),
				Priority:         "low",
			})
		}
	}

	return recommendations
}
