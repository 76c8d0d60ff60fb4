package pricing

import (
	"github.com/pricing/backend/internal/domain/catalog"
	"github.com/pricing/backend/internal/domain/shared"
)

// FeatureNames lists the model inputs in training order. The order is
// baked into every trained artifact and must not change between training
// and inference.
var FeatureNames = []string{
	"base_price",
	"cost_price",
	"inventory",
	"sales_last_30_days",
	"average_rating",
	"category",
	"current_price",
	"inventory_ratio",
	"price_to_cost_ratio",
	"profit_margin",
	"demand_indicator",
	"rating_impact",
	"month",
	"is_holiday_season",
	"is_summer",
	"category_price_position",
}

// categoryColumn is the index of the label-encoded category feature
const categoryColumn = 5

var categoryAveragePrices = map[string]float64{
	"Electronics": 150,
	"Apparel":     80,
	"Home":        60,
	"Books":       25,
	"Luxury":      300,
}

const defaultCategoryAveragePrice = 100

// CategoryAveragePrice returns the reference average price for a category,
// falling back to the default for unknown categories.
func CategoryAveragePrice(category string) float64 {
	if avg, ok := categoryAveragePrices[category]; ok {
		return avg
	}
	return defaultCategoryAveragePrice
}

// Features is an extracted feature row. The category is kept as a string
// because the integer code depends on the encoder fitted at training time.
type Features struct {
	Category string
	values   []float64
}

// Vector returns the numeric row with the given category code filled in
func (f *Features) Vector(categoryCode int) []float64 {
	row := make([]float64, len(f.values))
	copy(row, f.values)
	row[categoryColumn] = float64(categoryCode)
	return row
}

// FeatureExtractor turns a product snapshot into the model's input row.
// The clock supplies the calendar month for the seasonal features.
type FeatureExtractor struct {
	clock Clock
}

// NewFeatureExtractor creates a feature extractor
func NewFeatureExtractor(clock Clock) *FeatureExtractor {
	if clock == nil {
		clock = SystemClock{}
	}
	return &FeatureExtractor{clock: clock}
}

// Extract builds the feature row for a product. A non-positive cost price
// makes the ratio features undefined and fails with ErrFeaturePreparation;
// the failure is not retryable for that product.
func (e *FeatureExtractor) Extract(p *catalog.Product) (*Features, error) {
	cost := p.CostPrice.InexactFloat64()
	if cost <= 0 {
		return nil, shared.ErrFeaturePreparation
	}

	base := p.BasePrice.InexactFloat64()
	current := p.CurrentPrice.InexactFloat64()
	inventory := float64(p.Inventory)
	sales := float64(p.SalesLast30Days)
	rating := p.AverageRating

	salesFloor := sales
	if salesFloor < 1 {
		salesFloor = 1
	}
	inventoryFloor := inventory
	if inventoryFloor < 1 {
		inventoryFloor = 1
	}

	month := float64(e.clock.Now().Month())
	holiday := 0.0
	if month == 11 || month == 12 {
		holiday = 1
	}
	summer := 0.0
	if month >= 6 && month <= 8 {
		summer = 1
	}

	return &Features{
		Category: p.Category,
		values: []float64{
			base,
			cost,
			inventory,
			sales,
			rating,
			0, // category code, filled in by Vector
			current,
			inventory / salesFloor,
			current / cost,
			(current - cost) / cost * 100,
			sales / inventoryFloor,
			(rating - 3.0) * 10,
			month,
			holiday,
			summer,
			current / CategoryAveragePrice(p.Category),
		},
	}, nil
}
