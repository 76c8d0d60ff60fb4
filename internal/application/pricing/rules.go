package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/pricing/backend/internal/domain/catalog"
	domain "github.com/pricing/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	lowInventoryThreshold   = 10
	maxInventoryBoost       = 0.30
	inventoryBoostPerUnit   = 0.05
	competitorGapThreshold  = 15.0
	maxCompetitorReduction  = 0.20
	competitorReductionRate = 0.01
)

// PriceDecision is the auditable outcome of one pricing run
type PriceDecision struct {
	ProductID          string                `json:"product_id"`
	SKU                string                `json:"sku"`
	OldPrice           decimal.Decimal       `json:"old_price"`
	NewPrice           decimal.Decimal       `json:"new_price"`
	SuggestedPrice     decimal.Decimal       `json:"ml_prediction"`
	CompetitorPrice    *float64              `json:"competitor_price,omitempty"`
	PriceChangePercent float64               `json:"price_change_percent"`
	ProfitMargin       float64               `json:"profit_margin"`
	AdjustmentReasons  []string              `json:"adjustment_reasons"`
	AdjustmentType     domain.AdjustmentType `json:"adjustment_type"`
	ConstraintsApplied bool                  `json:"constraints_applied"`
	PredictionSource   PredictionSource      `json:"prediction_source"`
}

// PricingRuleEngine turns an oracle suggestion into a bounded, recorded
// price change. The rule sequence is fixed: inventory boost, competitor
// reduction, bounds clamp. Each rule scales the running suggestion, so
// order matters; when several rules fire the last one's tag wins.
type PricingRuleEngine struct {
	unit   domain.PriceUpdateUnit
	logger *zap.Logger
}

// NewPricingRuleEngine creates a rule engine
func NewPricingRuleEngine(unit domain.PriceUpdateUnit, logger *zap.Logger) *PricingRuleEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PricingRuleEngine{unit: unit, logger: logger}
}

// Optimize applies the business rules to the suggested price, mutates the
// product's price, and appends a ledger record. Price mutation and record
// are persisted as one unit; on persistence failure the stored price is
// unchanged and the error is returned.
func (e *PricingRuleEngine) Optimize(ctx context.Context, product *catalog.Product, prediction PricePrediction, competitorPrice *float64) (*PriceDecision, error) {
	oldPrice := product.CurrentPrice
	suggested := prediction.Price
	reasons := []string{}
	adjType := domain.AdjustmentAIPrediction

	if product.IsLowInventory(lowInventoryThreshold) {
		boost := inventoryBoost(product.Inventory)
		suggested = suggested.Mul(decimal.NewFromFloat(1 + boost))
		reasons = append(reasons, fmt.Sprintf("Low inventory adjustment: +%.1f%%", boost*100))
		adjType = domain.AdjustmentInventoryLow
	}

	if competitorPrice != nil && *competitorPrice > 0 {
		competitor := decimal.NewFromFloat(*competitorPrice)
		gapPercent, _ := suggested.Sub(competitor).Div(competitor).Mul(decimal.NewFromInt(100)).Float64()
		if gapPercent > competitorGapThreshold {
			reduction := competitorReduction(gapPercent)
			suggested = suggested.Mul(decimal.NewFromFloat(1 - reduction))
			reasons = append(reasons, fmt.Sprintf("Competitor price adjustment: -%.1f%%", reduction*100))
			adjType = domain.AdjustmentCompetitor
		}
	}

	constrained := false
	if minPrice := product.MinPrice(); suggested.LessThan(minPrice) {
		suggested = minPrice
		constrained = true
		reasons = append(reasons, fmt.Sprintf("Minimum price constraint applied: %s", minPrice.StringFixed(2)))
	} else if maxPrice := product.MaxPrice(); suggested.GreaterThan(maxPrice) {
		suggested = maxPrice
		constrained = true
		reasons = append(reasons, fmt.Sprintf("Maximum price constraint applied: %s", maxPrice.StringFixed(2)))
	}

	newPrice := product.ApplyPrice(suggested)

	reason := strings.Join(reasons, "; ")
	record := domain.NewPriceChange(product.ID, oldPrice, newPrice, reason, adjType)
	if err := e.unit.ApplyPriceChange(ctx, product, record); err != nil {
		// roll the in-memory mutation back so callers see the stored state
		product.CurrentPrice = oldPrice
		return nil, err
	}

	changePercent := 0.0
	if !oldPrice.IsZero() {
		changePercent, _ = newPrice.Sub(oldPrice).Div(oldPrice).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	}
	margin, _ := product.ProfitMargin().Round(2).Float64()

	e.logger.Info("price optimized",
		zap.String("sku", product.SKU),
		zap.String("old_price", oldPrice.StringFixed(2)),
		zap.String("new_price", newPrice.StringFixed(2)),
		zap.String("adjustment_type", string(adjType)))

	return &PriceDecision{
		ProductID:          product.ID.String(),
		SKU:                product.SKU,
		OldPrice:           oldPrice,
		NewPrice:           newPrice,
		SuggestedPrice:     prediction.Price,
		CompetitorPrice:    competitorPrice,
		PriceChangePercent: changePercent,
		ProfitMargin:       margin,
		AdjustmentReasons:  reasons,
		AdjustmentType:     adjType,
		ConstraintsApplied: constrained,
		PredictionSource:   prediction.Source,
	}, nil
}

func inventoryBoost(inventory int) float64 {
	boost := float64(lowInventoryThreshold-inventory) * inventoryBoostPerUnit
	if boost > maxInventoryBoost {
		return maxInventoryBoost
	}
	if boost < 0 {
		return 0
	}
	return boost
}

func competitorReduction(gapPercent float64) float64 {
	reduction := (gapPercent - competitorGapThreshold) * competitorReductionRate
	if reduction > maxCompetitorReduction {
		return maxCompetitorReduction
	}
	return reduction
}
