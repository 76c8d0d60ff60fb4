package pricing

import (
	"context"
	"fmt"

	"github.com/pricing/backend/internal/domain/catalog"
)

// MarketPosition tallies how products sit relative to competitor prices
type MarketPosition struct {
	HigherPriced  int `json:"higher_priced"`
	LowerPriced   int `json:"lower_priced"`
	SimilarPriced int `json:"similar_priced"`
}

// PriceGap compares one product's price against its competitor quote
type PriceGap struct {
	SKU               string  `json:"sku"`
	OurPrice          float64 `json:"our_price"`
	CompetitorPrice   float64 `json:"competitor_price"`
	Difference        float64 `json:"difference"`
	DifferencePercent float64 `json:"difference_percent"`
}

// MarketRecommendation suggests a repricing action for one product
type MarketRecommendation struct {
	SKU      string `json:"sku"`
	Type     string `json:"type"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// MarketAnalysis is the market position report across a product set
type MarketAnalysis struct {
	TotalProducts   int                    `json:"total_products"`
	Position        MarketPosition         `json:"competitive_position"`
	PriceGaps       []PriceGap             `json:"price_differences"`
	Recommendations []MarketRecommendation `json:"recommendations"`
}

// MarketAnalysis compares every product against its resolved competitor
// price. Products land in the similar bucket within a 5% gap either way;
// gaps beyond +20% or below -15% produce repricing recommendations.
func (p *CompetitorPriceProvider) MarketAnalysis(ctx context.Context, products []catalog.Product) (*MarketAnalysis, error) {
	analysis := &MarketAnalysis{
		TotalProducts:   len(products),
		PriceGaps:       make([]PriceGap, 0, len(products)),
		Recommendations: []MarketRecommendation{},
	}

	for i := range products {
		product := &products[i]
		competitorPrice, err := p.GetPrice(ctx, product.SKU)
		if err != nil || competitorPrice <= 0 {
			continue
		}

		ourPrice := product.CurrentPrice.InexactFloat64()
		diff := ourPrice - competitorPrice
		diffPercent := diff / competitorPrice * 100

		analysis.PriceGaps = append(analysis.PriceGaps, PriceGap{
			SKU:               product.SKU,
			OurPrice:          ourPrice,
			CompetitorPrice:   competitorPrice,
			Difference:        roundCents(diff),
			DifferencePercent: roundCents(diffPercent),
		})

		switch {
		case diffPercent > 5:
			analysis.Position.HigherPriced++
		case diffPercent < -5:
			analysis.Position.LowerPriced++
		default:
			analysis.Position.SimilarPriced++
		}

		if diffPercent > 20 {
			analysis.Recommendations = append(analysis.Recommendations, MarketRecommendation{
				SKU:      product.SKU,
				Type:     "price_reduction",
				Message:  fmt.Sprintf("Consider reducing price - %.1f%% above competitor", diffPercent),
				Priority: "high",
			})
		} else if diffPercent < -15 {
			analysis.Recommendations = append(analysis.Recommendations, MarketRecommendation{
				SKU:      product.SKU,
				Type:     "price_increase",
				Message:  fmt.Sprintf("Opportunity to increase price - %.1f%% below competitor", -diffPercent),
				Priority: "medium",
			})
		}
	}

	return analysis, nil
}
