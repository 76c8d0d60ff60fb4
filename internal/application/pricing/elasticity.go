package pricing

import (
	"context"
	"math"

	"github.com/pricing/backend/internal/domain/catalog"
	domain "github.com/pricing/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

const elasticityWindow = 5

var categorySensitivity = map[string]float64{
	"Electronics": -1.2,
	"Apparel":     -0.8,
	"Home":        -0.5,
	"Books":       -1.5,
	"Luxury":      -0.3,
}

const defaultCategorySensitivity = -1.0

// ElasticityReport classifies a product's price sensitivity from its
// recent price history.
type ElasticityReport struct {
	Elasticity       float64 `json:"elasticity"`
	Interpretation   string  `json:"interpretation"`
	PriceSensitivity string  `json:"price_sensitivity"`
	SamplePairs      int     `json:"sample_pairs"`
}

// ElasticityEstimator derives a demand-elasticity proxy from the ledger.
// Real sales correlation is out of reach here, so demand change is
// estimated from rating and category sensitivity.
type ElasticityEstimator struct {
	ledger domain.PriceChangeRepository
}

// NewElasticityEstimator creates an estimator over the given ledger
func NewElasticityEstimator(ledger domain.PriceChangeRepository) *ElasticityEstimator {
	return &ElasticityEstimator{ledger: ledger}
}

// Estimate computes the average elasticity over the product's most recent
// price changes. It returns nil (no report) when fewer than two ledger
// records exist or no pair has a non-zero price change.
func (e *ElasticityEstimator) Estimate(ctx context.Context, product *catalog.Product) (*ElasticityReport, error) {
	changes, err := e.ledger.FindRecentByProduct(ctx, product.ID, elasticityWindow)
	if err != nil {
		return nil, err
	}
	if len(changes) < 2 {
		return nil, nil
	}

	demandChange := estimateDemandChange(product)

	var total float64
	var pairs int
	for i := 0; i < len(changes)-1; i++ {
		newer := changes[i]
		older := changes[i+1]
		if older.NewPrice.IsZero() {
			continue
		}
		priceChange, _ := newer.NewPrice.Sub(older.NewPrice).
			Div(older.NewPrice).Mul(decimal.NewFromInt(100)).Float64()
		if priceChange == 0 {
			continue
		}
		total += demandChange / priceChange
		pairs++
	}
	if pairs == 0 {
		return nil, nil
	}

	avg := total / float64(pairs)
	return &ElasticityReport{
		Elasticity:       math.Round(avg*1000) / 1000,
		Interpretation:   interpretElasticity(avg),
		PriceSensitivity: sensitivityBucket(avg),
		SamplePairs:      pairs,
	}, nil
}

// estimateDemandChange is a proxy for demand response: highly rated
// products tolerate price moves better, and some categories are more
// price sensitive than others.
func estimateDemandChange(product *catalog.Product) float64 {
	var change float64
	if product.AverageRating > 4.0 {
		change += 5
	} else if product.AverageRating < 3.0 {
		change -= 5
	}

	sensitivity, ok := categorySensitivity[product.Category]
	if !ok {
		sensitivity = defaultCategorySensitivity
	}
	return change + sensitivity*2
}

func interpretElasticity(avg float64) string {
	if math.Abs(avg) > 1 {
		return "elastic"
	}
	return "inelastic"
}

func sensitivityBucket(avg float64) string {
	abs := math.Abs(avg)
	switch {
	case abs > 1.5:
		return "high"
	case abs > 0.5:
		return "medium"
	default:
		return "low"
	}
}
