package pricing

import (
	"context"

	"github.com/google/uuid"
	"github.com/pricing/backend/internal/domain/catalog"
	domain "github.com/pricing/backend/internal/domain/pricing"
	"github.com/pricing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service is the pricing engine's front door: it wires the oracle, the
// competitor resolver, the rule engine, and the ledger behind a single
// API consumed by the HTTP layer.
type Service struct {
	products   catalog.ProductRepository
	ledger     domain.PriceChangeRepository
	unit       domain.PriceUpdateUnit
	oracle     *PriceOracle
	competitor *CompetitorPriceProvider
	engine     *PricingRuleEngine
	estimator  *ElasticityEstimator
	logger     *zap.Logger
}

// NewService creates the pricing service
func NewService(
	products catalog.ProductRepository,
	ledger domain.PriceChangeRepository,
	unit domain.PriceUpdateUnit,
	oracle *PriceOracle,
	competitor *CompetitorPriceProvider,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		products:   products,
		ledger:     ledger,
		unit:       unit,
		oracle:     oracle,
		competitor: competitor,
		engine:     NewPricingRuleEngine(unit, logger),
		estimator:  NewElasticityEstimator(ledger),
		logger:     logger,
	}
}

// OptimizeProduct runs one full pricing decision for a product: resolve
// the competitor price, ask the oracle for a suggestion, apply the rules,
// and persist the outcome.
func (s *Service) OptimizeProduct(ctx context.Context, productID uuid.UUID) (*PriceDecision, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.optimize(ctx, product)
}

func (s *Service) optimize(ctx context.Context, product *catalog.Product) (*PriceDecision, error) {
	var competitorPrice *float64
	if price, err := s.competitor.GetPrice(ctx, product.SKU); err == nil {
		competitorPrice = &price
	}

	prediction := s.oracle.Predict(ctx, product)
	return s.engine.Optimize(ctx, product, prediction, competitorPrice)
}

// BatchFailure reports one product that could not be optimized
type BatchFailure struct {
	ProductID string `json:"product_id"`
	Error     string `json:"error"`
}

// BatchResult tallies a batch optimization run
type BatchResult struct {
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Decisions []PriceDecision `json:"decisions"`
	Failures  []BatchFailure  `json:"failures"`
}

// OptimizeBatch optimizes the given products sequentially. Failures are
// isolated per item: one product's error never aborts the rest.
func (s *Service) OptimizeBatch(ctx context.Context, productIDs []uuid.UUID) (*BatchResult, error) {
	products, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	return s.optimizeAll(ctx, products), nil
}

// OptimizeAll optimizes every product in the catalog
func (s *Service) OptimizeAll(ctx context.Context) (*BatchResult, error) {
	products, err := s.products.FindAll(ctx, shared.Unpaged())
	if err != nil {
		return nil, err
	}
	return s.optimizeAll(ctx, products), nil
}

func (s *Service) optimizeAll(ctx context.Context, products []catalog.Product) *BatchResult {
	result := &BatchResult{
		Total:     len(products),
		Decisions: []PriceDecision{},
		Failures:  []BatchFailure{},
	}
	for i := range products {
		product := &products[i]
		decision, err := s.optimize(ctx, product)
		if err != nil {
			s.logger.Warn("optimization failed for product",
				zap.String("sku", product.SKU), zap.Error(err))
			result.Failed++
			result.Failures = append(result.Failures, BatchFailure{
				ProductID: product.ID.String(),
				Error:     err.Error(),
			})
			continue
		}
		result.Succeeded++
		result.Decisions = append(result.Decisions, *decision)
	}
	return result
}

// Train fits the price model on the whole catalog
func (s *Service) Train(ctx context.Context) (*TrainingReport, error) {
	products, err := s.products.FindAll(ctx, shared.Unpaged())
	if err != nil {
		return nil, err
	}
	return s.oracle.Train(ctx, products)
}

// ModelInfo returns the oracle's artifact metadata and training history
func (s *Service) ModelInfo() ModelInfo {
	return s.oracle.Info()
}

// UpdatePriceManually sets a price directly. Unlike the rule engine this
// is strict: a price outside the product's bounds is rejected, not
// clamped. The mutation and its MANUAL_ADJUSTMENT record persist as one
// unit.
func (s *Service) UpdatePriceManually(ctx context.Context, productID uuid.UUID, newPrice decimal.Decimal, reason string) (*PriceDecision, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !newPrice.IsPositive() {
		return nil, shared.ErrInvalidInput
	}
	if !product.WithinBounds(newPrice) {
		return nil, shared.ErrPriceOutOfBounds
	}

	oldPrice := product.CurrentPrice
	applied := product.ApplyPrice(newPrice)
	if reason == "" {
		reason = "Manual price update"
	}
	record := domain.NewPriceChange(product.ID, oldPrice, applied, reason, domain.AdjustmentManual)
	if err := s.unit.ApplyPriceChange(ctx, product, record); err != nil {
		product.CurrentPrice = oldPrice
		return nil, err
	}

	changePercent := 0.0
	if !oldPrice.IsZero() {
		changePercent, _ = applied.Sub(oldPrice).Div(oldPrice).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	}
	margin, _ := product.ProfitMargin().Round(2).Float64()

	return &PriceDecision{
		ProductID:          product.ID.String(),
		SKU:                product.SKU,
		OldPrice:           oldPrice,
		NewPrice:           applied,
		SuggestedPrice:     newPrice,
		PriceChangePercent: changePercent,
		ProfitMargin:       margin,
		AdjustmentReasons:  []string{reason},
		AdjustmentType:     domain.AdjustmentManual,
	}, nil
}

// History returns a product's price changes, newest first
func (s *Service) History(ctx context.Context, productID uuid.UUID, filter shared.Filter) (shared.Paginated[domain.PriceChange], error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return shared.Paginated[domain.PriceChange]{}, err
	}
	changes, total, err := s.ledger.FindByProduct(ctx, productID, filter)
	if err != nil {
		return shared.Paginated[domain.PriceChange]{}, err
	}
	return shared.NewPaginated(changes, total, filter.Page, filter.PageSize), nil
}

// Elasticity estimates a product's price elasticity from its history.
// A nil report means there is not enough history to estimate.
func (s *Service) Elasticity(ctx context.Context, productID uuid.UUID) (*ElasticityReport, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.estimator.Estimate(ctx, product)
}

// Recommendations returns advisory price suggestions for a product
func (s *Service) Recommendations(ctx context.Context, productID uuid.UUID) ([]Recommendation, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return RecommendationsFor(product), nil
}

// CompetitorComparison resolves the competitor price for one product and
// compares it against our current price.
func (s *Service) CompetitorComparison(ctx context.Context, productID uuid.UUID) (*PriceGap, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	competitorPrice, err := s.competitor.GetPrice(ctx, product.SKU)
	if err != nil {
		return nil, err
	}

	ourPrice := product.CurrentPrice.InexactFloat64()
	diff := ourPrice - competitorPrice
	return &PriceGap{
		SKU:               product.SKU,
		OurPrice:          ourPrice,
		CompetitorPrice:   competitorPrice,
		Difference:        roundCents(diff),
		DifferencePercent: roundCents(diff / competitorPrice * 100),
	}, nil
}

// MarketAnalysis compares the whole catalog against competitor prices
func (s *Service) MarketAnalysis(ctx context.Context) (*MarketAnalysis, error) {
	products, err := s.products.FindAll(ctx, shared.Unpaged())
	if err != nil {
		return nil, err
	}
	return s.competitor.MarketAnalysis(ctx, products)
}

// CompetitorPrices bulk-resolves competitor prices for the given SKUs
func (s *Service) CompetitorPrices(ctx context.Context, skus []string) (map[string]float64, error) {
	return s.competitor.GetPrices(ctx, skus)
}

// CategoryStats aggregates pricing figures per category
type CategoryStats struct {
	Count         int     `json:"count"`
	AveragePrice  float64 `json:"avg_price"`
	AverageMargin float64 `json:"avg_margin"`
	TotalSales    int     `json:"total_sales"`
}

// AnalyticsSummary is the headline block of the pricing analytics view
type AnalyticsSummary struct {
	TotalProducts        int     `json:"total_products"`
	LowInventoryProducts int     `json:"low_inventory_products"`
	AverageProfitMargin  float64 `json:"average_profit_margin"`
}

// Analytics is the pricing analytics report
type Analytics struct {
	Summary           AnalyticsSummary         `json:"summary"`
	RecentAdjustments []domain.PriceChange     `json:"recent_adjustments"`
	CategoryStats     map[string]CategoryStats `json:"category_stats"`
}

// Analytics summarizes catalog margins, low-inventory exposure, recent
// ledger activity, and per-category aggregates.
func (s *Service) Analytics(ctx context.Context) (*Analytics, error) {
	products, err := s.products.FindAll(ctx, shared.Unpaged())
	if err != nil {
		return nil, err
	}
	recent, err := s.ledger.FindRecent(ctx, 10)
	if err != nil {
		return nil, err
	}

	report := &Analytics{
		RecentAdjustments: recent,
		CategoryStats:     make(map[string]CategoryStats),
	}
	report.Summary.TotalProducts = len(products)

	var marginSum float64
	type bucket struct {
		count     int
		priceSum  float64
		marginSum float64
		sales     int
	}
	buckets := make(map[string]*bucket)
	for i := range products {
		p := &products[i]
		margin, _ := p.ProfitMargin().Float64()
		marginSum += margin
		if p.IsLowInventory(0) {
			report.Summary.LowInventoryProducts++
		}

		b := buckets[p.Category]
		if b == nil {
			b = &bucket{}
			buckets[p.Category] = b
		}
		b.count++
		b.priceSum += p.CurrentPrice.InexactFloat64()
		b.marginSum += margin
		b.sales += p.SalesLast30Days
	}
	if len(products) > 0 {
		report.Summary.AverageProfitMargin = roundCents(marginSum / float64(len(products)))
	}
	for category, b := range buckets {
		report.CategoryStats[category] = CategoryStats{
			Count:         b.count,
			AveragePrice:  roundCents(b.priceSum / float64(b.count)),
			AverageMargin: roundCents(b.marginSum / float64(b.count)),
			TotalSales:    b.sales,
		}
	}
	return report, nil
}

// CacheStats reports competitor quote cache occupancy
func (s *Service) CacheStats(ctx context.Context) (domain.CacheStats, error) {
	return s.competitor.CacheStats(ctx)
}

// InvalidateCache drops all cached competitor quotes
func (s *Service) InvalidateCache(ctx context.Context) error {
	return s.competitor.InvalidateCache(ctx)
}
