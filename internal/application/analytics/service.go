package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	appcatalog "github.com/pricing/backend/internal/application/catalog"
	"github.com/pricing/backend/internal/domain/analytics"
	"github.com/pricing/backend/internal/domain/catalog"
	"github.com/pricing/backend/internal/domain/pricing"
	"github.com/pricing/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	criticalInventoryMax = 5
	lowInventoryMax      = 20
	impactWindowDays     = 7
	recentChangesLimit   = 10
	topProductsLimit     = 10
)

// Service computes reporting views over products, sales, and the price
// change ledger.
type Service struct {
	products catalog.ProductRepository
	sales    analytics.SaleRepository
	ledger   pricing.PriceChangeRepository
	logger   *zap.Logger
}

// NewService creates the analytics service
func NewService(products catalog.ProductRepository, sales analytics.SaleRepository, ledger pricing.PriceChangeRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		products: products,
		sales:    sales,
		ledger:   ledger,
		logger:   logger,
	}
}

// DashboardSummary is the headline metrics block
type DashboardSummary struct {
	TotalProducts     int     `json:"total_products"`
	TotalSales        int64   `json:"total_sales"`
	TotalRevenue      float64 `json:"total_revenue"`
	LowInventoryCount int     `json:"low_inventory_count"`
	RecentSales7Days  int64   `json:"recent_sales_7_days"`
}

// CategoryPerformance aggregates catalog figures per category
type CategoryPerformance struct {
	Category     string  `json:"category"`
	ProductCount int     `json:"product_count"`
	AveragePrice float64 `json:"avg_price"`
	TotalSales   int     `json:"total_sales"`
}

// Dashboard is the full dashboard payload
type Dashboard struct {
	Summary             DashboardSummary             `json:"summary"`
	CategoryPerformance []CategoryPerformance        `json:"category_performance"`
	TopProducts         []appcatalog.ProductResponse `json:"top_products"`
	RecentPriceChanges  []pricing.PriceChange        `json:"recent_pricing_changes"`
}

// Dashboard builds the overview: totals, low-inventory exposure, recent
// volume, per-category aggregates, top sellers, and recent ledger entries.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	products, err := s.products.FindAll(ctx, shared.Unpaged())
	if err != nil {
		return nil, err
	}
	totals, err := s.sales.Totals(ctx)
	if err != nil {
		return nil, err
	}
	weekAgo := time.Now().AddDate(0, 0, -7)
	recentUnits, err := s.sales.UnitsSoldSince(ctx, weekAgo)
	if err != nil {
		return nil, err
	}
	recentChanges, err := s.ledger.FindRecent(ctx, recentChangesLimit)
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{
		Summary: DashboardSummary{
			TotalProducts:    len(products),
			TotalSales:       totals.Units,
			TotalRevenue:     round2(totals.Revenue),
			RecentSales7Days: recentUnits,
		},
		RecentPriceChanges: recentChanges,
	}

	type bucket struct {
		count    int
		priceSum float64
		sales    int
	}
	buckets := make(map[string]*bucket)
	for i := range products {
		p := &products[i]
		if p.IsLowInventory(0) {
			dashboard.Summary.LowInventoryCount++
		}
		b := buckets[p.Category]
		if b == nil {
			b = &bucket{}
			buckets[p.Category] = b
		}
		b.count++
		b.priceSum += p.CurrentPrice.InexactFloat64()
		b.sales += p.SalesLast30Days
	}
	for category, b := range buckets {
		dashboard.CategoryPerformance = append(dashboard.CategoryPerformance, CategoryPerformance{
			Category:     category,
			ProductCount: b.count,
			AveragePrice: round2(b.priceSum / float64(b.count)),
			TotalSales:   b.sales,
		})
	}
	sort.Slice(dashboard.CategoryPerformance, func(i, j int) bool {
		return dashboard.CategoryPerformance[i].Category < dashboard.CategoryPerformance[j].Category
	})

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].SalesLast30Days > products[j].SalesLast30Days
	})
	limit := topProductsLimit
	if limit > len(products) {
		limit = len(products)
	}
	dashboard.TopProducts = make([]appcatalog.ProductResponse, limit)
	for i := 0; i < limit; i++ {
		dashboard.TopProducts[i] = appcatalog.ToProductResponse(&products[i])
	}
	return dashboard, nil
}

// SalesTrends is the time-series view of sales volume
type SalesTrends struct {
	DailySales     []analytics.DailyVolume            `json:"daily_sales"`
	CategoryTrends map[string][]analytics.DailyVolume `json:"category_trends"`
}

// SalesTrends aggregates daily sales for the trailing window, overall and
// per category. A non-positive day count defaults to 30.
func (s *Service) SalesTrends(ctx context.Context, days int) (*SalesTrends, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	daily, err := s.sales.DailyVolumesSince(ctx, since)
	if err != nil {
		return nil, err
	}
	perCategory, err := s.sales.CategoryVolumesSince(ctx, since)
	if err != nil {
		return nil, err
	}

	trends := &SalesTrends{
		DailySales:     daily,
		CategoryTrends: make(map[string][]analytics.DailyVolume),
	}
	for _, row := range perCategory {
		trends.CategoryTrends[row.Category] = append(trends.CategoryTrends[row.Category], analytics.DailyVolume{
			Date:    row.Date,
			Units:   row.Units,
			Revenue: row.Revenue,
		})
	}
	return trends, nil
}

// CategoryInventory is the per-category inventory distribution
type CategoryInventory struct {
	Category         string  `json:"category"`
	TotalInventory   int     `json:"total_inventory"`
	AverageInventory float64 `json:"avg_inventory"`
	ProductCount     int     `json:"product_count"`
}

// InventoryAnalysis groups products by stock pressure and turnover
type InventoryAnalysis struct {
	Critical          []appcatalog.ProductResponse `json:"critical"`
	Low               []appcatalog.ProductResponse `json:"low"`
	NormalCount       int                          `json:"normal_count"`
	HighTurnover      []appcatalog.ProductResponse `json:"high_turnover"`
	SlowMoving        []appcatalog.ProductResponse `json:"slow_moving"`
	CategoryInventory []CategoryInventory          `json:"category_inventory"`
}

// InventoryAnalysis classifies the catalog by inventory level (critical
// at 5 or fewer units, low up to 20) and by turnover relative to stock.
func (s *Service) InventoryAnalysis(ctx context.Context) (*InventoryAnalysis, error) {
	products, err := s.products.FindAll(ctx, shared.Unpaged())
	if err != nil {
		return nil, err
	}

	analysis := &InventoryAnalysis{
		Critical:     []appcatalog.ProductResponse{},
		Low:          []appcatalog.ProductResponse{},
		HighTurnover: []appcatalog.ProductResponse{},
		SlowMoving:   []appcatalog.ProductResponse{},
	}

	type bucket struct {
		total int
		count int
	}
	buckets := make(map[string]*bucket)
	for i := range products {
		p := &products[i]
		response := appcatalog.ToProductResponse(p)

		switch {
		case p.Inventory <= criticalInventoryMax:
			analysis.Critical = append(analysis.Critical, response)
		case p.Inventory <= lowInventoryMax:
			analysis.Low = append(analysis.Low, response)
		default:
			analysis.NormalCount++
		}

		sales := float64(p.SalesLast30Days)
		inventory := float64(p.Inventory)
		if sales > inventory*0.5 {
			analysis.HighTurnover = append(analysis.HighTurnover, response)
		} else if sales < inventory*0.1 {
			analysis.SlowMoving = append(analysis.SlowMoving, response)
		}

		b := buckets[p.Category]
		if b == nil {
			b = &bucket{}
			buckets[p.Category] = b
		}
		b.total += p.Inventory
		b.count++
	}
	for category, b := range buckets {
		analysis.CategoryInventory = append(analysis.CategoryInventory, CategoryInventory{
			Category:         category,
			TotalInventory:   b.total,
			AverageInventory: round2(float64(b.total) / float64(b.count)),
			ProductCount:     b.count,
		})
	}
	sort.Slice(analysis.CategoryInventory, func(i, j int) bool {
		return analysis.CategoryInventory[i].Category < analysis.CategoryInventory[j].Category
	})
	return analysis, nil
}

// PriceChangeImpact correlates one ledger entry with surrounding sales
type PriceChangeImpact struct {
	ProductID          string              `json:"product_id"`
	ProductName        string              `json:"product_name"`
	PriceChange        pricing.PriceChange `json:"price_change"`
	SalesBefore        int64               `json:"sales_before"`
	SalesAfter         int64               `json:"sales_after"`
	SalesImpact        int64               `json:"sales_impact"`
	SalesImpactPercent float64             `json:"sales_impact_percent"`
}

// PricingImpact measures unit sales in the week before and after each
// price change of the trailing 30 days. Changes whose product no longer
// exists are skipped.
func (s *Service) PricingImpact(ctx context.Context) ([]PriceChangeImpact, error) {
	since := time.Now().AddDate(0, 0, -30)
	changes, err := s.ledger.FindSince(ctx, since)
	if err != nil {
		return nil, err
	}

	impacts := []PriceChangeImpact{}
	for _, change := range changes {
		product, err := s.products.FindByID(ctx, change.ProductID)
		if err != nil {
			s.logger.Debug("skipping price change for missing product",
				zap.String("product_id", change.ProductID.String()))
			continue
		}

		before := change.Timestamp.AddDate(0, 0, -impactWindowDays)
		after := change.Timestamp.AddDate(0, 0, impactWindowDays)
		salesBefore, err := s.sales.UnitsSoldBetween(ctx, product.ID, before, change.Timestamp)
		if err != nil {
			return nil, err
		}
		salesAfter, err := s.sales.UnitsSoldBetween(ctx, product.ID, change.Timestamp, after)
		if err != nil {
			return nil, err
		}

		impact := PriceChangeImpact{
			ProductID:   product.ID.String(),
			ProductName: product.Name,
			PriceChange: change,
			SalesBefore: salesBefore,
			SalesAfter:  salesAfter,
			SalesImpact: salesAfter - salesBefore,
		}
		if salesBefore > 0 {
			impact.SalesImpactPercent = round2(float64(salesAfter-salesBefore) / float64(salesBefore) * 100)
		}
		impacts = append(impacts, impact)
	}
	return impacts, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
