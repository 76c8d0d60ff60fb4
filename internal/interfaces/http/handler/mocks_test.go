package handler

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pricing/backend/internal/domain/analytics"
	"github.com/pricing/backend/internal/domain/catalog"
	"github.com/pricing/backend/internal/domain/pricing"
	"github.com/pricing/backend/internal/domain/shared"
)

// MockProductRepository implements catalog.ProductRepository for testing
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCategory(ctx context.Context, category string, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, category, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	args := m.Called(ctx, sku)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockSaleRepository implements analytics.SaleRepository for testing
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) Save(ctx context.Context, sale *analytics.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) SaveBatch(ctx context.Context, sales []*analytics.Sale) error {
	args := m.Called(ctx, sales)
	return args.Error(0)
}

func (m *MockSaleRepository) FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]analytics.Sale, error) {
	args := m.Called(ctx, productID, limit)
	return args.Get(0).([]analytics.Sale), args.Error(1)
}

func (m *MockSaleRepository) DailyVolumesSince(ctx context.Context, since time.Time) ([]analytics.DailyVolume, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]analytics.DailyVolume), args.Error(1)
}

func (m *MockSaleRepository) CategoryVolumesSince(ctx context.Context, since time.Time) ([]analytics.CategoryVolume, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]analytics.CategoryVolume), args.Error(1)
}

func (m *MockSaleRepository) UnitsSoldSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepository) UnitsSoldBetween(ctx context.Context, productID uuid.UUID, from, to time.Time) (int64, error) {
	args := m.Called(ctx, productID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepository) Totals(ctx context.Context) (analytics.Totals, error) {
	args := m.Called(ctx)
	return args.Get(0).(analytics.Totals), args.Error(1)
}

// MockPriceChangeRepository implements pricing.PriceChangeRepository for testing
type MockPriceChangeRepository struct {
	mock.Mock
}

func (m *MockPriceChangeRepository) Append(ctx context.Context, record *pricing.PriceChange) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPriceChangeRepository) FindRecentByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]pricing.PriceChange, error) {
	args := m.Called(ctx, productID, limit)
	return args.Get(0).([]pricing.PriceChange), args.Error(1)
}

func (m *MockPriceChangeRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]pricing.PriceChange, int64, error) {
	args := m.Called(ctx, productID, filter)
	return args.Get(0).([]pricing.PriceChange), args.Get(1).(int64), args.Error(2)
}

func (m *MockPriceChangeRepository) FindRecent(ctx context.Context, limit int) ([]pricing.PriceChange, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]pricing.PriceChange), args.Error(1)
}

func (m *MockPriceChangeRepository) FindSince(ctx context.Context, since time.Time) ([]pricing.PriceChange, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]pricing.PriceChange), args.Error(1)
}

func (m *MockPriceChangeRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPriceChangeRepository) CountByType(ctx context.Context, adjType pricing.AdjustmentType) (int64, error) {
	args := m.Called(ctx, adjType)
	return args.Get(0).(int64), args.Error(1)
}

// MockPriceUpdateUnit implements pricing.PriceUpdateUnit for testing
type MockPriceUpdateUnit struct {
	mock.Mock
}

func (m *MockPriceUpdateUnit) ApplyPriceChange(ctx context.Context, product *catalog.Product, record *pricing.PriceChange) error {
	args := m.Called(ctx, product, record)
	return args.Error(0)
}

// MockQuoteCache implements pricing.QuoteCache for testing
type MockQuoteCache struct {
	mock.Mock
}

func (m *MockQuoteCache) Get(ctx context.Context, sku string) (*pricing.CompetitorQuote, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.CompetitorQuote), args.Error(1)
}

func (m *MockQuoteCache) Put(ctx context.Context, quote pricing.CompetitorQuote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockQuoteCache) Stats(ctx context.Context) (pricing.CacheStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(pricing.CacheStats), args.Error(1)
}

func (m *MockQuoteCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockQuoteClient implements the live competitor feed for testing
type MockQuoteClient struct {
	mock.Mock
}

func (m *MockQuoteClient) FetchQuote(ctx context.Context, sku string) (float64, error) {
	args := m.Called(ctx, sku)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockQuoteClient) FetchQuotes(ctx context.Context, skus []string) (map[string]float64, error) {
	args := m.Called(ctx, skus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]float64), args.Error(1)
}

// MockArtifactStore implements the model artifact store for testing
type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Save(ctx context.Context, name string, data []byte) error {
	args := m.Called(ctx, name, data)
	return args.Error(0)
}

func (m *MockArtifactStore) Load(ctx context.Context, name string) ([]byte, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Test setup helpers

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func mustProduct(t *testing.T, sku, category string, base, cost float64, inventory, sales int) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(sku, sku+" product", category,
		decimal.NewFromFloat(base), decimal.NewFromFloat(cost))
	require.NoError(t, err)
	require.NoError(t, product.SetInventory(inventory))
	require.NoError(t, product.SetSalesLast30Days(sales))
	require.NoError(t, product.SetAverageRating(4.2))
	return product
}
