package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pricing/backend/internal/domain/catalog"
	domain "github.com/pricing/backend/internal/domain/pricing"
	"github.com/pricing/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
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

// MockPriceChangeRepository is a mock implementation of pricing.PriceChangeRepository
type MockPriceChangeRepository struct {
	mock.Mock
}

func (m *MockPriceChangeRepository) Append(ctx context.Context, record *domain.PriceChange) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPriceChangeRepository) FindRecentByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]domain.PriceChange, error) {
	args := m.Called(ctx, productID, limit)
	return args.Get(0).([]domain.PriceChange), args.Error(1)
}

func (m *MockPriceChangeRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]domain.PriceChange, int64, error) {
	args := m.Called(ctx, productID, filter)
	return args.Get(0).([]domain.PriceChange), args.Get(1).(int64), args.Error(2)
}

func (m *MockPriceChangeRepository) FindRecent(ctx context.Context, limit int) ([]domain.PriceChange, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.PriceChange), args.Error(1)
}

func (m *MockPriceChangeRepository) FindSince(ctx context.Context, since time.Time) ([]domain.PriceChange, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]domain.PriceChange), args.Error(1)
}

func (m *MockPriceChangeRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPriceChangeRepository) CountByType(ctx context.Context, adjType domain.AdjustmentType) (int64, error) {
	args := m.Called(ctx, adjType)
	return args.Get(0).(int64), args.Error(1)
}
