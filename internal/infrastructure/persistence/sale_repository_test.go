package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pricing/backend/internal/domain/analytics"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(offset int) time.Time {
	base := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func TestGormSaleRepository_SaveBatchAndFindByProduct(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	price := decimal.NewFromInt(100)
	sales := []*analytics.Sale{
		analytics.NewSale(productID, day(-2), 3, price),
		analytics.NewSale(productID, day(-1), 5, price),
		analytics.NewSale(productID, day(0), 2, price),
		analytics.NewSale(uuid.New(), day(0), 9, price),
	}
	require.NoError(t, repo.SaveBatch(ctx, sales))

	found, err := repo.FindByProduct(ctx, productID, 2)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, 2, found[0].UnitsSold, "newest first")
	assert.Equal(t, 5, found[1].UnitsSold)
}

func TestGormSaleRepository_DailyVolumesSince(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	price := decimal.NewFromInt(10)
	require.NoError(t, repo.SaveBatch(ctx, []*analytics.Sale{
		analytics.NewSale(uuid.New(), day(-1), 3, price),
		analytics.NewSale(uuid.New(), day(-1), 4, price),
		analytics.NewSale(uuid.New(), day(0), 2, price),
		analytics.NewSale(uuid.New(), day(-40), 100, price),
	}))

	volumes, err := repo.DailyVolumesSince(ctx, day(-30))
	require.NoError(t, err)
	require.Len(t, volumes, 2)
	assert.Equal(t, 7, volumes[0].Units)
	assert.Equal(t, 70.0, volumes[0].Revenue)
	assert.Equal(t, 2, volumes[1].Units)
}

func TestGormSaleRepository_CategoryVolumesSince(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	electronics := saveProduct(t, db, "P001", "Electronics", 100, 60)
	books := saveProduct(t, db, "P003", "Books", 25, 10)

	require.NoError(t, repo.SaveBatch(ctx, []*analytics.Sale{
		analytics.NewSale(electronics.ID, day(-1), 3, decimal.NewFromInt(100)),
		analytics.NewSale(electronics.ID, day(-1), 1, decimal.NewFromInt(100)),
		analytics.NewSale(books.ID, day(0), 2, decimal.NewFromInt(25)),
	}))

	volumes, err := repo.CategoryVolumesSince(ctx, day(-30))
	require.NoError(t, err)
	require.Len(t, volumes, 2)
	assert.Equal(t, "Books", volumes[0].Category)
	assert.Equal(t, 2, volumes[0].Units)
	assert.Equal(t, "Electronics", volumes[1].Category)
	assert.Equal(t, 4, volumes[1].Units)
	assert.Equal(t, 400.0, volumes[1].Revenue)
}

func TestGormSaleRepository_UnitsSold(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	price := decimal.NewFromInt(10)
	require.NoError(t, repo.SaveBatch(ctx, []*analytics.Sale{
		analytics.NewSale(productID, day(-10), 5, price),
		analytics.NewSale(productID, day(-3), 7, price),
		analytics.NewSale(uuid.New(), day(-3), 100, price),
	}))

	t.Run("since sums across products", func(t *testing.T) {
		units, err := repo.UnitsSoldSince(ctx, day(-7))
		require.NoError(t, err)
		assert.Equal(t, int64(107), units)
	})

	t.Run("between is per product with exclusive upper bound", func(t *testing.T) {
		units, err := repo.UnitsSoldBetween(ctx, productID, day(-10), day(-3))
		require.NoError(t, err)
		assert.Equal(t, int64(5), units)

		units, err = repo.UnitsSoldBetween(ctx, productID, day(-10), day(0))
		require.NoError(t, err)
		assert.Equal(t, int64(12), units)
	})

	t.Run("empty window sums to zero", func(t *testing.T) {
		units, err := repo.UnitsSoldBetween(ctx, uuid.New(), day(-10), day(0))
		require.NoError(t, err)
		assert.Equal(t, int64(0), units)
	})
}

func TestGormSaleRepository_Totals(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	t.Run("empty table", func(t *testing.T) {
		totals, err := repo.Totals(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), totals.Units)
		assert.Equal(t, int64(0), totals.Transactions)
	})

	t.Run("sums all rows", func(t *testing.T) {
		require.NoError(t, repo.SaveBatch(ctx, []*analytics.Sale{
			analytics.NewSale(uuid.New(), day(-1), 3, decimal.NewFromInt(10)),
			analytics.NewSale(uuid.New(), day(0), 4, decimal.NewFromInt(20)),
		}))

		totals, err := repo.Totals(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(7), totals.Units)
		assert.Equal(t, 110.0, totals.Revenue)
		assert.Equal(t, int64(2), totals.Transactions)
	})
}
