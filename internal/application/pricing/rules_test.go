package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/pricing/backend/internal/domain/catalog"
	domain "github.com/pricing/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingUnit captures applied price changes, optionally failing
type recordingUnit struct {
	records []*domain.PriceChange
	err     error
}

func (u *recordingUnit) ApplyPriceChange(_ context.Context, _ *catalog.Product, record *domain.PriceChange) error {
	if u.err != nil {
		return u.err
	}
	u.records = append(u.records, record)
	return nil
}

func modelPrediction(price float64) PricePrediction {
	return PricePrediction{Price: decimal.NewFromFloat(price), Source: SourceModel}
}

func floatPtr(v float64) *float64 {
	return &v
}

func TestOptimizeInventoryThenCompetitorScenario(t *testing.T) {
	// cost 60, base 100: bounds [66, 150]; suggestion 120; inventory 3
	p := newTestProduct(t, "P001", 100, 60)
	require.NoError(t, p.SetInventory(3))

	unit := &recordingUnit{}
	engine := NewPricingRuleEngine(unit, zap.NewNop())

	decision, err := engine.Optimize(context.Background(), p, modelPrediction(120), floatPtr(100))
	require.NoError(t, err)

	// 120 * 1.30 = 156; gap vs 100 is 56% so reduction caps at 20%: 124.80
	assert.True(t, decimal.NewFromFloat(124.80).Equal(decision.NewPrice), "got %s", decision.NewPrice)
	assert.Equal(t, domain.AdjustmentCompetitor, decision.AdjustmentType)
	assert.True(t, decimal.NewFromFloat(124.80).Equal(p.CurrentPrice))
	assert.False(t, decision.ConstraintsApplied)
	assert.Len(t, decision.AdjustmentReasons, 2)

	require.Len(t, unit.records, 1)
	record := unit.records[0]
	assert.Equal(t, domain.AdjustmentCompetitor, record.AdjustmentType)
	assert.True(t, decimal.NewFromInt(100).Equal(record.OldPrice))
	assert.True(t, decimal.NewFromFloat(124.80).Equal(record.NewPrice))
	assert.Contains(t, record.AdjustmentReason, "Low inventory adjustment")
	assert.Contains(t, record.AdjustmentReason, "Competitor price adjustment")
}

func TestRuleOrderMatters(t *testing.T) {
	// inventory first then competitor yields a different price than the
	// reverse order would: 120*1.3=156 then -20% = 124.80, whereas
	// competitor first (gap 20% -> -5%) gives 114 then *1.3 = 148.20.
	p := newTestProduct(t, "P001", 100, 60)
	require.NoError(t, p.SetInventory(3))

	engine := NewPricingRuleEngine(&recordingUnit{}, zap.NewNop())
	decision, err := engine.Optimize(context.Background(), p, modelPrediction(120), floatPtr(100))
	require.NoError(t, err)

	reversed := decimal.NewFromFloat(120).
		Mul(decimal.NewFromFloat(0.95)). // competitor rule on the raw suggestion
		Mul(decimal.NewFromFloat(1.30))  // then the inventory boost
	assert.False(t, decision.NewPrice.Equal(reversed.Round(2)),
		"specified order %s must differ from reversed order %s", decision.NewPrice, reversed)
}

func TestOptimizeNoRulesFired(t *testing.T) {
	p := newTestProduct(t, "P001", 100, 60)
	require.NoError(t, p.SetInventory(30))

	unit := &recordingUnit{}
	engine := NewPricingRuleEngine(unit, zap.NewNop())

	decision, err := engine.Optimize(context.Background(), p, modelPrediction(110), nil)
	require.NoError(t, err)

	assert.Equal(t, domain.AdjustmentAIPrediction, decision.AdjustmentType)
	assert.True(t, decimal.NewFromInt(110).Equal(decision.NewPrice))
	assert.Empty(t, decision.AdjustmentReasons)
	require.Len(t, unit.records, 1)
	assert.Equal(t, domain.DefaultAdjustmentReason, unit.records[0].AdjustmentReason)
}

func TestOptimizeCompetitorRuleNeedsLargeGap(t *testing.T) {
	p := newTestProduct(t, "P001", 100, 60)
	require.NoError(t, p.SetInventory(30))

	engine := NewPricingRuleEngine(&recordingUnit{}, zap.NewNop())

	// 110 vs 100 is a 10% gap, below the 15% trigger
	decision, err := engine.Optimize(context.Background(), p, modelPrediction(110), floatPtr(100))
	require.NoError(t, err)
	assert.Equal(t, domain.AdjustmentAIPrediction, decision.AdjustmentType)
	assert.True(t, decimal.NewFromInt(110).Equal(decision.NewPrice))
}

func TestOptimizeClampsToBounds(t *testing.T) {
	p := newTestProduct(t, "P001", 100, 60)
	require.NoError(t, p.SetInventory(1))

	engine := NewPricingRuleEngine(&recordingUnit{}, zap.NewNop())

	// 130 * 1.30 = 169 exceeds the 150 cap
	decision, err := engine.Optimize(context.Background(), p, modelPrediction(130), nil)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(150).Equal(decision.NewPrice), "got %s", decision.NewPrice)
	assert.True(t, decision.ConstraintsApplied)
	assert.Equal(t, domain.AdjustmentInventoryLow, decision.AdjustmentType)
	assert.Contains(t, decision.AdjustmentReasons[len(decision.AdjustmentReasons)-1], "Maximum price constraint")
}

func TestOptimizeFloorsAtMinPrice(t *testing.T) {
	p := newTestProduct(t, "P001", 100, 60)
	require.NoError(t, p.SetInventory(30))

	engine := NewPricingRuleEngine(&recordingUnit{}, zap.NewNop())

	decision, err := engine.Optimize(context.Background(), p, modelPrediction(40), nil)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(66).Equal(decision.NewPrice), "got %s", decision.NewPrice)
	assert.True(t, decision.ConstraintsApplied)
}

func TestOptimizeRollsBackOnPersistenceFailure(t *testing.T) {
	p := newTestProduct(t, "P001", 100, 60)
	require.NoError(t, p.SetInventory(3))

	unit := &recordingUnit{err: errors.New("ledger write failed")}
	engine := NewPricingRuleEngine(unit, zap.NewNop())

	_, err := engine.Optimize(context.Background(), p, modelPrediction(120), nil)
	require.Error(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(p.CurrentPrice),
		"failed persistence must leave the price unchanged")
}
