package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pricing/backend/internal/domain/catalog"
	"github.com/pricing/backend/internal/domain/shared"
	"github.com/pricing/backend/internal/mlmodel"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Artifact blob names. All three are written together on every training
// run and all three must be present to reach the trained state.
const (
	ModelBlobName    = "price_model.json"
	ScalerBlobName   = "price_scaler.json"
	MetadataBlobName = "price_metadata.json"
)

const (
	minTrainingProducts = 10
	testFraction        = 0.2
	trainingSeed        = 42
	trainingHistoryMax  = 10
)

// ArtifactStore persists named model artifact blobs. Load returns
// shared.ErrNotFound when the blob does not exist.
type ArtifactStore interface {
	Save(ctx context.Context, name string, data []byte) error
	Load(ctx context.Context, name string) ([]byte, error)
}

// TrainingMetrics are held-out evaluation results from a training run
type TrainingMetrics struct {
	MSE      float64 `json:"mse"`
	RSquared float64 `json:"r_squared"`
}

// TrainingReport summarizes a completed training run
type TrainingReport struct {
	Samples    int                `json:"samples"`
	TrainSize  int                `json:"train_size"`
	TestSize   int                `json:"test_size"`
	Metrics    TrainingMetrics    `json:"metrics"`
	Importance map[string]float64 `json:"feature_importance"`
	TrainedAt  time.Time          `json:"trained_at"`
}

// TrainingSnapshot is one entry in the bounded training history
type TrainingSnapshot struct {
	TrainedAt time.Time       `json:"trained_at"`
	Samples   int             `json:"samples"`
	Metrics   TrainingMetrics `json:"metrics"`
}

// ModelInfo describes the oracle's current state
type ModelInfo struct {
	Trained      bool               `json:"trained"`
	TrainedAt    *time.Time         `json:"trained_at,omitempty"`
	Samples      int                `json:"samples"`
	Metrics      *TrainingMetrics   `json:"metrics,omitempty"`
	FeatureNames []string           `json:"feature_names"`
	Importance   map[string]float64 `json:"feature_importance,omitempty"`
	History      []TrainingSnapshot `json:"training_history"`
}

// PredictionSource records which path produced a suggested price
type PredictionSource string

const (
	SourceModel     PredictionSource = "model"
	SourceHeuristic PredictionSource = "heuristic"
)

// PricePrediction is the oracle's suggestion for one product, always
// clamped into the product's price bounds.
type PricePrediction struct {
	Price  decimal.Decimal  `json:"price"`
	Source PredictionSource `json:"source"`
}

type modelBlob struct {
	Forest *mlmodel.Forest `json:"forest"`
	Boost  *mlmodel.Boost  `json:"boost"`
}

type metadataBlob struct {
	Classes   []string           `json:"category_classes"`
	Columns   []string           `json:"feature_columns"`
	TrainedAt time.Time          `json:"trained_at"`
	Samples   int                `json:"samples"`
	Metrics   TrainingMetrics    `json:"metrics"`
	History   []TrainingSnapshot `json:"training_history"`
}

// PriceOracle predicts an optimal price per product with a two-model tree
// ensemble, falling back to a deterministic heuristic whenever no trained
// artifact is usable. Prediction never fails.
//
// The oracle holds process-wide mutable model state and assumes a single
// writer; concurrent training requires external serialization.
type PriceOracle struct {
	extractor *FeatureExtractor
	store     ArtifactStore
	logger    *zap.Logger

	forest    *mlmodel.Forest
	boost     *mlmodel.Boost
	scaler    *mlmodel.StandardScaler
	encoder   *mlmodel.LabelEncoder
	columns   []string
	trainedAt time.Time
	samples   int
	metrics   TrainingMetrics
	history   []TrainingSnapshot
}

// NewPriceOracle creates an oracle in the untrained state
func NewPriceOracle(extractor *FeatureExtractor, store ArtifactStore, logger *zap.Logger) *PriceOracle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceOracle{
		extractor: extractor,
		store:     store,
		logger:    logger,
	}
}

// Trained reports whether a usable artifact is loaded
func (o *PriceOracle) Trained() bool {
	return o.forest != nil && o.boost != nil && o.scaler != nil && o.encoder != nil
}

// Train fits the ensemble on the supplied products and persists the
// artifact. Products whose features cannot be prepared are skipped; fewer
// than 10 usable products is a hard error and leaves the state unchanged.
func (o *PriceOracle) Train(ctx context.Context, products []catalog.Product) (*TrainingReport, error) {
	rows := make([]*Features, 0, len(products))
	targets := make([]float64, 0, len(products))
	categories := make([]string, 0, len(products))
	for i := range products {
		p := &products[i]
		features, err := o.extractor.Extract(p)
		if err != nil {
			o.logger.Debug("skipping product with unusable features",
				zap.String("sku", p.SKU), zap.Error(err))
			continue
		}
		rows = append(rows, features)
		targets = append(targets, trainingTarget(p))
		categories = append(categories, p.Category)
	}
	if len(rows) < minTrainingProducts {
		return nil, shared.ErrInsufficientTrainingData
	}

	encoder := mlmodel.FitLabelEncoder(categories)
	matrix := make([][]float64, len(rows))
	for i, features := range rows {
		code, _ := encoder.Encode(features.Category)
		matrix[i] = features.Vector(code)
	}

	trainIdx, testIdx := mlmodel.TrainTestSplit(len(matrix), testFraction, trainingSeed)
	trainX, trainY := selectRows(matrix, targets, trainIdx)
	testX, testY := selectRows(matrix, targets, testIdx)

	scaler := mlmodel.FitScaler(trainX)
	scaledTrain := scaler.TransformAll(trainX)
	scaledTest := scaler.TransformAll(testX)

	forest := mlmodel.TrainForest(scaledTrain, trainY, mlmodel.DefaultForestConfig(trainingSeed))
	boost := mlmodel.TrainBoost(scaledTrain, trainY, mlmodel.DefaultBoostConfig(trainingSeed))

	predicted := make([]float64, len(scaledTest))
	for i, row := range scaledTest {
		predicted[i] = ensemble(forest, boost, row)
	}
	metrics := TrainingMetrics{
		MSE:      mlmodel.MSE(predicted, testY),
		RSquared: mlmodel.RSquared(predicted, testY),
	}

	now := time.Now()
	o.forest = forest
	o.boost = boost
	o.scaler = scaler
	o.encoder = encoder
	o.columns = append([]string(nil), FeatureNames...)
	o.trainedAt = now
	o.samples = len(rows)
	o.metrics = metrics
	o.history = append(o.history, TrainingSnapshot{TrainedAt: now, Samples: len(rows), Metrics: metrics})
	if len(o.history) > trainingHistoryMax {
		o.history = o.history[len(o.history)-trainingHistoryMax:]
	}

	if err := o.persist(ctx); err != nil {
		return nil, fmt.Errorf("persist model artifact: %w", err)
	}

	report := &TrainingReport{
		Samples:    len(rows),
		TrainSize:  len(trainIdx),
		TestSize:   len(testIdx),
		Metrics:    metrics,
		Importance: o.featureImportance(),
		TrainedAt:  now,
	}
	o.logger.Info("price model trained",
		zap.Int("samples", report.Samples),
		zap.Float64("mse", metrics.MSE),
		zap.Float64("r_squared", metrics.RSquared))
	return report, nil
}

// Predict suggests a price for the product. When the model is trained and
// the features are usable it averages both regressors; otherwise it falls
// back to the rule-of-thumb heuristic. The result is always in bounds.
func (o *PriceOracle) Predict(ctx context.Context, p *catalog.Product) PricePrediction {
	if !o.Trained() {
		return PricePrediction{Price: o.heuristicPrice(p), Source: SourceHeuristic}
	}

	features, err := o.extractor.Extract(p)
	if err != nil {
		o.logger.Debug("falling back to heuristic pricing",
			zap.String("sku", p.SKU), zap.Error(err))
		return PricePrediction{Price: o.heuristicPrice(p), Source: SourceHeuristic}
	}

	code, known := o.encoder.Encode(features.Category)
	if !known {
		// unseen categories map to the neutral zero code
		code = 0
	}
	row := features.Vector(code)
	if len(row) != len(o.columns) {
		o.logger.Debug("artifact feature columns do not match extractor output",
			zap.Int("artifact", len(o.columns)), zap.Int("extracted", len(row)))
		return PricePrediction{Price: o.heuristicPrice(p), Source: SourceHeuristic}
	}

	raw := ensemble(o.forest, o.boost, o.scaler.Transform(row))
	price := p.ClampPrice(decimal.NewFromFloat(raw)).Round(2)
	return PricePrediction{Price: price, Source: SourceModel}
}

// Info returns artifact metadata, last metrics, and the bounded history
func (o *PriceOracle) Info() ModelInfo {
	info := ModelInfo{
		Trained:      o.Trained(),
		FeatureNames: append([]string(nil), FeatureNames...),
		History:      append([]TrainingSnapshot(nil), o.history...),
	}
	if info.Trained {
		trainedAt := o.trainedAt
		metrics := o.metrics
		info.TrainedAt = &trainedAt
		info.Samples = o.samples
		info.Metrics = &metrics
		info.Importance = o.featureImportance()
	}
	return info
}

// LoadArtifact restores the oracle from the three persisted blobs. Partial
// presence leaves the oracle untrained and returns ErrModelUnavailable.
func (o *PriceOracle) LoadArtifact(ctx context.Context) error {
	modelData, err := o.store.Load(ctx, ModelBlobName)
	if err != nil {
		return shared.ErrModelUnavailable
	}
	scalerData, err := o.store.Load(ctx, ScalerBlobName)
	if err != nil {
		return shared.ErrModelUnavailable
	}
	metaData, err := o.store.Load(ctx, MetadataBlobName)
	if err != nil {
		return shared.ErrModelUnavailable
	}

	var models modelBlob
	if err := json.Unmarshal(modelData, &models); err != nil {
		return fmt.Errorf("decode model blob: %w", err)
	}
	var scaler mlmodel.StandardScaler
	if err := json.Unmarshal(scalerData, &scaler); err != nil {
		return fmt.Errorf("decode scaler blob: %w", err)
	}
	var meta metadataBlob
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return fmt.Errorf("decode metadata blob: %w", err)
	}

	o.forest = models.Forest
	o.boost = models.Boost
	o.scaler = &scaler
	o.encoder = &mlmodel.LabelEncoder{Classes: meta.Classes}
	o.columns = meta.Columns
	o.trainedAt = meta.TrainedAt
	o.samples = meta.Samples
	o.metrics = meta.Metrics
	o.history = meta.History
	return nil
}

func (o *PriceOracle) persist(ctx context.Context) error {
	modelData, err := json.Marshal(modelBlob{Forest: o.forest, Boost: o.boost})
	if err != nil {
		return err
	}
	scalerData, err := json.Marshal(o.scaler)
	if err != nil {
		return err
	}
	metaData, err := json.Marshal(metadataBlob{
		Classes:   o.encoder.Classes,
		Columns:   o.columns,
		TrainedAt: o.trainedAt,
		Samples:   o.samples,
		Metrics:   o.metrics,
		History:   o.history,
	})
	if err != nil {
		return err
	}

	if err := o.store.Save(ctx, ModelBlobName, modelData); err != nil {
		return err
	}
	if err := o.store.Save(ctx, ScalerBlobName, scalerData); err != nil {
		return err
	}
	return o.store.Save(ctx, MetadataBlobName, metaData)
}

func (o *PriceOracle) featureImportance() map[string]float64 {
	if o.forest == nil || len(o.forest.Importance) != len(FeatureNames) {
		return nil
	}
	importance := make(map[string]float64, len(FeatureNames))
	for i, name := range FeatureNames {
		importance[name] = o.forest.Importance[i]
	}
	return importance
}

// heuristicPrice is the fallback used whenever the model cannot produce a
// prediction. It starts from the current price and applies tiered
// inventory, rating, and demand multipliers, then clamps into bounds.
// It never fails.
func (o *PriceOracle) heuristicPrice(p *catalog.Product) decimal.Decimal {
	price := p.CurrentPrice.InexactFloat64()

	switch {
	case p.Inventory < 5:
		price *= 1.20
	case p.Inventory < 10:
		price *= 1.10
	case p.Inventory > 50:
		price *= 0.95
	}

	if p.AverageRating > 4.5 {
		price *= 1.05
	} else if p.AverageRating < 3.0 {
		price *= 0.95
	}

	expectedSales := float64(p.Inventory) * 0.3
	sales := float64(p.SalesLast30Days)
	if sales > expectedSales*1.5 {
		price *= 1.05
	} else if sales < expectedSales*0.5 {
		price *= 0.95
	}

	return p.ClampPrice(decimal.NewFromFloat(price)).Round(2)
}

// trainingTarget is the synthetic optimal price used as the regression
// label: the current price scaled by bounded performance adjustments and
// clamped into the product's bounds.
func trainingTarget(p *catalog.Product) float64 {
	inventory := p.Inventory
	if inventory < 1 {
		inventory = 1
	}
	turnover := float64(p.SalesLast30Days) / float64(inventory)

	var adjustment float64
	if turnover > 1.0 {
		adjustment += 0.1
	} else if turnover < 0.3 {
		adjustment -= 0.1
	}
	if p.AverageRating > 4.0 {
		adjustment += 0.05
	} else if p.AverageRating < 3.5 {
		adjustment -= 0.05
	}
	margin := p.ProfitMargin().InexactFloat64()
	if margin < 15 {
		adjustment += 0.1
	} else if margin > 40 {
		adjustment -= 0.05
	}

	target := p.CurrentPrice.InexactFloat64() * (1 + adjustment)
	if min := p.MinPrice().InexactFloat64(); target < min {
		return min
	}
	if max := p.MaxPrice().InexactFloat64(); target > max {
		return max
	}
	return target
}

func ensemble(forest *mlmodel.Forest, boost *mlmodel.Boost, row []float64) float64 {
	return 0.5*forest.Predict(row) + 0.5*boost.Predict(row)
}

func selectRows(x [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	outX := make([][]float64, len(idx))
	outY := make([]float64, len(idx))
	for i, j := range idx {
		outX[i] = x[j]
		outY[i] = y[j]
	}
	return outX, outY
}
