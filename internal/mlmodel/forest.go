package mlmodel

import "math/rand"

// ForestConfig controls bagged ensemble training
type ForestConfig struct {
	Trees       int   `json:"trees"`
	MaxDepth    int   `json:"max_depth"`
	MinLeafSize int   `json:"min_leaf_size"`
	Seed        int64 `json:"seed"`
}

// DefaultForestConfig mirrors the ensemble size used for price training
func DefaultForestConfig(seed int64) ForestConfig {
	return ForestConfig{
		Trees:       100,
		MaxDepth:    12,
		MinLeafSize: 2,
		Seed:        seed,
	}
}

// Forest is a bagged ensemble of regression trees. Each tree is fit on a
// bootstrap sample with per-split feature subsampling.
type Forest struct {
	Config     ForestConfig      `json:"config"`
	Members    []*RegressionTree `json:"members"`
	Importance []float64         `json:"importance"`
}

// TrainForest fits a bagged ensemble. Training is fully determined by the
// seed carried in cfg.
func TrainForest(x [][]float64, y []float64, cfg ForestConfig) *Forest {
	numFeatures := len(x[0])
	maxFeatures := numFeatures / 3
	if maxFeatures < 1 {
		maxFeatures = 1
	}
	params := treeParams{
		maxDepth:    cfg.MaxDepth,
		minLeafSize: cfg.MinLeafSize,
		maxFeatures: maxFeatures,
	}

	importance := make([]float64, numFeatures)
	members := make([]*RegressionTree, cfg.Trees)
	for m := 0; m < cfg.Trees; m++ {
		rng := rand.New(rand.NewSource(cfg.Seed + int64(m)))

		sample := make([]int, len(x))
		for i := range sample {
			sample[i] = rng.Intn(len(x))
		}

		members[m] = &RegressionTree{
			Root: growTree(x, y, sample, 0, params, rng, importance),
		}
	}

	normalize(importance)
	return &Forest{Config: cfg, Members: members, Importance: importance}
}

// Predict averages the member trees' predictions
func (f *Forest) Predict(row []float64) float64 {
	var sum float64
	for _, tree := range f.Members {
		sum += tree.Predict(row)
	}
	return sum / float64(len(f.Members))
}

func normalize(values []float64) {
	var total float64
	for _, v := range values {
		total += v
	}
	if total == 0 {
		return
	}
	for i := range values {
		values[i] /= total
	}
}
