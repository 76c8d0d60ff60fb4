package mlmodel

import "math/rand"

// BoostConfig controls gradient boosting
type BoostConfig struct {
	Trees        int     `json:"trees"`
	LearningRate float64 `json:"learning_rate"`
	MaxDepth     int     `json:"max_depth"`
	MinLeafSize  int     `json:"min_leaf_size"`
	Seed         int64   `json:"seed"`
}

// DefaultBoostConfig mirrors the boosted ensemble used for price training
func DefaultBoostConfig(seed int64) BoostConfig {
	return BoostConfig{
		Trees:        100,
		LearningRate: 0.1,
		MaxDepth:     3,
		MinLeafSize:  2,
		Seed:         seed,
	}
}

// Boost is a gradient-boosted ensemble of shallow regression trees fit on
// squared-error residuals.
type Boost struct {
	Config  BoostConfig       `json:"config"`
	Base    float64           `json:"base"`
	Members []*RegressionTree `json:"members"`
}

// TrainBoost fits the boosted ensemble. Each stage fits a shallow tree to
// the residuals of the running prediction.
func TrainBoost(x [][]float64, y []float64, cfg BoostConfig) *Boost {
	params := treeParams{
		maxDepth:    cfg.MaxDepth,
		minLeafSize: cfg.MinLeafSize,
	}

	var base float64
	for _, v := range y {
		base += v
	}
	base /= float64(len(y))

	idx := make([]int, len(x))
	current := make([]float64, len(y))
	residual := make([]float64, len(y))
	for i := range y {
		idx[i] = i
		current[i] = base
	}

	members := make([]*RegressionTree, cfg.Trees)
	for m := 0; m < cfg.Trees; m++ {
		for i := range y {
			residual[i] = y[i] - current[i]
		}

		rng := rand.New(rand.NewSource(cfg.Seed + int64(m)))
		tree := &RegressionTree{
			Root: growTree(x, residual, idx, 0, params, rng, nil),
		}
		members[m] = tree

		for i := range y {
			current[i] += cfg.LearningRate * tree.Predict(x[i])
		}
	}

	return &Boost{Config: cfg, Base: base, Members: members}
}

// Predict sums the base value and the scaled stage predictions
func (b *Boost) Predict(row []float64) float64 {
	pred := b.Base
	for _, tree := range b.Members {
		pred += b.Config.LearningRate * tree.Predict(row)
	}
	return pred
}
