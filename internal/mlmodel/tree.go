// Package mlmodel implements the regression models behind the price
// oracle: CART regression trees, a bagged tree ensemble, and a
// gradient-boosted tree ensemble. All training is driven by explicit
// seeds so that identical inputs produce identical models, and all
// model state serializes to JSON for artifact persistence.
package mlmodel

import (
	"math"
	"math/rand"
	"sort"
)

// TreeNode is one node of a regression tree. Leaf nodes have Feature == -1
// and carry the prediction in Value.
type TreeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Value     float64   `json:"value"`
	Left      *TreeNode `json:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty"`
}

// RegressionTree is a CART tree fit by variance reduction
type RegressionTree struct {
	Root *TreeNode `json:"root"`
}

// Predict walks the tree for a single feature row
func (t *RegressionTree) Predict(row []float64) float64 {
	node := t.Root
	for node.Feature >= 0 {
		if row[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// treeParams controls tree growth
type treeParams struct {
	maxDepth    int
	minLeafSize int
	maxFeatures int // features sampled per split; 0 means all
}

// growTree builds a tree over the rows selected by idx. Importance gains
// (SSE reduction per feature) are accumulated into imp when non-nil.
func growTree(x [][]float64, y []float64, idx []int, depth int, p treeParams, rng *rand.Rand, imp []float64) *TreeNode {
	if depth >= p.maxDepth || len(idx) < 2*p.minLeafSize {
		return leaf(y, idx)
	}

	feature, threshold, gain, ok := bestSplit(x, y, idx, p, rng)
	if !ok {
		return leaf(y, idx)
	}
	if imp != nil {
		imp[feature] += gain
	}

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      growTree(x, y, left, depth+1, p, rng, imp),
		Right:     growTree(x, y, right, depth+1, p, rng, imp),
	}
}

func leaf(y []float64, idx []int) *TreeNode {
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return &TreeNode{Feature: -1, Value: sum / float64(len(idx))}
}

// bestSplit finds the (feature, threshold) pair minimizing the summed
// squared error of both children. Candidate features are optionally
// subsampled for bagged ensembles.
func bestSplit(x [][]float64, y []float64, idx []int, p treeParams, rng *rand.Rand) (int, float64, float64, bool) {
	numFeatures := len(x[idx[0]])

	features := make([]int, numFeatures)
	for i := range features {
		features[i] = i
	}
	if p.maxFeatures > 0 && p.maxFeatures < numFeatures {
		rng.Shuffle(numFeatures, func(i, j int) {
			features[i], features[j] = features[j], features[i]
		})
		features = features[:p.maxFeatures]
	}

	parentSSE := sseOf(y, idx)

	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0
	found := false

	order := make([]int, len(idx))
	for _, feature := range features {
		copy(order, idx)
		f := feature
		sort.Slice(order, func(a, b int) bool {
			return x[order[a]][f] < x[order[b]][f]
		})

		// prefix sums over the sorted rows
		var sumL, sumSqL float64
		sumR, sumSqR := momentsOf(y, order)

		for split := 1; split < len(order); split++ {
			yi := y[order[split-1]]
			sumL += yi
			sumSqL += yi * yi
			sumR -= yi
			sumSqR -= yi * yi

			prev := x[order[split-1]][f]
			cur := x[order[split]][f]
			if prev == cur {
				continue
			}
			if split < p.minLeafSize || len(order)-split < p.minLeafSize {
				continue
			}

			nL := float64(split)
			nR := float64(len(order) - split)
			sse := (sumSqL - sumL*sumL/nL) + (sumSqR - sumR*sumR/nR)
			gain := parentSSE - sse
			if gain > bestGain+1e-12 {
				bestGain = gain
				bestFeature = f
				bestThreshold = (prev + cur) / 2
				found = true
			}
		}
	}

	return bestFeature, bestThreshold, bestGain, found
}

func sseOf(y []float64, idx []int) float64 {
	var sum, sumSq float64
	for _, i := range idx {
		sum += y[i]
		sumSq += y[i] * y[i]
	}
	n := float64(len(idx))
	sse := sumSq - sum*sum/n
	if sse < 0 || math.IsNaN(sse) {
		return 0
	}
	return sse
}

func momentsOf(y []float64, idx []int) (sum, sumSq float64) {
	for _, i := range idx {
		sum += y[i]
		sumSq += y[i] * y[i]
	}
	return sum, sumSq
}
