package mlmodel

import "gonum.org/v1/gonum/stat"

// MSE returns the mean squared error of predictions against targets
func MSE(predicted, actual []float64) float64 {
	var sum float64
	for i := range predicted {
		d := predicted[i] - actual[i]
		sum += d * d
	}
	return sum / float64(len(predicted))
}

// RSquared returns the coefficient of determination. A constant target
// yields zero rather than a division by zero.
func RSquared(predicted, actual []float64) float64 {
	mean := stat.Mean(actual, nil)

	var ssRes, ssTot float64
	for i := range actual {
		r := actual[i] - predicted[i]
		ssRes += r * r
		t := actual[i] - mean
		ssTot += t * t
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// TrainTestSplit deterministically shuffles row indices with the given
// seed and splits them with the given test fraction. The test slice is
// never empty when there are at least two rows.
func TrainTestSplit(n int, testFraction float64, seed int64) (train, test []int) {
	idx := shuffledIndices(n, seed)

	testSize := int(float64(n) * testFraction)
	if testSize < 1 && n >= 2 {
		testSize = 1
	}
	return idx[testSize:], idx[:testSize]
}

func shuffledIndices(n int, seed int64) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng := newSeededRand(seed)
	rng.Shuffle(n, func(i, j int) {
		idx[i], idx[j] = idx[j], idx[i]
	})
	return idx
}
