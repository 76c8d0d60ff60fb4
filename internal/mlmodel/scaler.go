package mlmodel

import "math"

// StandardScaler centers features to zero mean and unit variance.
// Statistics are fit on training data only and reapplied verbatim at
// inference time.
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitScaler computes per-column mean and standard deviation.
// Constant columns get a standard deviation of 1 so scaling stays defined.
func FitScaler(x [][]float64) *StandardScaler {
	numFeatures := len(x[0])
	n := float64(len(x))

	mean := make([]float64, numFeatures)
	for _, row := range x {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= n
	}

	std := make([]float64, numFeatures)
	for _, row := range x {
		for j, v := range row {
			d := v - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] == 0 {
			std[j] = 1
		}
	}

	return &StandardScaler{Mean: mean, Std: std}
}

// Transform scales a single row into a new slice
func (s *StandardScaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out
}

// TransformAll scales a full matrix into a new one
func (s *StandardScaler) TransformAll(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		out[i] = s.Transform(row)
	}
	return out
}
