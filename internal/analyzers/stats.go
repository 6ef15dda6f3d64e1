package analyzers

import (
	"errors"
	"math"
)

// errDegenerateFeatures is returned by standardize when every feature column
// has zero variance, which leaves the clusterer nothing to work with.
var errDegenerateFeatures = errors.New("all feature columns have zero variance")

// stdDevTolerance is the relative threshold below which a column's standard
// deviation is treated as zero.
const stdDevTolerance = 1e-9

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStdDev is the n-1 estimator, matching how the temporal regularity
// metric was historically computed. Returns 0 for fewer than 2 values.
func sampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// popStdDev is the n estimator used for feature standardization.
func popStdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// standardize scales each column of rows to zero mean and unit variance.
// Columns with zero variance are centered but left unscaled; if every column
// is constant the matrix carries no signal and errDegenerateFeatures is
// returned.
func standardize(rows [][]float64) ([][]float64, error) {
	if len(rows) == 0 {
		return nil, errDegenerateFeatures
	}
	cols := len(rows[0])
	means := make([]float64, cols)
	stds := make([]float64, cols)

	col := make([]float64, len(rows))
	degenerate := true
	for j := 0; j < cols; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		means[j] = mean(col)
		stds[j] = popStdDev(col)
		// Constant columns can still carry rounding dust from the mean
		// subtraction, so compare against a relative tolerance instead of
		// exact zero.
		if stds[j] > stdDevTolerance*math.Max(math.Abs(means[j]), 1) {
			degenerate = false
		} else {
			stds[j] = 1
		}
	}
	if degenerate {
		return nil, errDegenerateFeatures
	}

	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled := make([]float64, cols)
		for j := 0; j < cols; j++ {
			scaled[j] = (row[j] - means[j]) / stds[j]
		}
		out[i] = scaled
	}
	return out, nil
}

// olsSlope fits an ordinary-least-squares line of ys against a chronological
// index 0..n-1 and returns its slope. Degenerate inputs yield 0.
func olsSlope(ys []float64) float64 {
	n := len(ys)
	if n < 2 {
		return 0
	}
	xMean := float64(n-1) / 2
	yMean := mean(ys)
	var num, den float64
	for i, y := range ys {
		dx := float64(i) - xMean
		num += dx * (y - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func euclidean(a, b []float64) float64 {
	var ss float64
	for i := range a {
		d := a[i] - b[i]
		ss += d * d
	}
	return math.Sqrt(ss)
}

// hourMode returns the most frequent value, preferring the smallest value on
// ties. Returns def when hours is empty.
func hourMode(hours []int, def int) int {
	if len(hours) == 0 {
		return def
	}
	counts := make(map[int]int, 24)
	for _, h := range hours {
		counts[h]++
	}
	best, bestCount := 0, -1
	for h := 0; h < 24; h++ {
		if c := counts[h]; c > bestCount {
			best, bestCount = h, c
		}
	}
	return best
}
