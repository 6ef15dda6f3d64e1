package analyzers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, mean(nil))
	assert.Equal(t, 2.0, mean([]float64{1, 2, 3}))
}

func TestSampleStdDev(t *testing.T) {
	assert.Equal(t, 0.0, sampleStdDev([]float64{5}))
	// Sample estimator divides by n-1.
	assert.InDelta(t, 1.0, sampleStdDev([]float64{1, 2, 3}), 1e-9)
}

func TestPopStdDev(t *testing.T) {
	assert.Equal(t, 0.0, popStdDev(nil))
	// Population estimator divides by n.
	assert.InDelta(t, 0.816496580927726, popStdDev([]float64{1, 2, 3}), 1e-9)
}

func TestStandardize(t *testing.T) {
	rows := [][]float64{{1, 10}, {2, 10}, {3, 10}}
	scaled, err := standardize(rows)
	assert.NoError(t, err)

	// Varying column scales to unit variance, constant column just centers.
	assert.InDelta(t, -1.224744871391589, scaled[0][0], 1e-9)
	assert.InDelta(t, 0, scaled[1][0], 1e-9)
	assert.InDelta(t, 1.224744871391589, scaled[2][0], 1e-9)
	for i := range scaled {
		assert.Equal(t, 0.0, scaled[i][1])
	}
}

func TestStandardize_Degenerate(t *testing.T) {
	_, err := standardize(nil)
	assert.ErrorIs(t, err, errDegenerateFeatures)

	_, err = standardize([][]float64{{1, 2}, {1, 2}, {1, 2}})
	assert.ErrorIs(t, err, errDegenerateFeatures)

	// 0.8 is not exactly representable, so the column's population stddev
	// comes out as ~1e-16 instead of 0. That is still a constant column.
	_, err = standardize([][]float64{{0.8, 0.3}, {0.8, 0.3}, {0.8, 0.3}})
	assert.ErrorIs(t, err, errDegenerateFeatures)
}

func TestStandardize_RoundingDustColumnIsConstant(t *testing.T) {
	rows := [][]float64{{0.8, 1}, {0.8, 2}, {0.8, 3}}
	scaled, err := standardize(rows)
	assert.NoError(t, err)

	// The constant column must center to ~0, not blow up to ~1e15 from
	// dividing by its rounding noise.
	for i := range scaled {
		assert.InDelta(t, 0, scaled[i][0], 1e-9)
	}
	assert.InDelta(t, -1.224744871391589, scaled[0][1], 1e-9)
}

func TestOLSSlope(t *testing.T) {
	assert.Equal(t, 0.0, olsSlope([]float64{0.5}))
	assert.InDelta(t, 0.3, olsSlope([]float64{0.2, 0.5, 0.8}), 1e-9)
	assert.InDelta(t, -0.3, olsSlope([]float64{0.8, 0.5, 0.2}), 1e-9)
	assert.InDelta(t, 0.0, olsSlope([]float64{0.5, 0.5, 0.5, 0.5}), 1e-9)
}

func TestClip(t *testing.T) {
	assert.Equal(t, -1.0, clip(-3, -1, 1))
	assert.Equal(t, 1.0, clip(3, -1, 1))
	assert.Equal(t, 0.4, clip(0.4, -1, 1))
}

func TestHourMode(t *testing.T) {
	assert.Equal(t, 12, hourMode(nil, 12))
	assert.Equal(t, 21, hourMode([]int{9, 21, 21}, 12))
	// Ties resolve to the smallest hour.
	assert.Equal(t, 9, hourMode([]int{21, 9}, 12))
}
