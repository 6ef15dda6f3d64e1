package analyzers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDBSCAN_SingleCluster(t *testing.T) {
	points := [][]float64{{0}, {0.1}, {0.2}}
	labels := dbscan(points, 0.5, 3)

	assert.Equal(t, []int{0, 0, 0}, labels)
}

func TestDBSCAN_NoisePoint(t *testing.T) {
	points := [][]float64{{0}, {0.1}, {0.2}, {10}}
	labels := dbscan(points, 0.5, 3)

	assert.Equal(t, []int{0, 0, 0, dbscanNoise}, labels)
}

func TestDBSCAN_TwoClustersInDiscoveryOrder(t *testing.T) {
	points := [][]float64{{0}, {0.1}, {0.2}, {10}, {10.1}, {10.2}}
	labels := dbscan(points, 0.5, 3)

	assert.Equal(t, []int{0, 0, 0, 1, 1, 1}, labels)
}

func TestDBSCAN_BorderPointJoinsCluster(t *testing.T) {
	// 0.65 is within eps of 0.2 only, so its own neighborhood is sparse; it
	// is a border point, claimed by the dense cluster that reaches it.
	points := [][]float64{{0.65}, {0}, {0.1}, {0.2}}
	labels := dbscan(points, 0.5, 3)

	assert.Equal(t, 0, labels[1])
	assert.Equal(t, 0, labels[2])
	assert.Equal(t, 0, labels[3])
	assert.Equal(t, 0, labels[0])
}

func TestDBSCAN_MinPtsCountsThePointItself(t *testing.T) {
	// Two mutual neighbors: neighborhood size 2 including self, below 3.
	points := [][]float64{{0}, {0.1}}
	labels := dbscan(points, 0.5, 3)
	assert.Equal(t, []int{dbscanNoise, dbscanNoise}, labels)

	// With minPts 2 the pair is dense.
	labels = dbscan(points, 0.5, 2)
	assert.Equal(t, []int{0, 0}, labels)
}

func TestDBSCAN_Deterministic(t *testing.T) {
	points := [][]float64{{0}, {0.1}, {5}, {5.1}, {0.2}, {5.2}}
	first := dbscan(points, 0.5, 3)
	second := dbscan(points, 0.5, 3)

	assert.Equal(t, first, second)
}
