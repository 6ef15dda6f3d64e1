package analyzers

import (
	"math"
	"math/rand"
)

// isolationForest scores rows by how quickly random axis-aligned splits
// isolate them: anomalies sit in sparse regions and are isolated in short
// paths. Seeded so that identical inputs always produce identical scores.
type isolationForest struct {
	trees      int
	sampleSize int
	seed       int64
}

type isoNode struct {
	attr  int
	split float64
	left  *isoNode
	right *isoNode
	size  int // leaf only
}

func newIsolationForest(trees int, seed int64) *isolationForest {
	return &isolationForest{trees: trees, sampleSize: 256, seed: seed}
}

// scores returns one anomaly score in (0,1) per row; higher means more
// anomalous.
func (f *isolationForest) scores(rows [][]float64) []float64 {
	n := len(rows)
	if n == 0 {
		return nil
	}
	sample := f.sampleSize
	if sample > n {
		sample = n
	}
	maxDepth := int(math.Ceil(math.Log2(float64(sample)))) + 1

	rng := rand.New(rand.NewSource(f.seed))
	forest := make([]*isoNode, f.trees)
	for t := range forest {
		idx := rng.Perm(n)[:sample]
		subset := make([][]float64, sample)
		for i, j := range idx {
			subset[i] = rows[j]
		}
		forest[t] = buildIsoTree(subset, 0, maxDepth, rng)
	}

	norm := avgPathLength(sample)
	out := make([]float64, n)
	for i, row := range rows {
		var total float64
		for _, tree := range forest {
			total += pathLength(tree, row, 0)
		}
		avg := total / float64(len(forest))
		out[i] = math.Pow(2, -avg/norm)
	}
	return out
}

func buildIsoTree(rows [][]float64, depth, maxDepth int, rng *rand.Rand) *isoNode {
	if len(rows) <= 1 || depth >= maxDepth {
		return &isoNode{size: len(rows), attr: -1}
	}

	cols := len(rows[0])
	// Only attributes that still vary within this partition can split it.
	var splittable []int
	for j := 0; j < cols; j++ {
		lo, hi := rows[0][j], rows[0][j]
		for _, r := range rows {
			if r[j] < lo {
				lo = r[j]
			}
			if r[j] > hi {
				hi = r[j]
			}
		}
		if hi > lo {
			splittable = append(splittable, j)
		}
	}
	if len(splittable) == 0 {
		return &isoNode{size: len(rows), attr: -1}
	}

	attr := splittable[rng.Intn(len(splittable))]
	lo, hi := rows[0][attr], rows[0][attr]
	for _, r := range rows {
		if r[attr] < lo {
			lo = r[attr]
		}
		if r[attr] > hi {
			hi = r[attr]
		}
	}
	split := lo + rng.Float64()*(hi-lo)

	var left, right [][]float64
	for _, r := range rows {
		if r[attr] < split {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &isoNode{size: len(rows), attr: -1}
	}

	return &isoNode{
		attr:  attr,
		split: split,
		left:  buildIsoTree(left, depth+1, maxDepth, rng),
		right: buildIsoTree(right, depth+1, maxDepth, rng),
	}
}

func pathLength(node *isoNode, row []float64, depth float64) float64 {
	if node.attr < 0 {
		return depth + avgPathLength(node.size)
	}
	if row[node.attr] < node.split {
		return pathLength(node.left, row, depth+1)
	}
	return pathLength(node.right, row, depth+1)
}

// avgPathLength is the expected path length of an unsuccessful BST search in
// a tree of n points, the standard normalization term for isolation forests.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	if n == 2 {
		return 1
	}
	h := math.Log(float64(n-1)) + 0.5772156649
	return 2*h - 2*float64(n-1)/float64(n)
}
