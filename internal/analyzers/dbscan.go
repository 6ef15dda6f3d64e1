package analyzers

// dbscanNoise is the cluster id assigned to points in no dense neighborhood.
const dbscanNoise = -1

// dbscan runs density-based clustering over points with the given radius and
// minimum neighborhood size. Cluster ids are assigned in discovery order
// starting at 0, so identical inputs always produce identical labels. Points
// that never fall inside a dense neighborhood keep the noise label.
func dbscan(points [][]float64, eps float64, minPts int) []int {
	const unvisited = -2

	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = unvisited
	}

	cluster := 0
	for i := range points {
		if labels[i] != unvisited {
			continue
		}
		neighbors := regionQuery(points, i, eps)
		// The point itself counts toward the neighborhood size.
		if len(neighbors)+1 < minPts {
			labels[i] = dbscanNoise
			continue
		}

		labels[i] = cluster
		// Expand the cluster breadth-first; border points previously marked
		// as noise are claimed by the cluster that reaches them.
		queue := append([]int(nil), neighbors...)
		for qi := 0; qi < len(queue); qi++ {
			p := queue[qi]
			if labels[p] == dbscanNoise {
				labels[p] = cluster
			}
			if labels[p] != unvisited {
				continue
			}
			labels[p] = cluster
			pn := regionQuery(points, p, eps)
			if len(pn)+1 >= minPts {
				queue = append(queue, pn...)
			}
		}
		cluster++
	}
	return labels
}

func regionQuery(points [][]float64, idx int, eps float64) []int {
	var neighbors []int
	for j := range points {
		if j == idx {
			continue
		}
		if euclidean(points[idx], points[j]) <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}
