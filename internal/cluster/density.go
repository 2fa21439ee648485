package cluster

// Density counts, for each core point, the number of points within radius.
// When corePoints is empty the density is computed for every point of the
// input set against itself (each point then counts itself as a neighbour).
func Density(points []Point, corePoints []Point, radius float64) []int {
	if len(corePoints) == 0 {
		corePoints = points
	}
	index := buildGridIndex(points, radius)

	counts := make([]int, len(corePoints))
	for i, q := range corePoints {
		counts[i] = len(index.neighbors(points, q, radius))
	}
	return counts
}
