// Package cluster provides density-based clustering and fixed-radius density
// queries over 3D point sets. Neighbourhood lookups run against a uniform
// grid index whose cell size matches the query radius, so a region query only
// inspects the 27 surrounding cells.
package cluster

import "math"

// Noise is the label assigned to points that belong to no cluster.
const Noise = -1

// Default DBSCAN parameters for bathymetric object detection.
const (
	DefaultEps    = 1.0
	DefaultMinPts = 5
)

// Point is a position in the projected survey frame.
type Point struct {
	X, Y, Z float64
}

// Params configures DBSCAN.
type Params struct {
	Eps    float64 // neighbourhood radius
	MinPts int     // minimum neighbourhood size for a core point
}

// DefaultParams returns the default clustering parameters.
func DefaultParams() Params {
	return Params{Eps: DefaultEps, MinPts: DefaultMinPts}
}

// cellKey addresses one grid cell. Using a comparable struct key handles
// negative coordinates without a pairing function.
type cellKey struct {
	x, y, z int64
}

// gridIndex is a uniform 3D grid over point indices.
type gridIndex struct {
	cellSize float64
	cells    map[cellKey][]int
}

func buildGridIndex(points []Point, cellSize float64) *gridIndex {
	g := &gridIndex{
		cellSize: cellSize,
		cells:    make(map[cellKey][]int, len(points)/4+1),
	}
	for i, p := range points {
		g.cells[g.keyFor(p)] = append(g.cells[g.keyFor(p)], i)
	}
	return g
}

func (g *gridIndex) keyFor(p Point) cellKey {
	return cellKey{
		x: int64(math.Floor(p.X / g.cellSize)),
		y: int64(math.Floor(p.Y / g.cellSize)),
		z: int64(math.Floor(p.Z / g.cellSize)),
	}
}

// neighbors returns the indices of all points within radius of q, including
// q's own index when it is in the set.
func (g *gridIndex) neighbors(points []Point, q Point, radius float64) []int {
	base := g.keyFor(q)
	r2 := radius * radius
	var found []int
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				key := cellKey{x: base.x + dx, y: base.y + dy, z: base.z + dz}
				for _, idx := range g.cells[key] {
					c := points[idx]
					ddx := c.X - q.X
					ddy := c.Y - q.Y
					ddz := c.Z - q.Z
					if ddx*ddx+ddy*ddy+ddz*ddz <= r2 {
						found = append(found, idx)
					}
				}
			}
		}
	}
	return found
}

// Labels runs DBSCAN over points and returns a per-point cluster label plus
// the number of clusters found. Clusters are numbered 0..n-1 in order of
// discovery; noise points get the Noise label. Output is deterministic for a
// given input order.
func Labels(points []Point, params Params) ([]int, int) {
	if len(points) == 0 {
		return nil, 0
	}

	const unvisited = -2
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = unvisited
	}

	index := buildGridIndex(points, params.Eps)
	clusterID := 0

	for i := range points {
		if labels[i] != unvisited {
			continue
		}

		neighbors := index.neighbors(points, points[i], params.Eps)
		if len(neighbors) < params.MinPts {
			labels[i] = Noise
			continue
		}

		labels[i] = clusterID
		// Queue-based expansion: the slice grows as new core points
		// contribute their neighbourhoods.
		for j := 0; j < len(neighbors); j++ {
			idx := neighbors[j]
			if labels[idx] == Noise {
				labels[idx] = clusterID // noise becomes a border point
			}
			if labels[idx] != unvisited {
				continue
			}
			labels[idx] = clusterID

			expansion := index.neighbors(points, points[idx], params.Eps)
			if len(expansion) >= params.MinPts {
				neighbors = append(neighbors, expansion...)
			}
		}
		clusterID++
	}

	return labels, clusterID
}
