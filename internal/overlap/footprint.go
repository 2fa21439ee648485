// Package overlap estimates per-file flightline footprints and reports which
// pairs of files cover the same ground. A footprint is the oriented bounding
// quadrilateral of a file's 2D point spread, found by principal component
// analysis; two flightlines overlap when their quadrilaterals share interior
// area without one swallowing the other.
package overlap

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// differenceRatioThreshold mirrors the survey planning rule: a pair only
// counts as overlapping when less than 90% of the first footprint lies
// outside the second.
const differenceRatioThreshold = 0.9

// Quad is an oriented bounding quadrilateral, corners in order.
type Quad [4][2]float64

// Footprint associates a flightline identifier with its bounding quad.
type Footprint struct {
	ID      string
	Corners Quad
}

// ComputeFootprint fits the oriented bounding quadrilateral of the 2D point
// spread (xs, ys) via PCA: the data is projected onto its two principal axes,
// boxed there, and the box corners are carried back to the original frame.
func ComputeFootprint(xs, ys []float64) (Quad, error) {
	var q Quad
	if len(xs) != len(ys) {
		return q, fmt.Errorf("overlap: %d x values vs %d y values", len(xs), len(ys))
	}
	if len(xs) < 3 {
		return q, errors.New("overlap: need at least 3 points for a footprint")
	}

	n := len(xs)
	data := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		data.Set(i, 0, xs[i])
		data.Set(i, 1, ys[i])
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return q, errors.New("overlap: principal component analysis failed")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	meanX := stat.Mean(xs, nil)
	meanY := stat.Mean(ys, nil)

	// Project centred points onto the principal axes and box them.
	minU, maxU := math.Inf(1), math.Inf(-1)
	minV, maxV := math.Inf(1), math.Inf(-1)
	for i := 0; i < n; i++ {
		cx := xs[i] - meanX
		cy := ys[i] - meanY
		u := cx*vecs.At(0, 0) + cy*vecs.At(1, 0)
		v := cx*vecs.At(0, 1) + cy*vecs.At(1, 1)
		if u < minU {
			minU = u
		}
		if u > maxU {
			maxU = u
		}
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	// Box corners in component space, inverse-transformed to the survey
	// frame. The component matrix is orthonormal, so the inverse is the
	// transpose.
	box := [4][2]float64{
		{minU, minV}, {minU, maxV}, {maxU, maxV}, {maxU, minV},
	}
	for i, c := range box {
		q[i][0] = c[0]*vecs.At(0, 0) + c[1]*vecs.At(0, 1) + meanX
		q[i][1] = c[0]*vecs.At(1, 0) + c[1]*vecs.At(1, 1) + meanY
	}
	return q, nil
}

// Pairs reports, for each footprint, the later footprints it overlaps with.
// Footprints are compared pairwise in input order; IDs with no overlaps are
// absent from the result. Overlap requires shared interior area with neither
// quad containing the other, and the remaining-difference ratio below 0.9.
func Pairs(footprints []Footprint) map[string][]string {
	result := make(map[string][]string)
	for i := 0; i < len(footprints)-1; i++ {
		a := footprints[i].Corners.polygon()
		areaA := polygonArea(a)
		var matches []string
		for j := i + 1; j < len(footprints); j++ {
			b := footprints[j].Corners.polygon()
			areaB := polygonArea(b)

			inter := intersectionArea(a, b)
			if inter <= 0 || inter >= areaA || inter >= areaB {
				continue // disjoint, or one contains the other
			}
			if (areaA-inter)/areaA < differenceRatioThreshold {
				matches = append(matches, footprints[j].ID)
			}
		}
		if len(matches) > 0 {
			sort.Strings(matches)
			result[footprints[i].ID] = matches
		}
	}
	return result
}
