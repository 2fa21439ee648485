// Package features provides small numeric utilities for sanitising and
// scaling per-point feature matrices before they are handed to consumers that
// cannot tolerate NaN (classifiers, exporters).
package features

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ReplaceNaN replaces every NaN entry of m with value, in place.
func ReplaceNaN(m *mat.Dense, value float64) {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if math.IsNaN(m.At(i, j)) {
				m.Set(i, j, value)
			}
		}
	}
}

// NormalizeColumns rescales each column of m to [0, 100] by min-max over its
// finite entries, in place. A column with no finite entries becomes a constant
// -1 column; any entry whose scaled value is NaN (all-equal column, or a NaN
// input entry) also becomes -1. Columns are independent and keep their order.
func NormalizeColumns(m *mat.Dense) {
	rows, cols := m.Dims()
	for j := 0; j < cols; j++ {
		min, max, anyFinite := finiteRange(m, j, rows)
		for i := 0; i < rows; i++ {
			if !anyFinite {
				m.Set(i, j, -1)
				continue
			}
			scaled := (m.At(i, j) - min) / (max - min) * 100
			if math.IsNaN(scaled) {
				scaled = -1
			}
			m.Set(i, j, scaled)
		}
	}
}

// finiteRange returns the min and max over the finite entries of column j,
// and whether any finite entry exists.
func finiteRange(m *mat.Dense, j, rows int) (min, max float64, anyFinite bool) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for i := 0; i < rows; i++ {
		v := m.At(i, j)
		if math.IsInf(v, 0) || math.IsNaN(v) {
			continue
		}
		anyFinite = true
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, anyFinite
}
