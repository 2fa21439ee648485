// Package cloud defines the point-cloud collaborator contract: reading and
// writing LAS/LAZ-style datasets as columnar records with preserved metadata.
// Actual file parsing lives behind the Reader/Writer interfaces; this package
// supplies the data model, an in-memory implementation for tests, and the
// full-waveform auxiliary-field merge.
package cloud

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Mode selects how a point-cloud file is read.
type Mode string

const (
	// ModeStandard reads the discrete-return point records.
	ModeStandard Mode = "standard"
	// ModeFullWaveform additionally exposes the waveform descriptor fields.
	ModeFullWaveform Mode = "fwf"
)

// Well-known column names.
const (
	ColPointSourceID = "point_source_id"
	ColWaveDescIndex = "wave_packet_desc_index"
)

// ErrConsistencyMismatch reports two files that should describe the same
// points but diverge beyond tolerance.
var ErrConsistencyMismatch = errors.New("cloud: datasets do not describe the same points")

// VLR is a variable-length metadata record carried through read/write cycles
// untouched.
type VLR struct {
	UserID      string
	RecordID    uint16
	Description string
	Data        []byte
}

// Cloud is a columnar point dataset. Data holds one row per point and one
// column per entry of Columns; the first three columns are always x, y, z.
type Cloud struct {
	Columns []string
	Data    *mat.Dense
	VLRs    []VLR
}

// NewCloud builds a Cloud from column names and row-major values.
func NewCloud(columns []string, rows [][]float64) *Cloud {
	data := mat.NewDense(len(rows), len(columns), nil)
	for i, row := range rows {
		data.SetRow(i, row)
	}
	return &Cloud{Columns: columns, Data: data}
}

// NewCloudEmpty builds a zero-filled Cloud with the given columns and row
// count.
func NewCloudEmpty(columns []string, numPoints int) *Cloud {
	return &Cloud{
		Columns: columns,
		Data:    mat.NewDense(numPoints, len(columns), nil),
	}
}

// NumPoints returns the number of point records.
func (c *Cloud) NumPoints() int {
	if c.Data == nil {
		return 0
	}
	r, _ := c.Data.Dims()
	return r
}

// ColumnIndex returns the position of the named column, or -1.
func (c *Cloud) ColumnIndex(name string) int {
	for i, col := range c.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the named column.
func (c *Cloud) Column(name string) ([]float64, error) {
	idx := c.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("cloud: no column %q", name)
	}
	out := make([]float64, c.NumPoints())
	mat.Col(out, idx, c.Data)
	return out, nil
}

// PointSourceIDs returns the distinct point-source identifiers present in the
// cloud, in first-appearance order.
func (c *Cloud) PointSourceIDs() ([]int, error) {
	col, err := c.Column(ColPointSourceID)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]bool)
	var ids []int
	for _, v := range col {
		id := int(v)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ExtraField is a named per-point field appended on write.
type ExtraField struct {
	Name   string
	Type   string // LAS numeric type name, e.g. "int16", "float64"
	Values []float64
}

// Reader reads a point-cloud file into columnar records.
type Reader interface {
	Read(path string, mode Mode) (*Cloud, error)
}

// Writer writes a dataset, appending any extra named fields.
type Writer interface {
	Write(path string, c *Cloud, extra []ExtraField) error
}
