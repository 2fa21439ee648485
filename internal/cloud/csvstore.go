package cloud

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/coastal-data/bathyscan/internal/fsutil"
)

// CSVStore reads and writes clouds as headered CSV files through a
// FileSystem. It is the interchange format of the command line tools; LAS/LAZ
// conversion happens upstream with the external toolchain.
type CSVStore struct {
	FS fsutil.FileSystem
}

// NewCSVStore returns a store backed by the given filesystem.
func NewCSVStore(fs fsutil.FileSystem) *CSVStore {
	return &CSVStore{FS: fs}
}

// Read parses the headered CSV file at path. ModeFullWaveform additionally
// requires the waveform descriptor column to be present.
func (s *CSVStore) Read(path string, mode Mode) (*Cloud, error) {
	data, err := s.FS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cloud: reading %s: %w", path, err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cloud: parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("cloud: %s has no header row", path)
	}

	columns := records[0]
	rows := make([][]float64, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(columns) {
			return nil, fmt.Errorf("cloud: %s row %d has %d fields, want %d",
				path, i+1, len(record), len(columns))
		}
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("cloud: %s row %d column %s: %w",
					path, i+1, columns[j], err)
			}
			row[j] = v
		}
		rows[i] = row
	}

	c := NewCloud(columns, rows)
	if mode == ModeFullWaveform && c.ColumnIndex(ColWaveDescIndex) < 0 {
		return nil, fmt.Errorf("cloud: %s has no %s column", path, ColWaveDescIndex)
	}
	return c, nil
}

// Write stores the cloud, appending any extra fields as trailing columns.
func (s *CSVStore) Write(path string, c *Cloud, extra []ExtraField) error {
	numPoints := c.NumPoints()
	for _, f := range extra {
		if len(f.Values) != numPoints {
			return fmt.Errorf("cloud: extra field %s has %d values, want %d",
				f.Name, len(f.Values), numPoints)
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string{}, c.Columns...)
	for _, f := range extra {
		header = append(header, f.Name)
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("cloud: writing %s header: %w", path, err)
	}

	record := make([]string, len(header))
	for i := 0; i < numPoints; i++ {
		for j := range c.Columns {
			record[j] = strconv.FormatFloat(c.Data.At(i, j), 'g', -1, 64)
		}
		for k, f := range extra {
			record[len(c.Columns)+k] = strconv.FormatFloat(f.Values[i], 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("cloud: writing %s row %d: %w", path, i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("cloud: flushing %s: %w", path, err)
	}

	if err := s.FS.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("cloud: writing %s: %w", path, err)
	}
	return nil
}

// Verify at compile time that *CSVStore is a Reader and Writer.
var (
	_ Reader = (*CSVStore)(nil)
	_ Writer = (*CSVStore)(nil)
)
