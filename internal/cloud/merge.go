package cloud

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
)

// Cloud-to-cloud distance columns produced by the comparison toolchain.
const (
	colC2CDistX = "c2c_absolute_distances_(x)"
	colC2CDistY = "c2c_absolute_distances_(y)"
	colC2CDistZ = "c2c_absolute_distances_(z)"
)

// coordAgreementTolerance is the maximum per-point distance allowed between
// a full-waveform file and its _extra companion before the merge refuses to
// combine them.
const coordAgreementTolerance = 0.003

// MergeC2CWithWaveform joins a full-waveform cloud with its cloud-to-cloud
// distance companion ("<name>_extra.laz"). Both files must describe the same
// points in the same order; per-point coordinate disagreement beyond 0.003
// units is an ErrConsistencyMismatch surfaced before any merge output exists.
//
// The result carries the companion's columns minus its four trailing c2c
// fields, the waveform columns from wave_packet_desc_index onward, and two
// derived columns: depth (the vertical c2c distance) and distance_H (the
// planimetric c2c distance). VLRs come from the waveform file.
func MergeC2CWithWaveform(r Reader, path string) (*Cloud, error) {
	fwf, err := r.Read(path, ModeFullWaveform)
	if err != nil {
		return nil, fmt.Errorf("reading waveform file: %w", err)
	}
	extraPath := companionExtraPath(path)
	extra, err := r.Read(extraPath, ModeStandard)
	if err != nil {
		return nil, fmt.Errorf("reading companion file: %w", err)
	}

	n := fwf.NumPoints()
	if extra.NumPoints() != n {
		return nil, fmt.Errorf("%w: %d waveform points vs %d companion points",
			ErrConsistencyMismatch, n, extra.NumPoints())
	}

	for i := 0; i < n; i++ {
		dx := fwf.Data.At(i, 0) - extra.Data.At(i, 0)
		dy := fwf.Data.At(i, 1) - extra.Data.At(i, 1)
		dz := fwf.Data.At(i, 2) - extra.Data.At(i, 2)
		if math.Sqrt(dx*dx+dy*dy+dz*dz) >= coordAgreementTolerance {
			return nil, fmt.Errorf("%w: point %d diverges by more than %g units",
				ErrConsistencyMismatch, i, coordAgreementTolerance)
		}
	}

	distX, err := extra.Column(colC2CDistX)
	if err != nil {
		return nil, err
	}
	distY, err := extra.Column(colC2CDistY)
	if err != nil {
		return nil, err
	}
	distZ, err := extra.Column(colC2CDistZ)
	if err != nil {
		return nil, err
	}

	waveIdx := fwf.ColumnIndex(ColWaveDescIndex)
	if waveIdx < 0 {
		return nil, fmt.Errorf("cloud: waveform file has no %s column", ColWaveDescIndex)
	}
	if len(extra.Columns) < 4 {
		return nil, fmt.Errorf("cloud: companion file has only %d columns", len(extra.Columns))
	}

	// Companion columns minus its four trailing c2c fields, then the
	// waveform block, then the two derived distances.
	keepExtra := len(extra.Columns) - 4
	keepFwf := len(fwf.Columns) - waveIdx
	columns := make([]string, 0, keepExtra+keepFwf+2)
	columns = append(columns, extra.Columns[:keepExtra]...)
	columns = append(columns, fwf.Columns[waveIdx:]...)
	columns = append(columns, "depth", "distance_H")

	merged := NewCloudEmpty(columns, n)
	for i := 0; i < n; i++ {
		for j := 0; j < keepExtra; j++ {
			merged.Data.Set(i, j, extra.Data.At(i, j))
		}
		for j := 0; j < keepFwf; j++ {
			merged.Data.Set(i, keepExtra+j, fwf.Data.At(i, waveIdx+j))
		}
		merged.Data.Set(i, keepExtra+keepFwf, distZ[i])
		merged.Data.Set(i, keepExtra+keepFwf+1, math.Hypot(distX[i], distY[i]))
	}
	merged.VLRs = fwf.VLRs
	return merged, nil
}

// companionExtraPath maps "dir/file.laz" to "dir/file_extra.laz".
func companionExtraPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_extra" + ext
}
