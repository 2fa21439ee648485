package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/coastal-data/bathyscan/internal/cloud"
	"github.com/coastal-data/bathyscan/internal/fsutil"
	"github.com/coastal-data/bathyscan/internal/refraction"
)

// Column conventions of the CSV interchange files.
const (
	colDepth     = "depth"
	colDepthTrue = "depth_true"

	colOriginX = "x_origin"
	colOriginY = "y_origin"
	colOriginZ = "z_origin"

	colVectorX = "vx"
	colVectorY = "vy"
	colVectorZ = "vz"
)

func newStore() *cloud.CSVStore {
	return cloud.NewCSVStore(fsutil.OSFileSystem{})
}

// runCorrect refraction-corrects apparent underwater point positions. The
// shot geometry is taken from origin columns (discrete mode) or vector
// columns (full-waveform mode); exactly one set must be present.
func runCorrect(args []string) error {
	fs := flag.NewFlagSet("correct", flag.ExitOnError)
	in := fs.String("in", "", "input CSV point file")
	out := fs.String("out", "", "output CSV point file")
	index := fs.Float64("index", 0, "water refractive index (0 uses the config value)")
	configPath := fs.String("config", "", "YAML configuration file")
	fs.Parse(args)

	if *in == "" || *out == "" {
		return fmt.Errorf("-in and -out are required")
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *index == 0 {
		*index = cfg.Refraction.Index
	}

	store := newStore()
	c, err := store.Read(*in, cloud.ModeStandard)
	if err != nil {
		return err
	}

	points, err := readPoints(c, "x", "y", "z")
	if err != nil {
		return err
	}
	depths, err := c.Column(colDepth)
	if err != nil {
		return err
	}

	shots, err := shotGeometry(c)
	if err != nil {
		return err
	}

	truePoints, trueDepths, err := refraction.CorrectPoints3D(points, depths, shots, *index)
	if err != nil {
		return err
	}

	writeXYZ(c, truePoints)
	extra := []cloud.ExtraField{{Name: colDepthTrue, Type: "float64", Values: trueDepths}}
	if err := store.Write(*out, c, extra); err != nil {
		return err
	}
	log.Printf("corrected %d points (index %g) into %s", len(truePoints), *index, *out)
	return nil
}

// runCorrectVectors refraction-corrects full-waveform shot vectors in place.
func runCorrectVectors(args []string) error {
	fs := flag.NewFlagSet("correct-vectors", flag.ExitOnError)
	in := fs.String("in", "", "input CSV vector file")
	out := fs.String("out", "", "output CSV vector file")
	index := fs.Float64("index", 0, "water refractive index (0 uses the config value)")
	configPath := fs.String("config", "", "YAML configuration file")
	fs.Parse(args)

	if *in == "" || *out == "" {
		return fmt.Errorf("-in and -out are required")
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *index == 0 {
		*index = cfg.Refraction.Index
	}

	store := newStore()
	c, err := store.Read(*in, cloud.ModeStandard)
	if err != nil {
		return err
	}

	vectors, err := readVectors(c)
	if err != nil {
		return err
	}

	trueVects := refraction.CorrectVector(vectors, *index)
	for i, col := range []string{colVectorX, colVectorY, colVectorZ} {
		idx := c.ColumnIndex(col)
		for row := range trueVects {
			switch i {
			case 0:
				c.Data.Set(row, idx, trueVects[row].X)
			case 1:
				c.Data.Set(row, idx, trueVects[row].Y)
			case 2:
				c.Data.Set(row, idx, trueVects[row].Z)
			}
		}
	}

	if err := store.Write(*out, c, nil); err != nil {
		return err
	}
	log.Printf("corrected %d shot vectors (index %g) into %s", len(trueVects), *index, *out)
	return nil
}

// runMergeFWF merges a full-waveform file with its "_extra" companion.
func runMergeFWF(args []string) error {
	fs := flag.NewFlagSet("merge-fwf", flag.ExitOnError)
	in := fs.String("in", "", "input full-waveform file")
	out := fs.String("out", "", "output merged file")
	fs.Parse(args)

	if *in == "" || *out == "" {
		return fmt.Errorf("-in and -out are required")
	}

	store := newStore()
	merged, err := cloud.MergeC2CWithWaveform(store, *in)
	if err != nil {
		return err
	}
	if err := store.Write(*out, merged, nil); err != nil {
		return err
	}
	log.Printf("merged %d points into %s", merged.NumPoints(), *out)
	return nil
}

// shotGeometry derives the shot geometry from the columns present. Having
// both origin and vector columns, or neither, is ambiguous.
func shotGeometry(c *cloud.Cloud) (refraction.ShotGeometry, error) {
	hasOrigins := c.ColumnIndex(colOriginX) >= 0
	hasVectors := c.ColumnIndex(colVectorX) >= 0

	switch {
	case hasOrigins && hasVectors:
		return nil, fmt.Errorf("both origin and vector columns present; remove one set")
	case hasOrigins:
		origins, err := readPoints(c, colOriginX, colOriginY, colOriginZ)
		if err != nil {
			return nil, err
		}
		return refraction.FromOrigins(origins), nil
	case hasVectors:
		vectors, err := readVectors(c)
		if err != nil {
			return nil, err
		}
		return refraction.FromVectors(vectors), nil
	default:
		return nil, fmt.Errorf("no shot geometry columns (%s or %s)", colOriginX, colVectorX)
	}
}

func readPoints(c *cloud.Cloud, xCol, yCol, zCol string) ([]refraction.Point, error) {
	xs, err := c.Column(xCol)
	if err != nil {
		return nil, err
	}
	ys, err := c.Column(yCol)
	if err != nil {
		return nil, err
	}
	zs, err := c.Column(zCol)
	if err != nil {
		return nil, err
	}
	points := make([]refraction.Point, len(xs))
	for i := range xs {
		points[i] = refraction.Point{X: xs[i], Y: ys[i], Z: zs[i]}
	}
	return points, nil
}

func readVectors(c *cloud.Cloud) ([]refraction.Vector, error) {
	points, err := readPoints(c, colVectorX, colVectorY, colVectorZ)
	if err != nil {
		return nil, err
	}
	vectors := make([]refraction.Vector, len(points))
	for i, p := range points {
		vectors[i] = refraction.Vector(p)
	}
	return vectors, nil
}

func writeXYZ(c *cloud.Cloud, points []refraction.Point) {
	xIdx, yIdx, zIdx := c.ColumnIndex("x"), c.ColumnIndex("y"), c.ColumnIndex("z")
	for i, p := range points {
		c.Data.Set(i, xIdx, p.X)
		c.Data.Set(i, yIdx, p.Y)
		c.Data.Set(i, zIdx, p.Z)
	}
}
