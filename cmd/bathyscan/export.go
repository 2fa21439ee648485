package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"github.com/coastal-data/bathyscan/internal/cloud"
	"github.com/coastal-data/bathyscan/internal/fsutil"
	"github.com/coastal-data/bathyscan/internal/kml"
	"github.com/coastal-data/bathyscan/internal/overlap"
)

// runOverlap reports which flightline footprints overlap. Each input file is
// one flightline; its footprint is the PCA-aligned bounding quad of the
// points.
func runOverlap(args []string) error {
	fs := flag.NewFlagSet("overlap", flag.ExitOnError)
	glob := fs.String("in", "", "glob of per-flightline CSV point files")
	fs.Parse(args)

	if *glob == "" {
		return fmt.Errorf("-in is required")
	}

	osfs := fsutil.OSFileSystem{}
	paths, err := osfs.Glob(*glob)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files match %s", *glob)
	}

	store := newStore()
	footprints := make([]overlap.Footprint, 0, len(paths))
	for _, path := range paths {
		c, err := store.Read(path, cloud.ModeStandard)
		if err != nil {
			return err
		}
		xs, err := c.Column("x")
		if err != nil {
			return err
		}
		ys, err := c.Column("y")
		if err != nil {
			return err
		}
		corners, err := overlap.ComputeFootprint(xs, ys)
		if err != nil {
			return fmt.Errorf("footprint of %s: %w", path, err)
		}
		footprints = append(footprints, overlap.Footprint{
			ID:      flightlineID(path),
			Corners: corners,
		})
	}

	pairs := overlap.Pairs(footprints)
	if len(pairs) == 0 {
		log.Print("no overlapping flightlines")
		return nil
	}
	ids := make([]string, 0, len(pairs))
	for id := range pairs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Printf("%s: %s\n", id, strings.Join(pairs[id], " "))
	}
	return nil
}

// runKML exports positions as KML placemarks. The input columns are lon, lat
// and optionally alt.
func runKML(args []string) error {
	fs := flag.NewFlagSet("kml", flag.ExitOnError)
	in := fs.String("in", "", "input CSV position file (lon, lat[, alt] columns)")
	out := fs.String("out", "", "output KML file")
	prefix := fs.String("prefix", "P", "placemark name prefix")
	fs.Parse(args)

	if *in == "" || *out == "" {
		return fmt.Errorf("-in and -out are required")
	}

	store := newStore()
	c, err := store.Read(*in, cloud.ModeStandard)
	if err != nil {
		return err
	}
	lons, err := c.Column("lon")
	if err != nil {
		return err
	}
	lats, err := c.Column("lat")
	if err != nil {
		return err
	}
	alts := make([]float64, len(lons))
	if c.ColumnIndex("alt") >= 0 {
		if alts, err = c.Column("alt"); err != nil {
			return err
		}
	}

	names := make([]string, len(lons))
	descriptions := make([]string, len(lons))
	coords := make([]kml.Coordinate, len(lons))
	width := len(fmt.Sprint(len(lons)))
	for i := range lons {
		names[i] = fmt.Sprintf("%s%0*d", *prefix, width, i+1)
		coords[i] = kml.Coordinate{Lon: lons[i], Lat: lats[i], Alt: alts[i]}
	}

	if err := kml.WriteFile(*out, names, descriptions, coords); err != nil {
		return err
	}
	log.Printf("wrote %d placemarks to %s", len(coords), *out)
	return nil
}

// flightlineID names a footprint after its file, extension stripped.
func flightlineID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
