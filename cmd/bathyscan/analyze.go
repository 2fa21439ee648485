package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/coastal-data/bathyscan/internal/cloud"
	"github.com/coastal-data/bathyscan/internal/cluster"
	"github.com/coastal-data/bathyscan/internal/features"
)

// runDBSCAN labels every point with its cluster identifier (-1 for noise).
func runDBSCAN(args []string) error {
	fs := flag.NewFlagSet("dbscan", flag.ExitOnError)
	in := fs.String("in", "", "input CSV point file")
	out := fs.String("out", "", "output CSV point file")
	eps := fs.Float64("eps", 0, "neighbourhood radius (0 uses the config value)")
	minPts := fs.Int("minpts", 0, "core point threshold (0 uses the config value)")
	configPath := fs.String("config", "", "YAML configuration file")
	fs.Parse(args)

	if *in == "" || *out == "" {
		return fmt.Errorf("-in and -out are required")
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *eps == 0 {
		*eps = cfg.Cluster.Eps
	}
	if *minPts == 0 {
		*minPts = cfg.Cluster.MinPoints
	}

	store := newStore()
	c, err := store.Read(*in, cloud.ModeStandard)
	if err != nil {
		return err
	}
	points, err := clusterPoints(c)
	if err != nil {
		return err
	}

	labels, n := cluster.Labels(points, cluster.Params{Eps: *eps, MinPts: *minPts})

	values := make([]float64, len(labels))
	for i, l := range labels {
		values[i] = float64(l)
	}
	extra := []cloud.ExtraField{{Name: "cluster", Type: "int32", Values: values}}
	if err := store.Write(*out, c, extra); err != nil {
		return err
	}
	log.Printf("labelled %d points into %d clusters (eps %g, minpts %d)", len(points), n, *eps, *minPts)
	return nil
}

// runDensity counts the in-radius neighbours of every point. With -core the
// neighbours are counted among the core file's points instead.
func runDensity(args []string) error {
	fs := flag.NewFlagSet("density", flag.ExitOnError)
	in := fs.String("in", "", "input CSV point file")
	core := fs.String("core", "", "optional CSV file of reference points")
	out := fs.String("out", "", "output CSV point file")
	radius := fs.Float64("radius", 1.0, "neighbourhood radius")
	fs.Parse(args)

	if *in == "" || *out == "" {
		return fmt.Errorf("-in and -out are required")
	}

	store := newStore()
	c, err := store.Read(*in, cloud.ModeStandard)
	if err != nil {
		return err
	}
	points, err := clusterPoints(c)
	if err != nil {
		return err
	}

	var corePoints []cluster.Point
	if *core != "" {
		cc, err := store.Read(*core, cloud.ModeStandard)
		if err != nil {
			return err
		}
		if corePoints, err = clusterPoints(cc); err != nil {
			return err
		}
	}

	counts := cluster.Density(points, corePoints, *radius)

	values := make([]float64, len(counts))
	for i, n := range counts {
		values[i] = float64(n)
	}
	extra := []cloud.ExtraField{{Name: "density", Type: "int32", Values: values}}
	if err := store.Write(*out, c, extra); err != nil {
		return err
	}
	log.Printf("computed density of %d points (radius %g)", len(points), *radius)
	return nil
}

// runNormalize rescales every feature column to a common 0-100 range so
// mixed-unit attributes can feed a classifier together. Missing values are
// replaced first; degenerate columns come out as -1.
func runNormalize(args []string) error {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	in := fs.String("in", "", "input CSV feature file")
	out := fs.String("out", "", "output CSV feature file")
	nan := fs.Float64("nan", 0, "value substituted for NaN entries before scaling")
	fs.Parse(args)

	if *in == "" || *out == "" {
		return fmt.Errorf("-in and -out are required")
	}

	store := newStore()
	c, err := store.Read(*in, cloud.ModeStandard)
	if err != nil {
		return err
	}

	features.ReplaceNaN(c.Data, *nan)
	features.NormalizeColumns(c.Data)

	if err := store.Write(*out, c, nil); err != nil {
		return err
	}
	log.Printf("normalized %d columns of %d rows into %s", len(c.Columns), c.NumPoints(), *out)
	return nil
}

func clusterPoints(c *cloud.Cloud) ([]cluster.Point, error) {
	points, err := readPoints(c, "x", "y", "z")
	if err != nil {
		return nil, err
	}
	out := make([]cluster.Point, len(points))
	for i, p := range points {
		out[i] = cluster.Point{X: p.X, Y: p.Y, Z: p.Z}
	}
	return out, nil
}
