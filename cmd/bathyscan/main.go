// Command bathyscan processes bathymetric lidar surveys: refraction
// correction, flightline reconstruction from tiled workspaces, and the
// supporting analysis and export steps.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/coastal-data/bathyscan/internal/config"
	"github.com/coastal-data/bathyscan/internal/version"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: bathyscan <command> [flags]

Commands:
  correct          refraction-correct apparent underwater point positions
  correct-vectors  refraction-correct full-waveform shot vectors
  merge-fwf        merge a full-waveform file with its auxiliary-field companion
  reverse-tile     rebuild per-flightline files from a tiled workspace
  dbscan           label points with DBSCAN cluster identifiers
  density          count in-radius neighbours for every point
  normalize        scale feature columns to a common 0-100 range
  overlap          report overlapping flightline footprints
  kml              export positions as a KML placemark document
  runs             list recorded reconstruction runs
  version          print build information

Run "bathyscan <command> -h" for command flags.
`)
}

// loadConfig loads the YAML config at path, or the defaults when path is
// empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(path)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("bathyscan: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "correct":
		err = runCorrect(args)
	case "correct-vectors":
		err = runCorrectVectors(args)
	case "merge-fwf":
		err = runMergeFWF(args)
	case "reverse-tile":
		err = runReverseTile(ctx, args)
	case "dbscan":
		err = runDBSCAN(args)
	case "density":
		err = runDensity(args)
	case "normalize":
		err = runNormalize(args)
	case "overlap":
		err = runOverlap(args)
	case "kml":
		err = runKML(args)
	case "runs":
		err = runRuns(ctx, args)
	case "version", "-v", "-version", "--version":
		fmt.Printf("bathyscan %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	case "help", "-h", "-help", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}
