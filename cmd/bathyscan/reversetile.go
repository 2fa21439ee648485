package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/coastal-data/bathyscan/internal/fsutil"
	"github.com/coastal-data/bathyscan/internal/surveydb"
	"github.com/coastal-data/bathyscan/internal/tiling"
)

// runReverseTile rebuilds per-flightline files from a tiled workspace.
func runReverseTile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reverse-tile", flag.ExitOnError)
	workspace := fs.String("workspace", "", "directory holding the tiled input files")
	template := fs.String("template", "", "output filename template with XX token (default from config)")
	strip := fs.Bool("strip", false, "remove tile overlap buffers before scanning")
	workers := fs.Int("workers", 0, "scan parallelism (0 uses the config value)")
	dbPath := fs.String("db", "", "survey database path (default from config; empty disables recording)")
	quiet := fs.Bool("quiet", false, "disable the progress bar")
	configPath := fs.String("config", "", "YAML configuration file")
	fs.Parse(args)

	if *workspace == "" {
		return fmt.Errorf("-workspace is required")
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *template == "" {
		*template = cfg.Tiling.OutputTemplate
	}
	if *workers == 0 {
		*workers = cfg.Tiling.Workers
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.Path
	}

	rec, err := tiling.NewReconstructor(tiling.Config{
		Workspace:      *workspace,
		OutputTemplate: *template,
		StripBuffer:    *strip || cfg.Tiling.StripBuffer,
		Workers:        *workers,
		Extension:      cfg.Tiling.Extension,
	}, cfg.NewToolchain(), newStore(), fsutil.OSFileSystem{})
	if err != nil {
		return err
	}

	if !*quiet {
		rec.SetProgress(tiling.NewBarProgress("scanning tiles"))
	}
	if *dbPath != "" {
		db, err := surveydb.Open(*dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		rec.SetRecorder(db)
	}

	summary, err := rec.Run(ctx)
	if err != nil {
		return err
	}

	log.Printf("found %d flightlines across %s in %s",
		len(summary.Lines), *workspace, summary.Finished.Sub(summary.Started).Round(time.Millisecond))
	for _, name := range summary.Outputs {
		log.Printf("  wrote %s", name)
	}
	return nil
}

// runRuns lists recorded reconstruction runs, or details one run.
func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	dbPath := fs.String("db", "", "survey database path (default from config)")
	runID := fs.String("id", "", "show the flightline inventory of one run")
	configPath := fs.String("config", "", "YAML configuration file")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.Path
	}
	if *dbPath == "" {
		return fmt.Errorf("no survey database configured; pass -db or set database.path")
	}

	db, err := surveydb.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if *runID != "" {
		return printRun(ctx, db, *runID)
	}

	runs, err := db.Runs(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		log.Print("no recorded runs")
		return nil
	}
	for _, run := range runs {
		log.Printf("%s  %s  %d lines  %s", run.ID, run.Started.Format("2006-01-02 15:04:05"),
			run.LineCount, run.Workspace)
	}
	return nil
}

func printRun(ctx context.Context, db *surveydb.SurveyDB, id string) error {
	run, err := db.GetRun(ctx, id)
	if err != nil {
		return err
	}
	lines, err := db.RunLines(ctx, id)
	if err != nil {
		return err
	}

	log.Printf("run %s in %s (%s)", run.ID, run.Workspace, run.Started.Format("2006-01-02 15:04:05"))
	lineIDs := make([]int, 0, len(lines))
	for lineID := range lines {
		lineIDs = append(lineIDs, lineID)
	}
	sort.Ints(lineIDs)
	for _, lineID := range lineIDs {
		log.Printf("  line %d: %v", lineID, lines[lineID])
	}
	for _, name := range run.Outputs {
		log.Printf("  wrote %s", name)
	}
	return nil
}
