package tiling

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/coastal-data/bathyscan/internal/cloud"
	"github.com/coastal-data/bathyscan/internal/fsutil"
	"github.com/coastal-data/bathyscan/internal/monitoring"
	"github.com/coastal-data/bathyscan/internal/timeutil"
)

// bufferStrippedDir is the workspace subdirectory holding tiles after buffer
// removal.
const bufferStrippedDir = "stripped"

// bufferOutputMarker is the marker the external tiling tool inserts before
// the extension of buffer-stripped files.
const bufferOutputMarker = "_1"

// DefaultExtension is the tile file extension used when the caller does not
// set one.
const DefaultExtension = ".laz"

// templateToken marks where the zero-padded flightline identifier is
// substituted in the output filename template.
const templateToken = "XX"

// DefaultWorkers is the scan parallelism used when the caller does not set
// one.
const DefaultWorkers = 8

// LinesDictionary maps a flightline identifier to the tile files known to
// contain at least one point with that identifier, in file discovery order.
type LinesDictionary map[int][]string

// ProgressReporter receives scan-phase progress. Implementations must accept
// concurrent Increment calls.
type ProgressReporter interface {
	Start(total int)
	Increment()
	Finish()
}

// RunSummary describes one completed reconstruction.
type RunSummary struct {
	Workspace string
	Started   time.Time
	Finished  time.Time
	Lines     LinesDictionary
	Outputs   []string // final per-flightline files, in merge order
}

// RunRecorder persists a completed reconstruction, e.g. to the survey
// database.
type RunRecorder interface {
	RecordRun(ctx context.Context, summary *RunSummary) error
}

// Config holds the caller-supplied reconstruction parameters.
type Config struct {
	// Workspace is the directory holding the tiled input files.
	Workspace string

	// OutputTemplate names the per-flightline outputs; it must contain the
	// XX token where the zero-padded identifier is substituted, e.g.
	// "line_XX.laz".
	OutputTemplate string

	// StripBuffer runs the external buffer-removal tool before scanning.
	StripBuffer bool

	// Workers bounds the scan-phase parallelism. Zero means
	// DefaultWorkers.
	Workers int

	// Extension selects the tile file extension, e.g. ".laz". Empty means
	// DefaultExtension.
	Extension string
}

// Reconstructor rebuilds per-flightline files from a directory of tiles. The
// run is a fixed phase sequence: optional buffer removal, a parallel
// per-file identifier inventory, then one external merge per identifier.
type Reconstructor struct {
	cfg      Config
	prefix   string
	suffix   string
	tools    Toolchain
	clouds   cloud.Reader
	fs       fsutil.FileSystem
	clock    timeutil.Clock
	progress ProgressReporter
	recorder RunRecorder
}

// NewReconstructor validates cfg and assembles a reconstructor around the
// given collaborators.
func NewReconstructor(cfg Config, tools Toolchain, clouds cloud.Reader, fs fsutil.FileSystem) (*Reconstructor, error) {
	parts := strings.SplitN(cfg.OutputTemplate, templateToken, 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("tiling: output template %q has no %s token", cfg.OutputTemplate, templateToken)
	}
	if cfg.Workspace == "" {
		return nil, fmt.Errorf("tiling: workspace directory is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Extension == "" {
		cfg.Extension = DefaultExtension
	}
	return &Reconstructor{
		cfg:    cfg,
		prefix: parts[0],
		suffix: parts[1],
		tools:  tools,
		clouds: clouds,
		fs:     fs,
		clock:  timeutil.RealClock{},
	}, nil
}

// SetProgress installs a scan-phase progress reporter.
func (r *Reconstructor) SetProgress(p ProgressReporter) { r.progress = p }

// SetRecorder installs a run recorder.
func (r *Reconstructor) SetRecorder(rec RunRecorder) { r.recorder = rec }

// SetClock overrides the run-timestamp clock.
func (r *Reconstructor) SetClock(c timeutil.Clock) { r.clock = c }

// Run executes the reconstruction. Any external-tool or read failure aborts
// the whole run; an empty workspace completes successfully with an empty
// inventory.
func (r *Reconstructor) Run(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{
		Workspace: r.cfg.Workspace,
		Started:   r.clock.Now(),
	}

	active := r.cfg.Workspace
	if r.cfg.StripBuffer {
		monitoring.Logf("removing tile buffers in %s", active)
		stripped, err := r.removeBuffer(ctx)
		if err != nil {
			return nil, err
		}
		active = stripped
	}

	monitoring.Logf("searching flightlines in %s", active)
	lines, err := r.searchLines(ctx, active)
	if err != nil {
		return nil, err
	}
	summary.Lines = lines

	monitoring.Logf("writing %d flightlines", len(lines))
	outputs, err := r.writeLines(ctx, active, lines)
	if err != nil {
		return nil, err
	}
	summary.Outputs = outputs
	summary.Finished = r.clock.Now()

	if r.recorder != nil {
		if err := r.recorder.RecordRun(ctx, summary); err != nil {
			return nil, fmt.Errorf("tiling: recording run: %w", err)
		}
	}
	return summary, nil
}

// removeBuffer strips tile overlap buffers and gathers the stripped files in
// a dedicated subdirectory, which becomes the working directory for the
// remaining phases.
func (r *Reconstructor) removeBuffer(ctx context.Context) (string, error) {
	glob := filepath.Join(r.cfg.Workspace, "*"+r.cfg.Extension)
	if err := r.tools.RemoveBuffer(ctx, glob, r.cfg.Workers); err != nil {
		return "", err
	}

	stripped, err := r.fs.Glob(filepath.Join(r.cfg.Workspace, "*"+bufferOutputMarker+r.cfg.Extension))
	if err != nil {
		return "", fmt.Errorf("tiling: listing buffer-stripped files: %w", err)
	}

	dir := filepath.Join(r.cfg.Workspace, bufferStrippedDir)
	if err := r.fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("tiling: creating %s: %w", dir, err)
	}
	for _, path := range stripped {
		dst := filepath.Join(dir, filepath.Base(path))
		if err := r.fs.Rename(path, dst); err != nil {
			return "", fmt.Errorf("tiling: moving %s: %w", path, err)
		}
	}
	return dir, nil
}

// searchLines inventories the distinct point-source identifiers of every
// tile in dir. Files are scanned by a bounded worker pool; each worker owns
// its per-file result and the accumulation into the dictionary happens only
// after every worker has finished.
func (r *Reconstructor) searchLines(ctx context.Context, dir string) (LinesDictionary, error) {
	paths, err := r.fs.Glob(filepath.Join(dir, "*"+r.cfg.Extension))
	if err != nil {
		return nil, fmt.Errorf("tiling: listing tiles: %w", err)
	}

	if r.progress != nil {
		r.progress.Start(len(paths))
		defer r.progress.Finish()
	}

	type scanResult struct {
		ids []int
		err error
	}
	results := make([]scanResult, len(paths))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				ids, err := r.scanFile(paths[i])
				results[i] = scanResult{ids: ids, err: err}
				if r.progress != nil {
					r.progress.Increment()
				}
			}
		}()
	}

feed:
	for i := range paths {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("tiling: scan cancelled: %w", err)
	}

	lines := LinesDictionary{}
	for i, res := range results {
		if res.err != nil {
			return nil, fmt.Errorf("tiling: scanning %s: %w", paths[i], res.err)
		}
		name := filepath.Base(paths[i])
		for _, id := range res.ids {
			lines[id] = append(lines[id], name)
		}
	}
	return lines, nil
}

// scanFile returns the distinct point-source identifiers of one tile.
func (r *Reconstructor) scanFile(path string) ([]int, error) {
	c, err := r.clouds.Read(path, cloud.ModeStandard)
	if err != nil {
		return nil, err
	}
	return c.PointSourceIDs()
}

// writeLines merges each identifier's tile subset into its final output
// file. Identifiers are zero-padded to the width of the longest identifier
// so output names sort lexicographically.
func (r *Reconstructor) writeLines(ctx context.Context, dir string, lines LinesDictionary) ([]string, error) {
	ids := make([]int, 0, len(lines))
	width := 0
	for id := range lines {
		ids = append(ids, id)
		if w := len(strconv.Itoa(id)); w > width {
			width = w
		}
	}
	sort.Ints(ids)

	var outputs []string
	for _, id := range ids {
		name := r.prefix + fmt.Sprintf("%0*d", width, id) + r.suffix
		output := filepath.Join(dir, name)

		inputs := make([]string, len(lines[id]))
		for i, base := range lines[id] {
			inputs[i] = filepath.Join(dir, base)
		}
		if err := r.tools.MergeByPointSource(ctx, inputs, id, output); err != nil {
			return nil, err
		}
		outputs = append(outputs, name)
	}

	if r.cfg.StripBuffer {
		if err := r.cleanupStripped(dir, outputs); err != nil {
			return nil, err
		}
	}
	return outputs, nil
}

// cleanupStripped relocates the final outputs back to the workspace and
// removes the intermediate buffer-stripped directory with its leftovers.
func (r *Reconstructor) cleanupStripped(dir string, outputs []string) error {
	for _, name := range outputs {
		src := filepath.Join(dir, name)
		dst := filepath.Join(r.cfg.Workspace, name)
		if err := r.fs.Rename(src, dst); err != nil {
			return fmt.Errorf("tiling: relocating %s: %w", name, err)
		}
	}
	if r.fs.Exists(dir) {
		if err := r.fs.RemoveAll(dir); err != nil {
			return fmt.Errorf("tiling: removing %s: %w", dir, err)
		}
	}
	return nil
}
