// Package tiling reassembles spatially tiled, overlap-buffered point-cloud
// files into per-flightline files keyed by the point-source identifier each
// point carries. The heavy lifting (buffer stripping, identifier-filtered
// merging) is delegated to an external LAStools-style toolchain behind the
// Toolchain interface so the orchestration is testable without the binaries.
package tiling

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/coastal-data/bathyscan/internal/monitoring"
)

// ErrExternalTool reports a failed external toolchain invocation. Any such
// failure aborts the enclosing reconstruction run; the tools run outside our
// control and a non-zero exit means the environment is broken, not the data.
var ErrExternalTool = errors.New("tiling: external tool failed")

// Toolchain is the contract with the external point-cloud toolchain. The exit
// status is the only error signal either operation consumes.
type Toolchain interface {
	// RemoveBuffer strips tile overlap buffers from every file matching
	// glob, writing each result beside its input with the tool's "_1"
	// suffix.
	RemoveBuffer(ctx context.Context, glob string, cores int) error

	// MergeByPointSource merges the points carrying the given
	// point-source identifier from inputs into output.
	MergeByPointSource(ctx context.Context, inputs []string, id int, output string) error
}

// Default executables of the external toolchain.
const (
	DefaultTileCommand  = "lastile"
	DefaultMergeCommand = "lasmerge"
)

// ExecToolchain shells out to the LAStools binaries.
type ExecToolchain struct {
	TileCommand  string
	MergeCommand string

	// Timeout bounds each invocation; expiry is an ErrExternalTool. Zero
	// means no timeout.
	Timeout time.Duration
}

// NewExecToolchain returns a toolchain using the default executable names.
func NewExecToolchain(timeout time.Duration) *ExecToolchain {
	return &ExecToolchain{
		TileCommand:  DefaultTileCommand,
		MergeCommand: DefaultMergeCommand,
		Timeout:      timeout,
	}
}

// RemoveBuffer invokes the tiling tool with -remove_buffer over glob.
func (t *ExecToolchain) RemoveBuffer(ctx context.Context, glob string, cores int) error {
	args := []string{
		"-i", glob,
		"-remove_buffer",
		"-cores", strconv.Itoa(cores),
		"-olaz",
	}
	return t.run(ctx, t.TileCommand, args)
}

// MergeByPointSource invokes the merge tool constrained to one identifier.
func (t *ExecToolchain) MergeByPointSource(ctx context.Context, inputs []string, id int, output string) error {
	args := []string{"-i"}
	args = append(args, inputs...)
	args = append(args,
		"-keep_point_source", strconv.Itoa(id),
		"-o", output,
	)
	return t.run(ctx, t.MergeCommand, args)
}

func (t *ExecToolchain) run(ctx context.Context, name string, args []string) error {
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	monitoring.Logf("running %s %v", name, args)
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %s timed out: %v", ErrExternalTool, name, ctxErr)
		}
		return fmt.Errorf("%w: %s: %v, output: %s", ErrExternalTool, name, err, output)
	}
	return nil
}

// Verify at compile time that *ExecToolchain implements Toolchain.
var _ Toolchain = (*ExecToolchain)(nil)
