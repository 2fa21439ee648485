// Package surveydb persists reconstruction runs in a SQLite survey index so
// operators can answer "which tiles fed flightline N, and when" long after the
// workspace is gone.
package surveydb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/coastal-data/bathyscan/internal/tiling"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrRunNotFound reports an unknown run identifier.
var ErrRunNotFound = errors.New("surveydb: run not found")

// SurveyDB is the survey run index.
type SurveyDB struct {
	*sql.DB
}

// Open opens (creating if needed) the survey database at path and applies any
// pending migrations.
func Open(path string) (*SurveyDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("surveydb: opening %s: %w", path, err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SurveyDB{db}, nil
}

// migrateUp applies the embedded migrations.
func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("surveydb: loading migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("surveydb: creating sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("surveydb: creating migrate instance: %w", err)
	}
	// Note: we don't close m because it would close the underlying DB
	// connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("surveydb: migration up failed: %w", err)
	}
	return nil
}

// Run is one recorded reconstruction.
type Run struct {
	ID        string
	Workspace string
	Started   time.Time
	Finished  time.Time
	LineCount int
	Outputs   []string
}

// RecordRun stores a completed reconstruction under a fresh run identifier.
func (s *SurveyDB) RecordRun(ctx context.Context, summary *tiling.RunSummary) error {
	_, err := s.InsertRun(ctx, summary)
	return err
}

// InsertRun stores a completed reconstruction and returns its identifier. The
// whole run is written in one transaction so a partial record never surfaces.
func (s *SurveyDB) InsertRun(ctx context.Context, summary *tiling.RunSummary) (string, error) {
	id := uuid.NewString()

	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("surveydb: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, workspace, started, finished, line_count)
		 VALUES (?, ?, ?, ?, ?)`,
		id, summary.Workspace,
		summary.Started.UTC().Format(time.RFC3339Nano),
		summary.Finished.UTC().Format(time.RFC3339Nano),
		len(summary.Lines),
	)
	if err != nil {
		return "", fmt.Errorf("surveydb: inserting run: %w", err)
	}

	lineIDs := make([]int, 0, len(summary.Lines))
	for lineID := range summary.Lines {
		lineIDs = append(lineIDs, lineID)
	}
	sort.Ints(lineIDs)
	for _, lineID := range lineIDs {
		for _, file := range summary.Lines[lineID] {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO run_lines (run_id, line_id, tile_file) VALUES (?, ?, ?)`,
				id, lineID, file,
			)
			if err != nil {
				return "", fmt.Errorf("surveydb: inserting run line: %w", err)
			}
		}
	}

	for i, name := range summary.Outputs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_outputs (run_id, position, filename) VALUES (?, ?, ?)`,
			id, i, name,
		)
		if err != nil {
			return "", fmt.Errorf("surveydb: inserting run output: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("surveydb: committing run: %w", err)
	}
	return id, nil
}

// Runs lists recorded runs, most recent first.
func (s *SurveyDB) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.QueryContext(ctx,
		`SELECT id, workspace, started, finished, line_count
		 FROM runs ORDER BY started DESC`)
	if err != nil {
		return nil, fmt.Errorf("surveydb: querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("surveydb: iterating runs: %w", err)
	}

	for i := range runs {
		outputs, err := s.runOutputs(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Outputs = outputs
	}
	return runs, nil
}

// GetRun fetches one run by identifier.
func (s *SurveyDB) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.QueryRowContext(ctx,
		`SELECT id, workspace, started, finished, line_count
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, err
	}
	run.Outputs, err = s.runOutputs(ctx, id)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// RunLines reconstructs the flightline-to-tiles dictionary of a run.
func (s *SurveyDB) RunLines(ctx context.Context, id string) (tiling.LinesDictionary, error) {
	rows, err := s.QueryContext(ctx,
		`SELECT line_id, tile_file FROM run_lines
		 WHERE run_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("surveydb: querying run lines: %w", err)
	}
	defer rows.Close()

	lines := tiling.LinesDictionary{}
	for rows.Next() {
		var lineID int
		var file string
		if err := rows.Scan(&lineID, &file); err != nil {
			return nil, fmt.Errorf("surveydb: scanning run line: %w", err)
		}
		lines[lineID] = append(lines[lineID], file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("surveydb: iterating run lines: %w", err)
	}
	return lines, nil
}

func (s *SurveyDB) runOutputs(ctx context.Context, id string) ([]string, error) {
	rows, err := s.QueryContext(ctx,
		`SELECT filename FROM run_outputs WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("surveydb: querying run outputs: %w", err)
	}
	defer rows.Close()

	var outputs []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("surveydb: scanning run output: %w", err)
		}
		outputs = append(outputs, name)
	}
	return outputs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var started, finished string
	if err := row.Scan(&run.ID, &run.Workspace, &started, &finished, &run.LineCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("surveydb: scanning run: %w", err)
	}
	var err error
	if run.Started, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return Run{}, fmt.Errorf("surveydb: parsing started time: %w", err)
	}
	if run.Finished, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return Run{}, fmt.Errorf("surveydb: parsing finished time: %w", err)
	}
	return run, nil
}

// Verify at compile time that *SurveyDB can record reconstruction runs.
var _ tiling.RunRecorder = (*SurveyDB)(nil)
