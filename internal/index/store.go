// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index records convert runs and their per-source outcomes in a
// SQLite database so past conversions can be listed, filtered and exported.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pla2blif/pkg/types"
)

const (
	// dbDir and dbFile form the default location under the destination directory.
	dbDir  = ".index"
	dbFile = "pla2blif.db"

	defaultMaxResults = 100

	// timeLayout is fixed-width so stored timestamps sort lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// ErrNoRuns is returned by LatestRun when nothing has been recorded yet.
var ErrNoRuns = errors.New("no runs recorded")

// DefaultPath returns the index location used when none is configured.
func DefaultPath(destDir string) string {
	return filepath.Join(destDir, dbDir, dbFile)
}

// Run is one recorded convert invocation.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	SourceDir  string    `json:"source_dir" yaml:"source_dir"`
	DestDir    string    `json:"dest_dir" yaml:"dest_dir"`
	Converted  int       `json:"converted" yaml:"converted"`
	Skipped    int       `json:"skipped" yaml:"skipped"`
	Failed     int       `json:"failed" yaml:"failed"`
	Canceled   int       `json:"canceled" yaml:"canceled"`

	// Conversions is only populated when recording; queries return runs
	// without their conversions.
	Conversions []types.Conversion `json:"conversions,omitempty" yaml:"conversions,omitempty"`
}

// Store manages the index database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates the index database at path, creating parent
// directories and the schema as needed.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			source_dir TEXT,
			dest_dir TEXT,
			converted INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			canceled INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS conversions (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			source TEXT NOT NULL,
			model TEXT NOT NULL,
			destination TEXT NOT NULL,
			status TEXT NOT NULL,
			error_kind TEXT,
			error TEXT,
			inputs INTEGER,
			outputs INTEGER,
			row_count INTEGER,
			minterms INTEGER,
			converted_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_run_id ON conversions(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_model ON conversions(model)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun stores a run and all of its conversions in one transaction.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, source_dir, dest_dir, converted, skipped, failed, canceled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, formatTime(run.StartedAt), formatTime(run.FinishedAt), run.SourceDir, run.DestDir,
		run.Converted, run.Skipped, run.Failed, run.Canceled,
	); err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO conversions (run_id, source, model, destination, status, error_kind, error,
			inputs, outputs, row_count, minterms, converted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing conversion insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range run.Conversions {
		if _, err := stmt.ExecContext(ctx,
			run.ID, c.Source, c.Model, c.Destination, string(c.Status), string(c.ErrorKind), c.Error,
			c.Inputs, c.Outputs, c.Rows, c.Minterms, formatTime(c.ConvertedAt),
		); err != nil {
			return fmt.Errorf("inserting conversion %s: %w", c.Source, err)
		}
	}

	return tx.Commit()
}

// Runs returns the most recent runs first, at most limit of them
// (a default applies when limit is not positive).
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultMaxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, source_dir, dest_dir, converted, skipped, failed, canceled
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recently started run, or ErrNoRuns.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	runs, err := s.Runs(ctx, 1)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, ErrNoRuns
	}
	return runs[0], nil
}

// QueryOptions filters Conversions.
type QueryOptions struct {
	// RunID restricts results to one run; empty searches every run.
	RunID string

	// Status filters by conversion status.
	Status types.ConversionStatus

	// Model filters by model name.
	Model string

	// MaxResults limits result count. Zero uses the default.
	MaxResults int
}

// Conversion is a recorded conversion together with the run it belongs to.
type Conversion struct {
	types.Conversion `yaml:",inline"`
	RunID            string `json:"run_id" yaml:"run_id"`
}

// Conversions returns recorded conversions matching opts, newest run first
// and in source order within a run.
func (s *Store) Conversions(ctx context.Context, opts QueryOptions) ([]Conversion, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT c.run_id, c.source, c.model, c.destination, c.status, c.error_kind, c.error,
			c.inputs, c.outputs, c.row_count, c.minterms, c.converted_at
		FROM conversions c
		JOIN runs r ON r.id = c.run_id
		WHERE 1=1`)

	if opts.RunID != "" {
		qb.WriteString(` AND c.run_id = ?`)
		args = append(args, opts.RunID)
	}
	if opts.Status != "" {
		qb.WriteString(` AND c.status = ?`)
		args = append(args, string(opts.Status))
	}
	if opts.Model != "" {
		qb.WriteString(` AND c.model = ?`)
		args = append(args, opts.Model)
	}

	qb.WriteString(` ORDER BY r.started_at DESC, c.rowid LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying conversions: %w", err)
	}
	defer rows.Close()

	var results []Conversion
	for rows.Next() {
		var (
			c           Conversion
			status      string
			errorKind   sql.NullString
			errMsg      sql.NullString
			convertedAt sql.NullString
		)
		if err := rows.Scan(
			&c.RunID, &c.Source, &c.Model, &c.Destination, &status, &errorKind, &errMsg,
			&c.Inputs, &c.Outputs, &c.Rows, &c.Minterms, &convertedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning conversion: %w", err)
		}
		c.Status = types.ConversionStatus(status)
		c.ErrorKind = types.ErrorKind(errorKind.String)
		c.Error = errMsg.String
		c.ConvertedAt = parseTime(convertedAt.String)
		results = append(results, c)
	}
	return results, rows.Err()
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		r                 Run
		started, finished string
		srcDir, dstDir    sql.NullString
	)
	if err := rows.Scan(&r.ID, &started, &finished, &srcDir, &dstDir,
		&r.Converted, &r.Skipped, &r.Failed, &r.Canceled); err != nil {
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	r.StartedAt = parseTime(started)
	r.FinishedAt = parseTime(finished)
	r.SourceDir = srcDir.String
	r.DestDir = dstDir.String
	return r, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
