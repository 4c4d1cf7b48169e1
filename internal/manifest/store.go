package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded pipeline invocation.
type Run struct {
	ID           string     `json:"id"`
	Command      string     `json:"command"`
	Status       string     `json:"status"`
	DatasetRoot  string     `json:"dataset_root"`
	OutputRoot   string     `json:"output_root,omitempty"`
	Seed         uint64     `json:"seed"`
	ValRatio     float64    `json:"val_ratio"`
	TestRatio    float64    `json:"test_ratio"`
	FilesScanned int        `json:"files_scanned"`
	Train        int        `json:"train"`
	Val          int        `json:"val"`
	Test         int        `json:"test"`
	Error        string     `json:"error,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// Assignment records where one source file was placed.
type Assignment struct {
	SourceSplit string `json:"source_split"`
	FileName    string `json:"file_name"`
	TargetSplit string `json:"target_split"`
}

// Finding records one consistency finding.
type Finding struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Store manages manifest persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the manifest database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure manifest directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// BeginRun inserts a run in the running state.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("run id is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (
            id, command, status, dataset_root, output_root, seed, val_ratio, test_ratio, started_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Command,
		StatusRunning,
		run.DatasetRoot,
		nullableString(run.OutputRoot),
		int64(run.Seed),
		run.ValRatio,
		run.TestRatio,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Outcome carries the final counters of a run.
type Outcome struct {
	FilesScanned int
	Train        int
	Val          int
	Test         int
	Err          error
}

// FinishRun marks a run succeeded or failed depending on outcome.Err.
func (s *Store) FinishRun(ctx context.Context, id string, outcome Outcome) error {
	status := StatusSucceeded
	var message any
	if outcome.Err != nil {
		status = StatusFailed
		message = outcome.Err.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, files_scanned = ?, train_count = ?, val_count = ?, test_count = ?,
            error_message = ?, finished_at = ? WHERE id = ?`,
		status,
		outcome.FilesScanned,
		outcome.Train,
		outcome.Val,
		outcome.Test,
		message,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// RecordAssignments stores the assignment of a run in one transaction.
func (s *Store) RecordAssignments(ctx context.Context, runID string, assignments []Assignment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assignments tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO assignments (run_id, source_split, file_name, target_split) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare assignment insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range assignments {
		if _, err := stmt.ExecContext(ctx, runID, a.SourceSplit, a.FileName, a.TargetSplit); err != nil {
			return fmt.Errorf("insert assignment %s/%s: %w", a.SourceSplit, a.FileName, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assignments: %w", err)
	}
	return nil
}

// RecordFindings stores the consistency findings of a run.
func (s *Store) RecordFindings(ctx context.Context, runID string, findings []Finding) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin findings tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, f := range findings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO findings (run_id, code, severity, message) VALUES (?, ?, ?, ?)`,
			runID, f.Code, f.Severity, f.Message,
		); err != nil {
			return fmt.Errorf("insert finding %s: %w", f.Code, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit findings: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, command, status, dataset_root, output_root, seed, val_ratio, test_ratio,
        files_scanned, train_count, val_count, test_count, error_message, started_at, finished_at
        FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
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
	return runs, rows.Err()
}

// GetRun fetches one run.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, command, status, dataset_root, output_root, seed, val_ratio, test_ratio,
        files_scanned, train_count, val_count, test_count, error_message, started_at, finished_at
        FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// Assignments returns the recorded assignment of a run ordered by source.
func (s *Store) Assignments(ctx context.Context, runID string) ([]Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_split, file_name, target_split FROM assignments
        WHERE run_id = ? ORDER BY source_split, file_name`, runID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.SourceSplit, &a.FileName, &a.TargetSplit); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Findings returns the recorded findings of a run.
func (s *Store) Findings(ctx context.Context, runID string) ([]Finding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, severity, message FROM findings WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("list findings: %w", err)
	}
	defer rows.Close()

	var out []Finding
	for rows.Next() {
		var f Finding
		if err := rows.Scan(&f.Code, &f.Severity, &f.Message); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run        Run
		outputRoot sql.NullString
		seed       int64
		errMessage sql.NullString
		startedAt  string
		finishedAt sql.NullString
	)
	if err := row.Scan(
		&run.ID, &run.Command, &run.Status, &run.DatasetRoot, &outputRoot, &seed,
		&run.ValRatio, &run.TestRatio, &run.FilesScanned, &run.Train, &run.Val, &run.Test,
		&errMessage, &startedAt, &finishedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.OutputRoot = outputRoot.String
	run.Seed = uint64(seed)
	run.Error = errMessage.String
	if ts, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
		run.StartedAt = ts
	}
	if finishedAt.Valid {
		if ts, err := time.Parse(time.RFC3339Nano, finishedAt.String); err == nil {
			run.FinishedAt = &ts
		}
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
