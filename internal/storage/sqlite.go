package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"brunhild/internal/diag"

	_ "github.com/mattn/go-sqlite3"
)

var ErrRunNotFound = errors.New("run not found")

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite journal.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			file TEXT,
			started_at INTEGER,
			duration_ns INTEGER,
			exit_code INTEGER,
			has_exit INTEGER,
			errors INTEGER,
			warnings INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS diagnostics (
			run_id TEXT,
			seq INTEGER,
			code TEXT,
			severity TEXT,
			phase TEXT,
			line INTEGER,
			col INTEGER,
			message TEXT,
			PRIMARY KEY (run_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_file ON runs(file);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run RunRecord, diags []diag.Diagnostic) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, file, started_at, duration_ns, exit_code, has_exit, errors, warnings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			file=excluded.file,
			started_at=excluded.started_at,
			duration_ns=excluded.duration_ns,
			exit_code=excluded.exit_code,
			has_exit=excluded.has_exit,
			errors=excluded.errors,
			warnings=excluded.warnings
	`, run.ID, run.File, run.StartedAt.UnixNano(), int64(run.Duration), run.ExitCode, run.HasExit, run.Errors, run.Warnings)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM diagnostics WHERE run_id = ?", run.ID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO diagnostics (run_id, seq, code, severity, phase, line, col, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, d := range diags {
		if _, err := stmt.ExecContext(ctx, run.ID, i, string(d.Code), d.Severity.String(), d.Phase.String(),
			d.Span.Start.Line, d.Span.Start.Column, d.Message); err != nil {
			return fmt.Errorf("failed to save diagnostic: %w", err)
		}
	}

	return tx.Commit()
}

const runColumns = "id, file, started_at, duration_ns, exit_code, has_exit, errors, warnings"

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunRecord, error) {
	var r RunRecord
	var started, duration int64
	if err := row.Scan(&r.ID, &r.File, &started, &duration, &r.ExitCode, &r.HasExit, &r.Errors, &r.Warnings); err != nil {
		return RunRecord{}, err
	}
	r.StartedAt = time.Unix(0, started).UTC()
	r.Duration = time.Duration(duration)
	return r, nil
}

func (s *SQLiteStore) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, "SELECT "+runColumns+" FROM runs ORDER BY started_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

func (s *SQLiteStore) RunDiagnostics(ctx context.Context, runID string) ([]DiagnosticRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, code, severity, phase, line, col, message
		FROM diagnostics WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DiagnosticRecord
	for rows.Next() {
		var d DiagnosticRecord
		var code string
		if err := rows.Scan(&d.RunID, &code, &d.Severity, &d.Phase, &d.Line, &d.Column, &d.Message); err != nil {
			return nil, err
		}
		d.Code = diag.Code(code)
		out = append(out, d)
	}
	return out, rows.Err()
}
