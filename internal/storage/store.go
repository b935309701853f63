package storage

import (
	"context"
	"time"

	"brunhild/internal/diag"
)

// RunRecord is one finished run as kept in the journal.
type RunRecord struct {
	ID        string
	File      string
	StartedAt time.Time
	Duration  time.Duration
	// ExitCode is main's result; HasExit is false when main did not finish.
	ExitCode int
	HasExit  bool
	Errors   int
	Warnings int
}

// DiagnosticRecord is a diagnostic flattened for storage.
type DiagnosticRecord struct {
	RunID    string
	Code     diag.Code
	Severity string
	Phase    string
	Line     int
	Column   int
	Message  string
}

// Journal persists finished runs so they can be listed later.
type Journal interface {
	// SaveRun stores a run and its diagnostics atomically.
	SaveRun(ctx context.Context, run RunRecord, diags []diag.Diagnostic) error

	// RecentRuns returns up to limit runs, newest first.
	RecentRuns(ctx context.Context, limit int) ([]RunRecord, error)

	// GetRun retrieves a run by its ID.
	GetRun(ctx context.Context, id string) (RunRecord, error)

	// RunDiagnostics returns the diagnostics of a run in their stored order.
	RunDiagnostics(ctx context.Context, runID string) ([]DiagnosticRecord, error)

	Close() error
}
