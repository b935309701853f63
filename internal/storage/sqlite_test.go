package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"brunhild/internal/diag"
	"brunhild/internal/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testRun(id string, started time.Time) RunRecord {
	return RunRecord{
		ID:        id,
		File:      "prog.sy",
		StartedAt: started,
		Duration:  1500 * time.Microsecond,
		ExitCode:  3,
		HasExit:   true,
		Errors:    1,
	}
}

func TestSQLiteStore_SaveRun_RoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := testRun("run-1", started)
	diags := []diag.Diagnostic{
		{
			Severity: diag.SeverityError,
			Code:     diag.RuntimeFault,
			Phase:    diag.PhaseEvaluate,
			Span:     source.Span{File: "prog.sy", Start: source.Pos{Line: 2, Column: 9}},
			Message:  "Division by zero",
		},
		{
			Severity: diag.SeverityWarning,
			Code:     diag.UnusedVariable,
			Phase:    diag.PhaseResolve,
			Span:     source.Span{File: "prog.sy", Start: source.Pos{Line: 4, Column: 7}},
			Message:  "unused variable `t`",
		},
	}
	require.NoError(t, store.SaveRun(ctx, run, diags))

	loaded, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run, loaded)

	records, err := store.RunDiagnostics(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, diag.RuntimeFault, records[0].Code)
	assert.Equal(t, "error", records[0].Severity)
	assert.Equal(t, "evaluate", records[0].Phase)
	assert.Equal(t, 2, records[0].Line)
	assert.Equal(t, 9, records[0].Column)
	assert.Equal(t, "unused variable `t`", records[1].Message)
}

func TestSQLiteStore_SaveRun_ReplacesDiagnostics(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	run := testRun("run-1", time.Now().UTC())
	d := diag.Diagnostic{Severity: diag.SeverityError, Code: diag.TypeMismatch, Phase: diag.PhaseCheck, Message: "first"}
	require.NoError(t, store.SaveRun(ctx, run, []diag.Diagnostic{d, d}))
	require.NoError(t, store.SaveRun(ctx, run, nil))

	records, err := store.RunDiagnostics(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLiteStore_RecentRuns(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.SaveRun(ctx, testRun(id, base.Add(time.Duration(i)*time.Minute)), nil))
	}

	runs, err := store.RecentRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
}

func TestSQLiteStore_GetRun_NotFound(t *testing.T) {
	store := openStore(t)
	_, err := store.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}
