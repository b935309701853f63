package pipeline

import (
	"context"
	"fmt"
	"time"

	"brunhild/internal/diag"
	"brunhild/internal/eval"
	"brunhild/internal/storage"
)

// Record flattens a result for the run journal.
func (r *Result) Record() storage.RunRecord {
	errs, warns := diag.Tally(r.Diagnostics)
	if r.Err != nil {
		errs++
	}
	_, hasExit := r.Exit.(eval.Int)
	return storage.RunRecord{
		ID:        r.RunID,
		File:      r.File,
		StartedAt: time.Now().UTC().Add(-r.Duration),
		Duration:  r.Duration,
		ExitCode:  r.ExitCode(),
		HasExit:   hasExit,
		Errors:    errs,
		Warnings:  warns,
	}
}

// SaveResults writes finished runs to j in order.
func SaveResults(ctx context.Context, j storage.Journal, results []*Result) error {
	for _, r := range results {
		if err := j.SaveRun(ctx, r.Record(), r.Diagnostics); err != nil {
			return fmt.Errorf("failed to journal run %s: %w", r.RunID, err)
		}
	}
	return nil
}
