package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"brunhild/internal/diag"
	"brunhild/internal/eval"
	"brunhild/internal/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	res, err := RunFile(context.Background(), filepath.Join("testdata", "arith.sy"), Options{})
	require.NoError(t, err)

	assert.False(t, res.HasErrors)
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, "14\n", res.Output)
	assert.Equal(t, eval.Int(14), res.Exit)
	assert.Equal(t, 14, res.ExitCode())
	assert.NotEmpty(t, res.RunID)

	var stages []string
	for _, s := range res.Report.Stages {
		stages = append(stages, s.Name)
		assert.Equal(t, "ok", s.Status)
	}
	assert.Equal(t, []string{"parse", "build", "resolve", "check", "evaluate"}, stages)

	resolve, ok := res.Report.Stage("resolve")
	require.True(t, ok)
	assert.Equal(t, float64(0), resolve.Counters["unresolved"])
}

func TestRunFault(t *testing.T) {
	res, err := RunFile(context.Background(), filepath.Join("testdata", "fault.sy"), Options{})
	require.NoError(t, err)

	assert.True(t, res.HasErrors)
	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, diag.RuntimeFault, d.Code)
	assert.Equal(t, "testdata/fault.sy:1:9: error: Division by zero", d.String())

	assert.Equal(t, "7", res.Output)
	assert.Equal(t, eval.Int(7), res.Exit)
	require.NotEmpty(t, res.Report.Signals)
	assert.Equal(t, "RuntimeFault", res.Report.Signals[0].Code)
}

func TestRunSkipsBrokenUnits(t *testing.T) {
	res, err := RunFile(context.Background(), filepath.Join("testdata", "static.sy"), Options{})
	require.NoError(t, err)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diag.UnresolvedReference, res.Diagnostics[0].Code)
	assert.Equal(t, eval.Int(42), res.Exit)

	var statuses []eval.UnitStatus
	for _, u := range res.Units {
		statuses = append(statuses, u.Status)
	}
	assert.Equal(t, []eval.UnitStatus{eval.UnitOK, eval.UnitSkipped, eval.UnitOK, eval.UnitOK}, statuses)
}

func TestRunWithInput(t *testing.T) {
	res, err := RunFile(context.Background(), filepath.Join("testdata", "sort.sy"), Options{
		Stdin: strings.NewReader("5\n4 1 5 3 2\n"),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, "5: 1 2 3 4 5\n", res.Output)
}

func TestCheckOnly(t *testing.T) {
	res, err := RunFile(context.Background(), filepath.Join("testdata", "fault.sy"), Options{CheckOnly: true})
	require.NoError(t, err)
	assert.False(t, res.HasErrors)
	assert.Empty(t, res.Units)
	assert.Empty(t, res.Output)
	_, evaluated := res.Report.Stage("evaluate")
	assert.False(t, evaluated)
}

func TestRunIsolation(t *testing.T) {
	src := source.File{Name: "twice.sy", Content: []byte("int a = b;\nint c = d;\n")}
	first, err := Run(context.Background(), src, Options{})
	require.NoError(t, err)
	second, err := Run(context.Background(), src, Options{})
	require.NoError(t, err)

	assert.Len(t, first.Diagnostics, 2)
	assert.Equal(t, first.Diagnostics, second.Diagnostics)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := source.File{Name: "loop.sy", Content: []byte("int main() { while (1) {} return 0; }\n")}
	_, err := Run(ctx, src, Options{})
	require.Error(t, err)
}

func TestRunFiles(t *testing.T) {
	paths := []string{
		filepath.Join("testdata", "fault.sy"),
		filepath.Join("testdata", "arith.sy"),
		filepath.Join("testdata", "static.sy"),
		filepath.Join("testdata", "arith.sy"),
	}
	results := RunFiles(context.Background(), paths, Options{}, 2)
	require.Len(t, results, len(paths))

	for i, res := range results {
		assert.Equal(t, paths[i], res.File)
		assert.NoError(t, res.Err)
	}
	assert.Equal(t, "7", results[0].Output)
	assert.Equal(t, "14\n", results[1].Output)
	assert.Equal(t, 42, results[2].ExitCode())

	t.Run("failed run leaves the others", func(t *testing.T) {
		missing := filepath.Join("testdata", "nope.sy")
		results := RunFiles(context.Background(), []string{
			filepath.Join("testdata", "arith.sy"),
			missing,
			filepath.Join("testdata", "sort.sy"),
		}, Options{}, 1)
		require.Len(t, results, 3)

		assert.NoError(t, results[0].Err)
		assert.Equal(t, "14\n", results[0].Output)

		assert.Error(t, results[1].Err)
		assert.Equal(t, missing, results[1].File)
		assert.True(t, results[1].HasErrors)
		stage, ok := results[1].Report.Stage("load")
		require.True(t, ok)
		assert.Equal(t, "error", stage.Status)

		assert.NoError(t, results[2].Err)
		assert.Equal(t, 14, results[0].ExitCode())
	})
}

func TestReportSave(t *testing.T) {
	res, err := RunFile(context.Background(), filepath.Join("testdata", "fault.sy"), Options{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "reports", "run.json")
	require.NoError(t, res.Report.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var saved Report
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, res.RunID, saved.RunID)
	assert.Equal(t, 5, saved.Summary.StageCount)
	assert.Equal(t, 0, saved.Summary.FailedStages)
	assert.Equal(t, 1, saved.Summary.SignalsBySeverity["error"])
}
