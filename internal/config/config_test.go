package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_YAML(t *testing.T) {
	path := write(t, "brunhild.yaml", `
limits:
  max_steps: 5000
run:
  jobs: 8
  show_units: true
journal:
  path: runs.db
log:
  level: debug
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, int64(5000), cfg.Limits.MaxSteps)
	assert.Equal(t, 4096, cfg.Limits.MaxCallDepth, "unset keys keep defaults")
	assert.Equal(t, 8, cfg.Run.Jobs)
	assert.True(t, cfg.Run.ShowUnits)
	assert.Equal(t, "runs.db", cfg.Journal.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_TOML(t *testing.T) {
	path := write(t, "brunhild.toml", `
[limits]
max_call_depth = 64

[run]
color = true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Limits.MaxCallDepth)
	assert.True(t, cfg.Run.Color)
	assert.Equal(t, 1000, cfg.Limits.MaxDepth)
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := write(t, "brunhild.yaml", "run:\n  jobs: 8\nlimits:\n  max_steps: 10\n")
	t.Setenv("BRUNHILD_JOBS", "2")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Run.Jobs, "env beats file")
	assert.Equal(t, int64(10), cfg.Limits.MaxSteps, "file beats default")
	assert.Equal(t, 1000, cfg.Limits.MaxDepth)

	t.Run("invalid env", func(t *testing.T) {
		t.Setenv("BRUNHILD_MAX_STEPS", "lots")
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(write(t, "brunhild.json", "{}"))
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = LoadConfig(write(t, "brunhild.yaml", "limits:\n  max_call_depth: -1\n"))
	assert.ErrorContains(t, err, "max_call_depth")
}

func TestLoadConfig_NoFile(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
