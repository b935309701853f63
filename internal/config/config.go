package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFiles are tried in order when no config path is given.
var DefaultFiles = []string{"brunhild.yaml", "brunhild.yml", "brunhild.toml"}

type Config struct {
	Limits struct {
		MaxDepth     int   `yaml:"max_depth" toml:"max_depth"`
		MaxCallDepth int   `yaml:"max_call_depth" toml:"max_call_depth"`
		MaxSteps     int64 `yaml:"max_steps" toml:"max_steps"`
	} `yaml:"limits" toml:"limits"`
	Run struct {
		Jobs      int  `yaml:"jobs" toml:"jobs"`
		ShowUnits bool `yaml:"show_units" toml:"show_units"`
		Color     bool `yaml:"color" toml:"color"`
	} `yaml:"run" toml:"run"`
	Journal struct {
		Path string `yaml:"path" toml:"path"` // empty disables the journal
	} `yaml:"journal" toml:"journal"`
	Log struct {
		Level string `yaml:"level" toml:"level"`
	} `yaml:"log" toml:"log"`
}

func Default() *Config {
	var cfg Config
	cfg.Limits.MaxDepth = 1000
	cfg.Limits.MaxCallDepth = 4096
	cfg.Run.Jobs = 4
	cfg.Log.Level = "warn"
	return &cfg
}

// LoadConfig reads path on top of Default. An empty path tries DefaultFiles
// and falls back to Default when none exists. Environment variables, including
// those from a .env file, override the file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load the config file
	if path == "" {
		for _, name := range DefaultFiles {
			if _, err := os.Stat(name); err == nil {
				path = name
				break
			}
		}
	}
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// 3. Override with Environment Variables if present
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(file), cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if level := os.Getenv("BRUNHILD_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if journal := os.Getenv("BRUNHILD_JOURNAL"); journal != "" {
		cfg.Journal.Path = journal
	}
	ints := []struct {
		name string
		set  func(int64)
	}{
		{"BRUNHILD_JOBS", func(v int64) { cfg.Run.Jobs = int(v) }},
		{"BRUNHILD_MAX_STEPS", func(v int64) { cfg.Limits.MaxSteps = v }},
		{"BRUNHILD_MAX_CALL_DEPTH", func(v int64) { cfg.Limits.MaxCallDepth = int(v) }},
	}
	for _, e := range ints {
		raw := os.Getenv(e.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", e.name, err)
		}
		e.set(v)
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Limits.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("limits.max_depth must not be negative, got %d", c.Limits.MaxDepth))
	}
	if c.Limits.MaxCallDepth < 0 {
		errs = append(errs, fmt.Errorf("limits.max_call_depth must not be negative, got %d", c.Limits.MaxCallDepth))
	}
	if c.Limits.MaxSteps < 0 {
		errs = append(errs, fmt.Errorf("limits.max_steps must not be negative, got %d", c.Limits.MaxSteps))
	}
	if c.Run.Jobs < 0 {
		errs = append(errs, fmt.Errorf("run.jobs must not be negative, got %d", c.Run.Jobs))
	}
	return errors.Join(errs...)
}
