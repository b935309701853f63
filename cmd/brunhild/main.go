package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"brunhild/internal/config"
	"brunhild/internal/crawler"
	"brunhild/internal/diag"
	"brunhild/internal/logging"
	"brunhild/internal/pipeline"
	"brunhild/internal/storage"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:          "brunhild",
		Short:        "Run, check and explore SysY programs",
		SilenceUsage: true,
	}
	configPath string
	logLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a brunhild.yaml or brunhild.toml file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(astCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
}

type settings struct {
	cfg    *config.Config
	logger *slog.Logger
}

// setup loads configuration and the logger. Failures here are fatal.
func setup() *settings {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger, err := logging.New(os.Stderr, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	return &settings{cfg: cfg, logger: logger}
}

func (s *settings) options() pipeline.Options {
	return pipeline.Options{
		MaxDepth:     s.cfg.Limits.MaxDepth,
		MaxCallDepth: s.cfg.Limits.MaxCallDepth,
		MaxSteps:     s.cfg.Limits.MaxSteps,
		Logger:       s.logger,
	}
}

func (s *settings) openJournal(path string) *storage.SQLiteStore {
	if path == "" {
		path = s.cfg.Journal.Path
	}
	if path == "" {
		return nil
	}
	store, err := storage.NewSQLiteStore(path)
	if err != nil {
		log.Fatalf("Failed to open journal %s: %v", path, err)
	}
	return store
}

func collectFiles(args []string) []string {
	files, err := crawler.NewCrawler("sy").Collect(args)
	if err != nil {
		log.Fatalf("Failed to collect programs: %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("No .sy programs found in %v", args)
	}
	return files
}

// printDiagnostics writes diagnostics and a one-line tally.
func printDiagnostics(w io.Writer, p *diag.Printer, res *pipeline.Result) {
	if err := p.PrintAll(res.Diagnostics); err != nil {
		log.Printf("Warning: failed to print diagnostics: %v", err)
	}
	if errs, warns := diag.Tally(res.Diagnostics); errs+warns > 0 {
		fmt.Fprintf(w, "%s: %d error(s), %d warning(s)\n", res.File, errs, warns)
	}
}

func printUnits(w io.Writer, res *pipeline.Result) {
	for _, u := range res.Units {
		value := "-"
		if u.Value != nil {
			value = u.Value.String()
		}
		fmt.Fprintf(w, "  %-24s %-8s %s\n", u.Name, u.Status, value)
	}
	if res.Exit != nil {
		fmt.Fprintf(w, "  exit %s\n", res.Exit)
	}
}
