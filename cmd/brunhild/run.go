package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"brunhild/internal/diag"
	"brunhild/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	runJobs      int
	runInput     string
	runReport    string
	runJournal   string
	runShowUnits bool
	runColor     bool
	runMaxSteps  int64
)

func init() {
	runCmd.Flags().IntVarP(&runJobs, "jobs", "j", 0, "Programs to run concurrently (default from config)")
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "File to use as program input ('-' for stdin)")
	runCmd.Flags().StringVar(&runReport, "report", "", "Write the stage report as JSON (a directory when running several files)")
	runCmd.Flags().StringVar(&runJournal, "journal", "", "Record runs in this SQLite journal")
	runCmd.Flags().BoolVar(&runShowUnits, "show-units", false, "Print the result of every top-level unit")
	runCmd.Flags().BoolVar(&runColor, "color", false, "Colour diagnostics")
	runCmd.Flags().Int64Var(&runMaxSteps, "max-steps", 0, "Abort a unit after this many statements (0 is unlimited)")
}

var runCmd = &cobra.Command{
	Use:   "run <file|dir>...",
	Short: "Run programs and report their diagnostics",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := setup()
		files := collectFiles(args)

		opts := s.options()
		if cmd.Flags().Changed("max-steps") {
			opts.MaxSteps = runMaxSteps
		}
		jobs := s.cfg.Run.Jobs
		if cmd.Flags().Changed("jobs") {
			jobs = runJobs
		}
		showUnits := s.cfg.Run.ShowUnits || runShowUnits
		color := s.cfg.Run.Color || runColor

		switch runInput {
		case "":
			if len(files) == 1 {
				opts.Stdin = os.Stdin
			}
		case "-":
			opts.Stdin = os.Stdin
		default:
			f, err := os.Open(runInput)
			if err != nil {
				log.Fatalf("Failed to open input: %v", err)
			}
			defer f.Close()
			opts.Stdin = f
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var results []*pipeline.Result
		if len(files) == 1 {
			opts.Stdout = os.Stdout
			res, err := pipeline.RunFile(ctx, files[0], opts)
			if err != nil {
				log.Fatalf("Run failed: %v", err)
			}
			results = []*pipeline.Result{res}
		} else {
			results = pipeline.RunFiles(ctx, files, opts, jobs)
		}

		out := cmd.OutOrStdout()
		printer := diag.NewPrinter(out, color)
		failed := false
		for _, res := range results {
			if len(results) > 1 {
				fmt.Fprintf(out, "==> %s <==\n", res.File)
				io.WriteString(out, res.Output)
			}
			if res.Output != "" && res.Output[len(res.Output)-1] != '\n' {
				fmt.Fprintln(out)
			}
			if res.Err != nil {
				fmt.Fprintf(out, "%s: run failed: %v\n", res.File, res.Err)
			}
			printDiagnostics(out, printer, res)
			if showUnits {
				printUnits(out, res)
			}
			failed = failed || res.HasErrors
		}

		if runReport != "" {
			saveReports(results, runReport)
		}

		if store := s.openJournal(runJournal); store != nil {
			defer store.Close()
			if err := pipeline.SaveResults(ctx, store, results); err != nil {
				log.Printf("Warning: %v", err)
			} else {
				s.logger.Info("runs journaled", "count", len(results))
			}
		}

		if failed {
			stop()
			os.Exit(1)
		}
	},
}

func saveReports(results []*pipeline.Result, path string) {
	if len(results) == 1 {
		if err := results[0].Report.Save(path); err != nil {
			log.Printf("Warning: failed to save report: %v", err)
		}
		return
	}
	for _, res := range results {
		name := filepath.Base(res.File) + "." + res.RunID[:8] + ".json"
		if err := res.Report.Save(filepath.Join(path, name)); err != nil {
			log.Printf("Warning: failed to save report for %s: %v", res.File, err)
		}
	}
}
