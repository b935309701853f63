package main

import (
	"context"
	"fmt"
	"log"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyJournal string
	historyLimit   int
	historyRun     string
)

func init() {
	historyCmd.Flags().StringVar(&historyJournal, "journal", "", "SQLite journal to read (default from config)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to list")
	historyCmd.Flags().StringVar(&historyRun, "run", "", "Show the diagnostics of one run")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs from the journal",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s := setup()
		store := s.openJournal(historyJournal)
		if store == nil {
			log.Fatalf("No journal configured; pass --journal or set journal.path")
		}
		defer store.Close()

		ctx := context.Background()
		out := cmd.OutOrStdout()

		if historyRun != "" {
			run, err := store.GetRun(ctx, historyRun)
			if err != nil {
				log.Fatalf("Failed to load run: %v", err)
			}
			diags, err := store.RunDiagnostics(ctx, run.ID)
			if err != nil {
				log.Fatalf("Failed to load diagnostics: %v", err)
			}
			fmt.Fprintf(out, "run %s  %s  %s\n", run.ID, run.File, run.StartedAt.Local().Format(time.DateTime))
			for _, d := range diags {
				fmt.Fprintf(out, "%s:%d:%d: %s: %s\n", run.File, d.Line, d.Column, d.Severity, d.Message)
			}
			return
		}

		runs, err := store.RecentRuns(ctx, historyLimit)
		if err != nil {
			log.Fatalf("Failed to list runs: %v", err)
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STARTED\tRUN\tFILE\tEXIT\tERRORS\tWARNINGS\tDURATION")
		for _, r := range runs {
			exit := "-"
			if r.HasExit {
				exit = fmt.Sprint(r.ExitCode)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
				r.StartedAt.Local().Format(time.DateTime), r.ID[:min(8, len(r.ID))], r.File, exit,
				r.Errors, r.Warnings, r.Duration.Round(time.Microsecond))
		}
		_ = tw.Flush()
	},
}
