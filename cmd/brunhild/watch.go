package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"brunhild/internal/diag"
	"brunhild/internal/pipeline"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const watchDebounce = 100 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-run a program every time it is saved",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := setup()
		path, err := filepath.Abs(args[0])
		if err != nil {
			log.Fatalf("Failed to resolve %s: %v", args[0], err)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			log.Fatalf("Failed to create watcher: %v", err)
		}
		defer watcher.Close()
		// Editors often replace the file, so watch its directory.
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			log.Fatalf("Failed to watch directory: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		out := cmd.OutOrStdout()
		printer := diag.NewPrinter(out, s.cfg.Run.Color)
		run := func() {
			opts := s.options()
			res, err := pipeline.RunFile(ctx, path, opts)
			if err != nil {
				s.logger.Error("run failed", "file", path, "error", err)
				return
			}
			fmt.Fprintf(out, "==> %s (%s) <==\n", args[0], res.Duration.Round(time.Microsecond))
			fmt.Fprint(out, res.Output)
			if res.Output != "" && res.Output[len(res.Output)-1] != '\n' {
				fmt.Fprintln(out)
			}
			printDiagnostics(out, printer, res)
			if res.Exit != nil {
				fmt.Fprintf(out, "exit %s\n", res.Exit)
			}
		}

		run()
		s.logger.Info("watching for changes", "file", path)

		var timer *time.Timer
		fire := make(chan struct{}, 1)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				s.logger.Info("file changed", "file", path, "op", event.Op.String())
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			case <-fire:
				run()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Error("watch error", "error", err)
			}
		}
	},
}
