package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"brunhild/internal/diag"
	"brunhild/internal/eval"
	"brunhild/internal/pipeline"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

const (
	historyFile = ".brunhild_history"
	promptMain  = "sy> "
	promptCont  = "..> "
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s := setup()
		out := cmd.OutOrStdout()

		home, _ := os.UserHomeDir()
		histPath := filepath.Join(home, historyFile)

		ln := liner.NewLiner()
		defer ln.Close()
		ln.SetCtrlCAborts(true)

		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()

		opts := s.options()
		opts.Stdout = out
		session := pipeline.NewSession(opts)
		defer session.Close()
		printer := diag.NewPrinter(out, s.cfg.Run.Color)

		fmt.Fprintln(out, "brunhild repl. Type :names to list globals, :quit to exit.")
		for {
			input, ok := readInput(ln)
			if !ok {
				fmt.Fprintln(out)
				return
			}
			switch strings.TrimSpace(input) {
			case "":
				continue
			case ":quit", ":q":
				return
			case ":names":
				fmt.Fprintln(out, strings.Join(session.Names(), " "))
				continue
			}
			ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))

			reply, err := session.Eval(context.Background(), input)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			if reply.Output != "" && !strings.HasSuffix(reply.Output, "\n") {
				fmt.Fprintln(out)
			}
			_ = printer.PrintAll(reply.Diagnostics)
			if reply.Value != nil {
				if _, poisoned := reply.Value.(eval.Error); !poisoned {
					fmt.Fprintln(out, reply.Value)
				}
			}
			for _, name := range reply.Defined {
				fmt.Fprintf(out, "defined %s\n", name)
			}
		}
	},
}

// readInput keeps prompting while braces or parentheses are still open.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	depth := 0
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		depth += strings.Count(line, "{") + strings.Count(line, "(") -
			strings.Count(line, "}") - strings.Count(line, ")")
		if depth <= 0 {
			return b.String(), true
		}
	}
}
