package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"brunhild/internal/ast"
	"brunhild/internal/builder"
	"brunhild/internal/diag"
	"brunhild/internal/pipeline"
	"brunhild/internal/source"
	"brunhild/internal/syntax"

	"github.com/spf13/cobra"
)

var checkColor bool

func init() {
	checkCmd.Flags().BoolVar(&checkColor, "color", false, "Colour diagnostics")
}

var checkCmd = &cobra.Command{
	Use:   "check <file|dir>...",
	Short: "Parse, resolve and type-check programs without running them",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := setup()
		files := collectFiles(args)
		opts := s.options()
		opts.CheckOnly = true

		results := pipeline.RunFiles(context.Background(), files, opts, s.cfg.Run.Jobs)

		out := cmd.OutOrStdout()
		printer := diag.NewPrinter(out, checkColor || s.cfg.Run.Color)
		failed := 0
		for _, res := range results {
			if res.Err != nil {
				fmt.Fprintf(out, "%s: check failed: %v\n", res.File, res.Err)
			}
			printDiagnostics(out, printer, res)
			if res.HasErrors {
				failed++
			}
		}
		fmt.Fprintf(out, "checked %d file(s), %d with errors\n", len(results), failed)
		if failed > 0 {
			os.Exit(1)
		}
	},
}

var astCmd = &cobra.Command{
	Use:   "ast <file>",
	Short: "Print the syntax tree of a program",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := setup()
		src, err := source.ReadFile(args[0])
		if err != nil {
			log.Fatalf("Failed to read %s: %v", args[0], err)
		}

		p := syntax.NewParser()
		defer p.Close()
		tree, err := p.Parse(context.Background(), src)
		if err != nil {
			log.Fatalf("Parse failed: %v", err)
		}
		c := diag.NewCollector()
		syntax.SyntaxErrors(tree.Root, c)
		prog := builder.Build(tree, c, builder.Options{MaxDepth: s.cfg.Limits.MaxDepth})

		out := cmd.OutOrStdout()
		if err := ast.Fprint(out, prog); err != nil {
			log.Fatalf("Failed to print tree: %v", err)
		}
		if err := diag.NewPrinter(out, s.cfg.Run.Color).PrintAll(c.Drain()); err != nil {
			log.Printf("Warning: failed to print diagnostics: %v", err)
		}
	},
}
