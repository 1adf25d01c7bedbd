// Command nitro compiles a Nitro source file into its textual
// intermediate representation. Argument parsing, file I/O, and plain-text
// diagnostic rendering live here, at the program's edge, per spec.md's
// "External interfaces" section — the compiler package itself never
// touches the filesystem or the terminal.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mirrrek/nitrogen/internal/compiler"
	"github.com/Mirrrek/nitrogen/internal/diag"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:           "nitro <input> <output>",
		Short:         "Compile a Nitro source file to its textual intermediate representation",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if target != "debug" {
				return fmt.Errorf("unsupported --target %q (only \"debug\" is implemented)", target)
			}
			return run(args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&target, "target", "debug", `compilation target; only "debug" is implemented`)
	return cmd
}

func run(inputPath, outputPath string) error {
	setupLogging()

	src, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	sink := &stderrSink{source: string(src)}
	ir, err := compiler.Compile(inputPath, string(src), sink)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("compilation failed")
	}

	if err := os.WriteFile(outputPath, ir, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	return nil
}

func setupLogging() {
	level := slog.LevelWarn
	if os.Getenv("NITRO_DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// stderrSink renders diagnostics to stderr with a source snippet, the way
// a caller-facing CLI surface is expected to (per spec.md's "diagnostic
// sink contract"). It is distinct from the internal slog-based debug
// logging configured by setupLogging.
type stderrSink struct {
	source string
}

func (s *stderrSink) Emit(d diag.Diagnostic) {
	if d.Source == "" {
		d.Source = s.source
	}
	fmt.Fprint(os.Stderr, diag.Format(d))
}
