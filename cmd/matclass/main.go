// Command matclass classifies material documents against a shader family
// registry, audits their textures and synchronizes shared properties.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
)

// ExitError is an error carrying a process exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

type command struct {
	run     func(ctx context.Context, outW, errW io.Writer, args []string) error
	summary string
}

var commands = map[string]command{
	"analyze":  {run: runAnalyze, summary: "Classify materials, validate them and audit their textures."},
	"optimize": {run: runOptimize, summary: "Apply recommended import settings to material textures."},
	"common":   {run: runCommon, summary: "Check or set properties shared across materials."},
	"registry": {run: runRegistry, summary: "Print the loaded shader family registry."},
}

func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()

	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run dispatches to a subcommand.
func run(ctx context.Context, outW, errW io.Writer, args []string) error {
	if len(args) == 0 {
		usage(outW)
		return nil
	}

	name := args[0]
	switch name {
	case "-h", "-help", "--help", "help":
		usage(outW)
		return nil
	}

	cmd, ok := commands[name]
	if !ok {
		return &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q, run 'matclass help'", name)}
	}
	return cmd.run(ctx, outW, errW, args[1:])
}

func usage(w io.Writer) {
	fmt.Fprint(w, `
matclass - shader family classification and texture compliance for materials.

Usage:
  matclass <command> [options] [MATERIAL...]

Commands:
`)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-9s %s\n", name, commands[name].summary)
	}
	fmt.Fprint(w, `
Run 'matclass <command> -h' for command options.
`)
}
