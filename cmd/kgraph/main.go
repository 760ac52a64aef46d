// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later
// Package main implements the kgraph CLI for loading knowledge-graph TSV
// files into an embedded store and deriving the hierarchy and predicate
// index from them.
//
// Usage:
//
//	kgraph init                         Create .kgraph/project.yaml and the store
//	kgraph load --nodes N --edges E     Load node and edge files
//	kgraph materialize                  Rebuild hierarchy and predicate index
//	kgraph run                          Load, then materialize
//	kgraph status [--json]              Show relation counts
//	kgraph query <sql> [--json]         Run a read-only SQL query
//	kgraph lineage <id>                 Show ancestors of a node
//	kgraph graph [--category C]         Build an analysis graph
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	kgerrors "github.com/kraklabs/kgraph/internal/errors"
	"github.com/kraklabs/kgraph/internal/ui"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags are the options accepted before the command name.
type GlobalFlags struct {
	ConfigPath string
	JSON       bool
	NoColor    bool
	Quiet      bool
	Verbose    int
}

// env is what every command receives.
type env struct {
	globals GlobalFlags
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
	printer *ui.Printer
}

// config loads the project configuration named by --config.
func (e *env) config() (*Config, error) {
	return LoadConfig(e.globals.ConfigPath)
}

type command struct {
	summary string
	run     func(ctx context.Context, args []string, e *env) error
}

var commands = map[string]command{
	"init":        {"Create .kgraph/project.yaml and an empty store", runInit},
	"load":        {"Load node and edge TSV files into the store", runLoad},
	"materialize": {"Rebuild the hierarchy and the predicate index", runMaterialize},
	"run":         {"Load source files, then materialize", runPipeline},
	"status":      {"Show relation counts and top predicates", runStatus},
	"query":       {"Run a read-only SQL query against the store", runQuery},
	"graph":       {"Build an analysis graph from files or a filtered store", runGraph},
	"lineage":     {"List materialized ancestors and descendants of a node", runLineage},
}

var commandOrder = []string{"init", "load", "materialize", "run", "status", "query", "lineage", "graph"}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses global flags, dispatches to a command and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var globals GlobalFlags
	fs := flag.NewFlagSet("kgraph", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	fs.StringVar(&globals.ConfigPath, "config", "", "Path to project.yaml (default: ./"+DefaultConfigPath+")")
	fs.BoolVar(&globals.JSON, "json", false, "Write machine-readable JSON to stdout")
	fs.BoolVar(&globals.NoColor, "no-color", false, "Disable colored output")
	fs.BoolVarP(&globals.Quiet, "quiet", "q", false, "Suppress progress and informational output")
	fs.CountVarP(&globals.Verbose, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	showVersion := fs.Bool("version", false, "Show version and exit")
	fs.Usage = func() { usage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return kgerrors.ExitSuccess
		}
		return kgerrors.ExitInput
	}

	if *showVersion {
		fmt.Fprintf(stdout, "kgraph version %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		return kgerrors.ExitSuccess
	}

	// JSON output implies quiet so stdout holds a single document.
	if globals.JSON {
		globals.Quiet = true
	}
	ui.InitColors(globals.NoColor)

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return kgerrors.ExitInput
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", rest[0])
		fs.Usage()
		return kgerrors.ExitInput
	}

	e := &env{
		globals: globals,
		stdout:  stdout,
		stderr:  stderr,
		logger:  newLogger(stderr, globals.Verbose),
		printer: ui.NewPrinter(stdout, globals.Quiet),
	}
	if err := cmd.run(ctx, rest[1:], e); err != nil {
		if errors.Is(err, errHelpShown) {
			return kgerrors.ExitSuccess
		}
		return kgerrors.Report(stderr, err, globals.JSON, globals.NoColor)
	}
	return kgerrors.ExitSuccess
}

// newLogger writes text logs to w. Warnings are always shown.
func newLogger(w io.Writer, verbose int) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbose >= 2:
		level = slog.LevelDebug
	case verbose == 1:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprint(w, `kgraph - knowledge-graph ingestion

kgraph loads node and edge TSV files into an embedded SQL store,
materializes the bounded transitive closure of the hierarchy predicate,
keeps a per-predicate edge count and builds in-memory graphs for analysis.

Usage:
  kgraph [global options] <command> [options]

Commands:
`)
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-12s %s\n", name, commands[name].summary)
	}
	fmt.Fprint(w, "\nGlobal Options:\n")
	fmt.Fprint(w, fs.FlagUsages())
	fmt.Fprint(w, `
Environment Variables:
  KGRAPH_DB               Store file, overrides store.path
  KGRAPH_MAX_QUERY_BYTES  Size limit for 'kgraph query' (default 65536)
  NO_COLOR                Disable colored output

For command help: kgraph <command> --help
`)
}

// newCommandFlags returns a flag set for a command with a usage banner.
func newCommandFlags(e *env, name, synopsis, description string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage: kgraph %s %s\n\n%s\n\nOptions:\n", name, synopsis, description)
		fs.PrintDefaults()
	}
	return fs
}

var errHelpShown = errors.New("help shown")

// parseFlags maps flag errors to input errors; --help is reported as errHelpShown.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelpShown
		}
		return kgerrors.NewInputError("Invalid arguments", err.Error(), "Run 'kgraph "+fs.Name()+" --help'")
	}
	return nil
}
