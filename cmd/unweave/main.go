package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"pkt.systems/unweave"
	"pkt.systems/unweave/internal/source"
)

func main() {
	cfg, err := parseOptions(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "unweave: %v\n", err)
		fmt.Fprintln(os.Stderr, "Try 'unweave --help' for more information.")
		os.Exit(2)
	}
	if cfg.help {
		usage(cfg.flags)
		return
	}
	if cfg.version {
		fmt.Println(version)
		return
	}

	logger := newLogger(cfg.verbose)

	if readsStdin(cfg) && isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Fprintln(os.Stderr, "unweave: reading from terminal; press Ctrl-D to finish")
	}

	start := time.Now()
	if cfg.files != nil {
		logger.Debug("unweaving into files",
			"pattern", cfg.files.Pattern,
			"inputs", len(cfg.files.Inputs),
			"template", cfg.files.Output)
		err = unweave.IntoFiles(cfg.files)
	} else {
		logger.Debug("unweaving into columns",
			"pattern", cfg.columns.Pattern,
			"inputs", len(cfg.columns.Inputs),
			"separator", cfg.columns.Separator)
		err = unweave.IntoColumns(cfg.columns)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "unweave: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("done", "elapsed", time.Since(start).Round(time.Millisecond))
}

func usage(fs *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Usage: unweave [OPTION...] PATTERN [FILE...]
Unweave interleaved streams of text lines using regular expression matching.

Each line is classified based on a stream tag extracted using the regular
expression PATTERN. The last capture group (or the whole match if there is no
explicit capture group) is used as the stream tag for the match. Without a
FILE, or when FILE is -, read standard input.

%s`, fs.FlagUsages())
}

func newLogger(verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

func readsStdin(cfg *config) bool {
	var inputs []string
	if cfg.files != nil {
		inputs = cfg.files.Inputs
	} else if cfg.columns != nil {
		inputs = cfg.columns.Inputs
	}
	for _, in := range inputs {
		if in == source.StdinPath {
			return true
		}
	}
	return false
}
