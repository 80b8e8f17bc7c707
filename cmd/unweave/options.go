package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/pflag"
	"pkt.systems/unweave"
	"pkt.systems/unweave/internal/source"
)

const version = "unweave 1.0.0"

var (
	errMissingPattern = errors.New("missing required option 'pattern'")
	errMissingOutput  = errors.New("missing required option 'output'")
	errBothWidths     = errors.New("cannot specify both --line-width and --column-width")
	errCannotReread   = errors.New("cannot use two-pass mode reread for the specified inputs")
)

// config is the parsed command line. Exactly one of columns/files is set,
// unless help or version short-circuits the run.
type config struct {
	columns *unweave.ColumnsOptions
	files   *unweave.FilesOptions
	verbose bool
	version bool
	help    bool
	flags   *pflag.FlagSet
}

func parseOptions(args []string) (*config, error) {
	fs := pflag.NewFlagSet("unweave", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.Usage = func() {}

	mode := fs.StringP("mode", "m", "columns",
		"the unweave output mode, into separate columns in a single file (\"columns\", the default), or separate files (\"files\")")
	columnWidth := fs.UintP("column-width", "c", 0,
		"the width, in characters, of each column in the output (for columns mode)")
	lineWidth := fs.UintP("line-width", "l", 0,
		"the width, in characters, of each line in the output (for columns mode), with all columns having the same automatically calculated width")
	separator := fs.StringP("column-separator", "s", "",
		"the separator to print between columns in the output (for columns mode)")
	twoPass := fs.String("two-pass", "cached",
		"when a second pass through the data is required, either use the data and other information stored in memory from the first pass (\"cached\", the default), or reread and reprocess the data (\"reread\")")
	noMmap := fs.BoolP("no-mmap", "n", false,
		"do not use mmap to access file contents")
	output := fs.StringP("output", "o", "",
		"output file (for columns mode), or an output file template (for files mode) in which '%t' is replaced with the stream tag and '%Nd' with the stream number (starting from 0) zero-padded to a length of N digits")
	tabWidth := fs.StringP("tab-width", "t", "8",
		"in columns mode, the number of spaces to replace tab characters with (default: 8), or \"noexpand\" to disable tab expansion")
	verbose := fs.BoolP("verbose", "v", false,
		"log diagnostic information to standard error")
	showVersion := fs.Bool("version", false,
		"output version information and exit")
	help := fs.BoolP("help", "h", false,
		"display this help and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &config{verbose: *verbose, version: *showVersion, help: *help, flags: fs}
	if cfg.help || cfg.version {
		return cfg, nil
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return nil, errMissingPattern
	}
	pattern := rest[0]
	if pattern == "" {
		return nil, fmt.Errorf("invalid value %q for option pattern", pattern)
	}

	// Standard input (no FILE, or "-") goes through the /dev/stdin path, so
	// systems that support it get direct access to the underlying file in
	// case of redirection. Where the path cannot be opened, the source
	// package falls back to the stdin stream.
	inputs := make([]string, 0, len(rest)-1)
	for _, in := range rest[1:] {
		if in == "-" {
			in = source.StdinPath
		}
		inputs = append(inputs, in)
	}
	if len(inputs) == 0 {
		inputs = append(inputs, source.StdinPath)
	}

	switch *mode {
	case "columns", "files":
	default:
		return nil, fmt.Errorf("invalid value %q for option mode", *mode)
	}

	if *mode == "files" {
		if !fs.Changed("output") {
			return nil, errMissingOutput
		}
		for _, opt := range []string{"line-width", "column-width", "two-pass", "tab-width"} {
			if fs.Changed(opt) {
				return nil, fmt.Errorf("invalid option %q for selected mode", opt)
			}
		}
		cfg.files = &unweave.FilesOptions{
			Pattern: pattern,
			Inputs:  inputs,
			Output:  *output,
			NoMmap:  *noMmap,
		}
		return cfg, nil
	}

	if fs.Changed("line-width") && fs.Changed("column-width") {
		return nil, errBothWidths
	}
	width := unweave.Width{Mode: unweave.WidthAuto}
	switch {
	case fs.Changed("line-width"):
		if *lineWidth == 0 {
			return nil, fmt.Errorf("invalid value %q for option line-width", "0")
		}
		width = unweave.Width{Mode: unweave.WidthLine, Value: int(*lineWidth)}
	case fs.Changed("column-width"):
		if *columnWidth == 0 {
			return nil, fmt.Errorf("invalid value %q for option column-width", "0")
		}
		width = unweave.Width{Mode: unweave.WidthColumn, Value: int(*columnWidth)}
	}

	var pass unweave.TwoPass
	switch *twoPass {
	case "cached":
		pass = unweave.TwoPassCached
	case "reread":
		pass = unweave.TwoPassReread
	default:
		return nil, fmt.Errorf("invalid value %q for option two-pass", *twoPass)
	}
	if pass == unweave.TwoPassReread {
		for _, in := range inputs {
			if !source.CanReread(in) {
				return nil, errCannotReread
			}
		}
	}

	tab := 0
	if *tabWidth != "noexpand" {
		n, err := strconv.Atoi(*tabWidth)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid value %q for option tab-width", *tabWidth)
		}
		tab = n
	}

	cfg.columns = &unweave.ColumnsOptions{
		Pattern:   pattern,
		Inputs:    inputs,
		Output:    *output,
		Width:     width,
		Separator: *separator,
		TabWidth:  tab,
		TwoPass:   pass,
		NoMmap:    *noMmap,
	}
	return cfg, nil
}
