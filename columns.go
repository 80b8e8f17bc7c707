package unweave

import (
	"fmt"
	"io"
	"os"

	"pkt.systems/unweave/internal/source"
)

// WidthMode selects how column widths are determined.
type WidthMode int

const (
	// WidthAuto sizes every column to the widest line observed in it.
	WidthAuto WidthMode = iota
	// WidthColumn gives every column the same fixed width.
	WidthColumn
	// WidthLine divides a fixed total line width evenly across the final
	// column count.
	WidthLine
)

// Width is a width mode together with its value in cells. Value is unused
// under WidthAuto.
type Width struct {
	Mode  WidthMode
	Value int
}

// TwoPass selects the strategy used when a second pass over the input is
// required.
type TwoPass int

const (
	// TwoPassCached retains the whole input contents in memory between
	// passes, trading memory for a single read.
	TwoPassCached TwoPass = iota
	// TwoPassReread reads and re-matches every input from the start a
	// second time, trading doubled I/O for constant memory. It requires
	// every input to be re-readable from the beginning, a precondition the
	// caller must establish (see source.CanReread).
	TwoPassReread
)

// ColumnsOptions configures IntoColumns.
type ColumnsOptions struct {
	// Pattern extracts the stream tag from each line. The last capture
	// group, or the whole match when the pattern has no groups, is the tag;
	// lines without a match are skipped entirely.
	Pattern string
	// Inputs are the input paths, processed in order. "-" and "/dev/stdin"
	// read standard input.
	Inputs []string
	// Output is the output path. Empty means standard output.
	Output string
	// Width selects the column width policy.
	Width Width
	// Separator is printed between adjacent columns. Empty prints nothing.
	Separator string
	// TabWidth > 0 replaces each tab with spaces up to the next multiple of
	// TabWidth; 0 passes tabs through unexpanded.
	TabWidth int
	// TwoPass selects the strategy when a single pass does not suffice.
	TwoPass TwoPass
	// NoMmap disables memory-mapped input access.
	NoMmap bool
}

// IntoColumns demultiplexes the inputs into a single output in which every
// stream tag occupies its own column.
//
// A single pass over the input suffices only when every column has the same
// fixed width and no separator is printed: column prefixes are then final
// the moment a column first appears, and the all-whitespace suffixes trim
// to nothing no matter how many columns are discovered later. Every other
// configuration needs the final column count or widths before the first row
// can be rendered correctly, and takes two passes.
func IntoColumns(opts *ColumnsOptions) error {
	out, err := createOutput(opts.Output)
	if err != nil {
		return err
	}
	err = runColumns(opts, out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}

func runColumns(opts *ColumnsOptions, w io.Writer) error {
	if opts.Separator == "" && opts.Width.Mode == WidthColumn {
		return columnsSinglePass(opts, w)
	}
	switch opts.TwoPass {
	case TwoPassReread:
		return columnsTwoPassReread(opts, w)
	default:
		return columnsTwoPassCached(opts, w)
	}
}

func columnsSinglePass(opts *ColumnsOptions, w io.Writer) error {
	ct, err := newTracker(opts)
	if err != nil {
		return err
	}
	cp := newColumnPrinter(w, opts)

	for _, input := range opts.Inputs {
		err := scanLines(input, opts.NoMmap, func(line []byte) error {
			col, width, ok := ct.processLine(line, cp)
			if !ok {
				return nil
			}
			return cp.printInColumn(line, col, width)
		})
		if err != nil {
			return err
		}
	}
	return cp.flush()
}

// lineSpan records where a matched line lives within its input's contents,
// which column it belongs to, and its measured width (0 when unknown).
type lineSpan struct {
	start, end int
	col        int
	width      int
}

func columnsTwoPassCached(opts *ColumnsOptions, w io.Writer) error {
	ct, err := newTracker(opts)
	if err != nil {
		return err
	}

	contents := make([]*source.Contents, 0, len(opts.Inputs))
	defer func() {
		for _, c := range contents {
			c.Close()
		}
	}()
	spans := make([][]lineSpan, 0, len(opts.Inputs))

	for _, input := range opts.Inputs {
		c, err := source.ReadContents(input, opts.NoMmap)
		if err != nil {
			return err
		}
		contents = append(contents, c)

		var ls []lineSpan
		cur := 0
		sl := source.NewSliceLines(c.Bytes())
		for {
			line, ok := sl.Next()
			if !ok {
				break
			}
			trimmed := source.TrimNewline(line)
			if col, width, ok := ct.processLine(trimmed, nil); ok {
				ls = append(ls, lineSpan{cur, cur + len(trimmed), col, width})
			}
			cur += len(line)
		}
		spans = append(spans, ls)
	}

	cp := newColumnPrinter(w, opts)
	cp.setWidths(ct.finalWidths())

	for i, c := range contents {
		buf := c.Bytes()
		for _, s := range spans[i] {
			if err := cp.printInColumn(buf[s.start:s.end], s.col, s.width); err != nil {
				return err
			}
		}
	}
	return cp.flush()
}

func columnsTwoPassReread(opts *ColumnsOptions, w io.Writer) error {
	ct, err := newTracker(opts)
	if err != nil {
		return err
	}

	for _, input := range opts.Inputs {
		err := scanLines(input, opts.NoMmap, func(line []byte) error {
			ct.processLine(line, nil)
			return nil
		})
		if err != nil {
			return err
		}
	}

	cp := newColumnPrinter(w, opts)
	cp.setWidths(ct.finalWidths())

	for _, input := range opts.Inputs {
		err := scanLines(input, opts.NoMmap, func(line []byte) error {
			col, width, ok := ct.processLine(line, nil)
			if !ok {
				return nil
			}
			return cp.printInColumn(line, col, width)
		})
		if err != nil {
			return err
		}
	}
	return cp.flush()
}

// scanLines calls fn for every newline-stripped line of the input at path.
func scanLines(path string, noMmap bool, fn func(line []byte) error) error {
	lines, err := source.OpenLines(path, noMmap)
	if err != nil {
		return err
	}
	for lines.Scan() {
		if err := fn(lines.Bytes()); err != nil {
			lines.Close()
			return err
		}
	}
	err = lines.Err()
	if cerr := lines.Close(); err == nil {
		err = cerr
	}
	return err
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func createOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file %s: %w", path, err)
	}
	return f, nil
}
