package unweave

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"unicode"
)

// columnPrinter renders tagged lines into their columns of the shared output.
// For every column it keeps a prefix (blank slots and separators for all
// columns to the left) and a suffix (separators and blank slots for all
// columns to the right, trimmed of trailing whitespace, newline-terminated),
// both rebuilt whenever the width vector changes.
type columnPrinter struct {
	w        *bufio.Writer
	sep      string
	tabWidth int
	widths   []int
	prefixes []string
	suffixes []string
	pad      []bool
	untab    []byte
}

func newColumnPrinter(w io.Writer, opts *ColumnsOptions) *columnPrinter {
	return &columnPrinter{
		w:        bufio.NewWriter(w),
		sep:      opts.Separator,
		tabWidth: opts.TabWidth,
	}
}

// setWidths installs a new width vector and rebuilds the per-column prefix
// and suffix tables. A non-empty separator survives the trailing-whitespace
// trim even when all trailing columns are blank; a fully blank suffix
// collapses to a bare newline, in which case padding the content cell would
// only produce trailing whitespace and is skipped.
func (p *columnPrinter) setWidths(widths []int) {
	p.widths = append(p.widths[:0], widths...)
	p.prefixes = p.prefixes[:0]
	p.suffixes = p.suffixes[:0]
	p.pad = p.pad[:0]

	for col := range widths {
		var prefix, suffix strings.Builder
		for _, w := range widths[:col] {
			prefix.WriteString(strings.Repeat(" ", w))
			prefix.WriteString(p.sep)
		}
		for _, w := range widths[col+1:] {
			suffix.WriteString(p.sep)
			suffix.WriteString(strings.Repeat(" ", w))
		}
		trimmed := strings.TrimRightFunc(suffix.String(), unicode.IsSpace)

		p.prefixes = append(p.prefixes, prefix.String())
		p.suffixes = append(p.suffixes, trimmed+"\n")
		p.pad = append(p.pad, trimmed != "")
	}
}

// printInColumn renders one tagged line into its column, splitting it across
// as many output rows as its width requires. widthHint is the known cell
// width of line, or 0 when unknown (a zero hint is harmless: the byte length
// then serves as the upper bound for the wrap decision, and exact widths are
// recomputed where padding needs them).
func (p *columnPrinter) printInColumn(line []byte, col, widthHint int) error {
	columnWidth := p.widths[col]

	if p.tabWidth > 0 && bytes.IndexByte(line, '\t') >= 0 {
		p.untab = p.untab[:0]
		widthHint = measure(line, p.tabWidth, &p.untab)
		line = p.untab
	}

	maxWidth := widthHint
	if maxWidth == 0 {
		maxWidth = len(line)
	}
	if maxWidth <= columnWidth {
		return p.printUnwrapped(line, col, widthHint)
	}

	// Wrap: close a chunk at end of line or once it has filled the column.
	// Zero-width bytes ride along inside a chunk without advancing it, so a
	// row can hold more bytes than its cell width suggests.
	chunkWidth := 0
	chunkStart, chunkEnd := 0, 0
	return forEachGrapheme(line, func(cluster []byte) error {
		chunkWidth += clusterWidth(cluster)
		chunkEnd += len(cluster)

		if chunkEnd < len(line) && chunkWidth < columnWidth {
			return nil
		}

		if err := p.printUnwrapped(line[chunkStart:chunkEnd], col, chunkWidth); err != nil {
			return err
		}
		chunkStart = chunkEnd
		chunkWidth = 0
		return nil
	})
}

// printUnwrapped writes chunk as a single row of column col, assuming it
// fits. widthHint is the known cell width of chunk, or 0 to recompute it on
// demand.
func (p *columnPrinter) printUnwrapped(chunk []byte, col, widthHint int) error {
	if _, err := p.w.WriteString(p.prefixes[col]); err != nil {
		return err
	}
	if _, err := p.w.Write(chunk); err != nil {
		return err
	}
	if p.pad[col] {
		width := widthHint
		if width == 0 {
			width = measure(chunk, p.tabWidth, nil)
		}
		if remaining := p.widths[col] - width; remaining > 0 {
			if err := p.writeSpaces(remaining); err != nil {
				return err
			}
		}
	}
	_, err := p.w.WriteString(p.suffixes[col])
	return err
}

func (p *columnPrinter) writeSpaces(n int) error {
	for n > 0 {
		run := n
		if run > len(spaceRun) {
			run = len(spaceRun)
		}
		if _, err := p.w.Write(spaceRun[:run]); err != nil {
			return err
		}
		n -= run
	}
	return nil
}

func (p *columnPrinter) flush() error {
	return p.w.Flush()
}
