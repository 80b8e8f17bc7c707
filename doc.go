// Package unweave demultiplexes interleaved streams of text lines using
// regular expression matching.
//
// Each line is classified by a stream tag extracted with a pattern; the last
// capture group (or the whole match when the pattern has no groups) is the
// tag. IntoColumns renders every stream into its own fixed horizontal column
// of a single output, so temporally interleaved narratives, per-thread or
// per-connection log lines for example, can each be followed top to bottom
// while the original cross-stream ordering is preserved. IntoFiles instead
// writes every stream to its own output file.
//
// Column widths follow one of three policies: sized to the widest line seen
// per column (the default), fixed per column, or an equal share of a fixed
// total line width. Measurement counts visible cells, not bytes: extended
// grapheme clusters count one cell each, tabs optionally expand to tab
// stops, and invalid UTF-8 is measured byte by byte rather than rejected.
// Lines wider than their column wrap at cell boundaries, and output rows
// never carry trailing whitespace.
//
// Basic usage:
//
//	opts := &unweave.ColumnsOptions{
//		Pattern:  "worker-[0-9]+",
//		Inputs:   []string{"app.log"},
//		TabWidth: 8,
//	}
//	if err := unweave.IntoColumns(opts); err != nil {
//		log.Fatal(err)
//	}
package unweave
