package unweave

// tracker assigns a column to each stream tag in first-seen order and keeps
// the per-column width maxima required by the lines seen so far. Columns are
// only ever added; an assignment is never revisited.
type tracker struct {
	opts         *ColumnsOptions
	finder       *TagFinder
	columnForTag map[string]int
	widths       []int
}

func newTracker(opts *ColumnsOptions) (*tracker, error) {
	finder, err := NewTagFinder(opts.Pattern)
	if err != nil {
		return nil, err
	}
	return &tracker{
		opts:         opts,
		finder:       finder,
		columnForTag: make(map[string]int),
	}, nil
}

// processLine classifies line into a column, growing the column set and width
// maxima as needed. The returned width is the measured cell width of the line
// under the auto width mode and 0 otherwise; 0 also stands in for a genuinely
// zero measurement, so consumers recompute when they need an exact value.
// ok reports whether the line carries a tag at all.
//
// When cp is non-nil, a newly discovered column pushes the grown width vector
// to it immediately. This is what makes the single-pass strategy work: the
// caller renders each line right after classifying it.
func (t *tracker) processLine(line []byte, cp *columnPrinter) (col, width int, ok bool) {
	start, end, ok := t.finder.Find(line)
	if !ok {
		return 0, 0, false
	}
	tag := line[start:end]

	if t.opts.Width.Mode == WidthAuto {
		width = measure(line, t.opts.TabWidth, nil)
	}

	columnWidth := 0
	switch t.opts.Width.Mode {
	case WidthAuto:
		columnWidth = width
	case WidthColumn:
		columnWidth = t.opts.Width.Value
	}

	if col, seen := t.columnForTag[string(tag)]; seen {
		if columnWidth > t.widths[col] {
			t.widths[col] = columnWidth
		}
		return col, width, true
	}

	col = len(t.columnForTag)
	t.columnForTag[string(tag)] = col
	t.widths = append(t.widths, columnWidth)
	if cp != nil {
		cp.setWidths(t.widths)
	}
	return col, width, true
}

// finalWidths returns the final width vector. Under the line width mode every
// column gets an equal share of the total, using integer division; this can
// only be computed once the full column count is known. The remainder cells
// are discarded.
func (t *tracker) finalWidths() []int {
	if t.opts.Width.Mode == WidthLine {
		for i := range t.widths {
			t.widths[i] = t.opts.Width.Value / len(t.widths)
		}
	}
	return t.widths
}
