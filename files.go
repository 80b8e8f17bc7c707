package unweave

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// ErrInvalidOutputPattern reports an unsupported escape in the output
	// file template.
	ErrInvalidOutputPattern = errors.New("invalid output file pattern")
	// ErrIncompleteOutputPattern reports an output file template that ends
	// in the middle of a '%' escape.
	ErrIncompleteOutputPattern = errors.New("incomplete output file pattern")
)

// FilesOptions configures IntoFiles.
type FilesOptions struct {
	// Pattern extracts the stream tag from each line, as in ColumnsOptions.
	Pattern string
	// Inputs are the input paths, processed in order. "-" and "/dev/stdin"
	// read standard input.
	Inputs []string
	// Output is the output path template. '%t' expands to the stream tag,
	// '%Nd' to the stream number (starting from 0) zero-padded to N digits,
	// and '%%' to a literal percent.
	Output string
	// NoMmap disables memory-mapped input access.
	NoMmap bool
}

// outputFiles creates and caches the per-tag output files derived from the
// path template. Distinct tags whose names render to the same path share a
// single file.
type outputFiles struct {
	template string
	files    []*os.File
	writers  []*bufio.Writer
	byTag    map[string]int
	byName   map[string]int
}

// newOutputFiles validates the template up front, before any input has been
// read, by rendering a name for a dummy tag.
func newOutputFiles(template string) (*outputFiles, error) {
	o := &outputFiles{
		template: template,
		byTag:    make(map[string]int),
		byName:   make(map[string]int),
	}
	if _, err := o.filenameForTag(nil); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *outputFiles) filenameForTag(tag []byte) (string, error) {
	if !utf8.Valid(tag) {
		return "", fmt.Errorf("stream tag %q is not valid UTF-8", tag)
	}
	count := strconv.Itoa(len(o.writers))

	var name strings.Builder
	inEscape := false
	width := 0
	for _, c := range o.template {
		switch {
		case !inEscape && c == '%':
			inEscape = true
			width = 0
		case !inEscape:
			name.WriteRune(c)
		case c == '%':
			name.WriteRune(c)
			inEscape = false
		case c == 't':
			name.Write(tag)
			inEscape = false
		case c == 'd':
			for pad := width - len(count); pad > 0; pad-- {
				name.WriteByte('0')
			}
			name.WriteString(count)
			inEscape = false
		case c >= '0' && c <= '9':
			width = width*10 + int(c-'0')
		default:
			return "", fmt.Errorf("%w: unexpected character %q", ErrInvalidOutputPattern, c)
		}
	}
	if inEscape {
		return "", ErrIncompleteOutputPattern
	}
	return name.String(), nil
}

func (o *outputFiles) writerForTag(tag []byte) (*bufio.Writer, error) {
	if i, ok := o.byTag[string(tag)]; ok {
		return o.writers[i], nil
	}

	name, err := o.filenameForTag(tag)
	if err != nil {
		return nil, err
	}
	i, ok := o.byName[name]
	if !ok {
		f, err := os.Create(name)
		if err != nil {
			return nil, fmt.Errorf("create output file %s: %w", name, err)
		}
		o.files = append(o.files, f)
		o.writers = append(o.writers, bufio.NewWriter(f))
		i = len(o.writers) - 1
		o.byName[name] = i
	}

	o.byTag[string(tag)] = i
	return o.writers[i], nil
}

func (o *outputFiles) closeAll() error {
	var first error
	for i, w := range o.writers {
		if err := w.Flush(); err != nil && first == nil {
			first = err
		}
		if err := o.files[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// IntoFiles demultiplexes the inputs into one output file per stream tag,
// with no column or wrapping concerns: matched lines are copied verbatim,
// newline-terminated, to the file their tag names.
func IntoFiles(opts *FilesOptions) error {
	of, err := newOutputFiles(opts.Output)
	if err != nil {
		return err
	}
	finder, err := NewTagFinder(opts.Pattern)
	if err != nil {
		return err
	}

	var runErr error
	for _, input := range opts.Inputs {
		runErr = scanLines(input, opts.NoMmap, func(line []byte) error {
			start, end, ok := finder.Find(line)
			if !ok {
				return nil
			}
			w, err := of.writerForTag(line[start:end])
			if err != nil {
				return err
			}
			if _, err := w.Write(line); err != nil {
				return err
			}
			return w.WriteByte('\n')
		})
		if runErr != nil {
			break
		}
	}

	if cerr := of.closeAll(); runErr == nil {
		runErr = cerr
	}
	return runErr
}
