// Package source provides line and whole-content access to inputs, backed by
// memory mapping when the platform and the input allow it and falling back
// to buffered reads otherwise. Which backing is in use is invisible to
// callers.
package source

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// StdinPath is the input path standing for standard input. It is opened as a
// regular file where the OS supports it, which keeps seeking (and therefore
// rereading) possible when standard input is redirected from a file.
const StdinPath = "/dev/stdin"

// open opens path for reading, falling back to the standard input stream
// when the path names it but cannot be opened as a file.
func open(path string) (io.Reader, func() error, error) {
	if path == "-" {
		path = StdinPath
	}
	f, err := os.Open(path)
	if err == nil {
		return f, f.Close, nil
	}
	if path == StdinPath {
		return os.Stdin, func() error { return nil }, nil
	}
	return nil, nil, err
}

// TrimNewline strips a single trailing line feed, and a carriage return
// preceding it, from line.
func TrimNewline(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line
}

// Lines iterates the lines of a single input in order, with the trailing
// newline stripped from each.
type Lines struct {
	data    []byte // set when memory mapped
	off     int
	r       *bufio.Reader
	closeFn func() error
	buf     []byte
	line    []byte
	err     error
}

// OpenLines opens path for line iteration. Memory mapping is attempted first
// unless noMmap is set; any mapping failure silently falls back to buffered
// reading.
func OpenLines(path string, noMmap bool) (*Lines, error) {
	if !noMmap {
		if data, closeFn, err := mapFile(path); err == nil {
			return &Lines{data: data, closeFn: closeFn}, nil
		}
	}
	r, closeFn, err := open(path)
	if err != nil {
		return nil, err
	}
	return &Lines{r: bufio.NewReader(r), closeFn: closeFn}, nil
}

// Scan advances to the next line. It returns false at end of input or on
// error; Err tells the two apart.
func (l *Lines) Scan() bool {
	if l.err != nil {
		return false
	}
	if l.data != nil {
		if l.off >= len(l.data) {
			return false
		}
		rest := l.data[l.off:]
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			l.line = TrimNewline(rest[:i+1])
			l.off += i + 1
		} else {
			l.line = TrimNewline(rest)
			l.off = len(l.data)
		}
		return true
	}

	l.buf = l.buf[:0]
	for {
		frag, err := l.r.ReadSlice('\n')
		l.buf = append(l.buf, frag...)
		if err == nil {
			break
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err == io.EOF {
			if len(l.buf) == 0 {
				return false
			}
			break
		}
		l.err = err
		return false
	}
	l.line = TrimNewline(l.buf)
	return true
}

// Bytes returns the current line. The slice is only valid until the next
// call to Scan.
func (l *Lines) Bytes() []byte { return l.line }

// Err returns the first error encountered while reading, if any.
func (l *Lines) Err() error { return l.err }

func (l *Lines) Close() error {
	if l.closeFn == nil {
		return nil
	}
	return l.closeFn()
}

// Contents holds the entire contents of one input for the duration of a run.
type Contents struct {
	data    []byte
	closeFn func() error
}

// ReadContents acquires the whole contents of path, memory mapped when
// possible (and not disabled), read into memory otherwise.
func ReadContents(path string, noMmap bool) (*Contents, error) {
	if !noMmap {
		if data, closeFn, err := mapFile(path); err == nil {
			return &Contents{data: data, closeFn: closeFn}, nil
		}
	}
	r, closeFn, err := open(path)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if cerr := closeFn(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &Contents{data: data}, nil
}

// Bytes returns the contents. The slice is valid until Close.
func (c *Contents) Bytes() []byte { return c.data }

func (c *Contents) Close() error {
	if c.closeFn == nil {
		return nil
	}
	return c.closeFn()
}

// SliceLines iterates the newline-inclusive lines of a byte slice. The final
// line is yielded even without a terminating newline.
type SliceLines struct {
	buf  []byte
	last int
}

func NewSliceLines(buf []byte) *SliceLines {
	return &SliceLines{buf: buf}
}

// Next returns the next line, including its trailing newline when present.
func (s *SliceLines) Next() ([]byte, bool) {
	if s.last >= len(s.buf) {
		return nil, false
	}
	rest := s.buf[s.last:]
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		s.last += i + 1
		return rest[:i+1], true
	}
	s.last = len(s.buf)
	return rest, true
}

// CanReread reports whether the contents at path can be read again from the
// start, probed by opening the path and seeking. The probe can be fooled by
// devices that fake successful seeks without seeking.
func CanReread(path string) bool {
	if path == "-" {
		path = StdinPath
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	pos, err := f.Seek(1, io.SeekStart)
	return err == nil && pos == 1
}
