package unweave

import (
	"fmt"
	"regexp"
)

// TagFinder extracts stream tags from lines using a regular expression. The
// last capture group of the pattern, or the whole match when the pattern has
// no groups, is the tag.
type TagFinder struct {
	re *regexp.Regexp
}

// NewTagFinder compiles pattern into a TagFinder.
func NewTagFinder(pattern string) (*TagFinder, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return &TagFinder{re: re}, nil
}

// Find returns the byte range of the tag within line. ok is false when the
// line does not match, or when the tag group did not take part in the match;
// such lines are skipped entirely.
func (f *TagFinder) Find(line []byte) (start, end int, ok bool) {
	loc := f.re.FindSubmatchIndex(line)
	if loc == nil {
		return 0, 0, false
	}
	start, end = loc[len(loc)-2], loc[len(loc)-1]
	if start < 0 {
		return 0, 0, false
	}
	return start, end, true
}
