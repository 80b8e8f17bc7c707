package unweave

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

var spaceRun = []byte("        ")

// asciiCellWidth returns the visible cell width of a single byte measured by
// the ASCII rule: printable characters (0x20-0x7E) occupy one cell, control
// characters and DEL occupy none.
func asciiCellWidth(b byte) int {
	if b >= 0x20 && b != 0x7f {
		return 1
	}
	return 0
}

// clusterWidth returns the visible cell width of one grapheme cluster. Any
// genuinely multi-byte cluster occupies exactly one cell regardless of how a
// terminal might render it; single-byte clusters follow the ASCII rule.
func clusterWidth(cluster []byte) int {
	if len(cluster) > 1 {
		return 1
	}
	return asciiCellWidth(cluster[0])
}

func isASCII(line []byte) bool {
	for _, b := range line {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// validPrefixLen returns the length of the longest valid UTF-8 prefix of b.
func validPrefixLen(b []byte) int {
	n := 0
	for n < len(b) {
		r, size := utf8.DecodeRune(b[n:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		n += size
	}
	return n
}

// forEachGrapheme calls fn for every grapheme cluster of line, in order.
// ASCII-only lines are walked byte by byte. Otherwise the line is decomposed
// into maximal valid UTF-8 spans, segmented into extended grapheme clusters,
// and any bytes in between that do not form a valid encoding are passed to fn
// one at a time. Arbitrary byte content never fails.
func forEachGrapheme(line []byte, fn func(cluster []byte) error) error {
	if isASCII(line) {
		for i := 0; i < len(line); i++ {
			if err := fn(line[i : i+1]); err != nil {
				return err
			}
		}
		return nil
	}

	cur := line
	for len(cur) > 0 {
		n := validPrefixLen(cur)
		valid := cur[:n]
		state := -1
		var cluster []byte
		for len(valid) > 0 {
			cluster, valid, _, state = uniseg.FirstGraphemeCluster(valid, state)
			if err := fn(cluster); err != nil {
				return err
			}
		}
		cur = cur[n:]
		for len(cur) > 0 {
			if r, size := utf8.DecodeRune(cur); r != utf8.RuneError || size > 1 {
				break
			}
			if err := fn(cur[:1]); err != nil {
				return err
			}
			cur = cur[1:]
		}
	}
	return nil
}

// measure returns the visible cell width of line. When tabWidth > 0 each tab
// advances the width to the next multiple of tabWidth, counting the skipped
// cells. When out != nil the line bytes, with any tabs replaced by the
// equivalent run of spaces, are appended to *out.
func measure(line []byte, tabWidth int, out *[]byte) int {
	width := 0
	forEachGrapheme(line, func(cluster []byte) error {
		if tabWidth > 0 && len(cluster) == 1 && cluster[0] == '\t' {
			nspaces := tabWidth - width%tabWidth
			if out != nil {
				*out = appendSpaces(*out, nspaces)
			}
			width += nspaces
			return nil
		}
		if out != nil {
			*out = append(*out, cluster...)
		}
		width += clusterWidth(cluster)
		return nil
	})
	return width
}

func appendSpaces(dst []byte, n int) []byte {
	for n > len(spaceRun) {
		dst = append(dst, spaceRun...)
		n -= len(spaceRun)
	}
	return append(dst, spaceRun[:n]...)
}
