//go:build unix

package source

import (
	"errors"
	"math"
	"os"

	"golang.org/x/sys/unix"
)

var errNotMappable = errors.New("source: not mappable")

// mapFile maps path read-only into memory. Irregular, empty, or oversized
// files are rejected so the caller falls back to buffered reads.
func mapFile(path string) ([]byte, func() error, error) {
	if path == "-" {
		path = StdinPath
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	size := fi.Size()
	if !fi.Mode().IsRegular() || size <= 0 || size > math.MaxInt {
		return nil, nil, errNotMappable
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return unix.Munmap(data) }, nil
}
