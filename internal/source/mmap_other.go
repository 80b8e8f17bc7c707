//go:build !unix

package source

import "errors"

func mapFile(path string) ([]byte, func() error, error) {
	return nil, nil, errors.ErrUnsupported
}
