//go:build !unix

package native

import "errors"

const mmapSupported = false

var errNoMmap = errors.New("anonymous mappings unsupported")

func mapAnon(n int) ([]byte, error) {
	return nil, errNoMmap
}

func unmap(b []byte) error {
	return errNoMmap
}
