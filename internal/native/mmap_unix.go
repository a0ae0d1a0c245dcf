//go:build unix

package native

import "golang.org/x/sys/unix"

const mmapSupported = true

func mapAnon(n int) ([]byte, error) {
	return unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

func unmap(b []byte) error {
	return unix.Munmap(b)
}
