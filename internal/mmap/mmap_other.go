//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package mmap

// Supported reports whether Map can succeed on this platform.
const Supported = false

func Map(size int) ([]byte, error) {
	return nil, ErrNotSupported
}

func Unmap(data []byte) error {
	return nil
}
