// Package mmap reserves anonymous memory outside the Go heap.
package mmap

import "errors"

// ErrNotSupported is returned on platforms without anonymous mappings.
var ErrNotSupported = errors.New("mmap: anonymous mappings not supported on this platform")
