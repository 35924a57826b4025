package blockalloc

import "errors"

var (
	// ErrInvalidConfig indicates a Config that cannot describe a pool.
	ErrInvalidConfig = errors.New("blockalloc: invalid config")

	// ErrBadHandle indicates a handle that is nil, outside the pool, or not on a block boundary.
	ErrBadHandle = errors.New("blockalloc: bad block handle")

	// ErrNotAllocated indicates an attempt to free a block that is already free.
	ErrNotAllocated = errors.New("blockalloc: block not allocated")

	// ErrClosed indicates the pool storage was released by Close.
	ErrClosed = errors.New("blockalloc: allocator closed")
)
