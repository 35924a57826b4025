package blockalloc

import (
	"fmt"
	"unsafe"

	"github.com/pavanmanishd/blockalloc/internal/mmap"
)

// Backing selects the storage that holds the pool.
type Backing int

const (
	// HeapBacking keeps the pool in an ordinary Go byte slice.
	HeapBacking Backing = iota

	// MappedBacking keeps the pool in an anonymous private mapping outside
	// the Go heap. The collector never scans it, so blocks must not hold the
	// only reference to Go-allocated memory. Release it with Close.
	MappedBacking
)

func (b Backing) String() string {
	switch b {
	case HeapBacking:
		return "heap"
	case MappedBacking:
		return "mapped"
	default:
		return fmt.Sprintf("Backing(%d)", int(b))
	}
}

// reserve returns the raw storage and the aligned pool view inside it.
func (b Backing) reserve(poolBytes, align int) (raw, pool []byte, err error) {
	n := poolBytes + align - 1
	switch b {
	case MappedBacking:
		raw, err = mmap.Map(n)
		if err != nil {
			return nil, nil, fmt.Errorf("blockalloc: map %d bytes: %w", n, err)
		}
	default:
		raw = make([]byte, n)
	}
	return raw, alignSlice(raw, align, poolBytes), nil
}

func (b Backing) release(raw []byte) error {
	if b == MappedBacking {
		return mmap.Unmap(raw)
	}
	return nil
}

// alignSlice returns the first n bytes of raw whose start is aligned to align.
// raw must hold at least n+align-1 bytes.
func alignSlice(raw []byte, align, n int) []byte {
	mask := uintptr(align - 1)
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	start := int((addr+mask)&^mask - addr)
	return raw[start : start+n : start+n]
}
