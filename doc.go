// Package blockalloc implements a fixed-size block allocator for Go.
//
// # Overview
//
// The allocator owns one pool of equal-size blocks and a bitmap with one bit
// per block. Nothing grows or shrinks after New, so allocation cost and
// memory use are fixed and predictable. This is useful for:
//
//   - Buffers with a known upper size and count (packets, records, frames)
//   - Hot paths that must not allocate from the Go heap
//   - Deterministic memory budgets in constrained deployments
//
// # Basic Usage
//
//	a, err := blockalloc.New(blockalloc.Config{BlockSize: 64, BlockCount: 128})
//	if err != nil {
//	    return err
//	}
//
//	h, ok := a.Allocate() // false when the pool is exhausted
//	buf := a.Bytes(h)     // the 64-byte block
//	a.Deallocate(h)
//
//	// Typed values and raw slices
//	rec := blockalloc.Alloc[Record](a)
//	blockalloc.FreeTyped(a, rec)
//
// # Allocation Policy
//
// Allocate scans the bitmap a byte at a time and claims the lowest free bit,
// so the free block with the smallest index is always chosen. A block freed
// and immediately reallocated comes back at the same address.
//
// # Handles and Validation
//
// A Handle is the byte offset of a block from the pool base. Deallocate
// rejects NilHandle, offsets outside the pool and offsets that are not a
// multiple of the block size, without changing any state. The same checks
// apply to raw addresses through HandleOf, FreeBytes and FreeTyped.
//
// Deallocating a block that is already free succeeds silently. Free is the
// strict form and reports ErrNotAllocated instead.
//
// # Thread Safety
//
// The allocator contains no locks. Every operation that touches the bitmap
// (Allocate, Deallocate, Free, Size, Stats) is bracketed by the configured
// CriticalSection. The default NopSection is for single-goroutine use; for
// concurrent access supply a LockerSection or use NewSafe:
//
//	a, _ := blockalloc.New(blockalloc.Config{
//	    Section: blockalloc.LockerSection{L: &mu},
//	})
//
// # Memory Layout
//
// The pool base is aligned to Config.Alignment (a power of two, the word
// size by default) and BlockSize must be a multiple of it, so every block
// is aligned. With MappedBacking the pool lives in an anonymous mapping
// outside the Go heap.
//
// # Performance Characteristics
//
//   - Allocate: O(1) when low blocks are free, O(BlockCount/8) worst case
//   - Deallocate: O(1)
//   - Size, Capacity: O(1)
//   - Memory overhead: ceil(BlockCount/8) bytes of bitmap
package blockalloc
