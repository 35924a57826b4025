package blockalloc

import "unsafe"

// Alloc returns a pointer to a zeroed T stored in a block of the pool.
// It returns nil when the pool is exhausted or T does not fit a block.
// T must not contain Go pointers: the collector does not treat pool
// memory as holding references.
func Alloc[T any](a *Allocator) *T {
	if !fits[T](a) {
		return nil
	}
	b := a.AllocBytes()
	if b == nil {
		return nil
	}
	clear(b)
	return (*T)(unsafe.Pointer(&b[0]))
}

// AllocUninitialized is Alloc without zeroing. The value holds whatever the
// block last contained.
func AllocUninitialized[T any](a *Allocator) *T {
	if !fits[T](a) {
		return nil
	}
	b := a.AllocBytes()
	if b == nil {
		return nil
	}
	return (*T)(unsafe.Pointer(&b[0]))
}

// AllocSlice allocates one block and views it as a zeroed []T of
// BlockSize/sizeof(T) elements. Returns nil if T is zero-sized, does not fit
// or the pool is exhausted.
func AllocSlice[T any](a *Allocator) []T {
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize == 0 || !fits[T](a) {
		return nil
	}
	b := a.AllocBytes()
	if b == nil {
		return nil
	}
	clear(b)
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), len(b)/elemSize)
}

// FreeTyped returns the block holding *p to the pool.
func FreeTyped[T any](a *Allocator, p *T) bool {
	h, ok := a.HandleOf(unsafe.Pointer(p))
	if !ok {
		return false
	}
	return a.Deallocate(h)
}

// FreeSlice returns the block backing s to the pool. s must start at the
// beginning of a block, as slices from AllocSlice do.
func FreeSlice[T any](a *Allocator, s []T) bool {
	if cap(s) == 0 {
		return false
	}
	h, ok := a.HandleOf(unsafe.Pointer(unsafe.SliceData(s)))
	if !ok {
		return false
	}
	return a.Deallocate(h)
}

// fits reports whether a T can live at the start of any block.
func fits[T any](a *Allocator) bool {
	var zero T
	return int(unsafe.Sizeof(zero)) <= a.blockSize && int(unsafe.Alignof(zero)) <= a.align
}
