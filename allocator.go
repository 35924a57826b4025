// Package blockalloc implements a fixed-size block allocator.
// Typical usage: size one pool at startup, then Allocate and Deallocate
// blocks from it with deterministic cost and no fragmentation.
package blockalloc

import (
	"log/slog"
	"unsafe"
)

// Handle identifies a block by its byte offset from the pool base.
// Valid handles are multiples of the block size below the pool size.
type Handle int

// NilHandle is the null handle. It never names a block.
const NilHandle Handle = -1

// Offset returns the byte offset of the handle from the pool base.
func (h Handle) Offset() int { return int(h) }

// IsNil reports whether h is NilHandle.
func (h Handle) IsNil() bool { return h == NilHandle }

// Allocator hands out equal-size blocks from a fixed pool, tracking
// occupancy with one bit per block. Allocation is first-fit by lowest index.
//
// An Allocator has no locking of its own; see CriticalSection.
type Allocator struct {
	pool   []byte // aligned view, blockSize*blockCount bytes
	raw    []byte // storage backing pool, including alignment slack
	bitmap bitmap

	used int // allocated blocks, always bitmap.count()
	hint int // no free block lives in a bitmap byte below hint

	blockSize  int
	blockCount int
	align      int
	backing    Backing

	section CriticalSection
	log     *slog.Logger
	closed  bool
}

// New creates an allocator with every block free.
// Zero fields in cfg take the package defaults.
func New(cfg Config) (*Allocator, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	raw, pool, err := cfg.Backing.reserve(cfg.BlockSize*cfg.BlockCount, cfg.Alignment)
	if err != nil {
		return nil, err
	}
	a := &Allocator{
		pool:       pool,
		raw:        raw,
		bitmap:     newBitmap(cfg.BlockCount),
		blockSize:  cfg.BlockSize,
		blockCount: cfg.BlockCount,
		align:      cfg.Alignment,
		backing:    cfg.Backing,
		section:    cfg.Section,
		log:        cfg.Logger,
	}
	a.log.Debug("block allocator created",
		"block_size", a.blockSize,
		"block_count", a.blockCount,
		"alignment", a.align,
		"backing", a.backing.String())
	return a, nil
}

// Init marks every block free. Pool contents are left as they are.
// Init is not bracketed by the critical section; callers must not race it
// with other operations.
func (a *Allocator) Init() error {
	if a.closed {
		return ErrClosed
	}
	a.bitmap.reset()
	a.used = 0
	a.hint = 0
	a.log.Debug("block allocator reset", "capacity", a.blockCount)
	return nil
}

// Deinit is Init. The pool itself stays reserved; use Close to release it.
func (a *Allocator) Deinit() error {
	return a.Init()
}

// Close releases the pool storage. A closed allocator has no free blocks and
// rejects every handle. Closing twice is a no-op.
func (a *Allocator) Close() error {
	if a.closed {
		return nil
	}
	err := a.backing.release(a.raw)
	a.closed = true
	a.pool, a.raw, a.bitmap = nil, nil, nil
	a.used, a.hint = 0, 0
	a.log.Debug("block allocator closed", "backing", a.backing.String(), "err", err)
	return err
}

// Allocate claims the free block with the lowest index.
// It returns NilHandle and false when the pool is exhausted.
func (a *Allocator) Allocate() (Handle, bool) {
	a.section.Enter(a)
	idx := a.acquire()
	a.section.Exit(a)
	if idx < 0 {
		return NilHandle, false
	}
	return Handle(idx * a.blockSize), true
}

// Deallocate returns the block named by h to the pool.
// It reports false, leaving all state untouched, if h is nil, outside the
// pool or not on a block boundary. Freeing a block that is already free
// succeeds and changes nothing; use Free to detect that case.
func (a *Allocator) Deallocate(h Handle) bool {
	idx, ok := a.blockIndex(h)
	if !ok {
		a.log.Debug("rejected deallocate", "handle", int(h))
		return false
	}
	a.section.Enter(a)
	a.release(idx)
	a.section.Exit(a)
	return true
}

// Free is Deallocate with errors: ErrBadHandle for an invalid handle and
// ErrNotAllocated for a block that is already free. Neither changes state.
func (a *Allocator) Free(h Handle) error {
	idx, ok := a.blockIndex(h)
	if !ok {
		a.log.Debug("rejected free", "handle", int(h))
		return ErrBadHandle
	}
	a.section.Enter(a)
	var err error
	if a.bitmap.isSet(idx) {
		a.release(idx)
	} else {
		err = ErrNotAllocated
	}
	a.section.Exit(a)
	return err
}

// Size returns the number of allocated blocks.
func (a *Allocator) Size() int {
	a.section.Enter(a)
	n := a.used
	a.section.Exit(a)
	return n
}

// Capacity returns the configured block count.
func (a *Allocator) Capacity() int {
	return a.blockCount
}

// Pointer returns the address of the block named by h, or nil if h is invalid.
func (a *Allocator) Pointer(h Handle) unsafe.Pointer {
	if _, ok := a.blockIndex(h); !ok {
		return nil
	}
	return unsafe.Pointer(&a.pool[h])
}

// Bytes returns the block named by h as a slice of exactly BlockSize bytes,
// or nil if h is invalid. The slice aliases the pool.
func (a *Allocator) Bytes(h Handle) []byte {
	if _, ok := a.blockIndex(h); !ok {
		return nil
	}
	end := int(h) + a.blockSize
	return a.pool[h:end:end]
}

// HandleOf maps an address back to the handle of the block starting there.
// It fails for nil, for addresses outside the pool and for addresses that
// are not the first byte of a block.
func (a *Allocator) HandleOf(p unsafe.Pointer) (Handle, bool) {
	if p == nil || len(a.pool) == 0 {
		return NilHandle, false
	}
	base := uintptr(unsafe.Pointer(&a.pool[0]))
	addr := uintptr(p)
	if addr < base || addr-base >= uintptr(len(a.pool)) {
		return NilHandle, false
	}
	off := addr - base
	if off%uintptr(a.blockSize) != 0 {
		return NilHandle, false
	}
	return Handle(off), true
}

// AllocBytes allocates a block and returns it as a slice, or nil when the
// pool is exhausted. Contents are whatever the block last held.
func (a *Allocator) AllocBytes() []byte {
	h, ok := a.Allocate()
	if !ok {
		return nil
	}
	return a.Bytes(h)
}

// FreeBytes deallocates the block whose first byte is b[0].
// A slice that starts mid-block, or lies outside the pool, is rejected.
func (a *Allocator) FreeBytes(b []byte) bool {
	if cap(b) == 0 {
		return false
	}
	h, ok := a.HandleOf(unsafe.Pointer(unsafe.SliceData(b)))
	if !ok {
		a.log.Debug("rejected slice deallocate", "len", len(b))
		return false
	}
	return a.Deallocate(h)
}

// blockIndex validates h against the pool bounds and block stride.
// It only reads fixed geometry, so it runs outside the critical section.
func (a *Allocator) blockIndex(h Handle) (int, bool) {
	off := int(h)
	if off < 0 || off >= len(a.pool) || off%a.blockSize != 0 {
		return -1, false
	}
	return off / a.blockSize, true
}

// acquire must run inside the critical section.
func (a *Allocator) acquire() int {
	idx, byteIdx := a.bitmap.lowestFree(a.hint, a.blockCount)
	a.hint = byteIdx
	if idx < 0 {
		return -1
	}
	a.bitmap.set(idx)
	a.used++
	return idx
}

// release must run inside the critical section.
func (a *Allocator) release(idx int) {
	if a.bitmap.unset(idx) {
		a.used--
	}
	if b := idx / bitsPerByte; b < a.hint {
		a.hint = b
	}
}
