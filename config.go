package blockalloc

import (
	"fmt"
	"io"
	"log/slog"
	"math/bits"
	"unsafe"
)

const (
	// DefaultBlockSize is the block size used when Config.BlockSize is zero.
	DefaultBlockSize = 64

	// DefaultBlockCount is the block count used when Config.BlockCount is zero.
	DefaultBlockCount = 128

	// DefaultAlignment is the machine word size.
	DefaultAlignment = int(unsafe.Sizeof(uintptr(0)))
)

// discardLogger drops everything. Used unless Config.Logger is set.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Config fixes the shape of an allocator for its whole lifetime.
// Zero fields are replaced with the package defaults.
type Config struct {
	BlockSize  int // bytes per block
	BlockCount int // number of blocks in the pool
	Alignment  int // pool base alignment, power of two

	// Backing selects where the pool lives. Defaults to HeapBacking.
	Backing Backing

	// Section brackets every bitmap access. Defaults to NopSection.
	Section CriticalSection

	// Logger receives debug events. Nil discards them.
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.BlockSize == 0 {
		c.BlockSize = DefaultBlockSize
	}
	if c.BlockCount == 0 {
		c.BlockCount = DefaultBlockCount
	}
	if c.Alignment == 0 {
		c.Alignment = DefaultAlignment
	}
	if c.Section == nil {
		c.Section = NopSection{}
	}
	if c.Logger == nil {
		c.Logger = discardLogger
	}
	return c
}

func (c Config) validate() error {
	switch {
	case c.BlockSize < 0:
		return fmt.Errorf("%w: block size %d must be positive", ErrInvalidConfig, c.BlockSize)
	case c.BlockCount < 0:
		return fmt.Errorf("%w: block count %d must be positive", ErrInvalidConfig, c.BlockCount)
	case c.Alignment < 0 || bits.OnesCount(uint(c.Alignment)) != 1:
		return fmt.Errorf("%w: alignment %d is not a power of two", ErrInvalidConfig, c.Alignment)
	case c.BlockSize%c.Alignment != 0:
		// Blocks sit at base+i*BlockSize, so the stride must keep every block aligned.
		return fmt.Errorf("%w: block size %d is not a multiple of alignment %d",
			ErrInvalidConfig, c.BlockSize, c.Alignment)
	case c.BlockSize > maxPoolBytes/c.BlockCount:
		return fmt.Errorf("%w: pool of %d x %d bytes overflows", ErrInvalidConfig, c.BlockCount, c.BlockSize)
	case c.Backing != HeapBacking && c.Backing != MappedBacking:
		return fmt.Errorf("%w: unknown backing %d", ErrInvalidConfig, int(c.Backing))
	}
	return nil
}

// maxPoolBytes leaves room for the alignment slack added on top of the pool.
const maxPoolBytes = int(^uint(0)>>1) >> 1

// PoolBytes returns BlockSize*BlockCount after defaults are applied.
func (c Config) PoolBytes() int {
	c = c.withDefaults()
	return c.BlockSize * c.BlockCount
}

// BitmapBytes returns ceil(BlockCount/8) after defaults are applied.
func (c Config) BitmapBytes() int {
	c = c.withDefaults()
	return bitmapLen(c.BlockCount)
}
