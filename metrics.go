package blockalloc

// BlockSize returns the size of every block in bytes.
func (a *Allocator) BlockSize() int {
	return a.blockSize
}

// Alignment returns the configured pool alignment.
func (a *Allocator) Alignment() int {
	return a.align
}

// Backing returns the storage kind holding the pool.
func (a *Allocator) Backing() Backing {
	return a.backing
}

// PoolBytes returns BlockSize*Capacity.
func (a *Allocator) PoolBytes() int {
	return a.blockSize * a.blockCount
}

// BitmapBytes returns the length of the occupancy bitmap.
func (a *Allocator) BitmapBytes() int {
	return bitmapLen(a.blockCount)
}

// Utilization returns the ratio of allocated blocks to capacity (0.0 to 1.0).
func (a *Allocator) Utilization() float64 {
	return float64(a.Size()) / float64(a.blockCount)
}

// Stats returns a consistent snapshot of allocator statistics.
// It runs inside the critical section, like Size.
func (a *Allocator) Stats() Metrics {
	a.section.Enter(a)
	used := a.used
	a.section.Exit(a)
	return Metrics{
		InUse:       used,
		Free:        a.blockCount - used,
		Capacity:    a.blockCount,
		BlockSize:   a.blockSize,
		Alignment:   a.align,
		PoolBytes:   a.PoolBytes(),
		BitmapBytes: a.BitmapBytes(),
		Utilization: float64(used) / float64(a.blockCount),
	}
}

// Metrics contains statistical information about an allocator.
type Metrics struct {
	InUse       int     `json:"in_use"`       // Allocated blocks
	Free        int     `json:"free"`         // Free blocks
	Capacity    int     `json:"capacity"`     // Total blocks
	BlockSize   int     `json:"block_size"`   // Bytes per block
	Alignment   int     `json:"alignment"`    // Pool base alignment
	PoolBytes   int     `json:"pool_bytes"`   // BlockSize*Capacity
	BitmapBytes int     `json:"bitmap_bytes"` // Occupancy bitmap length
	Utilization float64 `json:"utilization"`  // InUse/Capacity (0.0-1.0)
}
