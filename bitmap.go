package blockalloc

import "math/bits"

const bitsPerByte = 8

// bitmap packs one occupancy bit per block. Bit i%8 of byte i/8 is block i;
// a set bit means allocated.
type bitmap []byte

func bitmapLen(blocks int) int {
	return (blocks + bitsPerByte - 1) / bitsPerByte
}

func newBitmap(blocks int) bitmap {
	return make(bitmap, bitmapLen(blocks))
}

func (b bitmap) reset() {
	clear(b)
}

// lowestFree returns the smallest free index in bytes [from, len(b)) that is
// below limit, or -1. The byte holding it is returned as well.
func (b bitmap) lowestFree(from, limit int) (idx, byteIdx int) {
	for i := from; i < len(b); i++ {
		v := b[i]
		if v == 0xff {
			continue
		}
		idx = i*bitsPerByte + bits.TrailingZeros8(^v)
		if idx >= limit {
			// Only the last byte carries padding bits past limit.
			return -1, len(b)
		}
		return idx, i
	}
	return -1, len(b)
}

func (b bitmap) set(idx int) {
	b[idx/bitsPerByte] |= 1 << (idx % bitsPerByte)
}

// unset clears bit idx and reports whether it was set.
func (b bitmap) unset(idx int) bool {
	mask := byte(1) << (idx % bitsPerByte)
	i := idx / bitsPerByte
	was := b[i]&mask != 0
	b[i] &^= mask
	return was
}

func (b bitmap) isSet(idx int) bool {
	return b[idx/bitsPerByte]&(1<<(idx%bitsPerByte)) != 0
}

// count is the population count of the whole bitmap.
func (b bitmap) count() int {
	n := 0
	for _, v := range b {
		n += bits.OnesCount8(v)
	}
	return n
}
