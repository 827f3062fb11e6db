package bcn

import "encoding/binary"

// bits128 is a 128-bit little-endian bit field: bit k of the block is bit k of lo
// for k < 64 and bit k-64 of hi otherwise.
type bits128 struct {
	lo, hi uint64
}

func loadBits128(src []byte) bits128 {
	return bits128{
		lo: binary.LittleEndian.Uint64(src[0:8]),
		hi: binary.LittleEndian.Uint64(src[8:16]),
	}
}

func (b bits128) store(dst []byte) {
	binary.LittleEndian.PutUint64(dst[0:8], b.lo)
	binary.LittleEndian.PutUint64(dst[8:16], b.hi)
}

func lowMask(n uint) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<n - 1
}

// get returns n bits (0..64) starting at absolute bit offset off.
func (b bits128) get(off, n uint) uint64 {
	if n == 0 {
		return 0
	}
	var v uint64
	switch {
	case off >= 64:
		v = b.hi >> (off - 64)
	case off == 0:
		v = b.lo
	default:
		v = b.lo>>off | b.hi<<(64-off)
	}
	return v & lowMask(n)
}

// set stores the low n bits (0..64) of v at absolute bit offset off.
func (b *bits128) set(off, n uint, v uint64) {
	if n == 0 {
		return
	}
	m := lowMask(n)
	v &= m
	if off >= 64 {
		s := off - 64
		b.hi = b.hi&^(m<<s) | v<<s
		return
	}
	b.lo = b.lo&^(m<<off) | v<<off
	if off+n > 64 {
		s := 64 - off
		b.hi = b.hi&^(m>>s) | v>>s
	}
}

// lowestSetBit returns the index of the lowest set bit among the first n bits, or -1.
func (b bits128) lowestSetBit(n uint) int {
	for i := uint(0); i < n; i++ {
		if b.get(i, 1) != 0 {
			return int(i)
		}
	}
	return -1
}
