package bcn

import "testing"

// refGet reads bits one at a time from a 16-byte little-endian buffer.
func refGet(buf *[16]byte, off, n uint) uint64 {
	var v uint64
	for i := uint(0); i < n; i++ {
		bit := off + i
		if buf[bit/8]>>(bit%8)&1 != 0 {
			v |= 1 << i
		}
	}
	return v
}

func TestBits128GetSetExhaustive(t *testing.T) {
	var seed [16]byte
	for i := range seed {
		seed[i] = byte(i*37 + 11)
	}

	for off := uint(0); off < 128; off++ {
		for n := uint(1); n <= 64 && off+n <= 128; n++ {
			b := loadBits128(seed[:])
			if got, want := b.get(off, n), refGet(&seed, off, n); got != want {
				t.Fatalf("get(%d, %d): got %#x want %#x", off, n, got, want)
			}

			v := uint64(0xA5C3_0F96_5A3C_F069) ^ uint64(off)<<7 ^ uint64(n)
			b.set(off, n, v)
			if got, want := b.get(off, n), v&lowMask(n); got != want {
				t.Fatalf("set/get(%d, %d): got %#x want %#x", off, n, got, want)
			}

			// Bits outside the field must be untouched.
			var out [16]byte
			b.store(out[:])
			for bit := uint(0); bit < 128; bit++ {
				if bit >= off && bit < off+n {
					continue
				}
				if refGet(&out, bit, 1) != refGet(&seed, bit, 1) {
					t.Fatalf("set(%d, %d) clobbered bit %d", off, n, bit)
				}
			}
		}
	}
}

func TestBits128ZeroWidth(t *testing.T) {
	b := bits128{lo: ^uint64(0), hi: ^uint64(0)}
	if got := b.get(17, 0); got != 0 {
		t.Fatalf("get(17, 0): got %d want 0", got)
	}
	b.set(17, 0, 0)
	if b.lo != ^uint64(0) || b.hi != ^uint64(0) {
		t.Fatalf("set(17, 0) modified the block: %#x %#x", b.lo, b.hi)
	}
}

func TestLowestSetBit(t *testing.T) {
	cases := []struct {
		lo   uint64
		want int
	}{
		{0, -1},
		{1, 0},
		{0b1000_0000, 7},
		{0b1_0000_0000, -1},
		{0b0110_0000, 5},
	}
	for _, c := range cases {
		if got := (bits128{lo: c.lo}).lowestSetBit(8); got != c.want {
			t.Fatalf("lowestSetBit(%#b): got %d want %d", c.lo, got, c.want)
		}
	}
}
