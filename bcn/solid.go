package bcn

import "image/color"

// solidPair is a pair of quantized endpoint values for one channel.
type solidPair struct {
	lo, hi uint8
}

// solid565Tables hold, per 8-bit value, the endpoint pair whose (2*c0+c1)/3 palette
// entry lands closest to the value. Some values of the 5-bit channels are only
// reachable to within 1. Index 0 is the 5-bit table and index 1 the 6-bit table.
var solid565Tables = [2][256]solidPair{buildSolid565Table(5), buildSolid565Table(6)}

func expandBits(v, bits int) int {
	if bits == 6 {
		return v<<2 | v>>4
	}
	return v<<3 | v>>2
}

func buildSolid565Table(bits int) [256]solidPair {
	var out [256]solidPair
	n := 1 << bits
	for v := 0; v < 256; v++ {
		bestErr := 1 << 30
		for a := 0; a < n; a++ {
			ea := expandBits(a, bits)
			for b := 0; b < n; b++ {
				eb := expandBits(b, bits)
				p := (2*ea + eb) / 3
				if e := absInt(p - v); e < bestErr {
					bestErr = e
					out[v] = solidPair{lo: uint8(b), hi: uint8(a)}
				}
			}
		}
	}
	return out
}

// solidColorBlock encodes a tile whose texels all equal c.
//
// Colors representable in 565 use c0 == c1 and index 0. Others use the best
// pair from solid565Tables at palette index 2.
func solidColorBlock(c color.NRGBA, alpha1Bit bool) colorBlock {
	if alpha1Bit && c.A < alphaCutoff {
		b := colorBlock{}
		for i := 0; i < 16; i++ {
			b.setIndex(i, 3)
		}
		return b
	}

	q := newRGB565(c.R, c.G, c.B)
	if q.rgb() == (rgb24{c.R, c.G, c.B}) {
		return colorBlock{color0: q, color1: q}
	}

	r := solid565Tables[0][c.R]
	g := solid565Tables[1][c.G]
	bl := solid565Tables[0][c.B]
	c0 := rgb565(int(r.hi)<<11 | int(g.hi)<<5 | int(bl.hi))
	c1 := rgb565(int(r.lo)<<11 | int(g.lo)<<5 | int(bl.lo))

	idx := 2
	switch {
	case c0 == c1:
		idx = 0
	case c0 < c1:
		// Keep the 4-color palette; the swapped pair yields the same value at index 3.
		c0, c1 = c1, c0
		idx = 3
	}
	b := colorBlock{color0: c0, color1: c1}
	for i := 0; i < 16; i++ {
		b.setIndex(i, idx)
	}
	return b
}

// bc7SolidTable holds, per 8-bit value, the 7-bit endpoint pair that reproduces the
// value exactly at 2-bit weight index 1 in mode 5.
var bc7SolidTable = buildBC7SolidTable()

func buildBC7SolidTable() [256][2]uint8 {
	var out [256][2]uint8
	for v := 0; v < 256; v++ {
		bestErr := 1 << 30
		for lo := 0; lo < 128; lo++ {
			e0 := lo<<1 | lo>>6
			for hi := 0; hi < 128; hi++ {
				e1 := hi<<1 | hi>>6
				p := ((64-21)*e0 + 21*e1 + 32) >> 6
				if e := absInt(p - v); e < bestErr {
					bestErr = e
					out[v] = [2]uint8{uint8(lo), uint8(hi)}
				}
			}
			if bestErr == 0 {
				break
			}
		}
	}
	return out
}

// solidBC7 returns a mode 5 block that decodes to c in every texel.
func solidBC7(c color.NRGBA) bc7Params {
	p := bc7Params{mode: 5}
	r := bc7SolidTable[c.R]
	g := bc7SolidTable[c.G]
	b := bc7SolidTable[c.B]
	p.endpoints[0] = color.NRGBA{R: r[0], G: g[0], B: b[0], A: c.A}
	p.endpoints[1] = color.NRGBA{R: r[1], G: g[1], B: b[1], A: c.A}
	for i := 0; i < 16; i++ {
		p.colorIndices[i] = 1
	}
	return p
}
