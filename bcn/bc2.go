package bcn

import "encoding/binary"

// encodeBC2 writes explicit 4-bit alpha followed by a 4-color BC1 block.
func encodeBC2(dst []byte, t *Tile, q Quality) {
	var alpha uint64
	solid := t.solid()
	for i := 0; i < 16; i++ {
		var a4 uint64
		if solid {
			a4 = uint64(nearestAlpha4(t[i].A))
		} else {
			a4 = uint64(float64(t[i].A) / 255 * 15)
		}
		alpha |= (a4 & 0xF) << (uint(i) * 4)
	}
	binary.LittleEndian.PutUint64(dst[0:8], alpha)

	b := encodeFourColor(t, q, false)
	b.put(dst[8:16])
}

// encodeFourColor fits the color part of BC2 and BC3 blocks.
func encodeFourColor(t *Tile, q Quality, forceFastOrder bool) colorBlock {
	if t.solid() {
		return solidColorBlock(t[0], false)
	}
	lo, hi := pcaMinMax565(t[:])
	switch q {
	case QualityFast:
		c0, c1 := hi, lo
		if forceFastOrder && c0 <= c1 {
			c0, c1 = c1, c0
		}
		b, _ := tryColors(t, c0, c1, colorFourOnly)
		return b
	case QualityBalanced:
		return refineColors(t, hi, lo, colorFourOnly, orderNone, colorSearchFor(q, false))
	default:
		c0, c1 := orderDescending.apply(hi, lo)
		return refineColors(t, c0, c1, colorFourOnly, orderDescending, colorSearchFor(q, false))
	}
}

func alpha4Decode(a4 uint8) uint8 { return uint8(float64(a4) / 15 * 255) }

// nearestAlpha4 returns the 4-bit alpha whose decoded value is closest to a.
func nearestAlpha4(a uint8) uint8 {
	best := uint8(0)
	bestErr := 256
	for a4 := uint8(0); a4 < 16; a4++ {
		if e := absInt(int(alpha4Decode(a4)) - int(a)); e < bestErr {
			best = a4
			bestErr = e
		}
	}
	return best
}

func decodeBC2(dst *Tile, src []byte) {
	decodeColorBlock(dst, parseColorBlock(src[8:16]), false, false)
	alpha := binary.LittleEndian.Uint64(src[0:8])
	for i := 0; i < 16; i++ {
		dst[i].A = alpha4Decode(uint8(alpha>>(uint(i)*4)) & 0xF)
	}
}
