package bcn

// encodeBC3 writes an interpolated alpha block followed by a 4-color BC1 block.
func encodeBC3(dst []byte, t *Tile, q Quality) {
	b := encodeFourColor(t, q, true)

	var alpha [16]uint8
	for i := range t {
		alpha[i] = t[i].A
	}
	a := fitScalar(&alpha, alphaSearches[q])

	a.put(dst[0:8])
	b.put(dst[8:16])
}

func decodeBC3(dst *Tile, src []byte) {
	decodeColorBlock(dst, parseColorBlock(src[8:16]), false, false)
	alpha := decodeScalar(src[0:8])
	for i := 0; i < 16; i++ {
		dst[i].A = alpha[i]
	}
}
