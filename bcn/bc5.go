package bcn

import "image/color"

// encodeBC5 writes the red and green channels of t as two scalar blocks.
func encodeBC5(dst []byte, t *Tile, q Quality) {
	var red, green [16]uint8
	for i := range t {
		red[i] = t[i].R
		green[i] = t[i].G
	}
	r := fitScalar(&red, twoChannelSearches[q])
	g := fitScalar(&green, twoChannelSearches[q])
	r.put(dst[0:8])
	g.put(dst[8:16])
}

func decodeBC5(dst *Tile, src []byte) {
	red := decodeScalar(src[0:8])
	green := decodeScalar(src[8:16])
	for i := 0; i < 16; i++ {
		dst[i] = color.NRGBA{R: red[i], G: green[i], A: 255}
	}
}
