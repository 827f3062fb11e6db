package bcn

import "image/color"

// encodeBC4 writes the red channel, or luminance, of t as one scalar block.
func encodeBC4(dst []byte, t *Tile, q Quality, luminanceAsRed bool) {
	var red [16]uint8
	for i := range t {
		if luminanceAsRed {
			red[i] = luminance(t[i])
		} else {
			red[i] = t[i].R
		}
	}
	b := fitScalar(&red, redSearches[q])
	b.put(dst[0:8])
}

func decodeBC4(dst *Tile, src []byte, luminanceAsRed bool) {
	red := decodeScalar(src[0:8])
	for i := 0; i < 16; i++ {
		r := red[i]
		if luminanceAsRed {
			dst[i] = color.NRGBA{R: r, G: r, B: r, A: 255}
		} else {
			dst[i] = color.NRGBA{R: r, A: 255}
		}
	}
}
