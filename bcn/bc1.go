package bcn

import (
	"encoding/binary"
	"image/color"
)

// colorBlock is the 8-byte 565 color part shared by BC1, BC2 and BC3.
type colorBlock struct {
	color0, color1 rgb565
	indices        uint32 // 2 bits per texel, texel i at bit 2*i
}

func (b *colorBlock) index(i int) int { return int(b.indices>>(uint(i)*2)) & 3 }

func (b *colorBlock) setIndex(i, v int) {
	shift := uint(i) * 2
	b.indices = b.indices&^(3<<shift) | uint32(v&3)<<shift
}

// threeColor reports whether the BC1 palette is the 3-color plus black variant.
func (b *colorBlock) threeColor() bool { return b.color0 <= b.color1 }

func (b *colorBlock) put(dst []byte) {
	binary.LittleEndian.PutUint16(dst[0:2], uint16(b.color0))
	binary.LittleEndian.PutUint16(dst[2:4], uint16(b.color1))
	binary.LittleEndian.PutUint32(dst[4:8], b.indices)
}

func parseColorBlock(src []byte) colorBlock {
	return colorBlock{
		color0:  rgb565(binary.LittleEndian.Uint16(src[0:2])),
		color1:  rgb565(binary.LittleEndian.Uint16(src[2:4])),
		indices: binary.LittleEndian.Uint32(src[4:8]),
	}
}

// colorPalette expands two endpoints into the 4-entry palette with integer
// (2*c0+c1)/3 and (c0+2*c1)/3 steps. In three-color mode the third entry is the
// midpoint and the last is black.
func colorPalette(color0, color1 rgb565, threeColor bool) [4]rgb24 {
	c0 := color0.rgb()
	c1 := color1.rgb()
	if threeColor {
		return [4]rgb24{c0, c1, mixRGB24(c0, c1, 1, 1), {}}
	}
	return [4]rgb24{c0, c1, mixRGB24(c0, c1, 2, 1), mixRGB24(c0, c1, 1, 2)}
}

// mixRGB24 returns (w0*a + w1*b) / (w0+w1) per channel, truncated.
func mixRGB24(a, b rgb24, w0, w1 int) rgb24 {
	mix := func(x, y uint8) uint8 { return uint8((w0*int(x) + w1*int(y)) / (w0 + w1)) }
	return rgb24{r: mix(a.r, b.r), g: mix(a.g, b.g), b: mix(a.b, b.b)}
}

// colorVariant selects how a color block treats the black/transparent palette entry.
type colorVariant uint8

const (
	colorOpaque       colorVariant = iota // BC1 without alpha: never emits the black entry
	colorPunchThrough                     // BC1 with 1-bit alpha
	colorFourOnly                         // BC2/BC3: always the 4-color palette
)

const alphaCutoff = 128

// chooseColor returns the palette index closest to c under the 0.3/0.6/0.1 weighted
// absolute difference, and that difference.
func chooseColor(pal *[4]rgb24, c color.NRGBA, variant colorVariant, threeColor bool) (int, float32) {
	if variant == colorPunchThrough && threeColor && c.A < alphaCutoff {
		return 3, 0
	}
	best := 0
	var bestD float32
	for i := 0; i < 4; i++ {
		var d float32
		if i == 3 && threeColor {
			d = 999
		} else {
			p := pal[i]
			d = float32(absInt(int(p.r)-int(c.R)))*0.3 +
				float32(absInt(int(p.g)-int(c.G)))*0.6 +
				float32(absInt(int(p.b)-int(c.B)))*0.1
		}
		if i == 0 || d < bestD {
			best = i
			bestD = d
		}
	}
	return best, bestD
}

// tryColors fills indices for the endpoint pair and returns the summed selection error.
func tryColors(t *Tile, c0, c1 rgb565, variant colorVariant) (colorBlock, float32) {
	b := colorBlock{color0: c0, color1: c1}
	three := variant != colorFourOnly && b.threeColor()
	pal := colorPalette(c0, c1, three)
	var sum float32
	for i := 0; i < 16; i++ {
		idx, e := chooseColor(&pal, t[i], variant, three)
		b.setIndex(i, idx)
		sum += e
	}
	return b, sum
}

type endpointOrder uint8

const (
	orderNone endpointOrder = iota
	orderDescending
	orderAscending
)

func (o endpointOrder) apply(c0, c1 rgb565) (rgb565, rgb565) {
	switch o {
	case orderDescending:
		if c0 < c1 {
			return c1, c0
		}
	case orderAscending:
		if c1 < c0 {
			return c1, c0
		}
	}
	return c0, c1
}

// colorSearch bounds the 565 endpoint refinement loop.
type colorSearch struct {
	maxTries  int
	threshold float32
	patience  int // stop after this many non-improving tries; 0 disables
}

func colorSearchFor(q Quality, punchThrough bool) colorSearch {
	switch q {
	case QualityBalanced:
		return colorSearch{maxTries: varPatternCount * 2, threshold: 0.05}
	case QualityBestQuality:
		s := colorSearch{maxTries: 9999, threshold: 0.01, patience: varPatternCount}
		if punchThrough {
			s.threshold = 0.05
		}
		return s
	default:
		return colorSearch{}
	}
}

// refineColors starts from the ordered pair (c0, c1) and walks the variation
// patterns, keeping any pair that lowers the error.
func refineColors(t *Tile, c0, c1 rgb565, variant colorVariant, order endpointOrder, s colorSearch) colorBlock {
	best, bestErr := tryColors(t, c0, c1, variant)
	lastChanged := 0
	for i := 0; i < s.maxTries; i++ {
		n0, n1 := variate565(c0, c1, i)
		n0, n1 = order.apply(n0, n1)
		blk, e := tryColors(t, n0, n1, variant)
		lastChanged++
		if e < bestErr {
			best = blk
			bestErr = e
			c0, c1 = n0, n1
			lastChanged = 0
		}
		if bestErr < s.threshold || (s.patience > 0 && lastChanged > s.patience) {
			break
		}
	}
	return best
}

func encodeBC1Color(t *Tile, q Quality, alpha1Bit bool) colorBlock {
	if t.solid() {
		return solidColorBlock(t[0], alpha1Bit)
	}
	if !alpha1Bit {
		if q == QualityFast {
			lo, hi := boundingBox565(t[:])
			b, _ := tryColors(t, hi, lo, colorOpaque)
			return b
		}
		lo, hi := pcaMinMax565(t[:])
		c0, c1 := orderDescending.apply(hi, lo)
		return refineColors(t, c0, c1, colorOpaque, orderDescending, colorSearchFor(q, false))
	}

	hasAlpha := t.HasTransparent()
	if q == QualityFast {
		lo, hi := boundingBox565Cutoff(t[:], alphaCutoff)
		c0, c1 := hi, lo
		if hasAlpha && c0 > c1 {
			c0, c1 = c1, c0
		}
		b, _ := tryColors(t, c0, c1, colorPunchThrough)
		return b
	}
	order := orderDescending
	if hasAlpha {
		order = orderAscending
	}
	lo, hi := pcaMinMax565(t[:])
	c0, c1 := order.apply(hi, lo)
	return refineColors(t, c0, c1, colorPunchThrough, order, colorSearchFor(q, true))
}

// encodeBC1 encodes one tile into an 8-byte BC1 block.
func encodeBC1(dst []byte, t *Tile, q Quality, alpha1Bit bool) {
	b := encodeBC1Color(t, q, alpha1Bit)
	b.put(dst)
}

// decodeColorBlock writes the RGB part of a color block into dst, leaving alpha opaque.
// In BC1 three-color mode, index 3 decodes to black with alpha 0 when alpha1Bit is set.
func decodeColorBlock(dst *Tile, b colorBlock, allowThree, alpha1Bit bool) {
	three := allowThree && b.threeColor()
	pal := colorPalette(b.color0, b.color1, three)
	for i := 0; i < 16; i++ {
		idx := b.index(i)
		a := uint8(255)
		if three && idx == 3 && alpha1Bit {
			a = 0
		}
		dst[i] = pal[idx].nrgba(a)
	}
}

func decodeBC1(dst *Tile, src []byte, alpha1Bit bool) {
	decodeColorBlock(dst, parseColorBlock(src), true, alpha1Bit)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
