package bcn

import (
	"image/color"
	"math"
)

// rgb565 is a packed 5:6:5 color as stored in BC1/BC2/BC3 endpoints.
type rgb565 uint16

func newRGB565(r, g, b uint8) rgb565 {
	return rgb565(uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3))
}

func (c rgb565) r5() int { return int(c>>11) & 0x1F }
func (c rgb565) g6() int { return int(c>>5) & 0x3F }
func (c rgb565) b5() int { return int(c) & 0x1F }

func (c rgb565) withRaw(r5, g6, b5 int) rgb565 {
	r5 = clampInt(r5, 0, 31)
	g6 = clampInt(g6, 0, 63)
	b5 = clampInt(b5, 0, 31)
	return rgb565(r5<<11 | g6<<5 | b5)
}

// rgb expands to 8 bits per channel by replicating the high bits.
func (c rgb565) rgb() rgb24 {
	r := c.r5()
	g := c.g6()
	b := c.b5()
	return rgb24{
		r: uint8(r<<3 | r>>2),
		g: uint8(g<<2 | g>>4),
		b: uint8(b<<3 | b>>2),
	}
}

// rgb24 is an opaque 8-bit color used for BC1 palettes.
type rgb24 struct {
	r, g, b uint8
}

func (c rgb24) nrgba(a uint8) color.NRGBA {
	return color.NRGBA{R: c.r, G: c.g, B: c.b, A: a}
}

// ycbcr is a luma/chroma triple with channels scaled to [0,1] input.
type ycbcr struct {
	y, cb, cr float32
}

func toYCbCr(r, g, b uint8) ycbcr {
	fr := float32(r) / 255
	fg := float32(g) / 255
	fb := float32(b) / 255
	return ycbcr{
		y:  0.2989*fr + 0.5866*fg + 0.1145*fb,
		cb: -0.1687*fr - 0.3313*fg + 0.5*fb,
		cr: 0.5*fr - 0.4184*fg - 0.0816*fb,
	}
}

// nrgba converts back to 8-bit RGB. Used only by luminance paths and tests.
func (c ycbcr) nrgba() color.NRGBA {
	r := c.y + 1.4022*c.cr
	g := c.y - 0.3456*c.cb - 0.7145*c.cr
	b := c.y + 1.7710*c.cb
	return color.NRGBA{
		R: clampByte(int(r * 255)),
		G: clampByte(int(g * 255)),
		B: clampByte(int(b * 255)),
		A: 255,
	}
}

// ycbcrAlpha is ycbcr extended with a [0,1] alpha channel.
type ycbcrAlpha struct {
	y, cb, cr, a float32
}

func toYCbCrAlpha(c color.NRGBA) ycbcrAlpha {
	ycc := toYCbCr(c.R, c.G, c.B)
	return ycbcrAlpha{y: ycc.y, cb: ycc.cb, cr: ycc.cr, a: float32(c.A) / 255}
}

// dist is the weighted euclidean distance used to pick BC7 indices.
func (c ycbcrAlpha) dist(o ycbcrAlpha) float32 {
	dy := (c.y - o.y) * (c.y - o.y)
	dcb := (c.cb - o.cb) * (c.cb - o.cb)
	dcr := (c.cr - o.cr) * (c.cr - o.cr)
	da := (c.a - o.a) * (c.a - o.a)
	return float32(math.Sqrt(float64(dy*4 + dcb + dcr + da*2)))
}

func (c ycbcr) dist(o ycbcr) float32 {
	dy := (c.y - o.y) * (c.y - o.y)
	dcb := (c.cb - o.cb) * (c.cb - o.cb)
	dcr := (c.cr - o.cr) * (c.cr - o.cr)
	return float32(math.Sqrt(float64(dy*4 + dcb + dcr)))
}

// labXY is a CIE L*a*b* color with a texel position, used by clustering.
type labXY struct {
	l, a, b float32
	x, y    float32
}

func toLab(c color.NRGBA) (l, a, b float32) {
	pivotRGB := func(n float64) float64 {
		if n > 0.04045 {
			n = math.Pow((n+0.055)/1.055, 2.4)
		} else {
			n /= 12.92
		}
		return n * 100
	}
	r := pivotRGB(float64(c.R) / 255)
	g := pivotRGB(float64(c.G) / 255)
	bl := pivotRGB(float64(c.B) / 255)

	x := r*0.4124 + g*0.3576 + bl*0.1805
	y := r*0.2126 + g*0.7152 + bl*0.0722
	z := r*0.0193 + g*0.1192 + bl*0.9505

	pivotXYZ := func(n float64) float64 {
		if n > 0.008856 {
			return math.Cbrt(n)
		}
		return 7.787*n + 16.0/116
	}
	fx := pivotXYZ(x / 95.047)
	fy := pivotXYZ(y / 100.0)
	fz := pivotXYZ(z / 108.883)

	return float32(116*fy - 16), float32(500 * (fx - fy)), float32(200 * (fy - fz))
}

// luminance returns the 8-bit luma of c, as stored by BC4 luminance mode.
func luminance(c color.NRGBA) uint8 {
	return clampByte(int(toYCbCr(c.R, c.G, c.B).y * 255))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
