package bcn

import "image/color"

// Endpoint variation patterns. Entry i moves R, G, B and optionally A together.
var (
	bc7VarR = [10]int{1, -1, 1, 0, 0, -1, 0, 0, 0, 0}
	bc7VarG = [10]int{1, -1, 0, 1, 0, 0, -1, 0, 0, 0}
	bc7VarB = [10]int{1, -1, 0, 0, 1, 0, 0, -1, 0, 0}
	bc7VarA = [10]int{0, 0, 0, 0, 0, 0, 0, 0, 1, -1}
)

// scaleDownBC7 reduces an 8-bit endpoint to the mode's stored precision and votes
// its p-bit from the bits the reduction drops.
func scaleDownBC7(c color.NRGBA, l *bc7Layout, ignoreAlpha bool) (color.NRGBA, uint8) {
	cp := l.colorPrecision()
	ap := l.alphaPrecision()
	out := color.NRGBA{
		R: c.R >> (8 - cp),
		G: c.G >> (8 - cp),
		B: c.B >> (8 - cp),
		A: c.A >> (8 - ap),
	}
	if ap == 0 {
		out.A = 0
	}

	var pbit uint8
	if l.hasPBits() {
		mask := 1<<(8-cp+1) - 1
		votes := float32(int(c.R)&mask+int(c.G)&mask+int(c.B)&mask) / 3
		if votes >= float32(mask)/2 {
			pbit = 1
		}
		out.R >>= 1
		out.G >>= 1
		out.B >>= 1
		out.A >>= 1
	}
	if ignoreAlpha {
		out.A = 0
	}
	return out, pbit
}

// bc7Fit scores and optimizes the endpoints of one subset against a tile.
type bc7Fit struct {
	layout    *bc7Layout
	indexMode uint8
	tile      *Tile
	partition int
	subset    int
}

func newBC7Fit(mode int, t *Tile, partition, subset int) *bc7Fit {
	return &bc7Fit{layout: &bc7Layouts[mode], tile: t, partition: partition, subset: subset}
}

func (f *bc7Fit) member(i int) bool {
	return bc7Subset(f.layout.subsets, f.partition, i) == f.subset
}

// palette interpolates the single-stream palette between two expanded endpoints.
func (f *bc7Fit) palette(e0, e1 color.NRGBA) []ycbcrAlpha {
	cb := f.layout.colorIndexBits(f.indexMode)
	ab := f.layout.alphaIndexBits(f.indexMode)
	cw := bc7Weights(cb)
	out := make([]ycbcrAlpha, 1<<cb)
	for i := range out {
		c := color.NRGBA{
			R: interpolateBC7(e0.R, e1.R, cw[i]),
			G: interpolateBC7(e0.G, e1.G, cw[i]),
			B: interpolateBC7(e0.B, e1.B, cw[i]),
			A: e0.A,
		}
		if ab > 0 {
			c.A = interpolateBC7(e0.A, e1.A, bc7Weights(ab)[i])
		}
		out[i] = toYCbCrAlpha(c)
	}
	return out
}

// splitPalettes interpolates the separate color and alpha palettes of modes 4 and 5.
func (f *bc7Fit) splitPalettes(e0, e1 color.NRGBA) ([]ycbcr, []uint8) {
	cw := bc7Weights(f.layout.colorIndexBits(f.indexMode))
	aw := bc7Weights(f.layout.alphaIndexBits(f.indexMode))
	colors := make([]ycbcr, len(cw))
	for i, w := range cw {
		colors[i] = toYCbCr(
			interpolateBC7(e0.R, e1.R, w),
			interpolateBC7(e0.G, e1.G, w),
			interpolateBC7(e0.B, e1.B, w),
		)
	}
	alphas := make([]uint8, len(aw))
	for i, w := range aw {
		alphas[i] = interpolateBC7(e0.A, e1.A, w)
	}
	return colors, alphas
}

func closestYCbCrAlpha(c ycbcrAlpha, pal []ycbcrAlpha) (int, float32) {
	best, bestErr := 0, c.dist(pal[0])
	for i := 1; i < len(pal); i++ {
		if e := c.dist(pal[i]); e < bestErr {
			best, bestErr = i, e
		}
	}
	return best, bestErr
}

func closestYCbCr(c ycbcr, pal []ycbcr) (int, float32) {
	best, bestErr := 0, c.dist(pal[0])
	for i := 1; i < len(pal) && bestErr != 0; i++ {
		if e := c.dist(pal[i]); e < bestErr {
			best, bestErr = i, e
		}
	}
	return best, bestErr
}

func closestAlpha(a uint8, pal []uint8) (int, float32) {
	sq := func(v uint8) float32 { d := float32(int(a) - int(v)); return d * d }
	best, bestErr := 0, sq(pal[0])
	for i := 1; i < len(pal) && bestErr != 0; i++ {
		if e := sq(pal[i]); e < bestErr {
			best, bestErr = i, e
		}
	}
	return best, bestErr
}

// trial returns the error of the subset when encoded between two expanded endpoints.
func (f *bc7Fit) trial(e0, e1 color.NRGBA) float32 {
	if f.layout.splitIndices() {
		colors, alphas := f.splitPalettes(e0, e1)
		var sum float32
		for i := 0; i < 16; i++ {
			c := f.tile[i]
			_, ce := closestYCbCr(toYCbCr(c.R, c.G, c.B), colors)
			_, ae := closestAlpha(c.A, alphas)
			sum += ce + ae
		}
		return sum / 16
	}

	pal := f.palette(e0, e1)
	var sum, count float32
	for i := 0; i < 16; i++ {
		if !f.member(i) {
			continue
		}
		_, e := closestYCbCrAlpha(toYCbCrAlpha(f.tile[i]), pal)
		sum += e * e
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / count
}

// fillIndices writes the nearest palette index of every subset member into dst.
func (f *bc7Fit) fillIndices(e0, e1 color.NRGBA, dst *[16]uint8) {
	pal := f.palette(e0, e1)
	for i := 0; i < 16; i++ {
		if f.member(i) {
			idx, _ := closestYCbCrAlpha(toYCbCrAlpha(f.tile[i]), pal)
			dst[i] = uint8(idx)
		}
	}
}

// fillSplitIndices writes separate color and alpha indices for modes 4 and 5.
func (f *bc7Fit) fillSplitIndices(e0, e1 color.NRGBA, colorIdx, alphaIdx *[16]uint8) {
	colors, alphas := f.splitPalettes(e0, e1)
	for i := 0; i < 16; i++ {
		c := f.tile[i]
		ci, _ := closestYCbCr(toYCbCr(c.R, c.G, c.B), colors)
		ai, _ := closestAlpha(c.A, alphas)
		colorIdx[i] = uint8(ci)
		alphaIdx[i] = uint8(ai)
	}
}

func (f *bc7Fit) expand(c color.NRGBA, pbit uint8) color.NRGBA {
	return expandBC7Endpoint(f.layout, c, pbit)
}

// vary offsets c by sign*step along pattern entry i, saturating at the stored precision.
func (f *bc7Fit) vary(c color.NRGBA, i, step int, withAlpha bool) color.NRGBA {
	colorMax := 1<<f.layout.colorBits - 1
	alphaMax := 1<<f.layout.alphaBits - 1
	out := color.NRGBA{
		R: uint8(clampInt(int(c.R)+step*bc7VarR[i], 0, colorMax)),
		G: uint8(clampInt(int(c.G)+step*bc7VarG[i], 0, colorMax)),
		B: uint8(clampInt(int(c.B)+step*bc7VarB[i], 0, colorMax)),
		A: uint8(clampInt(int(c.A), 0, alphaMax)),
	}
	if withAlpha {
		out.A = uint8(clampInt(int(c.A)+step*bc7VarA[i], 0, alphaMax))
	}
	return out
}

// optimize refines a stored endpoint pair by greedy local search. Each pass tries
// moving both endpoints apart or together, then each endpoint alone, then flipping
// p-bits; the step shrinks when a pass finds nothing better. Modes with a shared
// p-bit flip both bits together.
func (f *bc7Fit) optimize(ep0, ep1 *color.NRGBA, pb0, pb1 *uint8, variation int, variatePBits, variateAlpha bool) {
	shared := f.layout.pbits == pbitShared
	best := f.trial(f.expand(*ep0, *pb0), f.expand(*ep1, *pb1))

	patterns := 8
	if variateAlpha {
		patterns = 10
	}
	for variation > 0 {
		improved := false

		for i := 0; i < patterns; i++ {
			t0 := f.vary(*ep0, i, -variation, variateAlpha)
			t1 := f.vary(*ep1, i, variation, variateAlpha)
			if e := f.trial(f.expand(t0, *pb0), f.expand(t1, *pb1)); e < best {
				best, *ep0, *ep1, improved = e, t0, t1, true
			}
		}
		for i := 0; i < patterns; i++ {
			t0 := f.vary(*ep0, i, variation, variateAlpha)
			if e := f.trial(f.expand(t0, *pb0), f.expand(*ep1, *pb1)); e < best {
				best, *ep0, improved = e, t0, true
			}
		}
		for i := 0; i < patterns; i++ {
			t1 := f.vary(*ep1, i, variation, variateAlpha)
			if e := f.trial(f.expand(*ep0, *pb0), f.expand(t1, *pb1)); e < best {
				best, *ep1, improved = e, t1, true
			}
		}

		if variatePBits {
			if shared {
				p := *pb0 ^ 1
				if e := f.trial(f.expand(*ep0, p), f.expand(*ep1, p)); e < best {
					best, *pb0, *pb1, improved = e, p, p, true
				}
			} else {
				p0 := *pb0 ^ 1
				if e := f.trial(f.expand(*ep0, p0), f.expand(*ep1, *pb1)); e < best {
					best, *pb0, improved = e, p0, true
				}
				p1 := *pb1 ^ 1
				if e := f.trial(f.expand(*ep0, *pb0), f.expand(*ep1, p1)); e < best {
					best, *pb1, improved = e, p1, true
				}
			}
		}

		if !improved {
			variation--
		}
	}
}

// initialEndpoints returns PCA endpoints for the subset members, at 8 bits.
func (f *bc7Fit) initialEndpoints() (color.NRGBA, color.NRGBA) {
	var buf [16]color.NRGBA
	members := buf[:0]
	for i := 0; i < 16; i++ {
		if f.member(i) {
			members = append(members, f.tile[i])
		}
	}
	return pcaEndpointsRGBA(members)
}

// rotateTile swaps alpha into the channel selected by rotation.
func rotateTile(t *Tile, rotation uint8) Tile {
	out := *t
	if rotation == 0 {
		return out
	}
	for i := range out {
		out[i] = rotateBC7(out[i], rotation)
	}
	return out
}
