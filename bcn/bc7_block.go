package bcn

import "image/color"

// bc7Params is the logical content of one BC7 block. Endpoints are held at the
// mode's stored precision, without p-bits.
type bc7Params struct {
	mode      int
	partition uint8
	rotation  uint8
	indexMode uint8

	endpoints [6]color.NRGBA
	// pbits holds one bit per endpoint. Modes with a shared p-bit keep both
	// endpoints of a subset equal.
	pbits [6]uint8

	colorIndices [16]uint8
	// alphaIndices is only meaningful for modes with two index streams.
	alphaIndices [16]uint8
}

func (p *bc7Params) layout() *bc7Layout { return &bc7Layouts[p.mode] }

func (p *bc7Params) subset(i int) int {
	return bc7Subset(p.layout().subsets, int(p.partition), i)
}

// walk visits every field that follows the mode tag, in block order, with its width.
// Packing and unpacking share it so the two stay exact inverses.
func (p *bc7Params) walk(visit func(n uint, v *uint8)) {
	l := p.layout()
	visit(l.partitionBits, &p.partition)
	visit(l.rotationBits, &p.rotation)
	visit(l.indexModeBits, &p.indexMode)

	n := l.endpointCount()
	for ch := 0; ch < 3; ch++ {
		for e := 0; e < n; e++ {
			visit(l.colorBits, channelPtr(&p.endpoints[e], ch))
		}
	}
	if l.hasAlpha() {
		for e := 0; e < n; e++ {
			visit(l.alphaBits, &p.endpoints[e].A)
		}
	}
	switch l.pbits {
	case pbitPerEndpoint:
		for e := 0; e < n; e++ {
			visit(1, &p.pbits[e])
		}
	case pbitShared:
		for s := 0; s < l.subsets; s++ {
			visit(1, &p.pbits[2*s])
		}
	}

	primary, secondary := &p.colorIndices, &p.alphaIndices
	if p.mode == 4 && p.indexMode == 1 {
		primary, secondary = secondary, primary
	}
	for i := 0; i < 16; i++ {
		bits := l.indexBits[0]
		if bc7IsAnchor(l.subsets, int(p.partition), i) {
			bits--
		}
		visit(bits, &primary[i])
	}
	if l.splitIndices() {
		for i := 0; i < 16; i++ {
			bits := l.indexBits[1]
			if i == 0 {
				bits--
			}
			visit(bits, &secondary[i])
		}
	}
}

func channelPtr(c *color.NRGBA, ch int) *uint8 {
	switch ch {
	case 0:
		return &c.R
	case 1:
		return &c.G
	case 2:
		return &c.B
	default:
		return &c.A
	}
}

// pack encodes p into its 128-bit block form.
func (p *bc7Params) pack() bits128 {
	var b bits128
	b.set(uint(p.mode), 1, 1)
	off := uint(p.mode) + 1
	p.walk(func(n uint, v *uint8) {
		b.set(off, n, uint64(*v))
		off += n
	})
	return b
}

// unpackBC7 parses a 128-bit block. Blocks with no mode bit set are reserved.
func unpackBC7(b bits128) (bc7Params, error) {
	mode := b.lowestSetBit(8)
	if mode < 0 {
		return bc7Params{}, newError(ErrBadBlockType, "bcn: reserved BC7 block")
	}
	p := bc7Params{mode: mode}
	off := uint(mode) + 1
	p.walk(func(n uint, v *uint8) {
		*v = uint8(b.get(off, n))
		off += n
	})
	if p.layout().pbits == pbitShared {
		for s := 0; s < p.layout().subsets; s++ {
			p.pbits[2*s+1] = p.pbits[2*s]
		}
	}
	return p, nil
}

// expandBC7 widens a stored value plus its optional p-bit to 8 bits.
func expandBC7(v uint8, pbit uint8, bits uint, hasPBit bool) uint8 {
	x := uint(v)
	if hasPBit {
		x = x<<1 | uint(pbit&1)
		bits++
	}
	x = (x << (8 - bits)) & 0xFF
	return uint8(x | x>>bits)
}

// expandBC7Endpoint widens a stored endpoint to 8 bits per channel. Alpha is opaque
// for modes that do not store it.
func expandBC7Endpoint(l *bc7Layout, c color.NRGBA, pbit uint8) color.NRGBA {
	pb := l.hasPBits()
	out := color.NRGBA{
		R: expandBC7(c.R, pbit, l.colorBits, pb),
		G: expandBC7(c.G, pbit, l.colorBits, pb),
		B: expandBC7(c.B, pbit, l.colorBits, pb),
		A: 255,
	}
	if l.hasAlpha() {
		out.A = expandBC7(c.A, pbit, l.alphaBits, pb)
	}
	return out
}

// expandedEndpoints returns the endpoints at 8-bit precision.
func (p *bc7Params) expandedEndpoints() [6]color.NRGBA {
	l := p.layout()
	var out [6]color.NRGBA
	for e := 0; e < l.endpointCount(); e++ {
		out[e] = expandBC7Endpoint(l, p.endpoints[e], p.pbits[e])
	}
	return out
}

func bc7Weights(bits uint) []int {
	switch bits {
	case 2:
		return bc7Weights2[:]
	case 3:
		return bc7Weights3[:]
	default:
		return bc7Weights4[:]
	}
}

func interpolateBC7(e0, e1 uint8, w int) uint8 {
	return uint8(((64-w)*int(e0) + w*int(e1) + 32) >> 6)
}

// rotateBC7 swaps alpha with the channel selected by the rotation field.
func rotateBC7(c color.NRGBA, rotation uint8) color.NRGBA {
	switch rotation {
	case 1:
		c.R, c.A = c.A, c.R
	case 2:
		c.G, c.A = c.A, c.G
	case 3:
		c.B, c.A = c.A, c.B
	}
	return c
}

// decode reconstructs the 16 texels of p.
func (p *bc7Params) decode() Tile {
	l := p.layout()
	ep := p.expandedEndpoints()
	cw := bc7Weights(l.colorIndexBits(p.indexMode))
	var aw []int
	if l.hasAlpha() {
		aw = bc7Weights(l.alphaIndexBits(p.indexMode))
	}

	var t Tile
	for i := 0; i < 16; i++ {
		s := p.subset(i)
		e0, e1 := ep[2*s], ep[2*s+1]
		w := cw[p.colorIndices[i]]
		c := color.NRGBA{
			R: interpolateBC7(e0.R, e1.R, w),
			G: interpolateBC7(e0.G, e1.G, w),
			B: interpolateBC7(e0.B, e1.B, w),
			A: 255,
		}
		if aw != nil {
			ai := p.colorIndices[i]
			if l.splitIndices() {
				ai = p.alphaIndices[i]
			}
			c.A = interpolateBC7(e0.A, e1.A, aw[ai])
		}
		t[i] = rotateBC7(c, p.rotation)
	}
	return t
}

func encodeBC7Params(dst []byte, p *bc7Params) {
	p.pack().store(dst)
}

// decodeBC7 decodes one 16-byte block. Reserved blocks return ErrBadBlockType
// unless skipInvalid is set, in which case they decode to transparent black.
func decodeBC7(dst *Tile, src []byte, skipInvalid bool) error {
	p, err := unpackBC7(loadBits128(src))
	if err != nil {
		if skipInvalid {
			*dst = Tile{}
			return nil
		}
		return err
	}
	*dst = p.decode()
	return nil
}
