package bcn

import "image/color"

// bc7SubsetMode configures the shared encoder for the partitioned modes and mode 6.
type bc7SubsetMode struct {
	ignoreAlpha  bool
	variatePBits bool
	variateAlpha bool
}

var bc7SubsetModes = [8]bc7SubsetMode{
	0: {ignoreAlpha: true, variatePBits: true},
	1: {ignoreAlpha: true, variatePBits: true},
	2: {ignoreAlpha: true},
	3: {ignoreAlpha: true, variatePBits: true},
	6: {variatePBits: true, variateAlpha: true},
	7: {variatePBits: true, variateAlpha: true},
}

// encodeBC7Subsets encodes t in a single-stream mode (0, 1, 2, 3, 6 or 7) with the
// given partition. Every subset gets PCA endpoints refined by local search; if the
// index at the subset's anchor has its top bit set, the endpoints are swapped so the
// anchor's implicit zero bit holds.
func encodeBC7Subsets(t *Tile, mode, partition, variation int) bc7Params {
	l := &bc7Layouts[mode]
	cfg := bc7SubsetModes[mode]
	p := bc7Params{mode: mode, partition: uint8(partition)}
	opaque := !t.HasTransparent()
	msb := uint8(1) << (l.indexBits[0] - 1)

	for s := 0; s < l.subsets; s++ {
		f := newBC7Fit(mode, t, partition, s)
		lo, hi := f.initialEndpoints()
		ep0, pb0 := scaleDownBC7(lo, l, cfg.ignoreAlpha)
		ep1, pb1 := scaleDownBC7(hi, l, cfg.ignoreAlpha)

		variatePBits, variateAlpha := cfg.variatePBits, cfg.variateAlpha
		switch {
		case l.pbits == pbitShared:
			pb0 = pb1
		case mode == 6 && opaque:
			// p-bit 1 on a 7-bit 127 gives exactly 255.
			pb0, pb1 = 1, 1
			variatePBits, variateAlpha = false, false
		}
		f.optimize(&ep0, &ep1, &pb0, &pb1, variation, variatePBits, variateAlpha)
		f.fillIndices(f.expand(ep0, pb0), f.expand(ep1, pb1), &p.colorIndices)

		if p.colorIndices[bc7Anchor(l.subsets, partition, s)]&msb != 0 {
			ep0, ep1 = ep1, ep0
			pb0, pb1 = pb1, pb0
			f.fillIndices(f.expand(ep0, pb0), f.expand(ep1, pb1), &p.colorIndices)
		}

		p.endpoints[2*s], p.endpoints[2*s+1] = ep0, ep1
		p.pbits[2*s], p.pbits[2*s+1] = pb0, pb1
	}
	return p
}

func encodeMode0(t *Tile, variation, partition int) bc7Params {
	return encodeBC7Subsets(t, 0, partition&15, variation)
}

func encodeMode1(t *Tile, variation, partition int) bc7Params {
	return encodeBC7Subsets(t, 1, partition, variation)
}

func encodeMode2(t *Tile, variation, partition int) bc7Params {
	return encodeBC7Subsets(t, 2, partition, variation)
}

func encodeMode3(t *Tile, variation, partition int) bc7Params {
	return encodeBC7Subsets(t, 3, partition, variation)
}

func encodeMode6(t *Tile, variation int) bc7Params {
	return encodeBC7Subsets(t, 6, 0, variation)
}

func encodeMode7(t *Tile, variation, partition int) bc7Params {
	return encodeBC7Subsets(t, 7, partition, variation)
}

// encodeBC7Rotated encodes t in mode 4 or 5, trying every rotation and, for mode 4,
// both index modes. The candidate closest to t wins.
func encodeBC7Rotated(t *Tile, mode, variation int) bc7Params {
	l := &bc7Layouts[mode]
	indexModes := uint8(1)
	if l.indexModeBits > 0 {
		indexModes = 2
	}

	var best bc7Params
	bestErr := float32(-1)
	for im := uint8(0); im < indexModes; im++ {
		for rot := uint8(0); rot < 4; rot++ {
			rt := rotateTile(t, rot)
			f := newBC7Fit(mode, &rt, 0, 0)
			f.indexMode = im

			lo, hi := f.initialEndpoints()
			ep0, _ := scaleDownBC7(lo, l, false)
			ep1, _ := scaleDownBC7(hi, l, false)
			var pb uint8
			f.optimize(&ep0, &ep1, &pb, &pb, variation, false, true)

			p := bc7Params{mode: mode, rotation: rot, indexMode: im}
			f.fillSplitIndices(f.expand(ep0, 0), f.expand(ep1, 0), &p.colorIndices, &p.alphaIndices)

			if swapSplitAnchors(&ep0, &ep1, p.colorIndices[0], p.alphaIndices[0], l, im) {
				f.fillSplitIndices(f.expand(ep0, 0), f.expand(ep1, 0), &p.colorIndices, &p.alphaIndices)
			}
			p.endpoints[0], p.endpoints[1] = ep0, ep1

			decoded := p.decode()
			if e := TileError(t, &decoded); bestErr < 0 || e < bestErr {
				best, bestErr = p, e
			}
		}
	}
	return best
}

// swapSplitAnchors fixes the anchor bits of a mode 4 or 5 block from the indices
// texel 0 received. A set color MSB swaps the color channels of the endpoints and
// leaves each endpoint's alpha in place; a set alpha MSB swaps only alpha. It
// reports whether the indices have to be refilled.
func swapSplitAnchors(ep0, ep1 *color.NRGBA, colorIdx, alphaIdx uint8, l *bc7Layout, indexMode uint8) bool {
	colorMSB := uint8(1) << (l.colorIndexBits(indexMode) - 1)
	alphaMSB := uint8(1) << (l.alphaIndexBits(indexMode) - 1)
	swapped := false
	if colorIdx&colorMSB != 0 {
		a0, a1 := ep0.A, ep1.A
		*ep0, *ep1 = *ep1, *ep0
		ep0.A, ep1.A = a0, a1
		swapped = true
	}
	if alphaIdx&alphaMSB != 0 {
		ep0.A, ep1.A = ep1.A, ep0.A
		swapped = true
	}
	return swapped
}

func encodeMode4(t *Tile, variation int) bc7Params {
	return encodeBC7Rotated(t, 4, variation)
}

func encodeMode5(t *Tile, variation int) bc7Params {
	return encodeBC7Rotated(t, 5, variation)
}
