package bcn

import "encoding/binary"

// scalarBlock is the 8-byte interpolated single-channel block used by BC3 alpha,
// BC4 and each BC5 channel.
type scalarBlock struct {
	e0, e1  uint8
	indices uint64 // 3 bits per texel, texel i at bit 3*i
}

func (b *scalarBlock) index(i int) int { return int(b.indices>>(uint(i)*3)) & 7 }

func (b *scalarBlock) setIndex(i, v int) {
	shift := uint(i) * 3
	b.indices = b.indices&^(7<<shift) | uint64(v&7)<<shift
}

func (b *scalarBlock) put(dst []byte) {
	binary.LittleEndian.PutUint64(dst[0:8], uint64(b.e0)|uint64(b.e1)<<8|b.indices<<16)
}

func parseScalarBlock(src []byte) scalarBlock {
	w := binary.LittleEndian.Uint64(src[0:8])
	return scalarBlock{e0: uint8(w), e1: uint8(w >> 8), indices: w >> 16}
}

// scalarPalette returns the 8 values addressed by 3-bit indices. When e0 > e1 six
// interpolated steps follow; otherwise four, then the extremes 0 and 255.
func scalarPalette(e0, e1 uint8) [8]uint8 {
	a0 := float64(e0)
	a1 := float64(e1)
	if e0 > e1 {
		return [8]uint8{
			e0,
			e1,
			uint8(6/7.0*a0 + 1/7.0*a1),
			uint8(5/7.0*a0 + 2/7.0*a1),
			uint8(4/7.0*a0 + 3/7.0*a1),
			uint8(3/7.0*a0 + 4/7.0*a1),
			uint8(2/7.0*a0 + 5/7.0*a1),
			uint8(1/7.0*a0 + 6/7.0*a1),
		}
	}
	return [8]uint8{
		e0,
		e1,
		uint8(4/5.0*a0 + 1/5.0*a1),
		uint8(3/5.0*a0 + 2/5.0*a1),
		uint8(2/5.0*a0 + 3/5.0*a1),
		uint8(1/5.0*a0 + 4/5.0*a1),
		0,
		255,
	}
}

// selectScalarIndices snaps every value to its closest palette entry and returns the
// summed squared error.
func selectScalarIndices(b *scalarBlock, values *[16]uint8) int {
	pal := scalarPalette(b.e0, b.e1)
	sum := 0
	for i := 0; i < 16; i++ {
		v := int(values[i])
		best := 0
		bestErr := absInt(v - int(pal[0]))
		for j := 1; j < 8 && bestErr != 0; j++ {
			if e := absInt(v - int(pal[j])); e < bestErr {
				best = j
				bestErr = e
			}
		}
		b.setIndex(i, best)
		sum += bestErr * bestErr
	}
	return sum
}

// scalarSearch configures fitScalar.
type scalarSearch struct {
	steps  []int          // step sizes tried in order
	follow bool           // move the search center to each accepted pair
	done   func(int) bool // early exit on the best error so far
}

// fitScalar picks the two endpoints for a single channel.
//
// Values 0 and 255 are treated as extremes: they are excluded from the observed
// range and, when present, candidates are ordered so the palette that contains
// 0 and 255 is used.
func fitScalar(values *[16]uint8, s scalarSearch) scalarBlock {
	minV, maxV := 255, 0
	hasExtremes := false
	for _, v := range values {
		if v > 0 && v < 255 {
			if int(v) < minV {
				minV = int(v)
			}
			if int(v) > maxV {
				maxV = int(v)
			}
		} else {
			hasExtremes = true
		}
	}

	if hasExtremes && minV == 255 && maxV == 0 {
		b := scalarBlock{e0: 0, e1: 255}
		selectScalarIndices(&b, values)
		return b
	}

	best := scalarBlock{e0: uint8(maxV), e1: uint8(minV)}
	bestErr := selectScalarIndices(&best, values)
	if bestErr == 0 {
		return best
	}

	for _, step := range s.steps {
		moves := [6][2]int{
			{maxV - step, minV + step},
			{maxV + step, minV - step},
			{maxV, minV - step},
			{maxV + step, minV},
			{maxV, minV + step},
			{maxV - step, minV},
		}
		for _, m := range moves {
			hi := clampByte(m[0])
			lo := clampByte(m[1])
			b := scalarBlock{e0: hi, e1: lo}
			if hasExtremes {
				b.e0, b.e1 = lo, hi
			}
			if e := selectScalarIndices(&b, values); e < bestErr {
				best = b
				bestErr = e
				if s.follow {
					maxV, minV = int(hi), int(lo)
				}
			}
		}
		if s.done != nil && s.done(bestErr) {
			break
		}
	}
	return best
}

// alphaSearch is the BC3 alpha search: widening steps of 2 around the observed range.
func alphaSearch(q Quality) scalarSearch {
	variations := 3
	switch q {
	case QualityBalanced:
		variations = 5
	case QualityBestQuality:
		variations = 8
	}
	steps := make([]int, 0, variations)
	for i := 1; i < variations; i++ {
		steps = append(steps, i*2)
	}
	return scalarSearch{steps: steps, done: func(e int) bool { return e < 10 }}
}

// descendingSteps returns n, n-1, ..., 1.
func descendingSteps(n int) []int {
	steps := make([]int, 0, n)
	for i := n; i > 0; i-- {
		steps = append(steps, i)
	}
	return steps
}

func redSearch(q Quality) scalarSearch {
	variations := 3
	switch q {
	case QualityBalanced:
		variations = 4
	case QualityBestQuality:
		variations = 8
	}
	return scalarSearch{steps: descendingSteps(variations), follow: true, done: func(e int) bool { return e < 5 }}
}

func twoChannelSearch(q Quality) scalarSearch {
	variations, threshold := 3, 5
	switch q {
	case QualityBalanced:
		variations, threshold = 5, 1
	case QualityBestQuality:
		variations, threshold = 8, 0
	}
	return scalarSearch{steps: descendingSteps(variations), follow: true, done: func(e int) bool { return e <= threshold }}
}

func decodeScalar(src []byte) [16]uint8 {
	b := parseScalarBlock(src)
	pal := scalarPalette(b.e0, b.e1)
	var out [16]uint8
	for i := 0; i < 16; i++ {
		out[i] = pal[b.index(i)]
	}
	return out
}

// Search configurations indexed by Quality.
var (
	alphaSearches      = [...]scalarSearch{alphaSearch(QualityFast), alphaSearch(QualityBalanced), alphaSearch(QualityBestQuality)}
	redSearches        = [...]scalarSearch{redSearch(QualityFast), redSearch(QualityBalanced), redSearch(QualityBestQuality)}
	twoChannelSearches = [...]scalarSearch{twoChannelSearch(QualityFast), twoChannelSearch(QualityBalanced), twoChannelSearch(QualityBestQuality)}
)
