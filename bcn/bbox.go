package bcn

import "image/color"

const colorInsetShift = 4

// boundingBox565 returns the per-channel RGB min/max of colors, inset by 1/16 of
// the range and rounded to 565.
func boundingBox565(colors []color.NRGBA) (lo, hi rgb565) {
	return boundingBox565Cutoff(colors, -1)
}

// boundingBox565Cutoff is boundingBox565 that ignores texels with alpha below cutoff.
func boundingBox565Cutoff(colors []color.NRGBA, cutoff int) (lo, hi rgb565) {
	minC := [3]int{255, 255, 255}
	maxC := [3]int{0, 0, 0}
	for _, c := range colors {
		if int(c.A) < cutoff {
			continue
		}
		v := [3]int{int(c.R), int(c.G), int(c.B)}
		for ch := 0; ch < 3; ch++ {
			if v[ch] < minC[ch] {
				minC[ch] = v[ch]
			}
			if v[ch] > maxC[ch] {
				maxC[ch] = v[ch]
			}
		}
	}

	for ch := 0; ch < 3; ch++ {
		inset := (maxC[ch] - minC[ch]) >> colorInsetShift
		minC[ch] = ((minC[ch] << colorInsetShift) + inset) >> colorInsetShift
		maxC[ch] = ((maxC[ch] << colorInsetShift) - inset) >> colorInsetShift
		minC[ch] = clampInt(minC[ch], 0, 255)
		maxC[ch] = clampInt(maxC[ch], 0, 255)
	}

	lo = newRGB565(round565Channel(minC[0], 5), round565Channel(minC[1], 6), round565Channel(minC[2], 5))
	hi = newRGB565(round565Channel(maxC[0], 5), round565Channel(maxC[1], 6), round565Channel(maxC[2], 5))
	return lo, hi
}
