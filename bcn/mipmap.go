package bcn

import (
	"image"

	"github.com/disintegration/gift"
)

// MipCount returns the length of the full mip chain for an image, down to 1x1.
func MipCount(width, height int) int {
	n := 1
	for width > 1 || height > 1 {
		width = max(1, width/2)
		height = max(1, height/2)
		n++
	}
	return n
}

// GenerateMips returns levels mip images starting with img itself at level 0.
// Each level halves the previous one (never below 1 pixel) with a box filter.
// levels <= 0, or more levels than the chain holds, yields the full chain.
func GenerateMips(img image.Image, levels int) []*image.NRGBA {
	if img == nil {
		return nil
	}
	base := toNRGBA(img)
	w, h := base.Bounds().Dx(), base.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil
	}
	full := MipCount(w, h)
	if levels <= 0 || levels > full {
		levels = full
	}

	out := make([]*image.NRGBA, 0, levels)
	out = append(out, base)
	for i := 1; i < levels; i++ {
		w, h = max(1, w/2), max(1, h/2)
		g := gift.New(gift.Resize(w, h, gift.BoxResampling))
		dst := image.NewNRGBA(g.Bounds(base.Bounds()))
		// Resample from the previous level so each step is a 2x reduction.
		g.Draw(dst, out[i-1])
		out = append(out, dst)
	}
	return out
}
