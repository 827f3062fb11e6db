package bcn_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/am-sokolov/go-bcn-encoder/bcn"
)

func TestMipCount(t *testing.T) {
	cases := []struct {
		w, h int
		want int
	}{
		{1, 1, 1},
		{2, 2, 2},
		{4, 4, 3},
		{256, 256, 9},
		{37, 5, 6},
		{1, 64, 7},
	}
	for _, c := range cases {
		if got := bcn.MipCount(c.w, c.h); got != c.want {
			t.Fatalf("MipCount(%d, %d): got %d want %d", c.w, c.h, got, c.want)
		}
	}
}

func TestGenerateMips_Chain(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 37, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 37; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 90, G: 160, B: 30, A: 255})
		}
	}

	mips := bcn.GenerateMips(img, 0)
	wantSizes := [][2]int{{37, 5}, {18, 2}, {9, 1}, {4, 1}, {2, 1}, {1, 1}}
	if len(mips) != len(wantSizes) {
		t.Fatalf("GenerateMips: got %d levels want %d", len(mips), len(wantSizes))
	}
	for i, m := range mips {
		b := m.Bounds()
		if b.Dx() != wantSizes[i][0] || b.Dy() != wantSizes[i][1] {
			t.Fatalf("level %d: got %dx%d want %dx%d", i, b.Dx(), b.Dy(), wantSizes[i][0], wantSizes[i][1])
		}
		// A flat image stays flat at every level.
		if c := m.NRGBAAt(b.Min.X, b.Min.Y); absDiff(c.R, 90) > 1 || absDiff(c.G, 160) > 1 || absDiff(c.B, 30) > 1 || c.A != 255 {
			t.Fatalf("level %d: got %v", i, c)
		}
	}

	if got := bcn.GenerateMips(img, 2); len(got) != 2 {
		t.Fatalf("GenerateMips(2): got %d levels", len(got))
	}
	if got := bcn.GenerateMips(nil, 3); got != nil {
		t.Fatalf("GenerateMips(nil): got %d levels", len(got))
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
