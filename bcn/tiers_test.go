package bcn

import (
	"image/color"
	"math/rand"
	"testing"
)

func TestEncodeTile_TiersNeverWorse(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	cases := []Options{
		{Format: FormatBC1},
		{Format: FormatBC1, Alpha1Bit: true},
		{Format: FormatBC2},
		{Format: FormatBC3},
		{Format: FormatBC4},
		{Format: FormatBC4, LuminanceAsRed: true},
		{Format: FormatBC5},
		{Format: FormatBC7},
	}
	for iter := 0; iter < 12; iter++ {
		tile := randomTile(rnd, iter%2 == 0)
		for _, opts := range cases {
			prev := -1
			for q := QualityFast; q <= QualityBestQuality; q++ {
				opts.Quality = q
				var block [16]byte
				n := opts.Format.BlockSize()
				encodeTile(block[:n], &tile, opts)
				var decoded Tile
				if err := decodeTile(&decoded, block[:n], opts); err != nil {
					t.Fatalf("decodeTile(%s): %v", opts.Format, err)
				}
				e := reconstructionError(&tile, &decoded, opts)
				if prev >= 0 && e > prev {
					t.Fatalf("tile %d %s %s: error %d above the previous tier's %d", iter, opts.Format, q, e, prev)
				}
				prev = e
			}
		}
	}
}

func TestSearchBC7_SeedIsFloor(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for iter := 0; iter < 8; iter++ {
		tile := randomTile(rnd, true)
		seed := searchBC7(&tile, QualityBestQuality, DefaultBC7Tuning(QualityBestQuality), nil)
		decoded := seed.decode()
		seedErr := TileError(&tile, &decoded)

		p := searchBC7(&tile, QualityFast, DefaultBC7Tuning(QualityFast), &seed)
		decoded = p.decode()
		if e := TileError(&tile, &decoded); e > seedErr {
			t.Fatalf("tile %d: seeded search error %f above seed %f", iter, e, seedErr)
		}
	}
}

func TestReconstructionError_Channels(t *testing.T) {
	var src, dec Tile
	src[0] = color.NRGBA{R: 10, G: 20, B: 30, A: 40}
	dec[0] = color.NRGBA{R: 11, G: 22, B: 33, A: 44}
	cases := []struct {
		opts Options
		want int
	}{
		{Options{Format: FormatBC4}, 1},
		{Options{Format: FormatBC5}, 1 + 4},
		{Options{Format: FormatBC1}, 1 + 4 + 9},
		{Options{Format: FormatBC1, Alpha1Bit: true}, 1 + 4 + 9 + 16},
		{Options{Format: FormatBC7}, 1 + 4 + 9 + 16},
	}
	for _, c := range cases {
		if got := reconstructionError(&src, &dec, c.opts); got != c.want {
			t.Fatalf("reconstructionError(%s, alpha1bit %v): got %d want %d", c.opts.Format, c.opts.Alpha1Bit, got, c.want)
		}
	}
}
