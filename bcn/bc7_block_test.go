package bcn

import (
	"image/color"
	"math"
	"math/rand"
	"testing"
)

// randomBC7Params returns params whose every field fits its stored width.
func randomBC7Params(rnd *rand.Rand, mode int) bc7Params {
	l := &bc7Layouts[mode]
	p := bc7Params{
		mode:      mode,
		partition: uint8(rnd.Intn(1 << l.partitionBits)),
		rotation:  uint8(rnd.Intn(1 << l.rotationBits)),
		indexMode: uint8(rnd.Intn(1 << l.indexModeBits)),
	}
	field := func(bits uint) uint8 { return uint8(rnd.Intn(1 << bits)) }
	for e := 0; e < l.endpointCount(); e++ {
		p.endpoints[e] = color.NRGBA{R: field(l.colorBits), G: field(l.colorBits), B: field(l.colorBits)}
		if l.hasAlpha() {
			p.endpoints[e].A = field(l.alphaBits)
		}
	}
	switch l.pbits {
	case pbitPerEndpoint:
		for e := 0; e < l.endpointCount(); e++ {
			p.pbits[e] = field(1)
		}
	case pbitShared:
		for s := 0; s < l.subsets; s++ {
			b := field(1)
			p.pbits[2*s], p.pbits[2*s+1] = b, b
		}
	}

	cb := l.colorIndexBits(p.indexMode)
	for i := 0; i < 16; i++ {
		bits := cb
		if bc7IsAnchor(l.subsets, int(p.partition), i) {
			bits--
		}
		p.colorIndices[i] = field(bits)
	}
	if l.splitIndices() {
		ab := l.alphaIndexBits(p.indexMode)
		for i := 0; i < 16; i++ {
			bits := ab
			if i == 0 {
				bits--
			}
			p.alphaIndices[i] = field(bits)
		}
	}
	return p
}

func TestBC7PackUnpackRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for mode := 0; mode < 8; mode++ {
		for iter := 0; iter < 200; iter++ {
			p := randomBC7Params(rnd, mode)
			b := p.pack()
			if got := b.lowestSetBit(8); got != mode {
				t.Fatalf("mode %d: lowestSetBit: got %d", mode, got)
			}
			q, err := unpackBC7(b)
			if err != nil {
				t.Fatalf("mode %d: unpackBC7: %v", mode, err)
			}
			if q != p {
				t.Fatalf("mode %d: round-trip mismatch:\n got %+v\nwant %+v", mode, q, p)
			}
			if q.pack() != b {
				t.Fatalf("mode %d: repack mismatch", mode)
			}
		}
	}
}

func TestBC7LayoutFillsBlock(t *testing.T) {
	for mode := 0; mode < 8; mode++ {
		p := bc7Params{mode: mode}
		total := uint(mode) + 1
		p.walk(func(n uint, _ *uint8) { total += n })
		if total != 128 {
			t.Fatalf("mode %d: layout covers %d bits, want 128", mode, total)
		}
	}
}

func TestBC7IndexStreamOffsets(t *testing.T) {
	cases := []struct {
		mode int
		want uint
	}{
		{0, 83}, {1, 82}, {2, 99}, {3, 98}, {4, 50}, {5, 66}, {6, 65}, {7, 98},
	}
	for _, c := range cases {
		p := bc7Params{mode: c.mode}
		off := uint(c.mode) + 1
		first := &p.colorIndices[0]
		start := uint(0)
		found := false
		p.walk(func(n uint, v *uint8) {
			if v == first && !found {
				start, found = off, true
			}
			off += n
		})
		if start != c.want {
			t.Fatalf("mode %d: index stream starts at %d, want %d", c.mode, start, c.want)
		}
	}
}

func TestBC7Mode4IndexModeSwapsStreams(t *testing.T) {
	p := bc7Params{mode: 4, indexMode: 1, rotation: 2}
	for i := 0; i < 16; i++ {
		p.colorIndices[i] = uint8(i % 8)
		p.alphaIndices[i] = uint8(i % 4)
	}
	p.colorIndices[0] &= 3
	p.alphaIndices[0] &= 1

	b := p.pack()
	// With index mode 1 the 2-bit stream at bit 50 carries alpha.
	if got, want := b.get(50, 1), uint64(p.alphaIndices[0]); got != want {
		t.Fatalf("2-bit stream anchor: got %d want %d", got, want)
	}
	if got, want := b.get(51, 2), uint64(p.alphaIndices[1]); got != want {
		t.Fatalf("2-bit stream texel 1: got %d want %d", got, want)
	}
	if got, want := b.get(81, 2), uint64(p.colorIndices[0]); got != want {
		t.Fatalf("3-bit stream anchor: got %d want %d", got, want)
	}

	q, err := unpackBC7(b)
	if err != nil {
		t.Fatalf("unpackBC7: %v", err)
	}
	if q.rotation != 2 || q.indexMode != 1 || q.colorIndices != p.colorIndices || q.alphaIndices != p.alphaIndices {
		t.Fatalf("round-trip mismatch: got %+v want %+v", q, p)
	}
}

func TestBC7ReservedBlock(t *testing.T) {
	var block [16]byte
	block[0] = 0
	var dst Tile
	err := decodeBC7(&dst, block[:], false)
	if got := ErrorCodeOf(err); got != ErrBadBlockType {
		t.Fatalf("decodeBC7(reserved): got %v want %v", got, ErrBadBlockType)
	}

	dst[3] = color.NRGBA{R: 9, G: 9, B: 9, A: 9}
	if err := decodeBC7(&dst, block[:], true); err != nil {
		t.Fatalf("decodeBC7(reserved, skip): %v", err)
	}
	if dst != (Tile{}) {
		t.Fatalf("skipped block: got %v want transparent black", dst[3])
	}
}

func TestExpandBC7(t *testing.T) {
	cases := []struct {
		v, pbit uint8
		bits    uint
		hasP    bool
		want    uint8
	}{
		{0x7F, 1, 7, true, 0xFF},
		{0x7F, 0, 7, true, 0xFE},
		{0x7F, 0, 7, false, 0xFF},
		{0x10, 0, 5, false, 0x84},
		{0x0F, 1, 4, true, 0xFF},
		{0x00, 1, 4, true, 0x08},
		{0x3F, 0, 6, false, 0xFF},
		{0xA5, 0, 8, false, 0xA5},
	}
	for _, c := range cases {
		if got := expandBC7(c.v, c.pbit, c.bits, c.hasP); got != c.want {
			t.Fatalf("expandBC7(%#x, %d, %d, %v): got %#x want %#x", c.v, c.pbit, c.bits, c.hasP, got, c.want)
		}
	}
}

func TestBC7Rotation(t *testing.T) {
	c := color.NRGBA{R: 1, G: 2, B: 3, A: 4}
	cases := []struct {
		rot  uint8
		want color.NRGBA
	}{
		{0, color.NRGBA{R: 1, G: 2, B: 3, A: 4}},
		{1, color.NRGBA{R: 4, G: 2, B: 3, A: 1}},
		{2, color.NRGBA{R: 1, G: 4, B: 3, A: 2}},
		{3, color.NRGBA{R: 1, G: 2, B: 4, A: 3}},
	}
	for _, tc := range cases {
		got := rotateBC7(c, tc.rot)
		if got != tc.want {
			t.Fatalf("rotateBC7(%d): got %v want %v", tc.rot, got, tc.want)
		}
		if back := rotateBC7(got, tc.rot); back != c {
			t.Fatalf("rotateBC7(%d) twice: got %v want %v", tc.rot, back, c)
		}
	}
}

func TestBC7PartitionTables(t *testing.T) {
	for p := 0; p < 64; p++ {
		var seen2 [2]int
		var seen3 [3]int
		for i := 0; i < 16; i++ {
			seen2[bc7Partitions2[p][i]]++
			seen3[bc7Partitions3[p][i]]++
		}
		for s, n := range seen2 {
			if n == 0 {
				t.Fatalf("2-subset partition %d: subset %d empty", p, s)
			}
		}
		for s, n := range seen3 {
			if n == 0 {
				t.Fatalf("3-subset partition %d: subset %d empty", p, s)
			}
		}
		if bc7Partitions2[p][0] != 0 || bc7Partitions3[p][0] != 0 {
			t.Fatalf("partition %d: texel 0 not in subset 0", p)
		}
		if s := bc7Subset(2, p, bc7Anchor(2, p, 1)); s != 1 {
			t.Fatalf("2-subset partition %d: anchor in subset %d", p, s)
		}
		if s := bc7Subset(3, p, bc7Anchor(3, p, 1)); s != 1 {
			t.Fatalf("3-subset partition %d: second anchor in subset %d", p, s)
		}
		if s := bc7Subset(3, p, bc7Anchor(3, p, 2)); s != 2 {
			t.Fatalf("3-subset partition %d: third anchor in subset %d", p, s)
		}
	}
}

func TestSolidBC7IsExact(t *testing.T) {
	for v := 0; v < 256; v++ {
		c := color.NRGBA{R: uint8(v), G: uint8(255 - v), B: uint8(v * 7), A: uint8(v ^ 0x5A)}
		p := solidBC7(c)
		got := p.decode()
		for i := range got {
			if got[i] != c {
				t.Fatalf("solidBC7(%v): texel %d decodes to %v", c, i, got[i])
			}
		}
	}
}

func randomTile(rnd *rand.Rand, opaque bool) Tile {
	var t Tile
	for i := range t {
		t[i] = color.NRGBA{R: uint8(rnd.Intn(256)), G: uint8(rnd.Intn(256)), B: uint8(rnd.Intn(256)), A: uint8(rnd.Intn(256))}
		if opaque {
			t[i].A = 255
		}
	}
	return t
}

// Every encoder output must survive packing unchanged, which also proves the
// anchor texels never use the top index bit.
func TestBC7ModeEncodersPackExactly(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	encoders := []struct {
		name string
		fn   func(t *Tile, partition int) bc7Params
	}{
		{"mode0", func(t *Tile, p int) bc7Params { return encodeMode0(t, 1, p) }},
		{"mode1", func(t *Tile, p int) bc7Params { return encodeMode1(t, 1, p) }},
		{"mode2", func(t *Tile, p int) bc7Params { return encodeMode2(t, 1, p) }},
		{"mode3", func(t *Tile, p int) bc7Params { return encodeMode3(t, 1, p) }},
		{"mode4", func(t *Tile, _ int) bc7Params { return encodeMode4(t, 1) }},
		{"mode5", func(t *Tile, _ int) bc7Params { return encodeMode5(t, 1) }},
		{"mode6", func(t *Tile, _ int) bc7Params { return encodeMode6(t, 1) }},
		{"mode7", func(t *Tile, p int) bc7Params { return encodeMode7(t, 1, p) }},
	}
	for iter := 0; iter < 20; iter++ {
		tile := randomTile(rnd, iter%2 == 0)
		partition := rnd.Intn(64)
		for _, e := range encoders {
			p := e.fn(&tile, partition)
			q, err := unpackBC7(p.pack())
			if err != nil {
				t.Fatalf("%s: unpackBC7: %v", e.name, err)
			}
			if q != p {
				t.Fatalf("%s: packed params differ:\n got %+v\nwant %+v", e.name, q, p)
			}
		}
	}
}

func TestBC7Mode6OpaqueStaysOpaque(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for iter := 0; iter < 20; iter++ {
		tile := randomTile(rnd, true)
		p := encodeMode6(&tile, 2)
		got := p.decode()
		for i := range got {
			if got[i].A != 255 {
				t.Fatalf("iter %d: texel %d alpha %d, want 255", iter, i, got[i].A)
			}
		}
	}
}

func TestBC7RotatedTwoLevelAlpha(t *testing.T) {
	var tile Tile
	for i := range tile {
		tile[i] = color.NRGBA{R: 255, B: 255, A: uint8(255 * (i & 1))}
	}
	for _, mode := range []int{4, 5} {
		p := encodeBC7Rotated(&tile, mode, 2)
		got := p.decode()
		if got != tile {
			t.Fatalf("mode %d: got %v want %v (rotation %d, index mode %d)", mode, got, tile, p.rotation, p.indexMode)
		}
	}
}

func TestBC7SplitAnchorSwap(t *testing.T) {
	// Texel 0 is opaque white, the rest transparent black.
	var tile Tile
	tile[0] = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

	white := color.NRGBA{R: 31, G: 31, B: 31}
	black := color.NRGBA{}
	withA := func(c color.NRGBA, a uint8) color.NRGBA { c.A = a; return c }

	cases := []struct {
		name               string
		indexMode          uint8
		ep0, ep1           color.NRGBA
		colorMSB, alphaMSB bool
		want0, want1       color.NRGBA
	}{
		// Color swap: alpha stays with its endpoint slot.
		{"color", 0, withA(black, 63), withA(white, 0), true, false, withA(white, 63), withA(black, 0)},
		{"color 3-bit", 1, withA(black, 63), withA(white, 0), true, false, withA(white, 63), withA(black, 0)},
		// Alpha swap: color stays in place.
		{"alpha", 0, withA(white, 0), withA(black, 63), false, true, withA(white, 63), withA(black, 0)},
		{"both", 0, withA(black, 0), withA(white, 63), true, true, withA(white, 63), withA(black, 0)},
	}
	for _, c := range cases {
		l := &bc7Layouts[4]
		f := newBC7Fit(4, &tile, 0, 0)
		f.indexMode = c.indexMode
		cMSB := uint8(1) << (l.colorIndexBits(c.indexMode) - 1)
		aMSB := uint8(1) << (l.alphaIndexBits(c.indexMode) - 1)

		var ci, ai [16]uint8
		f.fillSplitIndices(f.expand(c.ep0, 0), f.expand(c.ep1, 0), &ci, &ai)
		if got := ci[0]&cMSB != 0; got != c.colorMSB {
			t.Fatalf("%s: first fill color index %d, MSB set %v want %v", c.name, ci[0], got, c.colorMSB)
		}
		if got := ai[0]&aMSB != 0; got != c.alphaMSB {
			t.Fatalf("%s: first fill alpha index %d, MSB set %v want %v", c.name, ai[0], got, c.alphaMSB)
		}

		ep0, ep1 := c.ep0, c.ep1
		if !swapSplitAnchors(&ep0, &ep1, ci[0], ai[0], l, c.indexMode) {
			t.Fatalf("%s: swapSplitAnchors reported no swap", c.name)
		}
		if ep0 != c.want0 || ep1 != c.want1 {
			t.Fatalf("%s: got endpoints %v %v want %v %v", c.name, ep0, ep1, c.want0, c.want1)
		}

		f.fillSplitIndices(f.expand(ep0, 0), f.expand(ep1, 0), &ci, &ai)
		if ci[0] != 0 || ai[0] != 0 {
			t.Fatalf("%s: refill gave anchor indices %d/%d want 0/0", c.name, ci[0], ai[0])
		}
	}

	ep0, ep1 := withA(white, 63), withA(black, 0)
	if swapSplitAnchors(&ep0, &ep1, 0, 0, &bc7Layouts[4], 0) {
		t.Fatalf("swapSplitAnchors: swapped with clear anchor bits")
	}
}

func TestPrincipalAxisZeroGreenVariance(t *testing.T) {
	colors := make([]color.NRGBA, 16)
	for i := range colors {
		colors[i] = color.NRGBA{R: uint8(i * 17), G: 40, B: 40, A: 255}
	}
	_, axis := pcaRGB(colors)
	if math.Abs(float64(axis[0])) < 0.999 {
		t.Fatalf("pcaRGB: axis %v, want about (±1, 0, 0)", axis)
	}

	lo, hi := pcaMinMax565(colors)
	rlo, rhi := lo.rgb().r, hi.rgb().r
	if rlo > rhi {
		rlo, rhi = rhi, rlo
	}
	if rlo > 16 || rhi < 232 {
		t.Fatalf("pcaMinMax565: red spans %d..%d, want most of 0..255", rlo, rhi)
	}
}
